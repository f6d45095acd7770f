package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReferenceWarmup refreshes the cached reference lists.
	TaskReferenceWarmup = "qc:reference_warmup"
	// ReferenceWarmupCron runs the warmup every half hour.
	ReferenceWarmupCron = "*/30 * * * *"
)

// ReferenceWarmupPayload selects the entities to warm; empty means every
// reference entity.
type ReferenceWarmupPayload struct {
	Entities []string `json:"entities,omitempty"`
}

// NewReferenceWarmupTask constructs an Asynq task.
func NewReferenceWarmupTask(payload ReferenceWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReferenceWarmup, data, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}
