package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	jobmetrics "github.com/qcm-suite/qcm/internal/jobs"
	"github.com/qcm-suite/qcm/internal/masterdata"
	"github.com/qcm-suite/qcm/internal/resource"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

const (
	warmupParallelism = 4
	warmupTimeout     = 20 * time.Second
)

// ReferenceWarmupJob prefetches the unpaged reference lists into the shared
// query cache so consoles start warm.
type ReferenceWarmupJob struct {
	Deps    resource.Deps
	Entries []masterdata.Entry
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewReferenceWarmupJob wires dependencies for the warmup handler. Entries
// default to every reference entity.
func NewReferenceWarmupJob(deps resource.Deps, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReferenceWarmupJob {
	return &ReferenceWarmupJob{
		Deps:    deps,
		Entries: masterdata.References(),
		Logger:  logger,
		Metrics: metrics,
	}
}

// Handle processes reference warmup tasks.
func (j *ReferenceWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("reference warmup: handler not configured")
	}
	var payload ReferenceWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("reference warmup: decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	return j.Run(ctx, payload.Entities...)
}

// Run warms the named entities, or all configured entries when none are
// named. Every entity is attempted; the first failure is returned.
func (j *ReferenceWarmupJob) Run(ctx context.Context, names ...string) (resultErr error) {
	tracker := j.metrics().Track(TaskReferenceWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	entries, err := j.selectEntries(names)
	if err != nil {
		logger.Error("select warmup entities", slog.Any("error", err))
		return err
	}
	start := time.Now()
	logger.Info("starting reference warmup", slog.Int("entities", len(entries)))

	g := new(errgroup.Group)
	g.SetLimit(warmupParallelism)
	for _, e := range entries {
		e := e
		g.Go(func() error {
			entityCtx, cancel := context.WithTimeout(ctx, warmupTimeout)
			defer cancel()
			err := e.Prefetch(entityCtx, j.Deps)
			j.metrics().Warmed(e.Definition.Name, err)
			if err != nil {
				logger.Warn("warm entity", slog.String("entity", e.Definition.Name), slog.Any("error", err))
				return fmt.Errorf("reference warmup %s: %w", e.Definition.Name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("completed reference warmup", slog.Int("entities", len(entries)), slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *ReferenceWarmupJob) selectEntries(names []string) ([]masterdata.Entry, error) {
	if len(names) == 0 {
		return j.Entries, nil
	}
	out := make([]masterdata.Entry, 0, len(names))
	for _, name := range names {
		e, err := masterdata.Lookup(name)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (j *ReferenceWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReferenceWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReferenceWarmup))
}

func (j *ReferenceWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
