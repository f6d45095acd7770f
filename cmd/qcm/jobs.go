package main

import (
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/qcm-suite/qcm/internal/notify"
	"github.com/qcm-suite/qcm/jobs"
)

var errNeedsRedis = errors.New("job queue requires STORAGE_BACKEND=redis")

func newJobsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Trigger and inspect background jobs",
	}

	var inline bool
	warmup := &cobra.Command{
		Use:   "warmup [entity...]",
		Short: "Prefetch reference lists into the shared query cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return c.fail(err)
			}
			defer rt.Close()

			if inline {
				job := jobs.NewReferenceWarmupJob(rt.Deps(notify.Discard), c.logger, rt.JobMetrics)
				if err := job.Run(cmd.Context(), args...); err != nil {
					return c.fail(err)
				}
				fmt.Fprintln(c.stdout, "reference warmup completed")
				return nil
			}
			if !c.cfg.UsesRedis() {
				return c.fail(errNeedsRedis)
			}
			client, err := jobs.NewClient(rt.RedisOpts())
			if err != nil {
				return c.fail(err)
			}
			defer client.Close()
			info, err := client.EnqueueReferenceWarmup(cmd.Context(), jobs.ReferenceWarmupPayload{Entities: args})
			if err != nil {
				return c.fail(err)
			}
			fmt.Fprintf(c.stdout, "enqueued %s on %s (id %s)\n", info.Type, info.Queue, info.ID)
			return nil
		},
	}
	warmup.Flags().BoolVar(&inline, "inline", false, "run in this process instead of enqueueing")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show the default queue counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.cfg.UsesRedis() {
				return c.fail(errNeedsRedis)
			}
			inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: c.cfg.RedisAddr})
			defer inspector.Close()
			info, err := inspector.GetQueueInfo(jobs.QueueDefault)
			if err != nil {
				return c.fail(err)
			}
			fmt.Fprintf(c.stdout, "queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
				info.Queue, info.Pending, info.Active, info.Scheduled, info.Retry)
			return nil
		},
	}

	cmd.AddCommand(warmup, stats)
	return cmd
}
