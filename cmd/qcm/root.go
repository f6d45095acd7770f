package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/qcm-suite/qcm/internal/app"
	"github.com/qcm-suite/qcm/internal/resource"
)

// cli carries the process wiring shared by every subcommand. Tests swap
// loadConfig and runtimeOpts to point at fakes.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	loadConfig  func() (*app.Config, error)
	runtimeOpts app.RuntimeOptions

	cfg    *app.Config
	logger *slog.Logger
}

func newCLI(stdout, stderr io.Writer) *cli {
	return &cli{stdout: stdout, stderr: stderr, loadConfig: app.LoadConfig}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "qcm",
		Short:         "QC master-data console and client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			c.cfg = cfg
			c.logger = app.NewLoggerTo(cfg, c.stderr)
			return nil
		},
	}
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	root.AddCommand(
		newServeCmd(c),
		newEntitiesCmd(c),
		newListCmd(c),
		newGetCmd(c),
		newDeleteCmd(c),
		newTokenCmd(c),
		newJobsCmd(c),
	)
	return root
}

func (c *cli) runtime(ctx context.Context) (*app.Runtime, error) {
	return app.NewRuntime(ctx, c.cfg, c.logger, c.runtimeOpts)
}

// fail prints err to stderr and returns it so cobra exits non-zero.
func (c *cli) fail(err error) error {
	msg := resource.Describe(err)
	if msg == "request failed" {
		msg = err.Error()
	}
	fmt.Fprintln(c.stderr, "error:", msg)
	return err
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
