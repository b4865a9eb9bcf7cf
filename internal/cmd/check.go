package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesoscale/mesoscaler/internal/config"
	"github.com/mesoscale/mesoscaler/internal/logging"
	"github.com/mesoscale/mesoscaler/internal/marathon"
	"github.com/mesoscale/mesoscaler/internal/mode"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration and cluster connectivity",
	Long: `Check validates the configuration, verifies the Marathon endpoint is
reachable, confirms the application exists, and takes one reading of the
configured signal. Nothing is scaled.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}
	fmt.Fprintln(out, "configuration ok")

	ctx := cmd.Context()
	mc, err := marathon.New(&cfg.Marathon)
	if err != nil {
		return fmt.Errorf("failed to create marathon client: %w", err)
	}

	info, err := mc.Ping(ctx)
	if err != nil {
		return fmt.Errorf("marathon unreachable: %w", err)
	}
	fmt.Fprintf(out, "marathon ok (%s %s)\n", info.Name, info.Version)

	app, err := mc.App(ctx, cfg.Marathon.AppID)
	if err != nil {
		return fmt.Errorf("application check failed: %w", err)
	}
	fmt.Fprintf(out, "application ok (%s, %d instances, %d tasks running)\n",
		app.ID, app.Instances, app.TasksRunning)

	deps, _, err := buildSignals(ctx, cfg, mc, logging.NopLogger())
	if err != nil {
		return err
	}
	trigger, err := mode.New(cfg.Scaling.TriggerMode, deps, &cfg.Scaling)
	if err != nil {
		return err
	}

	verdict, err := trigger.Evaluate(ctx)
	if err != nil {
		return fmt.Errorf("signal unavailable: %w", err)
	}
	fmt.Fprintf(out, "signal ok (%s reads %s)\n", trigger.Name(), verdict)
	return nil
}
