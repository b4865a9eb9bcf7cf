package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesoscale/mesoscaler/internal/config"
	"github.com/mesoscale/mesoscaler/internal/marathon"
	"github.com/mesoscale/mesoscaler/internal/tui"
)

var statusWatch bool

var statusCmd = &cobra.Command{
	Use:   "status [app-id]",
	Short: "Show the monitored application's state",
	Long: `Status reads the application's current state from Marathon and prints
instance counts and task placements. The app ID argument overrides the
configured application.

With --watch the state is refreshed continuously in a terminal dashboard.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false,
		"refresh continuously in a terminal dashboard")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	appID := cfg.Marathon.AppID
	if len(args) == 1 {
		appID = args[0]
	}

	mc, err := marathon.New(&cfg.Marathon)
	if err != nil {
		return fmt.Errorf("failed to create marathon client: %w", err)
	}

	if statusWatch {
		return tui.Run(mc, appID, cfg)
	}

	app, err := mc.App(cmd.Context(), appID)
	if err != nil {
		return fmt.Errorf("failed to fetch application: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Application:  %s\n", app.ID)
	fmt.Fprintf(out, "Instances:    %d (bounds %d-%d)\n",
		app.Instances, cfg.Scaling.MinInstances, cfg.Scaling.MaxInstances)
	fmt.Fprintf(out, "Tasks up:     %d\n", app.TasksRunning)
	fmt.Fprintf(out, "Trigger mode: %s\n", cfg.Scaling.TriggerMode)

	if len(app.Tasks) > 0 {
		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TASK\tHOST\tSTATE")
		for _, t := range app.Tasks {
			fmt.Fprintf(w, "%s\t%s\t%s\n", t.ID, t.Host, t.State)
		}
		_ = w.Flush()
	}
	return nil
}
