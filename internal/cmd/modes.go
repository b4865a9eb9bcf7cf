package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesoscale/mesoscaler/internal/mode"
)

// modeDescriptions covers the built-in trigger modes. Modes registered by
// extensions print with an empty description.
var modeDescriptions = map[string]string{
	mode.ModeCPU:    "average task CPU utilization (percent)",
	mode.ModeMemory: "average task memory utilization (percent)",
	mode.ModeQueue:  "SQS queue depth (messages)",
	mode.ModeAnd:    "cpu and mem agreeing on the same verdict",
	mode.ModeOr:     "cpu or mem outside its band, scale-up wins conflicts",
}

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List registered trigger modes",
	Args:  cobra.NoArgs,
	Run:   runModes,
}

func init() {
	rootCmd.AddCommand(modesCmd)
}

func runModes(cmd *cobra.Command, args []string) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, name := range mode.Names() {
		fmt.Fprintf(w, "%s\t%s\n", name, modeDescriptions[name])
	}
	_ = w.Flush()
}
