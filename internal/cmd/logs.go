package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	ossignal "os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesoscale/mesoscaler/internal/logging"
)

// ANSI escape codes for log display
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// followPollInterval is how often follow mode checks for new log lines.
const followPollInterval = 100 * time.Millisecond

var (
	logsTail      int
	logsFollow    bool
	logsLevel     string
	logsSince     time.Duration
	logsGrep      string
	logsCycle     string
	logsDimension string
	logsDir       string
	logsExport    string
	logsFormat    string
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View and export daemon logs",
	Long: `Logs reads the daemon's structured log file and prints it with colored
levels. Filters narrow the output to a level, a time window, an evaluation
cycle, a signal dimension, or a message substring.

With --export the matching entries are written to a file instead of the
terminal, in json, text, or csv format.`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "number of entries to show (0 for all)")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "keep the log open and print new entries")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "minimum level (debug, info, warn, error)")
	logsCmd.Flags().DurationVar(&logsSince, "since", 0, "only entries newer than this duration (e.g. 1h)")
	logsCmd.Flags().StringVar(&logsGrep, "grep", "", "only entries whose message contains this substring")
	logsCmd.Flags().StringVar(&logsCycle, "cycle", "", "only entries from this evaluation cycle")
	logsCmd.Flags().StringVar(&logsDimension, "dimension", "", "only entries for this signal dimension")
	logsCmd.Flags().StringVar(&logsDir, "dir", "", "log directory (default logging.dir from configuration)")
	logsCmd.Flags().StringVar(&logsExport, "export", "", "write matching entries to this file instead of the terminal")
	logsCmd.Flags().StringVar(&logsFormat, "format", "json", "export format (json, text, csv)")
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	dir := logsDir
	if dir == "" {
		dir = viper.GetString("logging.dir")
	}
	if dir == "" {
		return fmt.Errorf("no log directory: set logging.dir or pass --dir")
	}

	filter := logging.LogFilter{
		Level:           logsLevel,
		Cycle:           logsCycle,
		Dimension:       logsDimension,
		MessageContains: logsGrep,
	}
	if logsSince > 0 {
		filter.StartTime = time.Now().Add(-logsSince)
	}

	if logsExport != "" {
		return exportLogs(cmd, dir, filter)
	}

	entries, err := logging.AggregateLogs(dir)
	if err != nil {
		return err
	}
	entries = logging.FilterLogs(entries, filter)

	if logsTail > 0 && len(entries) > logsTail {
		entries = entries[len(entries)-logsTail:]
	}

	out := cmd.OutOrStdout()
	for _, entry := range entries {
		fmt.Fprintln(out, formatLogEntry(entry))
	}

	if logsFollow {
		return followLogs(cmd, dir, filter)
	}
	return nil
}

// exportLogs writes the filtered entries to the export path.
func exportLogs(cmd *cobra.Command, dir string, filter logging.LogFilter) error {
	entries, err := logging.AggregateLogs(dir)
	if err != nil {
		return err
	}
	entries = logging.FilterLogs(entries, filter)

	if err := logging.ExportLogEntries(entries, logsExport, logsFormat); err != nil {
		return fmt.Errorf("failed to export logs: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %d entries to %s\n", len(entries), logsExport)
	return nil
}

// followLogs tails the log file, printing entries that pass the filter as
// they are written. Runs until interrupted.
func followLogs(cmd *cobra.Command, dir string, filter logging.LogFilter) error {
	ctx, stop := ossignal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	file, err := os.Open(filepath.Join(dir, "mesoscaler.log"))
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek log file: %w", err)
	}

	out := cmd.OutOrStdout()
	reader := bufio.NewReader(file)
	var partial strings.Builder

	for {
		chunk, err := reader.ReadString('\n')
		if chunk != "" {
			partial.WriteString(chunk)
		}
		if err != nil {
			if err != io.EOF {
				return fmt.Errorf("failed to read log file: %w", err)
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(followPollInterval):
			}
			continue
		}

		line := strings.TrimSpace(partial.String())
		partial.Reset()
		if line == "" {
			continue
		}

		entry, err := logging.ParseLogEntry(line)
		if err != nil {
			continue
		}
		if len(logging.FilterLogs([]logging.LogEntry{entry}, filter)) == 0 {
			continue
		}
		fmt.Fprintln(out, formatLogEntry(entry))
	}
}

// formatLogEntry renders one entry for the terminal: dimmed timestamp,
// colored level, message, then context fields.
func formatLogEntry(e logging.LogEntry) string {
	var b strings.Builder

	b.WriteString(colorGray + e.Timestamp.Format("2006-01-02 15:04:05") + colorReset)
	b.WriteString(fmt.Sprintf(" %s%-5s%s ", levelColor(e.Level), e.Level, colorReset))
	b.WriteString(e.Message)

	if e.Cycle != "" {
		b.WriteString(colorGray + " cycle=" + e.Cycle + colorReset)
	}
	if e.Dimension != "" {
		b.WriteString(colorGray + " dimension=" + e.Dimension + colorReset)
	}

	keys := make([]string, 0, len(e.Attrs))
	for k := range e.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("%s %s=%v%s", colorGray, k, e.Attrs[k], colorReset))
	}

	return b.String()
}

// levelColor returns the ANSI color for a log level.
func levelColor(level string) string {
	switch level {
	case logging.LevelError:
		return colorRed
	case logging.LevelWarn:
		return colorYellow
	case logging.LevelInfo:
		return colorCyan
	default:
		return colorGray
	}
}
