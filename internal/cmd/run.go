package cmd

import (
	"context"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mesoscale/mesoscaler/internal/config"
	"github.com/mesoscale/mesoscaler/internal/event"
	"github.com/mesoscale/mesoscaler/internal/logging"
	"github.com/mesoscale/mesoscaler/internal/marathon"
	"github.com/mesoscale/mesoscaler/internal/mesos"
	"github.com/mesoscale/mesoscaler/internal/mode"
	"github.com/mesoscale/mesoscaler/internal/queue"
	"github.com/mesoscale/mesoscaler/internal/scaling"
	"github.com/mesoscale/mesoscaler/internal/signal"
	"github.com/mesoscale/mesoscaler/internal/telemetry"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scaling loop",
	Long: `Run starts the scaling daemon. Every cycle it reads the application's
instance count from Marathon, evaluates the configured trigger mode, and
scales the application once the signal has sat outside its band for enough
consecutive cycles.

The daemon runs until interrupted. On SIGINT or SIGTERM it finishes the
cycle in flight and exits cleanly.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	rotation := logging.DefaultRotationConfig()
	rotation.MaxSizeMB = cfg.Logging.MaxSizeMB
	rotation.MaxBackups = cfg.Logging.MaxBackups

	log, err := logging.NewLoggerWithRotation(cfg.Logging.Dir, logLevel(cfg), rotation)
	if err != nil {
		return fmt.Errorf("failed to open log sink: %w", err)
	}
	defer func() { _ = log.Close() }()

	ctx, stop := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, server, err := buildDaemon(ctx, cfg, log)
	if err != nil {
		return err
	}

	fmt.Printf("mesoscaler watching %s (mode %s, interval %s)\n",
		cfg.Marathon.AppID, cfg.Scaling.TriggerMode, cfg.Scaling.Interval())
	if cfg.Telemetry.Enabled {
		fmt.Printf("telemetry on %s/metrics\n", cfg.Telemetry.ListenAddr)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return engine.Run(gctx)
	})
	if server != nil {
		g.Go(func() error {
			return server.Run(gctx)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("daemon failed: %w", err)
	}

	fmt.Println("mesoscaler stopped")
	return nil
}

// buildDaemon assembles the engine and the optional telemetry server from
// validated configuration.
func buildDaemon(ctx context.Context, cfg *config.Config, log *logging.Logger) (*scaling.Engine, *telemetry.Server, error) {
	mc, err := marathon.New(&cfg.Marathon)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create marathon client: %w", err)
	}

	deps, recorders, err := buildSignals(ctx, cfg, mc, log)
	if err != nil {
		return nil, nil, err
	}

	trigger, err := mode.New(cfg.Scaling.TriggerMode, deps, &cfg.Scaling)
	if err != nil {
		return nil, nil, err
	}

	bus := event.NewBus()

	var server *telemetry.Server
	if cfg.Telemetry.Enabled {
		collector := telemetry.NewCollector()
		collector.Observe(bus)
		server = telemetry.NewServer(&cfg.Telemetry, collector, log)
	}

	engine := scaling.NewEngine(scaling.Params{
		Config:       cfg,
		Orchestrator: mc,
		Mode:         trigger,
		Bus:          bus,
		Log:          log,
		Recorders:    recorders,
	})
	return engine, server, nil
}

// buildSignals constructs the signal providers the trigger mode can draw
// on, each wrapped in a recorder so completed-cycle events carry the
// observed values. The SQS client is only built when queue settings are
// present; the sqs mode rejects a missing queue at construction time.
func buildSignals(ctx context.Context, cfg *config.Config, mc *marathon.Client, log *logging.Logger) (mode.Deps, []*signal.Recorder, error) {
	sc := mesos.New(&cfg.Marathon, mc.HTTPClient(), mc.Tokens())
	appID := cfg.Marathon.AppID

	cpu := signal.NewRecorder(signal.NewCPUProvider(mc, sc, appID, log))
	mem := signal.NewRecorder(signal.NewMemoryProvider(mc, sc, appID, log))

	deps := mode.Deps{CPU: cpu, Memory: mem}
	recorders := []*signal.Recorder{cpu, mem}

	if cfg.Queue.URL != "" || cfg.Queue.Name != "" {
		qc, err := queue.New(ctx, &cfg.Queue)
		if err != nil {
			return mode.Deps{}, nil, fmt.Errorf("failed to create queue client: %w", err)
		}
		depth := signal.NewRecorder(signal.NewQueueProvider(qc, log))
		deps.Queue = depth
		recorders = append(recorders, depth)
	}

	return deps, recorders, nil
}
