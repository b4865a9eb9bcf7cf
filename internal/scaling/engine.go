package scaling

import (
	"context"
	"math"
	"time"

	"github.com/mesoscale/mesoscaler/internal/config"
	"github.com/mesoscale/mesoscaler/internal/errors"
	"github.com/mesoscale/mesoscaler/internal/event"
	"github.com/mesoscale/mesoscaler/internal/logging"
	"github.com/mesoscale/mesoscaler/internal/mode"
	"github.com/mesoscale/mesoscaler/internal/signal"
)

// Cycle skip reasons, used as log fields and metric labels.
const (
	ReasonMetricUnavailable       = "metric_unavailable"
	ReasonOrchestratorUnavailable = "orchestrator_unavailable"
	ReasonAppMissing              = "app_missing"
)

// Orchestrator is the slice of the Marathon client the engine drives.
type Orchestrator interface {
	InstanceCount(ctx context.Context, appID string) (int, error)
	Scale(ctx context.Context, appID string, instances int) error
}

// Params collects the engine's collaborators. Bus and Log may be nil; the
// engine then runs without observers and without log output.
type Params struct {
	Config       *config.Config
	Orchestrator Orchestrator
	Mode         mode.Mode
	Bus          *event.Bus
	Log          *logging.Logger

	// Recorders expose the per-dimension values observed during a cycle
	// so completed-cycle events can carry them.
	Recorders []*signal.Recorder
}

// Engine owns the control loop for one monitored application. One engine,
// one application, one goroutine: all cycle state (tracker streaks, last
// seen instance count) is confined to the loop.
type Engine struct {
	orchestrator Orchestrator
	mode         mode.Mode
	tracker      *Tracker
	recorders    []*signal.Recorder
	bus          *event.Bus
	log          *logging.Logger

	appID        string
	multiplier   float64
	minInstances int
	maxInstances int
	interval     time.Duration

	cycle         uint64
	lastInstances int
	seenInstances bool
}

// NewEngine builds an engine from validated configuration.
func NewEngine(p Params) *Engine {
	if p.Bus == nil {
		p.Bus = event.NewBus()
	}
	if p.Log == nil {
		p.Log = logging.NopLogger()
	}
	scaling := p.Config.Scaling
	return &Engine{
		orchestrator: p.Orchestrator,
		mode:         p.Mode,
		tracker:      NewTracker(scaling.ScaleUpFactor, scaling.CoolDownFactor),
		recorders:    p.Recorders,
		bus:          p.Bus,
		log:          p.Log.WithApp(p.Config.Marathon.AppID).WithMode(p.Mode.Name()),
		appID:        p.Config.Marathon.AppID,
		multiplier:   scaling.Multiplier,
		minInstances: scaling.MinInstances,
		maxInstances: scaling.MaxInstances,
		interval:     scaling.Interval(),
	}
}

// Run drives evaluation cycles until ctx is canceled. The first cycle runs
// immediately; after that a ticker paces cycles at the configured interval
// measured from cycle start, so slow collaborator calls do not push the
// cadence back. Cancellation is honored between cycles only: a cycle in
// flight always finishes, so no scale request is abandoned half way.
func (e *Engine) Run(ctx context.Context) error {
	e.log.Info("engine started",
		"interval", e.interval.String(),
		"multiplier", e.multiplier,
		"min_instances", e.minInstances,
		"max_instances", e.maxInstances,
	)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	// Calls made during a cycle outlive a shutdown request; each one is
	// still bounded by its client's own timeout.
	cycleCtx := context.WithoutCancel(ctx)

	for {
		if ctx.Err() != nil {
			e.log.Info("engine stopped", "cycles", e.cycle)
			return nil
		}

		e.runCycle(cycleCtx)

		select {
		case <-ctx.Done():
		case <-ticker.C:
		}
	}
}

func (e *Engine) runCycle(ctx context.Context) {
	e.cycle++
	started := time.Now()
	log := e.log.WithCycle(e.cycle)

	for _, rec := range e.recorders {
		rec.Reset()
	}

	current, err := e.orchestrator.InstanceCount(ctx, e.appID)
	if err != nil {
		// A deleted application is worth telling apart from a flaky master.
		reason := ReasonOrchestratorUnavailable
		if errors.Is(err, errors.ErrAppNotFound) {
			reason = ReasonAppMissing
		}
		e.skip(log, reason, err)
		return
	}
	e.observeInstances(current)

	verdict, err := e.mode.Evaluate(ctx)
	if err != nil {
		// The tracker is not consulted: an unavailable metric must not
		// break or extend a streak.
		e.skip(log, ReasonMetricUnavailable, err)
		return
	}

	action := e.tracker.Observe(verdict)
	above, below := e.tracker.Counters()
	log.Info("cycle evaluated",
		"verdict", verdict.String(),
		"action", action.String(),
		"instances", current,
		"streak_above", above,
		"streak_below", below,
	)

	switch action {
	case ActionScaleUp:
		e.scale(ctx, log, event.DirectionUp, current)
	case ActionScaleDown:
		e.scale(ctx, log, event.DirectionDown, current)
	}

	e.bus.Publish(event.NewCycleCompletedEvent(
		e.cycle, verdict.String(), e.values(), current, time.Since(started),
	))
}

// scale computes the clamped target and applies it. A target equal to the
// current count means the bound already holds; nothing is sent.
func (e *Engine) scale(ctx context.Context, log *logging.Logger, direction event.Direction, current int) {
	target := e.target(direction, current)
	if target == current {
		bound := e.maxInstances
		if direction == event.DirectionDown {
			bound = e.minInstances
		}
		log.Info("scaling suppressed at instance bound",
			"direction", string(direction),
			"instances", current,
			"bound", bound,
		)
		e.bus.Publish(event.NewScaleClampedEvent(e.cycle, direction, current, bound))
		return
	}

	if err := e.orchestrator.Scale(ctx, e.appID, target); err != nil {
		// Reported, never retried within the cycle; the next tick is the
		// retry mechanism.
		log.Error("scale request failed",
			"direction", string(direction),
			"from", current,
			"to", target,
			"error", err,
		)
		e.bus.Publish(event.NewScaleFailedEvent(e.cycle, direction, current, target, err.Error()))
		return
	}

	log.Info("scaled application",
		"direction", string(direction),
		"from", current,
		"to", target,
	)
	e.lastInstances = target
	e.bus.Publish(event.NewScaleTriggeredEvent(e.cycle, direction, current, target))
}

// target applies the multiplier and clamps to the configured bounds.
func (e *Engine) target(direction event.Direction, current int) int {
	if direction == event.DirectionUp {
		target := int(math.Ceil(float64(current) * e.multiplier))
		return min(target, e.maxInstances)
	}
	target := int(math.Floor(float64(current) / e.multiplier))
	return max(target, e.minInstances)
}

func (e *Engine) skip(log *logging.Logger, reason string, err error) {
	log.Warn("cycle skipped",
		"reason", reason,
		"recoverable", errors.IsRecoverable(err),
		"error", err,
	)
	e.bus.Publish(event.NewCycleSkippedEvent(e.cycle, reason, err.Error()))
}

// observeInstances publishes a change event when the deployed count moved
// since the last successful read, whether we moved it or someone else did.
func (e *Engine) observeInstances(current int) {
	if e.seenInstances && e.lastInstances != current {
		e.bus.Publish(event.NewInstancesChangedEvent(e.lastInstances, current))
	}
	e.lastInstances = current
	e.seenInstances = true
}

// values snapshots the dimension readings recorded during this cycle.
func (e *Engine) values() map[string]float64 {
	if len(e.recorders) == 0 {
		return nil
	}
	values := make(map[string]float64, len(e.recorders))
	for _, rec := range e.recorders {
		if v, ok := rec.Last(); ok {
			values[rec.Dimension()] = v
		}
	}
	return values
}
