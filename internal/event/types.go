package event

import "time"

// Event is the interface that all events must implement.
// It provides a common way to identify and timestamp events.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "cycle.completed", "scale.triggered")
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// Direction identifies which way a scaling action moves the instance count.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// -----------------------------------------------------------------------------
// Cycle Events
// -----------------------------------------------------------------------------

// CycleCompletedEvent is emitted at the end of every successful evaluation
// cycle, whether or not it produced a scaling action.
type CycleCompletedEvent struct {
	baseEvent
	Cycle     uint64             // Monotonic cycle counter since startup
	Verdict   string             // Band verdict: "above", "within", "below"
	Values    map[string]float64 // Observed value per dimension (e.g. "cpu" -> 72.4)
	Instances int                // Instance count observed this cycle
	Elapsed   time.Duration      // Wall time the cycle took
}

// NewCycleCompletedEvent creates a CycleCompletedEvent.
// Verdict is carried as a string to avoid a dependency on the mode package.
func NewCycleCompletedEvent(cycle uint64, verdict string, values map[string]float64, instances int, elapsed time.Duration) CycleCompletedEvent {
	return CycleCompletedEvent{
		baseEvent: newBaseEvent("cycle.completed"),
		Cycle:     cycle,
		Verdict:   verdict,
		Values:    values,
		Instances: instances,
		Elapsed:   elapsed,
	}
}

// CycleSkippedEvent is emitted when an evaluation cycle is abandoned due to
// a recoverable error. Hysteresis counters are left untouched; the next
// cycle proceeds on schedule.
type CycleSkippedEvent struct {
	baseEvent
	Cycle  uint64 // Monotonic cycle counter since startup
	Reason string // Machine-readable reason (e.g. "metric_unavailable")
	Error  string // Underlying error text
}

// NewCycleSkippedEvent creates a CycleSkippedEvent.
func NewCycleSkippedEvent(cycle uint64, reason, errMsg string) CycleSkippedEvent {
	return CycleSkippedEvent{
		baseEvent: newBaseEvent("cycle.skipped"),
		Cycle:     cycle,
		Reason:    reason,
		Error:     errMsg,
	}
}

// -----------------------------------------------------------------------------
// Scaling Events
// -----------------------------------------------------------------------------

// ScaleTriggeredEvent is emitted when the hysteresis threshold is crossed
// and a scale request is sent to Marathon.
type ScaleTriggeredEvent struct {
	baseEvent
	Cycle     uint64    // Cycle during which the action fired
	Direction Direction // Which way the instance count moves
	From      int       // Instance count before the request
	To        int       // Requested instance count (already clamped)
}

// NewScaleTriggeredEvent creates a ScaleTriggeredEvent.
func NewScaleTriggeredEvent(cycle uint64, direction Direction, from, to int) ScaleTriggeredEvent {
	return ScaleTriggeredEvent{
		baseEvent: newBaseEvent("scale.triggered"),
		Cycle:     cycle,
		Direction: direction,
		From:      from,
		To:        to,
	}
}

// ScaleClampedEvent is emitted when a scaling action fires but the instance
// count is already at the relevant bound, so no request is sent.
type ScaleClampedEvent struct {
	baseEvent
	Cycle     uint64    // Cycle during which the action fired
	Direction Direction // Direction the action wanted to move
	Instances int       // Current instance count
	Bound     int       // The bound that absorbed the action
}

// NewScaleClampedEvent creates a ScaleClampedEvent.
func NewScaleClampedEvent(cycle uint64, direction Direction, instances, bound int) ScaleClampedEvent {
	return ScaleClampedEvent{
		baseEvent: newBaseEvent("scale.clamped"),
		Cycle:     cycle,
		Direction: direction,
		Instances: instances,
		Bound:     bound,
	}
}

// ScaleFailedEvent is emitted when Marathon rejects or fails a scale
// request. The engine does not retry within the cycle.
type ScaleFailedEvent struct {
	baseEvent
	Cycle     uint64    // Cycle during which the request failed
	Direction Direction // Direction the request wanted to move
	From      int       // Instance count before the request
	To        int       // Requested instance count
	Error     string    // Underlying error text
}

// NewScaleFailedEvent creates a ScaleFailedEvent.
func NewScaleFailedEvent(cycle uint64, direction Direction, from, to int, errMsg string) ScaleFailedEvent {
	return ScaleFailedEvent{
		baseEvent: newBaseEvent("scale.failed"),
		Cycle:     cycle,
		Direction: direction,
		From:      from,
		To:        to,
		Error:     errMsg,
	}
}

// -----------------------------------------------------------------------------
// Instance Events
// -----------------------------------------------------------------------------

// InstancesChangedEvent is emitted when the observed instance count differs
// from the previous cycle. This covers both our own scaling actions taking
// effect and external changes (manual scaling, deployments).
type InstancesChangedEvent struct {
	baseEvent
	Previous int // Instance count observed last cycle
	Current  int // Instance count observed this cycle
}

// NewInstancesChangedEvent creates an InstancesChangedEvent.
func NewInstancesChangedEvent(previous, current int) InstancesChangedEvent {
	return InstancesChangedEvent{
		baseEvent: newBaseEvent("instances.changed"),
		Previous:  previous,
		Current:   current,
	}
}
