// Package event provides a pub-sub event bus for decoupled reporting of
// scaling activity.
//
// The engine publishes one event per notable occurrence (a completed cycle,
// a triggered scale action, a skipped cycle) without knowing who listens.
// Observers such as the telemetry exporter and the watch dashboard subscribe
// to the events they care about and never touch the engine directly.
//
// # Main Types
//
//   - [Event]: Interface that all events must implement, providing EventType() and Timestamp()
//   - [Bus]: Synchronous pub-sub event dispatcher with thread-safe operations
//   - [Handler]: Function type for event handlers (func(Event))
//
// # Event Categories
//
// Cycle events:
//   - [CycleCompletedEvent]: Emitted at the end of every successful evaluation cycle
//   - [CycleSkippedEvent]: Emitted when a cycle is abandoned due to a recoverable error
//
// Scaling events:
//   - [ScaleTriggeredEvent]: Emitted when a scale request is sent to Marathon
//   - [ScaleClampedEvent]: Emitted when an action fires at an instance bound and becomes a no-op
//   - [ScaleFailedEvent]: Emitted when Marathon rejects or fails a scale request
//
// Instance events:
//   - [InstancesChangedEvent]: Emitted when the observed instance count changes between cycles
//
// # Thread Safety
//
// The [Bus] type is safe for concurrent use. Multiple goroutines can publish
// and subscribe concurrently. Handlers are called synchronously and protected
// against panics - a panicking handler will not prevent other handlers from
// being called.
//
// # Basic Usage
//
//	bus := event.NewBus()
//
//	// Subscribe to specific event types
//	bus.Subscribe("scale.triggered", func(e event.Event) {
//	    scaled := e.(event.ScaleTriggeredEvent)
//	    log.Printf("scaled %s: %d -> %d", scaled.Direction, scaled.From, scaled.To)
//	})
//
//	// Subscribe to all events (useful for logging)
//	bus.SubscribeAll(func(e event.Event) {
//	    log.Printf("Event: %s at %v", e.EventType(), e.Timestamp())
//	})
//
//	// Publish events
//	bus.Publish(event.NewScaleTriggeredEvent(12, event.DirectionUp, 4, 6))
//
//	// Unsubscribe when done
//	id := bus.Subscribe("cycle.completed", handler)
//	bus.Unsubscribe(id)
//
// # Event Type Naming Convention
//
// Event types follow the pattern "category.action":
//   - cycle.completed, cycle.skipped
//   - scale.triggered, scale.clamped, scale.failed
//   - instances.changed
package event
