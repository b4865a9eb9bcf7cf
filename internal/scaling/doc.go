// Package scaling holds the control loop that keeps one Marathon
// application inside its configured signal band.
//
// A [Tracker] absorbs the verdict stream and releases an action only after
// an unbroken streak of identical verdicts reaches the configured factor,
// so a single noisy reading never moves the instance count. The [Engine]
// drives evaluation cycles on a fixed cadence: read the deployed instance
// count, evaluate the trigger mode, feed the tracker, and apply any
// released action through the orchestrator using the multiplier and the
// instance bounds.
//
// The engine owns all cycle state on its loop goroutine. Observers follow
// along through the event bus rather than by sharing that state.
package scaling
