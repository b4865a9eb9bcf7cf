package scaling

// Action is what the tracker hands the engine after absorbing a verdict.
type Action int

const (
	// ActionHold means keep the current instance count.
	ActionHold Action = iota

	// ActionScaleUp means the configured number of consecutive above
	// verdicts arrived; grow the application.
	ActionScaleUp

	// ActionScaleDown means the configured number of consecutive below
	// verdicts arrived; shrink the application.
	ActionScaleDown
)

// String returns the action name used in logs.
func (a Action) String() string {
	switch a {
	case ActionScaleUp:
		return "scale_up"
	case ActionScaleDown:
		return "scale_down"
	default:
		return "hold"
	}
}
