package mode

// Verdict is the outcome of one evaluation: the observed signal sits above,
// within, or below its configured range.
type Verdict int

const (
	// VerdictBelow means the signal fell under the range; demand shrank.
	VerdictBelow Verdict = -1

	// VerdictWithin means the signal sits inside the range, bounds included.
	VerdictWithin Verdict = 0

	// VerdictAbove means the signal exceeded the range; demand grew.
	VerdictAbove Verdict = 1
)

// String returns the verdict name used in logs and events.
func (v Verdict) String() string {
	switch v {
	case VerdictBelow:
		return "below"
	case VerdictAbove:
		return "above"
	case VerdictWithin:
		return "within"
	default:
		return "unknown"
	}
}
