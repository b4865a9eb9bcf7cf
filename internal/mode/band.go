package mode

// Band is the acceptable range for one signal dimension.
type Band struct {
	Min float64
	Max float64
}

// Classify places a value relative to the band. Both bounds belong to the
// band: a value equal to Min or Max is within, never a scaling trigger.
func (b Band) Classify(value float64) Verdict {
	switch {
	case value < b.Min:
		return VerdictBelow
	case value > b.Max:
		return VerdictAbove
	default:
		return VerdictWithin
	}
}
