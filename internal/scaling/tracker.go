package scaling

import "github.com/mesoscale/mesoscaler/internal/mode"

// Tracker dampens verdict noise. A single spike never scales anything:
// only an unbroken streak of identical verdicts, as long as the configured
// factor, releases an action. Any interruption starts the count over.
//
// At most one streak is ever non-zero. An opposite verdict abandons the
// running streak and starts its own; a within verdict abandons both.
// Skipped cycles never reach the tracker, so unavailable metrics neither
// extend nor break a streak.
//
// The tracker is owned by the engine's loop goroutine and is not safe for
// concurrent use.
type Tracker struct {
	upAfter   int
	downAfter int

	above int
	below int
}

// NewTracker builds a tracker that releases a scale-up after upAfter
// consecutive above verdicts and a scale-down after downAfter consecutive
// below verdicts.
func NewTracker(upAfter, downAfter int) *Tracker {
	return &Tracker{upAfter: upAfter, downAfter: downAfter}
}

// Observe absorbs one verdict and reports the action it completes, if any.
// A released action resets both streaks, so the next scale in either
// direction needs a full fresh streak.
func (t *Tracker) Observe(verdict mode.Verdict) Action {
	switch verdict {
	case mode.VerdictAbove:
		t.below = 0
		t.above++
		if t.above >= t.upAfter {
			t.Reset()
			return ActionScaleUp
		}
	case mode.VerdictBelow:
		t.above = 0
		t.below++
		if t.below >= t.downAfter {
			t.Reset()
			return ActionScaleDown
		}
	default:
		t.Reset()
	}
	return ActionHold
}

// Counters reports the current streak lengths.
func (t *Tracker) Counters() (above, below int) {
	return t.above, t.below
}

// Reset clears both streaks.
func (t *Tracker) Reset() {
	t.above, t.below = 0, 0
}
