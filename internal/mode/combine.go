package mode

import (
	"context"

	"github.com/sourcegraph/conc"

	"github.com/mesoscale/mesoscaler/internal/errors"
)

// combineFunc merges two child verdicts into one.
type combineFunc func(a, b Verdict) Verdict

// CombinedMode evaluates two children concurrently and merges their
// verdicts. Evaluation is all or nothing: if either child fails, the
// combined mode reports no verdict at all, because acting on a
// half-observed system could scale against the missing signal.
type CombinedMode struct {
	name    string
	left    Mode
	right   Mode
	combine combineFunc
}

// NewAndMode builds a mode that scales only when both children agree.
func NewAndMode(name string, left, right Mode) *CombinedMode {
	return &CombinedMode{name: name, left: left, right: right, combine: combineAnd}
}

// NewOrMode builds a mode that scales when either child demands it.
func NewOrMode(name string, left, right Mode) *CombinedMode {
	return &CombinedMode{name: name, left: left, right: right, combine: combineOr}
}

// Name returns the mode name.
func (m *CombinedMode) Name() string { return m.name }

// Evaluate fetches both children concurrently and waits for both to
// finish before combining.
func (m *CombinedMode) Evaluate(ctx context.Context) (Verdict, error) {
	var (
		leftVerdict, rightVerdict Verdict
		leftErr, rightErr         error
		wg                        conc.WaitGroup
	)
	wg.Go(func() {
		leftVerdict, leftErr = m.left.Evaluate(ctx)
	})
	wg.Go(func() {
		rightVerdict, rightErr = m.right.Evaluate(ctx)
	})
	wg.Wait()

	if err := errors.Join(leftErr, rightErr); err != nil {
		return VerdictWithin, err
	}
	return m.combine(leftVerdict, rightVerdict), nil
}

// combineAnd requires agreement; any disagreement holds the line.
func combineAnd(a, b Verdict) Verdict {
	if a == b {
		return a
	}
	return VerdictWithin
}

// combineOr acts on either child, and a conflict resolves upward: running
// too few instances risks falling behind, running too many only costs money.
func combineOr(a, b Verdict) Verdict {
	if a == VerdictAbove || b == VerdictAbove {
		return VerdictAbove
	}
	if a == VerdictBelow || b == VerdictBelow {
		return VerdictBelow
	}
	return VerdictWithin
}
