// Package mode turns signals into verdicts.
//
// A Mode evaluates one or more signals against their configured ranges and
// yields a single Verdict per evaluation cycle. Single-dimension modes wrap
// one provider; combined modes run two children concurrently and merge
// their verdicts. New modes plug in through Register, so the set of
// trigger modes is open.
package mode

import "context"

// Mode is one node of the evaluation hierarchy.
type Mode interface {
	// Name identifies the mode in configuration and logs.
	Name() string

	// Evaluate observes the mode's signals and classifies them. The
	// verdict is meaningful only when the error is nil; callers must
	// treat an error as "nothing observed this cycle".
	Evaluate(ctx context.Context) (Verdict, error)
}
