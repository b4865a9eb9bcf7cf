package signal

import (
	"context"
	"sync"
)

// Recorder wraps a Provider and remembers the most recent value it
// returned. The engine uses recorders to report per-dimension values in
// cycle events without reaching into the mode tree.
type Recorder struct {
	provider Provider

	mu    sync.Mutex
	value float64
	seen  bool
}

// NewRecorder wraps provider.
func NewRecorder(provider Provider) *Recorder {
	return &Recorder{provider: provider}
}

// Dimension returns the wrapped provider's dimension.
func (r *Recorder) Dimension() string {
	return r.provider.Dimension()
}

// Fetch delegates to the wrapped provider and records the value on success.
func (r *Recorder) Fetch(ctx context.Context) (float64, error) {
	value, err := r.provider.Fetch(ctx)
	if err != nil {
		return 0, err
	}
	r.mu.Lock()
	r.value = value
	r.seen = true
	r.mu.Unlock()
	return value, nil
}

// Last reports the most recent successfully fetched value. The boolean is
// false until the first successful Fetch.
func (r *Recorder) Last() (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value, r.seen
}

// Reset clears the recorded value. Called at the start of a cycle so a
// failed fetch does not report a stale reading from the previous cycle.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.value, r.seen = 0, false
	r.mu.Unlock()
}
