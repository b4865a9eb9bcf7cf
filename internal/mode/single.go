package mode

import (
	"context"

	"github.com/mesoscale/mesoscaler/internal/signal"
)

// SingleMode evaluates one signal dimension against its band.
type SingleMode struct {
	name     string
	provider signal.Provider
	band     Band
}

// NewSingleMode builds a single-dimension mode.
func NewSingleMode(name string, provider signal.Provider, band Band) *SingleMode {
	return &SingleMode{name: name, provider: provider, band: band}
}

// Name returns the mode name.
func (m *SingleMode) Name() string { return m.name }

// Band returns the configured range.
func (m *SingleMode) Band() Band { return m.band }

// Evaluate fetches a fresh value and classifies it.
func (m *SingleMode) Evaluate(ctx context.Context) (Verdict, error) {
	value, err := m.provider.Fetch(ctx)
	if err != nil {
		return VerdictWithin, err
	}
	return m.band.Classify(value), nil
}
