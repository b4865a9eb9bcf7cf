package mode

import (
	"context"
	"testing"

	"github.com/mesoscale/mesoscaler/internal/errors"
	"github.com/mesoscale/mesoscaler/internal/signal"
)

type stubSignal struct {
	dimension string
	value     float64
	err       error
}

func (s *stubSignal) Dimension() string { return s.dimension }

func (s *stubSignal) Fetch(ctx context.Context) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.value, nil
}

func TestSingleModeEvaluate(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  Verdict
	}{
		{"above", 92.5, VerdictAbove},
		{"within", 55, VerdictWithin},
		{"below", 5, VerdictBelow},
		{"at lower bound", 20, VerdictWithin},
		{"at upper bound", 80, VerdictWithin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &stubSignal{dimension: signal.DimensionCPU, value: tt.value}
			m := NewSingleMode(ModeCPU, provider, Band{Min: 20, Max: 80})

			got, err := m.Evaluate(context.Background())
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSingleModeEvaluateError(t *testing.T) {
	cause := errors.NewMetricError("agent down", errors.ErrMetricUnavailable)
	m := NewSingleMode(ModeCPU, &stubSignal{err: cause}, Band{Min: 20, Max: 80})

	verdict, err := m.Evaluate(context.Background())
	if err == nil {
		t.Fatal("expected fetch error to fail the evaluation")
	}
	if !errors.Is(err, errors.ErrMetricUnavailable) {
		t.Errorf("error should match ErrMetricUnavailable, got %v", err)
	}
	if verdict != VerdictWithin {
		t.Errorf("failed evaluation verdict = %v, want %v", verdict, VerdictWithin)
	}
}

func TestSingleModeAccessors(t *testing.T) {
	band := Band{Min: 1000, Max: 5000}
	m := NewSingleMode(ModeQueue, &stubSignal{dimension: signal.DimensionQueue}, band)

	if m.Name() != ModeQueue {
		t.Errorf("Name() = %q, want %q", m.Name(), ModeQueue)
	}
	if m.Band() != band {
		t.Errorf("Band() = %+v, want %+v", m.Band(), band)
	}
}
