package signal

import (
	"context"
	"testing"

	"github.com/mesoscale/mesoscaler/internal/errors"
)

type stubProvider struct {
	dimension string
	value     float64
	err       error
}

func (s *stubProvider) Dimension() string { return s.dimension }

func (s *stubProvider) Fetch(ctx context.Context) (float64, error) {
	return s.value, s.err
}

func TestRecorder(t *testing.T) {
	stub := &stubProvider{dimension: DimensionCPU, value: 72.4}
	rec := NewRecorder(stub)

	if rec.Dimension() != DimensionCPU {
		t.Errorf("Dimension() = %q, want %q", rec.Dimension(), DimensionCPU)
	}
	if _, ok := rec.Last(); ok {
		t.Error("Last() should report nothing before the first fetch")
	}

	got, err := rec.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got != 72.4 {
		t.Errorf("Fetch() = %v, want 72.4", got)
	}

	value, ok := rec.Last()
	if !ok || value != 72.4 {
		t.Errorf("Last() = (%v, %v), want (72.4, true)", value, ok)
	}

	rec.Reset()
	if _, ok := rec.Last(); ok {
		t.Error("Last() should report nothing after Reset")
	}
}

func TestRecorderFetchError(t *testing.T) {
	stub := &stubProvider{dimension: DimensionQueue, value: 10}
	rec := NewRecorder(stub)

	if _, err := rec.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	stub.err = errors.NewMetricError("gone", errors.ErrMetricUnavailable)
	if _, err := rec.Fetch(context.Background()); err == nil {
		t.Fatal("expected fetch error to pass through")
	}

	// A failed fetch keeps the previous recording untouched.
	value, ok := rec.Last()
	if !ok || value != 10 {
		t.Errorf("Last() = (%v, %v), want (10, true)", value, ok)
	}
}
