package event

import (
	"testing"
	"time"
)

func TestEventTypes(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want string
	}{
		{
			name: "cycle completed",
			ev:   NewCycleCompletedEvent(3, "within", map[string]float64{"cpu": 55.0}, 4, 120*time.Millisecond),
			want: "cycle.completed",
		},
		{
			name: "cycle skipped",
			ev:   NewCycleSkippedEvent(4, "metric_unavailable", "no running tasks"),
			want: "cycle.skipped",
		},
		{
			name: "scale triggered",
			ev:   NewScaleTriggeredEvent(5, DirectionUp, 4, 6),
			want: "scale.triggered",
		},
		{
			name: "scale clamped",
			ev:   NewScaleClampedEvent(6, DirectionDown, 1, 1),
			want: "scale.clamped",
		},
		{
			name: "scale failed",
			ev:   NewScaleFailedEvent(7, DirectionUp, 4, 6, "503 from marathon"),
			want: "scale.failed",
		},
		{
			name: "instances changed",
			ev:   NewInstancesChangedEvent(4, 6),
			want: "instances.changed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ev.EventType(); got != tt.want {
				t.Errorf("EventType() = %q, want %q", got, tt.want)
			}
			if tt.ev.Timestamp().IsZero() {
				t.Error("Timestamp() is zero, want current time")
			}
		})
	}
}

func TestCycleCompletedEventFields(t *testing.T) {
	values := map[string]float64{"cpu": 72.4, "memory": 41.0}
	ev := NewCycleCompletedEvent(42, "above", values, 8, 250*time.Millisecond)

	if ev.Cycle != 42 {
		t.Errorf("Cycle = %d, want 42", ev.Cycle)
	}
	if ev.Verdict != "above" {
		t.Errorf("Verdict = %q, want %q", ev.Verdict, "above")
	}
	if ev.Values["cpu"] != 72.4 {
		t.Errorf("Values[cpu] = %v, want 72.4", ev.Values["cpu"])
	}
	if ev.Instances != 8 {
		t.Errorf("Instances = %d, want 8", ev.Instances)
	}
	if ev.Elapsed != 250*time.Millisecond {
		t.Errorf("Elapsed = %v, want 250ms", ev.Elapsed)
	}
}

func TestScaleTriggeredEventFields(t *testing.T) {
	ev := NewScaleTriggeredEvent(9, DirectionDown, 6, 4)

	if ev.Direction != DirectionDown {
		t.Errorf("Direction = %q, want %q", ev.Direction, DirectionDown)
	}
	if ev.From != 6 {
		t.Errorf("From = %d, want 6", ev.From)
	}
	if ev.To != 4 {
		t.Errorf("To = %d, want 4", ev.To)
	}
}

func TestScaleClampedEventFields(t *testing.T) {
	ev := NewScaleClampedEvent(11, DirectionUp, 10, 10)

	if ev.Instances != 10 {
		t.Errorf("Instances = %d, want 10", ev.Instances)
	}
	if ev.Bound != 10 {
		t.Errorf("Bound = %d, want 10", ev.Bound)
	}
}

func TestInstancesChangedEventFields(t *testing.T) {
	ev := NewInstancesChangedEvent(4, 7)

	if ev.Previous != 4 {
		t.Errorf("Previous = %d, want 4", ev.Previous)
	}
	if ev.Current != 7 {
		t.Errorf("Current = %d, want 7", ev.Current)
	}
}
