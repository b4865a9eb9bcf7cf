package signal

import (
	"context"
	"testing"
	"time"

	"github.com/mesoscale/mesoscaler/internal/errors"
	"github.com/mesoscale/mesoscaler/internal/marathon"
	"github.com/mesoscale/mesoscaler/internal/mesos"
)

// ============================================================================
// Fakes
// ============================================================================

type fakeTasks struct {
	tasks []marathon.Task
	err   error
	calls int
	appID string
}

func (f *fakeTasks) RunningTasks(ctx context.Context, appID string) ([]marathon.Task, error) {
	f.calls++
	f.appID = appID
	if f.err != nil {
		return nil, f.err
	}
	return f.tasks, nil
}

// fakeStats serves a sequence of responses per agent; repeated calls for
// the same agent advance through the sequence and stick on the last entry.
type fakeStats struct {
	byAgent map[string][][]mesos.Executor
	err     error
	calls   int
	counts  map[string]int
}

func (f *fakeStats) AgentStatistics(ctx context.Context, agentID string) ([]mesos.Executor, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.counts == nil {
		f.counts = make(map[string]int)
	}
	seq := f.byAgent[agentID]
	if len(seq) == 0 {
		return nil, nil
	}
	i := f.counts[agentID]
	f.counts[agentID]++
	if i >= len(seq) {
		i = len(seq) - 1
	}
	return seq[i], nil
}

func executor(taskID string, stats mesos.Statistics) mesos.Executor {
	return mesos.Executor{ExecutorID: taskID, Statistics: stats}
}

// ============================================================================
// Snapshot Helper
// ============================================================================

func TestSnapshotStatistics(t *testing.T) {
	tasks := []marathon.Task{
		{ID: "app.t1", SlaveID: "agent-1"},
		{ID: "app.t2", SlaveID: "agent-1"},
		{ID: "app.t3", SlaveID: "agent-2"},
	}
	stats := &fakeStats{byAgent: map[string][][]mesos.Executor{
		"agent-1": {{
			executor("app.t1", mesos.Statistics{MemRSSBytes: 100}),
			executor("app.t2", mesos.Statistics{MemRSSBytes: 200}),
		}},
		"agent-2": {{
			executor("unrelated.t9", mesos.Statistics{MemRSSBytes: 999}),
		}},
	}}

	snapshot, err := snapshotStatistics(context.Background(), stats, tasks)
	if err != nil {
		t.Fatalf("snapshotStatistics() error = %v", err)
	}

	if stats.calls != 2 {
		t.Errorf("agent calls = %d, want 2 (one per distinct agent)", stats.calls)
	}
	if len(snapshot) != 2 {
		t.Fatalf("snapshot size = %d, want 2", len(snapshot))
	}
	if snapshot["app.t1"].MemRSSBytes != 100 {
		t.Errorf("app.t1 rss = %d, want 100", snapshot["app.t1"].MemRSSBytes)
	}
	if _, ok := snapshot["app.t3"]; ok {
		t.Error("app.t3 should be absent: its agent does not report it")
	}
}

func TestSnapshotStatisticsAgentError(t *testing.T) {
	tasks := []marathon.Task{{ID: "app.t1", SlaveID: "agent-1"}}
	stats := &fakeStats{err: errors.NewMetricError("boom", errors.ErrMetricUnavailable)}

	_, err := snapshotStatistics(context.Background(), stats, tasks)
	if err == nil {
		t.Fatal("expected error when agent statistics fail")
	}
	if !errors.Is(err, errors.ErrMetricUnavailable) {
		t.Errorf("error should match ErrMetricUnavailable, got %v", err)
	}
}

// ============================================================================
// Sleep
// ============================================================================

func TestSleepCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sleep(ctx, time.Minute)
	if err == nil {
		t.Fatal("expected error from canceled sleep")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error should wrap context.Canceled, got %v", err)
	}
	if !errors.Is(err, errors.ErrMetricUnavailable) {
		t.Errorf("error should match ErrMetricUnavailable, got %v", err)
	}
}

func TestSleepElapses(t *testing.T) {
	if err := sleep(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("sleep() error = %v", err)
	}
}
