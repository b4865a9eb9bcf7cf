package mesos

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/mesoscale/mesoscaler/internal/errors"
)

const statsJSON = `[
  {
    "executor_id": "billing_worker.4f8e2c01",
    "framework_id": "marathon",
    "statistics": {
      "cpus_limit": 1.1,
      "cpus_system_time_secs": 34.45,
      "cpus_user_time_secs": 189.76,
      "mem_limit_bytes": 312475648,
      "mem_rss_bytes": 195584000,
      "timestamp": 1424021815.102
    }
  },
  {
    "executor_id": "other_app.aa11",
    "framework_id": "marathon",
    "statistics": {
      "cpus_limit": 0.6,
      "cpus_system_time_secs": 1.0,
      "cpus_user_time_secs": 2.0,
      "mem_limit_bytes": 104857600,
      "mem_rss_bytes": 52428800,
      "timestamp": 1424021815.102
    }
  }
]`

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &Client{
		baseURL:    server.URL,
		httpClient: server.Client(),
	}
}

func TestAgentStatistics(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/slave/agent-1/monitor/statistics.json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(statsJSON)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))

	executors, err := client.AgentStatistics(context.Background(), "agent-1")
	if err != nil {
		t.Fatalf("AgentStatistics() error = %v", err)
	}
	if len(executors) != 2 {
		t.Fatalf("AgentStatistics() returned %d executors, want 2", len(executors))
	}

	stats := executors[0].Statistics
	if stats.CPUsLimit != 1.1 {
		t.Errorf("CPUsLimit = %v, want 1.1", stats.CPUsLimit)
	}
	if stats.CPUsUserTimeSecs != 189.76 {
		t.Errorf("CPUsUserTimeSecs = %v, want 189.76", stats.CPUsUserTimeSecs)
	}
	if stats.MemRSSBytes != 195584000 {
		t.Errorf("MemRSSBytes = %d, want 195584000", stats.MemRSSBytes)
	}
}

func TestAgentStatisticsServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "agent lost", http.StatusServiceUnavailable)
	}))

	_, err := client.AgentStatistics(context.Background(), "agent-1")
	if err == nil {
		t.Fatal("AgentStatistics() with 503 succeeded, want error")
	}
	if !errors.Is(err, errors.ErrMetricUnavailable) {
		t.Errorf("error %v should match ErrMetricUnavailable", err)
	}
	if !errors.IsRecoverable(err) {
		t.Errorf("error %v should be recoverable", err)
	}
}

func TestAgentStatisticsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := &Client{baseURL: server.URL, httpClient: server.Client()}
	server.Close()

	_, err := client.AgentStatistics(context.Background(), "agent-1")
	if err == nil {
		t.Fatal("AgentStatistics() against closed server succeeded, want error")
	}
	if !errors.Is(err, errors.ErrMetricUnavailable) {
		t.Errorf("error %v should match ErrMetricUnavailable", err)
	}
}

func TestAgentStatisticsBadJSON(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(`{"not":"a list"`)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))

	_, err := client.AgentStatistics(context.Background(), "agent-1")
	if err == nil {
		t.Fatal("AgentStatistics() with bad JSON succeeded, want error")
	}
	if !errors.Is(err, errors.ErrMetricUnavailable) {
		t.Errorf("error %v should match ErrMetricUnavailable", err)
	}
}

// fakeTokens hands out canned tokens and counts invalidations.
type fakeTokens struct {
	tokens        []string
	calls         atomic.Int32
	invalidations atomic.Int32
}

func (f *fakeTokens) Token(ctx context.Context) (string, error) {
	n := int(f.calls.Add(1)) - 1
	if n >= len(f.tokens) {
		n = len(f.tokens) - 1
	}
	return f.tokens[n], nil
}

func (f *fakeTokens) Invalidate() {
	f.invalidations.Add(1)
}

func TestAgentStatisticsReauth(t *testing.T) {
	var requests atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if got := r.Header.Get("Authorization"); got != "token=fresh" {
			t.Errorf("retry Authorization = %q, want token=fresh", got)
		}
		if _, err := w.Write([]byte(`[]`)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))

	tokens := &fakeTokens{tokens: []string{"stale", "fresh"}}
	client.tokens = tokens

	if _, err := client.AgentStatistics(context.Background(), "agent-1"); err != nil {
		t.Fatalf("AgentStatistics() after re-auth error = %v", err)
	}
	if got := tokens.invalidations.Load(); got != 1 {
		t.Errorf("invalidations = %d, want 1", got)
	}
	if got := requests.Load(); got != 2 {
		t.Errorf("requests = %d, want 2", got)
	}
}

func TestCPUTotal(t *testing.T) {
	s := Statistics{CPUsUserTimeSecs: 189.76, CPUsSystemTimeSecs: 34.45}
	want := 224.21
	if got := s.CPUTotal(); got != want {
		t.Errorf("CPUTotal() = %v, want %v", got, want)
	}
}

func TestStatisticsForTask(t *testing.T) {
	executors := []Executor{
		{ExecutorID: "app.task-1", Statistics: Statistics{MemRSSBytes: 100}},
		{ExecutorID: "app.task-2", Statistics: Statistics{MemRSSBytes: 200}},
	}

	stats, ok := StatisticsForTask(executors, "app.task-2")
	if !ok {
		t.Fatal("StatisticsForTask() = false, want true")
	}
	if stats.MemRSSBytes != 200 {
		t.Errorf("MemRSSBytes = %d, want 200", stats.MemRSSBytes)
	}

	if _, ok := StatisticsForTask(executors, "app.task-3"); ok {
		t.Error("StatisticsForTask() for unknown task = true, want false")
	}
}
