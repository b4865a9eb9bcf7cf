// Package mesos reads per-task resource statistics from Mesos agents
// through the DC/OS admin router. The scaler samples these counters to
// compute CPU and memory utilization for an application's tasks.
package mesos

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mesoscale/mesoscaler/internal/config"
	"github.com/mesoscale/mesoscaler/internal/errors"
)

// TokenSource supplies ACS tokens. The marathon package's token source
// satisfies this; both clients authenticate against the same cluster.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate()
}

// Executor is one executor entry from an agent's statistics endpoint.
// Marathon command tasks run one executor per task with the executor ID
// equal to the task ID.
type Executor struct {
	ExecutorID  string     `json:"executor_id"`
	FrameworkID string     `json:"framework_id"`
	Statistics  Statistics `json:"statistics"`
}

// Statistics is the resource counter snapshot for one executor.
// CPU times are cumulative seconds; a utilization figure requires two
// snapshots and a delta over their timestamps.
type Statistics struct {
	CPUsLimit          float64 `json:"cpus_limit"`
	CPUsSystemTimeSecs float64 `json:"cpus_system_time_secs"`
	CPUsUserTimeSecs   float64 `json:"cpus_user_time_secs"`
	MemLimitBytes      int64   `json:"mem_limit_bytes"`
	MemRSSBytes        int64   `json:"mem_rss_bytes"`
	Timestamp          float64 `json:"timestamp"`
}

// CPUTotal returns cumulative CPU seconds consumed in user and kernel mode.
func (s Statistics) CPUTotal() float64 {
	return s.CPUsUserTimeSecs + s.CPUsSystemTimeSecs
}

// Client reads agent statistics through the admin router.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// New creates a Client for the cluster the Marathon settings point at.
// The token source is shared with the Marathon client; pass nil for
// unauthenticated clusters.
func New(cfg *config.MarathonConfig, httpClient *http.Client, tokens TokenSource) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		httpClient: httpClient,
		tokens:     tokens,
	}
}

// AgentStatistics fetches the executor statistics published by one agent.
// Failures are metric errors: the loop treats them as an unavailable
// signal and skips the cycle.
func (c *Client) AgentStatistics(ctx context.Context, agentID string) ([]Executor, error) {
	path := "/slave/" + agentID + "/monitor/statistics.json"

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, errors.NewMetricError("create statistics request", err)
		}
		req.Header.Set("Accept", "application/json")

		if c.tokens != nil {
			token, err := c.tokens.Token(ctx)
			if err != nil {
				return nil, err
			}
			req.Header.Set("Authorization", "token="+token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, errors.NewMetricError("agent statistics request failed", err)
		}

		if resp.StatusCode == http.StatusUnauthorized && c.tokens != nil && attempt == 0 {
			_ = resp.Body.Close()
			c.tokens.Invalidate()
			continue
		}

		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return nil, errors.NewMetricError(
				fmt.Sprintf("agent %s returned status %d", agentID, resp.StatusCode),
				errors.ErrMetricUnavailable)
		}

		var executors []Executor
		if err := json.NewDecoder(resp.Body).Decode(&executors); err != nil {
			return nil, errors.NewMetricError("decode agent statistics", err)
		}
		return executors, nil
	}
}

// StatisticsForTask finds the statistics entry for a task in an agent's
// executor list. Returns false when the agent does not report the task,
// which happens briefly while a task starts or right after it dies.
func StatisticsForTask(executors []Executor, taskID string) (Statistics, bool) {
	for _, e := range executors {
		if e.ExecutorID == taskID {
			return e.Statistics, true
		}
	}
	return Statistics{}, false
}
