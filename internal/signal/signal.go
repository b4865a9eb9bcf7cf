// Package signal defines the utilization signals the scaler observes.
//
// A Provider yields one fresh observation per call: a percentage for CPU
// and memory, a message count for queue depth. Providers never cache;
// every Fetch reflects the system at the moment the evaluation cycle runs.
package signal

import (
	"context"
	"time"

	"github.com/mesoscale/mesoscaler/internal/errors"
	"github.com/mesoscale/mesoscaler/internal/marathon"
	"github.com/mesoscale/mesoscaler/internal/mesos"
)

// Dimension names. These appear in logs, events, and metric labels.
const (
	DimensionCPU    = "cpu"
	DimensionMemory = "memory"
	DimensionQueue  = "queue"
)

// Provider supplies one observed value of a single dimension.
type Provider interface {
	// Dimension names the signal this provider observes.
	Dimension() string

	// Fetch observes a fresh value. A failure means the signal is
	// unavailable for this cycle; it is never substituted with a default.
	Fetch(ctx context.Context) (float64, error)
}

// taskLister is the slice of the Marathon client providers need.
type taskLister interface {
	RunningTasks(ctx context.Context, appID string) ([]marathon.Task, error)
}

// statsReader is the slice of the Mesos client providers need.
type statsReader interface {
	AgentStatistics(ctx context.Context, agentID string) ([]mesos.Executor, error)
}

// snapshotStatistics reads counters for every task, hitting each hosting
// agent once. Tasks whose agent does not report them (still starting, just
// died) are absent from the result.
func snapshotStatistics(ctx context.Context, stats statsReader, tasks []marathon.Task) (map[string]mesos.Statistics, error) {
	byAgent := make(map[string][]string)
	for _, task := range tasks {
		byAgent[task.SlaveID] = append(byAgent[task.SlaveID], task.ID)
	}

	out := make(map[string]mesos.Statistics, len(tasks))
	for agentID, taskIDs := range byAgent {
		executors, err := stats.AgentStatistics(ctx, agentID)
		if err != nil {
			return nil, err
		}
		for _, taskID := range taskIDs {
			if s, ok := mesos.StatisticsForTask(executors, taskID); ok {
				out[taskID] = s
			}
		}
	}
	return out, nil
}

// sleep waits for d or until the context is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return errors.NewMetricError("sampling interrupted", ctx.Err())
	case <-timer.C:
		return nil
	}
}
