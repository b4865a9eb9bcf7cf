package signal

import (
	"context"

	"github.com/mesoscale/mesoscaler/internal/errors"
	"github.com/mesoscale/mesoscaler/internal/logging"
)

// MemoryProvider reports application RSS as a percentage of the configured
// memory limit, averaged over all running tasks. Memory is a gauge, so a
// single snapshot suffices.
type MemoryProvider struct {
	tasks taskLister
	stats statsReader
	appID string
	log   *logging.Logger
}

// NewMemoryProvider builds a memory provider for the given application.
func NewMemoryProvider(tasks taskLister, stats statsReader, appID string, log *logging.Logger) *MemoryProvider {
	if log == nil {
		log = logging.NopLogger()
	}
	return &MemoryProvider{tasks: tasks, stats: stats, appID: appID, log: log}
}

// Dimension returns "memory".
func (p *MemoryProvider) Dimension() string {
	return DimensionMemory
}

// Fetch returns the average RSS utilization percentage across tasks the
// agents report statistics for.
func (p *MemoryProvider) Fetch(ctx context.Context) (float64, error) {
	tasks, err := p.tasks.RunningTasks(ctx, p.appID)
	if err != nil {
		return 0, err
	}
	if len(tasks) == 0 {
		return 0, errors.NewMetricError("no running tasks", errors.ErrNoRunningTasks).
			WithDimension(DimensionMemory)
	}

	snapshot, err := snapshotStatistics(ctx, p.stats, tasks)
	if err != nil {
		return 0, err
	}

	var sum float64
	var counted int
	for _, task := range tasks {
		s, ok := snapshot[task.ID]
		if !ok || s.MemLimitBytes <= 0 {
			continue
		}
		usage := float64(s.MemRSSBytes) / float64(s.MemLimitBytes) * 100
		p.log.Debug("sampled task memory",
			"task_id", task.ID,
			"usage_pct", usage,
		)
		sum += usage
		counted++
	}
	if counted == 0 {
		return 0, errors.NewMetricError("no usable memory samples", errors.ErrMetricUnavailable).
			WithDimension(DimensionMemory)
	}
	return sum / float64(counted), nil
}
