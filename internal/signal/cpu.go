package signal

import (
	"context"
	"time"

	"github.com/mesoscale/mesoscaler/internal/errors"
	"github.com/mesoscale/mesoscaler/internal/logging"
)

// defaultSampleGap is the pause between the two CPU counter snapshots.
const defaultSampleGap = time.Second

// CPUProvider reports application CPU utilization as a percentage of the
// configured CPU limit, averaged over all running tasks.
//
// Mesos exposes cumulative CPU time, so a single read says nothing about
// the current rate. The provider takes two snapshots a moment apart and
// derives utilization from the delta.
type CPUProvider struct {
	tasks     taskLister
	stats     statsReader
	appID     string
	sampleGap time.Duration
	log       *logging.Logger
}

// NewCPUProvider builds a CPU provider for the given application.
func NewCPUProvider(tasks taskLister, stats statsReader, appID string, log *logging.Logger) *CPUProvider {
	if log == nil {
		log = logging.NopLogger()
	}
	return &CPUProvider{
		tasks:     tasks,
		stats:     stats,
		appID:     appID,
		sampleGap: defaultSampleGap,
		log:       log,
	}
}

// Dimension returns "cpu".
func (p *CPUProvider) Dimension() string {
	return DimensionCPU
}

// Fetch samples CPU counters twice and returns the average utilization
// percentage across tasks that appear in both snapshots.
func (p *CPUProvider) Fetch(ctx context.Context) (float64, error) {
	tasks, err := p.tasks.RunningTasks(ctx, p.appID)
	if err != nil {
		return 0, err
	}
	if len(tasks) == 0 {
		return 0, errors.NewMetricError("no running tasks", errors.ErrNoRunningTasks).
			WithDimension(DimensionCPU)
	}

	first, err := snapshotStatistics(ctx, p.stats, tasks)
	if err != nil {
		return 0, err
	}
	if err := sleep(ctx, p.sampleGap); err != nil {
		return 0, err
	}
	second, err := snapshotStatistics(ctx, p.stats, tasks)
	if err != nil {
		return 0, err
	}

	var sum float64
	var counted int
	for _, task := range tasks {
		s1, ok1 := first[task.ID]
		s2, ok2 := second[task.ID]
		if !ok1 || !ok2 {
			continue
		}
		dt := s2.Timestamp - s1.Timestamp
		if dt <= 0 || s2.CPUsLimit <= 0 {
			continue
		}
		usage := (s2.CPUTotal() - s1.CPUTotal()) / dt / s2.CPUsLimit * 100
		p.log.Debug("sampled task cpu",
			"task_id", task.ID,
			"usage_pct", usage,
		)
		sum += usage
		counted++
	}
	if counted == 0 {
		return 0, errors.NewMetricError("no usable cpu samples", errors.ErrMetricUnavailable).
			WithDimension(DimensionCPU)
	}
	return sum / float64(counted), nil
}
