package signal

import (
	"context"

	"github.com/mesoscale/mesoscaler/internal/logging"
)

// depthReader is the slice of the queue client the provider needs.
type depthReader interface {
	Depth(ctx context.Context) (int, error)
}

// QueueProvider reports the approximate number of visible messages on the
// work queue. Unlike CPU and memory this is an absolute count, not a
// percentage; the configured range is interpreted in messages.
type QueueProvider struct {
	queue depthReader
	log   *logging.Logger
}

// NewQueueProvider builds a queue depth provider.
func NewQueueProvider(queue depthReader, log *logging.Logger) *QueueProvider {
	if log == nil {
		log = logging.NopLogger()
	}
	return &QueueProvider{queue: queue, log: log}
}

// Dimension returns "queue".
func (p *QueueProvider) Dimension() string {
	return DimensionQueue
}

// Fetch returns the current queue depth.
func (p *QueueProvider) Fetch(ctx context.Context) (float64, error) {
	depth, err := p.queue.Depth(ctx)
	if err != nil {
		return 0, err
	}
	p.log.Debug("sampled queue depth", "messages", depth)
	return float64(depth), nil
}
