package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/storm-altitude-map/internal/domain"
	"github.com/couchcryptid/storm-altitude-map/internal/observability"
)

// publishQueueSize bounds frames waiting for slow renderers. When full the
// oldest queued frame is dropped.
const publishQueueSize = 32

// publisher delivers frames to renderers from a single goroutine, in the
// order they were enqueued. Enqueue never blocks on a renderer.
type publisher struct {
	logger    *slog.Logger
	metrics   *observability.Metrics
	timeout   time.Duration
	renderers []Renderer

	mu     sync.Mutex
	queue  []domain.Frame
	closed bool
	wake   chan struct{}

	cancel context.CancelFunc
	done   chan struct{}
}

func newPublisher(logger *slog.Logger, metrics *observability.Metrics, timeout time.Duration, renderers []Renderer) *publisher {
	ctx, cancel := context.WithCancel(context.Background())
	p := &publisher{
		logger:    logger,
		metrics:   metrics,
		timeout:   timeout,
		renderers: renderers,
		wake:      make(chan struct{}, 1),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go p.run(ctx)
	return p
}

// enqueue schedules frame for delivery. Frames enqueued after close are discarded.
func (p *publisher) enqueue(frame domain.Frame) {
	if len(p.renderers) == 0 {
		return
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	if len(p.queue) == publishQueueSize {
		p.queue = p.queue[1:]
		for _, r := range p.renderers {
			p.metrics.FramesPublished.WithLabelValues(rendererName(r), "dropped").Inc()
		}
		p.logger.Warn("render queue full, dropping oldest frame", "queued", publishQueueSize)
	}
	p.queue = append(p.queue, frame)
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *publisher) run(ctx context.Context) {
	defer close(p.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.wake:
		}
		for {
			frame, ok := p.next()
			if !ok {
				break
			}
			p.publish(ctx, frame)
			if ctx.Err() != nil {
				return
			}
		}
	}
}

func (p *publisher) next() (domain.Frame, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) == 0 {
		return domain.Frame{}, false
	}
	frame := p.queue[0]
	p.queue = p.queue[1:]
	return frame, true
}

// publish sends frame to every renderer. A failing renderer is logged and
// does not stop the others.
func (p *publisher) publish(ctx context.Context, frame domain.Frame) {
	for _, r := range p.renderers {
		rctx, cancel := context.WithTimeout(ctx, p.timeout)
		err := r.Render(rctx, frame)
		cancel()
		name := rendererName(r)
		if err != nil {
			p.metrics.FramesPublished.WithLabelValues(name, "error").Inc()
			p.logger.Warn("render frame failed", "renderer", name, "error", err)
			continue
		}
		p.metrics.FramesPublished.WithLabelValues(name, "success").Inc()
	}
}

// close discards queued frames, cancels an in-flight render and waits for
// the goroutine to exit.
func (p *publisher) close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.queue = nil
	p.mu.Unlock()

	p.cancel()
	<-p.done
}

// Named is implemented by renderers that label their metrics.
type Named interface {
	Name() string
}

func rendererName(r Renderer) string {
	if n, ok := r.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", r)
}
