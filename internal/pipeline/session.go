package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/storm-altitude-map/internal/domain"
	"github.com/couchcryptid/storm-altitude-map/internal/export"
	"github.com/couchcryptid/storm-altitude-map/internal/observability"
	"github.com/jonboulle/clockwork"
)

// DefaultDebounce is the quiet period applied to numeric and selector input.
const DefaultDebounce = 200 * time.Millisecond

// Renderer receives a frame after every recompute, from a single delivery
// goroutine. Implementations draw or forward it; spatial clustering and heat
// density are their concern.
type Renderer interface {
	Render(ctx context.Context, frame domain.Frame) error
}

// Options configures a Session. Zero values fall back to defaults.
type Options struct {
	Clock         clockwork.Clock
	Debounce      time.Duration
	Seed          uint64
	RenderTimeout time.Duration
	Initial       *domain.FilterState
	Wind          []domain.WindReport
	LoadError     error
}

// View is a read-only snapshot of the session's derived state.
type View struct {
	State        domain.FilterState      `json:"state"`
	Summary      domain.AggregateSummary `json:"summary"`
	Presentation domain.Presentation     `json:"presentation"`
	ComputedAt   time.Time               `json:"computed_at"`
	Recomputes   uint64                  `json:"recomputes"`
	Pending      bool                    `json:"pending"`
	LoadError    string                  `json:"load_error,omitempty"`
}

// Session owns the point collection and the filter state. All mutations of
// the state and all reads of the collection go through mu.
type Session struct {
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
	seed      uint64
	loadError error

	points []domain.PointRecord
	wind   []domain.WindReport

	mu         sync.Mutex
	state      domain.FilterState
	visible    []domain.PointRecord
	summary    domain.AggregateSummary
	frame      domain.Frame
	computedAt time.Time
	recomputes uint64

	publisher *publisher
	debouncer *Debouncer
}

// NewSession builds a session over an already-normalized collection and runs
// the initial recompute. points must not be modified afterwards.
func NewSession(points []domain.PointRecord, logger *slog.Logger, metrics *observability.Metrics, opts Options, renderers ...Renderer) *Session {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	delay := opts.Debounce
	if delay <= 0 {
		delay = DefaultDebounce
	}
	timeout := opts.RenderTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	state := domain.DefaultFilterState()
	if opts.Initial != nil {
		state = *opts.Initial
	}

	s := &Session{
		logger:    logger,
		metrics:   metrics,
		clock:     clock,
		seed:      opts.Seed,
		loadError: opts.LoadError,
		points:    points,
		wind:      opts.Wind,
		state:     state,
		publisher: newPublisher(logger, metrics, timeout, renderers),
	}
	s.debouncer = NewDebouncer(clock, delay, s.Recompute)
	s.Recompute()
	return s
}

// SetTier changes the tier selector; the recompute is debounced.
func (s *Session) SetTier(sel domain.TierSelector) {
	s.mu.Lock()
	s.state.Tier = sel
	s.mu.Unlock()
	s.debouncer.Trigger()
}

// SetRecencyMinutes changes the recency window; 0 disables it. The recompute is debounced.
func (s *Session) SetRecencyMinutes(minutes int) error {
	if minutes < 0 {
		return fmt.Errorf("%w: recency minutes %d", domain.ErrInvalidFilter, minutes)
	}
	s.mu.Lock()
	s.state.RecencyMinutes = minutes
	s.mu.Unlock()
	s.debouncer.Trigger()
	return nil
}

// SetDownsampleCap limits the visible subset to n points; 0 removes the cap.
// The recompute is debounced.
func (s *Session) SetDownsampleCap(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: downsample cap %d", domain.ErrInvalidFilter, n)
	}
	s.mu.Lock()
	s.state.DownsampleCap = n
	s.mu.Unlock()
	s.debouncer.Trigger()
	return nil
}

// SetClustering toggles marker clustering and recomputes immediately.
func (s *Session) SetClustering(on bool) {
	s.mu.Lock()
	s.state.Clustering = on
	s.mu.Unlock()
	s.Recompute()
}

// SetHeatmap toggles the heatmap layer and recomputes immediately.
func (s *Session) SetHeatmap(on bool) {
	s.mu.Lock()
	s.state.Heatmap = on
	s.mu.Unlock()
	s.Recompute()
}

// Flush runs a pending debounced recompute now. It reports whether one was pending.
func (s *Session) Flush() bool {
	return s.debouncer.Flush()
}

// Recompute derives the visible subset, summary and frame from the current
// state and queues the frame for every renderer. It does not wait for
// renderers; frames are delivered in recompute order.
func (s *Session) Recompute() {
	start := time.Now()

	s.mu.Lock()
	now := s.clock.Now()
	state := s.state
	visible, summary := domain.Compose(s.points, state, now, s.seed)
	frame := domain.BuildFrame(visible, s.wind, domain.SelectPresentation(state.Clustering, state.Heatmap), summary, now)
	s.visible = visible
	s.summary = summary
	s.frame = frame
	s.computedAt = now
	s.recomputes++
	// Enqueuing under mu keeps the queue in recompute order.
	s.publisher.enqueue(frame)
	s.mu.Unlock()

	s.metrics.Recomputes.Inc()
	s.metrics.RecomputeDuration.Observe(time.Since(start).Seconds())
	for _, t := range domain.Tiers {
		s.metrics.VisiblePoints.WithLabelValues(t.String()).Set(float64(summary.PerTier[t]))
	}
	s.logger.Debug("recomputed visible subset",
		"tier", state.Tier,
		"recency_minutes", state.RecencyMinutes,
		"downsample_cap", state.DownsampleCap,
		"total", summary.Total,
		"visible", summary.Visible,
	)
}

// View returns the current derived state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		State:        s.state,
		Summary:      s.summary,
		Presentation: s.frame.Presentation,
		ComputedAt:   s.computedAt,
		Recomputes:   s.recomputes,
		Pending:      s.debouncer.Pending(),
	}
	if s.loadError != nil {
		v.LoadError = s.loadError.Error()
	}
	return v
}

// Visible returns a copy of the current visible subset.
func (s *Session) Visible() []domain.PointRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.PointRecord(nil), s.visible...)
}

// Frame returns the most recent frame.
func (s *Session) Frame() domain.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// Export writes the current visible subset as CSV.
func (s *Session) Export(w io.Writer) error {
	if err := export.WriteCSV(w, s.Visible()); err != nil {
		return err
	}
	s.metrics.Exports.Inc()
	return nil
}

// CheckReadiness reports ready once the initial load succeeded.
func (s *Session) CheckReadiness(_ context.Context) error {
	if s.loadError != nil {
		return fmt.Errorf("initial load failed: %w", s.loadError)
	}
	return nil
}

// LoadError returns the initial load failure, if any.
func (s *Session) LoadError() error {
	return s.loadError
}

// Close cancels any pending recompute and stops frame delivery. Frames not
// yet delivered are discarded.
func (s *Session) Close() {
	s.debouncer.Stop()
	s.publisher.close()
}
