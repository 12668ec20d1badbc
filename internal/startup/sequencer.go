package startup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kubecrud/items-api/pkg/logger"
	"github.com/kubecrud/items-api/pkg/metrics"
)

// State of the schema initialization.
type State int32

const (
	Pending State = iota
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

// ErrExhausted is returned by Run when every attempt failed.
var ErrExhausted = errors.New("schema initialization attempts exhausted")

// InitFunc performs one initialization attempt.
type InitFunc func(ctx context.Context) error

// Config bounds the retry loop.
type Config struct {
	MaxAttempts int
	RetryDelay  time.Duration
}

// Sequencer retries InitFunc with a fixed delay until it succeeds or the
// attempt budget runs out. It never blocks request serving; callers consult
// State to report readiness.
type Sequencer struct {
	init    InitFunc
	cfg     Config
	metrics *metrics.Metrics

	state    atomic.Int32
	attempts atomic.Int32

	mu      sync.Mutex
	lastErr error

	done     chan struct{}
	doneOnce sync.Once
}

// Option customizes a Sequencer.
type Option func(*Sequencer)

// WithMetrics records state and attempts into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Sequencer) { s.metrics = m }
}

func New(fn InitFunc, cfg Config, opts ...Option) *Sequencer {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	s := &Sequencer{init: fn, cfg: cfg, done: make(chan struct{})}
	for _, o := range opts {
		o(s)
	}
	s.setState(Pending)
	return s
}

// Start runs the loop in the background and returns immediately. onExit, if
// non-nil, receives Run's result.
func (s *Sequencer) Start(ctx context.Context, onExit func(error)) {
	go func() {
		err := s.Run(ctx)
		if onExit != nil {
			onExit(err)
		}
	}()
}

// Run blocks until initialization succeeds (nil), the budget is exhausted
// (wraps ErrExhausted and the last failure) or ctx ends (ctx.Err()).
func (s *Sequencer) Run(ctx context.Context) error {
	defer s.doneOnce.Do(func() { close(s.done) })

	maxAttempts := s.cfg.MaxAttempts
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		s.attempts.Store(int32(attempt))
		if s.metrics != nil {
			s.metrics.StartupAttempts.Inc()
		}

		err := s.init(ctx)
		if err == nil {
			s.setState(Ready)
			logger.Infof("startup: schema ready on attempt %d/%d", attempt, maxAttempts)
			return nil
		}
		if ctx.Err() != nil {
			logger.Warnf("startup: stopped during attempt %d/%d: %v", attempt, maxAttempts, ctx.Err())
			return ctx.Err()
		}
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		logger.Warnf("startup: attempt %d/%d failed: %v", attempt, maxAttempts, err)

		if attempt == maxAttempts {
			break
		}
		t := time.NewTimer(s.cfg.RetryDelay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			logger.Warnf("startup: stopped while waiting to retry: %v", ctx.Err())
			return ctx.Err()
		}
	}

	s.setState(Failed)
	err := fmt.Errorf("%w after %d attempts: %w", ErrExhausted, maxAttempts, s.Err())
	logger.Errorf("startup: %v", err)
	return err
}

func (s *Sequencer) setState(st State) {
	s.state.Store(int32(st))
	if s.metrics != nil {
		s.metrics.StartupState.Set(float64(st))
	}
}

func (s *Sequencer) State() State { return State(s.state.Load()) }

// Attempts returns how many attempts have started so far.
func (s *Sequencer) Attempts() int { return int(s.attempts.Load()) }

// Err returns the most recent attempt failure, if any.
func (s *Sequencer) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Done is closed once Run returns.
func (s *Sequencer) Done() <-chan struct{} { return s.done }
