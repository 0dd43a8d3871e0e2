package refresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"proxy-rotator/internal/domain"
	"proxy-rotator/internal/interfaces"
)

// Scheduler periodically rebuilds the proxy list in the background
type Scheduler interface {
	Start(context.Context) error
	Stop() error
	IsRunning() bool
}

type defaultScheduler struct {
	interval time.Duration
	timeout  time.Duration
	store    interfaces.ProxyStore
	metrics  domain.MetricsCollector
	logger   *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewScheduler creates a scheduler that calls RefreshProxies every interval.
// Each refresh is bounded by timeout.
func NewScheduler(
	interval time.Duration,
	timeout time.Duration,
	store interfaces.ProxyStore,
	metrics domain.MetricsCollector,
	logger *zap.Logger,
) Scheduler {
	return &defaultScheduler{
		interval: interval,
		timeout:  timeout,
		store:    store,
		metrics:  metrics,
		logger:   logger.With(zap.String("component", "refresh-scheduler")),
	}
}

func (s *defaultScheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", s.interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("refresh scheduler already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.run(runCtx, s.done)

	s.logger.Info("refresh scheduler started", zap.Duration("interval", s.interval))
	return nil
}

func (s *defaultScheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.refresh(ctx)
		case <-ctx.Done():
			s.logger.Debug("refresh scheduler stopped", zap.Error(ctx.Err()))
			return
		}
	}
}

func (s *defaultScheduler) refresh(ctx context.Context) {
	refreshCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.metrics.RecordScheduledRefresh()
	proxies, err := s.store.RefreshProxies(refreshCtx)
	if err != nil {
		s.logger.Error("scheduled refresh failed", zap.Error(err))
		return
	}
	s.logger.Debug("scheduled refresh completed", zap.Int("count", len(proxies)))
}

func (s *defaultScheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()

	cancel()

	select {
	case <-done:
		return nil
	case <-time.After(s.timeout + 5*time.Second):
		return fmt.Errorf("refresh scheduler shutdown timed out")
	}
}

func (s *defaultScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
