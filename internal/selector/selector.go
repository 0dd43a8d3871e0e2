package selector

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"proxy-rotator/internal/config"
	"proxy-rotator/internal/domain"
	"proxy-rotator/internal/interfaces"
)

// Module exports the proxy selector
var Module = fx.Options(
	fx.Provide(NewFromConfig),
	fx.Provide(func(s *Selector) interfaces.ProxySelector { return s }),
)

// Rand is the source of randomness used for draws. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// Selector hands out proxies from the store using one of three strategies.
type Selector struct {
	store   interfaces.ProxyStore
	metrics domain.MetricsCollector
	logger  *zap.Logger

	mu        sync.Mutex
	rng       Rand
	callCount int
	interval  int
	sticky    *domain.ProxyRecord
}

type Option func(*Selector)

// WithRand replaces the default randomness source
func WithRand(rng Rand) Option {
	return func(s *Selector) {
		s.rng = rng
	}
}

// WithStickyInterval sets the initial rotation interval; non-positive values are ignored
func WithStickyInterval(n int) Option {
	return func(s *Selector) {
		if n > 0 {
			s.interval = n
		}
	}
}

func New(store interfaces.ProxyStore, metrics domain.MetricsCollector, logger *zap.Logger, opts ...Option) *Selector {
	s := &Selector{
		store:    store,
		metrics:  metrics,
		logger:   logger.With(zap.String("component", "selector")),
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		interval: config.DefaultStickyInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func NewFromConfig(cfg *config.Config, store interfaces.ProxyStore, metrics domain.MetricsCollector, logger *zap.Logger) *Selector {
	return New(store, metrics, logger, WithStickyInterval(cfg.Rotation.StickyInterval))
}

// RandomProxy returns one proxy chosen uniformly from the current list.
func (s *Selector) RandomProxy(ctx context.Context) (domain.ProxyRecord, error) {
	proxy, err := s.randomProxy(ctx)
	s.metrics.RecordSelection(domain.StrategyRandom, err)
	return proxy, err
}

// Sample returns k distinct proxies in random order.
func (s *Selector) Sample(ctx context.Context, k int) ([]domain.ProxyRecord, error) {
	result, err := s.sample(ctx, k)
	s.metrics.RecordSelection(domain.StrategySample, err)
	return result, err
}

// StickyProxy returns the same proxy until the call counter reaches a multiple
// of the interval, at which point a new one is drawn. The first call always draws.
func (s *Selector) StickyProxy(ctx context.Context) (domain.ProxyRecord, error) {
	proxy, err := s.stickyProxy(ctx)
	s.metrics.RecordSelection(domain.StrategySticky, err)
	return proxy, err
}

func (s *Selector) SetStickyInterval(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: got %d", domain.ErrInvalidInterval, n)
	}

	s.mu.Lock()
	s.interval = n
	s.mu.Unlock()

	s.logger.Debug("sticky interval updated", zap.Int("interval", n))
	return nil
}

func (s *Selector) StickyInterval() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

func (s *Selector) stickyProxy(ctx context.Context) (domain.ProxyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.callCount++
	if s.sticky != nil && s.callCount%s.interval != 0 {
		return *s.sticky, nil
	}

	proxy, err := s.randomProxyLocked(ctx)
	if err != nil {
		return domain.ProxyRecord{}, err
	}

	s.sticky = &proxy
	s.metrics.RecordStickyRotation()
	s.logger.Debug("sticky proxy rotated",
		zap.Stringer("proxy", proxy),
		zap.Int("call_count", s.callCount))
	return proxy, nil
}

func (s *Selector) randomProxy(ctx context.Context) (domain.ProxyRecord, error) {
	proxies, err := s.proxies(ctx)
	if len(proxies) == 0 {
		return domain.ProxyRecord{}, emptyListError(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return proxies[s.rng.IntN(len(proxies))], nil
}

// randomProxyLocked requires s.mu, which also serializes access to s.rng.
func (s *Selector) randomProxyLocked(ctx context.Context) (domain.ProxyRecord, error) {
	proxies, err := s.proxies(ctx)
	if len(proxies) == 0 {
		return domain.ProxyRecord{}, emptyListError(err)
	}
	return proxies[s.rng.IntN(len(proxies))], nil
}

func (s *Selector) sample(ctx context.Context, k int) ([]domain.ProxyRecord, error) {
	if k < 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidSampleSize, k)
	}

	proxies, err := s.proxies(ctx)
	if k > len(proxies) {
		insufficient := fmt.Errorf("%w: requested %d, have %d", domain.ErrInsufficientProxies, k, len(proxies))
		if err != nil {
			return nil, errors.Join(insufficient, err)
		}
		return nil, insufficient
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Partial Fisher-Yates over the snapshot; the store hands out copies.
	for i := 0; i < k; i++ {
		j := i + s.rng.IntN(len(proxies)-i)
		proxies[i], proxies[j] = proxies[j], proxies[i]
	}
	return proxies[:k:k], nil
}

func (s *Selector) proxies(ctx context.Context) ([]domain.ProxyRecord, error) {
	proxies, err := s.store.GetProxyList(ctx)
	if err != nil {
		s.logger.Warn("proxy list unavailable", zap.Error(err))
	}
	return proxies, err
}

func emptyListError(populationErr error) error {
	if populationErr != nil {
		return errors.Join(domain.ErrEmptyProxyList, populationErr)
	}
	return domain.ErrEmptyProxyList
}
