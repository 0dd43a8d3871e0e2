package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"proxy-rotator/internal/config"
	"proxy-rotator/internal/domain"
	"proxy-rotator/internal/interfaces"
)

// Module exports the proxy list store
var Module = fx.Options(
	fx.Provide(New),
	fx.Provide(func(s *Store) interfaces.ProxyStore { return s }),
)

// Store caches the proxy list scraped from the source page.
// The list is built on first use and only rebuilt by RefreshProxies.
type Store struct {
	url        string
	tableID    string
	fetcher    interfaces.PageFetcher
	userAgents interfaces.UserAgentGenerator
	extractor  interfaces.TableExtractor
	metrics    domain.MetricsCollector
	logger     *zap.Logger

	mu      sync.RWMutex
	proxies []domain.ProxyRecord
	group   singleflight.Group
}

func New(
	cfg *config.Config,
	fetcher interfaces.PageFetcher,
	userAgents interfaces.UserAgentGenerator,
	extractor interfaces.TableExtractor,
	metrics domain.MetricsCollector,
	logger *zap.Logger,
) *Store {
	return &Store{
		url:        cfg.Source.URL,
		tableID:    cfg.Source.TableID,
		fetcher:    fetcher,
		userAgents: userAgents,
		extractor:  extractor,
		metrics:    metrics,
		logger:     logger.With(zap.String("component", "store")),
	}
}

// GetProxyList returns the cached list, populating it first if it is empty.
// On failure the returned list is empty and the cache keeps its previous contents.
func (s *Store) GetProxyList(ctx context.Context) ([]domain.ProxyRecord, error) {
	if cached := s.snapshot(); len(cached) > 0 {
		return cached, nil
	}
	return s.populate(ctx, domain.TriggerLazy)
}

// RefreshProxies rebuilds the list from the source page regardless of the cache state.
func (s *Store) RefreshProxies(ctx context.Context) ([]domain.ProxyRecord, error) {
	return s.populate(ctx, domain.TriggerRefresh)
}

func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.proxies)
}

func (s *Store) snapshot() []domain.ProxyRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.proxies)
}

// Concurrent callers with the same trigger share a single in-flight population
// and therefore the context of whichever caller started it.
func (s *Store) populate(ctx context.Context, trigger domain.PopulationTrigger) ([]domain.ProxyRecord, error) {
	v, err, shared := s.group.Do(string(trigger), func() (interface{}, error) {
		if trigger == domain.TriggerLazy {
			if cached := s.snapshot(); len(cached) > 0 {
				return cached, nil
			}
		}

		start := time.Now()
		proxies, err := s.load(ctx)
		elapsed := time.Since(start)
		s.metrics.RecordPopulation(trigger, len(proxies), elapsed, err)

		if err != nil {
			s.logger.Warn("proxy list population failed",
				zap.String("trigger", string(trigger)),
				zap.String("url", s.url),
				zap.Duration("elapsed", elapsed),
				zap.Error(err))
			return nil, err
		}

		s.mu.Lock()
		s.proxies = proxies
		s.mu.Unlock()

		s.logger.Info("proxy list populated",
			zap.String("trigger", string(trigger)),
			zap.Int("count", len(proxies)),
			zap.Duration("elapsed", elapsed))
		return proxies, nil
	})
	if err != nil {
		return []domain.ProxyRecord{}, err
	}

	if shared {
		s.logger.Debug("joined in-flight population", zap.String("trigger", string(trigger)))
	}
	return slices.Clone(v.([]domain.ProxyRecord)), nil
}

func (s *Store) load(ctx context.Context) ([]domain.ProxyRecord, error) {
	page, err := s.fetcher.FetchPage(ctx, s.url, s.userAgents.Generate())
	if err != nil {
		return nil, domain.NewPopulationError(domain.StageFetch, "cannot download proxy page", err)
	}

	rows, err := s.extractor.ExtractRows(page, s.tableID)
	if err != nil {
		return nil, domain.NewPopulationError(domain.StageExtract, "cannot read proxy table", err)
	}

	return parseRows(rows)
}

// parseRows builds records from the first two cells of every row, keeping row order.
func parseRows(rows [][]string) ([]domain.ProxyRecord, error) {
	proxies := make([]domain.ProxyRecord, 0, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			return nil, domain.NewPopulationError(domain.StageParse, "cannot build proxy record",
				fmt.Errorf("%w: row %d has %d cells", domain.ErrMalformedTable, i, len(row)))
		}
		proxies = append(proxies, domain.ProxyRecord{IP: row[0], Port: row[1]})
	}
	return proxies, nil
}
