package selector

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"proxy-rotator/internal/config"
	"proxy-rotator/internal/domain"
)

var (
	proxyA = domain.ProxyRecord{IP: "10.0.0.1", Port: "8080"}
	proxyB = domain.ProxyRecord{IP: "10.0.0.2", Port: "3128"}
	proxyC = domain.ProxyRecord{IP: "10.0.0.3", Port: "80"}
	proxyD = domain.ProxyRecord{IP: "10.0.0.4", Port: "8888"}
)

type fakeStore struct {
	mu      sync.Mutex
	proxies []domain.ProxyRecord
	err     error
	calls   int
}

func (f *fakeStore) GetProxyList(context.Context) ([]domain.ProxyRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return []domain.ProxyRecord{}, f.err
	}
	return append([]domain.ProxyRecord{}, f.proxies...), nil
}

func (f *fakeStore) RefreshProxies(ctx context.Context) ([]domain.ProxyRecord, error) {
	return f.GetProxyList(ctx)
}

func (f *fakeStore) Size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.proxies)
}

func (f *fakeStore) set(proxies []domain.ProxyRecord, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.proxies = proxies
	f.err = err
}

// sequenceRand returns its values in order, wrapping around, reduced modulo n.
type sequenceRand struct {
	values []int
	next   int
}

func (r *sequenceRand) IntN(n int) int {
	v := r.values[r.next%len(r.values)]
	r.next++
	return v % n
}

type fakeMetrics struct {
	mu         sync.Mutex
	rotations  int
	selections map[string]int
	errors     map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{selections: map[string]int{}, errors: map[string]int{}}
}

func (f *fakeMetrics) RecordPopulation(domain.PopulationTrigger, int, time.Duration, error) {}
func (f *fakeMetrics) RecordScheduledRefresh()                                          {}

func (f *fakeMetrics) RecordSelection(strategy string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.errors[strategy]++
		return
	}
	f.selections[strategy]++
}

func (f *fakeMetrics) RecordStickyRotation() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rotations++
}

func newTestSelector(proxies []domain.ProxyRecord, opts ...Option) (*Selector, *fakeStore, *fakeMetrics) {
	store := &fakeStore{proxies: proxies}
	metrics := newFakeMetrics()
	return New(store, metrics, zap.NewNop(), opts...), store, metrics
}

func TestRandomProxy(t *testing.T) {
	proxies := []domain.ProxyRecord{proxyA, proxyB, proxyC, proxyD}
	s, store, metrics := newTestSelector(proxies)

	seen := make(map[domain.ProxyRecord]bool)
	for i := 0; i < 200; i++ {
		p, err := s.RandomProxy(context.Background())
		require.NoError(t, err)
		assert.Contains(t, proxies, p)
		seen[p] = true
	}

	assert.Greater(t, len(seen), 1)
	assert.Equal(t, 200, store.calls)
	assert.Equal(t, 200, metrics.selections[domain.StrategyRandom])
}

func TestRandomProxyEmptyList(t *testing.T) {
	t.Run("Empty list", func(t *testing.T) {
		s, _, metrics := newTestSelector(nil)

		_, err := s.RandomProxy(context.Background())
		assert.ErrorIs(t, err, domain.ErrEmptyProxyList)
		assert.Equal(t, 1, metrics.errors[domain.StrategyRandom])
	})

	t.Run("Population failed", func(t *testing.T) {
		s, store, _ := newTestSelector(nil)
		store.set(nil, domain.NewPopulationError(domain.StageExtract, "cannot read proxy table", domain.ErrTableNotFound))

		_, err := s.RandomProxy(context.Background())
		assert.ErrorIs(t, err, domain.ErrEmptyProxyList)
		assert.ErrorIs(t, err, domain.ErrTableNotFound)
	})
}

func TestSample(t *testing.T) {
	proxies := []domain.ProxyRecord{proxyA, proxyB, proxyC, proxyD}
	s, _, _ := newTestSelector(proxies)

	for k := 0; k <= len(proxies); k++ {
		sample, err := s.Sample(context.Background(), k)
		require.NoError(t, err)
		require.Len(t, sample, k)

		distinct := make(map[domain.ProxyRecord]bool)
		for _, p := range sample {
			assert.Contains(t, proxies, p)
			distinct[p] = true
		}
		assert.Len(t, distinct, k)
	}
}

func TestSampleOrderIsRandomized(t *testing.T) {
	s, _, _ := newTestSelector(
		[]domain.ProxyRecord{proxyA, proxyB, proxyC},
		WithRand(&sequenceRand{values: []int{2, 1}}),
	)

	sample, err := s.Sample(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []domain.ProxyRecord{proxyC, proxyA}, sample)
}

func TestSampleErrors(t *testing.T) {
	tests := []struct {
		name        string
		proxies     []domain.ProxyRecord
		k           int
		expectedErr error
	}{
		{
			name:        "More than available",
			proxies:     []domain.ProxyRecord{proxyA, proxyB},
			k:           3,
			expectedErr: domain.ErrInsufficientProxies,
		},
		{
			name:        "Empty list",
			k:           1,
			expectedErr: domain.ErrInsufficientProxies,
		},
		{
			name:        "Negative size",
			proxies:     []domain.ProxyRecord{proxyA},
			k:           -1,
			expectedErr: domain.ErrInvalidSampleSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, metrics := newTestSelector(tt.proxies)

			sample, err := s.Sample(context.Background(), tt.k)
			assert.ErrorIs(t, err, tt.expectedErr)
			assert.Nil(t, sample)
			assert.Equal(t, 1, metrics.errors[domain.StrategySample])
		})
	}
}

func TestSampleZeroFromEmptyList(t *testing.T) {
	s, _, _ := newTestSelector(nil)

	sample, err := s.Sample(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, sample)
}

func TestStickyProxyRotation(t *testing.T) {
	proxies := []domain.ProxyRecord{proxyA, proxyB, proxyC, proxyD}

	tests := []struct {
		name     string
		interval int
		expected []domain.ProxyRecord
		draws    int
	}{
		{
			name:     "Default interval",
			interval: 0,
			expected: []domain.ProxyRecord{proxyA, proxyB, proxyB, proxyC, proxyC, proxyD},
			draws:    4,
		},
		{
			name:     "Interval of three",
			interval: 3,
			expected: []domain.ProxyRecord{proxyA, proxyA, proxyB, proxyB, proxyB, proxyC, proxyC},
			draws:    3,
		},
		{
			name:     "Interval of one draws every call",
			interval: 1,
			expected: []domain.ProxyRecord{proxyA, proxyB, proxyC, proxyD},
			draws:    4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, metrics := newTestSelector(proxies,
				WithRand(&sequenceRand{values: []int{0, 1, 2, 3}}),
				WithStickyInterval(tt.interval),
			)

			for i, want := range tt.expected {
				got, err := s.StickyProxy(context.Background())
				require.NoError(t, err)
				assert.Equal(t, want, got, "call %d", i+1)
			}
			assert.Equal(t, tt.draws, metrics.rotations)
		})
	}
}

func TestSetStickyInterval(t *testing.T) {
	s, _, _ := newTestSelector(nil)
	assert.Equal(t, config.DefaultStickyInterval, s.StickyInterval())

	for _, n := range []int{0, -5} {
		err := s.SetStickyInterval(n)
		assert.ErrorIs(t, err, domain.ErrInvalidInterval)
		assert.Equal(t, 2, s.StickyInterval())
	}

	require.NoError(t, s.SetStickyInterval(5))
	assert.Equal(t, 5, s.StickyInterval())
}

func TestStickyProxyEmptyList(t *testing.T) {
	s, store, _ := newTestSelector(nil, WithRand(&sequenceRand{values: []int{0, 1}}))

	_, err := s.StickyProxy(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmptyProxyList)

	// No sticky proxy yet, so the next call draws even though 2 % 2 == 0 would too.
	store.set([]domain.ProxyRecord{proxyA, proxyB}, nil)
	got, err := s.StickyProxy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, proxyA, got)

	// call 3: not due
	got, err = s.StickyProxy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, proxyA, got)
}

func TestStickyProxyDueDrawFails(t *testing.T) {
	s, store, _ := newTestSelector(
		[]domain.ProxyRecord{proxyA, proxyB},
		WithRand(&sequenceRand{values: []int{0, 1}}),
	)

	got, err := s.StickyProxy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, proxyA, got)

	store.set(nil, nil)
	_, err = s.StickyProxy(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmptyProxyList)

	// A stale sticky proxy is still served between draws.
	got, err = s.StickyProxy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, proxyA, got)
}

func TestStickyProxyConcurrentCalls(t *testing.T) {
	s, _, metrics := newTestSelector([]domain.ProxyRecord{proxyA, proxyB, proxyC})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.StickyProxy(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// first call plus every even call from 2 to 100
	assert.Equal(t, 51, metrics.rotations)
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Rotation.StickyInterval = 7

	s := NewFromConfig(&cfg, &fakeStore{}, newFakeMetrics(), zap.NewNop())
	assert.Equal(t, 7, s.StickyInterval())
}
