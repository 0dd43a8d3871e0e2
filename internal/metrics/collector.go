package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"proxy-rotator/internal/domain"
)

// Module provides the registry and the metrics collector
var Module = fx.Options(
	fx.Provide(NewRegistry),
	fx.Provide(func(r *prometheus.Registry) prometheus.Gatherer { return r }),
	fx.Provide(NewCollector),
	fx.Provide(func(c *Collector) domain.MetricsCollector { return c }),
)

func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

type Collector struct {
	logger             *zap.Logger
	populationsTotal   *prometheus.CounterVec
	populationDuration *prometheus.HistogramVec
	proxyListSize      prometheus.Gauge
	selectionsTotal    *prometheus.CounterVec
	selectionErrors    *prometheus.CounterVec
	stickyRotations    prometheus.Counter
	scheduledRefreshes prometheus.Counter
}

func NewCollector(reg *prometheus.Registry, logger *zap.Logger) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		logger: logger,
		populationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proxy_rotator_populations_total",
				Help: "Total number of proxy list populations",
			},
			[]string{"trigger", "result"},
		),
		populationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "proxy_rotator_population_duration_seconds",
				Help:    "Duration of proxy list populations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"trigger"},
		),
		proxyListSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "proxy_rotator_proxy_list_size",
				Help: "Number of proxies returned by the latest successful population",
			},
		),
		selectionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proxy_rotator_selections_total",
				Help: "Total number of proxy selections",
			},
			[]string{"strategy"},
		),
		selectionErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proxy_rotator_selection_errors_total",
				Help: "Total number of failed proxy selections",
			},
			[]string{"strategy", "error_type"},
		),
		stickyRotations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "proxy_rotator_sticky_rotations_total",
				Help: "Total number of sticky proxy draws",
			},
		),
		scheduledRefreshes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "proxy_rotator_scheduled_refreshes_total",
				Help: "Total number of refreshes started by the scheduler",
			},
		),
	}
}

func (c *Collector) RecordPopulation(trigger domain.PopulationTrigger, size int, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = domain.ErrorType(err)
	} else {
		c.proxyListSize.Set(float64(size))
	}
	c.populationsTotal.WithLabelValues(string(trigger), result).Inc()
	c.populationDuration.WithLabelValues(string(trigger)).Observe(duration.Seconds())
}

func (c *Collector) RecordSelection(strategy string, err error) {
	if err != nil {
		c.selectionErrors.WithLabelValues(strategy, domain.ErrorType(err)).Inc()
		return
	}
	c.selectionsTotal.WithLabelValues(strategy).Inc()
}

func (c *Collector) RecordStickyRotation() {
	c.stickyRotations.Inc()
}

func (c *Collector) RecordScheduledRefresh() {
	c.scheduledRefreshes.Inc()
}
