package refresh

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"proxy-rotator/internal/config"
	"proxy-rotator/internal/domain"
	"proxy-rotator/internal/interfaces"
)

var Module = fx.Options(
	fx.Provide(func(cfg *config.Config, store interfaces.ProxyStore, metrics domain.MetricsCollector, logger *zap.Logger) Scheduler {
		return NewScheduler(
			cfg.Refresh.IntervalDuration(),
			cfg.Source.TimeoutDuration(),
			store,
			metrics,
			logger,
		)
	}),
	fx.Invoke(registerHooks),
)

// The scheduler only runs when a refresh interval is configured.
func registerHooks(lc fx.Lifecycle, cfg *config.Config, scheduler Scheduler, logger *zap.Logger) {
	if cfg.Refresh.Interval == 0 {
		logger.Debug("background refresh disabled")
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// ctx only lives for the duration of OnStart
			return scheduler.Start(context.Background())
		},
		OnStop: func(ctx context.Context) error {
			return scheduler.Stop()
		},
	})
}
