package app

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"proxy-rotator/internal/api"
	"proxy-rotator/internal/common"
	"proxy-rotator/internal/config"
	"proxy-rotator/internal/extractor"
	"proxy-rotator/internal/fetcher"
	"proxy-rotator/internal/metrics"
	"proxy-rotator/internal/refresh"
	"proxy-rotator/internal/selector"
	"proxy-rotator/internal/store"
)

type Application struct {
	app    *fx.App
	logger *zap.Logger
}

func NewApplication(opts ...common.Option) *Application {
	options := common.Apply(opts...)

	app := &Application{
		logger: options.Logger,
	}

	app.app = fx.New(
		Options(options),

		// Configure fx
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),

		// Set timeouts
		fx.StopTimeout(30*time.Second),
		fx.StartTimeout(30*time.Second),
	)

	return app
}

// Options returns the full module graph for the given service options
func Options(options *common.ServiceOptions) fx.Option {
	configOption := config.Module
	if options.Config != nil {
		configOption = fx.Supply(options.Config)
	}

	return fx.Options(
		configOption,

		// Core modules
		metrics.Module,
		fetcher.Module,
		extractor.Module,
		store.Module,
		selector.Module,
		refresh.Module,
		api.Module,

		// Provide base dependencies
		fx.Provide(
			func() *zap.Logger { return options.Logger },
			fx.Annotate(
				func() string { return options.Env },
				fx.ResultTags(`name:"env"`),
			),
		),

		// Register lifecycle hooks
		fx.Invoke(registerHooks),
	)
}

func (a *Application) Start(ctx context.Context) error {
	return a.app.Start(ctx)
}

func (a *Application) Stop(ctx context.Context) error {
	return a.app.Stop(ctx)
}

func (a *Application) Err() error {
	return a.app.Err()
}
