package app

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"proxy-rotator/internal/config"
)

type hookParams struct {
	fx.In

	Logger    *zap.Logger
	Config    *config.Config
	Env       string `name:"env"`
	Lifecycle fx.Lifecycle
}

func registerHooks(p hookParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting application",
				zap.String("env", p.Env),
				zap.String("source_url", p.Config.Source.URL),
				zap.String("table_id", p.Config.Source.TableID),
				zap.Int("sticky_interval", p.Config.Rotation.StickyInterval),
				zap.Int("refresh_interval", p.Config.Refresh.Interval))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Logger.Info("stopping application")
			return nil
		},
	})
}
