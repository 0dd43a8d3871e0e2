package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"proxy-rotator/internal/config"
	"proxy-rotator/internal/interfaces"
)

// Module exports the HTTP server
var Module = fx.Options(
	fx.Provide(func(
		store interfaces.ProxyStore,
		selector interfaces.ProxySelector,
		gatherer prometheus.Gatherer,
		logger *zap.Logger,
	) *echo.Echo {
		return SetupRouter(store, selector, gatherer, logger.With(zap.String("component", "api")))
	}),
	fx.Invoke(registerHooks),
)

func registerHooks(lc fx.Lifecycle, cfg *config.Config, e *echo.Echo, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", cfg.Server.ListenAddress)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", cfg.Server.ListenAddress, err)
			}
			e.Listener = ln

			go func() {
				if err := e.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("api server stopped unexpectedly", zap.Error(err))
				}
			}()

			logger.Info("api server listening", zap.String("address", ln.Addr().String()))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}
