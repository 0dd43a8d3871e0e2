package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"proxy-rotator/internal/api/handlers"
	"proxy-rotator/internal/interfaces"
)

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func SetupRouter(
	store interfaces.ProxyStore,
	selector interfaces.ProxySelector,
	gatherer prometheus.Gatherer,
	logger *zap.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{validate: validator.New()}

	// Middleware
	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())

	proxyHandler := handlers.NewProxyHandler(store, selector)

	api := e.Group("/api")
	api.GET("/proxies", proxyHandler.ListProxies)
	api.POST("/proxies/refresh", proxyHandler.RefreshProxies)
	api.GET("/proxies/random", proxyHandler.RandomProxy)
	api.GET("/proxies/sample", proxyHandler.SampleProxies)
	api.GET("/proxies/sticky", proxyHandler.StickyProxy)
	api.GET("/proxies/sticky/interval", proxyHandler.GetStickyInterval)
	api.PUT("/proxies/sticky/interval", proxyHandler.SetStickyInterval)

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return e
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency))
			return nil
		},
	})
}
