package fetcher

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"proxy-rotator/internal/config"
	"proxy-rotator/internal/interfaces"
)

// Module exports the page fetcher and the user agent generator
var Module = fx.Options(
	fx.Provide(NewPageFetcher),
	fx.Provide(NewUserAgentGenerator),
)

// NewPageFetcher creates a PageFetcher bounded by the configured source timeout
func NewPageFetcher(cfg *config.Config, logger *zap.Logger) interfaces.PageFetcher {
	return &restyFetcher{
		client: createDefaultClient(cfg.Source.TimeoutDuration()),
		logger: logger.With(zap.String("component", "fetcher")),
	}
}

// NewUserAgentGenerator returns a fixed generator when a user agent is configured,
// and a randomized one otherwise.
func NewUserAgentGenerator(cfg *config.Config) interfaces.UserAgentGenerator {
	if cfg.Source.UserAgent != "" {
		return fixedUserAgent(cfg.Source.UserAgent)
	}
	return randomUserAgent{}
}
