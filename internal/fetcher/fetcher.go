package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"proxy-rotator/internal/domain"
)

type restyFetcher struct {
	client *resty.Client
	logger *zap.Logger
}

func createDefaultClient(timeout time.Duration) *resty.Client {
	return resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "text/html,application/xhtml+xml")
}

// FetchPage downloads url with the given User-Agent header.
// Transport failures and non-2xx responses are reported as domain.ErrFetch.
func (f *restyFetcher) FetchPage(ctx context.Context, url string, userAgent string) ([]byte, error) {
	req := f.client.R().SetContext(ctx)
	if userAgent != "" {
		req.SetHeader("User-Agent", userAgent)
	}

	resp, err := req.Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrFetch, url, err)
	}

	f.logger.Debug("fetched proxy page",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode()),
		zap.Int("bytes", len(resp.Body())),
		zap.Duration("elapsed", resp.Time()))

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %s returned status %d", domain.ErrFetch, url, resp.StatusCode())
	}

	return resp.Body(), nil
}
