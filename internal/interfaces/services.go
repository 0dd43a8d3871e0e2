package interfaces

import (
	"context"
	"proxy-rotator/internal/domain"
)

// PageFetcher defines the interface for retrieving the raw proxy page
type PageFetcher interface {
	FetchPage(ctx context.Context, url string, userAgent string) ([]byte, error)
}

// UserAgentGenerator defines the interface for producing User-Agent header values
type UserAgentGenerator interface {
	Generate() string
}

// TableExtractor locates a table by id and returns the cell texts of its body rows
type TableExtractor interface {
	ExtractRows(page []byte, tableID string) ([][]string, error)
}

// ProxyStore defines the interface for the cached proxy list
type ProxyStore interface {
	GetProxyList(ctx context.Context) ([]domain.ProxyRecord, error)
	RefreshProxies(ctx context.Context) ([]domain.ProxyRecord, error)
	Size() int
}

// ProxySelector defines the interface for the selection strategies
type ProxySelector interface {
	RandomProxy(ctx context.Context) (domain.ProxyRecord, error)
	Sample(ctx context.Context, k int) ([]domain.ProxyRecord, error)
	StickyProxy(ctx context.Context) (domain.ProxyRecord, error)
	SetStickyInterval(n int) error
	StickyInterval() int
}
