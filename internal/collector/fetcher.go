package collector

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"StockPanel/internal/model"
)

// Fetcher retrieves the current quote for a symbol.
type Fetcher interface {
	FetchQuote(ctx context.Context, symbol, token string) (*model.Quote, error)
	Name() string
}

// newHTTPClient builds a client with an optional proxy.
func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
