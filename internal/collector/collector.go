package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"StockPanel/internal/config"
	"StockPanel/internal/model"
)

var (
	// ErrNoToken means no API credential is configured.
	ErrNoToken = errors.New("no api token configured")
	// ErrFetchFailed covers network, HTTP status and payload failures.
	ErrFetchFailed = errors.New("fetch failed")
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Quote model.Quote
	Err   error
	Calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchQuote(_ context.Context, symbol, _ string) (*model.Quote, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	q := m.Quote
	q.Symbol = symbol
	if q.FetchedAt.IsZero() {
		q.FetchedAt = time.Now()
	}
	return &q, nil
}

// Collector validates the request and classifies fetch errors.
type Collector struct {
	Fetcher Fetcher
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{Fetcher: fetcher}
}

// New picks the REST fetcher when a base URL is configured, the SDK otherwise.
func New(cfg *config.Config) *Collector {
	timeout := time.Duration(cfg.Finnhub.Timeout) * time.Second
	if cfg.Finnhub.BaseURL != "" {
		return NewCollector(NewRESTFetcher(cfg.Finnhub.BaseURL, cfg.Proxy, timeout))
	}
	return NewCollector(NewFinnhubFetcher(cfg.Proxy, timeout))
}

// Collect fetches the quote for symbol (NVDA when empty). A blank token
// returns ErrNoToken; every fetcher error is wrapped in ErrFetchFailed.
func (c *Collector) Collect(ctx context.Context, symbol, token string) (*model.Quote, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNoToken
	}
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		symbol = config.DefaultSymbol
	}
	q, err := c.Fetcher.FetchQuote(ctx, symbol, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, c.Fetcher.Name(), err)
	}
	return q, nil
}
