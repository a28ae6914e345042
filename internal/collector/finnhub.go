package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	FH "github.com/Finnhub-Stock-API/finnhub-go/v2"

	"StockPanel/internal/model"
)

// FinnhubFetcher implements Fetcher with the official Finnhub SDK. The API
// client is rebuilt whenever the token changes.
type FinnhubFetcher struct {
	proxy   string
	timeout time.Duration

	mu     sync.Mutex
	token  string
	client *FH.DefaultApiService
}

func NewFinnhubFetcher(proxyURL string, timeout time.Duration) *FinnhubFetcher {
	return &FinnhubFetcher{proxy: proxyURL, timeout: timeout}
}

func (f *FinnhubFetcher) Name() string { return "finnhub" }

func (f *FinnhubFetcher) api(token string) *FH.DefaultApiService {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.client == nil || f.token != token {
		cfg := FH.NewConfiguration()
		cfg.AddDefaultHeader("X-Finnhub-Token", token)
		cfg.HTTPClient = newHTTPClient(f.proxy, f.timeout)
		f.client = FH.NewAPIClient(cfg).DefaultApi
		f.token = token
	}
	return f.client
}

func (f *FinnhubFetcher) FetchQuote(ctx context.Context, symbol, token string) (*model.Quote, error) {
	quote, _, err := f.api(token).Quote(ctx).Symbol(symbol).Execute()
	if err != nil {
		return nil, fmt.Errorf("fetch quote: %w", err)
	}
	if !quote.HasC() {
		return nil, fmt.Errorf("fetch quote: missing current price")
	}
	return &model.Quote{
		Symbol:    symbol,
		Current:   float64(quote.GetC()),
		High:      float64(quote.GetH()),
		Low:       float64(quote.GetL()),
		FetchedAt: time.Now(),
	}, nil
}
