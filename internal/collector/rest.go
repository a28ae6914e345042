package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fastjson"

	"StockPanel/internal/model"
)

// DefaultBaseURL is the public Finnhub REST root.
const DefaultBaseURL = "https://finnhub.io/api/v1"

// RESTFetcher calls GET {base}/quote?symbol=S&token=T directly. It is used
// when a custom base URL (mirror, proxy gateway, test server) is configured.
type RESTFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, proxyURL string, timeout time.Duration) *RESTFetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &RESTFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

func (f *RESTFetcher) FetchQuote(ctx context.Context, symbol, token string) (*model.Quote, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("token", token)
	endpoint := f.BaseURL + "/quote?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch quote: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch quote: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read quote: %w", err)
	}
	return parseQuote(body, symbol)
}

// parseQuote extracts c/h/l from a quote payload. Only c is required; h and
// l default to zero when absent.
func parseQuote(body []byte, symbol string) (*model.Quote, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("parse quote: %w", err)
	}
	if !v.Exists("c") {
		return nil, fmt.Errorf("parse quote: missing current price")
	}
	current, err := v.Get("c").Float64()
	if err != nil {
		return nil, fmt.Errorf("parse quote: current price: %w", err)
	}
	return &model.Quote{
		Symbol:    symbol,
		Current:   current,
		High:      v.GetFloat64("h"),
		Low:       v.GetFloat64("l"),
		FetchedAt: time.Now(),
	}, nil
}
