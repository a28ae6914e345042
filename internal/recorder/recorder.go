package recorder

import "time"

// QuoteEvent is a successfully fetched quote.
type QuoteEvent struct {
	Symbol    string
	Current   float64
	High      float64
	Low       float64
	FetchedAt time.Time
}

// FailureEvent is a fetch that did not produce a quote.
type FailureEvent struct {
	Symbol string
	Kind   string // "NO_TOKEN" or "FETCH_FAILED"
	Detail string
	At     time.Time
}

// Recorder keeps an audit trail of fetches for later analysis. It is
// independent of the flat-file price history that drives the chart.
type Recorder interface {
	RecordQuote(evt *QuoteEvent) error
	RecordFailure(evt *FailureEvent) error
	Close() error
}
