package widget

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"StockPanel/internal/calculator"
	"StockPanel/internal/collector"
	"StockPanel/internal/config"
	"StockPanel/internal/model"
)

const (
	MsgNoToken     = "Please set your Finnhub API token in preferences"
	MsgFetchFailed = "Error fetching stock data"

	timeLayout = "Jan 02 15:04"
)

// money formats v with exactly two decimals.
func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// ErrorStatus maps a fetch error to the user-facing status line.
func ErrorStatus(err error) string {
	if errors.Is(err, collector.ErrNoToken) {
		return MsgNoToken
	}
	return MsgFetchFailed
}

// Tooltip builds the multi-line hover text: the current quote (if any) and,
// with at least two samples, the lowest and highest prices of the stored
// period with the time each was first reached.
func Tooltip(symbol string, q *model.Quote, series model.Series) string {
	lines := []string{"Stock: " + symbol}
	if q != nil {
		lines = append(lines,
			"Current: $"+money(q.Current),
			"Today's Range: $"+money(q.Low)+" - $"+money(q.High),
		)
	} else {
		lines = append(lines, "No current data available")
	}

	if len(series) >= 2 {
		if ext, err := calculator.Extremes(series); err == nil {
			lines = append(lines, "", "Chart Period:",
				"Lowest: $"+money(ext.Min)+" ("+model.Sample{Timestamp: ext.MinTime}.Time().Format(timeLayout)+")",
				"Highest: $"+money(ext.Max)+" ("+model.Sample{Timestamp: ext.MaxTime}.Time().Format(timeLayout)+")",
			)
		}
	}
	return strings.Join(lines, "\n")
}

// Summary is the one-line label: "SYM: $c | [l..h]" filtered by the display
// toggles, "SYM: --" when nothing is enabled.
func Summary(s config.Settings, q *model.Quote, err error) string {
	if err != nil {
		if errors.Is(err, collector.ErrNoToken) {
			return "Stock: No Token"
		}
		return "Stock: Error"
	}
	symbol := s.StockSymbol
	if symbol == "" {
		symbol = config.DefaultSymbol
	}
	var parts []string
	if q != nil && s.ShowCurrentPrice {
		parts = append(parts, "$"+money(q.Current))
	}
	if q != nil && s.ShowDailyRange {
		parts = append(parts, "["+money(q.Low)+".."+money(q.High)+"]")
	}
	if len(parts) == 0 {
		return symbol + ": --"
	}
	return symbol + ": " + strings.Join(parts, " | ")
}
