package chart

import (
	"bytes"
	"errors"
	"testing"

	"StockPanel/internal/model"
)

func TestDetailRange_IncludesDailyExtremes(t *testing.T) {
	series := model.Series{{Price: 100}, {Price: 110}}
	quote := &model.Quote{Current: 105, High: 120, Low: 95}
	min, max, err := DetailRange(series, quote)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// span 25, pad 1.25
	if min != 93.75 || max != 121.25 {
		t.Errorf("expected (93.75, 121.25), got (%v, %v)", min, max)
	}
}

func TestDetailRange_FlatSeries(t *testing.T) {
	min, max, err := DetailRange(model.Series{{Price: 200}, {Price: 200}}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !(min < 200 && max > 200) {
		t.Errorf("expected padded range around 200, got (%v, %v)", min, max)
	}
}

func TestRenderDetail_TooFewSamples(t *testing.T) {
	var buf bytes.Buffer
	err := RenderDetail(&buf, model.Series{{Price: 1}}, nil, DetailOptions{})
	if !errors.Is(err, ErrTooFewSamples) {
		t.Fatalf("expected ErrTooFewSamples, got %v", err)
	}
}

func TestRenderDetail_WritesPNG(t *testing.T) {
	series := model.Series{
		{Timestamp: 1700000000, Price: 187.1},
		{Timestamp: 1700000600, Price: 188.4},
		{Timestamp: 1700001200, Price: 186.9},
		{Timestamp: 1700001800, Price: 189.2},
	}
	var buf bytes.Buffer
	if err := RenderDetail(&buf, series, &model.Quote{Symbol: "NVDA", High: 190, Low: 186}, DetailOptions{Width: 320, Height: 200, AveragePeriod: 3}); err != nil {
		t.Fatalf("RenderDetail: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Fatal("expected PNG output")
	}
}
