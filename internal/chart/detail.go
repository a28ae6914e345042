package chart

import (
	"fmt"
	"image/color"
	"io"
	"time"

	"StockPanel/internal/calculator"
	"StockPanel/internal/model"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// DetailOptions controls the full-size history chart.
type DetailOptions struct {
	Width     int
	Height    int
	LineColor color.Color
	FillColor color.Color
	// AveragePeriod adds a trailing moving-average line when > 1.
	AveragePeriod int
}

func toDrawing(c color.Color, fallback drawing.Color) drawing.Color {
	if c == nil {
		return fallback
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return drawing.Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

// DetailRange returns the y-axis bounds for the detail chart: the series range
// widened by the day's high/low when a quote is available, padded by 5%.
func DetailRange(series model.Series, quote *model.Quote) (min, max float64, err error) {
	min, max, err = calculator.PriceRange(series)
	if err != nil {
		return 0, 0, err
	}
	if quote != nil {
		if quote.Low > 0 && quote.Low < min {
			min = quote.Low
		}
		if quote.High > max {
			max = quote.High
		}
	}
	span := max - min
	if span == 0 {
		span = max * 0.01
	}
	if span == 0 {
		span = 1
	}
	pad := span * 0.05
	return min - pad, max + pad, nil
}

// RenderDetail writes a PNG line chart of the whole series to w.
func RenderDetail(w io.Writer, series model.Series, quote *model.Quote, opts DetailOptions) error {
	if len(series) < 2 {
		return ErrTooFewSamples
	}
	if opts.Width <= 0 {
		opts.Width = 600
	}
	if opts.Height <= 0 {
		opts.Height = 400
	}
	min, max, err := DetailRange(series, quote)
	if err != nil {
		return err
	}

	xs := make([]time.Time, len(series))
	ys := make([]float64, len(series))
	for i, s := range series {
		xs[i] = s.Time()
		ys[i] = s.Price
	}

	line := toDrawing(opts.LineColor, drawing.Color{R: 51, G: 204, B: 51, A: 255})
	fill := toDrawing(opts.FillColor, drawing.Color{R: 51, G: 204, B: 51, A: 76})

	name := "price"
	if quote != nil && quote.Symbol != "" {
		name = quote.Symbol
	}

	ch := gochart.Chart{
		Width:  opts.Width,
		Height: opts.Height,
		Background: gochart.Style{
			FillColor: drawing.Color{R: 26, G: 26, B: 26, A: 255},
			Padding:   gochart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
		},
		Canvas: gochart.Style{FillColor: drawing.Color{R: 26, G: 26, B: 26, A: 255}},
		XAxis: gochart.XAxis{
			ValueFormatter: gochart.TimeValueFormatterWithFormat("Jan 02 15:04"),
			Style:          gochart.Style{FontColor: drawing.ColorWhite},
		},
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: min, Max: max},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
			Style: gochart.Style{FontColor: drawing.ColorWhite},
		},
		Series: []gochart.Series{
			gochart.TimeSeries{
				Name:    name,
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeColor: line,
					StrokeWidth: 2,
					FillColor:   fill,
				},
			},
		},
	}
	if opts.AveragePeriod > 1 {
		avg, err := calculator.MovingAverage(series, opts.AveragePeriod)
		if err != nil {
			return err
		}
		ch.Series = append(ch.Series, gochart.TimeSeries{
			Name:    fmt.Sprintf("MA(%d)", opts.AveragePeriod),
			XValues: xs,
			YValues: avg,
			Style: gochart.Style{
				StrokeColor:     drawing.Color{R: 255, G: 255, B: 255, A: 160},
				StrokeWidth:     1,
				StrokeDashArray: []float64{5, 3},
			},
		})
	}
	if err := ch.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render detail chart: %w", err)
	}
	return nil
}
