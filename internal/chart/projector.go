package chart

import (
	"errors"
	"math"
	"strings"

	"StockPanel/internal/calculator"
	"StockPanel/internal/model"
)

// ErrTooFewSamples is returned when a series cannot form a line.
var ErrTooFewSamples = errors.New("at least two samples are required")

// Point is a canvas coordinate.
type Point struct {
	X, Y float64
}

// Projection is the result of mapping a series onto a canvas.
type Projection struct {
	Points []Point
	// Flat is set when every sample has the same price and the points sit
	// on the horizontal midline.
	Flat bool
}

// Project maps each sample onto a width x height canvas inset by margin.
// Sample i lands at x = margin + i/(n-1)*(width-2*margin); prices are scaled
// to the series range with the maximum at the top margin. A flat series is
// drawn at height/2.
func Project(series model.Series, width, height, margin float64) (Projection, error) {
	n := len(series)
	if n < 2 {
		return Projection{}, ErrTooFewSamples
	}
	min, max, err := calculator.PriceRange(series)
	if err != nil {
		return Projection{}, err
	}

	chartWidth := width - 2*margin
	chartHeight := height - 2*margin
	priceRange := max - min
	flat := priceRange == 0

	points := make([]Point, n)
	for i, s := range series {
		x := margin + (float64(i)/float64(n-1))*chartWidth
		var y float64
		if flat {
			y = height / 2
		} else {
			normalized := (s.Price - min) / priceRange
			y = margin + chartHeight - normalized*chartHeight
		}
		points[i] = Point{X: x, Y: y}
	}
	return Projection{Points: points, Flat: flat}, nil
}

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders the most recent cols samples as block characters.
// Fewer than two samples render as a dashed baseline.
func Sparkline(series model.Series, cols int) string {
	if cols <= 0 {
		return ""
	}
	if len(series) > cols {
		series = series[len(series)-cols:]
	}
	levels := float64(len(sparkLevels) - 1)
	proj, err := Project(series, float64(len(series)-1), levels, 0)
	if err != nil {
		return strings.Repeat("╌", cols)
	}

	var b strings.Builder
	for _, p := range proj.Points {
		// y grows downwards; level 0 is the lowest block.
		idx := int(math.Round(levels - p.Y))
		if idx < 0 {
			idx = 0
		}
		if idx > len(sparkLevels)-1 {
			idx = len(sparkLevels) - 1
		}
		b.WriteRune(sparkLevels[idx])
	}
	return b.String()
}
