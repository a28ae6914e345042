package calculator

import (
	"errors"
	"math"

	"StockPanel/internal/model"
)

// ErrEmptySeries is returned when a range is requested over no samples.
var ErrEmptySeries = errors.New("no samples in series")

// PriceRange scans the series and returns the lowest and highest price.
func PriceRange(series model.Series) (min, max float64, err error) {
	if len(series) == 0 {
		return 0, 0, ErrEmptySeries
	}
	min = math.Inf(1)
	max = math.Inf(-1)
	for _, s := range series {
		if s.Price < min {
			min = s.Price
		}
		if s.Price > max {
			max = s.Price
		}
	}
	return min, max, nil
}

// Extremes returns the price range along with the timestamp of the first
// sample reaching the minimum and the maximum.
func Extremes(series model.Series) (model.Extremes, error) {
	min, max, err := PriceRange(series)
	if err != nil {
		return model.Extremes{}, err
	}
	ext := model.Extremes{Min: min, Max: max}
	minSeen, maxSeen := false, false
	for _, s := range series {
		if !minSeen && s.Price == min {
			ext.MinTime = s.Timestamp
			minSeen = true
		}
		if !maxSeen && s.Price == max {
			ext.MaxTime = s.Timestamp
			maxSeen = true
		}
	}
	return ext, nil
}

// Position returns where price sits within [low, high] (0.0~1.0).
// A zero-width range maps to the middle.
func Position(price, low, high float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (price - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
