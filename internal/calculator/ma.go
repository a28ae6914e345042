package calculator

import (
	"errors"

	"StockPanel/internal/model"
)

// MovingAverage returns the trailing simple moving average of the series
// prices. Output i averages prices i-period+1..i; the first period-1 entries
// average whatever samples exist so the result lines up with the input.
func MovingAverage(series model.Series, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if len(series) == 0 {
		return nil, ErrEmptySeries
	}
	out := make([]float64, len(series))
	sum := 0.0
	for i, s := range series {
		sum += s.Price
		if i >= period {
			sum -= series[i-period].Price
		}
		out[i] = sum / float64(min(i+1, period))
	}
	return out, nil
}
