package model

// Extremes holds the lowest and highest price of a series together with the
// timestamp of the first sample that reached each.
type Extremes struct {
	Min     float64
	MinTime int64
	Max     float64
	MaxTime int64
}
