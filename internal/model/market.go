package model

import "time"

// MaxSamples caps the price history: 24 hours at the default 10-minute interval.
const MaxSamples = 144

// Sample is a single price observation.
type Sample struct {
	Timestamp int64 // unix seconds
	Price     float64
}

// Time returns the sample timestamp as a time.Time.
func (s Sample) Time() time.Time {
	return time.Unix(s.Timestamp, 0)
}

// Series is the capped, insertion-ordered price history.
type Series []Sample

// Last returns the most recent sample.
func (s Series) Last() (Sample, bool) {
	if len(s) == 0 {
		return Sample{}, false
	}
	return s[len(s)-1], true
}

// Prices extracts the price column.
func (s Series) Prices() []float64 {
	prices := make([]float64, len(s))
	for i, smp := range s {
		prices[i] = smp.Price
	}
	return prices
}

// Quote is the current/high/low triple returned by the quote endpoint.
type Quote struct {
	Symbol    string
	Current   float64 // c
	High      float64 // h
	Low       float64 // l
	FetchedAt time.Time
}
