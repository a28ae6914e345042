package render

import (
	"image/color"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultColor is used when a colour string cannot be parsed.
var DefaultColor = color.NRGBA{R: 51, G: 204, B: 51, A: 255}

var rgbaPattern = regexp.MustCompile(`rgba?\(([^)]+)\)`)

// ParseColor parses "rgb(r, g, b)" or "rgba(r, g, b, a)" with 0-255 channels
// and a 0-1 alpha. Anything else yields DefaultColor.
func ParseColor(s string) color.NRGBA {
	m := rgbaPattern.FindStringSubmatch(s)
	if m == nil {
		return DefaultColor
	}
	fields := strings.Split(m[1], ",")
	if len(fields) < 3 {
		return DefaultColor
	}
	vals := make([]float64, 0, 4)
	for _, f := range fields[:min(len(fields), 4)] {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return DefaultColor
		}
		vals = append(vals, v)
	}
	alpha := 1.0
	if len(vals) > 3 {
		alpha = vals[3]
	}
	return color.NRGBA{
		R: channel(vals[0]),
		G: channel(vals[1]),
		B: channel(vals[2]),
		A: channel(alpha * 255),
	}
}

// WithAlpha returns c with its alpha replaced by a (0-1).
func WithAlpha(c color.NRGBA, a float64) color.NRGBA {
	c.A = channel(a * 255)
	return c
}

func channel(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
