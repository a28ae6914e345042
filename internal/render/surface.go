package render

import (
	"image/color"

	"StockPanel/internal/chart"
)

// Surface is a fixed-size 2D drawing context. Coordinates are in pixels with
// the origin at the top-left; text is positioned by its baseline.
type Surface interface {
	Size() (width, height float64)
	FillRect(x, y, w, h float64, c color.Color)
	FillPath(points []chart.Point, c color.Color)
	StrokePath(points []chart.Point, lineWidth float64, c color.Color)
	SetFont(size float64, bold bool)
	TextExtents(text string) (width, height float64)
	DrawText(text string, x, y float64, c color.Color)
}
