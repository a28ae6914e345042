package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"StockPanel/internal/chart"
)

var (
	fontsOnce   sync.Once
	regularFont *opentype.Font
	boldFont    *opentype.Font
)

func loadFonts() {
	fontsOnce.Do(func() {
		// Parse failures leave the pointers nil and faces fall back to basicfont.
		regularFont, _ = opentype.Parse(goregular.TTF)
		boldFont, _ = opentype.Parse(gobold.TTF)
	})
}

// Canvas is a raster Surface backed by an RGBA image.
type Canvas struct {
	img  *image.RGBA
	face font.Face
}

var _ Surface = (*Canvas)(nil)

// NewCanvas allocates a transparent width x height canvas.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{img: image.NewRGBA(image.Rect(0, 0, width, height))}
	c.SetFont(10, false)
	return c
}

// Image exposes the backing image.
func (c *Canvas) Image() *image.RGBA { return c.img }

func (c *Canvas) Size() (float64, float64) {
	b := c.img.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

func (c *Canvas) FillRect(x, y, w, h float64, col color.Color) {
	c.FillPath([]chart.Point{{X: x, Y: y + h}, {X: x + w, Y: y + h}, {X: x + w, Y: y}, {X: x, Y: y}}, col)
}

func (c *Canvas) FillPath(points []chart.Point, col color.Color) {
	if len(points) < 3 {
		return
	}
	z := c.rasterizer()
	addPolygon(z, points)
	c.draw(z, col)
}

// StrokePath strokes an open polyline. Each segment becomes a quad and
// interior vertices get a square join; all shapes share one winding so the
// accumulated coverage never cancels.
func (c *Canvas) StrokePath(points []chart.Point, lineWidth float64, col color.Color) {
	if len(points) < 2 || lineWidth <= 0 {
		return
	}
	half := lineWidth / 2
	z := c.rasterizer()
	for i := 1; i < len(points); i++ {
		p0, p1 := points[i-1], points[i]
		dx, dy := p1.X-p0.X, p1.Y-p0.Y
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		nx, ny := -dy/length*half, dx/length*half
		addPolygon(z, []chart.Point{
			{X: p0.X + nx, Y: p0.Y + ny},
			{X: p1.X + nx, Y: p1.Y + ny},
			{X: p1.X - nx, Y: p1.Y - ny},
			{X: p0.X - nx, Y: p0.Y - ny},
		})
	}
	for _, p := range points[1 : len(points)-1] {
		addPolygon(z, []chart.Point{
			{X: p.X - half, Y: p.Y + half},
			{X: p.X + half, Y: p.Y + half},
			{X: p.X + half, Y: p.Y - half},
			{X: p.X - half, Y: p.Y - half},
		})
	}
	c.draw(z, col)
}

// SetFont selects Go Regular or Go Bold at size pixels.
func (c *Canvas) SetFont(size float64, bold bool) {
	loadFonts()
	f := regularFont
	if bold {
		f = boldFont
	}
	if f == nil || size <= 0 {
		c.face = basicfont.Face7x13
		return
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		c.face = basicfont.Face7x13
		return
	}
	c.face = face
}

// TextExtents returns the ink bounds of text in the current font.
func (c *Canvas) TextExtents(text string) (float64, float64) {
	bounds, _ := font.BoundString(c.face, text)
	w := bounds.Max.X - bounds.Min.X
	h := bounds.Max.Y - bounds.Min.Y
	return fixedToFloat(w), fixedToFloat(h)
}

// DrawText draws text with its baseline starting at (x, y).
func (c *Canvas) DrawText(text string, x, y float64, col color.Color) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: c.face,
		Dot:  fixed.Point26_6{X: floatToFixed(x), Y: floatToFixed(y)},
	}
	d.DrawString(text)
}

func (c *Canvas) rasterizer() *vector.Rasterizer {
	b := c.img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over
	return z
}

func (c *Canvas) draw(z *vector.Rasterizer, col color.Color) {
	z.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{})
}

func addPolygon(z *vector.Rasterizer, points []chart.Point) {
	z.MoveTo(float32(points[0].X), float32(points[0].Y))
	for _, p := range points[1:] {
		z.LineTo(float32(p.X), float32(p.Y))
	}
	z.ClosePath()
}

func floatToFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(math.Round(v * 64)) }

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }

// WritePNG encodes the canvas to path. The image is written to a sibling
// temp file and renamed so readers never see a partial PNG.
func WritePNG(path string, c *Canvas) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".panel-*.png")
	if err != nil {
		return fmt.Errorf("create temp png: %w", err)
	}
	if err := png.Encode(tmp, c.img); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encode png: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp png: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename png: %w", err)
	}
	return nil
}
