package render

import (
	"errors"
	"image/color"
	"strconv"

	"go.uber.org/zap"

	"StockPanel/internal/chart"
	"StockPanel/internal/config"
	"StockPanel/internal/model"
)

const (
	panelHeight    = 24
	textPanelWidth = 80
	maxPanelWidth  = 120
	chartMargin    = 2
	lineWidth      = 2
)

// Style is the resolved appearance of the panel.
type Style struct {
	Symbol      string
	ShowChart   bool
	ShowPrice   bool
	ShowSymbol  bool
	Background  color.NRGBA
	LineColor   color.NRGBA
	AreaColor   color.NRGBA
	FontSize    float64
	FontColor   color.NRGBA
	Shadow      bool
	ShadowColor color.NRGBA
}

// NewStyle resolves widget settings into drawing parameters.
func NewStyle(s config.Settings) Style {
	symbol := s.StockSymbol
	if symbol == "" {
		symbol = config.DefaultSymbol
	}
	fontSize := float64(s.FontSize)
	if fontSize <= 0 {
		fontSize = 10
	}
	return Style{
		Symbol:      symbol,
		ShowChart:   s.ShowPanelChart,
		ShowPrice:   s.ShowCurrentPrice,
		ShowSymbol:  s.ShowSymbolOnPanel,
		Background:  color.NRGBA{A: channel(s.ChartAreaTransparency * 255)},
		LineColor:   ParseColor(s.ChartLineColor),
		AreaColor:   ParseColor(s.ChartAreaColor),
		FontSize:    fontSize,
		FontColor:   ParseColor(s.FontColor),
		Shadow:      s.EnableFontShadow,
		ShadowColor: ParseColor(s.FontShadowColor),
	}
}

// PanelSize returns the panel region for the given settings: the chart is
// chart_width wide (capped), the text readout a fixed 80 pixels.
func PanelSize(s config.Settings) (int, int) {
	if !s.ShowPanelChart {
		return textPanelWidth, panelHeight
	}
	w := s.ChartWidth
	if w <= 0 {
		w = config.DefaultChartWidth
	}
	return min(w, maxPanelWidth), panelHeight
}

// Painter draws the panel onto a Surface.
type Painter struct {
	logger *zap.Logger
}

func NewPainter(logger *zap.Logger) *Painter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Painter{logger: logger}
}

// Paint dispatches to the chart or text painter.
func (p *Painter) Paint(s Surface, series model.Series, st Style) {
	if st.ShowChart {
		p.PaintChart(s, series, st)
		return
	}
	p.PaintText(s, series, st)
}

// PaintChart draws the sparkline area chart with the optional price and
// symbol overlays.
func (p *Painter) PaintChart(s Surface, series model.Series, st Style) {
	w, h := s.Size()
	s.FillRect(0, 0, w, h, st.Background)

	proj, err := chart.Project(series, w, h, chartMargin)
	if errors.Is(err, chart.ErrTooFewSamples) {
		s.FillRect(2, h/2-1, w-4, 2, WithAlpha(st.LineColor, 0.5))
		return
	}
	if err != nil {
		p.logger.Warn("project series", zap.Error(err))
		return
	}

	if proj.Flat {
		s.StrokePath([]chart.Point{{X: chartMargin, Y: h / 2}, {X: w - chartMargin, Y: h / 2}}, lineWidth, st.LineColor)
	} else {
		area := make([]chart.Point, 0, len(proj.Points)+2)
		area = append(area, proj.Points...)
		area = append(area, chart.Point{X: w - chartMargin, Y: h - chartMargin}, chart.Point{X: chartMargin, Y: h - chartMargin})
		s.FillPath(area, st.AreaColor)
		s.StrokePath(proj.Points, lineWidth, st.LineColor)
	}

	if st.ShowPrice {
		last, _ := series.Last()
		text := strconv.FormatFloat(last.Price, 'f', 2, 64)
		s.SetFont(st.FontSize, true)
		tw, _ := s.TextExtents(text)
		p.drawText(s, text, w-tw-2, h-2, st)
	}
	if st.ShowSymbol {
		s.SetFont(st.FontSize, false)
		p.drawText(s, st.Symbol, 2, 10, st)
	}
}

// PaintText draws "SYM: price" centred in the panel.
func (p *Painter) PaintText(s Surface, series model.Series, st Style) {
	w, h := s.Size()
	s.FillRect(0, 0, w, h, st.Background)

	text := st.Symbol + ": " + PriceLabel(series)
	s.SetFont(st.FontSize, false)
	tw, th := s.TextExtents(text)
	p.drawText(s, text, (w-tw)/2, h/2+th/2, st)
}

// PriceLabel formats the latest price with two decimals, or "---".
func PriceLabel(series model.Series) string {
	last, ok := series.Last()
	if !ok {
		return "---"
	}
	return strconv.FormatFloat(last.Price, 'f', 2, 64)
}

func (p *Painter) drawText(s Surface, text string, x, y float64, st Style) {
	if st.Shadow {
		s.DrawText(text, x+1, y+1, st.ShadowColor)
	}
	s.DrawText(text, x, y, st.FontColor)
}

// Draw paints series onto a fresh canvas sized for the settings.
func (p *Painter) Draw(series model.Series, settings config.Settings) *Canvas {
	w, h := PanelSize(settings)
	c := NewCanvas(w, h)
	p.Paint(c, series, NewStyle(settings))
	return c
}
