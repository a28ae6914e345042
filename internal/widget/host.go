package widget

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/valyala/fastjson"
	"go.uber.org/zap"

	"StockPanel/internal/render"
)

// PanelWriter returns a RedrawFunc that paints the panel and writes it as a
// PNG to path.
func PanelWriter(path string, p *render.Painter, log *zap.Logger) RedrawFunc {
	return func(s Snapshot) {
		c := p.Draw(s.History, s.Settings)
		if err := render.WritePNG(path, c); err != nil {
			log.Warn("write panel", zap.String("path", path), zap.Error(err))
			return
		}
		log.Debug("panel written", zap.String("path", path), zap.Int("samples", len(s.History)))
	}
}

// StatusJSON encodes the snapshot in the custom-module format read by status
// bars: {"text", "tooltip", "class"}.
func StatusJSON(s Snapshot) []byte {
	var a fastjson.Arena
	o := a.NewObject()
	o.Set("text", a.NewString(s.Summary))
	tooltip := s.Status
	if tooltip == "" {
		tooltip = Tooltip(s.Settings.StockSymbol, s.Quote, s.History)
	}
	o.Set("tooltip", a.NewString(tooltip))
	class := "ok"
	if s.Err != nil {
		class = "error"
	}
	o.Set("class", a.NewString(class))
	return o.MarshalTo(nil)
}

// StatusWriter returns a RedrawFunc that writes StatusJSON to path.
func StatusWriter(path string, log *zap.Logger) RedrawFunc {
	return func(s Snapshot) {
		if err := writeFileAtomic(path, append(StatusJSON(s), '\n')); err != nil {
			log.Warn("write status", zap.String("path", path), zap.Error(err))
		}
	}
}

// Fanout calls each non-nil RedrawFunc in order.
func Fanout(fns ...RedrawFunc) RedrawFunc {
	return func(s Snapshot) {
		for _, fn := range fns {
			if fn != nil {
				fn(s)
			}
		}
	}
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	return os.Rename(tmp, path)
}
