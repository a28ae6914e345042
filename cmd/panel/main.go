package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"StockPanel/internal/chart"
	"StockPanel/internal/collector"
	"StockPanel/internal/config"
	"StockPanel/internal/history"
	"StockPanel/internal/logger"
	"StockPanel/internal/model"
	"StockPanel/internal/recorder"
	"StockPanel/internal/render"
	"StockPanel/internal/tui"
	"StockPanel/internal/widget"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}

	root := &cobra.Command{
		Use:          "stockpanel",
		Short:        "Stock quote panel widget backed by Finnhub",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", cfgPath, "path to the YAML config file")
	root.AddCommand(
		newRunCmd(&cfgPath),
		newTUICmd(&cfgPath),
		newRenderCmd(&cfgPath),
		newChartCmd(&cfgPath),
	)
	return root
}

// setup loads and validates the config and builds the logger.
func setup(cfgPath string, console bool) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config validation: %w", err)
	}
	log, err := logger.New(cfg.Log, console)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

// newApplet wires the widget's collaborators. The caller closes the recorder.
func newApplet(cfg *config.Config, cfgPath string, log *zap.Logger, redraw widget.RedrawFunc) (*widget.Applet, recorder.Recorder, error) {
	store, err := history.NewStore(cfg.Storage.HistoryFile, log.Named("history"))
	if err != nil {
		return nil, nil, err
	}
	col := collector.New(cfg)
	log.Info("data source", zap.String("fetcher", col.Fetcher.Name()))

	rec := recorder.Open(cfg.Storage.SQLitePath, log.Named("recorder"))
	applet := widget.NewApplet(widget.Options{
		Config:     cfg,
		ConfigPath: cfgPath,
		Store:      store,
		Collector:  col,
		Recorder:   rec,
		Logger:     log.Named("widget"),
		OnRedraw:   redraw,
	})
	return applet, rec, nil
}

func newRunCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Poll quotes and keep the panel PNG up to date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(*cfgPath, true)
			if err != nil {
				return err
			}
			defer log.Sync()
			log.Info("StockPanel starting")

			painter := render.NewPainter(log.Named("render"))
			redraw := widget.PanelWriter(cfg.Storage.PanelOutput, painter, log)
			if cfg.Storage.StatusOutput != "" {
				redraw = widget.Fanout(redraw, widget.StatusWriter(cfg.Storage.StatusOutput, log))
			}
			applet, rec, err := newApplet(cfg, *cfgPath, log, redraw)
			if err != nil {
				return err
			}
			defer rec.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			if err := applet.OnMount(ctx); err != nil {
				return err
			}
			defer applet.OnUnmount()
			log.Info("StockPanel is running. Press Ctrl+C to stop.",
				zap.String("panel", cfg.Storage.PanelOutput))

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
			for sig := range sigCh {
				if sig != syscall.SIGHUP {
					break
				}
				// SIGHUP re-reads the settings file.
				next, err := config.Load(*cfgPath)
				if err != nil {
					log.Warn("reload config", zap.Error(err))
					continue
				}
				if err := applet.ApplySettings(next.Widget); err != nil {
					log.Warn("apply settings", zap.Error(err))
				}
			}
			log.Info("shutdown signal received, stopping...")
			return nil
		},
	}
}

func newTUICmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Show the panel in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(*cfgPath, false)
			if err != nil {
				return err
			}
			defer log.Sync()

			bridge := tui.NewBridge()
			redraw := bridge.Redraw
			if cfg.Storage.StatusOutput != "" {
				redraw = widget.Fanout(redraw, widget.StatusWriter(cfg.Storage.StatusOutput, log))
			}
			applet, rec, err := newApplet(cfg, *cfgPath, log, redraw)
			if err != nil {
				return err
			}
			defer rec.Close()
			defer applet.OnUnmount()

			p := tea.NewProgram(tui.NewModel(cmd.Context(), applet, bridge), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
}

func newRenderCmd(cfgPath *string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw the panel once from the stored history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(*cfgPath, true)
			if err != nil {
				return err
			}
			defer log.Sync()
			if out == "" {
				out = cfg.Storage.PanelOutput
			}

			store, err := history.NewStore(cfg.Storage.HistoryFile, log.Named("history"))
			if err != nil {
				return err
			}
			series := store.Load()
			canvas := render.NewPainter(log.Named("render")).Draw(series, cfg.Widget)
			if err := render.WritePNG(out, canvas); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), widget.Tooltip(cfg.Widget.StockSymbol, nil, series))
			log.Info("panel written", zap.String("path", out), zap.Int("samples", len(series)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output PNG (default storage.panel_output)")
	return cmd
}

func newChartCmd(cfgPath *string) *cobra.Command {
	var (
		out           string
		width, height int
		average       int
		fetch         bool
	)
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render the full-size history chart",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(*cfgPath, true)
			if err != nil {
				return err
			}
			defer log.Sync()

			store, err := history.NewStore(cfg.Storage.HistoryFile, log.Named("history"))
			if err != nil {
				return err
			}
			series := store.Load()

			var quote *model.Quote
			if fetch {
				q, err := collector.New(cfg).Collect(cmd.Context(), cfg.Widget.StockSymbol, cfg.Widget.APIToken)
				if err != nil {
					log.Warn("quote unavailable, charting history only", zap.Error(err))
				} else {
					quote = q
				}
			}

			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create chart file: %w", err)
			}
			defer f.Close()
			err = chart.RenderDetail(f, series, quote, chart.DetailOptions{
				Width:     width,
				Height:    height,
				LineColor: render.ParseColor(cfg.Widget.ChartLineColor),
				FillColor: render.ParseColor(cfg.Widget.ChartAreaColor),

				AveragePeriod: average,
			})
			if err != nil {
				return fmt.Errorf("render chart: %w", err)
			}
			log.Info("chart written", zap.String("path", out), zap.Int("samples", len(series)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "data/chart.png", "output PNG")
	cmd.Flags().IntVar(&width, "width", 600, "chart width in pixels")
	cmd.Flags().IntVar(&height, "height", 400, "chart height in pixels")
	cmd.Flags().IntVar(&average, "average", 12, "moving-average window in samples (0 disables)")
	cmd.Flags().BoolVar(&fetch, "fetch", false, "fetch the current quote to include today's range")
	return cmd
}
