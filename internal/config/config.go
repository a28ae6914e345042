package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSymbol       = "NVDA"
	DefaultInterval     = 10 // minutes
	DefaultChartWidth   = 80
	DefaultFontSize     = 10
	DefaultTransparency = 0.3
	DefaultLineColor    = "rgba(51, 204, 51, 1.0)"
	DefaultAreaColor    = "rgba(51, 204, 51, 0.3)"
	DefaultFontColor    = "rgba(255, 255, 255, 1.0)"
	DefaultShadowColor  = "rgba(0, 0, 0, 0.8)"
	DefaultHistoryFile  = "data/price_history.txt"
	DefaultPanelOutput  = "data/panel.png"
	DefaultSQLitePath   = "data/stock_panel.db"
	DefaultLogLevel     = "info"
)

// Settings is the user-facing widget preference set. It is read at mount and
// written back whenever the user changes it.
type Settings struct {
	APIToken              string  `yaml:"api_token"`
	StockSymbol           string  `yaml:"stock_symbol"`
	UpdateInterval        int     `yaml:"update_interval"`
	ShowCurrentPrice      bool    `yaml:"show_current_price"`
	ShowDailyRange        bool    `yaml:"show_daily_range"`
	ShowPanelChart        bool    `yaml:"show_panel_chart"`
	ShowSymbolOnPanel     bool    `yaml:"show_symbol_on_panel"`
	ChartWidth            int     `yaml:"chart_width"`
	ChartAreaTransparency float64 `yaml:"chart_area_transparency"`
	ChartLineColor        string  `yaml:"chart_line_color"`
	ChartAreaColor        string  `yaml:"chart_area_color"`
	FontSize              int     `yaml:"font_size"`
	FontColor             string  `yaml:"font_color"`
	EnableFontShadow      bool    `yaml:"enable_font_shadow"`
	FontShadowColor       string  `yaml:"font_shadow_color"`
}

// Config holds all application configuration.
type Config struct {
	Widget  Settings `yaml:"widget"`
	Finnhub struct {
		// BaseURL switches to the plain REST fetcher when set.
		BaseURL string `yaml:"base_url"`
		Timeout int    `yaml:"timeout_seconds"`
	} `yaml:"finnhub"`
	Storage struct {
		HistoryFile  string `yaml:"history_file"`
		PanelOutput  string `yaml:"panel_output"`
		StatusOutput string `yaml:"status_output"`
		SQLitePath   string `yaml:"sqlite_path"`
	} `yaml:"storage"`
	Log   LogConfig `yaml:"log"`
	Proxy string    `yaml:"proxy"`

	// file is the config as decoded from disk, before the environment
	// overlay. Save writes it back with only the Widget section replaced.
	file *Config
	env  envOverlay
}

// envOverlay records the widget values that came from the environment.
type envOverlay struct {
	token, symbol string
	interval      int
}

// LogConfig controls the zap logger. File enables a rotating JSON log.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default returns a Config populated with the widget defaults. Boolean
// toggles default to on, so they are seeded before the file is decoded.
func Default() *Config {
	cfg := &Config{}
	cfg.Widget = Settings{
		StockSymbol:           DefaultSymbol,
		UpdateInterval:        DefaultInterval,
		ShowCurrentPrice:      true,
		ShowDailyRange:        true,
		ShowPanelChart:        true,
		ShowSymbolOnPanel:     true,
		ChartWidth:            DefaultChartWidth,
		ChartAreaTransparency: DefaultTransparency,
		ChartLineColor:        DefaultLineColor,
		ChartAreaColor:        DefaultAreaColor,
		FontSize:              DefaultFontSize,
		FontColor:             DefaultFontColor,
		EnableFontShadow:      true,
		FontShadowColor:       DefaultShadowColor,
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads config from a YAML file, then the .env file next to the working
// directory, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	file := *cfg
	file.applyDefaults()
	cfg.file = &file

	// A missing .env is normal outside development.
	_ = godotenv.Load()

	// Environment variable overrides
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		cfg.Widget.APIToken = v
	} else if v := os.Getenv("API_KEY"); v != "" {
		cfg.Widget.APIToken = v
	}
	if v := os.Getenv("STOCK_SYMBOL"); v != "" {
		cfg.Widget.StockSymbol = v
	}
	if v := os.Getenv("UPDATE_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Widget.UpdateInterval = n
		}
	}
	if cfg.Widget.APIToken != file.Widget.APIToken {
		cfg.env.token = cfg.Widget.APIToken
	}
	if cfg.Widget.StockSymbol != file.Widget.StockSymbol {
		cfg.env.symbol = cfg.Widget.StockSymbol
	}
	if cfg.Widget.UpdateInterval != file.Widget.UpdateInterval {
		cfg.env.interval = cfg.Widget.UpdateInterval
	}
	if v := os.Getenv("FINNHUB_BASE_URL"); v != "" {
		cfg.Finnhub.BaseURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("HISTORY_FILE"); v != "" {
		cfg.Storage.HistoryFile = v
	}
	if v := os.Getenv("PANEL_OUTPUT"); v != "" {
		cfg.Storage.PanelOutput = v
	}
	if v := os.Getenv("STATUS_OUTPUT"); v != "" {
		cfg.Storage.StatusOutput = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	w := &c.Widget
	if w.StockSymbol == "" {
		w.StockSymbol = DefaultSymbol
	}
	if w.UpdateInterval <= 0 {
		w.UpdateInterval = DefaultInterval
	}
	if w.ChartWidth <= 0 {
		w.ChartWidth = DefaultChartWidth
	}
	if w.FontSize <= 0 {
		w.FontSize = DefaultFontSize
	}
	if w.ChartLineColor == "" {
		w.ChartLineColor = DefaultLineColor
	}
	if w.ChartAreaColor == "" {
		w.ChartAreaColor = DefaultAreaColor
	}
	if w.FontColor == "" {
		w.FontColor = DefaultFontColor
	}
	if w.FontShadowColor == "" {
		w.FontShadowColor = DefaultShadowColor
	}
	if c.Finnhub.Timeout <= 0 {
		c.Finnhub.Timeout = 15
	}
	if c.Storage.HistoryFile == "" {
		c.Storage.HistoryFile = DefaultHistoryFile
	}
	if c.Storage.PanelOutput == "" {
		c.Storage.PanelOutput = DefaultPanelOutput
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = DefaultSQLitePath
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxBackups <= 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAgeDays <= 0 {
		c.Log.MaxAgeDays = 28
	}
}

// Validate checks that field values are usable. An empty API token is allowed:
// the widget reports it at runtime instead.
func (c *Config) Validate() error {
	w := c.Widget
	if w.ChartAreaTransparency < 0 || w.ChartAreaTransparency > 1 {
		return fmt.Errorf("widget.chart_area_transparency must be between 0 and 1")
	}
	if w.UpdateInterval > 24*60 {
		return fmt.Errorf("widget.update_interval must be at most 1440 minutes")
	}
	if w.FontSize > 48 {
		return fmt.Errorf("widget.font_size must be at most 48")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}

// Save writes the configuration back to path as YAML. For a loaded config
// only the Widget section is taken from c, and widget values still equal to
// their environment override keep the file's value. Env-only settings and
// env-sourced tokens never reach the file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c.persisted())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) persisted() *Config {
	if c.file == nil {
		return c
	}
	out := *c.file
	out.file = nil
	out.Widget = c.Widget
	w, f := &out.Widget, c.file.Widget
	if c.env.token != "" && w.APIToken == c.env.token {
		w.APIToken = f.APIToken
	}
	if c.env.symbol != "" && w.StockSymbol == c.env.symbol {
		w.StockSymbol = f.StockSymbol
	}
	if c.env.interval != 0 && w.UpdateInterval == c.env.interval {
		w.UpdateInterval = f.UpdateInterval
	}
	return &out
}
