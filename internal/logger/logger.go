package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"StockPanel/internal/config"
)

// New creates a zap.Logger from the log configuration. When console is false
// nothing is written to stdout, which keeps the terminal host's screen clean;
// with no file configured the result is then a no-op logger.
func New(opts config.LogConfig, console bool) (*zap.Logger, error) {
	var out zapcore.WriteSyncer
	if console {
		out = zapcore.Lock(os.Stdout)
	}
	return build(opts, out)
}

// build tees an optional console writer with the rotating log file.
func build(opts config.LogConfig, out zapcore.WriteSyncer) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(opts.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	var cores []zapcore.Core
	if out != nil {
		cores = append(cores, zapcore.NewCore(newEncoder(opts.Format), out, lvl))
	}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			fileWriter,
			lvl,
		))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// newEncoder returns a human-readable encoder for "console", JSON otherwise.
func newEncoder(format string) zapcore.Encoder {
	if format == "console" {
		return zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}
	return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
}

// CronLogger adapts a zap.Logger to cron.Logger.
type CronLogger struct {
	l *zap.SugaredLogger
}

var _ cron.Logger = CronLogger{}

func NewCronLogger(l *zap.Logger) CronLogger {
	return CronLogger{l: l.Named("cron").Sugar()}
}

func (c CronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
