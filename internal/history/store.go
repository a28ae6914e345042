package history

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"StockPanel/internal/model"

	"go.uber.org/zap"
)

const fieldSep = ": "

// Store persists the price history as one "timestamp: price" line per sample.
type Store struct {
	path   string
	max    int
	now    func() time.Time
	logger *zap.Logger
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the time source used to stamp new samples.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithMaxSamples overrides the history cap.
func WithMaxSamples(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.max = n
		}
	}
}

// NewStore creates a Store backed by path, creating its directory if needed.
func NewStore(path string, logger *zap.Logger, opts ...Option) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		path:   path,
		max:    model.MaxSamples,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load reads the backing file. A missing or unreadable file yields an empty
// series; malformed lines are skipped.
func (s *Store) Load() model.Series {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("read price history failed", zap.String("path", s.path), zap.Error(err))
		}
		return model.Series{}
	}

	series := model.Series{}
	skipped := 0
	sc := bufio.NewScanner(strings.NewReader(string(data)))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		smp, ok := parseLine(line)
		if !ok {
			skipped++
			continue
		}
		series = append(series, smp)
	}
	if err := sc.Err(); err != nil {
		s.logger.Warn("scan price history failed", zap.String("path", s.path), zap.Error(err))
		return model.Series{}
	}
	if skipped > 0 {
		s.logger.Debug("skipped malformed history lines", zap.Int("count", skipped))
	}
	return Trim(series, s.max)
}

// Append stamps price with the current time, appends it, trims the series to
// the cap and rewrites the backing file. The returned series includes the new
// sample even when the write fails.
func (s *Store) Append(series model.Series, price float64) (model.Series, error) {
	next := make(model.Series, len(series), len(series)+1)
	copy(next, series)
	next = append(next, model.Sample{Timestamp: s.now().Unix(), Price: price})
	next = Trim(next, s.max)
	if err := s.Save(next); err != nil {
		return next, err
	}
	return next, nil
}

// Save rewrites the backing file with the full series.
func (s *Store) Save(series model.Series) error {
	if err := os.WriteFile(s.path, Encode(series), 0o644); err != nil {
		return fmt.Errorf("write price history: %w", err)
	}
	return nil
}

// Trim drops the oldest samples until len(series) <= max.
func Trim(series model.Series, max int) model.Series {
	if max <= 0 || len(series) <= max {
		return series
	}
	return series[len(series)-max:]
}

// Encode renders the series in the on-disk format.
func Encode(series model.Series) []byte {
	var b strings.Builder
	for _, smp := range series {
		b.WriteString(strconv.FormatInt(smp.Timestamp, 10))
		b.WriteString(fieldSep)
		b.WriteString(strconv.FormatFloat(smp.Price, 'f', -1, 64))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func parseLine(line string) (model.Sample, bool) {
	parts := strings.Split(line, fieldSep)
	if len(parts) != 2 {
		return model.Sample{}, false
	}
	ts, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		// Some writers store fractional seconds.
		f, ferr := strconv.ParseFloat(parts[0], 64)
		if ferr != nil || !finite(f) {
			return model.Sample{}, false
		}
		ts = int64(f)
	}
	price, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || !finite(price) {
		return model.Sample{}, false
	}
	return model.Sample{Timestamp: ts, Price: price}, true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
