package widget

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"StockPanel/internal/collector"
	"StockPanel/internal/config"
	"StockPanel/internal/history"
	"StockPanel/internal/model"
	"StockPanel/internal/recorder"
	"StockPanel/internal/scheduler"
)

// Lifecycle is the set of hooks a host drives.
type Lifecycle interface {
	OnMount(ctx context.Context) error
	OnTick(ctx context.Context)
	OnUnmount()
}

// ErrAlreadyMounted is returned by OnMount on a widget that is still mounted.
var ErrAlreadyMounted = errors.New("widget already mounted")

// State is the per-instance mutable state of a mounted widget.
type State struct {
	Settings  config.Settings
	History   model.Series
	Quote     *model.Quote
	Err       error
	Status    string
	UpdatedAt time.Time
}

// Snapshot is a copy of State handed to redraw callbacks.
type Snapshot struct {
	State
	Summary string
}

// RedrawFunc is invoked after every state change. It runs on the goroutine
// that made the change and must not call back into the Applet's mutators.
type RedrawFunc func(Snapshot)

// Options wires an Applet's collaborators.
type Options struct {
	Config     *config.Config
	ConfigPath string
	Store      *history.Store
	Collector  *collector.Collector
	Recorder   recorder.Recorder
	Logger     *zap.Logger
	OnRedraw   RedrawFunc
}

// Applet fetches quotes on a timer, keeps the bounded history, and notifies
// the host to redraw.
type Applet struct {
	mu        sync.Mutex
	state     State
	cfg       *config.Config
	cfgPath   string
	store     *history.Store
	collector *collector.Collector
	recorder  recorder.Recorder
	redraw    RedrawFunc
	logger    *zap.Logger

	timer  *scheduler.Timer
	cancel context.CancelFunc
}

var _ Lifecycle = (*Applet)(nil)

func NewApplet(opts Options) *Applet {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Recorder == nil {
		opts.Recorder = recorder.NewNoopRecorder()
	}
	if opts.OnRedraw == nil {
		opts.OnRedraw = func(Snapshot) {}
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	return &Applet{
		state:     State{Settings: opts.Config.Widget},
		cfg:       opts.Config,
		cfgPath:   opts.ConfigPath,
		store:     opts.Store,
		collector: opts.Collector,
		recorder:  opts.Recorder,
		redraw:    opts.OnRedraw,
		logger:    opts.Logger,
	}
}

func interval(s config.Settings) time.Duration {
	m := s.UpdateInterval
	if m <= 0 {
		m = config.DefaultInterval
	}
	return time.Duration(m) * time.Minute
}

// OnMount loads the stored history, fetches once, and starts the timer.
func (a *Applet) OnMount(ctx context.Context) error {
	a.mu.Lock()
	if a.timer != nil {
		a.mu.Unlock()
		return ErrAlreadyMounted
	}
	a.state.History = a.store.Load()
	tickCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.timer = scheduler.NewTimer(func() { a.OnTick(tickCtx) }, a.logger)
	settings := a.state.Settings
	samples := len(a.state.History)
	a.mu.Unlock()

	a.logger.Info("widget mounted",
		zap.String("symbol", settings.StockSymbol),
		zap.Int("samples", samples),
		zap.String("history", a.store.Path()))

	a.timer.RunNow()
	a.timer.Start(interval(settings))
	return nil
}

// OnTick fetches a quote and, on success, appends it to the history. Errors
// only change the status text; the timer keeps running.
func (a *Applet) OnTick(ctx context.Context) {
	a.mu.Lock()
	settings := a.state.Settings
	a.mu.Unlock()

	q, err := a.collector.Collect(ctx, settings.StockSymbol, settings.APIToken)

	a.mu.Lock()
	a.state.UpdatedAt = time.Now()
	a.state.Err = err
	if err != nil {
		a.state.Status = ErrorStatus(err)
		a.recordFailure(settings.StockSymbol, err)
		if errors.Is(err, collector.ErrNoToken) {
			a.logger.Warn("no api token configured")
		} else {
			a.logger.Warn("quote fetch failed", zap.String("symbol", settings.StockSymbol), zap.Error(err))
		}
	} else {
		next, werr := a.store.Append(a.state.History, q.Current)
		if werr != nil {
			a.logger.Warn("save price history", zap.Error(werr))
		}
		a.state.History = next
		a.state.Quote = q
		a.state.Status = Tooltip(q.Symbol, q, next)
		if rerr := a.recorder.RecordQuote(&recorder.QuoteEvent{
			Symbol: q.Symbol, Current: q.Current, High: q.High, Low: q.Low, FetchedAt: q.FetchedAt,
		}); rerr != nil {
			a.logger.Warn("record quote", zap.Error(rerr))
		}
		a.logger.Debug("quote fetched", zap.String("symbol", q.Symbol), zap.Float64("price", q.Current), zap.Int("samples", len(next)))
	}
	snap := a.snapshotLocked()
	a.mu.Unlock()

	a.redraw(snap)
}

func (a *Applet) recordFailure(symbol string, err error) {
	kind := "FETCH_FAILED"
	if errors.Is(err, collector.ErrNoToken) {
		kind = "NO_TOKEN"
	}
	if rerr := a.recorder.RecordFailure(&recorder.FailureEvent{
		Symbol: symbol, Kind: kind, Detail: err.Error(), At: time.Now(),
	}); rerr != nil {
		a.logger.Warn("record failure", zap.Error(rerr))
	}
}

// OnUnmount stops the timer. A tick in flight is cancelled and waited for.
func (a *Applet) OnUnmount() {
	a.mu.Lock()
	timer, cancel := a.timer, a.cancel
	a.timer, a.cancel = nil, nil
	a.mu.Unlock()

	if timer == nil {
		return
	}
	cancel()
	timer.Stop()
	a.logger.Info("widget unmounted")
}

// Refresh runs a tick now, outside the schedule. It is skipped if a tick is
// already running.
func (a *Applet) Refresh() {
	a.mu.Lock()
	timer := a.timer
	a.mu.Unlock()
	if timer != nil {
		timer.RunNow()
	}
}

// ApplySettings replaces the settings, restarts the timer, redraws, and
// persists the configuration file. A new symbol or token drops the cached
// quote and fetches again when mounted.
func (a *Applet) ApplySettings(s config.Settings) error {
	a.mu.Lock()
	prev := a.state.Settings
	refetch := prev.StockSymbol != s.StockSymbol || prev.APIToken != s.APIToken
	a.state.Settings = s
	a.cfg.Widget = s
	timer := a.timer
	if timer != nil {
		timer.Reset(interval(s))
	}
	switch {
	case refetch:
		a.state.Quote = nil
		a.state.Err = nil
		a.state.Status = Tooltip(s.StockSymbol, nil, a.state.History)
	case a.state.Quote != nil && a.state.Err == nil:
		a.state.Status = Tooltip(s.StockSymbol, a.state.Quote, a.state.History)
	}
	snap := a.snapshotLocked()
	a.mu.Unlock()

	a.logger.Info("settings changed",
		zap.String("symbol", s.StockSymbol),
		zap.Int("interval_min", s.UpdateInterval),
		zap.Bool("chart", s.ShowPanelChart),
		zap.Bool("refetch", refetch))
	a.redraw(snap)

	var err error
	if a.cfgPath != "" {
		if err = a.cfg.Save(a.cfgPath); err != nil {
			a.logger.Warn("persist settings", zap.Error(err))
		}
	}
	if refetch && timer != nil {
		timer.RunNow()
	}
	return err
}

// Settings returns the current settings.
func (a *Applet) Settings() config.Settings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Settings
}

// Snapshot returns a copy of the current state.
func (a *Applet) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *Applet) snapshotLocked() Snapshot {
	st := a.state
	st.History = append(model.Series(nil), a.state.History...)
	if a.state.Quote != nil {
		q := *a.state.Quote
		st.Quote = &q
	}
	return Snapshot{State: st, Summary: Summary(st.Settings, st.Quote, st.Err)}
}
