package widget

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"StockPanel/internal/collector"
	"StockPanel/internal/config"
	"StockPanel/internal/history"
	"StockPanel/internal/model"
	"StockPanel/internal/recorder"
)

type fakeRecorder struct {
	mu       sync.Mutex
	quotes   []recorder.QuoteEvent
	failures []recorder.FailureEvent
}

func (f *fakeRecorder) RecordQuote(evt *recorder.QuoteEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotes = append(f.quotes, *evt)
	return nil
}

func (f *fakeRecorder) RecordFailure(evt *recorder.FailureEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, *evt)
	return nil
}

func (f *fakeRecorder) Close() error { return nil }

type harness struct {
	applet  *Applet
	fetcher *collector.MockFetcher
	rec     *fakeRecorder
	store   *history.Store
	cfgPath string

	mu     sync.Mutex
	frames []Snapshot
}

func (h *harness) redraws() []Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Snapshot(nil), h.frames...)
}

func newHarness(t *testing.T, token string) *harness {
	t.Helper()
	dir := t.TempDir()
	clock := time.Unix(1700000000, 0)
	store, err := history.NewStore(filepath.Join(dir, "history.txt"), nil, history.WithClock(func() time.Time {
		clock = clock.Add(10 * time.Minute)
		return clock
	}))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	cfg := config.Default()
	cfg.Widget.APIToken = token
	cfg.Widget.StockSymbol = "AAPL"

	h := &harness{
		fetcher: &collector.MockFetcher{Quote: model.Quote{Current: 150.25, High: 151, Low: 149.5}},
		rec:     &fakeRecorder{},
		store:   store,
		cfgPath: filepath.Join(dir, "config.yaml"),
	}
	h.applet = NewApplet(Options{
		Config:     cfg,
		ConfigPath: h.cfgPath,
		Store:      store,
		Collector:  collector.NewCollector(h.fetcher),
		Recorder:   h.rec,
		OnRedraw: func(s Snapshot) {
			h.mu.Lock()
			h.frames = append(h.frames, s)
			h.mu.Unlock()
		},
	})
	return h
}

func TestOnTickAppendsAndPersists(t *testing.T) {
	h := newHarness(t, "tok")
	h.applet.OnTick(context.Background())
	h.fetcher.Quote.Current = 151
	h.applet.OnTick(context.Background())

	snap := h.applet.Snapshot()
	if len(snap.History) != 2 {
		t.Fatalf("history = %d samples, want 2", len(snap.History))
	}
	if snap.History[1].Price != 151 {
		t.Errorf("last price = %v, want 151", snap.History[1].Price)
	}
	if snap.Err != nil {
		t.Errorf("unexpected error: %v", snap.Err)
	}
	if !strings.HasPrefix(snap.Status, "Stock: AAPL\nCurrent: $151.00\nToday's Range: $149.50 - $151.00") {
		t.Errorf("status = %q", snap.Status)
	}
	if snap.Summary != "AAPL: $151.00 | [149.50..151.00]" {
		t.Errorf("summary = %q", snap.Summary)
	}

	data, err := os.ReadFile(h.store.Path())
	if err != nil {
		t.Fatalf("read history: %v", err)
	}
	if want := "1700000600: 150.25\n1700001200: 151\n"; string(data) != want {
		t.Errorf("history file = %q, want %q", data, want)
	}
	if n := len(h.redraws()); n != 2 {
		t.Errorf("redraws = %d, want 2", n)
	}
	if n := len(h.rec.quotes); n != 2 {
		t.Errorf("recorded quotes = %d, want 2", n)
	}
}

func TestOnTickErrors(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		fetchErr   error
		wantStatus string
		wantKind   string
		wantCalls  int
	}{
		{"no token", "", nil, MsgNoToken, "NO_TOKEN", 0},
		{"fetch failed", "tok", errors.New("status 500"), MsgFetchFailed, "FETCH_FAILED", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.token)
			h.fetcher.Err = tt.fetchErr
			h.applet.OnTick(context.Background())

			snap := h.applet.Snapshot()
			if snap.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", snap.Status, tt.wantStatus)
			}
			if len(snap.History) != 0 {
				t.Errorf("history grew on error: %v", snap.History)
			}
			if h.fetcher.Calls != tt.wantCalls {
				t.Errorf("fetch calls = %d, want %d", h.fetcher.Calls, tt.wantCalls)
			}
			if len(h.rec.failures) != 1 || h.rec.failures[0].Kind != tt.wantKind {
				t.Errorf("failures = %+v, want one %s", h.rec.failures, tt.wantKind)
			}
			if len(h.redraws()) != 1 {
				t.Error("error tick should still redraw")
			}
			if _, err := os.Stat(h.store.Path()); !os.IsNotExist(err) {
				t.Errorf("history file written on error: %v", err)
			}
		})
	}
}

func TestMountLoadsHistoryAndTicks(t *testing.T) {
	h := newHarness(t, "tok")
	if err := os.WriteFile(h.store.Path(), []byte("1699990000: 148\n1699990600: 149\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := h.applet.OnMount(context.Background()); err != nil {
		t.Fatalf("OnMount: %v", err)
	}
	defer h.applet.OnUnmount()

	snap := h.applet.Snapshot()
	if len(snap.History) != 3 {
		t.Fatalf("history = %d samples, want 2 loaded + 1 fetched", len(snap.History))
	}
	if snap.History[0].Price != 148 || snap.History[2].Price != 150.25 {
		t.Errorf("unexpected history %v", snap.History)
	}
	if err := h.applet.OnMount(context.Background()); !errors.Is(err, ErrAlreadyMounted) {
		t.Errorf("second mount err = %v, want ErrAlreadyMounted", err)
	}
}

func TestUnmountIsIdempotent(t *testing.T) {
	h := newHarness(t, "tok")
	h.applet.OnUnmount()
	if err := h.applet.OnMount(context.Background()); err != nil {
		t.Fatal(err)
	}
	h.applet.OnUnmount()
	h.applet.OnUnmount()

	// Refresh after unmount is a no-op.
	calls := h.fetcher.Calls
	h.applet.Refresh()
	if h.fetcher.Calls != calls {
		t.Error("refresh after unmount fetched")
	}
}

func TestRefreshFetches(t *testing.T) {
	h := newHarness(t, "tok")
	if err := h.applet.OnMount(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer h.applet.OnUnmount()

	h.applet.Refresh()
	if n := len(h.applet.Snapshot().History); n != 2 {
		t.Errorf("history = %d, want 2 after mount + refresh", n)
	}
}

func TestApplySettingsPersistsAndRedraws(t *testing.T) {
	h := newHarness(t, "tok")
	if err := h.applet.OnMount(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer h.applet.OnUnmount()

	s := h.applet.Settings()
	s.ShowPanelChart = false
	s.UpdateInterval = 5
	before := len(h.redraws())
	if err := h.applet.ApplySettings(s); err != nil {
		t.Fatalf("ApplySettings: %v", err)
	}

	if got := len(h.redraws()); got != before+1 {
		t.Errorf("redraws = %d, want %d", got, before+1)
	}
	if h.applet.Settings().ShowPanelChart {
		t.Error("settings not applied")
	}
	if got := h.applet.timer.Interval(); got != 5*time.Minute {
		t.Errorf("timer interval = %v, want 5m", got)
	}

	cfg, err := config.Load(h.cfgPath)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if cfg.Widget.ShowPanelChart || cfg.Widget.UpdateInterval != 5 {
		t.Errorf("persisted settings = %+v", cfg.Widget)
	}
}

func TestApplySettingsSymbolChangeRefetches(t *testing.T) {
	h := newHarness(t, "tok")
	if err := h.applet.OnMount(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer h.applet.OnUnmount()
	if q := h.applet.Snapshot().Quote; q == nil || q.Symbol != "AAPL" {
		t.Fatalf("mounted quote = %+v, want AAPL", q)
	}

	calls := h.fetcher.Calls
	before := len(h.redraws())
	h.fetcher.Quote.Current = 310.5
	s := h.applet.Settings()
	s.StockSymbol = "MSFT"
	if err := h.applet.ApplySettings(s); err != nil {
		t.Fatalf("ApplySettings: %v", err)
	}

	frames := h.redraws()
	if len(frames) != before+2 {
		t.Fatalf("redraws = %d, want %d", len(frames), before+2)
	}
	cleared := frames[before]
	if cleared.Quote != nil {
		t.Errorf("old quote kept after symbol change: %+v", cleared.Quote)
	}
	if !strings.HasPrefix(cleared.Status, "Stock: MSFT\nNo current data available") {
		t.Errorf("status = %q", cleared.Status)
	}
	if cleared.Summary != "MSFT: --" {
		t.Errorf("summary = %q, want MSFT: --", cleared.Summary)
	}

	if h.fetcher.Calls != calls+1 {
		t.Errorf("fetch calls = %d, want %d", h.fetcher.Calls, calls+1)
	}
	snap := h.applet.Snapshot()
	if snap.Quote == nil || snap.Quote.Symbol != "MSFT" {
		t.Fatalf("quote = %+v, want MSFT", snap.Quote)
	}
	if snap.Summary != "MSFT: $310.50 | [149.50..151.00]" {
		t.Errorf("summary = %q", snap.Summary)
	}
}

func TestApplySettingsSymbolChangeUnmounted(t *testing.T) {
	h := newHarness(t, "tok")
	h.applet.OnTick(context.Background())

	s := h.applet.Settings()
	s.StockSymbol = "MSFT"
	if err := h.applet.ApplySettings(s); err != nil {
		t.Fatalf("ApplySettings: %v", err)
	}
	snap := h.applet.Snapshot()
	if snap.Quote != nil || snap.Summary != "MSFT: --" {
		t.Errorf("quote = %+v summary = %q, want cleared", snap.Quote, snap.Summary)
	}
	if h.fetcher.Calls != 1 {
		t.Errorf("fetch calls = %d, want 1 while unmounted", h.fetcher.Calls)
	}
}
