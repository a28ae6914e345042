package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"StockPanel/internal/collector"
	"StockPanel/internal/config"
	"StockPanel/internal/model"
	"StockPanel/internal/widget"
)

type fakeApplet struct {
	settings  config.Settings
	snap      widget.Snapshot
	mounted   int
	unmounted int
	refreshed int
	applied   []config.Settings
}

func (f *fakeApplet) OnMount(context.Context) error { f.mounted++; return nil }
func (f *fakeApplet) OnTick(context.Context)        {}
func (f *fakeApplet) OnUnmount()                    { f.unmounted++ }
func (f *fakeApplet) Refresh()                      { f.refreshed++ }
func (f *fakeApplet) Settings() config.Settings     { return f.settings }
func (f *fakeApplet) Snapshot() widget.Snapshot     { return f.snap }

func (f *fakeApplet) ApplySettings(s config.Settings) error {
	f.settings = s
	f.applied = append(f.applied, s)
	return nil
}

func newFake() *fakeApplet {
	s := config.Default().Widget
	return &fakeApplet{settings: s, snap: widget.Snapshot{State: widget.State{Settings: s}}}
}

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestBridgeKeepsLatest(t *testing.T) {
	b := NewBridge()
	b.Redraw(widget.Snapshot{Summary: "first"})
	b.Redraw(widget.Snapshot{Summary: "second"})
	if got := (<-b.ch).Summary; got != "second" {
		t.Errorf("got %q, want second", got)
	}
	select {
	case s := <-b.ch:
		t.Errorf("unexpected extra snapshot %q", s.Summary)
	default:
	}
}

func TestQuitUnmounts(t *testing.T) {
	f := newFake()
	m := NewModel(context.Background(), f, NewBridge())
	_, cmd := m.Update(keyMsg('q'))
	if f.unmounted != 1 {
		t.Errorf("unmounted = %d, want 1", f.unmounted)
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestRefreshKey(t *testing.T) {
	f := newFake()
	m := NewModel(context.Background(), f, NewBridge())
	_, cmd := m.Update(keyMsg('r'))
	if cmd == nil {
		t.Fatal("expected refresh command")
	}
	cmd()
	if f.refreshed != 1 {
		t.Errorf("refreshed = %d, want 1", f.refreshed)
	}
}

func TestModeKeyTogglesChart(t *testing.T) {
	f := newFake()
	m := NewModel(context.Background(), f, NewBridge())
	_, cmd := m.Update(keyMsg('c'))
	if cmd == nil {
		t.Fatal("expected settings command")
	}
	msg := cmd()
	if len(f.applied) != 1 || f.applied[0].ShowPanelChart {
		t.Fatalf("applied = %+v, want chart disabled", f.applied)
	}
	m.Update(msg)
	if m.notice != "" {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestMountAndSnapshotFlow(t *testing.T) {
	f := newFake()
	b := NewBridge()
	m := NewModel(context.Background(), f, b)

	if msg := m.mount()(); msg.(mountedMsg).err != nil {
		t.Fatal("mount failed")
	}
	if f.mounted != 1 {
		t.Errorf("mounted = %d", f.mounted)
	}

	snap := widget.Snapshot{State: widget.State{
		Settings: f.settings,
		History: model.Series{
			{Timestamp: 1, Price: 100}, {Timestamp: 2, Price: 102}, {Timestamp: 3, Price: 101},
		},
		Quote:  &model.Quote{Symbol: "NVDA", Current: 101, High: 103, Low: 99},
		Status: "Stock: NVDA",
	}}
	b.Redraw(snap)
	msg := m.listen()()
	_, cmd := m.Update(msg)
	if cmd == nil {
		t.Error("snapshot should re-arm the listener")
	}

	view := m.View()
	for _, want := range []string{"NVDA", "101.00", "[99.00..103.00]", "●", "Stock: NVDA"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if !strings.ContainsAny(view, "▁█") {
		t.Errorf("view missing sparkline:\n%s", view)
	}
}

func TestViewShowsError(t *testing.T) {
	f := newFake()
	m := NewModel(context.Background(), f, NewBridge())
	m.Update(snapshotMsg(widget.Snapshot{State: widget.State{
		Settings: f.settings,
		Err:      collector.ErrNoToken,
		Status:   widget.MsgNoToken,
	}}))
	view := m.View()
	if !strings.Contains(view, widget.MsgNoToken) {
		t.Errorf("view missing error status:\n%s", view)
	}
	if !strings.Contains(view, "---") {
		t.Errorf("view should show placeholder price:\n%s", view)
	}
}

func TestRangeGauge(t *testing.T) {
	tests := []struct {
		price, low, high float64
		wantIdx          int
	}{
		{99, 99, 103, 0},
		{103, 99, 103, 9},
		{101, 99, 103, 4},
		{50, 99, 103, 0},
		{10, 10, 10, 4},
	}
	for _, tt := range tests {
		g := rangeGauge(tt.price, tt.low, tt.high, 10)
		track := []rune(strings.Repeat("─", 10))
		track[tt.wantIdx] = '●'
		if !strings.Contains(g, string(track)) {
			t.Errorf("rangeGauge(%v, %v, %v) = %q, want track %q", tt.price, tt.low, tt.high, g, string(track))
		}
	}
	if g := rangeGauge(1, 5, 2, 10); g != "" {
		t.Errorf("inverted range should render nothing, got %q", g)
	}
}
