package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"StockPanel/internal/calculator"
	"StockPanel/internal/chart"
	"StockPanel/internal/config"
	"StockPanel/internal/render"
	"StockPanel/internal/widget"
)

// Controller is the part of the widget the terminal host drives.
type Controller interface {
	widget.Lifecycle
	Refresh()
	Settings() config.Settings
	ApplySettings(config.Settings) error
	Snapshot() widget.Snapshot
}

// Bridge carries snapshots from the widget's timer goroutine into the
// bubbletea loop. Only the latest snapshot is kept.
type Bridge struct {
	ch chan widget.Snapshot
}

func NewBridge() *Bridge {
	return &Bridge{ch: make(chan widget.Snapshot, 1)}
}

// Redraw is a widget.RedrawFunc. It never blocks.
func (b *Bridge) Redraw(s widget.Snapshot) {
	select {
	case <-b.ch:
	default:
	}
	select {
	case b.ch <- s:
	default:
	}
}

type snapshotMsg widget.Snapshot

type mountedMsg struct{ err error }

type settingsMsg struct{ err error }

// Model is the terminal host.
type Model struct {
	ctx    context.Context
	applet Controller
	bridge *Bridge

	snap    widget.Snapshot
	mounted bool
	err     error
	notice  string

	help  help.Model
	width int
}

func NewModel(ctx context.Context, applet Controller, bridge *Bridge) *Model {
	return &Model{
		ctx:    ctx,
		applet: applet,
		bridge: bridge,
		snap:   applet.Snapshot(),
		help:   help.New(),
		width:  80,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.mount(), m.listen())
}

func (m *Model) mount() tea.Cmd {
	return func() tea.Msg {
		return mountedMsg{err: m.applet.OnMount(m.ctx)}
	}
}

func (m *Model) listen() tea.Cmd {
	return func() tea.Msg {
		s, ok := <-m.bridge.ch
		if !ok {
			return nil
		}
		return snapshotMsg(s)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.applet.OnUnmount()
			return m, tea.Quit
		case key.Matches(msg, keys.Refresh):
			m.notice = "refreshing..."
			return m, func() tea.Msg {
				m.applet.Refresh()
				return nil
			}
		case key.Matches(msg, keys.Mode):
			s := m.applet.Settings()
			s.ShowPanelChart = !s.ShowPanelChart
			return m, func() tea.Msg {
				return settingsMsg{err: m.applet.ApplySettings(s)}
			}
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case mountedMsg:
		m.err = msg.err
		m.mounted = msg.err == nil
		m.snap = m.applet.Snapshot()

	case settingsMsg:
		if msg.err != nil {
			m.notice = "settings not saved: " + msg.err.Error()
		} else {
			m.notice = ""
		}

	case snapshotMsg:
		m.snap = widget.Snapshot(msg)
		m.notice = ""
		return m, m.listen()
	}
	return m, nil
}

func (m *Model) View() string {
	if m.err != nil {
		return errorStyle.Render("mount failed: "+m.err.Error()) + "\n"
	}

	s := m.snap
	symbol := s.Settings.StockSymbol
	if symbol == "" {
		symbol = config.DefaultSymbol
	}

	var lines []string
	header := symbolStyle.Render(symbol) + "  " + priceStyle.Render(render.PriceLabel(s.History))
	if s.Quote != nil && s.Settings.ShowDailyRange {
		header += "  " + mutedStyle.Render(fmt.Sprintf("[%.2f..%.2f]", s.Quote.Low, s.Quote.High))
	}
	lines = append(lines, header)

	if s.Settings.ShowPanelChart {
		cols := max(m.width-6, 10)
		lines = append(lines, sparkStyle.Render(chart.Sparkline(s.History, cols)))
	}
	if s.Quote != nil {
		lines = append(lines, rangeGauge(s.Quote.Current, s.Quote.Low, s.Quote.High, 30))
	}

	switch {
	case s.Err != nil:
		lines = append(lines, errorStyle.Render(s.Status))
	case s.Status != "":
		lines = append(lines, mutedStyle.Render(s.Status))
	case !m.mounted:
		lines = append(lines, mutedStyle.Render("loading..."))
	}
	if m.notice != "" {
		lines = append(lines, mutedStyle.Render(m.notice))
	}

	body := panelStyle.Render(strings.Join(lines, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, body, m.help.View(keys)) + "\n"
}

// rangeGauge places the current price on the day's low..high track.
func rangeGauge(price, low, high float64, width int) string {
	pos, err := calculator.Position(price, low, high)
	if err != nil {
		return ""
	}
	idx := int(pos * float64(width-1))
	track := []rune(strings.Repeat("─", width))
	track[idx] = '●'
	return mutedStyle.Render("L ") + sparkStyle.Render(string(track)) + mutedStyle.Render(" H")
}
