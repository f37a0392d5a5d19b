package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ── Color palette ────────────────────────────────────────────────────

var (
	colorTitleBg  = lipgloss.Color("22")
	colorTitleFg  = lipgloss.Color("120")
	colorBorder   = lipgloss.Color("62")
	colorLabel    = lipgloss.Color("252")
	colorDim      = lipgloss.Color("240")
	colorFooterBg = lipgloss.Color("235")
	colorOk       = lipgloss.Color("78")
	colorLow      = lipgloss.Color("75")
	colorHigh     = lipgloss.Color("208")
	colorCrit     = lipgloss.Color("196")
)

var metricTitles = [metricCount]struct {
	name string
	unit string
}{
	Temperature: {"Temperature", "°C"},
	Humidity:    {"Humidity", "%"},
	Light:       {"Light", "lux"},
}

// ── Messages ─────────────────────────────────────────────────────────

type tickMsg time.Time

type stateMsg State

type exportMsg struct {
	path string
	err  error
}

// ── Model ────────────────────────────────────────────────────────────

// Model is the BubbleTea model of the terminal dashboard.
type Model struct {
	ctx       context.Context
	poller    *Poller
	exportDir string
	now       func() time.Time

	state  State
	notice string
	width  int
	height int
}

// NewModel builds a dashboard model polling through p. Exports land in exportDir.
func NewModel(ctx context.Context, p *Poller, exportDir string) Model {
	return Model{
		ctx:       ctx,
		poller:    p,
		exportDir: exportDir,
		now:       time.Now,
		state:     p.Snapshot(),
	}
}

// Run launches the dashboard TUI and blocks until the user quits or ctx ends.
func Run(ctx context.Context, p *Poller, exportDir string) error {
	prog := tea.NewProgram(
		NewModel(ctx, p, exportDir),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// ── Commands ─────────────────────────────────────────────────────────

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.poller.Interval(), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) pollCmd() tea.Cmd {
	return func() tea.Msg {
		_ = m.poller.Poll(m.ctx)
		return stateMsg(m.poller.Snapshot())
	}
}

func (m Model) exportCmd() tea.Cmd {
	st := m.state
	return func() tea.Msg {
		path, err := Export(m.exportDir, st, m.now())
		return exportMsg{path: path, err: err}
	}
}

// ── Init / Update ────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.pollCmd(), m.tickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "e":
			return m, m.exportCmd()
		case "r":
			return m, m.pollCmd()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		return m, tea.Batch(m.pollCmd(), m.tickCmd())

	case stateMsg:
		m.state = State(msg)

	case exportMsg:
		if msg.err != nil {
			m.notice = "Export failed: " + msg.err.Error()
		} else {
			m.notice = "Exported to " + msg.path
		}
	}

	return m, nil
}

// ── View ─────────────────────────────────────────────────────────────

func (m Model) View() string {
	width := m.width - 2
	if width < 60 {
		width = 60
	}

	sections := []string{
		m.renderTitle(width),
		m.renderCurrent(),
	}
	if m.notice != "" {
		sections = append(sections, lipgloss.NewStyle().Foreground(colorLabel).Padding(0, 1).Render(m.notice))
	}
	sections = append(sections, m.renderTables(), m.renderFooter(width))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTitle(width int) string {
	logo := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorTitleFg).
		Render("AEROPONIC TOWER")

	var status string
	switch {
	case m.state.Connected:
		status = lipgloss.NewStyle().Foreground(colorOk).Bold(true).Render("● Connected")
	case m.state.Failures > MaxFailures:
		status = lipgloss.NewStyle().Foreground(colorCrit).Bold(true).Render("● Connection lost")
	default:
		status = lipgloss.NewStyle().Foreground(colorDim).Render("○ Waiting for data")
	}
	if !m.state.PolledAt.IsZero() {
		status += lipgloss.NewStyle().Foreground(colorDim).
			Render("  polled " + m.state.PolledAt.Format("15:04:05"))
	}

	gap := width - lipgloss.Width(logo) - lipgloss.Width(status) - 4
	if gap < 1 {
		gap = 1
	}

	return lipgloss.NewStyle().
		Background(colorTitleBg).
		Width(width).
		Padding(0, 1).
		Render(logo + strings.Repeat(" ", gap) + status)
}

func (m Model) renderCurrent() string {
	if !m.state.HasLast {
		return lipgloss.NewStyle().Foreground(colorDim).Padding(1, 2).Render("No reading yet.")
	}

	r := m.state.Last
	values := [metricCount]float64{r.Temperature, r.Humidity, float64(r.Light)}
	var cards []string
	for _, mt := range Metrics {
		band := Classify(mt, values[mt])
		title := metricTitles[mt]
		body := lipgloss.NewStyle().Bold(true).Foreground(bandColor(band)).
			Render(formatValue(mt, values[mt]) + " " + title.unit)
		cards = append(cards, lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 2).
			Width(22).
			Render(lipgloss.JoinVertical(lipgloss.Left,
				lipgloss.NewStyle().Foreground(colorLabel).Render(title.name),
				body,
				lipgloss.NewStyle().Foreground(bandColor(band)).Render(band.Label()),
			)))
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	captured := lipgloss.NewStyle().Foreground(colorDim).Padding(0, 1).
		Render("Last reading: " + r.CapturedAt)
	return lipgloss.JoinVertical(lipgloss.Left, row, captured)
}

func (m Model) renderTables() string {
	var cols []string
	for _, mt := range Metrics {
		title := metricTitles[mt]
		lines := []string{
			lipgloss.NewStyle().Bold(true).Foreground(colorLabel).Render(title.name + " (" + title.unit + ")"),
		}
		entries := m.state.History[mt]
		if len(entries) == 0 {
			lines = append(lines, lipgloss.NewStyle().Foreground(colorDim).Render("no history"))
		}
		for _, e := range entries {
			lines = append(lines, fmt.Sprintf("%-19s %7s %s",
				e.When,
				formatValue(mt, e.Value),
				lipgloss.NewStyle().Foreground(bandColor(e.Band)).Render(e.Band.Label()),
			))
		}
		cols = append(cols, lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) renderFooter(width int) string {
	dimS := lipgloss.NewStyle().Foreground(colorDim)
	labelS := lipgloss.NewStyle().Foreground(colorLabel)

	left := dimS.Render("history " + strconv.Itoa(len(m.state.History[Temperature])) + "/" + strconv.Itoa(HistorySize))
	if m.state.Failures > 0 {
		left += lipgloss.NewStyle().Foreground(colorHigh).
			Render(fmt.Sprintf("  %d failed poll(s)", m.state.Failures))
	}

	keys := dimS.Render("q") + labelS.Render(":quit") +
		dimS.Render("  e") + labelS.Render(":export csv") +
		dimS.Render("  r") + labelS.Render(":refresh")

	gap := width - lipgloss.Width(left) - lipgloss.Width(keys) - 4
	if gap < 1 {
		gap = 1
	}

	return lipgloss.NewStyle().
		Background(colorFooterBg).
		Width(width).
		Padding(0, 1).
		Render(left + strings.Repeat(" ", gap) + keys)
}

func bandColor(b Band) lipgloss.Color {
	switch b {
	case BandLow:
		return colorLow
	case BandHigh:
		return colorHigh
	default:
		return colorOk
	}
}
