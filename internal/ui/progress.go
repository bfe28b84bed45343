// Package ui renders check progress in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"tscan/internal/diag"
	"tscan/internal/report"
	"tscan/internal/source"
)

type unitState uint8

const (
	stateQueued unitState = iota
	stateExpanding
	stateTokenizing
	stateChecking
	stateUnused
	stateDone
	stateFailed // done with at least one error-severity finding
	stateSkipped
)

var stateNames = [...]string{"queued", "expanding", "tokenizing", "checking", "unused", "done", "error", "skipped"}

func (s unitState) String() string { return stateNames[s] }

func (s unitState) active() bool { return s > stateQueued && s < stateDone }

func (s unitState) finished() bool { return s >= stateDone }

var stageStates = map[report.Stage]unitState{
	report.StageExpand:   stateExpanding,
	report.StageTokenize: stateTokenizing,
	report.StageCheck:    stateChecking,
	report.StageUnused:   stateUnused,
	report.StageDone:     stateDone,
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	stateStyle = map[unitState]lipgloss.Style{
		stateDone:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		stateFailed: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
	busyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	idleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	warnCount  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorCount = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func (s unitState) style() lipgloss.Style {
	if st, ok := stateStyle[s]; ok {
		return st
	}
	if s.active() {
		return busyStyle
	}
	return idleStyle
}

type unitRow struct {
	path     string
	state    unitState
	config   string // configuration being checked
	percent  int
	findings int
	errors   int
}

type progressModel struct {
	title   string
	events  <-chan report.Event
	spinner spinner.Model
	bar     progress.Model
	rows    []unitRow
	byPath  map[string]int
	phase   string // session-wide stage, e.g. the unused-function pass
	width   int
	maxRows int
	done    bool

	findings              int
	bytesDone, bytesTotal int64
}

type eventMsg report.Event
type closedMsg struct{}

// NewProgressModel returns a Bubble Tea model that follows the events of a
// report.Channel and quits once events is closed.
func NewProgressModel(title string, units []string, events <-chan report.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = busyStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		rows:    make([]unitRow, len(units)),
		byPath:  make(map[string]int, len(units)),
		width:   80,
		maxRows: 20,
	}
	for i, u := range units {
		u = source.NormalizePath(u)
		m.rows[i] = unitRow{path: u}
		m.byPath[u] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		if ev, ok := <-m.events; ok {
			return eventMsg(ev)
		}
		return closedMsg{}
	}
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(report.Event(msg)), m.next())
	case closedMsg:
		m.finish()
		return m, tea.Quit
	case tea.KeyMsg:
		// проверку отменяет вызывающий, модель только выходит
		if msg.String() == "ctrl+c" {
			m.done = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
		if msg.Height > 8 {
			m.maxRows = msg.Height - 6
		}
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// finish marks units the engine never reached (cancelled or halted run).
func (m *progressModel) finish() {
	m.done = true
	for i := range m.rows {
		if !m.rows[i].state.finished() {
			m.rows[i].state = stateSkipped
		}
	}
}

func (m *progressModel) applyEvent(ev report.Event) tea.Cmd {
	switch ev.Kind {
	case report.EventErr:
		m.findings++
		if r := m.row(ev.Diag.Unit); r != nil {
			r.findings++
			if ev.Diag.Severity == diag.SevError {
				r.errors++
			}
		}
	case report.EventOut:
		// "Checking a.c: A;B..."
		rest, ok := strings.CutPrefix(ev.Msg, "Checking ")
		if unit, cfg, found := strings.Cut(strings.TrimSuffix(rest, "..."), ": "); ok && found {
			if r := m.row(unit); r != nil {
				r.config = cfg
			}
		}
	case report.EventProgress:
		if ev.File == "" {
			m.phase = stateOf(ev.Stage).String()
			return nil
		}
		r := m.row(ev.File)
		if r == nil {
			return nil
		}
		r.percent = ev.Percent
		r.state = stateOf(ev.Stage)
		if r.state == stateDone {
			r.config = ""
			if r.errors > 0 {
				r.state = stateFailed
			}
		}
		return m.bar.SetPercent(m.fraction())
	case report.EventStatus:
		m.bytesDone, m.bytesTotal = ev.BytesDone, ev.BytesTotal
		return m.bar.SetPercent(m.fraction())
	}
	return nil
}

func stateOf(stage report.Stage) unitState {
	if s, ok := stageStates[stage]; ok {
		return s
	}
	return stateChecking
}

func (m *progressModel) row(path string) *unitRow {
	if i, ok := m.byPath[source.NormalizePath(path)]; ok {
		return &m.rows[i]
	}
	return nil
}

// fraction follows checked bytes when the engine reports them, half-crediting
// units in flight; otherwise it averages unit percentages.
func (m *progressModel) fraction() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	n := float64(len(m.rows))
	if m.bytesTotal > 0 {
		f := float64(m.bytesDone) / float64(m.bytesTotal)
		for _, r := range m.rows {
			if r.state.active() {
				f += float64(r.percent) / 200 / n
			}
		}
		return min(f, 1)
	}
	var sum int
	for _, r := range m.rows {
		sum += r.percent
	}
	return float64(sum) / 100 / n
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	header := m.title
	if m.phase != "" {
		header += " (" + m.phase + ")"
	}
	if m.findings > 0 {
		header += fmt.Sprintf(", %d findings", m.findings)
	}
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")
	shown, hidden := m.visible()
	nameWidth := max(m.width-24, 20)
	for _, r := range shown {
		fmt.Fprintf(&b, "  %s %s", r.state.style().Render(fmt.Sprintf("%12s", r.state)), truncate(r.path, nameWidth))
		if r.config != "" {
			b.WriteString(dimStyle.Render(" [" + truncate(r.config, 24) + "]"))
		}
		if r.findings > 0 {
			count := warnCount
			if r.errors > 0 {
				count = errorCount
			}
			b.WriteString(count.Render(fmt.Sprintf(" (%d)", r.findings)))
		}
		b.WriteByte('\n')
	}
	if hidden != "" {
		b.WriteString(dimStyle.Render("  " + hidden))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	return b.String()
}

// visible picks the rows that fit: units in flight first, then the ones with
// findings, then the rest in input order. The others are summarized by state.
func (m *progressModel) visible() ([]unitRow, string) {
	if len(m.rows) <= m.maxRows {
		return m.rows, ""
	}
	picked := make([]bool, len(m.rows))
	var out []unitRow
	take := func(keep func(unitRow) bool) {
		for i, r := range m.rows {
			if len(out) < m.maxRows && !picked[i] && keep(r) {
				picked[i] = true
				out = append(out, r)
			}
		}
	}
	take(func(r unitRow) bool { return r.state.active() })
	take(func(r unitRow) bool { return r.findings > 0 })
	take(func(unitRow) bool { return true })

	counts := make(map[unitState]int)
	for i, r := range m.rows {
		if !picked[i] {
			counts[r.state]++
		}
	}
	var parts []string
	for s := range stateNames {
		if n := counts[unitState(s)]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, unitState(s)))
		}
	}
	return out, "... " + strings.Join(parts, ", ")
}

func truncate(value string, width int) string {
	switch {
	case width <= 0 || runewidth.StringWidth(value) <= width:
		return value
	case width <= 3:
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
