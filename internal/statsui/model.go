// Package statsui provides the Bubble Tea stats dashboard.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/keywrapped/keywrapped/internal/stats"
	"github.com/keywrapped/keywrapped/internal/store"
)

const (
	tabOverview = iota
	tabSessions
	tabWords
)

const plotHeight = 10

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#3AA6C8"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea stats dashboard.
type Model struct {
	summaryPath string
	store       *store.Store
	opts        stats.ReportOptions

	report stats.Report
	errMsg string

	tabs          []string
	activeTab     int
	viewports     []viewport.Model
	sessionsTable table.Model

	width  int
	height int
}

// NewModel constructs the dashboard over a summary document and an optional
// session store.
func NewModel(summaryPath string, st *store.Store, opts stats.ReportOptions) *Model {
	m := &Model{
		summaryPath: summaryPath,
		store:       st,
		opts:        opts,
		tabs:        []string{"Overview", "Sessions", "Words"},
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.sessionsTable = buildSessionsTable(stats.Report{}, 1)
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "r":
			m.refreshReport()
			m.updateLayout()
			return m, nil
		case "g", "home":
			if m.activeTab == tabSessions {
				m.sessionsTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabSessions {
				m.sessionsTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabSessions {
				var cmd tea.Cmd
				m.sessionsTable, cmd = m.sessionsTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.sessionsTable.SetWidth(m.width)
	m.sessionsTable.SetHeight(maxInt(1, bodyHeight-1))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabSessions {
		m.sessionsTable.Focus()
	} else {
		m.sessionsTable.Blur()
	}
}

func (m *Model) renderHeader() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderFooter() string {
	help := headerStyle.Render("Nav: left/right  Scroll: up/down  Refresh: r  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderBody() string {
	_, bodyHeight, _ := m.layoutHeights()
	if m.activeTab == tabSessions {
		if len(m.report.Sessions) == 0 {
			return fitLines("No speed sessions archived yet.", m.width, bodyHeight)
		}
		view := tableMutedStyle.Render(m.sessionsTable.View())
		return fitLines(view, m.width, bodyHeight)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, bodyHeight)
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.summaryPath, m.store, m.opts)
	if err != nil {
		m.errMsg = err.Error()
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	m.errMsg = ""
	m.report = report
	m.sessionsTable = buildSessionsTable(m.report, maxInt(1, m.height-3))
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, width))
	m.viewports[tabWords].SetContent(renderWords(m.report))
}

func renderOverview(r stats.Report, width int) string {
	s := r.Summary
	if s == nil || s.TotalEvents == 0 {
		return "No keystrokes recorded yet."
	}
	cards := []string{
		metricCard("Keystrokes", fmt.Sprintf("%d", s.TotalEvents)),
		metricCard("Words", fmt.Sprintf("%d", s.Words)),
		metricCard("WPM", fmt.Sprintf("%.0f", s.TypingProfile.WPM)),
		metricCard("Accuracy", fmt.Sprintf("%.1f", s.WordAccuracy.Score)),
		metricCard("Speed pts", fmt.Sprintf("%d/%d", s.SpeedPoints.Earned, s.SpeedPoints.TargetSessions)),
		metricCard("Rage", fmt.Sprintf("%d", s.RageClicks)),
	}
	var grid string
	if width < 80 {
		grid = strings.Join(cards, "\n")
	} else {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4], cards[5])
		grid = lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}

	sections := []string{grid}
	if dates, values := stats.DailyActivity(s, 30); len(dates) > 0 {
		sections = append(sections, fmt.Sprintf("Daily activity (%s to %s)\n%s",
			dates[0], dates[len(dates)-1], stats.Sparkline(values)))
	}
	if curves := renderCurves(r, width); curves != "" {
		sections = append(sections, curves)
	}
	return strings.TrimRight(strings.Join(sections, "\n\n"), "\n")
}

func renderCurves(r stats.Report, width int) string {
	var buf bytes.Buffer
	if err := stats.RenderSessionCurves(&buf, r.Sessions, 5, width, true); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	return strings.Trim(buf.String(), "\n")
}

func renderWords(r stats.Report) string {
	s := r.Summary
	if s == nil || len(s.WordCounts) == 0 {
		return "No words recorded yet."
	}
	var b strings.Builder
	b.WriteString(cardValueStyle.Render("Top words") + "\n")
	for _, word := range stats.TopWords(s, 20) {
		line := fmt.Sprintf("%-20s %d", word, s.WordCounts[word])
		if stat, ok := s.WordDurations[word]; ok && stat != nil && stat.Count > 0 {
			line += fmt.Sprintf("  avg %.0fms", stat.AvgMs())
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func buildSessionsTable(r stats.Report, height int) table.Model {
	columns := []table.Column{
		{Title: "Started", Width: 16},
		{Title: "Keys", Width: 6},
		{Title: "Interval", Width: 9},
		{Title: "WPM", Width: 5},
		{Title: "Accuracy", Width: 9},
		{Title: "Earned", Width: 6},
	}
	rows := make([]table.Row, 0, len(r.Sessions))
	for _, rec := range r.Sessions {
		wpm, acc := stats.SessionMetrics(rec)
		earned := ""
		if rec.Earned {
			earned = "*"
		}
		rows = append(rows, table.Row{
			rec.StartedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", rec.Keystrokes),
			fmt.Sprintf("%.0fms", rec.AvgIntervalMs),
			fmt.Sprintf("%.0f", wpm),
			fmt.Sprintf("%.0f%%", acc),
			earned,
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height)),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	t.SetStyles(styles)
	return t
}

// Run starts the dashboard program.
func Run(summaryPath string, st *store.Store, opts stats.ReportOptions) error {
	program := tea.NewProgram(NewModel(summaryPath, st, opts), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats dashboard: %w", err)
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
