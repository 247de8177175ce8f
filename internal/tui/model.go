// Package tui provides the Bubble Tea dashboard interface.
package tui

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/noisetui/internal/ingest"
	"github.com/verte-zerg/noisetui/internal/model"
	"github.com/verte-zerg/noisetui/internal/render"
	"github.com/verte-zerg/noisetui/internal/view"
)

const tabSummary = 0

const plotHeight = 10

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea dashboard UI.
type Model struct {
	res     ingest.Result
	summary ingest.Summary
	opts    model.Options
	state   model.ViewState

	tabs      []string
	activeTab int
	viewports []viewport.Model
	views     []view.View
	tables    []table.Model
	tableMode bool

	width  int
	height int

	settingsMode   bool
	settingsInputs []textinput.Model
	settingsIndex  int
	settingsError  string

	errMsg string
}

// NewModel constructs a dashboard model over the ingested logs. The
// aggregation state lives here and nowhere else; each program run starts
// in the raw state.
func NewModel(res ingest.Result, opts model.Options) *Model {
	m := &Model{
		res:  res,
		opts: opts,
		tabs: append([]string{"Summary"}, res.Order...),
	}
	m.state = model.ViewState{LastPeriod: model.PeriodString(opts.Period, opts.Unit)}
	m.summary = ingest.BuildSummary(res)
	m.errMsg = strings.Join(res.Errors, "; ")
	m.initInputs()
	m.initViewports()
	m.initTables()
	m.rebuildViews()
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
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.settingsMode {
			return m.updateSettings(msg)
		}
		m.syncTableFocus()
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			return m.startSettings()
		case "a":
			m.state.Apply()
			m.rebuildViews()
			return m, nil
		case "t":
			if m.activeTab != tabSummary {
				m.tableMode = !m.tableMode
				m.syncTableFocus()
			}
			return m, nil
		case "g", "home":
			if m.tableViewActive() {
				m.tables[m.activeTab-1].GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.tableViewActive() {
				m.tables[m.activeTab-1].GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.tableViewActive() {
				var cmd tea.Cmd
				m.tables[m.activeTab-1], cmd = m.tables[m.activeTab-1].Update(msg)
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
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) tableViewActive() bool {
	return m.tableMode && m.activeTab != tabSummary
}

func (m *Model) syncTableFocus() {
	for i := range m.tables {
		if m.tableViewActive() && i == m.activeTab-1 {
			m.tables[i].Focus()
		} else {
			m.tables[i].Blur()
		}
	}
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initTables() {
	m.tables = make([]table.Model, len(m.res.Order))
	for i := range m.tables {
		m.tables[i] = table.New(table.WithHeight(1))
		m.tables[i].SetStyles(dataTableStyles())
	}
}

func (m *Model) initInputs() {
	m.settingsInputs = []textinput.Model{
		newSettingsInput("Period value: "),
		newSettingsInput("Unit (s/min/h): "),
	}
	m.setInputsFromOptions()
}

func newSettingsInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromOptions() {
	if len(m.settingsInputs) == 0 {
		return
	}
	m.settingsInputs[0].SetValue(strconv.Itoa(m.opts.Period))
	m.settingsInputs[1].SetValue(m.opts.Unit)
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.settingsMode && m.errMsg != "" {
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
	for i := range m.tables {
		m.tables[i].SetWidth(m.width)
		m.tables[i].SetHeight(adjustTableHeight(&m.tables[i], bodyHeight))
	}
	for i := range m.settingsInputs {
		promptWidth := lipgloss.Width(m.settingsInputs[i].Prompt)
		m.settingsInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

// adjustTableHeight nudges the bubbles table height until its rendered
// view matches the target body height.
func adjustTableHeight(t *table.Model, bodyHeight int) int {
	target := maxInt(1, bodyHeight)
	height := maxInt(1, target-1)
	t.SetHeight(height)
	for i := 0; i < 2; i++ {
		viewHeight := lipgloss.Height(t.View())
		if viewHeight == target {
			break
		}
		height += target - viewHeight
		if height < 1 {
			height = 1
		}
		t.SetHeight(height)
	}
	return height
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	m.syncTableFocus()
}

func (m *Model) renderTabs() string {
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

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	status := padLines(m.renderStatusLine(), m.width)
	return tabs + "\n" + status
}

func (m *Model) renderStatusLine() string {
	mode := "raw"
	if m.state.ApplyAggregation {
		mode = "applied"
	}
	status := fmt.Sprintf("Settings: period=%s  aggregation=%s  files=%d", m.state.LastPeriod, mode, len(m.res.Order))
	return headerStyle.Render(truncateLine(status, m.width))
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Apply: a  Period: /  Quit: q"
	if m.activeTab != tabSummary {
		help = "Nav: left/right  Scroll: up/down/pgup/pgdn  Table: t  Apply: a  Period: /  Quit: q"
	}
	return headerStyle.Render(help)
}

func (m *Model) renderFooter() string {
	if m.settingsMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(truncateLine(m.errMsg, m.width))
	}
	return m.renderHelp()
}

func (m *Model) renderSettingsForm() string {
	lines := []string{"Integration Period (enter to set, esc to cancel)"}
	for _, input := range m.settingsInputs {
		lines = append(lines, input.View())
	}
	lines = append(lines, headerStyle.Render("Setting a new period snaps back to raw data until re-applied with 'a'."))
	if m.settingsError != "" {
		lines = append(lines, errorStyle.Render(m.settingsError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.settingsMode {
		return fitLines(m.renderSettingsForm(), m.width, height)
	}
	if m.tableViewActive() {
		return fitLines(tableMutedStyle.Render(m.tables[m.activeTab-1].View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

// rebuildViews recomputes every position's view for the current
// aggregation state and refreshes tab contents.
func (m *Model) rebuildViews() {
	m.views = make([]view.View, len(m.res.Order))
	for i, name := range m.res.Order {
		m.views[i] = view.Build(m.res.Logs[name], m.state)
	}
	m.applyTables()
	m.renderTabContents()
}

func (m *Model) applyTables() {
	_, bodyHeight, _ := m.layoutHeights()
	for i, v := range m.views {
		cols, rows := buildDataTable(v)
		m.tables[i].SetColumns(cols)
		m.tables[i].SetRows(rows)
		if m.width > 0 {
			m.tables[i].SetWidth(m.width)
			m.tables[i].SetHeight(adjustTableHeight(&m.tables[i], bodyHeight))
		}
	}
}

func buildDataTable(v view.View) ([]table.Column, []table.Row) {
	if v.Table == nil {
		return []table.Column{{Title: "Timestamp", Width: 19}}, nil
	}
	columns := make([]table.Column, 0, len(v.Table.Columns)+1)
	columns = append(columns, table.Column{Title: v.Table.IndexName, Width: 19})
	for _, label := range v.Table.FlatLabels() {
		columns = append(columns, table.Column{Title: label, Width: maxInt(8, len(label)+2)})
	}
	rows := make([]table.Row, 0, len(v.Table.Index))
	for i, ts := range v.Table.Index {
		row := make(table.Row, 0, len(v.Table.Columns)+1)
		row = append(row, ts)
		for _, cell := range v.Table.Cells[i] {
			row = append(row, render.FormatCell(cell))
		}
		rows = append(rows, row)
	}
	return columns, rows
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabSummary].SetContent(m.renderSummaryContent(width))
	for i, v := range m.views {
		var buf bytes.Buffer
		if err := view.RenderCharts(&buf, v, width, plotHeight, true); err != nil {
			m.viewports[i+1].SetContent(fmt.Sprintf("Failed to render charts: %v", err))
			continue
		}
		m.viewports[i+1].SetContent(strings.TrimRight(buf.String(), "\n"))
	}
}

func (m *Model) renderSummaryContent(width int) string {
	var buf bytes.Buffer
	for _, msg := range m.res.Errors {
		buf.WriteString(errorStyle.Render(msg))
		buf.WriteString("\n")
	}
	if len(m.res.Errors) > 0 {
		buf.WriteString("\n")
	}
	if err := view.RenderSummary(&buf, m.summary, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render summary: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (m *Model) startSettings() (tea.Model, tea.Cmd) {
	m.settingsMode = true
	m.settingsError = ""
	m.setInputsFromOptions()
	return m, m.setSettingsIndex(0)
}

func (m *Model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.settingsMode = false
		m.settingsError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applySettings(); err != nil {
			m.settingsError = err.Error()
			return m, nil
		}
		m.settingsMode = false
		m.settingsError = ""
		m.rebuildViews()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setSettingsIndex(m.settingsIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setSettingsIndex(m.settingsIndex - 1)
	}
	var cmd tea.Cmd
	m.settingsInputs[m.settingsIndex], cmd = m.settingsInputs[m.settingsIndex].Update(msg)
	return m, cmd
}

func (m *Model) setSettingsIndex(idx int) tea.Cmd {
	count := len(m.settingsInputs)
	if count == 0 {
		return nil
	}
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.settingsIndex = idx
	var cmd tea.Cmd
	for i := range m.settingsInputs {
		if i == m.settingsIndex {
			cmd = m.settingsInputs[i].Focus()
		} else {
			m.settingsInputs[i].Blur()
		}
	}
	return cmd
}

// applySettings commits the form. Any period or unit change resets the
// aggregation state to raw; re-applying takes a separate 'a' action.
func (m *Model) applySettings() error {
	valueInput := strings.TrimSpace(m.settingsInputs[0].Value())
	value, err := strconv.Atoi(valueInput)
	if err != nil || value <= 0 {
		return fmt.Errorf("invalid period value (use a positive integer)")
	}
	unit, err := model.NormalizeUnit(m.settingsInputs[1].Value())
	if err != nil {
		return err
	}
	m.opts.Period = value
	m.opts.Unit = unit
	m.state.SetPeriod(model.PeriodString(value, unit))
	return nil
}

func dataTableStyles() table.Styles {
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
	return styles
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
