package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tabview.dev/cli/internal/core/domain/plugin"
	"tabview.dev/cli/internal/infrastructure/plugins"
)

// rowOp is a row-scoped operation the sheet can dispatch to the
// coordinator. The key bindings live in keyOps, an explicit mapping table,
// so the dispatch itself is testable without a terminal.
type rowOp int

const (
	opNone rowOp = iota
	opInstall
	opRemove
)

// keyOps maps action keys to coordinator operations.
var keyOps = map[string]rowOp{
	"a": opInstall,
	"d": opRemove,
}

// sheetModel is the Bubble Tea model for the plugin sheet. All state
// mutation happens in Update on the program goroutine; installs and
// uninstalls run as background commands that post completion messages.
type sheetModel struct {
	container *Container

	rows     []plugin.Record
	warnings []string
	cursor   int
	loading  bool
	busy     map[string]string
	confirm  string
	status   string
	err      error

	windowWidth  int
	windowHeight int
}

func newSheetModel(container *Container) sheetModel {
	return sheetModel{
		container: container,
		loading:   true,
		busy:      make(map[string]string),
	}
}

// Messages posted back into the update loop.

type manifestLoadedMsg struct {
	records  []plugin.Record
	warnings []string
	err      error
}

type opDoneMsg struct {
	name   string
	op     rowOp
	result plugin.InstallResult
}

type rcChangedMsg struct{}

func (m sheetModel) Init() tea.Cmd {
	return m.loadManifestCmd()
}

func (m sheetModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case manifestLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.warnings = msg.warnings
		if err := m.container.Registry.Build(msg.records); err != nil {
			m.err = err
			return m, nil
		}
		m.rows = m.container.Registry.Records()
		m.clampCursor()
		return m, nil

	case opDoneMsg:
		delete(m.busy, msg.name)
		if msg.result.Status == plugin.NeedsConfirm {
			m.confirm = msg.name
			m.status = msg.result.Detail + " [y/n]"
			return m, nil
		}
		m.status = msg.result.Detail
		if err := m.container.Registry.Refresh(); err == nil {
			m.rows = m.container.Registry.Records()
		}
		return m, nil

	case rcChangedMsg:
		if err := m.container.Registry.Refresh(); err == nil {
			m.rows = m.container.Registry.Records()
		}
		return m, nil
	}

	return m, nil
}

func (m sheetModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// A pending overwrite confirmation swallows y/n.
	if m.confirm != "" {
		switch key {
		case "y", "Y":
			name := m.confirm
			m.confirm = ""
			return m.dispatch(opInstall, name, true)
		case "n", "N", "esc":
			m.status = fmt.Sprintf("install of %s cancelled", m.confirm)
			m.confirm = ""
			return m, nil
		}
		return m, nil
	}

	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		return m, nil

	case "r":
		m.loading = true
		m.status = ""
		return m, m.loadManifestCmd()
	}

	if op, ok := keyOps[key]; ok && m.cursor < len(m.rows) {
		return m.dispatch(op, m.rows[m.cursor].Name, false)
	}

	return m, nil
}

// dispatch starts a coordinator operation for one plugin in the
// background. The per-name serialization lives in the coordinator; the
// busy map only drives the row's status text.
func (m sheetModel) dispatch(op rowOp, name string, overwrite bool) (tea.Model, tea.Cmd) {
	switch op {
	case opInstall:
		m.busy[name] = "installing..."
	case opRemove:
		m.busy[name] = "deactivating..."
	default:
		return m, nil
	}
	m.status = ""
	return m, m.operationCmd(op, name, overwrite)
}

func (m sheetModel) operationCmd(op rowOp, name string, overwrite bool) tea.Cmd {
	coordinator := m.container.Coordinator
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		var result plugin.InstallResult
		switch op {
		case opInstall:
			result = coordinator.Install(ctx, name, plugins.InstallOptions{Overwrite: overwrite})
		case opRemove:
			result = coordinator.Uninstall(ctx, name)
		}
		return opDoneMsg{name: name, op: op, result: result}
	}
}

func (m sheetModel) loadManifestCmd() tea.Cmd {
	source := m.container.Manifest
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		records, warnings, err := source.Load(ctx)
		return manifestLoadedMsg{records: records, warnings: warnings, err: err}
	}
}

func (m *sheetModel) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// View rendering.

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	cursorStyle = lipgloss.NewStyle().Background(lipgloss.Color("240"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
)

func (m sheetModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress 'r' to retry, 'q' to quit", m.err)
	}
	if m.loading {
		return "Loading plugin manifest..."
	}

	header := titleStyle.Render("tabview plugins") +
		dimStyle.Render(fmt.Sprintf("  %d plugins", len(m.rows)))

	table := m.renderTable()
	footer := m.renderFooter()

	return lipgloss.JoinVertical(lipgloss.Left, header, table, footer)
}

func (m sheetModel) renderTable() string {
	if len(m.rows) == 0 {
		return dimStyle.Render("\n  No plugins in the manifest.\n")
	}

	rows := []string{headerStyle.Render(fmt.Sprintf("%-16s │ %-9s │ %-6s │ %-34s │ %s",
		"NAME", "INSTALLED", "ACTIVE", "DESCRIPTION", "STATUS"))}

	for i, rec := range m.rows {
		row := fmt.Sprintf("%-16s │ %-9s │ %-6s │ %-34s │ %s",
			truncate(rec.Name, 16),
			marker(rec.Installed),
			marker(rec.Active),
			truncate(rec.Description, 34),
			m.rowStatus(rec),
		)

		style := lipgloss.NewStyle()
		if i == m.cursor {
			style = cursorStyle
		}
		rows = append(rows, style.Render(row))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// rowStatus is the transient per-row note: in-flight text, dangling
// warning, or unlisted origin.
func (m sheetModel) rowStatus(rec plugin.Record) string {
	if note, ok := m.busy[rec.Name]; ok {
		return note
	}
	if rec.Dangling() {
		return warnStyle.Render("active but files missing")
	}
	if rec.Unlisted {
		return dimStyle.Render("not in manifest")
	}
	return ""
}

func (m sheetModel) renderFooter() string {
	var lines []string

	if m.status != "" {
		style := okStyle
		if strings.Contains(m.status, "fail") {
			style = warnStyle
		}
		lines = append(lines, style.Render(m.status))
	}
	for _, warning := range m.warnings {
		lines = append(lines, warnStyle.Render("warning: "+warning))
	}
	lines = append(lines, dimStyle.Render("Keys: [a] install | [d] deactivate | [r] reload | [↑↓] navigate | [q] quit"))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
