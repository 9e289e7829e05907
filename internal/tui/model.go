package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/parley-dev/parley/internal/capability"
	"github.com/parley-dev/parley/internal/console"
	"github.com/parley-dev/parley/internal/dispatch"
	"github.com/parley-dev/parley/internal/session"
)

// Slash commands accepted in the input box. Everything else is sent to the
// agent as a free-form message.
var slashActions = map[string]string{
	"/overview":     dispatch.ActionDatabaseOverview,
	"/issues":       dispatch.ActionCommonIssues,
	"/trends":       dispatch.ActionCallTrends,
	"/capabilities": dispatch.ActionCapabilities,
}

// ============================================================================
// Message Types
// ============================================================================

// probeDoneMsg carries the result of a liveness probe.
type probeDoneMsg struct {
	state session.ConnectionState
}

// capsDoneMsg carries a capability cache read.
type capsDoneMsg struct {
	summary capability.Summary
	err     error
}

// replyMsg carries the assistant turn produced by a dispatch.
type replyMsg struct {
	turn session.Turn
	err  error
}

// searchDoneMsg carries a templated search result.
type searchDoneMsg struct {
	term   string
	result dispatch.SearchResult
	err    error
}

// ============================================================================
// Model
// ============================================================================

// Model is the Bubble Tea model for the chat console. All blocking work
// (probes, refreshes, dispatch) runs inside tea.Cmds; one operation is in
// flight at a time and the input is disabled until it completes.
type Model struct {
	console *console.Console

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	conn       session.ConnectionState
	caps       capability.Summary
	haveCaps   bool
	lastSearch string
	statusLine string
	loading    bool
	ready      bool
	width      int
	height     int
}

// NewModel creates the chat model around an existing console.
func NewModel(c *console.Console) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about call transcripts... (/overview /issues /trends /capabilities /search <term> /refresh /clear)"
	ta.CharLimit = 5000
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(primaryColor))

	return Model{
		console:  c,
		textarea: ta,
		spinner:  sp,
		loading:  true, // initial probe in flight
	}
}

// Init probes the service before anything else becomes interactive.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick, m.probeCmd())
}

func (m Model) probeCmd() tea.Cmd {
	return func() tea.Msg {
		return probeDoneMsg{state: m.console.Probe(context.Background())}
	}
}

func (m Model) capsCmd(force bool) tea.Cmd {
	return func() tea.Msg {
		sum, err := m.console.Capabilities(context.Background(), force)
		return capsDoneMsg{summary: sum, err: err}
	}
}

func (m Model) sendCmd(text string) tea.Cmd {
	return func() tea.Msg {
		turn, err := m.console.Send(context.Background(), text)
		return replyMsg{turn: turn, err: err}
	}
}

func (m Model) quickCmd(action string) tea.Cmd {
	return func() tea.Msg {
		turn, err := m.console.QuickAction(context.Background(), action)
		return replyMsg{turn: turn, err: err}
	}
}

func (m Model) searchCmd(term string, max int) tea.Cmd {
	return func() tea.Msg {
		res, err := m.console.Search(context.Background(), term, max)
		return searchDoneMsg{term: term, result: res, err: err}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case KeyCtrlC, KeyEsc:
			return m, tea.Quit
		case KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()
			return m.handleInput(input)
		}

	case probeDoneMsg:
		m.conn = msg.state
		m.loading = false
		if msg.state.Connected {
			m.statusLine = ""
			// Connection established: pull capabilities for the header.
			m.loading = true
			return m, m.capsCmd(false)
		}
		m.statusLine = ErrorStyle.Render("Service unreachable - " + console.RemediationHint + " (/connect to retry)")
		m.refreshViewport()
		return m, nil

	case capsDoneMsg:
		m.loading = false
		if msg.err == nil {
			m.caps = msg.summary
			m.haveCaps = true
		}
		return m, nil

	case replyMsg:
		m.loading = false
		if msg.err != nil {
			m.statusLine = ErrorStyle.Render(msg.err.Error())
		} else {
			m.statusLine = DimStyle.Render(fmt.Sprintf("Response time: %.2fs", msg.turn.ExecutionTime))
		}
		m.refreshViewport()
		return m, nil

	case searchDoneMsg:
		m.loading = false
		switch {
		case msg.err != nil:
			m.statusLine = ErrorStyle.Render(msg.err.Error())
		case !msg.result.Success:
			m.statusLine = ErrorStyle.Render("Search failed: " + msg.result.Error)
		default:
			m.lastSearch = fmt.Sprintf("Search %q found %d result(s)\n\n%s",
				msg.term, msg.result.TotalFound, msg.result.ResponseText)
			m.statusLine = ""
		}
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := msg.Height - 12
		if vpHeight < 5 {
			vpHeight = 5
		}
		vpWidth := msg.Width - 4
		if vpWidth < 20 {
			vpWidth = 20
		}

		if !m.ready {
			m.viewport = viewport.New(vpWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = vpWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(vpWidth)
		m.refreshViewport()
		return m, nil
	}

	if !m.loading {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleInput routes a submitted line: slash command or free-form message.
func (m Model) handleInput(input string) (tea.Model, tea.Cmd) {
	if action, ok := slashActions[input]; ok {
		m.loading = true
		m.statusLine = ""
		return m, tea.Batch(m.spinner.Tick, m.quickCmd(action))
	}

	switch {
	case input == "/clear":
		m.console.ClearChat()
		m.lastSearch = ""
		m.statusLine = DimStyle.Render("Chat history cleared")
		m.refreshViewport()
		return m, nil

	case input == "/connect":
		m.loading = true
		m.statusLine = ""
		return m, tea.Batch(m.spinner.Tick, m.probeCmd())

	case input == "/refresh":
		if !m.conn.Connected {
			m.statusLine = ErrorStyle.Render("Not connected; /connect first")
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.capsCmd(true))

	case strings.HasPrefix(input, "/search "):
		term, max := parseSearch(strings.TrimPrefix(input, "/search "))
		if term == "" {
			m.statusLine = ErrorStyle.Render("Usage: /search <term> [max]")
			return m, nil
		}
		if !m.conn.Connected {
			m.statusLine = ErrorStyle.Render("Not connected; /connect first")
			return m, nil
		}
		m.loading = true
		m.statusLine = ""
		return m, tea.Batch(m.spinner.Tick, m.searchCmd(term, max))

	case strings.HasPrefix(input, "/"):
		m.statusLine = ErrorStyle.Render("Unknown command " + input)
		return m, nil
	}

	if !m.conn.Connected {
		m.statusLine = ErrorStyle.Render("Not connected; /connect first")
		return m, nil
	}
	m.loading = true
	m.statusLine = ""
	m.refreshViewport()
	return m, tea.Batch(m.spinner.Tick, m.sendCmd(input))
}

// parseSearch splits "term words [max]" where a trailing integer sets the
// result limit.
func parseSearch(rest string) (term string, max int) {
	max = 5
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", max
	}
	if len(fields) > 1 {
		if n, err := strconv.Atoi(fields[len(fields)-1]); err == nil && n > 0 {
			max = n
			fields = fields[:len(fields)-1]
		}
	}
	return strings.Join(fields, " "), max
}

// refreshViewport re-renders the transcript into the viewport.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.transcript())
	m.viewport.GotoBottom()
}

// transcript formats the session's turns (and any search block) for display.
func (m *Model) transcript() string {
	turns := m.console.Session().Turns()
	if len(turns) == 0 && m.lastSearch == "" {
		return DimStyle.Render("No messages yet. Ask about call transcripts to get started.")
	}

	var b strings.Builder
	for i, t := range turns {
		switch t.Role {
		case session.RoleUser:
			b.WriteString(userStyle.Render("You: "))
		case session.RoleAssistant:
			b.WriteString(assistantStyle.Render("Agent: "))
		default:
			b.WriteString(DimStyle.Render(t.Role + ": "))
		}
		b.WriteString(t.Content)
		if t.RoundCount > 0 {
			b.WriteString("\n")
			b.WriteString(DimStyle.Render(fmt.Sprintf("  %.2fs local, %d rounds, %.2fs remote",
				t.ExecutionTime, t.RoundCount, t.RemoteExecutionTime)))
		}
		if i < len(turns)-1 {
			b.WriteString("\n\n")
		}
	}
	if m.lastSearch != "" {
		if len(turns) > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.lastSearch)
	}
	return b.String()
}

// header renders the connection and capability summary line.
func (m *Model) header() string {
	var parts []string
	if m.conn.Connected {
		parts = append(parts, SuccessStyle.Render("Connected "+m.conn.Endpoint))
		if m.conn.Authenticated {
			parts = append(parts, DimStyle.Render("bearer auth"))
		} else {
			parts = append(parts, DimStyle.Render("public access"))
		}
	} else {
		parts = append(parts, ErrorStyle.Render("Disconnected"))
	}

	if m.haveCaps {
		caps := fmt.Sprintf("%d tools", m.caps.ToolCount)
		if m.caps.Status != capability.StatusSuccess {
			caps += " (" + m.caps.Status + ")"
		}
		if age, ok := m.console.CacheAge(); ok {
			caps += fmt.Sprintf(", cached %ds ago", int(age.Seconds()))
		}
		parts = append(parts, DimStyle.Render(caps))
	}

	st := m.console.Session().Stats()
	if st.HasTurns {
		parts = append(parts, DimStyle.Render(fmt.Sprintf("%d questions", st.UserTurns)))
	}

	return strings.Join(parts, DimStyle.Render("  ·  "))
}

// View renders the full screen.
func (m Model) View() string {
	if !m.ready {
		return "Starting..."
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Parley"))
	b.WriteString("  ")
	b.WriteString(m.header())
	b.WriteString("\n\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(fmt.Sprintf("%s Thinking...", m.spinner.View()))
		b.WriteString("\n\n")
		b.WriteString(DimStyle.Render(m.textarea.View()))
	} else {
		b.WriteString(m.textarea.View())
	}
	b.WriteString("\n")

	if m.statusLine != "" {
		b.WriteString(m.statusLine)
		b.WriteString("\n")
	}
	b.WriteString(DimStyle.Render("Enter: send · Esc: quit"))

	return b.String()
}
