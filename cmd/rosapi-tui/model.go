package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/corewire/rosapi"
	"github.com/corewire/rosapi/highlight"
)

var (
	statusStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

// Model is the Bubble Tea model for the interactive RouterOS session:
// a command input line, a scrolling pane of highlighted events, and a
// status line showing the connection's State. Scoped down from the
// teacher's TUI — no filter/search/analytics/explain panels, since
// RouterOS replies have no query-plan or transaction structure to
// inspect.
type Model struct {
	client *rosapi.Client
	events <-chan rosapi.Event

	input  string
	lines  []string
	err    error
	width  int
	height int
	scroll int
}

// eventMsg carries one Event received from the broker subscription.
type eventMsg struct{ Event rosapi.Event }

// replyMsg carries the result of running a command.
type replyMsg struct {
	reply *rosapi.ParsedReply
	err   error
}

// New creates a Model bound to an already-connected Client and its
// broker's event channel.
func New(client *rosapi.Client, events <-chan rosapi.Event) Model {
	return Model{client: client, events: events}
}

// Init starts listening for broker events.
func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func waitForEvent(ch <-chan rosapi.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg{Event: ev}
	}
}

func runCommand(client *rosapi.Client, query rosapi.Query) tea.Cmd {
	return func() tea.Msg {
		reply, err := client.Run(query)
		return replyMsg{reply: reply, err: err}
	}
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		m.lines = append(m.lines, formatEvent(msg.Event))
		m.scroll = max(len(m.lines)-m.visibleLines(), 0)
		return m, waitForEvent(m.events)

	case replyMsg:
		if msg.err != nil {
			m.lines = append(m.lines, "error: "+msg.err.Error())
		} else {
			for _, row := range msg.reply.Rows {
				m.lines = append(m.lines, highlight.Sentence("!re", row))
			}
		}
		m.scroll = max(len(m.lines)-m.visibleLines(), 0)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			_ = m.client.Close()
			return m, tea.Quit
		case "enter":
			if m.input == "" {
				return m, nil
			}
			path := m.input
			m.input = ""
			query := rosapi.Command(path)
			m.lines = append(m.lines, promptStyle.Render("> ")+strings.Join(rosapi.Redact(query.Words()), " "))
			m.scroll = max(len(m.lines)-m.visibleLines(), 0)
			return m, runCommand(m.client, query)
		case "backspace":
			if len(m.input) > 0 {
				m.input = m.input[:len(m.input)-1]
			}
			return m, nil
		case "up":
			if m.scroll > 0 {
				m.scroll--
			}
			return m, nil
		case "down":
			if m.scroll < max(len(m.lines)-m.visibleLines(), 0) {
				m.scroll++
			}
			return m, nil
		}
		if len(msg.Runes) > 0 {
			m.input += string(msg.Runes)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m Model) visibleLines() int {
	return max(m.height-4, 3)
}

// View renders the pane, status line, and input prompt.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	visible := m.visibleLines()
	start := min(m.scroll, max(len(m.lines)-visible, 0))
	end := min(start+visible, len(m.lines))
	pane := strings.Join(m.lines[start:end], "\n")

	status := statusStyle.Render(fmt.Sprintf("[%s] %s", m.client.State(), m.client.ID()[:8]))
	prompt := promptStyle.Render("> ") + m.input

	return strings.Join([]string{pane, status, prompt}, "\n")
}

func formatEvent(ev rosapi.Event) string {
	switch {
	case ev.RepeatAlert != nil:
		return fmt.Sprintf("-- %s %s issued %d times within the repeat window", ev.Kind, ev.RepeatAlert.Command, ev.RepeatAlert.Count)
	case ev.SlowAlert != nil:
		return fmt.Sprintf("-- %s %s took %s", ev.Kind, ev.SlowAlert.Command, ev.SlowAlert.Elapsed)
	case ev.Reply == nil:
		return fmt.Sprintf("-- %s %s", ev.Kind, ev.Command)
	}
	tag := "!done"
	switch ev.Reply.Terminator {
	case rosapi.TerminatorTrap:
		tag = "!trap"
	case rosapi.TerminatorFatal:
		tag = "!fatal"
	}
	return fmt.Sprintf("-- %s %s", ev.Kind, highlight.Sentence(tag, ev.Reply.Trailer))
}
