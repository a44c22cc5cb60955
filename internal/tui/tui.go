// Package tui is a terminal rendition of the website chat widget.
package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"synapse-assistant/internal/chat"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	userStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	botStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170"))
	hintStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
)

type replyMsg struct {
	msg chat.Message
	ok  bool
}

type Model struct {
	session *chat.Session
	title   string
	input   string
	pending int
	width   int
	err     error
}

func New(session *chat.Session, title string) Model {
	return Model{session: session, title: title}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case replyMsg:
		if m.pending > 0 {
			m.pending--
		}
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.session.Close()
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyBackspace:
			if r := []rune(m.input); len(r) > 0 {
				m.input = string(r[:len(r)-1])
			}
		case tea.KeySpace:
			m.input += " "
		case tea.KeyRunes:
			m.input += string(msg.Runes)
		}
	}
	return m, nil
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input)
	if text == "" {
		return m, nil
	}
	done, err := m.session.Submit(text)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.input = ""
	m.err = nil
	m.pending++
	return m, waitForReply(done)
}

func waitForReply(done <-chan chat.Message) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-done
		return replyMsg{msg: msg, ok: ok}
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("Ask about services, pricing, portfolio or timelines. Esc to quit."))
	b.WriteString("\n\n")

	text := lipgloss.NewStyle()
	if m.width > 4 {
		text = text.Width(m.width - 4)
	}
	for _, e := range m.session.Transcript() {
		if e.Role == chat.RoleUser {
			b.WriteString(userStyle.Render("You"))
		} else {
			b.WriteString(botStyle.Render("Assistant"))
		}
		b.WriteString("\n")
		b.WriteString(text.Render(e.Text))
		b.WriteString("\n\n")
	}
	if m.pending > 0 {
		b.WriteString(hintStyle.Render("Assistant is typing…"))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(promptStyle.Render("> "))
	b.WriteString(m.input)
	return b.String()
}

// Run blocks until the user quits. The session is closed on return.
func Run(session *chat.Session, title string) error {
	defer session.Close()
	_, err := tea.NewProgram(New(session, title)).Run()
	return err
}
