// Package tui is the terminal chat client for asking questions over the
// ingested financial documents.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"finrag/internal/domain"
)

// AnswerPort is the TUI-facing subset of the answering flow.
type AnswerPort interface {
	Answer(question, role, company string) (string, []domain.ScoredChunk, error)
}

// Model is the Bubble Tea model for the chat session.
type Model struct {
	answerer AnswerPort
	role     string
	company  string

	input    textinput.Model
	viewport viewport.Model
	history  []domain.ChatMessage
	sources  []domain.ScoredChunk
	status   string
	ready    bool
	thinking bool
}

// answerMsg carries a completed answer back into the update loop.
type answerMsg struct {
	question string
	answer   string
	sources  []domain.ScoredChunk
	err      error
}

// New creates a chat model scoped to a role and optional company.
func New(answerer AnswerPort, role, company string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the financial documents"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)

	scope := role
	if company != "" {
		scope += " @ " + company
	}
	return Model{
		answerer: answerer,
		role:     role,
		company:  company,
		input:    ti,
		viewport: vp,
		status:   "Chatting as " + scope + ". Enter to send, ctrl+c to quit.",
	}
}

// Init starts the text input cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 // header, status, input frame, spacer
		vh := msg.Height - reserved - th
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = maxInt(20, msg.Width)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" && !m.thinking {
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				break
			}
			m.input.SetValue("")
			m.thinking = true
			m.status = "Thinking..."
			m.history = append(m.history, domain.ChatMessage{Role: "user", Message: q})
			m.viewport.SetContent(m.renderTranscript())
			m.viewport.GotoBottom()
			return m, m.ask(q)
		}

	case answerMsg:
		m.thinking = false
		m.history = append(m.history, domain.ChatMessage{Role: "assistant", Message: msg.answer})
		m.sources = msg.sources
		if msg.err != nil {
			m.status = "Provider error, answer degraded."
		} else {
			m.status = fmt.Sprintf("Answered from %d source chunks.", len(msg.sources))
		}
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// ask runs the answer flow off the update loop.
func (m Model) ask(question string) tea.Cmd {
	return func() tea.Msg {
		answer, sources, err := m.answerer.Answer(question, m.role, m.company)
		return answerMsg{question: question, answer: answer, sources: sources, err: err}
	}
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Financial Document Chat")
	transcript := transcriptStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.history) == 0 {
		return "No messages yet. Ask something about the ingested reports."
	}
	var sb strings.Builder
	for _, msg := range m.history {
		if msg.Role == "user" {
			sb.WriteString(userStyle.Render("You: ") + msg.Message + "\n\n")
		} else {
			sb.WriteString(assistantStyle.Render("Assistant: ") + msg.Message + "\n\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

var (
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
