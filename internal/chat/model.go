// Package chat is the terminal chat frontend of the assistant.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/josinaldojr/assistant-rag/internal/client"
	"github.com/josinaldojr/assistant-rag/internal/rag"
)

// Backend is the frontend-facing subset of the backend client.
type Backend interface {
	Ask(ctx context.Context, query string) (*rag.AskResponse, error)
	Health(ctx context.Context) (*rag.HealthResponse, error)
}

type answerMsg struct{ answer string }

type askErrMsg struct{ err error }

type healthMsg struct {
	health *rag.HealthResponse
	err    error
}

// Model is the Bubble Tea model of the chat. One question is in flight at a
// time; a failed turn keeps the user message and adds no assistant entry.
type Model struct {
	backend  Backend
	timeout  time.Duration
	history  History
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	busy     bool
	errText  string
	detail   string
	status   string
}

func New(backend Backend, timeout time.Duration) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Posez votre question …"
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		backend:  backend,
		timeout:  timeout,
		input:    ti,
		viewport: viewport.New(80, 20),
		spinner:  sp,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.checkHealth)
}

// History returns the conversation so far.
func (m Model) History() []Message { return m.history.Messages() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		_, fh := historyBoxStyle.GetFrameSize()
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reservedLines-fh)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}

	case answerMsg:
		m.busy = false
		m.history.Append(RoleAssistant, msg.answer)
		m.refresh()
		return m, nil

	case askErrMsg:
		m.busy = false
		m.errText, m.detail = describeError(msg.err)
		m.refresh()
		return m, nil

	case healthMsg:
		if msg.err != nil {
			m.status = "Backend injoignable pour le moment."
		} else {
			m.status = fmt.Sprintf("%d documents indexés · %s (%s)", msg.health.VectorDBDocs, msg.health.LLMProvider, msg.health.Model)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	q := strings.TrimSpace(m.input.Value())
	if q == "" {
		return m, nil
	}

	m.history.Append(RoleUser, q)
	m.input.Reset()
	m.busy = true
	m.errText, m.detail = "", ""
	m.refresh()
	return m, tea.Batch(m.spinner.Tick, m.ask(q))
}

func (m Model) ask(q string) tea.Cmd {
	backend, timeout := m.backend, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := backend.Ask(ctx, q)
		if err != nil {
			return askErrMsg{err: err}
		}
		return answerMsg{answer: resp.Answer}
	}
}

func (m Model) checkHealth() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	h, err := m.backend.Health(ctx)
	return healthMsg{health: h, err: err}
}

func describeError(err error) (string, string) {
	var se *client.StatusError
	switch {
	case errors.As(err, &se):
		return fmt.Sprintf("Le backend a renvoyé une erreur %d", se.Code), se.Detail
	case errors.Is(err, client.ErrUnreachable):
		return "Erreur de connexion : Impossible de joindre le backend.", "Détail technique : " + err.Error()
	default:
		return "Erreur inattendue.", err.Error()
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

func (m Model) renderHistory() string {
	msgs := m.history.Messages()
	if len(msgs) == 0 {
		return captionStyle.Render("Aucun message pour l'instant.")
	}
	width := max(10, m.viewport.Width-4)
	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if msg.Role == RoleUser {
			b.WriteString(userLabelStyle.Render("Vous"))
		} else {
			b.WriteString(assistantLabelStyle.Render("Assistant"))
		}
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(width).Render(msg.Content))
	}
	return b.String()
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Assistant Intelligent"))
	b.WriteString("\n")
	b.WriteString(captionStyle.Render("Une intelligence artificielle contextuelle, pilotée par vos documents."))
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(captionStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(historyBoxStyle.Render(m.viewport.View()))
	b.WriteString("\n")

	switch {
	case m.busy:
		b.WriteString(m.spinner.View() + " Chargement...")
	case m.errText != "":
		b.WriteString(errorStyle.Render(m.errText))
		if m.detail != "" {
			b.WriteString("\n")
			b.WriteString(captionStyle.Render(m.detail))
		}
	}
	b.WriteString("\n")
	b.WriteString(inputBoxStyle.Render(m.input.View()))
	return b.String()
}

// reservedLines counts the lines around the history box: title, caption,
// status, busy/error (two), input box.
const reservedLines = 9

var (
	titleStyle          = lipgloss.NewStyle().Bold(true)
	captionStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	userLabelStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	historyBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
