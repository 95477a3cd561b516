package tui

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"bookrag/internal/service"
)

// maxRecent is how many distinct past questions are offered for reuse.
const maxRecent = 3

// QAPort is the TUI-facing subset of the QA service.
type QAPort interface {
	Ask(ctx context.Context, question string) (service.Answer, error)
}

// answerMsg carries the result of an asynchronous Ask.
type answerMsg struct {
	question string
	answer   service.Answer
	err      error
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	ctx      context.Context
	service  QAPort
	title    string
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	answer   *service.Answer
	recent   []string
	recentAt int
	excerpts bool
	cursor   int
	busy     bool
	status   string
	ready    bool
}

// New creates a new TUI model instance.
func New(ctx context.Context, svc QAPort, title string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	vp := viewport.New(0, 0)
	return Model{
		ctx:      ctx,
		service:  svc,
		title:    title,
		input:    ti,
		viewport: vp,
		spinner:  sp,
		recentAt: -1,
		status:   "Ready. Tab cycles recent questions, Ctrl+E toggles excerpts.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Recent returns past questions, newest first.
func (m Model) Recent() []string { return append([]string(nil), m.recent...) }

func (m Model) ask(q string) tea.Cmd {
	ctx, svc := m.ctx, m.service
	return func() tea.Msg {
		a, err := svc.Ask(ctx, q)
		return answerMsg{question: q, answer: a, err: err}
	}
}

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around answer and question boxes
		_, ah := answerBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 1                                    // header
		totalFooterLines := 2                                    // recent + status
		reserved := totalHeaderLines + totalFooterLines + qh + 1 // 1 spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-ah)
		m.viewport.SetContent(m.renderContent())
		return m, nil
	case answerMsg:
		m.busy = false
		if msg.err != nil {
			if errors.Is(msg.err, service.ErrNoContext) {
				m.status = "No context found."
			} else {
				m.status = "Error: " + msg.err.Error()
			}
			return m, nil
		}
		a := msg.answer
		m.answer = &a
		m.cursor = 0
		m.remember(msg.question)
		m.status = fmt.Sprintf("Answered %q from %d excerpts", msg.question, len(a.Chunks))
		m.viewport.SetContent(m.renderContent())
		m.viewport.GotoTop()
		return m, nil
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.busy {
				return m, nil
			}
			m.busy = true
			m.recentAt = -1
			m.status = "Searching the books..."
			return m, tea.Batch(m.ask(q), m.spinner.Tick)
		case "tab":
			if len(m.recent) > 0 {
				m.recentAt = (m.recentAt + 1) % len(m.recent)
				m.input.SetValue(m.recent[m.recentAt])
				m.input.CursorEnd()
			}
			return m, nil
		case "ctrl+e":
			m.excerpts = !m.excerpts
			m.viewport.SetContent(m.renderContent())
			m.viewport.GotoTop()
			return m, nil
		case "down":
			if m.excerpts && m.answer != nil && len(m.answer.Chunks) > 0 {
				m.cursor = (m.cursor + 1) % len(m.answer.Chunks)
				m.viewport.SetContent(m.renderContent())
				return m, nil
			}
		case "up":
			if m.excerpts && m.answer != nil && len(m.answer.Chunks) > 0 {
				m.cursor = (m.cursor - 1 + len(m.answer.Chunks)) % len(m.answer.Chunks)
				m.viewport.SetContent(m.renderContent())
				return m, nil
			}
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// remember records q as the newest recent question unless it is already listed.
func (m *Model) remember(q string) {
	for _, r := range m.recent {
		if r == q {
			return
		}
	}
	m.recent = append([]string{q}, m.recent...)
	if len(m.recent) > maxRecent {
		m.recent = m.recent[:maxRecent]
	}
}

// View renders the TUI layout and current answer.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render(m.title)
	body := answerBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	recent := dimStyle.Render("Recent: " + strings.Join(m.recent, " | "))
	status := m.status
	if m.busy {
		status = m.spinner.View() + " " + status
	}
	status = statusStyle.Render(status)
	return header + "\n" + body + "\n" + input + "\n" + recent + "\n" + status
}

func (m Model) renderContent() string {
	if m.answer == nil {
		return "No answer yet."
	}
	if m.excerpts {
		return m.renderExcerpt()
	}
	var b strings.Builder
	b.WriteString(m.answer.Text)
	b.WriteString("\n\n")
	b.WriteString(sectionStyle.Render("Sources"))
	for _, s := range m.answer.Sources {
		fmt.Fprintf(&b, "\n• %s, %s", s.Volume, s.Chapter)
	}
	return b.String()
}

func (m Model) renderExcerpt() string {
	if len(m.answer.Chunks) == 0 {
		return "No excerpts."
	}
	c := m.answer.Chunks[m.cursor]
	title := fmt.Sprintf("Excerpt %d/%d  %s | %s", m.cursor+1, len(m.answer.Chunks), c.Volume, c.Chapter)
	return title + "\n\n" + highlightBestSentence(c.Text, m.answer.Question)
}

var (
	answerBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	sectionStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	unicodeWordRe  = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe     = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// highlightBestSentence renders the sentence sharing the most words with query in bold.
func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{strings.TrimSpace(text)}
	}
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 {
		return strings.Join(sentences, " ")
	}
	bestIdx := 0
	bestScore := -1
	for i, s := range sentences {
		score := tokenOverlapScore(qTokens, s)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	for i := range sentences {
		sent := strings.TrimSpace(sentences[i])
		if i == bestIdx {
			sentences[i] = highlightStyle.Render(sent)
		} else {
			sentences[i] = sent
		}
	}
	return strings.Join(sentences, " ")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	tokens := unicodeWordRe.FindAllString(strings.ToLower(sentence), -1)
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
