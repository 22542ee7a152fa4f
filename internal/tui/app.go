// Package tui is the interactive terminal front end: one text area, one
// submission in flight, and the rendered result of the last request.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"notes-agent/internal/presentation"
	"notes-agent/internal/usecase"
)

// Asker runs one instruction through the pipeline.
type Asker interface {
	Ask(ctx context.Context, in usecase.AskInput) (usecase.AskOutput, error)
}

type resultMsg struct {
	out usecase.AskOutput
	err error
}

type Model struct {
	ctx        context.Context
	asker      Asker
	textarea   textarea.Model
	spinner    spinner.Model
	busy       bool
	result     *presentation.View
	renderBody func(string) string
	width      int
}

type Option func(*Model)

// WithBodyRenderer replaces the markdown renderer used for note bodies.
func WithBodyRenderer(fn func(string) string) Option {
	return func(m *Model) { m.renderBody = fn }
}

func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

func NewModel(asker Asker, opts ...Option) Model {
	ta := textarea.New()
	ta.Placeholder = "e.g., 'Create a note about my Monday meeting.'"
	ta.Focus()
	ta.CharLimit = 0
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(White)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(MidGray)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	m := Model{
		ctx:      context.Background(),
		asker:    asker,
		textarea: ta,
		spinner:  sp,
		width:    80,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.renderBody == nil {
		m.renderBody = markdownRenderer(m.width)
	}
	return m
}

func markdownRenderer(width int) func(string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return func(s string) string { return s }
	}
	return func(s string) string {
		out, err := r.Render(s)
		if err != nil {
			return s
		}
		return strings.Trim(out, "\n")
	}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.textarea.SetWidth(max(msg.Width-4, 10))
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if msg.Alt {
				break
			}
			return m.submit()
		}

	case resultMsg:
		m.busy = false
		var v presentation.View
		if msg.err != nil {
			v = presentation.RenderError(msg.err)
		} else {
			v = presentation.Render(msg.out.Response)
		}
		m.result = &v
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
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// submit starts a request unless one is already running.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	text := strings.TrimSpace(m.textarea.Value())
	if text == "" {
		v := presentation.RenderInputError()
		m.result = &v
		return m, nil
	}
	m.busy = true
	m.result = nil
	m.textarea.Reset()
	return m, tea.Batch(m.spinner.Tick, m.ask(text))
}

func (m Model) ask(text string) tea.Cmd {
	ctx, asker := m.ctx, m.asker
	return func() tea.Msg {
		out, err := asker.Ask(ctx, usecase.AskInput{Text: text})
		return resultMsg{out: out, err: err}
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("My Note Dashboard"))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render("Type instructions below to create, retrieve, or list notes."))
	b.WriteString("\n\n")
	b.WriteString(InputBorderStyle.Render(m.textarea.View()))
	b.WriteString("\n")

	if m.busy {
		b.WriteString(m.spinner.View() + " Working on it...\n")
	} else if m.result != nil {
		b.WriteString("\n")
		b.WriteString(m.renderResult(*m.result))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("enter submit • esc quit"))
	return b.String()
}

func (m Model) renderResult(v presentation.View) string {
	lines := []string{bannerStyle(v.Kind).Render(v.Message)}
	if v.Title != "" {
		lines = append(lines, "", NoteTitleStyle.Render("Note Title: "+v.Title), m.renderBody(v.Body))
	}
	if len(v.Items) > 0 {
		lines = append(lines, "", ListHeaderStyle.Render("Current Titles:"))
		for _, item := range v.Items {
			lines = append(lines, ListItemStyle.Render("- "+item))
		}
	}
	if v.Notice != "" {
		lines = append(lines, NoticeStyle.Render(v.Notice))
	}
	return strings.Join(lines, "\n")
}

func bannerStyle(k presentation.Kind) lipgloss.Style {
	switch k {
	case presentation.KindSuccess:
		return SuccessBannerStyle
	case presentation.KindError:
		return ErrorBannerStyle
	}
	return InfoBannerStyle
}

// Run starts the program on the terminal and blocks until the user quits.
func Run(ctx context.Context, asker Asker) error {
	p := tea.NewProgram(NewModel(asker, WithContext(ctx)), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
