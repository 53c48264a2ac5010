package cli

import (
	"context"
	"io"
	"strings"

	"github.com/alexanderramin/learnerbot/internal/cli/formatter"
	"github.com/alexanderramin/learnerbot/internal/contract"
	"github.com/alexanderramin/learnerbot/internal/service"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// turnDoneMsg carries the outcome of a submitted message.
type turnDoneMsg struct {
	res *contract.TurnResult
	err error
}

// chatModel is the full-screen chat. The transcript grows upward and the
// input stays on the last line.
type chatModel struct {
	ctx     context.Context
	app     *App
	input   textinput.Model
	spinner spinner.Model

	lines   []string
	pending bool
	height  int
}

func newChatModel(ctx context.Context, app *App) chatModel {
	ti := textinput.New()
	ti.Focus()
	ti.Prompt = ""
	ti.Placeholder = "Ask me anything..."
	ti.CharLimit = 2000

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(formatter.StylePurple),
	)

	return chatModel{
		ctx:     ctx,
		app:     app,
		input:   ti,
		spinner: sp,
		lines:   []string{formatter.FormatWelcome(service.Welcome())},
	}
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.input.Width = msg.Width - 6
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}

	case turnDoneMsg:
		m.pending = false
		if msg.err != nil {
			m.lines = append(m.lines, formatter.FormatError(msg.err))
		} else {
			m.lines = append(m.lines, formatter.FormatTurnResult(contract.NewTurnResultView(msg.res)))
		}
		return m, nil

	case spinner.TickMsg:
		if !m.pending {
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

func (m chatModel) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	if m.pending {
		m.lines = append(m.lines, formatter.Dim("Still thinking about your last question..."))
		return m, nil
	}
	m.input.Reset()

	reply, quit := handleSlashCommand(m.app, text)
	if quit {
		return m, tea.Quit
	}
	if strings.EqualFold(text, cmdNew) {
		m.lines = nil
	}
	if reply != "" {
		m.lines = append(m.lines, reply)
		return m, nil
	}

	m.pending = true
	m.lines = append(m.lines, formatter.FormatUserLine(text))
	return m, tea.Batch(m.send(text), m.spinner.Tick)
}

func (m chatModel) send(text string) tea.Cmd {
	chat, ctx := m.app.Chat, m.ctx
	return func() tea.Msg {
		res, err := chat.SubmitTurn(ctx, text)
		return turnDoneMsg{res: res, err: err}
	}
}

func (m chatModel) View() string {
	var b strings.Builder
	lines := m.lines
	if m.height > 0 {
		lines = tail(lines, m.height)
	}
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString("\n")
	}
	if m.pending {
		b.WriteString(m.spinner.View() + " " + formatter.Dim("thinking...") + "\n")
	}
	b.WriteString(formatter.StyleBlue.Render("you") + formatter.Dim("> ") + m.input.View())
	b.WriteString("\n" + formatter.Dim("enter send · /new · /progress · /help · esc quit"))
	return b.String()
}

// tail keeps the last entries whose combined line count fits in height,
// leaving room for the prompt.
func tail(entries []string, height int) []string {
	budget := height - 3
	if budget <= 0 {
		return nil
	}
	i := len(entries)
	used := 0
	for i > 0 {
		n := strings.Count(entries[i-1], "\n") + 1
		if used+n > budget && used > 0 {
			break
		}
		used += n
		i--
	}
	return entries[i:]
}

func runTUI(ctx context.Context, app *App, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(newChatModel(ctx, app),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
