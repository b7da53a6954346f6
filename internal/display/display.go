// Package display provides the terminal cooking view using Bubble Tea.
//
// The [UI] type renders the current step and a timer status bar that
// refreshes once per second, with an optional input prompt at the bottom.
// Alerts and replies are printed above the rendered area via
// Program.Println, so concurrent writes never garble the display.
package display

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hammamikhairi/cookalong/internal/domain"
)

// Compile-time interface check.
var _ domain.Notifier = (*UI)(nil)

// Session is what the view watches and talks to.
type Session interface {
	State(ctx context.Context) (domain.SessionView, error)
	Say(ctx context.Context, utterance string) (string, error)
}

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking). Other goroutines may call
// [UI.Notify] and [UI.NotifyUrgent] at any time.
type UI struct {
	session     Session
	interactive bool
	program     *tea.Program
	readyCh     chan struct{}
	done        atomic.Bool
}

// NewUI creates the display. With interactive set, a prompt accepts
// utterances and hands them to Session.Say.
func NewUI(session Session, interactive bool) *UI {
	return &UI{
		session:     session,
		interactive: interactive,
		readyCh:     make(chan struct{}),
	}
}

// Notify prints a message above the view.
func (u *UI) Notify(_ context.Context, message string) error {
	u.println(chatStyle.Render("  " + message))
	return nil
}

// NotifyUrgent prints a message above the view in the alert colour.
func (u *UI) NotifyUrgent(_ context.Context, message string) error {
	u.println(urgentStyle.Render("  ⏰ " + message))
	return nil
}

func (u *UI) println(line string) {
	if u.program != nil && !u.done.Load() {
		u.program.Println(line)
		return
	}
	fmt.Println(line)
}

// Ready is closed once the Bubble Tea event loop is running.
func (u *UI) Ready() <-chan struct{} { return u.readyCh }

// Run starts the event loop and blocks until the user quits or ctx ends.
func (u *UI) Run(ctx context.Context) error {
	m := newModel(ctx, u.session, u.interactive)
	m.readyCh = u.readyCh

	u.program = tea.NewProgram(m)
	stop := context.AfterFunc(ctx, u.program.Quit)
	defer stop()

	_, err := u.program.Run()
	u.done.Store(true)
	return err
}

// ── Bubble Tea model ─────────────────────────────────────────────

type model struct {
	ctx         context.Context
	session     Session
	interactive bool
	input       textinput.Model
	readyCh     chan struct{}

	view   domain.SessionView
	loaded bool
	err    error
	width  int
}

type (
	tickMsg  time.Time
	stateMsg struct {
		view domain.SessionView
		err  error
	}
	replyMsg struct {
		text string
		err  error
	}
)

const promptText = "cook> "

func newModel(ctx context.Context, session Session, interactive bool) model {
	ti := textinput.New()
	// Plain-text prompt so the textinput width math stays correct.
	ti.Prompt = promptText
	ti.PromptStyle = promptStyle
	ti.TextStyle = inputStyle
	ti.Placeholder = "next, pause, set a timer for 5 minutes, or ask a question"
	ti.CharLimit = 500
	ti.Width = 60
	if interactive {
		ti.Focus()
	}
	return model{
		ctx:         ctx,
		session:     session,
		interactive: interactive,
		input:       ti,
	}
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.fetch(), tickCmd()}
	if m.readyCh != nil {
		cmds = append(cmds, signalReady(m.readyCh))
	}
	if m.interactive {
		cmds = append(cmds, textinput.Blink)
	}
	return tea.Batch(cmds...)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) fetch() tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		view, err := session.State(ctx)
		return stateMsg{view: view, err: err}
	}
}

func (m model) say(text string) tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		reply, err := session.Say(ctx, text)
		return replyMsg{text: reply, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case msg.Type == tea.KeyCtrlC, msg.Type == tea.KeyEsc:
			return m, tea.Quit
		case !m.interactive && msg.String() == "q":
			return m, tea.Quit
		case m.interactive && msg.Type == tea.KeyEnter:
			v := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if v == "" {
				return m, nil
			}
			echo := promptStyle.Render(promptText) + inputStyle.Render(v)
			return m, tea.Sequence(tea.Println(echo), m.say(v))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > len(promptText) {
			m.input.Width = msg.Width - len(promptText) - 1
		}
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetch(), tickCmd())

	case stateMsg:
		m.err = msg.err
		if msg.err == nil {
			m.view = msg.view
			m.loaded = true
		}
		return m, tea.SetWindowTitle(titleStr(m.view))

	case replyMsg:
		if msg.err != nil {
			return m, tea.Batch(tea.Println(urgentStyle.Render("  "+msg.err.Error())), m.fetch())
		}
		return m, tea.Batch(tea.Println(chatStyle.Render("  "+msg.text)), m.fetch())
	}

	if !m.interactive {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	var b strings.Builder

	switch {
	case !m.loaded && m.err != nil:
		b.WriteString(urgentStyle.Render("  " + m.err.Error()))
		b.WriteByte('\n')
	case !m.loaded:
		b.WriteString(secondaryStyle.Render("  loading session..."))
		b.WriteByte('\n')
	default:
		b.WriteString(renderStep(m.view, m.width))
		if bar := renderTimers(m.view.Timers, m.width); bar != "" {
			b.WriteString(bar)
			b.WriteByte('\n')
		}
		if m.err != nil {
			b.WriteString(urgentStyle.Render("  " + m.err.Error()))
			b.WriteByte('\n')
		}
	}

	b.WriteByte('\n')
	if m.interactive {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(secondaryStyle.Render("  q to quit"))
	}
	return b.String()
}
