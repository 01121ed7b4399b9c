package chattui

import (
	"context"

	"storybox-cli/lib"

	bubbleKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type chatUIModel struct {
	ctx     context.Context
	session *lib.ChatSession
	title   string
	keymap  keymap

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	messages []lib.ChatMessage
	state    lib.ChatState

	ready  bool
	width  int
	height int

	atScrollBottom bool

	// last send or open failure, shown above the input until the next send
	flash string

	err error
}

type keymap = struct {
	send,
	scrollUp,
	scrollDown,
	pageUp,
	pageDown,
	quit bubbleKey.Binding
}

// sessionChangedMsg is posted whenever the session's state or messages change.
type sessionChangedMsg struct{}

type openedMsg struct {
	err error
}

type sentMsg struct {
	err error
}

func initialModel(ctx context.Context, session *lib.ChatSession, title string) *chatUIModel {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.CharLimit = 2000
	input.Prompt = "› "
	input.Focus()

	return &chatUIModel{
		ctx:     ctx,
		session: session,
		title:   title,
		keymap: keymap{
			send: bubbleKey.NewBinding(
				bubbleKey.WithKeys("enter"),
				bubbleKey.WithHelp("enter", "send"),
			),
			scrollUp: bubbleKey.NewBinding(
				bubbleKey.WithKeys("up"),
				bubbleKey.WithHelp("↑", "scroll up"),
			),
			scrollDown: bubbleKey.NewBinding(
				bubbleKey.WithKeys("down"),
				bubbleKey.WithHelp("↓", "scroll down"),
			),
			pageUp: bubbleKey.NewBinding(
				bubbleKey.WithKeys("pgup"),
				bubbleKey.WithHelp("pgup", "page up"),
			),
			pageDown: bubbleKey.NewBinding(
				bubbleKey.WithKeys("pgdown"),
				bubbleKey.WithHelp("pgdown", "page down"),
			),
			quit: bubbleKey.NewBinding(
				bubbleKey.WithKeys("esc", "ctrl+c"),
				bubbleKey.WithHelp("esc", "leave"),
			),
		},
		input:          input,
		spinner:        s,
		state:          lib.ChatStateJoining,
		atScrollBottom: true,
	}
}

func (m chatUIModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink, m.open())
}

func (m chatUIModel) open() tea.Cmd {
	session := m.session
	ctx := m.ctx
	return func() tea.Msg {
		return openedMsg{err: session.Open(ctx)}
	}
}

func (m chatUIModel) send(text string) tea.Cmd {
	session := m.session
	ctx := m.ctx
	return func() tea.Msg {
		return sentMsg{err: session.Send(ctx, text)}
	}
}
