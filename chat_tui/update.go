package chattui

import (
	"strings"

	"storybox-cli/lib"

	bubbleKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (m *chatUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case spinner.TickMsg:
		if m.state == lib.ChatStateJoining {
			spinnerModel, cmd := m.spinner.Update(msg)
			m.spinner = spinnerModel
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.windowResized(msg.Width, msg.Height)

	case sessionChangedMsg:
		m.refresh()

	case openedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.refresh()

	case sentMsg:
		if msg.err != nil {
			m.flash = msg.err.Error()
			m.updateViewportDimensions()
		}

	case tea.MouseMsg:
		if msg.Button == tea.MouseButtonWheelUp {
			m.scrollUp(3)
		} else if msg.Button == tea.MouseButtonWheelDown {
			m.scrollDown(3)
		}

	case tea.KeyMsg:
		switch {
		case bubbleKey.Matches(msg, m.keymap.quit):
			return m, tea.Quit

		case bubbleKey.Matches(msg, m.keymap.send):
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.state != lib.ChatStateActive {
				return m, nil
			}
			m.input.Reset()
			m.flash = ""
			m.atScrollBottom = true
			return m, m.send(text)

		case bubbleKey.Matches(msg, m.keymap.scrollUp):
			m.scrollUp(1)
			return m, nil

		case bubbleKey.Matches(msg, m.keymap.scrollDown):
			m.scrollDown(1)
			return m, nil

		case bubbleKey.Matches(msg, m.keymap.pageUp):
			m.viewport.ViewUp()
			m.atScrollBottom = false
			return m, nil

		case bubbleKey.Matches(msg, m.keymap.pageDown):
			m.viewport.ViewDown()
			m.atScrollBottom = m.viewport.AtBottom()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *chatUIModel) refresh() {
	m.messages = m.session.Messages()
	m.state = m.session.State()
	if other := m.session.Other(); other != nil && other.UserName != "" {
		m.title = other.UserName
	}

	if !m.ready {
		return
	}

	m.viewport.SetContent(m.renderMessages())
	if m.atScrollBottom {
		m.viewport.GotoBottom()
	}
}

func (m *chatUIModel) windowResized(w, h int) {
	m.width = w
	m.height = h
	m.input.Width = w - 4

	if m.ready {
		m.updateViewportDimensions()
	} else {
		vw, vh := m.getViewportDimensions()
		m.viewport = viewport.New(vw, vh)
		m.viewport.Style = lipgloss.NewStyle().Padding(0, 1, 0, 1)
		m.ready = true
	}

	m.viewport.SetContent(m.renderMessages())
	if m.atScrollBottom {
		m.viewport.GotoBottom()
	}
}

func (m *chatUIModel) updateViewportDimensions() {
	w, h := m.getViewportDimensions()
	m.viewport.Width = w
	m.viewport.Height = h
}

func (m *chatUIModel) getViewportDimensions() (int, int) {
	fixed := lipgloss.Height(m.renderHeader()) + lipgloss.Height(m.renderInput()) + lipgloss.Height(m.renderHelp())
	if m.flash != "" {
		fixed += lipgloss.Height(m.renderFlash())
	}
	return m.width, max(1, m.height-fixed)
}

func (m *chatUIModel) scrollUp(n int) {
	m.viewport.LineUp(n)
	m.atScrollBottom = false
}

func (m *chatUIModel) scrollDown(n int) {
	m.viewport.LineDown(n)
	m.atScrollBottom = m.viewport.AtBottom()
}
