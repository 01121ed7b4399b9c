package chattui

import (
	"strings"
	"time"

	"storybox-cli/lib"
	"storybox-cli/term"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

var borderColor = lipgloss.Color("#444")
var helpTextColor = lipgloss.Color("#ddd")

var mineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("45")).Bold(true)
var theirsStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
var metaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
var flashStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

func (m chatUIModel) View() string {
	if !m.ready {
		return ""
	}

	views := []string{m.renderHeader(), m.viewport.View()}
	if m.flash != "" {
		views = append(views, m.renderFlash())
	}
	views = append(views, m.renderInput(), m.renderHelp())

	return lipgloss.JoinVertical(lipgloss.Left, views...)
}

func (m chatUIModel) renderHeader() string {
	style := lipgloss.NewStyle().Width(m.width).Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(borderColor)

	s := " 💬 " + m.title
	if m.state == lib.ChatStateJoining {
		s += " " + m.spinner.View()
	}
	return style.Render(s)
}

func (m chatUIModel) renderMessages() string {
	if len(m.messages) == 0 {
		if m.state == lib.ChatStateActive {
			return metaStyle.Render("No messages yet. Say hi!")
		}
		return ""
	}

	width := max(20, m.width-4)
	now := time.Now()

	var b strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			b.WriteString("\n")
		}

		var name string
		if msg.Role == lib.ChatRoleMine {
			name = mineStyle.Render("you")
		} else {
			sender := msg.Message.Sender.UserName
			if sender == "" {
				sender = m.title
			}
			name = theirsStyle.Render(sender)
		}

		meta := term.RelTime(msg.Message.Timestamp, now)
		if msg.Pending {
			meta = strings.TrimSpace(meta + " · sending")
		}

		b.WriteString(name)
		if meta != "" {
			b.WriteString(" " + metaStyle.Render(meta))
		}
		b.WriteString("\n")
		b.WriteString(wordwrap.String(msg.Message.Content, width))
		b.WriteString("\n")
	}

	return b.String()
}

func (m chatUIModel) renderFlash() string {
	return flashStyle.Render(" 🚨 " + m.flash)
}

func (m chatUIModel) renderInput() string {
	style := lipgloss.NewStyle().Width(m.width).BorderStyle(lipgloss.NormalBorder()).BorderTop(true).BorderForeground(borderColor)
	return style.Render(m.input.View())
}

func (m chatUIModel) renderHelp() string {
	style := lipgloss.NewStyle().Width(m.width).Foreground(helpTextColor)
	return style.Render(" (enter) send • (↑/↓) scroll • (pgup/pgdown) page • (esc) leave")
}
