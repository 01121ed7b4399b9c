package chattui

import (
	"context"
	"fmt"

	"storybox-cli/lib"
	"storybox-cli/logger"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Run opens session in a full-screen chat view and blocks until the user
// leaves. The session is closed on every way out, including errors.
func Run(ctx context.Context, session *lib.ChatSession, title string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	defer session.Close()

	initial := initialModel(ctx, session, title)

	ui := tea.NewProgram(initial, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	session.OnChange(func() {
		ui.Send(sessionChangedMsg{})
	})

	m, err := ui.Run()
	if err != nil {
		return fmt.Errorf("error running chat UI: %v", err)
	}

	mod := m.(*chatUIModel)

	logger.Logger.Debug("chat UI exited", zap.Int("messages", len(mod.messages)))

	if mod.err != nil {
		return fmt.Errorf("error in chat: %v", mod.err)
	}

	return nil
}
