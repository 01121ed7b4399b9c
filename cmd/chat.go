package cmd

import (
	"context"

	"storybox-cli/auth"
	chattui "storybox-cli/chat_tui"
	"storybox-cli/lib"
	"storybox-cli/logger"
	"storybox-cli/term"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var chatCmd = &cobra.Command{
	Use:   "chat [number-or-id]",
	Short: "Open a conversation",
	Long:  `Open a conversation by its number in 'storybox convos' or its id. With no argument you pick one from a list.`,
	Args:  cobra.MaximumNArgs(1),
	Run:   chat,
}

func init() {
	RootCmd.AddCommand(chatCmd)
}

func chat(cmd *cobra.Command, args []string) {
	auth.MustResolveAuth()
	ctx := cmdContext(cmd)

	entries := mustLoadConvos(ctx).Entries()

	var entry *lib.ConversationEntry
	if len(args) > 0 {
		entry = resolveConvo(entries, args[0])
		if entry == nil {
			term.OutputErrorAndExit("No conversation matching %q", args[0])
		}
	} else {
		if len(entries) == 0 {
			term.OutputErrorAndExit("No conversations yet. Start one with 'storybox convos new <username>'")
		}

		labels := make([]string, len(entries))
		for i, e := range entries {
			labels[i] = e.DisplayName()
		}

		selected, err := term.SelectFromList("Chat with", labels)
		if err != nil {
			term.OutputErrorAndExit("Error selecting conversation: %v", err)
		}
		for i, label := range labels {
			if label == selected {
				entry = entries[i]
				break
			}
		}
	}

	openChat(ctx, entry)
}

func openChat(ctx context.Context, entry *lib.ConversationEntry) {
	defer func() {
		err := socket.Close()
		if err != nil {
			logger.Logger.Warn("error closing socket", zap.Error(err))
		}
	}()

	session := lib.NewChatSession(apiClient, socket, entry.Conversation.Id, auth.Current.UserId())

	err := chattui.Run(ctx, session, entry.DisplayName())
	if err != nil {
		exitWithErr("Error in chat", err)
	}
}
