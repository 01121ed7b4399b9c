package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"storybox-cli/auth"
	"storybox-cli/lib"
	"storybox-cli/term"

	"github.com/spf13/cobra"
)

var convosCmd = &cobra.Command{
	Use:     "convos",
	Aliases: []string{"conversations"},
	Short:   "List your conversations",
	Args:    cobra.NoArgs,
	Run:     convosLs,
}

var convosRmCmd = &cobra.Command{
	Use:     "rm <number-or-id>",
	Aliases: []string{"delete"},
	Short:   "Delete a conversation",
	Args:    cobra.ExactArgs(1),
	Run:     convosRm,
}

var convosNewCmd = &cobra.Command{
	Use:   "new <username-or-id>",
	Short: "Start a conversation with someone",
	Args:  cobra.ExactArgs(1),
	Run:   convosNew,
}

var convosChat bool

func init() {
	RootCmd.AddCommand(convosCmd)
	convosCmd.AddCommand(convosRmCmd)
	convosCmd.AddCommand(convosNewCmd)

	convosNewCmd.Flags().BoolVar(&convosChat, "chat", false, "Open the chat right away")
}

func mustLoadConvos(ctx context.Context) *lib.ConversationList {
	list := lib.NewConversationList(apiClient, auth.Current.UserId())

	term.StartSpinner("")
	_, err := list.Load(ctx)
	term.StopSpinner()

	if err != nil {
		exitWithErr("Error loading conversations", err)
	}

	return list
}

func convosLs(cmd *cobra.Command, args []string) {
	auth.MustResolveAuth()

	entries := mustLoadConvos(cmdContext(cmd)).Entries()

	if len(entries) == 0 {
		fmt.Println("🤷‍♂️ No conversations yet")
		fmt.Println()
		term.PrintCmds("", "users")
		return
	}

	now := time.Now()
	table := term.NewTable(os.Stdout, []string{"#", "With", "Last message", "When"})
	for i, e := range entries {
		var last, when string
		if e.LastMessage != nil {
			last = snippet(e.LastMessage.Content, 40)
			when = term.RelTime(e.LastMessage.Timestamp, now)
		}
		table.Append([]string{fmt.Sprintf("%d", i+1), e.DisplayName(), last, when})
	}
	table.Render()

	fmt.Println()
	term.PrintCmds("", "chat")
}

// resolveConvo finds an entry by its list number or conversation id.
func resolveConvo(entries []*lib.ConversationEntry, arg string) *lib.ConversationEntry {
	if i, ok := resolveIndex(arg, len(entries)); ok {
		return entries[i]
	}
	for _, e := range entries {
		if e.Conversation.Id == arg {
			return e
		}
	}
	return nil
}

func convosRm(cmd *cobra.Command, args []string) {
	auth.MustResolveAuth()
	ctx := cmdContext(cmd)

	list := mustLoadConvos(ctx)

	entry := resolveConvo(list.Entries(), args[0])
	if entry == nil {
		term.OutputErrorAndExit("No conversation matching %q", args[0])
	}

	deleted, err := list.Delete(ctx, entry.Conversation.Id, func() (bool, error) {
		return term.ConfirmYesNo("Delete your conversation with %s?", entry.DisplayName())
	})
	if err != nil {
		exitWithErr("Error deleting conversation", err)
	}

	if !deleted {
		fmt.Println("🤷‍♂️ Conversation not deleted")
		return
	}

	fmt.Printf("✅ Deleted conversation with %s\n", entry.DisplayName())
}

func convosNew(cmd *cobra.Command, args []string) {
	auth.MustResolveAuth()
	ctx := cmdContext(cmd)

	recipientId := args[0]

	term.StartSpinner("")
	users, apiErr := apiClient.ListUsers(ctx)
	term.StopSpinner()

	if apiErr != nil {
		term.HandleApiError(apiErr)
	}

	for _, u := range users {
		if strings.EqualFold(u.UserName, args[0]) {
			recipientId = u.Id
			break
		}
	}

	list := lib.NewConversationList(apiClient, auth.Current.UserId())

	term.StartSpinner("")
	entry, err := list.Start(ctx, recipientId)
	term.StopSpinner()

	if err != nil {
		exitWithErr("Error starting conversation", err)
	}

	if convosChat {
		openChat(ctx, entry)
		return
	}

	fmt.Printf("✅ Conversation with %s ready\n", entry.DisplayName())
	fmt.Println()
	term.PrintCmds("", "chat")
}
