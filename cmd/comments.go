package cmd

import (
	"fmt"
	"strings"

	"storybox-cli/auth"
	"storybox-cli/term"

	"github.com/spf13/cobra"
)

var commentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "List or add comments on a post",
}

var commentsLsCmd = &cobra.Command{
	Use:   "ls <post-id>",
	Short: "List a post's comments",
	Args:  cobra.ExactArgs(1),
	Run:   commentsLs,
}

var commentsAddCmd = &cobra.Command{
	Use:   "add <post-id> [text]",
	Short: "Comment on a post",
	Args:  cobra.MinimumNArgs(1),
	Run:   commentsAdd,
}

func init() {
	RootCmd.AddCommand(commentsCmd)
	commentsCmd.AddCommand(commentsLsCmd)
	commentsCmd.AddCommand(commentsAddCmd)
}

func commentsLs(cmd *cobra.Command, args []string) {
	auth.MustResolveAuth()
	ctx := cmdContext(cmd)

	card := mustLoadPostCard(ctx, args[0])

	term.StartSpinner("")
	comments, err := card.LoadComments(ctx)
	term.StopSpinner()

	if err != nil {
		exitWithErr("Error loading comments", err)
	}

	printComments(comments)
}

func commentsAdd(cmd *cobra.Command, args []string) {
	auth.MustResolveAuth()
	ctx := cmdContext(cmd)

	text := strings.Join(args[1:], " ")
	if strings.TrimSpace(text) == "" {
		var err error
		text, err = term.GetRequiredUserStringInput("Comment:")
		if err != nil {
			term.OutputErrorAndExit("Error prompting comment: %v", err)
		}
	}

	card := mustLoadPostCard(ctx, args[0])

	term.StartSpinner("")
	_, err := card.AddComment(ctx, text)
	term.StopSpinner()

	if err != nil {
		exitWithErr("Error adding comment", err)
	}

	fmt.Printf("✅ Comment added (💬 %d)\n", card.CommentCount())
}
