package cmd

import (
	"context"
	"fmt"

	"storybox-cli/auth"
	"storybox-cli/lib"
	"storybox-cli/term"
	"storybox-cli/ui"
)

const (
	postLikeOption     = "❤️  Like"
	postUnlikeOption   = "🤍 Unlike"
	postCommentsOption = "💬 Show comments"
	postCommentOption  = "✍️  Add a comment"
	postImageOption    = "🖼  Open image"
	postDeleteOption   = "🗑  Delete"
	postBackOption     = "⬅️  Back"
)

// postMenu shows one post and lets the user act on it until they go back.
// It reports whether the post was deleted.
func postMenu(ctx context.Context, card *lib.PostCard) bool {
	fmt.Println()
	printCardPost(0, card)

	for {
		post := card.Post()

		likeOption := postLikeOption
		if card.Liked() {
			likeOption = postUnlikeOption
		}

		options := []string{likeOption, postCommentsOption, postCommentOption}
		if post.ImageUri != "" {
			options = append(options, postImageOption)
		}
		if post.OwnerId == auth.Current.UserId() {
			options = append(options, postDeleteOption)
		}
		options = append(options, postBackOption)

		selected, err := term.SelectFromList("Post", options)
		if err != nil {
			term.OutputErrorAndExit("Error selecting option: %v", err)
		}

		switch selected {
		case postLikeOption, postUnlikeOption:
			err := card.ToggleLike(ctx)
			if err != nil {
				term.OutputSimpleError("%v", err)
			}
			printLikeState(card)

		case postCommentsOption:
			term.StartSpinner("")
			comments, err := card.LoadComments(ctx)
			term.StopSpinner()
			if err != nil {
				term.OutputSimpleError("%v", err)
				continue
			}
			fmt.Println()
			printComments(comments)

		case postCommentOption:
			text, err := term.GetUserStringInput("Comment:")
			if err != nil {
				term.OutputErrorAndExit("Error prompting comment: %v", err)
			}

			term.StartSpinner("")
			_, err = card.AddComment(ctx, text)
			term.StopSpinner()
			if err != nil {
				term.OutputSimpleError("%v", err)
				continue
			}
			fmt.Printf("✅ Comment added (💬 %d)\n", card.CommentCount())

		case postImageOption:
			ui.OpenURL("Opening image in your browser...", post.ImageUri)

		case postDeleteOption:
			if deletePost(ctx, post.Id) {
				return true
			}

		case postBackOption:
			return false
		}
	}
}

func printLikeState(card *lib.PostCard) {
	if card.Liked() {
		fmt.Printf("❤️  Liked (%d)\n", card.LikeCount())
	} else {
		fmt.Printf("🤍 Not liked (%d)\n", card.LikeCount())
	}
}
