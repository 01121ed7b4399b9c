package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"storybox-cli/lib"
	shared "storybox-cli/shared"
	"storybox-cli/term"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// exitWithErr prints err and exits. Api errors go through the shared api
// error output so a forced sign-out reads the same everywhere.
func exitWithErr(msg string, err error) {
	var apiErr *shared.ApiError
	if errors.As(err, &apiErr) {
		if apiErr.Type == shared.ApiErrorTypeValidation || apiErr.Type == shared.ApiErrorTypeServer {
			term.OutputErrorAndExit("%s: %s", msg, term.FormatFieldError(apiErr))
		}
		term.HandleApiError(apiErr)
	}
	term.OutputErrorAndExit("%s: %v", msg, err)
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printPost(n int, post *shared.Post, liked bool, likeCount, commentCount int) {
	author := post.OwnerName
	if author == "" {
		author = post.OwnerId
	}

	var when string
	if post.CreatedAt != nil {
		when = term.RelTime(*post.CreatedAt, time.Now())
	}

	prefix := ""
	if n > 0 {
		prefix = fmt.Sprintf("%d. ", n)
	}

	fmt.Printf("%s%s %s\n", prefix, term.Handle(author), term.Muted(when))
	if post.Title != "" {
		fmt.Println(color.New(color.Bold).Sprint(term.Wrap(post.Title, 3)))
	}
	fmt.Println(term.Wrap(post.Content, 3))

	if post.ImageUri != "" {
		fmt.Println("   🖼  " + term.Muted(post.ImageUri))
	}
	if len(post.Tags) > 0 {
		fmt.Println("   " + term.Tags(post.Tags))
	}

	heart := "🤍"
	if liked {
		heart = "❤️ "
	}
	fmt.Printf("   %s %d  💬 %d  %s\n\n", heart, likeCount, commentCount, term.Muted(post.Id))
}

func printCardPost(n int, card *lib.PostCard) {
	post := card.Post()
	printPost(n, &post, card.Liked(), card.LikeCount(), card.CommentCount())
}

func printComments(comments []*shared.Comment) {
	if len(comments) == 0 {
		fmt.Println("🤷‍♂️ No comments yet")
		return
	}

	now := time.Now()
	for _, c := range comments {
		author := c.OwnerName
		if author == "" {
			author = c.OwnerId
		}

		var when string
		if c.CreatedAt != nil {
			when = term.RelTime(*c.CreatedAt, now)
		}

		fmt.Printf("%s %s\n%s\n\n", term.Handle(author), term.Muted(when), term.Wrap(c.Content, 2))
	}
}

// resolveIndex maps a 1-based list index to an item; anything that isn't a
// valid index is returned as-is for the caller to treat as an id.
func resolveIndex(arg string, n int) (int, bool) {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 1 || i > n {
		return 0, false
	}
	return i - 1, true
}

func imageSource(path, crop string, noCrop bool) *lib.ImageSource {
	if path == "" {
		if crop != "" || noCrop {
			term.OutputErrorAndExit("--crop and --no-crop need --image")
		}
		return nil
	}

	src := &lib.ImageSource{Path: path, NoCrop: noCrop}
	if crop != "" {
		if noCrop {
			term.OutputErrorAndExit("--crop and --no-crop can't be used together")
		}
		rect, err := lib.ParseCropRect(crop)
		if err != nil {
			term.OutputErrorAndExit("Invalid --crop: %v", err)
		}
		src.Crop = &rect
	}
	return src
}
