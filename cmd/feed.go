package cmd

import (
	"context"
	"fmt"
	"strings"

	"storybox-cli/auth"
	"storybox-cli/lib"
	shared "storybox-cli/shared"
	"storybox-cli/term"
	"storybox-cli/utils"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var feedCmd = &cobra.Command{
	Use:     "feed",
	Aliases: []string{"f"},
	Short:   "Browse the latest posts",
	Args:    cobra.NoArgs,
	Run:     feed,
}

func init() {
	RootCmd.AddCommand(feedCmd)
}

func feed(cmd *cobra.Command, args []string) {
	auth.MustResolveAuth()

	ctx := cmdContext(cmd)
	enricher := lib.NewEnricher(apiClient)
	browseFeed(ctx, lib.NewFeed(apiClient, enricher, ""), enricher)
}

const (
	feedMoreOption    = "⬇️  Load more"
	feedOpenOption    = "🔎 Open a post"
	feedRefreshOption = "🔄 Refresh"
	feedQuitOption    = "👋 Done"
)

// browseFeed prints pages of posts, loading the next one only when asked.
func browseFeed(ctx context.Context, feed *lib.Feed, enricher *lib.Enricher) {
	shown := 0
	loadNext := true

	for {
		if loadNext && !feed.Exhausted() {
			term.StartSpinner("")
			_, err := feed.Next(ctx)
			term.StopSpinner()

			if err != nil {
				exitWithErr("Error loading posts", err)
			}
		}
		loadNext = false

		posts := feed.Posts()
		for i := shown; i < len(posts); i++ {
			p := posts[i]
			printPost(i+1, p, p.IsLikedByMe, p.LikeCount, p.CommentCount)
		}
		shown = len(posts)

		if len(posts) == 0 {
			fmt.Println("🤷‍♂️ No posts yet")
			fmt.Println()
			term.PrintCmds("", "post")
			return
		}

		options := []string{}
		if feed.Exhausted() {
			fmt.Println(color.New(color.FgHiBlack).Sprint("🏁 That's everything for now"))
		} else {
			options = append(options, feedMoreOption)
		}
		options = append(options, feedOpenOption, feedRefreshOption, feedQuitOption)

		selected, err := term.SelectFromList("What next?", options)
		if err != nil {
			term.OutputErrorAndExit("Error selecting option: %v", err)
		}

		switch selected {
		case feedMoreOption:
			loadNext = true
		case feedOpenOption:
			post := selectPost(posts)
			if post == nil {
				continue
			}
			card := lib.NewPostCard(apiClient, enricher, post)
			if postMenu(ctx, card) {
				feed.Remove(post.Id)
				shown = 0
			} else {
				*post = card.Post()
			}
		case feedRefreshOption:
			feed.Reset()
			shown = 0
			loadNext = true
		case feedQuitOption:
			return
		}
	}
}

func selectPost(posts []*shared.Post) *shared.Post {
	labels := make([]string, len(posts))
	for i, p := range posts {
		author := p.OwnerName
		if author == "" {
			author = p.OwnerId
		}
		labels[i] = fmt.Sprintf("%d. @%s: %s", i+1, author, snippet(p.Content, 50))
	}

	selected, err := term.SelectFromList("Which post?", labels)
	if err != nil {
		term.OutputErrorAndExit("Error selecting post: %v", err)
	}

	for i, label := range labels {
		if label == selected {
			return posts[i]
		}
	}
	return nil
}

func snippet(s string, n int) string {
	s, _, _ = strings.Cut(s, "\n")
	return utils.Truncate(s, n)
}
