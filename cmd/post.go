package cmd

import (
	"context"
	"fmt"
	"strings"

	"storybox-cli/auth"
	"storybox-cli/lib"
	shared "storybox-cli/shared"
	"storybox-cli/term"
	"storybox-cli/ui"

	"github.com/spf13/cobra"
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Create, edit, show or remove a post",
}

var postAddCmd = &cobra.Command{
	Use:     "add [content]",
	Aliases: []string{"new"},
	Short:   "Create a post",
	Long:    `Create a post. Content is prompted for if not given. An attached image is cropped to a centered square unless --crop or --no-crop is set.`,
	Run:     postAdd,
}

var postEditCmd = &cobra.Command{
	Use:   "edit <post-id>",
	Short: "Edit one of your posts",
	Args:  cobra.ExactArgs(1),
	Run:   postEdit,
}

var postRmCmd = &cobra.Command{
	Use:     "rm <post-id>",
	Aliases: []string{"delete"},
	Short:   "Delete one of your posts",
	Args:    cobra.ExactArgs(1),
	Run:     postRm,
}

var postShowCmd = &cobra.Command{
	Use:   "show <post-id>",
	Short: "Show a post and its comments",
	Args:  cobra.ExactArgs(1),
	Run:   postShow,
}

var likeCmd = &cobra.Command{
	Use:   "like <post-id>",
	Short: "Like a post, or unlike it if you already do",
	Args:  cobra.ExactArgs(1),
	Run:   like,
}

var postImage string
var postCrop string
var postNoCrop bool
var postDeriveTags bool
var postTags []string
var postContent string
var postRemoveImage bool
var postOpenImage bool
var postInteractive bool
var postYes bool

func init() {
	RootCmd.AddCommand(postCmd)
	RootCmd.AddCommand(likeCmd)
	postCmd.AddCommand(postAddCmd)
	postCmd.AddCommand(postEditCmd)
	postCmd.AddCommand(postRmCmd)
	postCmd.AddCommand(postShowCmd)

	for _, c := range []*cobra.Command{postAddCmd, postEditCmd} {
		c.Flags().StringVar(&postImage, "image", "", "Image file to attach")
		c.Flags().StringVar(&postCrop, "crop", "", "Crop the image to x,y,width,height (default: centered square)")
		c.Flags().BoolVar(&postNoCrop, "no-crop", false, "Upload the image without cropping")
		c.Flags().BoolVar(&postDeriveTags, "tags", false, "Suggest tags from the content")
		c.Flags().StringSliceVar(&postTags, "tag", nil, "Tag to add (repeatable)")
	}

	postEditCmd.Flags().StringVar(&postContent, "content", "", "New content")
	postEditCmd.Flags().BoolVar(&postRemoveImage, "remove-image", false, "Remove the post's image")

	postRmCmd.Flags().BoolVarP(&postYes, "yes", "y", false, "Don't ask for confirmation")

	postShowCmd.Flags().BoolVar(&postOpenImage, "open", false, "Open the post's image in your browser")
	postShowCmd.Flags().BoolVarP(&postInteractive, "interactive", "i", false, "Like, comment and more after showing the post")
}

func postAdd(cmd *cobra.Command, args []string) {
	auth.MustResolveAuth()

	content := strings.Join(args, " ")
	if strings.TrimSpace(content) == "" {
		var err error
		content, err = term.GetRequiredUserStringInput("What's on your mind?")
		if err != nil {
			term.OutputErrorAndExit("Error prompting content: %v", err)
		}
	}

	draft := lib.PostDraft{
		Content:    content,
		Image:      imageSource(postImage, postCrop, postNoCrop),
		DeriveTags: postDeriveTags,
		Tags:       postTags,
	}

	term.StartSpinner("📝 Posting...")
	post, err := lib.SubmitPost(cmdContext(cmd), apiClient, draft)
	term.StopSpinner()

	if err != nil {
		exitWithErr("Error creating post", err)
	}

	fmt.Println("✅ Posted")
	fmt.Println()
	printPost(0, post, post.IsLikedByMe, post.LikeCount, post.CommentCount)
}

func postEdit(cmd *cobra.Command, args []string) {
	auth.MustResolveAuth()

	edit := lib.PostEdit{
		Image:       imageSource(postImage, postCrop, postNoCrop),
		RemoveImage: postRemoveImage,
		DeriveTags:  postDeriveTags,
		Tags:        postTags,
	}
	if cmd.Flags().Changed("content") {
		edit.Content = &postContent
	}

	if edit.Content == nil && edit.Image == nil && !edit.RemoveImage && !edit.DeriveTags && len(edit.Tags) == 0 {
		term.OutputErrorAndExit("Nothing to change: pass --content, --image, --remove-image, --tags or --tag")
	}

	term.StartSpinner("📝 Saving...")
	post, err := lib.EditPost(cmdContext(cmd), apiClient, args[0], edit)
	term.StopSpinner()

	if err != nil {
		exitWithErr("Error updating post", err)
	}

	fmt.Println("✅ Post updated")
	fmt.Println()
	printPost(0, post, post.IsLikedByMe, post.LikeCount, post.CommentCount)
}

func postRm(cmd *cobra.Command, args []string) {
	auth.MustResolveAuth()

	if !postYes {
		if !deletePost(cmdContext(cmd), args[0]) {
			fmt.Println("🤷‍♂️ Post not deleted")
		}
		return
	}

	term.StartSpinner("")
	apiErr := apiClient.DeletePost(cmdContext(cmd), args[0])
	term.StopSpinner()

	if apiErr != nil {
		exitWithErr("Error deleting post", apiErr)
	}

	fmt.Println("✅ Post deleted")
}

// deletePost asks for confirmation first and reports whether the post is gone.
func deletePost(ctx context.Context, postId string) bool {
	confirmed, err := term.ConfirmYesNo("Delete this post?")
	if err != nil {
		term.OutputErrorAndExit("Error confirming: %v", err)
	}
	if !confirmed {
		return false
	}

	term.StartSpinner("")
	apiErr := apiClient.DeletePost(ctx, postId)
	term.StopSpinner()

	if apiErr != nil {
		term.OutputSimpleError("Error deleting post: %s", apiErr.Msg)
		return false
	}

	fmt.Println("✅ Post deleted")
	return true
}

func mustLoadPostCard(ctx context.Context, postId string) *lib.PostCard {
	term.StartSpinner("")
	post, apiErr := apiClient.GetPost(ctx, postId)
	if apiErr != nil {
		term.HandleApiError(apiErr)
	}

	enricher := lib.NewEnricher(apiClient)
	lib.Enrich(ctx, enricher, []*shared.Post{post})
	term.StopSpinner()

	return lib.NewPostCard(apiClient, enricher, post)
}

func postShow(cmd *cobra.Command, args []string) {
	auth.MustResolveAuth()
	ctx := cmdContext(cmd)

	card := mustLoadPostCard(ctx, args[0])

	if postInteractive {
		postMenu(ctx, card)
		return
	}

	term.StartSpinner("")
	comments, err := card.LoadComments(ctx)
	term.StopSpinner()

	printCardPost(0, card)

	if err != nil {
		term.OutputSimpleError("%v", err)
	} else {
		printComments(comments)
	}

	if postOpenImage {
		post := card.Post()
		if post.ImageUri == "" {
			fmt.Println("🤷‍♂️ This post has no image")
			return
		}
		ui.OpenURL("Opening image in your browser...", post.ImageUri)
	}
}

func like(cmd *cobra.Command, args []string) {
	auth.MustResolveAuth()
	ctx := cmdContext(cmd)

	card := mustLoadPostCard(ctx, args[0])

	term.StartSpinner("")
	err := card.ToggleLike(ctx)
	term.StopSpinner()

	if err != nil {
		exitWithErr("Error updating like", err)
	}

	printLikeState(card)
}
