package lib

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"storybox-cli/logger"
	shared "storybox-cli/shared"
	"storybox-cli/types"

	"go.uber.org/zap"
)

// PostCard is the detail view of one post: like toggling and its comments.
type PostCard struct {
	api      types.PostCardApi
	enricher *Enricher
	post     shared.Post

	// as fetched; the displayed count is derived from these and liked
	baseLiked bool
	baseCount int
	liked     *Optimistic[bool]

	mu             sync.Mutex
	comments       []*shared.Comment
	commentsLoaded bool
	commentCount   int

	onChange func()
}

func NewPostCard(api types.PostCardApi, enricher *Enricher, post *shared.Post) *PostCard {
	if enricher == nil {
		enricher = NewEnricher(api)
	}

	c := &PostCard{
		api:          api,
		enricher:     enricher,
		post:         *post,
		baseLiked:    post.IsLikedByMe,
		baseCount:    post.LikeCount,
		liked:        NewOptimistic(post.IsLikedByMe),
		commentCount: post.CommentCount,
	}
	c.liked.OnChange(c.notify)

	return c
}

func (c *PostCard) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

func (c *PostCard) Liked() bool {
	return c.liked.Value()
}

func (c *PostCard) LikeCount() int {
	return likeCount(c.baseCount, c.baseLiked, c.liked.Value())
}

// Post returns the post as currently displayed.
func (c *PostCard) Post() shared.Post {
	p := c.post
	liked := c.liked.Value()
	p.IsLikedByMe = liked
	p.LikeCount = likeCount(c.baseCount, c.baseLiked, liked)

	c.mu.Lock()
	p.CommentCount = c.commentCount
	c.mu.Unlock()

	return p
}

// ToggleLike flips the like right away and sends the matching request. If
// the request fails only this toggle is undone; the error is returned for
// display and is never fatal.
func (c *PostCard) ToggleLike(ctx context.Context) error {
	err := c.liked.Mutate(ctx,
		func(current bool) bool { return !current },
		func(ctx context.Context, liked bool) error {
			var apiErr *shared.ApiError
			if liked {
				apiErr = c.api.AddLike(ctx, c.post.Id)
			} else {
				apiErr = c.api.RemoveLike(ctx, c.post.Id)
			}
			if apiErr != nil {
				return apiErr
			}
			return nil
		})

	if err != nil {
		logger.Logger.Debug("like reverted", zap.String("postId", c.post.Id), zap.Error(err))
		return fmt.Errorf("error updating like: %w", err)
	}

	return nil
}

// LoadComments fetches the post's comments and their authors. The visible
// counter is reconciled to the number fetched.
func (c *PostCard) LoadComments(ctx context.Context) ([]*shared.Comment, error) {
	comments, apiErr := c.api.ListComments(ctx, c.post.Id)
	if apiErr != nil {
		return nil, fmt.Errorf("error loading comments: %w", apiErr)
	}

	Enrich(ctx, c.enricher, comments)

	c.mu.Lock()
	c.comments = comments
	c.commentsLoaded = true
	c.commentCount = len(comments)
	res := c.commentsLocked()
	c.mu.Unlock()

	c.notify()

	return res, nil
}

// AddComment posts text as a new comment. Blank text is rejected without a
// request.
func (c *PostCard) AddComment(ctx context.Context, text string) (*shared.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, shared.NewValidationError("content", "comment can't be empty")
	}

	comment, apiErr := c.api.AddComment(ctx, shared.AddCommentRequest{PostId: c.post.Id, Content: text})
	if apiErr != nil {
		return nil, apiErr
	}

	Enrich(ctx, c.enricher, []*shared.Comment{comment})

	c.mu.Lock()
	c.comments = append(c.comments, comment)
	c.commentCount++
	c.mu.Unlock()

	c.notify()

	return comment, nil
}

func (c *PostCard) Comments() []*shared.Comment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commentsLocked()
}

func (c *PostCard) CommentsLoaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commentsLoaded
}

func (c *PostCard) CommentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commentCount
}

func (c *PostCard) commentsLocked() []*shared.Comment {
	res := make([]*shared.Comment, len(c.comments))
	copy(res, c.comments)
	return res
}

func (c *PostCard) notify() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func likeCount(baseCount int, baseLiked, liked bool) int {
	n := baseCount
	if liked && !baseLiked {
		n++
	} else if !liked && baseLiked {
		n--
	}
	if n < 0 {
		n = 0
	}
	return n
}
