package lib

import (
	"context"
	"fmt"
	"sync"

	"storybox-cli/logger"
	shared "storybox-cli/shared"

	"go.uber.org/zap"
)

type FeedApi interface {
	UserLookup
	ListPostsPage(ctx context.Context, page int, sender string) (*shared.PaginatedPostsResponse, *shared.ApiError)
}

// Feed accumulates pages of posts for one view. At most one page request is
// in flight at a time, and an empty page ends the feed.
type Feed struct {
	api         FeedApi
	enricher    *Enricher
	ownerFilter string

	mu        sync.Mutex
	posts     []*shared.Post
	page      int
	loading   bool
	exhausted bool

	// bumped by Reset so results from before it are dropped
	gen int

	onChange func()
}

// NewFeed returns an empty feed. A non-empty ownerFilter limits it to one
// user's posts.
func NewFeed(api FeedApi, enricher *Enricher, ownerFilter string) *Feed {
	if enricher == nil {
		enricher = NewEnricher(api)
	}
	return &Feed{
		api:         api,
		enricher:    enricher,
		ownerFilter: ownerFilter,
	}
}

func (f *Feed) OnChange(fn func()) {
	f.mu.Lock()
	f.onChange = fn
	f.mu.Unlock()
}

// LoadPage fetches one page (1-indexed) and enriches its posts with their
// owners' profiles. It does not touch the feed's accumulated state.
func (f *Feed) LoadPage(ctx context.Context, page int, ownerFilter string) ([]*shared.Post, *shared.ApiError) {
	res, apiErr := f.api.ListPostsPage(ctx, page, ownerFilter)
	if apiErr != nil {
		return nil, apiErr
	}

	Enrich(ctx, f.enricher, res.Posts)

	return res.Posts, nil
}

// Next loads the page after the last one loaded. It is the near-bottom
// trigger: while a page is loading or once the feed is exhausted it returns
// immediately with started false.
func (f *Feed) Next(ctx context.Context) (started bool, err error) {
	f.mu.Lock()
	if f.loading || f.exhausted {
		f.mu.Unlock()
		return false, nil
	}
	f.loading = true
	page := f.page + 1
	gen := f.gen
	f.mu.Unlock()

	f.notify()

	posts, apiErr := f.LoadPage(ctx, page, f.ownerFilter)

	f.mu.Lock()
	if gen != f.gen {
		f.mu.Unlock()
		return true, nil
	}

	f.loading = false

	if apiErr != nil {
		f.mu.Unlock()
		f.notify()
		logger.Logger.Debug("error loading feed page", zap.Int("page", page), zap.String("err", apiErr.Msg))
		return true, fmt.Errorf("error loading page %d: %w", page, apiErr)
	}

	if len(posts) == 0 {
		f.exhausted = true
	} else {
		f.page = page
		f.posts = append(f.posts, posts...)
	}
	f.mu.Unlock()

	f.notify()

	return true, nil
}

// Reset empties the feed so the next call to Next starts again at page 1.
func (f *Feed) Reset() {
	f.mu.Lock()
	f.gen++
	f.posts = nil
	f.page = 0
	f.loading = false
	f.exhausted = false
	f.mu.Unlock()

	f.notify()
}

// Remove drops a post, e.g. after it was deleted.
func (f *Feed) Remove(postId string) bool {
	f.mu.Lock()
	removed := false
	for i, p := range f.posts {
		if p.Id == postId {
			f.posts = append(f.posts[:i:i], f.posts[i+1:]...)
			removed = true
			break
		}
	}
	f.mu.Unlock()

	if removed {
		f.notify()
	}
	return removed
}

func (f *Feed) Posts() []*shared.Post {
	f.mu.Lock()
	defer f.mu.Unlock()

	res := make([]*shared.Post, len(f.posts))
	copy(res, f.posts)
	return res
}

func (f *Feed) Page() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.page
}

func (f *Feed) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

func (f *Feed) Exhausted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exhausted
}

func (f *Feed) notify() {
	f.mu.Lock()
	fn := f.onChange
	f.mu.Unlock()

	if fn != nil {
		fn()
	}
}
