package lib

import (
	"context"
	"sync"
	"testing"
	"time"

	shared "storybox-cli/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLikeRevertsOnFailure(t *testing.T) {
	tests := []struct {
		name  string
		liked bool
		count int
	}{
		{"not liked", false, 3},
		{"liked", true, 4},
		{"not liked zero", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeApi{likeErrs: []*shared.ApiError{{Type: shared.ApiErrorTypeNetwork, Msg: "offline"}}}
			card := NewPostCard(api, nil, &shared.Post{Id: "p1", IsLikedByMe: tt.liked, LikeCount: tt.count})

			err := card.ToggleLike(context.Background())
			require.Error(t, err)

			assert.Equal(t, tt.liked, card.Liked())
			assert.Equal(t, tt.count, card.LikeCount())
			assert.Len(t, api.Calls(), 1)
		})
	}
}

func TestToggleLikeIsOptimistic(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeApi{likeGate: gate}
	card := NewPostCard(api, nil, &shared.Post{Id: "p1", LikeCount: 2})

	done := make(chan error, 1)
	go func() { done <- card.ToggleLike(context.Background()) }()

	require.Eventually(t, func() bool { return card.Liked() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 3, card.LikeCount())

	close(gate)
	require.NoError(t, <-done)

	assert.True(t, card.Liked())
	assert.Equal(t, 3, card.LikeCount())
	assert.Equal(t, []string{"AddLike p1"}, api.Calls())
}

func TestToggleLikeSequentialComposition(t *testing.T) {
	// first request fails, second succeeds: only the first delta is undone
	gate := make(chan struct{})
	api := &fakeApi{
		likeGate: gate,
		likeErrs: []*shared.ApiError{{Type: shared.ApiErrorTypeServer, Msg: "nope"}, nil},
	}
	card := NewPostCard(api, nil, &shared.Post{Id: "p1", LikeCount: 5})

	var wg sync.WaitGroup
	errs := make([]error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[0] = card.ToggleLike(context.Background())
	}()
	require.Eventually(t, func() bool { return card.liked.Pending() == 1 }, time.Second, 5*time.Millisecond)

	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[1] = card.ToggleLike(context.Background())
	}()
	require.Eventually(t, func() bool { return card.liked.Pending() == 2 }, time.Second, 5*time.Millisecond)

	// second toggle applied against the first one's optimistic state
	assert.False(t, card.Liked())
	assert.Equal(t, 5, card.LikeCount())

	close(gate)
	wg.Wait()

	assert.Error(t, errs[0])
	assert.NoError(t, errs[1])

	// requests went out in toggle order
	assert.Equal(t, []string{"AddLike p1", "RemoveLike p1"}, api.Calls())

	assert.False(t, card.Liked())
	assert.Equal(t, 5, card.LikeCount())
}

func TestLaterFailureKeepsEarlierSuccess(t *testing.T) {
	api := &fakeApi{likeErrs: []*shared.ApiError{nil, {Type: shared.ApiErrorTypeServer, Msg: "nope"}}}
	card := NewPostCard(api, nil, &shared.Post{Id: "p1", LikeCount: 1})

	require.NoError(t, card.ToggleLike(context.Background()))
	require.Error(t, card.ToggleLike(context.Background()))

	assert.True(t, card.Liked())
	assert.Equal(t, 2, card.LikeCount())
}

func TestAddCommentRejectsBlank(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		api := &fakeApi{}
		card := NewPostCard(api, nil, &shared.Post{Id: "p1", CommentCount: 2})

		comment, err := card.AddComment(context.Background(), text)
		require.Error(t, err)
		assert.Nil(t, comment)

		apiErr, ok := err.(*shared.ApiError)
		require.True(t, ok)
		assert.Equal(t, shared.ApiErrorTypeValidation, apiErr.Type)

		assert.Empty(t, api.Calls())
		assert.Empty(t, card.Comments())
		assert.Equal(t, 2, card.CommentCount())
	}
}

func TestLoadAndAddComments(t *testing.T) {
	api := &fakeApi{
		users: testUsers("a", "me"),
		comments: []*shared.Comment{
			{Id: "c1", OwnerId: "a", Content: "first"},
			{Id: "c2", OwnerId: "a", Content: "second"},
			{Id: "c3", OwnerId: "ghost", Content: "third"},
		},
	}

	// stale counter from the post list
	card := NewPostCard(api, nil, &shared.Post{Id: "p1", CommentCount: 7})
	assert.False(t, card.CommentsLoaded())

	comments, err := card.LoadComments(context.Background())
	require.NoError(t, err)
	require.Len(t, comments, 3)

	assert.Equal(t, 3, card.CommentCount())
	assert.Equal(t, "user-a", comments[0].OwnerName)
	assert.Equal(t, "user-a", comments[1].OwnerName)
	assert.Empty(t, comments[2].OwnerName)
	assert.Equal(t, 1, api.count("GetUser a"))

	comment, err := card.AddComment(context.Background(), "  nice  ")
	require.NoError(t, err)
	assert.Equal(t, "nice", comment.Content)
	assert.Equal(t, "user-me", comment.OwnerName)

	assert.Equal(t, 4, card.CommentCount())
	assert.Len(t, card.Comments(), 4)
	assert.Equal(t, 4, card.Post().CommentCount)
}
