package lib

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"storybox-cli/api"
	"storybox-cli/auth"
	shared "storybox-cli/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type feedServer struct {
	pageSizes []int
	owners    []string

	pageCalls int32
	userCalls sync.Map

	// when set, page requests block until it is closed
	gate chan struct{}
}

func (s *feedServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/posts/paging":
		atomic.AddInt32(&s.pageCalls, 1)
		if s.gate != nil {
			<-s.gate
		}

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		var posts []*shared.Post
		if page >= 1 && page <= len(s.pageSizes) {
			for i := 0; i < s.pageSizes[page-1]; i++ {
				owner := s.owners[i%len(s.owners)]
				posts = append(posts, &shared.Post{Id: fmt.Sprintf("p%d-%d", page, i), OwnerId: owner, Content: "hello"})
			}
		}
		writeTestJSON(w, http.StatusOK, shared.PaginatedPostsResponse{Posts: posts, CurrentPage: page, TotalPages: len(s.pageSizes)})

	case strings.HasPrefix(r.URL.Path, "/users/"):
		id := strings.TrimPrefix(r.URL.Path, "/users/")
		n, _ := s.userCalls.LoadOrStore(id, new(int32))
		atomic.AddInt32(n.(*int32), 1)

		if id == "broken" {
			writeTestJSON(w, http.StatusInternalServerError, map[string]string{"message": "lookup failed"})
			return
		}
		writeTestJSON(w, http.StatusOK, shared.User{Id: id, UserName: "user-" + id})

	default:
		http.NotFound(w, r)
	}
}

func (s *feedServer) userCallCount(id string) int32 {
	n, ok := s.userCalls.Load(id)
	if !ok {
		return 0
	}
	return atomic.LoadInt32(n.(*int32))
}

func writeTestJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newFeedApi(t *testing.T, handler http.Handler) *api.Api {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	session := auth.NewSession("")
	require.NoError(t, session.Set(auth.Tokens{AccessToken: "acc", RefreshToken: "ref", UserId: "me"}))

	return api.New(api.Params{Host: server.URL, Session: session})
}

func TestFeedStopsAtEmptyPage(t *testing.T) {
	srv := &feedServer{pageSizes: []int{10, 10, 10, 0}, owners: []string{"a"}}
	feed := NewFeed(newFeedApi(t, srv), nil, "")

	for i := 0; i < 6; i++ {
		_, err := feed.Next(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, int32(4), atomic.LoadInt32(&srv.pageCalls))
	assert.Len(t, feed.Posts(), 30)
	assert.True(t, feed.Exhausted())
	assert.Equal(t, 3, feed.Page())

	started, err := feed.Next(context.Background())
	assert.False(t, started)
	assert.NoError(t, err)
}

func TestFeedNoDuplicatePageFetch(t *testing.T) {
	srv := &feedServer{pageSizes: []int{10, 10}, owners: []string{"a"}, gate: make(chan struct{})}
	feed := NewFeed(newFeedApi(t, srv), nil, "")

	done := make(chan error, 1)
	go func() {
		_, err := feed.Next(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&srv.pageCalls) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, feed.Loading())

	started, err := feed.Next(context.Background())
	assert.False(t, started)
	assert.NoError(t, err)

	close(srv.gate)
	require.NoError(t, <-done)

	assert.Equal(t, int32(1), atomic.LoadInt32(&srv.pageCalls))
	assert.False(t, feed.Loading())
	assert.Len(t, feed.Posts(), 10)
	assert.Equal(t, 1, feed.Page())
}

func TestFeedEnrichmentIsBatchedAndBestEffort(t *testing.T) {
	srv := &feedServer{pageSizes: []int{10}, owners: []string{"a", "b", "broken"}}
	feed := NewFeed(newFeedApi(t, srv), nil, "")

	_, err := feed.Next(context.Background())
	require.NoError(t, err)

	posts := feed.Posts()
	require.Len(t, posts, 10)

	for _, p := range posts {
		switch p.OwnerId {
		case "broken":
			assert.Empty(t, p.OwnerName)
		default:
			assert.Equal(t, "user-"+p.OwnerId, p.OwnerName)
		}
	}

	assert.Equal(t, int32(1), srv.userCallCount("a"))
	assert.Equal(t, int32(1), srv.userCallCount("b"))
	assert.Equal(t, int32(1), srv.userCallCount("broken"))
}

func TestFeedOwnerFilterAndReset(t *testing.T) {
	var senders []string
	var mu sync.Mutex

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/posts/paging" {
			writeTestJSON(w, http.StatusOK, shared.User{Id: "u1", UserName: "dana"})
			return
		}
		mu.Lock()
		senders = append(senders, r.URL.Query().Get("sender")+"@"+r.URL.Query().Get("page"))
		mu.Unlock()
		writeTestJSON(w, http.StatusOK, shared.PaginatedPostsResponse{Posts: []*shared.Post{{Id: "x", OwnerId: "u1"}}})
	})

	feed := NewFeed(newFeedApi(t, handler), nil, "u1")

	_, err := feed.Next(context.Background())
	require.NoError(t, err)
	_, err = feed.Next(context.Background())
	require.NoError(t, err)
	assert.Len(t, feed.Posts(), 2)

	assert.True(t, feed.Remove("x"))
	assert.Len(t, feed.Posts(), 1)

	feed.Reset()
	assert.Empty(t, feed.Posts())
	_, err = feed.Next(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"u1@1", "u1@2", "u1@1"}, senders)
}

func TestFeedErrorKeepsPage(t *testing.T) {
	var calls int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			writeTestJSON(w, http.StatusInternalServerError, map[string]string{"message": "db down"})
			return
		}
		writeTestJSON(w, http.StatusOK, shared.PaginatedPostsResponse{})
	})

	feed := NewFeed(newFeedApi(t, handler), nil, "")

	started, err := feed.Next(context.Background())
	assert.True(t, started)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.False(t, feed.Loading())
	assert.False(t, feed.Exhausted())
	assert.Equal(t, 0, feed.Page())

	_, err = feed.Next(context.Background())
	require.NoError(t, err)
	assert.True(t, feed.Exhausted())
}
