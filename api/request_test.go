package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"storybox-cli/auth"
	shared "storybox-cli/shared"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApi(t *testing.T, handler http.Handler) (*Api, *auth.Session) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	session := auth.NewSession("")
	require.NoError(t, session.Set(auth.Tokens{AccessToken: "old-access", RefreshToken: "refresh-1", UserId: "me"}))

	return New(Params{Host: server.URL, Session: session}), session
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestRefreshAndReplayOnce(t *testing.T) {
	var refreshCalls, postCalls int32
	var authHeaders []string
	var mu sync.Mutex

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		assert.Empty(t, r.Header.Get("Authorization"), "refresh must not carry the expired token")

		var body shared.RefreshTokenRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "refresh-1", body.RefreshToken)

		writeJSON(w, http.StatusOK, shared.RefreshTokenResponse{AccessToken: "new-access"})
	})
	mux.HandleFunc("/posts/p1", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&postCalls, 1)
		mu.Lock()
		authHeaders = append(authHeaders, r.Header.Get("Authorization"))
		mu.Unlock()

		if r.Header.Get("Authorization") != "Bearer new-access" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "jwt expired"})
			return
		}
		writeJSON(w, http.StatusOK, shared.Post{Id: "p1", Content: "hello"})
	})

	client, session := newTestApi(t, mux)

	post, apiErr := client.GetPost(context.Background(), "p1")
	require.Nil(t, apiErr)
	assert.Equal(t, "hello", post.Content)

	assert.EqualValues(t, 1, atomic.LoadInt32(&refreshCalls))
	assert.EqualValues(t, 2, atomic.LoadInt32(&postCalls))
	assert.Equal(t, []string{"Bearer old-access", "Bearer new-access"}, authHeaders)

	tokens := session.Get()
	assert.Equal(t, "new-access", tokens.AccessToken)
	assert.Equal(t, "refresh-1", tokens.RefreshToken)
}

func TestSecondUnauthorizedIsFinal(t *testing.T) {
	var refreshCalls, postCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		writeJSON(w, http.StatusOK, shared.RefreshTokenResponse{AccessToken: "new-access"})
	})
	mux.HandleFunc("/posts/p1", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&postCalls, 1)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "nope"})
	})

	client, session := newTestApi(t, mux)

	var logoutReasons []string
	session.OnLogout(func(reason string) { logoutReasons = append(logoutReasons, reason) })

	_, apiErr := client.GetPost(context.Background(), "p1")
	require.NotNil(t, apiErr)
	assert.Equal(t, shared.ApiErrorTypeInvalidToken, apiErr.Type)

	assert.EqualValues(t, 1, atomic.LoadInt32(&refreshCalls))
	assert.EqualValues(t, 2, atomic.LoadInt32(&postCalls))
	assert.False(t, session.IsSignedIn())
	assert.Len(t, logoutReasons, 1)
}

func TestRefreshFailureClearsSession(t *testing.T) {
	var postCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "refresh token revoked"})
	})
	mux.HandleFunc("/users/self/me", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&postCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	client, session := newTestApi(t, mux)

	loggedOut := make(chan string, 1)
	session.OnLogout(func(reason string) { loggedOut <- reason })

	_, apiErr := client.GetMe(context.Background())
	require.NotNil(t, apiErr)
	assert.Equal(t, shared.ApiErrorTypeInvalidToken, apiErr.Type)
	assert.EqualValues(t, 1, atomic.LoadInt32(&postCalls), "request must not be replayed without a new token")
	assert.False(t, session.IsSignedIn())

	select {
	case <-loggedOut:
	default:
		t.Fatal("expected logout hook to fire")
	}
}

func TestConcurrentUnauthorizedShareRefresh(t *testing.T) {
	var refreshCalls int32
	release := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		<-release
		writeJSON(w, http.StatusOK, shared.RefreshTokenResponse{AccessToken: "new-access"})
	})
	mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer new-access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, shared.User{Id: "u", UserName: "someone"})
	})

	client, _ := newTestApi(t, mux)

	var wg sync.WaitGroup
	errs := make(chan *shared.ApiError, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, apiErr := client.GetUser(context.Background(), "u")
			errs <- apiErr
		}()
	}

	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for apiErr := range errs {
		assert.Nil(t, apiErr)
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&refreshCalls))
}

func TestLoginDoesNotRefresh(t *testing.T) {
	var refreshCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
	})
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Wrong email or password"})
	})

	client, session := newTestApi(t, mux)

	_, apiErr := client.Login(context.Background(), shared.LoginRequest{Email: "a@b.co", Password: "bad"})
	require.NotNil(t, apiErr)
	assert.Equal(t, shared.ApiErrorTypeServer, apiErr.Type)
	assert.Equal(t, "Wrong email or password", apiErr.Msg)
	assert.EqualValues(t, 0, atomic.LoadInt32(&refreshCalls))
	assert.True(t, session.IsSignedIn(), "a failed login leaves the existing session alone")
}

func TestLoginStoresTokens(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, shared.LoginResponse{Id: "u42", AccessToken: "acc", RefreshToken: "ref"})
	})

	client, session := newTestApi(t, mux)

	_, apiErr := client.Login(context.Background(), shared.LoginRequest{Email: "a@b.co", Password: "pw"})
	require.Nil(t, apiErr)
	assert.Equal(t, auth.Tokens{AccessToken: "acc", RefreshToken: "ref", UserId: "u42"}, session.Get())
}

func TestCanceledRequest(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/conversations", func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	client, _ := newTestApi(t, mux)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, apiErr := client.ListConversations(ctx)
	require.NotNil(t, apiErr)
	assert.Equal(t, shared.ApiErrorTypeCanceled, apiErr.Type)
}

func TestServerErrorFieldMapping(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "Email already in use"})
	})

	client, _ := newTestApi(t, mux)

	_, apiErr := client.Register(context.Background(), shared.RegisterRequest{UserName: "x", Email: "x@y.z", Password: "123456"})
	require.NotNil(t, apiErr)
	assert.Equal(t, shared.ApiErrorTypeServer, apiErr.Type)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "email", apiErr.Field)
}

func TestListPostsPageQuery(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/posts/paging", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("page"))
		assert.Equal(t, "owner-1", r.URL.Query().Get("sender"))
		writeJSON(w, http.StatusOK, shared.PaginatedPostsResponse{
			Posts:       []*shared.Post{{Id: "p1"}},
			CurrentPage: 3,
			TotalPages:  4,
		})
	})

	client, _ := newTestApi(t, mux)

	res, apiErr := client.ListPostsPage(context.Background(), 3, "owner-1")
	require.Nil(t, apiErr)
	assert.Len(t, res.Posts, 1)
	assert.Equal(t, 4, res.TotalPages)
}

func TestUploadImage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/file", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer old-access", r.Header.Get("Authorization"))

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		assert.Equal(t, "photo.jpg", header.Filename)

		writeJSON(w, http.StatusOK, shared.UploadResponse{Url: "http://cdn/photo.jpg"})
	})

	client, _ := newTestApi(t, mux)

	url, apiErr := client.UploadImage(context.Background(), "/tmp/photo.jpg", []byte("jpeg bytes"))
	require.Nil(t, apiErr)
	assert.Equal(t, "http://cdn/photo.jpg", url)
}

func TestExpiredTokenRefreshedBeforeSending(t *testing.T) {
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	var refreshCalls int32
	var authHeaders []string
	var mu sync.Mutex

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		writeJSON(w, http.StatusOK, shared.RefreshTokenResponse{AccessToken: "new-access"})
	})
	mux.HandleFunc("/posts/p1", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		authHeaders = append(authHeaders, r.Header.Get("Authorization"))
		mu.Unlock()
		writeJSON(w, http.StatusOK, shared.Post{Id: "p1"})
	})

	client, session := newTestApi(t, mux)
	require.NoError(t, session.Set(auth.Tokens{AccessToken: expired, RefreshToken: "refresh-1", UserId: "me"}))

	_, apiErr := client.GetPost(context.Background(), "p1")
	require.Nil(t, apiErr)

	assert.EqualValues(t, 1, atomic.LoadInt32(&refreshCalls))
	assert.Equal(t, []string{"Bearer new-access"}, authHeaders)
}
