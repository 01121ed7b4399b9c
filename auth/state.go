package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"storybox-cli/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// tokens this close to their exp claim count as expired
const expiryLeeway = 10 * time.Second

// Tokens is persisted as-is to auth.json; the key names are fixed.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	UserId       string `json:"userId"`
}

// Session holds the process-wide token pair. Requests read it; only sign-in,
// sign-out and the refresh flow write it.
type Session struct {
	mu     sync.RWMutex
	path   string
	tokens Tokens

	hooksMu  sync.Mutex
	nextHook int
	onLogout map[int]func(reason string)
}

// NewSession returns an empty session. An empty path keeps tokens in memory only.
func NewSession(path string) *Session {
	return &Session{
		path:     path,
		onLogout: map[int]func(reason string){},
	}
}

// Load reads tokens from path. A missing file yields a signed-out session.
func Load(path string) (*Session, error) {
	s := NewSession(path)

	bytes, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("error reading auth file: %v", err)
	}

	err = json.Unmarshal(bytes, &s.tokens)
	if err != nil {
		return nil, fmt.Errorf("error unmarshalling auth file: %v", err)
	}

	return s, nil
}

var Current *Session

func (s *Session) Get() Tokens {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens
}

func (s *Session) UserId() string {
	return s.Get().UserId
}

func (s *Session) IsSignedIn() bool {
	return s.Get().AccessToken != ""
}

// AccessTokenExpired reports whether the access token is a JWT whose exp
// claim has passed. Tokens that don't parse are left for the server to judge.
func (s *Session) AccessTokenExpired() bool {
	token := s.Get().AccessToken
	if token == "" {
		return false
	}

	var claims jwt.RegisteredClaims
	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}

	return time.Now().Add(expiryLeeway).After(claims.ExpiresAt.Time)
}

func (s *Session) Set(tokens Tokens) error {
	s.mu.Lock()
	s.tokens = tokens
	s.mu.Unlock()

	return s.write()
}

// SetAccessToken swaps in a renewed access token, and a rotated refresh
// token when the server issued one.
func (s *Session) SetAccessToken(accessToken, refreshToken string) error {
	s.mu.Lock()
	s.tokens.AccessToken = accessToken
	if refreshToken != "" {
		s.tokens.RefreshToken = refreshToken
	}
	s.mu.Unlock()

	return s.write()
}

func (s *Session) Clear() error {
	s.mu.Lock()
	s.tokens = Tokens{}
	s.mu.Unlock()

	if s.path == "" {
		return nil
	}

	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("error removing auth file: %v", err)
	}
	return nil
}

// OnLogout registers fn to run when the session is force-cleared. The
// returned func unregisters it.
func (s *Session) OnLogout(fn func(reason string)) (dispose func()) {
	s.hooksMu.Lock()
	id := s.nextHook
	s.nextHook++
	s.onLogout[id] = fn
	s.hooksMu.Unlock()

	return func() {
		s.hooksMu.Lock()
		delete(s.onLogout, id)
		s.hooksMu.Unlock()
	}
}

// ForceLogout clears the tokens and tells every listener the user has to
// sign in again.
func (s *Session) ForceLogout(reason string) {
	err := s.Clear()
	if err != nil {
		logger.Logger.Error("error clearing session", zap.Error(err))
	}

	s.hooksMu.Lock()
	hooks := make([]func(string), 0, len(s.onLogout))
	for _, fn := range s.onLogout {
		hooks = append(hooks, fn)
	}
	s.hooksMu.Unlock()

	logger.Logger.Info("session cleared", zap.String("reason", reason))

	for _, fn := range hooks {
		fn(reason)
	}
}

func (s *Session) SetAuthHeader(req *http.Request) {
	token := s.Get().AccessToken
	if token == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

func (s *Session) write() error {
	if s.path == "" {
		return nil
	}

	bytes, err := json.Marshal(s.Get())
	if err != nil {
		return fmt.Errorf("error marshalling auth: %v", err)
	}

	err = os.WriteFile(s.path, bytes, 0600)
	if err != nil {
		return fmt.Errorf("error writing auth: %v", err)
	}

	return nil
}
