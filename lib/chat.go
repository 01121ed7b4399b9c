package lib

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"storybox-cli/logger"
	shared "storybox-cli/shared"
	"storybox-cli/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type ChatState int

const (
	ChatStateDisconnected ChatState = iota
	ChatStateJoining
	ChatStateActive
	ChatStateLeaving
)

func (s ChatState) String() string {
	switch s {
	case ChatStateDisconnected:
		return "disconnected"
	case ChatStateJoining:
		return "joining"
	case ChatStateActive:
		return "active"
	case ChatStateLeaving:
		return "leaving"
	}
	return fmt.Sprintf("ChatState(%d)", int(s))
}

type ChatRole string

const (
	ChatRoleMine   ChatRole = "mine"
	ChatRoleTheirs ChatRole = "theirs"
)

// ChatMessage is one rendered line of a chat. Key is assigned when the
// message is first appended and never changes, even once a local echo is
// matched to the server's copy.
type ChatMessage struct {
	Key     string
	Role    ChatRole
	Pending bool
	Message shared.Message
}

var ErrChatNotActive = errors.New("chat is not active")

type inflightSend struct {
	tempId  string
	content string

	// set when the server's copy was received before the send returned
	claimed bool
}

// ChatSession is a single open conversation. It moves Disconnected →
// Joining → Active → Leaving → Disconnected and is not reused once closed.
type ChatSession struct {
	api            types.ConversationsApi
	rt             types.Realtime
	conversationId string
	selfId         string

	mu       sync.Mutex
	state    ChatState
	closed   bool
	convo    *shared.Conversation
	other    *shared.User
	messages []*ChatMessage
	seen     map[string]bool
	buffered []*shared.Message
	seq      int

	// sends not yet returned; their server copy may arrive first
	inflight []*inflightSend

	cancel  context.CancelFunc
	dispose func()
	opened  chan struct{}

	onChange func()
}

func NewChatSession(api types.ConversationsApi, rt types.Realtime, conversationId, selfId string) *ChatSession {
	return &ChatSession{
		api:            api,
		rt:             rt,
		conversationId: conversationId,
		selfId:         selfId,
		seen:           map[string]bool{},
	}
}

// OnChange sets a callback fired after every state or message change. It is
// never called once Close has started.
func (s *ChatSession) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Open subscribes to the room, then fetches history and joins concurrently.
// The session is Active only when both succeed.
func (s *ChatSession) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.closed || s.state != ChatStateDisconnected {
		s.mu.Unlock()
		return fmt.Errorf("error opening chat: session already %s", s.stateNameLocked())
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state = ChatStateJoining
	s.opened = make(chan struct{})
	opened := s.opened

	// listen before joining so nothing sent right after the join is missed
	s.dispose = s.rt.OnMessage(s.conversationId, s.receive)
	s.mu.Unlock()

	defer close(opened)

	s.notify()

	var convo *shared.Conversation
	var joined bool

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		res, apiErr := s.api.GetConversation(gCtx, s.conversationId)
		if apiErr != nil {
			return fmt.Errorf("error loading messages: %w", apiErr)
		}
		convo = res
		return nil
	})

	g.Go(func() error {
		err := s.rt.Join(gCtx, s.conversationId)
		if err != nil {
			return err
		}
		joined = true
		return nil
	})

	err := g.Wait()

	s.mu.Lock()
	if s.closed || err != nil {
		dispose := s.dispose
		s.dispose = nil
		s.state = ChatStateLeaving
		closed := s.closed
		s.mu.Unlock()

		if dispose != nil {
			dispose()
		}
		if joined {
			s.leave()
		}
		cancel()

		s.mu.Lock()
		s.state = ChatStateDisconnected
		s.buffered = nil
		s.mu.Unlock()

		if closed {
			return fmt.Errorf("error opening chat: %v", context.Canceled)
		}

		s.notify()
		return err
	}

	s.convo = convo
	s.other = NewConversationEntry(convo, s.selfId).Other

	for _, msg := range convo.Messages {
		s.mergeLocked(msg)
	}
	for _, msg := range s.buffered {
		s.mergeLocked(msg)
	}
	s.buffered = nil
	s.state = ChatStateActive
	s.mu.Unlock()

	s.notify()

	logger.Logger.Debug("chat active", zap.String("conversationId", s.conversationId), zap.Int("messages", len(convo.Messages)))

	return nil
}

// Send transmits text over the real-time channel, falling back to the REST
// endpoint if that fails. The message is appended once the send completes.
func (s *ChatSession) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return shared.NewValidationError("content", "message can't be empty")
	}

	tempId := uuid.NewString()
	sending := &inflightSend{tempId: tempId, content: text}

	s.mu.Lock()
	if s.state != ChatStateActive {
		s.mu.Unlock()
		return ErrChatNotActive
	}
	s.inflight = append(s.inflight, sending)
	s.mu.Unlock()

	var msg *shared.Message
	pending := true

	err := s.rt.SendMessage(ctx, shared.SendMessagePayload{
		ConversationId: s.conversationId,
		SenderId:       s.selfId,
		Content:        text,
		TempId:         tempId,
	})

	if err == nil {
		msg = &shared.Message{
			TempId:         tempId,
			ConversationId: s.conversationId,
			Sender:         shared.MessageSender{Id: s.selfId},
			Content:        text,
			Timestamp:      time.Now(),
		}
	} else {
		logger.Logger.Warn("real-time send failed, falling back to REST", zap.String("conversationId", s.conversationId), zap.Error(err))

		res, apiErr := s.api.SendMessage(ctx, s.conversationId, shared.SendMessageRequest{Content: text})
		if apiErr != nil {
			s.mu.Lock()
			s.dropInflightLocked(sending)
			s.mu.Unlock()
			return fmt.Errorf("error sending message: %w", apiErr)
		}
		msg = res
		pending = false
	}

	s.mu.Lock()
	s.dropInflightLocked(sending)
	if s.closed || sending.claimed || (msg.Id != "" && s.seen[msg.Id]) {
		s.mu.Unlock()
		return nil
	}
	s.appendLocked(msg, pending)
	s.mu.Unlock()

	s.notify()

	return nil
}

// Close leaves the room and detaches the listener. It is safe to call more
// than once and from any state; the room is left at most once.
func (s *ChatSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true

	prev := s.state
	if prev == ChatStateDisconnected {
		s.mu.Unlock()
		return
	}
	s.state = ChatStateLeaving

	cancel := s.cancel
	dispose := s.dispose
	s.dispose = nil
	opened := s.opened
	s.mu.Unlock()

	if dispose != nil {
		dispose()
	}
	if cancel != nil {
		cancel()
	}

	if prev == ChatStateJoining {
		// Open leaves the room once its requests return
		<-opened
		return
	}

	s.leave()

	s.mu.Lock()
	s.state = ChatStateDisconnected
	s.mu.Unlock()
}

func (s *ChatSession) State() ChatState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *ChatSession) Other() *shared.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.other
}

func (s *ChatSession) Conversation() *shared.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.convo
}

// Messages returns a snapshot of the rendered messages in arrival order.
func (s *ChatSession) Messages() []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]ChatMessage, 0, len(s.messages))
	for _, m := range s.messages {
		res = append(res, *m)
	}
	return res
}

func (s *ChatSession) receive(msg *shared.Message) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	switch s.state {
	case ChatStateJoining:
		s.buffered = append(s.buffered, msg)
		s.mu.Unlock()
		return
	case ChatStateActive:
	default:
		s.mu.Unlock()
		return
	}

	changed := s.mergeLocked(msg)
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// mergeLocked adds a message from the server: known ids are ignored and the
// echo of one of our own pending sends replaces it in place.
func (s *ChatSession) mergeLocked(msg *shared.Message) bool {
	if msg == nil {
		return false
	}
	if msg.Id != "" && s.seen[msg.Id] {
		return false
	}

	if msg.SenderId() == s.selfId {
		if pending := s.pendingEchoLocked(msg); pending != nil {
			pending.Pending = false
			pending.Message.Id = msg.Id
			if !msg.Timestamp.IsZero() {
				pending.Message.Timestamp = msg.Timestamp
			}
			if msg.Sender.UserName != "" {
				pending.Message.Sender = msg.Sender
			}
			if msg.Id != "" {
				s.seen[msg.Id] = true
			}
			return true
		}

		if sending := s.inflightEchoLocked(msg); sending != nil {
			sending.claimed = true
		}
	}

	s.appendLocked(msg, false)
	return true
}

// inflightEchoLocked returns the unreturned send that msg echoes, matched by
// tempId when msg has one, else the oldest with the same content.
func (s *ChatSession) inflightEchoLocked(msg *shared.Message) *inflightSend {
	for _, f := range s.inflight {
		if f.claimed {
			continue
		}
		if msg.TempId != "" {
			if f.tempId == msg.TempId {
				return f
			}
			continue
		}
		if f.content == msg.Content {
			return f
		}
	}
	return nil
}

func (s *ChatSession) dropInflightLocked(sending *inflightSend) {
	for i, f := range s.inflight {
		if f == sending {
			s.inflight = append(s.inflight[:i:i], s.inflight[i+1:]...)
			return
		}
	}
}

func (s *ChatSession) pendingEchoLocked(msg *shared.Message) *ChatMessage {
	if msg.TempId != "" {
		for _, m := range s.messages {
			if m.Pending && m.Message.TempId == msg.TempId {
				return m
			}
		}
		return nil
	}

	for _, m := range s.messages {
		if m.Pending && m.Message.Content == msg.Content {
			return m
		}
	}
	return nil
}

func (s *ChatSession) appendLocked(msg *shared.Message, pending bool) {
	s.seq++

	key := msg.Id
	if key == "" {
		key = msg.TempId
	}
	if key == "" {
		key = fmt.Sprintf("%s:%d:%d", msg.SenderId(), s.seq, msg.Timestamp.UnixNano())
	}

	role := ChatRoleTheirs
	if msg.SenderId() == s.selfId {
		role = ChatRoleMine
	}

	if msg.Id != "" {
		s.seen[msg.Id] = true
	}

	s.messages = append(s.messages, &ChatMessage{
		Key:     key,
		Role:    role,
		Pending: pending,
		Message: *msg,
	})
}

func (s *ChatSession) leave() {
	err := s.rt.Leave(s.conversationId)
	if err != nil {
		logger.Logger.Warn("error leaving chat room", zap.String("conversationId", s.conversationId), zap.Error(err))
	}
}

func (s *ChatSession) stateNameLocked() string {
	if s.closed {
		return "closed"
	}
	return s.state.String()
}

func (s *ChatSession) notify() {
	s.mu.Lock()
	fn := s.onChange
	closed := s.closed
	s.mu.Unlock()

	if closed || fn == nil {
		return
	}
	fn()
}
