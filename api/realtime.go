package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"storybox-cli/auth"
	"storybox-cli/logger"
	shared "storybox-cli/shared"
	"storybox-cli/types"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type socketListener struct {
	conversationId string
	fn             types.OnMessage
}

// Socket is the single chat connection shared by every view. It dials lazily
// on first use and rejoins its rooms after a reconnect.
type Socket struct {
	url     string
	session *auth.Session
	dialer  *websocket.Dialer

	mu        sync.Mutex
	conn      *websocket.Conn
	rooms     map[string]bool
	listeners map[int]*socketListener
	nextId    int

	writeMu sync.Mutex
}

var _ types.Realtime = (*Socket)(nil)

func NewSocket(url string, session *auth.Session) *Socket {
	return &Socket{
		url:       url,
		session:   session,
		dialer:    &websocket.Dialer{HandshakeTimeout: dialTimeout},
		rooms:     map[string]bool{},
		listeners: map[int]*socketListener{},
	}
}

func (s *Socket) Join(ctx context.Context, conversationId string) error {
	err := s.emit(ctx, shared.RealtimeEventJoinRoom, conversationId)
	if err != nil {
		return fmt.Errorf("error joining room: %v", err)
	}

	// rooms are replayed on reconnect
	s.mu.Lock()
	s.rooms[conversationId] = true
	s.mu.Unlock()
	return nil
}

func (s *Socket) Leave(conversationId string) error {
	s.mu.Lock()
	delete(s.rooms, conversationId)
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		// nothing is delivered without a connection
		return nil
	}

	err := s.write(conn, shared.RealtimeEventLeaveRoom, conversationId)
	if err != nil {
		return fmt.Errorf("error leaving room: %v", err)
	}
	return nil
}

func (s *Socket) SendMessage(ctx context.Context, payload shared.SendMessagePayload) error {
	err := s.emit(ctx, shared.RealtimeEventSendMessage, payload)
	if err != nil {
		return fmt.Errorf("error sending message: %v", err)
	}
	return nil
}

func (s *Socket) OnMessage(conversationId string, fn types.OnMessage) (dispose func()) {
	s.mu.Lock()
	id := s.nextId
	s.nextId++
	s.listeners[id] = &socketListener{conversationId: conversationId, fn: fn}
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Socket) Close() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn == nil {
		return nil
	}

	s.writeMu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	s.writeMu.Unlock()

	return conn.Close()
}

func (s *Socket) emit(ctx context.Context, event shared.RealtimeEvent, data interface{}) error {
	conn, err := s.connect(ctx)
	if err != nil {
		return err
	}
	return s.write(conn, event, data)
}

func (s *Socket) write(conn *websocket.Conn, event shared.RealtimeEvent, data interface{}) error {
	bytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("error marshalling %s payload: %v", event, err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err != nil {
		return err
	}
	return conn.WriteJSON(shared.RealtimeFrame{Event: event, Data: bytes})
}

func (s *Socket) connect(ctx context.Context) (*websocket.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return s.conn, nil
	}

	header := http.Header{}
	if token := s.session.Get().AccessToken; token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, _, err := s.dialer.DialContext(ctx, s.url, header)
	if err != nil {
		return nil, fmt.Errorf("error connecting to chat: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	s.conn = conn

	for room := range s.rooms {
		err := s.write(conn, shared.RealtimeEventJoinRoom, room)
		if err != nil {
			logger.Logger.Warn("error rejoining room", zap.String("conversationId", room), zap.Error(err))
		}
	}

	done := make(chan struct{})
	go s.readLoop(conn, done)
	go s.pingLoop(conn, done)

	logger.Logger.Debug("chat connected", zap.String("url", s.url))

	return conn, nil
}

func (s *Socket) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)

	for {
		var frame shared.RealtimeFrame
		err := conn.ReadJSON(&frame)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Logger.Warn("chat connection closed", zap.Error(err))
			}
			s.dropConn(conn)
			return
		}

		switch frame.Event {
		case shared.RealtimeEventMessage, shared.RealtimeEventReceiveMessage:
			var msg shared.Message
			err = json.Unmarshal(frame.Data, &msg)
			if err != nil {
				logger.Logger.Warn("error unmarshalling chat message", zap.Error(err))
				continue
			}
			s.dispatch(&msg)
		default:
			logger.Logger.Debug("ignoring chat event", zap.String("event", string(frame.Event)))
		}
	}
}

func (s *Socket) pingLoop(conn *websocket.Conn, done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.writeMu.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			s.writeMu.Unlock()
			if err != nil {
				logger.Logger.Debug("chat ping failed", zap.Error(err))
				return
			}
		}
	}
}

func (s *Socket) dispatch(msg *shared.Message) {
	s.mu.Lock()
	if msg.ConversationId == "" {
		// unaddressed frames belong to the sole joined room, if there is one
		if n := len(s.rooms); n != 1 {
			s.mu.Unlock()
			logger.Logger.Debug("dropping chat message without a conversation", zap.String("id", msg.Id), zap.Int("rooms", n))
			return
		}
		for room := range s.rooms {
			msg.ConversationId = room
		}
	}

	var fns []types.OnMessage
	for _, l := range s.listeners {
		if l.conversationId == msg.ConversationId {
			fns = append(fns, l.fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(msg)
	}
}

func (s *Socket) dropConn(conn *websocket.Conn) {
	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
	}
	s.mu.Unlock()
	conn.Close()
}
