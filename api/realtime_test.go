package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storybox-cli/auth"
	shared "storybox-cli/shared"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatServer struct {
	frames chan shared.RealtimeFrame
	conns  chan *websocket.Conn
	auth   chan string
}

func newChatServer(t *testing.T) (*chatServer, string) {
	t.Helper()

	cs := &chatServer{
		frames: make(chan shared.RealtimeFrame, 16),
		conns:  make(chan *websocket.Conn, 1),
		auth:   make(chan string, 1),
	}

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.auth <- r.Header.Get("Authorization")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		cs.conns <- conn
		for {
			var frame shared.RealtimeFrame
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			cs.frames <- frame
		}
	}))
	t.Cleanup(server.Close)

	return cs, "ws" + strings.TrimPrefix(server.URL, "http")
}

func (cs *chatServer) nextFrame(t *testing.T) shared.RealtimeFrame {
	t.Helper()
	select {
	case f := <-cs.frames:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
	}
	return shared.RealtimeFrame{}
}

func push(t *testing.T, conn *websocket.Conn, msg shared.Message) {
	t.Helper()
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(shared.RealtimeFrame{Event: shared.RealtimeEventMessage, Data: data}))
}

func TestSocketRoomLifecycle(t *testing.T) {
	cs, url := newChatServer(t)

	session := auth.NewSession("")
	require.NoError(t, session.Set(auth.Tokens{AccessToken: "tok", UserId: "me"}))

	socket := NewSocket(url, session)
	defer socket.Close()

	received := make(chan *shared.Message, 4)
	dispose := socket.OnMessage("c1", func(msg *shared.Message) { received <- msg })

	require.NoError(t, socket.Join(context.Background(), "c1"))
	assert.Equal(t, "Bearer tok", <-cs.auth)

	frame := cs.nextFrame(t)
	assert.Equal(t, shared.RealtimeEventJoinRoom, frame.Event)
	assert.JSONEq(t, `"c1"`, string(frame.Data))

	serverConn := <-cs.conns

	// frames are read in order, so m1 arriving first means m2 was dropped
	push(t, serverConn, shared.Message{Id: "m2", ConversationId: "other", Content: "not for us"})
	push(t, serverConn, shared.Message{Id: "m1", ConversationId: "c1", Sender: shared.MessageSender{Id: "them"}, Content: "hi"})

	select {
	case msg := <-received:
		assert.Equal(t, "m1", msg.Id)
		assert.Equal(t, "them", msg.SenderId())
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}

	require.NoError(t, socket.SendMessage(context.Background(), shared.SendMessagePayload{ConversationId: "c1", SenderId: "me", Content: "yo", TempId: "t1"}))
	frame = cs.nextFrame(t)
	assert.Equal(t, shared.RealtimeEventSendMessage, frame.Event)
	var payload shared.SendMessagePayload
	require.NoError(t, json.Unmarshal(frame.Data, &payload))
	assert.Equal(t, "yo", payload.Content)
	assert.Equal(t, "t1", payload.TempId)

	dispose()
	dispose()

	require.NoError(t, socket.Leave("c1"))
	frame = cs.nextFrame(t)
	assert.Equal(t, shared.RealtimeEventLeaveRoom, frame.Event)

	push(t, serverConn, shared.Message{Id: "m3", ConversationId: "c1", Content: "late"})

	select {
	case msg := <-received:
		t.Fatalf("unexpected message after dispose: %s", msg.Id)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSocketUnaddressedMessages(t *testing.T) {
	cs, url := newChatServer(t)

	session := auth.NewSession("")
	require.NoError(t, session.Set(auth.Tokens{AccessToken: "tok", UserId: "me"}))

	socket := NewSocket(url, session)
	defer socket.Close()

	received := make(chan *shared.Message, 4)
	socket.OnMessage("c1", func(msg *shared.Message) { received <- msg })
	other := make(chan *shared.Message, 4)
	socket.OnMessage("c2", func(msg *shared.Message) { other <- msg })

	require.NoError(t, socket.Join(context.Background(), "c1"))
	<-cs.auth
	cs.nextFrame(t)
	serverConn := <-cs.conns

	push(t, serverConn, shared.Message{Id: "m0", Content: "no room"})

	select {
	case msg := <-received:
		assert.Equal(t, "m0", msg.Id)
		assert.Equal(t, "c1", msg.ConversationId)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}

	require.NoError(t, socket.Join(context.Background(), "c2"))
	cs.nextFrame(t)

	// with two rooms joined an unaddressed frame has no owner
	push(t, serverConn, shared.Message{Id: "m1", Content: "ambiguous"})
	push(t, serverConn, shared.Message{Id: "m2", ConversationId: "c1", Content: "addressed"})

	select {
	case msg := <-received:
		assert.Equal(t, "m2", msg.Id)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
	assert.Empty(t, other)
}

func TestLeaveWithoutConnection(t *testing.T) {
	socket := NewSocket("ws://127.0.0.1:1/socket", auth.NewSession(""))
	assert.NoError(t, socket.Leave("c1"))
}

func TestMessageSenderWireForms(t *testing.T) {
	var fromId shared.Message
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"m","sender":"u1","content":"a"}`), &fromId))
	assert.Equal(t, "u1", fromId.SenderId())

	var fromUser shared.Message
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"m","sender":{"_id":"u2","userName":"dana"},"content":"a"}`), &fromUser))
	assert.Equal(t, "u2", fromUser.SenderId())
	assert.Equal(t, "dana", fromUser.Sender.UserName)
}
