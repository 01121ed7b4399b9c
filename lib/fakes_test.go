package lib

import (
	"context"
	"fmt"
	"sync"

	shared "storybox-cli/shared"
	"storybox-cli/types"
)

// fakeApi implements just the calls a test needs; anything else panics via
// the nil embedded interface.
type fakeApi struct {
	types.ApiClient

	mu    sync.Mutex
	calls []string

	users       map[string]*shared.User
	failUsers   map[string]bool
	likeErrs    []*shared.ApiError
	likeGate    chan struct{}
	comments    []*shared.Comment
	convos      []*shared.Conversation
	convo       *shared.Conversation
	convoErr    *shared.ApiError
	convoGate   chan struct{}
	deleteErr   *shared.ApiError
	restMessage *shared.Message

	// runs before the REST send answers
	onRest func(msg *shared.Message)
}

func (f *fakeApi) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeApi) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	res := make([]string, len(f.calls))
	copy(res, f.calls)
	return res
}

func (f *fakeApi) count(prefix string) int {
	n := 0
	for _, c := range f.Calls() {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (f *fakeApi) GetUser(ctx context.Context, userId string) (*shared.User, *shared.ApiError) {
	f.record("GetUser " + userId)
	if f.failUsers[userId] {
		return nil, &shared.ApiError{Type: shared.ApiErrorTypeServer, Status: 500, Msg: "boom"}
	}
	u, ok := f.users[userId]
	if !ok {
		return nil, &shared.ApiError{Type: shared.ApiErrorTypeServer, Status: 404, Msg: "user not found"}
	}
	return u, nil
}

func (f *fakeApi) nextLikeErr() *shared.ApiError {
	if f.likeGate != nil {
		<-f.likeGate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.likeErrs) == 0 {
		return nil
	}
	err := f.likeErrs[0]
	f.likeErrs = f.likeErrs[1:]
	return err
}

func (f *fakeApi) AddLike(ctx context.Context, postId string) *shared.ApiError {
	f.record("AddLike " + postId)
	return f.nextLikeErr()
}

func (f *fakeApi) RemoveLike(ctx context.Context, postId string) *shared.ApiError {
	f.record("RemoveLike " + postId)
	return f.nextLikeErr()
}

func (f *fakeApi) ListComments(ctx context.Context, postId string) ([]*shared.Comment, *shared.ApiError) {
	f.record("ListComments " + postId)
	return f.comments, nil
}

func (f *fakeApi) AddComment(ctx context.Context, req shared.AddCommentRequest) (*shared.Comment, *shared.ApiError) {
	f.record("AddComment " + req.PostId)
	return &shared.Comment{Id: "c-new", PostId: req.PostId, OwnerId: "me", Content: req.Content}, nil
}

func (f *fakeApi) ListConversations(ctx context.Context) ([]*shared.Conversation, *shared.ApiError) {
	f.record("ListConversations")
	return f.convos, nil
}

func (f *fakeApi) GetConversation(ctx context.Context, conversationId string) (*shared.Conversation, *shared.ApiError) {
	f.record("GetConversation " + conversationId)
	if f.convoGate != nil {
		select {
		case <-f.convoGate:
		case <-ctx.Done():
			return nil, &shared.ApiError{Type: shared.ApiErrorTypeCanceled, Msg: "canceled"}
		}
	}
	if f.convoErr != nil {
		return nil, f.convoErr
	}
	return f.convo, nil
}

func (f *fakeApi) StartConversation(ctx context.Context, recipientId string) (*shared.Conversation, *shared.ApiError) {
	f.record("StartConversation " + recipientId)
	return &shared.Conversation{
		Id:           "convo-" + recipientId,
		Participants: []*shared.User{{Id: "me"}, {Id: recipientId, UserName: recipientId}},
	}, nil
}

func (f *fakeApi) DeleteConversation(ctx context.Context, conversationId string) *shared.ApiError {
	f.record("DeleteConversation " + conversationId)
	return f.deleteErr
}

func (f *fakeApi) SendMessage(ctx context.Context, conversationId string, req shared.SendMessageRequest) (*shared.Message, *shared.ApiError) {
	f.record("SendMessage " + conversationId)
	if f.restMessage != nil {
		if f.onRest != nil {
			f.onRest(f.restMessage)
		}
		return f.restMessage, nil
	}
	return nil, &shared.ApiError{Type: shared.ApiErrorTypeNetwork, Msg: "offline"}
}

// fakeRealtime records room traffic and lets tests push messages.
type fakeRealtime struct {
	mu        sync.Mutex
	joins     []string
	leaves    []string
	sent      []shared.SendMessagePayload
	listeners map[int]types.OnMessage
	nextId    int

	joinErr  error
	sendErr  error
	sendGate chan struct{}

	// runs after a successful send, before SendMessage returns
	onSend func(payload shared.SendMessagePayload)
}

var _ types.Realtime = (*fakeRealtime)(nil)

func newFakeRealtime() *fakeRealtime {
	return &fakeRealtime{listeners: map[int]types.OnMessage{}}
}

func (r *fakeRealtime) Join(ctx context.Context, conversationId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.joinErr != nil {
		return r.joinErr
	}
	r.joins = append(r.joins, conversationId)
	return nil
}

func (r *fakeRealtime) Leave(conversationId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaves = append(r.leaves, conversationId)
	return nil
}

func (r *fakeRealtime) SendMessage(ctx context.Context, payload shared.SendMessagePayload) error {
	if r.sendGate != nil {
		<-r.sendGate
	}

	r.mu.Lock()
	if r.sendErr != nil {
		r.mu.Unlock()
		return r.sendErr
	}
	r.sent = append(r.sent, payload)
	onSend := r.onSend
	r.mu.Unlock()

	if onSend != nil {
		onSend(payload)
	}
	return nil
}

func (r *fakeRealtime) OnMessage(conversationId string, fn types.OnMessage) func() {
	r.mu.Lock()
	id := r.nextId
	r.nextId++
	r.listeners[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

func (r *fakeRealtime) push(msg *shared.Message) {
	r.mu.Lock()
	var fns []types.OnMessage
	for _, fn := range r.listeners {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(msg)
	}
}

func (r *fakeRealtime) listenerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners)
}

func (r *fakeRealtime) Leaves() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.leaves...)
}

func (r *fakeRealtime) Sent() []shared.SendMessagePayload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]shared.SendMessagePayload(nil), r.sent...)
}

func testUsers(ids ...string) map[string]*shared.User {
	res := map[string]*shared.User{}
	for _, id := range ids {
		res[id] = &shared.User{Id: id, UserName: "user-" + id, ProfilePictureUri: fmt.Sprintf("https://img/%s.png", id)}
	}
	return res
}
