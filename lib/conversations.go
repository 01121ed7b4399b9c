package lib

import (
	"context"
	"fmt"
	"strings"
	"sync"

	shared "storybox-cli/shared"
	"storybox-cli/types"
)

// ConversationEntry is a conversation as seen by the signed-in user.
type ConversationEntry struct {
	Conversation *shared.Conversation

	// first participant who isn't the current user; nil if there is none
	Other  *shared.User
	Others []*shared.User

	LastMessage *shared.Message
}

func NewConversationEntry(convo *shared.Conversation, selfId string) *ConversationEntry {
	entry := &ConversationEntry{Conversation: convo}

	for _, p := range convo.Participants {
		if p == nil || p.Id == selfId {
			continue
		}
		entry.Others = append(entry.Others, p)
	}
	if len(entry.Others) > 0 {
		entry.Other = entry.Others[0]
	}

	entry.LastMessage = convo.LastMessage
	if entry.LastMessage == nil && len(convo.Messages) > 0 {
		entry.LastMessage = convo.Messages[len(convo.Messages)-1]
	}

	return entry
}

// DisplayName names the conversation by its other participants.
func (e *ConversationEntry) DisplayName() string {
	if len(e.Others) == 0 {
		return "(just you)"
	}

	names := make([]string, 0, len(e.Others))
	for _, u := range e.Others {
		name := u.UserName
		if name == "" {
			name = u.Id
		}
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}

type ConversationList struct {
	api    types.ConversationsApi
	selfId string

	mu      sync.Mutex
	entries []*ConversationEntry
}

func NewConversationList(api types.ConversationsApi, selfId string) *ConversationList {
	return &ConversationList{api: api, selfId: selfId}
}

func (l *ConversationList) Load(ctx context.Context) ([]*ConversationEntry, error) {
	convos, apiErr := l.api.ListConversations(ctx)
	if apiErr != nil {
		return nil, fmt.Errorf("error loading conversations: %w", apiErr)
	}

	entries := make([]*ConversationEntry, 0, len(convos))
	for _, convo := range convos {
		if convo == nil {
			continue
		}
		entries = append(entries, NewConversationEntry(convo, l.selfId))
	}

	l.mu.Lock()
	l.entries = entries
	l.mu.Unlock()

	return l.Entries(), nil
}

func (l *ConversationList) Entries() []*ConversationEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	res := make([]*ConversationEntry, len(l.entries))
	copy(res, l.entries)
	return res
}

// Delete asks confirm first and sends nothing unless it returns true. The
// entry is removed only once the server has deleted it.
func (l *ConversationList) Delete(ctx context.Context, conversationId string, confirm func() (bool, error)) (bool, error) {
	ok, err := confirm()
	if err != nil {
		return false, fmt.Errorf("error getting confirmation: %v", err)
	}
	if !ok {
		return false, nil
	}

	apiErr := l.api.DeleteConversation(ctx, conversationId)
	if apiErr != nil {
		return false, fmt.Errorf("error deleting conversation: %w", apiErr)
	}

	l.mu.Lock()
	for i, e := range l.entries {
		if e.Conversation.Id == conversationId {
			l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
			break
		}
	}
	l.mu.Unlock()

	return true, nil
}

// Start opens the conversation with recipientId, creating it if needed.
func (l *ConversationList) Start(ctx context.Context, recipientId string) (*ConversationEntry, error) {
	if recipientId == "" {
		return nil, shared.NewValidationError("recipientId", "recipient is required")
	}
	if recipientId == l.selfId {
		return nil, shared.NewValidationError("recipientId", "can't start a conversation with yourself")
	}

	convo, apiErr := l.api.StartConversation(ctx, recipientId)
	if apiErr != nil {
		return nil, fmt.Errorf("error starting conversation: %w", apiErr)
	}

	entry := NewConversationEntry(convo, l.selfId)

	l.mu.Lock()
	found := false
	for i, e := range l.entries {
		if e.Conversation.Id == convo.Id {
			l.entries[i] = entry
			found = true
			break
		}
	}
	if !found {
		l.entries = append([]*ConversationEntry{entry}, l.entries...)
	}
	l.mu.Unlock()

	return entry, nil
}
