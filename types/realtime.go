package types

import (
	"context"

	shared "storybox-cli/shared"
)

type OnMessage func(msg *shared.Message)

// Realtime is the shared chat connection. Joining and leaving rooms are the
// only operations that change what it delivers.
type Realtime interface {
	Join(ctx context.Context, conversationId string) error
	Leave(conversationId string) error
	SendMessage(ctx context.Context, payload shared.SendMessagePayload) error

	// OnMessage registers fn for messages pushed to conversationId. The
	// returned func removes it and is safe to call more than once.
	OnMessage(conversationId string, fn OnMessage) (dispose func())
}
