package shared

import "encoding/json"

type RealtimeEvent string

const (
	RealtimeEventJoin           RealtimeEvent = "join"
	RealtimeEventJoinRoom       RealtimeEvent = "joinRoom"
	RealtimeEventLeaveRoom      RealtimeEvent = "leaveRoom"
	RealtimeEventSendMessage    RealtimeEvent = "sendMessage"
	RealtimeEventMessage        RealtimeEvent = "message"
	RealtimeEventReceiveMessage RealtimeEvent = "receiveMessage"
)

type RealtimeFrame struct {
	Event RealtimeEvent   `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type SendMessagePayload struct {
	ConversationId string `json:"conversationId"`
	SenderId       string `json:"senderId"`
	Content        string `json:"content"`
	TempId         string `json:"tempId,omitempty"`
}
