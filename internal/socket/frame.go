package socket

import "encoding/json"

// Frame is one message on the real-time channel.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Channel event names.
const (
	EventNewMessage          = "newMessage"
	EventJoinGroup           = "join-group"
	EventLeaveGroup          = "leave-group"
	EventTypingStart         = "typing-start"
	EventTypingStop          = "typing-stop"
	EventUserTyping          = "user-typing"
	EventUserStopTyping      = "user-stop-typing"
	EventGroupTypingStart    = "group-typing-start"
	EventGroupTypingStop     = "group-typing-stop"
	EventGroupUserTyping     = "group-user-typing"
	EventGroupUserStopTyping = "group-user-stop-typing"
)

// Connection lifecycle kinds published on the bus. Chat frames never go
// through the bus; they are handed to On handlers directly.
const (
	KindNamespace    = "conn."
	KindConnected    = KindNamespace + "connected"
	KindDisconnected = KindNamespace + "disconnected"
)

// GroupMessageEvent returns the per-group new message event name.
func GroupMessageEvent(groupID string) string {
	return "group:" + groupID + ":newMessage"
}
