package websocket

import (
	"time"

	json "github.com/json-iterator/go"
)

// Channel events of the realtime protocol.
const (
	EventJoin            = "phx_join"
	EventLeave           = "phx_leave"
	EventReply           = "phx_reply"
	EventError           = "phx_error"
	EventClose           = "phx_close"
	EventHeartbeat       = "heartbeat"
	EventPostgresChanges = "postgres_changes"
	EventSystem          = "system"
)

// heartbeatTopic is the connection-level topic heartbeats are sent on.
const heartbeatTopic = "phoenix"

// Message is one frame on the realtime socket.
type Message struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     string          `json:"ref,omitempty"`
}

// ReplyPayload is the payload of phx_reply.
type ReplyPayload struct {
	Status   string          `json:"status"`
	Response json.RawMessage `json:"response"`
}

// ChangeFilter selects row changes of one table.
type ChangeFilter struct {
	Event  string `json:"event"`
	Schema string `json:"schema"`
	Table  string `json:"table"`
	Filter string `json:"filter,omitempty"`
}

type joinConfig struct {
	PostgresChanges []ChangeFilter `json:"postgres_changes"`
}

type joinPayload struct {
	Config      joinConfig `json:"config"`
	AccessToken string     `json:"access_token,omitempty"`
}

// ChangePayload is the payload of a postgres_changes event.
type ChangePayload struct {
	Data struct {
		Type     string          `json:"type"`
		Table    string          `json:"table"`
		Record   json.RawMessage `json:"record"`
		CommitAt time.Time       `json:"commit_timestamp"`
	} `json:"data"`
}

// Notification is a row of the notifications relation.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ActorID   string    `json:"actor_id"`
	Type      string    `json:"type"`
	PostID    string    `json:"post_id,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
