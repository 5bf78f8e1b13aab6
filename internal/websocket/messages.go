package websocket

import (
	"encoding/json"
	"time"

	"github.com/barber-dashboard/backend/internal/storage/models"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	// Server -> Client event types
	TypeDashboardUpdated MessageType = "dashboard.updated"
	TypeIngestError      MessageType = "ingest.error"
	TypeRefreshTriggered MessageType = "refresh.triggered"
	TypeNotification     MessageType = "notification"

	// Client -> Server command types
	TypePing MessageType = "ping"

	// Server -> Client response types
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"
)

// Message represents a WebSocket message envelope.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// DashboardUpdatedPayload is sent after new data has been applied.
type DashboardUpdatedPayload struct {
	Version      uint64                `json:"version"`
	Trigger      string                `json:"trigger"`
	Appointments int                   `json:"appointments"`
	Expenses     int                   `json:"expenses"`
	HasInsights  bool                  `json:"has_insights"`
	Stats        models.DashboardStats `json:"stats"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// IngestErrorPayload is sent when a fetch fails. The dashboard keeps
// showing its previous data.
type IngestErrorPayload struct {
	Trigger string `json:"trigger"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// RefreshTriggeredPayload is sent after the refresh webhook accepted a call.
type RefreshTriggeredPayload struct {
	SyncAt time.Time `json:"sync_at"`
}

// NotificationPayload is the payload for notification events.
type NotificationPayload struct {
	Level       string `json:"level"` // info, warning, error, success
	Title       string `json:"title"`
	Message     string `json:"message"`
	Dismissible bool   `json:"dismissible"`
}

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	OriginalType string `json:"original_type,omitempty"`
}
