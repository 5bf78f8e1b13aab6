package websocket

import (
	"time"

	"go.uber.org/zap"
)

// EventBroadcaster encodes dashboard events and hands them to the hub.
type EventBroadcaster struct {
	hub *Hub
	log *zap.Logger
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub, log *zap.Logger) *EventBroadcaster {
	if log == nil {
		log = zap.NewNop()
	}
	return &EventBroadcaster{hub: hub, log: log}
}

// BroadcastDashboardUpdated announces freshly applied data.
func (b *EventBroadcaster) BroadcastDashboardUpdated(payload DashboardUpdatedPayload) {
	b.broadcast(NewMessage(TypeDashboardUpdated, payload))
}

// BroadcastIngestError announces a failed fetch.
func (b *EventBroadcaster) BroadcastIngestError(trigger, kind string, err error) {
	b.broadcast(NewMessage(TypeIngestError, IngestErrorPayload{
		Trigger: trigger,
		Kind:    kind,
		Message: err.Error(),
	}))
}

// BroadcastRefreshTriggered announces an upstream refresh and when the
// follow-up sync will run.
func (b *EventBroadcaster) BroadcastRefreshTriggered(syncAt time.Time) {
	b.broadcast(NewMessage(TypeRefreshTriggered, RefreshTriggeredPayload{SyncAt: syncAt.UTC()}))
}

// BroadcastNotification sends a notification to all connected clients.
func (b *EventBroadcaster) BroadcastNotification(level, title, message string) {
	b.broadcast(NewMessage(TypeNotification, NotificationPayload{
		Level:       level,
		Title:       title,
		Message:     message,
		Dismissible: true,
	}))
}

func (b *EventBroadcaster) broadcast(msg Message) {
	data, err := msg.JSON()
	if err != nil {
		b.log.Error("encoding websocket message", zap.String("type", string(msg.Type)), zap.Error(err))
		return
	}

	b.hub.Broadcast(data)
}
