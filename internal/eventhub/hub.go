// internal/eventhub/hub.go
package eventhub

import (
	"context"
)

// Broadcaster delivers events to whatever surface consumes the core
// (desktop runtime, websocket bridge, test recorder).
type Broadcaster interface {
	BroadcastEvent(eventType string, payload interface{})
}

// EventHub is the central event dispatcher. The store and generation tasks
// emit through it instead of holding references to the UI layer.
type EventHub struct {
	ctx         context.Context
	broadcaster Broadcaster
}

// New creates a new EventHub.
func New(ctx context.Context) *EventHub {
	return &EventHub{ctx: ctx}
}

// SetBroadcaster installs the event consumer.
func (h *EventHub) SetBroadcaster(b Broadcaster) {
	h.broadcaster = b
}

// emit is the single dispatch point. A hub without a broadcaster drops
// events, so the core stays usable headless and in tests.
func (h *EventHub) emit(eventName string, payload interface{}) {
	if h == nil || h.broadcaster == nil {
		return
	}
	h.broadcaster.BroadcastEvent(eventName, payload)
}

// Emit sends an arbitrary event.
func (h *EventHub) Emit(eventName string, payload interface{}) {
	h.emit(eventName, payload)
}

// Project store events

type ProjectChangedEvent struct {
	ID string `json:"id"`
	Op string `json:"op"` // "create", "update", "delete", "duplicate"
}

func (h *EventHub) EmitProjectChanged(event ProjectChangedEvent) {
	h.emit("project:changed", event)
}

// StorageDegradedEvent reports the outcome of a capacity-exhausted save.
// Degraded=true means the retry with stripped payloads succeeded; otherwise
// Error carries the final failure for a user-visible, non-fatal notice.
type StorageDegradedEvent struct {
	Degraded bool   `json:"degraded"`
	Error    string `json:"error,omitempty"`
}

func (h *EventHub) EmitStorageDegraded(event StorageDegradedEvent) {
	h.emit("storage:degraded", event)
}

// Generation task events

// EmitChatChunk forwards one streamed fragment of an in-flight chat response.
func (h *EventHub) EmitChatChunk(sessionID string, content string) {
	h.emit("chat-chunk", map[string]interface{}{
		"session_id": sessionID,
		"content":    content,
	})
}

// TaskStatusEvent reports a lifecycle change of a generation task.
type TaskStatusEvent struct {
	Task     string `json:"task"` // "chat", "image", "video"
	Status   string `json:"status"`
	Progress int    `json:"progress,omitempty"`
}

func (h *EventHub) EmitTaskStatus(event TaskStatusEvent) {
	h.emit("task:status", event)
}
