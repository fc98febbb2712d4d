package events

import "time"

// Event is one structured audit/notification payload. Delivery is
// fire-and-forget: emission failures never affect the operation that
// produced the event.
type Event struct {
	Type      string                 `json:"type"`
	TenantID  string                 `json:"tenant_id"`
	Payload   map[string]interface{} `json:"payload"`
	CreatedAt time.Time              `json:"created_at"`
}

// Sink receives engine events. Implementations must be safe for
// concurrent use and must not block the caller.
type Sink interface {
	Emit(event Event)
}

// NopSink discards every event. Used in tests and when no emitters are
// configured.
type NopSink struct{}

func (NopSink) Emit(Event) {}
