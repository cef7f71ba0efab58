package pocket

// EventType identifies a broadcast event.
type EventType string

// Events broadcast by the bridge to connected listeners.
const (
	EventContentAdded   EventType = "content_added"
	EventContentDeleted EventType = "content_deleted"
)

// Event is a realtime notification sent to connected listeners after a
// save or delete completes, decoupled from the request/response cycle.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}
