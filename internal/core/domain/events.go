package domain

// EventType identifies a notification emitted by the engine. Delivery is
// fire-and-forget; a failed notification never unwinds a completed
// operation.
type EventType string

const (
	EventTransaction EventType = "transaction"
	EventPinChanged  EventType = "pin_changed"
	EventPinFailed   EventType = "pin_failed"
)
