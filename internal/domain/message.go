// Package domain defines the core types shared across the assistant engine.
package domain

import "time"

// InboundEvent is a normalized customer message delivered by the inbound
// gateway. Delivery is at-least-once: the same MessageID may arrive more
// than once and the engine must behave identically on redelivery.
type InboundEvent struct {
	SalonID   string    `json:"salonId"`
	Phone     string    `json:"phone"`
	Name      string    `json:"name,omitempty"`
	Text      string    `json:"text"`
	MessageID string    `json:"messageId"`
	Timestamp time.Time `json:"timestamp"`
}

// Valid reports whether the event carries the minimum fields required to
// enter the pipeline.
func (e InboundEvent) Valid() bool {
	return e.SalonID != "" && e.Phone != "" && e.MessageID != ""
}

// Turn is one logical conversational turn after debounce merging. It may
// combine several inbound fragments from the same customer.
type Turn struct {
	SalonID     string
	Phone       string
	Name        string
	Text        string    // merged raw text
	Normalized  string    // diacritic-folded, lowercased
	MessageIDs  []string  // fragment message IDs merged into this turn
	ReceivedAt  time.Time // timestamp of the first fragment
}

// LoggedMessage is a persisted conversation turn (customer or assistant).
type LoggedMessage struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
