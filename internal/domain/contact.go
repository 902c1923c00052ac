package domain

import "time"

// Contact is long-lived customer info. Unlike sessions it survives TTL
// expiry: the greeting window and the customer's name persist across
// conversations.
type Contact struct {
	SalonID       string    `json:"salonId"`
	Phone         string    `json:"phone"`
	Name          string    `json:"name,omitempty"`
	LastGreetedAt time.Time `json:"lastGreetedAt,omitempty"`
	LastSeenAt    time.Time `json:"lastSeenAt,omitempty"`
}

// GreetedWithin reports whether the contact was greeted inside the window.
func (c Contact) GreetedWithin(window time.Duration, now time.Time) bool {
	if c.LastGreetedAt.IsZero() {
		return false
	}
	return now.Sub(c.LastGreetedAt) < window
}
