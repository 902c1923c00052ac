// Package buffer coalesces rapid multi-message bursts from one customer
// into a single logical turn.
//
// The first fragment of a burst opens a debounce window; fragments arriving
// inside the window join the same buffer instead of starting a second
// pipeline run. When the window closes the merged turn is classified once.
package buffer

import (
	"context"
	"strings"
	"time"

	"github.com/rodrigiego-coder/beauty-manager/internal/domain"
)

// DefaultWindow is the debounce window for merging message fragments.
const DefaultWindow = 2500 * time.Millisecond

// Fragment is one raw inbound message held in a debounce buffer.
type Fragment struct {
	MessageID string    `json:"messageId"`
	Text      string    `json:"text"`
	Name      string    `json:"name,omitempty"`
	At        time.Time `json:"at"`
}

// Store accumulates fragments per session during the debounce window.
//
// Push appends a fragment and reports whether this fragment opened a new
// window (the caller that opened the window owns the eventual drain).
// Drain atomically removes and returns all buffered fragments.
type Store interface {
	Push(ctx context.Context, key domain.SessionKey, f Fragment) (first bool, err error)
	Drain(ctx context.Context, key domain.SessionKey) ([]Fragment, error)
}

// Merge combines drained fragments into one logical turn. Fragment order
// is preserved; texts are joined with a single space.
func Merge(key domain.SessionKey, fragments []Fragment) domain.Turn {
	turn := domain.Turn{SalonID: key.SalonID, Phone: key.Phone}
	parts := make([]string, 0, len(fragments))
	for i, f := range fragments {
		if i == 0 {
			turn.ReceivedAt = f.At
		}
		if f.Name != "" {
			turn.Name = f.Name
		}
		if t := strings.TrimSpace(f.Text); t != "" {
			parts = append(parts, t)
		}
		turn.MessageIDs = append(turn.MessageIDs, f.MessageID)
	}
	turn.Text = strings.Join(parts, " ")
	return turn
}
