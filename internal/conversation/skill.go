// Package conversation implements the per-session state machine that owns
// all writes to a Session: TTL expiry, counters, human handover, and the
// scheduling sub-flow behind the Skill interface.
package conversation

import (
	"context"

	"github.com/rodrigiego-coder/beauty-manager/internal/domain"
)

// Handover thresholds. Consecutive unresolved slot-fill attempts and
// declined date proposals each force escalation to a human.
const (
	MaxConfusion = 3
	MaxDecline   = 2
)

// Outcome is the result of advancing the state machine by one turn.
type Outcome struct {
	// Reply is the text to send. Empty with Handled false means the turn
	// is inconclusive and the caller should fall back to generation.
	Reply   string
	Handled bool

	// Progress marks a productive turn; the caller bumps the session TTL.
	Progress bool

	// Booked is set once a commit succeeded (or was replayed idempotently);
	// AppointmentID carries the booking ID in either case.
	Booked        bool
	AppointmentID string

	// HandedOver marks the turn that escalated the session to a human.
	HandedOver bool
}

// Skill is one conversational sub-flow. Advance mutates the session and
// returns the outcome; the outer pipeline never branches on skill internals.
type Skill interface {
	Name() domain.Skill
	Advance(ctx context.Context, sess *domain.Session, turn domain.Turn, it domain.Intent) (Outcome, error)
}
