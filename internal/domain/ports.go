package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors surfaced by engine collaborators.
var (
	// ErrMalformedEvent rejects an inbound event before it enters the pipeline.
	ErrMalformedEvent = errors.New("malformed inbound event")

	// ErrCommitConflict signals that a booking commit found an existing
	// idempotency marker; callers receive the prior appointment ID instead.
	ErrCommitConflict = errors.New("scheduling already committed for session")

	// ErrGenerationUnavailable signals a Generation Service timeout or error.
	// It never reaches the customer; the caller substitutes the fixed fallback.
	ErrGenerationUnavailable = errors.New("generation service unavailable")
)

// CatalogProvider is read-only access to a salon's live catalog.
type CatalogProvider interface {
	ActiveServices(ctx context.Context, salonID string) ([]Service, error)
	ActiveProfessionals(ctx context.Context, salonID string) ([]Professional, error)
	Products(ctx context.Context, salonID string) ([]Product, error)
	Hours(ctx context.Context, salonID string) (BusinessHours, error)
}

// NotificationScheduler enqueues appointment reminders. Scheduling is
// at-least-once and retryable; implementations dedupe on the appointment ID.
type NotificationScheduler interface {
	ScheduleReminder(ctx context.Context, appointmentID string, salonID, phone string, slots SchedulingSlots) error
}

// OutboundGateway delivers the final reply to the customer.
type OutboundGateway interface {
	Send(ctx context.Context, salonID, phone, text string) (messageID string, err error)
}

// AuditSink is an append-only store for compliance audit records.
type AuditSink interface {
	Append(ctx context.Context, rec AuditRecord) error
}

// ContactStore persists long-lived contact info across sessions.
type ContactStore interface {
	Get(ctx context.Context, salonID, phone string) (Contact, error)
	Upsert(ctx context.Context, c Contact) error
}

// SessionStore persists conversation sessions with read-modify-write
// semantics on the commit path.
type SessionStore interface {
	GetOrCreate(ctx context.Context, key SessionKey, ttl time.Duration) (*Session, error)
	Save(ctx context.Context, s *Session) error
	// CommitScheduling atomically writes the idempotency marker and the
	// appointment row. If a marker already exists it returns the prior
	// appointment ID and ErrCommitConflict.
	CommitScheduling(ctx context.Context, s *Session, slots SchedulingSlots) (appointmentID string, err error)
}

// MessageLog persists conversation turns and answers redelivery checks.
type MessageLog interface {
	// Seen records messageID for the session key and reports whether it was
	// already recorded, making redelivered webhook events no-ops.
	Seen(ctx context.Context, key SessionKey, messageID string) (bool, error)
	Append(ctx context.Context, sessionID string, msg LoggedMessage) error
	Recent(ctx context.Context, sessionID string, limit int) ([]LoggedMessage, error)
}
