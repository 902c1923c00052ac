package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rodrigiego-coder/beauty-manager/internal/domain"
)

// SQLiteSessionStore implements domain.SessionStore backed by SQLite.
type SQLiteSessionStore struct {
	db  *DB
	now func() time.Time
}

// NewSessionStore creates a session store using the given database.
func NewSessionStore(db *DB) *SQLiteSessionStore {
	return &SQLiteSessionStore{db: db, now: time.Now}
}

// GetOrCreate finds an existing session by key or creates a new one with
// the given idle TTL.
func (s *SQLiteSessionStore) GetOrCreate(ctx context.Context, key domain.SessionKey, ttl time.Duration) (*domain.Session, error) {
	sess, err := s.get(ctx, key)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	now := s.now()
	sess = &domain.Session{
		ID:           uuid.New().String(),
		Key:          key,
		ActiveSkill:  domain.SkillNone,
		Step:         domain.StepNone,
		TTLExpiresAt: now.Add(ttl),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = s.db.sql.ExecContext(ctx,
		`INSERT INTO sessions (id, key_str, salon_id, phone, active_skill, step, slots, ttl_expires_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, '{}', ?, ?, ?)`,
		sess.ID, key.String(), key.SalonID, key.Phone,
		string(sess.ActiveSkill), string(sess.Step),
		fmtTime(sess.TTLExpiresAt), fmtTime(now), fmtTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("creating session %s: %w", key, err)
	}
	return sess, nil
}

// Save persists the session's mutable state.
func (s *SQLiteSessionStore) Save(ctx context.Context, sess *domain.Session) error {
	slots, err := json.Marshal(sess.Slots)
	if err != nil {
		return fmt.Errorf("marshaling slots: %w", err)
	}
	sess.UpdatedAt = s.now()

	_, err = s.db.sql.ExecContext(ctx,
		`UPDATE sessions SET
			active_skill = ?, step = ?, slots = ?,
			confusion_count = ?, decline_count = ?, human_mode = ?,
			ttl_expires_at = ?,
			handover_summary = ?, handover_at = ?,
			updated_at = ?
		 WHERE id = ?`,
		string(sess.ActiveSkill), string(sess.Step), string(slots),
		sess.ConfusionCount, sess.DeclineCount, boolInt(sess.HumanMode),
		fmtNullableTime(sess.TTLExpiresAt),
		sess.HandoverSummary, fmtNullableTime(sess.HandoverAt),
		fmtTime(sess.UpdatedAt),
		sess.ID,
	)
	if err != nil {
		return fmt.Errorf("saving session %s: %w", sess.ID, err)
	}
	return nil
}

// CommitScheduling writes the booking and the idempotency marker in one
// transaction. The marker is the source of truth: a retried commit for the
// same session observes it and receives the prior appointment ID with
// domain.ErrCommitConflict instead of creating a second booking.
func (s *SQLiteSessionStore) CommitScheduling(ctx context.Context, sess *domain.Session, slots domain.SchedulingSlots) (string, error) {
	tx, err := s.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin commit: %w", err)
	}
	defer tx.Rollback()

	// Re-read the marker inside the transaction: another worker may have
	// committed between our session load and now.
	var existing string
	err = tx.QueryRowContext(ctx,
		`SELECT scheduling_appointment_id FROM sessions WHERE id = ?`, sess.ID,
	).Scan(&existing)
	if err != nil {
		return "", fmt.Errorf("reading commit marker: %w", err)
	}
	if existing != "" {
		sess.SchedulingAppointmentID = existing
		return existing, domain.ErrCommitConflict
	}

	appointmentID := uuid.New().String()
	now := s.now()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO appointments (id, salon_id, phone, session_id, service_id, service_name, professional_id, date_iso, time, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		appointmentID, sess.Key.SalonID, sess.Key.Phone, sess.ID,
		slots.ServiceID, slots.ServiceName, slots.ProfessionalID,
		slots.DateISO, slots.Time, fmtTime(now),
	); err != nil {
		return "", fmt.Errorf("inserting appointment: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE sessions SET scheduling_committed_at = ?, scheduling_appointment_id = ?, updated_at = ?
		 WHERE id = ? AND scheduling_appointment_id = ''`,
		fmtTime(now), appointmentID, fmtTime(now), sess.ID,
	); err != nil {
		return "", fmt.Errorf("writing commit marker: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit booking: %w", err)
	}

	sess.SchedulingCommittedAt = now
	sess.SchedulingAppointmentID = appointmentID
	return appointmentID, nil
}

func (s *SQLiteSessionStore) get(ctx context.Context, key domain.SessionKey) (*domain.Session, error) {
	var (
		sess        domain.Session
		slots       string
		humanMode   int
		ttlExpires  sql.NullString
		committedAt sql.NullString
		handoverAt  sql.NullString
		createdAt   string
		updatedAt   string
	)

	err := s.db.sql.QueryRowContext(ctx,
		`SELECT id, salon_id, phone, active_skill, step, slots,
			confusion_count, decline_count, human_mode,
			ttl_expires_at, scheduling_committed_at, scheduling_appointment_id,
			handover_summary, handover_at, created_at, updated_at
		 FROM sessions WHERE key_str = ?`, key.String(),
	).Scan(
		&sess.ID, &sess.Key.SalonID, &sess.Key.Phone,
		(*string)(&sess.ActiveSkill), (*string)(&sess.Step), &slots,
		&sess.ConfusionCount, &sess.DeclineCount, &humanMode,
		&ttlExpires, &committedAt, &sess.SchedulingAppointmentID,
		&sess.HandoverSummary, &handoverAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(slots), &sess.Slots); err != nil {
		return nil, fmt.Errorf("unmarshaling slots for %s: %w", sess.ID, err)
	}
	sess.HumanMode = humanMode != 0
	sess.TTLExpiresAt = parseNullableTime(ttlExpires)
	sess.SchedulingCommittedAt = parseNullableTime(committedAt)
	sess.HandoverAt = parseNullableTime(handoverAt)
	sess.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
	sess.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
	return &sess, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.DateTime)
}

func fmtNullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return fmtTime(t)
}

func parseNullableTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.DateTime, s.String)
	return t
}
