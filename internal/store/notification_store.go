package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rodrigiego-coder/beauty-manager/internal/domain"
)

// SQLiteNotificationStore implements domain.NotificationScheduler as an
// outbox table. Scheduling is at-least-once: callers may retry freely and
// the dedupe key (appointment ID) collapses duplicates.
type SQLiteNotificationStore struct {
	db *DB
}

// NewNotificationStore creates a notification outbox using the database.
func NewNotificationStore(db *DB) *SQLiteNotificationStore {
	return &SQLiteNotificationStore{db: db}
}

// ScheduleReminder enqueues an appointment reminder. A repeated call with
// the same appointment ID is a no-op.
func (s *SQLiteNotificationStore) ScheduleReminder(ctx context.Context, appointmentID, salonID, phone string, slots domain.SchedulingSlots) error {
	payload, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("marshaling reminder payload: %w", err)
	}

	scheduledAt := slots.DateISO
	if slots.Time != "" {
		scheduledAt += " " + slots.Time
	}

	_, err = s.db.sql.ExecContext(ctx,
		`INSERT OR IGNORE INTO notifications (dedupe_key, salon_id, phone, payload, scheduled_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		appointmentID, salonID, phone, string(payload), scheduledAt, time.Now().UTC().Format(time.DateTime),
	)
	if err != nil {
		return fmt.Errorf("scheduling reminder: %w", err)
	}
	return nil
}
