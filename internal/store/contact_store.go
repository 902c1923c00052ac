package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rodrigiego-coder/beauty-manager/internal/domain"
)

// SQLiteContactStore implements domain.ContactStore.
type SQLiteContactStore struct {
	db *DB
}

// NewContactStore creates a contact store using the given database.
func NewContactStore(db *DB) *SQLiteContactStore {
	return &SQLiteContactStore{db: db}
}

// Get returns the contact for (salonID, phone). A missing contact is not
// an error: it returns a zero-valued contact with the key set.
func (s *SQLiteContactStore) Get(ctx context.Context, salonID, phone string) (domain.Contact, error) {
	c := domain.Contact{SalonID: salonID, Phone: phone}
	var lastGreeted, lastSeen sql.NullString

	err := s.db.sql.QueryRowContext(ctx,
		`SELECT name, last_greeted_at, last_seen_at FROM contacts WHERE salon_id = ? AND phone = ?`,
		salonID, phone,
	).Scan(&c.Name, &lastGreeted, &lastSeen)
	if errors.Is(err, sql.ErrNoRows) {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("loading contact: %w", err)
	}

	c.LastGreetedAt = parseNullableTime(lastGreeted)
	c.LastSeenAt = parseNullableTime(lastSeen)
	return c, nil
}

// Upsert inserts or updates the contact record.
func (s *SQLiteContactStore) Upsert(ctx context.Context, c domain.Contact) error {
	_, err := s.db.sql.ExecContext(ctx,
		`INSERT INTO contacts (salon_id, phone, name, last_greeted_at, last_seen_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (salon_id, phone) DO UPDATE SET
			name = CASE WHEN excluded.name != '' THEN excluded.name ELSE contacts.name END,
			last_greeted_at = excluded.last_greeted_at,
			last_seen_at = excluded.last_seen_at`,
		c.SalonID, c.Phone, c.Name, fmtNullableTime(c.LastGreetedAt), fmtNullableTime(c.LastSeenAt),
	)
	if err != nil {
		return fmt.Errorf("upserting contact: %w", err)
	}
	return nil
}
