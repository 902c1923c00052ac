package store

import (
	"context"
	"fmt"

	"github.com/rodrigiego-coder/beauty-manager/internal/domain"
)

// SQLiteAuditStore implements domain.AuditSink. The audit log is append
// only: there is no update or delete path.
type SQLiteAuditStore struct {
	db *DB
}

// NewAuditStore creates an audit store using the given database.
func NewAuditStore(db *DB) *SQLiteAuditStore {
	return &SQLiteAuditStore{db: db}
}

// Append writes one audit record.
func (s *SQLiteAuditStore) Append(ctx context.Context, rec domain.AuditRecord) error {
	_, err := s.db.sql.ExecContext(ctx,
		`INSERT INTO audit_log (id, salon_id, session_id, layer, category, severity, rule, content_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SalonID, rec.SessionID, rec.Layer,
		string(rec.Category), string(rec.Severity), rec.Rule, rec.ContentHash,
		fmtTime(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("appending audit record: %w", err)
	}
	return nil
}

// CountBySalon returns the number of audit records for a salon. Used by
// the status command.
func (s *SQLiteAuditStore) CountBySalon(ctx context.Context, salonID string) (int, error) {
	var n int
	err := s.db.sql.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_log WHERE salon_id = ?`, salonID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting audit records: %w", err)
	}
	return n, nil
}
