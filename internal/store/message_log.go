package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rodrigiego-coder/beauty-manager/internal/domain"
)

// SQLiteMessageLog implements domain.MessageLog: persisted conversation
// turns plus the redelivery dedup table.
type SQLiteMessageLog struct {
	db *DB
}

// NewMessageLog creates a message log using the given database.
func NewMessageLog(db *DB) *SQLiteMessageLog {
	return &SQLiteMessageLog{db: db}
}

// Seen records messageID for the session key and reports whether it had
// been recorded before. INSERT OR IGNORE makes the check and the record
// one atomic statement, so concurrent redeliveries cannot both pass.
func (s *SQLiteMessageLog) Seen(ctx context.Context, key domain.SessionKey, messageID string) (bool, error) {
	res, err := s.db.sql.ExecContext(ctx,
		`INSERT OR IGNORE INTO processed_messages (key_str, message_id) VALUES (?, ?)`,
		key.String(), messageID,
	)
	if err != nil {
		return false, fmt.Errorf("recording message id: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking message id: %w", err)
	}
	return n == 0, nil
}

// Append adds one conversation turn to the session's log.
func (s *SQLiteMessageLog) Append(ctx context.Context, sessionID string, msg domain.LoggedMessage) error {
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := s.db.sql.ExecContext(ctx,
		`INSERT INTO messages (session_id, role, content, timestamp) VALUES (?, ?, ?, ?)`,
		sessionID, msg.Role, msg.Content, fmtTime(ts),
	)
	if err != nil {
		return fmt.Errorf("appending message: %w", err)
	}
	return nil
}

// Recent returns the last limit turns for a session in chronological order.
func (s *SQLiteMessageLog) Recent(ctx context.Context, sessionID string, limit int) ([]domain.LoggedMessage, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT role, content, timestamp FROM (
			SELECT id, role, content, timestamp FROM messages
			WHERE session_id = ? ORDER BY id DESC LIMIT ?
		 ) ORDER BY id ASC`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("loading messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.LoggedMessage
	for rows.Next() {
		var m domain.LoggedMessage
		var ts string
		if err := rows.Scan(&m.Role, &m.Content, &ts); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.Timestamp, _ = time.Parse(time.DateTime, ts)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
