package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create sessions, messages and processed messages",
		SQL: `
			CREATE TABLE sessions (
				id                        TEXT PRIMARY KEY,
				key_str                   TEXT NOT NULL,
				salon_id                  TEXT NOT NULL,
				phone                     TEXT NOT NULL,
				active_skill              TEXT NOT NULL DEFAULT 'none',
				step                      TEXT NOT NULL DEFAULT 'none',
				slots                     TEXT NOT NULL DEFAULT '{}',
				confusion_count           INTEGER NOT NULL DEFAULT 0,
				decline_count             INTEGER NOT NULL DEFAULT 0,
				human_mode                INTEGER NOT NULL DEFAULT 0,
				ttl_expires_at            TEXT,
				scheduling_committed_at   TEXT,
				scheduling_appointment_id TEXT NOT NULL DEFAULT '',
				handover_summary          TEXT NOT NULL DEFAULT '',
				handover_at               TEXT,
				created_at                TEXT NOT NULL DEFAULT (datetime('now')),
				updated_at                TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE UNIQUE INDEX idx_sessions_key ON sessions (key_str);
			CREATE INDEX idx_sessions_salon ON sessions (salon_id);

			CREATE TABLE messages (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				session_id  TEXT NOT NULL REFERENCES sessions(id),
				role        TEXT NOT NULL,
				content     TEXT NOT NULL,
				timestamp   TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_messages_session ON messages (session_id, id);

			CREATE TABLE processed_messages (
				key_str     TEXT NOT NULL,
				message_id  TEXT NOT NULL,
				seen_at     TEXT NOT NULL DEFAULT (datetime('now')),
				PRIMARY KEY (key_str, message_id)
			);
		`,
	},
	{
		Version: 2,
		Name:    "create contacts and audit log",
		SQL: `
			CREATE TABLE contacts (
				salon_id        TEXT NOT NULL,
				phone           TEXT NOT NULL,
				name            TEXT NOT NULL DEFAULT '',
				last_greeted_at TEXT,
				last_seen_at    TEXT,
				PRIMARY KEY (salon_id, phone)
			);

			CREATE TABLE audit_log (
				id           TEXT PRIMARY KEY,
				salon_id     TEXT NOT NULL,
				session_id   TEXT NOT NULL DEFAULT '',
				layer        TEXT NOT NULL,
				category     TEXT NOT NULL,
				severity     TEXT NOT NULL,
				rule         TEXT NOT NULL,
				content_hash TEXT NOT NULL,
				created_at   TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_audit_salon ON audit_log (salon_id, created_at);
		`,
	},
	{
		Version: 3,
		Name:    "create appointments and notification outbox",
		SQL: `
			CREATE TABLE appointments (
				id              TEXT PRIMARY KEY,
				salon_id        TEXT NOT NULL,
				phone           TEXT NOT NULL,
				session_id      TEXT NOT NULL REFERENCES sessions(id),
				service_id      TEXT NOT NULL,
				service_name    TEXT NOT NULL DEFAULT '',
				professional_id TEXT NOT NULL,
				date_iso        TEXT NOT NULL,
				time            TEXT NOT NULL,
				created_at      TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_appointments_salon ON appointments (salon_id, date_iso);

			CREATE TABLE notifications (
				dedupe_key   TEXT PRIMARY KEY,
				salon_id     TEXT NOT NULL,
				phone        TEXT NOT NULL,
				payload      TEXT NOT NULL,
				scheduled_at TEXT NOT NULL,
				created_at   TEXT NOT NULL DEFAULT (datetime('now'))
			);
		`,
	},
	{
		Version: 4,
		Name:    "create catalog tables",
		SQL: `
			CREATE TABLE services (
				id               TEXT PRIMARY KEY,
				salon_id         TEXT NOT NULL,
				name             TEXT NOT NULL,
				price            REAL NOT NULL DEFAULT 0,
				duration_minutes INTEGER NOT NULL DEFAULT 0,
				active           INTEGER NOT NULL DEFAULT 1
			);

			CREATE INDEX idx_services_salon ON services (salon_id, active);

			CREATE TABLE professionals (
				id       TEXT PRIMARY KEY,
				salon_id TEXT NOT NULL,
				name     TEXT NOT NULL,
				active   INTEGER NOT NULL DEFAULT 1
			);

			CREATE INDEX idx_professionals_salon ON professionals (salon_id, active);

			CREATE TABLE products (
				id       TEXT PRIMARY KEY,
				salon_id TEXT NOT NULL,
				name     TEXT NOT NULL,
				price    REAL NOT NULL DEFAULT 0
			);

			CREATE TABLE salon_hours (
				salon_id TEXT PRIMARY KEY,
				weekdays TEXT NOT NULL DEFAULT '',
				saturday TEXT NOT NULL DEFAULT '',
				sunday   TEXT NOT NULL DEFAULT ''
			);
		`,
	},
}
