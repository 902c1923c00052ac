package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigiego-coder/beauty-manager/internal/domain"
	"github.com/rodrigiego-coder/beauty-manager/internal/logging"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	log := logging.New(nil, "silent")
	db, err := Open(":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

var testKey = domain.SessionKey{SalonID: "salon-1", Phone: "+5511999990000"}

// --- DB/Migration tests ---

func TestOpen_InMemory(t *testing.T) {
	db := testDB(t)
	assert.NotNil(t, db)
	assert.NotNil(t, db.SQL())
}

func TestMigrations_Applied(t *testing.T) {
	db := testDB(t)

	var count int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), count)
}

func TestMigrations_Idempotent(t *testing.T) {
	db := testDB(t)

	err := db.migrate()
	require.NoError(t, err)

	var count int
	err = db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), count)
}

func TestSchema_TablesExist(t *testing.T) {
	db := testDB(t)

	tables := []string{
		"sessions", "messages", "processed_messages", "contacts",
		"audit_log", "appointments", "notifications",
		"services", "professionals", "products", "salon_hours",
	}
	for _, table := range tables {
		var name string
		err := db.sql.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

// --- Session store tests ---

func TestSessionStore_GetOrCreate_New(t *testing.T) {
	ss := NewSessionStore(testDB(t))
	ctx := context.Background()

	sess, err := ss.GetOrCreate(ctx, testKey, 30*time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, testKey, sess.Key)
	assert.Equal(t, domain.SkillNone, sess.ActiveSkill)
	assert.Equal(t, domain.StepNone, sess.Step)
	assert.False(t, sess.TTLExpiresAt.IsZero())
}

func TestSessionStore_GetOrCreate_Existing(t *testing.T) {
	ss := NewSessionStore(testDB(t))
	ctx := context.Background()

	s1, err := ss.GetOrCreate(ctx, testKey, 30*time.Minute)
	require.NoError(t, err)
	s2, err := ss.GetOrCreate(ctx, testKey, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, s1.ID, s2.ID)
}

func TestSessionStore_SaveRoundTrip(t *testing.T) {
	ss := NewSessionStore(testDB(t))
	ctx := context.Background()

	sess, err := ss.GetOrCreate(ctx, testKey, 30*time.Minute)
	require.NoError(t, err)

	sess.ActiveSkill = domain.SkillScheduling
	sess.Step = domain.StepAwaitingDateTime
	sess.Slots = domain.SchedulingSlots{ServiceID: "s1", ServiceName: "Escova", ProfessionalID: "p1"}
	sess.ConfusionCount = 2
	sess.HumanMode = true
	require.NoError(t, ss.Save(ctx, sess))

	got, err := ss.GetOrCreate(ctx, testKey, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, domain.SkillScheduling, got.ActiveSkill)
	assert.Equal(t, domain.StepAwaitingDateTime, got.Step)
	assert.Equal(t, "s1", got.Slots.ServiceID)
	assert.Equal(t, 2, got.ConfusionCount)
	assert.True(t, got.HumanMode)
}

func TestSessionStore_CommitScheduling_Idempotent(t *testing.T) {
	ss := NewSessionStore(testDB(t))
	ctx := context.Background()

	sess, err := ss.GetOrCreate(ctx, testKey, 30*time.Minute)
	require.NoError(t, err)
	slots := domain.SchedulingSlots{
		ServiceID: "s1", ServiceName: "Escova Progressiva",
		ProfessionalID: "p1", DateISO: "2026-08-27", Time: "14:00",
	}

	id1, err := ss.CommitScheduling(ctx, sess, slots)
	require.NoError(t, err)
	require.NotEmpty(t, id1)

	// Simulated redelivery: retry returns the prior result and no second row.
	id2, err := ss.CommitScheduling(ctx, sess, slots)
	assert.ErrorIs(t, err, domain.ErrCommitConflict)
	assert.Equal(t, id1, id2)

	var count int
	require.NoError(t, ss.db.sql.QueryRow("SELECT COUNT(*) FROM appointments").Scan(&count))
	assert.Equal(t, 1, count, "exactly one appointment after duplicate commit")
}

func TestSessionStore_CommitVisibleOnReload(t *testing.T) {
	ss := NewSessionStore(testDB(t))
	ctx := context.Background()

	sess, err := ss.GetOrCreate(ctx, testKey, 30*time.Minute)
	require.NoError(t, err)
	id, err := ss.CommitScheduling(ctx, sess, domain.SchedulingSlots{ServiceID: "s1", ProfessionalID: "p1", DateISO: "2026-08-27", Time: "10:00"})
	require.NoError(t, err)

	got, err := ss.GetOrCreate(ctx, testKey, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, id, got.SchedulingAppointmentID)
	assert.True(t, got.Committed())
	assert.False(t, got.SchedulingCommittedAt.IsZero())
}

// --- Contact store tests ---

func TestContactStore_MissingContactIsZeroValue(t *testing.T) {
	cs := NewContactStore(testDB(t))

	c, err := cs.Get(context.Background(), "salon-1", "+550000000000")
	require.NoError(t, err)
	assert.Empty(t, c.Name)
	assert.True(t, c.LastGreetedAt.IsZero())
}

func TestContactStore_UpsertRoundTrip(t *testing.T) {
	cs := NewContactStore(testDB(t))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, cs.Upsert(ctx, domain.Contact{
		SalonID: "salon-1", Phone: "+5511999990000", Name: "Maria",
		LastGreetedAt: now, LastSeenAt: now,
	}))

	c, err := cs.Get(ctx, "salon-1", "+5511999990000")
	require.NoError(t, err)
	assert.Equal(t, "Maria", c.Name)
	assert.WithinDuration(t, now, c.LastGreetedAt, time.Second)
}

func TestContactStore_UpsertKeepsNameWhenEmpty(t *testing.T) {
	cs := NewContactStore(testDB(t))
	ctx := context.Background()

	require.NoError(t, cs.Upsert(ctx, domain.Contact{SalonID: "s", Phone: "p", Name: "Maria"}))
	require.NoError(t, cs.Upsert(ctx, domain.Contact{SalonID: "s", Phone: "p", Name: ""}))

	c, err := cs.Get(ctx, "s", "p")
	require.NoError(t, err)
	assert.Equal(t, "Maria", c.Name)
}

// --- Message log tests ---

func TestMessageLog_SeenDedup(t *testing.T) {
	ml := NewMessageLog(testDB(t))
	ctx := context.Background()

	seen, err := ml.Seen(ctx, testKey, "wamid-1")
	require.NoError(t, err)
	assert.False(t, seen, "first delivery is unseen")

	seen, err = ml.Seen(ctx, testKey, "wamid-1")
	require.NoError(t, err)
	assert.True(t, seen, "redelivery is detected")
}

func TestMessageLog_AppendRecent(t *testing.T) {
	db := testDB(t)
	ss := NewSessionStore(db)
	ml := NewMessageLog(db)
	ctx := context.Background()

	sess, err := ss.GetOrCreate(ctx, testKey, time.Hour)
	require.NoError(t, err)

	for _, content := range []string{"oi", "bom dia!", "quero agendar"} {
		require.NoError(t, ml.Append(ctx, sess.ID, domain.LoggedMessage{Role: "user", Content: content}))
	}

	msgs, err := ml.Recent(ctx, sess.ID, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "bom dia!", msgs[0].Content)
	assert.Equal(t, "quero agendar", msgs[1].Content)
}

// --- Audit store tests ---

func TestAuditStore_Append(t *testing.T) {
	as := NewAuditStore(testDB(t))
	ctx := context.Background()

	rec := domain.AuditRecord{
		ID: "a1", SalonID: "salon-1", SessionID: "sess-1",
		Layer: "inbound", Category: domain.CategoryRegulatory,
		Severity: domain.SeverityCritical, Rule: "regulatory.cure_claim",
		ContentHash: "deadbeef", CreatedAt: time.Now(),
	}
	require.NoError(t, as.Append(ctx, rec))

	n, err := as.CountBySalon(ctx, "salon-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// --- Catalog store tests ---

func TestCatalogStore_SeedAndRead(t *testing.T) {
	cs := NewCatalogStore(testDB(t))
	ctx := context.Background()

	err := cs.Seed(ctx, "salon-1",
		[]domain.Service{
			{ID: "s1", Name: "Escova Progressiva", Price: 150, Active: true},
			{ID: "s2", Name: "Corte", Price: 80, Active: false},
		},
		[]domain.Professional{{ID: "p1", Name: "Ana", Active: true}},
		[]domain.Product{{ID: "pr1", Name: "Shampoo", Price: 45}},
		domain.BusinessHours{Weekdays: "9h às 19h"},
	)
	require.NoError(t, err)

	services, err := cs.ActiveServices(ctx, "salon-1")
	require.NoError(t, err)
	require.Len(t, services, 1, "inactive services are filtered")
	assert.Equal(t, "Escova Progressiva", services[0].Name)

	pros, err := cs.ActiveProfessionals(ctx, "salon-1")
	require.NoError(t, err)
	require.Len(t, pros, 1)

	products, err := cs.Products(ctx, "salon-1")
	require.NoError(t, err)
	require.Len(t, products, 1)

	hours, err := cs.Hours(ctx, "salon-1")
	require.NoError(t, err)
	assert.Equal(t, "9h às 19h", hours.Weekdays)
}

func TestCatalogStore_SeedReplaces(t *testing.T) {
	cs := NewCatalogStore(testDB(t))
	ctx := context.Background()

	require.NoError(t, cs.Seed(ctx, "salon-1",
		[]domain.Service{{ID: "s1", Name: "Corte", Active: true}}, nil, nil, domain.BusinessHours{}))
	require.NoError(t, cs.Seed(ctx, "salon-1",
		[]domain.Service{{ID: "s2", Name: "Escova", Active: true}}, nil, nil, domain.BusinessHours{}))

	services, err := cs.ActiveServices(ctx, "salon-1")
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "s2", services[0].ID)
}

// --- Notification outbox tests ---

func TestNotificationStore_DedupeOnAppointmentID(t *testing.T) {
	db := testDB(t)
	ns := NewNotificationStore(db)
	ctx := context.Background()
	slots := domain.SchedulingSlots{ServiceID: "s1", DateISO: "2026-08-27", Time: "14:00"}

	require.NoError(t, ns.ScheduleReminder(ctx, "appt-1", "salon-1", "+55119", slots))
	require.NoError(t, ns.ScheduleReminder(ctx, "appt-1", "salon-1", "+55119", slots))

	var count int
	require.NoError(t, db.sql.QueryRow("SELECT COUNT(*) FROM notifications").Scan(&count))
	assert.Equal(t, 1, count)
}
