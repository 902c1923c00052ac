package composer

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigiego-coder/beauty-manager/internal/domain"
	"github.com/rodrigiego-coder/beauty-manager/internal/logging"
)

type memContacts struct {
	mu       sync.Mutex
	contacts map[string]domain.Contact
}

func newMemContacts() *memContacts {
	return &memContacts{contacts: make(map[string]domain.Contact)}
}

func (m *memContacts) Get(_ context.Context, salonID, phone string) (domain.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[salonID+":"+phone]
	if !ok {
		// Match SQLiteContactStore.Get: a miss returns a zero-valued
		// contact with the key set.
		return domain.Contact{SalonID: salonID, Phone: phone}, nil
	}
	return c, nil
}

func (m *memContacts) Upsert(_ context.Context, c domain.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contacts[c.SalonID+":"+c.Phone] = c
	return nil
}

var key = domain.SessionKey{SalonID: "salon-1", Phone: "+5511999990000"}

func testComposer(contacts domain.ContactStore, hour int) *Composer {
	c := New(contacts, "Studio Glow", 0, time.UTC, logging.New(nil, "silent"))
	c.now = func() time.Time {
		return time.Date(2026, 8, 26, hour, 0, 0, 0, time.UTC)
	}
	return c
}

func TestCompose_FirstContactGetsGreetingAndIntro(t *testing.T) {
	contacts := newMemContacts()
	c := testComposer(contacts, 10)

	out := c.Compose(context.Background(), key, "", domain.IntentGeneral, "Temos horários livres.")
	assert.True(t, strings.HasPrefix(out, "Bom dia!"), "got %q", out)
	assert.Contains(t, out, "assistente virtual do Studio Glow")
	assert.Contains(t, out, "Temos horários livres.")
	assert.Contains(t, out, "como você se chama?")
}

func TestCompose_GreetingDedupWithinWindow(t *testing.T) {
	contacts := newMemContacts()
	c := testComposer(contacts, 10)
	ctx := context.Background()

	first := c.Compose(ctx, key, "Maria", domain.IntentGeneral, "Oi!")
	require.Contains(t, first, "assistente virtual")

	second := c.Compose(ctx, key, "Maria", domain.IntentGeneral, "Claro, posso ajudar.")
	assert.NotContains(t, second, "assistente virtual", "introduction must not repeat inside the window")
	assert.NotContains(t, second, "Bom dia")
	assert.Equal(t, "Claro, posso ajudar.", second)
}

func TestCompose_GreetingReturnsAfterWindow(t *testing.T) {
	contacts := newMemContacts()
	c := testComposer(contacts, 10)
	ctx := context.Background()

	c.Compose(ctx, key, "Maria", domain.IntentGeneral, "Oi!")

	// Move the clock past the greeting window.
	c.now = func() time.Time {
		return time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	}
	out := c.Compose(ctx, key, "Maria", domain.IntentGeneral, "Bem-vinda de volta.")
	assert.Contains(t, out, "Bom dia, Maria!")
}

func TestCompose_ConfiguredWindowShortensDedup(t *testing.T) {
	contacts := newMemContacts()
	c := New(contacts, "Studio Glow", time.Hour, time.UTC, logging.New(nil, "silent"))
	c.now = func() time.Time {
		return time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	}
	ctx := context.Background()

	c.Compose(ctx, key, "Maria", domain.IntentGeneral, "Oi!")

	// Thirty minutes later is still inside the one-hour window.
	c.now = func() time.Time {
		return time.Date(2026, 8, 26, 10, 30, 0, 0, time.UTC)
	}
	inside := c.Compose(ctx, key, "Maria", domain.IntentGeneral, "Claro.")
	assert.Equal(t, "Claro.", inside)

	// Two hours later the configured window has lapsed; the default
	// eight-hour window would still be suppressing the greeting here.
	c.now = func() time.Time {
		return time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	}
	outside := c.Compose(ctx, key, "Maria", domain.IntentGeneral, "Oi de novo.")
	assert.Contains(t, outside, "Bom dia, Maria!")
}

func TestCompose_NonPositiveWindowUsesDefault(t *testing.T) {
	c := New(newMemContacts(), "Studio Glow", -1, time.UTC, logging.New(nil, "silent"))
	assert.Equal(t, DefaultGreetingWindow, c.greetingWindow)
}

func TestCompose_TimeOfDay(t *testing.T) {
	cases := []struct {
		hour int
		want string
	}{
		{9, "Bom dia"},
		{14, "Boa tarde"},
		{20, "Boa noite"},
		{2, "Boa noite"},
	}
	for _, tc := range cases {
		c := testComposer(newMemContacts(), tc.hour)
		out := c.Compose(context.Background(), key, "", domain.IntentGeneral, "ok")
		assert.True(t, strings.HasPrefix(out, tc.want), "hour %d: got %q", tc.hour, out)
	}
}

func TestCompose_ProductIntentGetsCTA(t *testing.T) {
	c := testComposer(newMemContacts(), 10)

	out := c.Compose(context.Background(), key, "Maria", domain.IntentProductInfo, "Temos esse shampoo sim.")
	assert.Contains(t, out, "reservado pra você retirar")
}

func TestCompose_KnownNameIsNotAskedAgain(t *testing.T) {
	contacts := newMemContacts()
	c := testComposer(contacts, 10)

	out := c.Compose(context.Background(), key, "Maria Silva", domain.IntentGeneral, "Oi!")
	assert.NotContains(t, out, "como você se chama?")
	assert.Contains(t, out, "Bom dia, Maria!")
}

func TestCompose_UpsertsContact(t *testing.T) {
	contacts := newMemContacts()
	c := testComposer(contacts, 10)

	c.Compose(context.Background(), key, "Maria", domain.IntentGeneral, "Oi!")

	saved, err := contacts.Get(context.Background(), key.SalonID, key.Phone)
	require.NoError(t, err)
	assert.Equal(t, "Maria", saved.Name)
	assert.False(t, saved.LastGreetedAt.IsZero())
	assert.False(t, saved.LastSeenAt.IsZero())
}

func TestCompose_BaseTextNeverAltered(t *testing.T) {
	c := testComposer(newMemContacts(), 10)
	base := "O valor da Escova Progressiva é R$ 150,00."

	out := c.Compose(context.Background(), key, "Maria", domain.IntentPriceInfo, base)
	assert.Contains(t, out, base, "composition must only wrap, never rewrite")
}
