// Package composer humanizes compliance-cleared replies. Every addition
// comes from a fixed, pre-vetted phrase set, so composed output needs no
// second compliance pass.
package composer

import (
	"context"
	"strings"
	"time"

	"github.com/rodrigiego-coder/beauty-manager/internal/domain"
	"github.com/rodrigiego-coder/beauty-manager/internal/logging"
)

// DefaultGreetingWindow is how long a greeting stays "fresh" for a contact.
const DefaultGreetingWindow = 8 * time.Hour

// Pre-vetted wrapper phrases. The semantic content of the base text is
// never altered; composition only prepends and appends from this set.
const (
	introTemplate = "Eu sou a assistente virtual do %s. "
	askName       = "Pra eu te atender melhor, como você se chama?"
	productCTA    = "Quer que eu já deixe um reservado pra você retirar na próxima visita?"
)

// Composer wraps final reply text with greeting, introduction and CTA, and
// upserts contact info as its one observable side effect.
type Composer struct {
	contacts       domain.ContactStore
	salonName      string
	greetingWindow time.Duration
	loc            *time.Location
	log            *logging.Logger
	now            func() time.Time
}

// New creates a composer. greetingWindow controls how long the greeting
// and introduction are suppressed after a contact was last greeted; zero
// or negative falls back to DefaultGreetingWindow. loc is the salon
// timezone used to pick the time-of-day greeting.
func New(contacts domain.ContactStore, salonName string, greetingWindow time.Duration, loc *time.Location, log *logging.Logger) *Composer {
	if greetingWindow <= 0 {
		greetingWindow = DefaultGreetingWindow
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Composer{
		contacts:       contacts,
		salonName:      salonName,
		greetingWindow: greetingWindow,
		loc:            loc,
		log:            log.Sub("composer"),
		now:            time.Now,
	}
}

// Compose wraps baseText for delivery. It prepends a time-of-day greeting
// and a one-time introduction when the contact has not been greeted inside
// the window, appends a soft CTA for product intents, and asks for the
// customer's name when unknown.
func (c *Composer) Compose(ctx context.Context, key domain.SessionKey, customerName string, it domain.Intent, baseText string) string {
	now := c.now()

	contact, err := c.contacts.Get(ctx, key.SalonID, key.Phone)
	if err != nil {
		// Persistence trouble never blocks the reply; compose without the
		// greeting state.
		c.log.Error().Err(err).Str("phone", key.Phone).Msg("failed to load contact")
		contact = domain.Contact{SalonID: key.SalonID, Phone: key.Phone}
	}

	if customerName != "" && contact.Name == "" {
		contact.Name = customerName
	}

	var b strings.Builder
	greetNow := !contact.GreetedWithin(c.greetingWindow, now)
	if greetNow {
		b.WriteString(c.timeOfDayGreeting(now))
		if contact.Name != "" {
			b.WriteString(", ")
			b.WriteString(firstName(contact.Name))
		}
		b.WriteString("! ")
		if c.salonName != "" {
			b.WriteString(strings.Replace(introTemplate, "%s", c.salonName, 1))
		}
	}

	b.WriteString(baseText)

	if it == domain.IntentProductInfo {
		b.WriteString(" ")
		b.WriteString(productCTA)
	}
	if contact.Name == "" && greetNow {
		b.WriteString(" ")
		b.WriteString(askName)
	}

	if greetNow {
		contact.LastGreetedAt = now
	}
	contact.LastSeenAt = now
	if err := c.contacts.Upsert(ctx, contact); err != nil {
		c.log.Error().Err(err).Str("phone", key.Phone).Msg("failed to upsert contact")
	}

	return b.String()
}

func (c *Composer) timeOfDayGreeting(now time.Time) string {
	switch h := now.In(c.loc).Hour(); {
	case h < 5:
		return "Boa noite"
	case h < 12:
		return "Bom dia"
	case h < 18:
		return "Boa tarde"
	default:
		return "Boa noite"
	}
}

func firstName(full string) string {
	if i := strings.IndexByte(full, ' '); i > 0 {
		return full[:i]
	}
	return full
}
