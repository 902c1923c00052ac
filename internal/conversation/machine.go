package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/rodrigiego-coder/beauty-manager/internal/domain"
	"github.com/rodrigiego-coder/beauty-manager/internal/logging"
)

// DefaultSessionTTL is the idle window after which a session silently
// resets to its defaults.
const DefaultSessionTTL = 30 * time.Minute

// Machine owns all Session writes for a turn: TTL expiry, skill dispatch
// and persistence. It is the single writer required by the session model.
type Machine struct {
	sessions domain.SessionStore
	skills   map[domain.Skill]Skill
	ttl      time.Duration
	now      func() time.Time
	log      *logging.Logger
}

// NewMachine creates the state machine with the given skills registered.
func NewMachine(sessions domain.SessionStore, ttl time.Duration, now func() time.Time, log *logging.Logger, skills ...Skill) *Machine {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if now == nil {
		now = time.Now
	}
	byName := make(map[domain.Skill]Skill, len(skills))
	for _, sk := range skills {
		byName[sk.Name()] = sk
	}
	return &Machine{
		sessions: sessions,
		skills:   byName,
		ttl:      ttl,
		now:      now,
		log:      log.Sub("conversation"),
	}
}

// Load fetches the session for the key, applying the silent TTL reset.
func (m *Machine) Load(ctx context.Context, key domain.SessionKey) (*domain.Session, error) {
	sess, err := m.sessions.GetOrCreate(ctx, key, m.ttl)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if sess.Expired(m.now()) {
		m.log.Debug().Str("session", key.String()).Msg("session TTL elapsed, resetting")
		sess.Reset()
	}
	return sess, nil
}

// Advance runs one merged turn through the active skill (or starts one)
// and persists the resulting session. An Outcome with Handled false means
// no skill claimed the turn and the caller should answer via resolvers
// or generation.
func (m *Machine) Advance(ctx context.Context, sess *domain.Session, turn domain.Turn, it domain.Intent) (Outcome, error) {
	out, err := m.advance(ctx, sess, turn, it)
	if err != nil {
		return Outcome{}, err
	}
	if out.Progress {
		sess.TTLExpiresAt = m.now().Add(m.ttl)
	}
	if err := m.sessions.Save(ctx, sess); err != nil {
		return Outcome{}, fmt.Errorf("saving session: %w", err)
	}
	return out, nil
}

func (m *Machine) advance(ctx context.Context, sess *domain.Session, turn domain.Turn, it domain.Intent) (Outcome, error) {
	// Mid-flow turns stay with the active skill regardless of what the
	// classifier thinks: "amanhã" during scheduling is a slot answer,
	// not a new conversation.
	if sess.ActiveSkill != domain.SkillNone {
		sk, ok := m.skills[sess.ActiveSkill]
		if !ok {
			return Outcome{}, fmt.Errorf("no skill registered for %q", sess.ActiveSkill)
		}
		return sk.Advance(ctx, sess, turn, it)
	}

	switch it {
	case domain.IntentSchedule:
		sk, ok := m.skills[domain.SkillScheduling]
		if !ok {
			return Outcome{}, nil
		}
		return sk.Advance(ctx, sess, turn, it)

	case domain.IntentReschedule, domain.IntentCancel:
		// Changing or cancelling an existing booking is handled by the
		// front desk, so these always escalate.
		return m.escalate(sess, it), nil
	}

	return Outcome{}, nil
}

func (m *Machine) escalate(sess *domain.Session, it domain.Intent) Outcome {
	reason := "cliente quer remarcar um horário"
	if it == domain.IntentCancel {
		reason = "cliente quer cancelar um horário"
	}
	sess.HandoverSummary = reason
	sess.HandoverAt = m.now()
	sess.HumanMode = true
	m.log.Info().Str("session", sess.Key.String()).Str("reason", reason).Msg("escalating to front desk")
	return Outcome{
		Reply:      "Claro! Vou te passar para alguém da nossa equipe cuidar disso, um instante! 💕",
		Handled:    true,
		Progress:   true,
		HandedOver: true,
	}
}

// Save persists the session outside an Advance, for callers that mutate
// flags such as humanMode via control tokens.
func (m *Machine) Save(ctx context.Context, sess *domain.Session) error {
	if err := m.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// TTL returns the configured idle window.
func (m *Machine) TTL() time.Duration { return m.ttl }
