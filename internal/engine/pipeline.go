// Package engine orchestrates the per-message pipeline: dedup, control
// commands, compliance layers, debounce merging, deterministic resolvers,
// the conversation state machine, generation fallback and delivery.
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rodrigiego-coder/beauty-manager/internal/buffer"
	"github.com/rodrigiego-coder/beauty-manager/internal/command"
	"github.com/rodrigiego-coder/beauty-manager/internal/compliance"
	"github.com/rodrigiego-coder/beauty-manager/internal/composer"
	"github.com/rodrigiego-coder/beauty-manager/internal/conversation"
	"github.com/rodrigiego-coder/beauty-manager/internal/domain"
	"github.com/rodrigiego-coder/beauty-manager/internal/genai"
	"github.com/rodrigiego-coder/beauty-manager/internal/intent"
	"github.com/rodrigiego-coder/beauty-manager/internal/logging"
	"github.com/rodrigiego-coder/beauty-manager/internal/resolver"
	"github.com/rodrigiego-coder/beauty-manager/internal/textnorm"
)

// historyLimit bounds how much conversation history is fetched for the
// generation prompt; the adapter trims further.
const historyLimit = 12

// Deps are the engine's collaborators.
type Deps struct {
	Machine   *conversation.Machine
	Buffer    buffer.Store
	Window    time.Duration
	Filter    *compliance.Filter
	Catalog   domain.CatalogProvider
	Genai     *genai.Adapter
	Composer  *composer.Composer
	Outbound  domain.OutboundGateway
	Messages  domain.MessageLog
	Dates     *resolver.DateResolver
	Audit     domain.AuditSink
	Locker    SessionLocker
	Metrics   *Metrics
	SalonName string
	Log       *logging.Logger
}

// Engine runs one inbound event through the whole pipeline.
type Engine struct {
	deps Deps
	log  *logging.Logger
}

// New creates the pipeline engine.
func New(deps Deps) *Engine {
	if deps.Window <= 0 {
		deps.Window = buffer.DefaultWindow
	}
	if deps.Locker == nil {
		deps.Locker = NoopLocker{}
	}
	return &Engine{deps: deps, log: deps.Log.Sub("engine")}
}

// HandleInbound processes one gateway event. Redelivered message IDs are
// no-ops; fragments inside a debounce window return early and are merged
// into the turn owned by the fragment that opened the window.
func (e *Engine) HandleInbound(ctx context.Context, ev domain.InboundEvent) error {
	if !ev.Valid() {
		return domain.ErrMalformedEvent
	}
	key := domain.SessionKey{SalonID: ev.SalonID, Phone: ev.Phone}
	log := e.log.Session(ev.SalonID, ev.Phone)

	seen, err := e.deps.Messages.Seen(ctx, key, ev.MessageID)
	if err != nil {
		return fmt.Errorf("checking message dedup: %w", err)
	}
	if seen {
		log.Debug().Str("messageId", ev.MessageID).Msg("duplicate delivery ignored")
		e.deps.Metrics.MessagesTotal.WithLabelValues(outcomeDuplicate).Inc()
		return nil
	}

	// Control tokens bypass the conversational pipeline entirely.
	if cmd := command.Detect(ev.Text); cmd != command.None {
		e.deps.Metrics.MessagesTotal.WithLabelValues(outcomeCommand).Inc()
		return e.handleCommand(ctx, key, cmd, log)
	}

	first, err := e.deps.Buffer.Push(ctx, key, buffer.Fragment{
		MessageID: ev.MessageID,
		Text:      ev.Text,
		Name:      ev.Name,
		At:        ev.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("buffering fragment: %w", err)
	}
	if !first {
		// A window is already open; its owner will drain this fragment.
		e.deps.Metrics.MessagesTotal.WithLabelValues(outcomeBuffered).Inc()
		return nil
	}

	if err := sleepCtx(ctx, e.deps.Window); err != nil {
		return err
	}

	fragments, err := e.deps.Buffer.Drain(ctx, key)
	if err != nil {
		return fmt.Errorf("draining buffer: %w", err)
	}
	if len(fragments) == 0 {
		return nil
	}
	turn := buffer.Merge(key, fragments)
	turn.Normalized = textnorm.Normalize(turn.Text)

	release, err := e.deps.Locker.Acquire(ctx, key)
	if err != nil {
		return fmt.Errorf("locking session: %w", err)
	}
	defer func() {
		if rErr := release(context.WithoutCancel(ctx)); rErr != nil {
			log.Warn().Err(rErr).Msg("releasing session lock failed")
		}
	}()

	return e.processTurn(ctx, key, turn, log)
}

// handleCommand flips the human/AI pause flag. The token is never echoed
// or forwarded as conversational content; each flip leaves an audit row.
func (e *Engine) handleCommand(ctx context.Context, key domain.SessionKey, cmd command.Command, log *logging.Logger) error {
	sess, err := e.deps.Machine.Load(ctx, key)
	if err != nil {
		return err
	}
	switch cmd {
	case command.HumanTakeover:
		sess.HumanMode = true
		log.Info().Msg("assistant paused by control token")
	case command.AIResume:
		sess.HumanMode = false
		log.Info().Msg("assistant resumed by control token")
	}
	if err := e.deps.Machine.Save(ctx, sess); err != nil {
		return err
	}

	hash := sha256.Sum256([]byte(cmd))
	rec := domain.AuditRecord{
		ID:          uuid.New().String(),
		SalonID:     key.SalonID,
		SessionID:   sess.ID,
		Layer:       string(compliance.LayerControl),
		Category:    domain.CategoryCustom,
		Severity:    domain.SeverityLow,
		Rule:        string(cmd),
		ContentHash: hex.EncodeToString(hash[:]),
		CreatedAt:   time.Now(),
	}
	if err := e.deps.Audit.Append(ctx, rec); err != nil {
		// The flip already happened; a lost audit row must not undo it.
		log.Error().Err(err).Str("command", string(cmd)).Msg("failed to audit control token")
	}
	return nil
}

func (e *Engine) processTurn(ctx context.Context, key domain.SessionKey, turn domain.Turn, log *logging.Logger) error {
	start := time.Now()
	defer func() {
		e.deps.Metrics.TurnDuration.Observe(time.Since(start).Seconds())
	}()

	sess, err := e.deps.Machine.Load(ctx, key)
	if err != nil {
		return err
	}

	if err := e.deps.Messages.Append(ctx, sess.ID, domain.LoggedMessage{Role: "user", Content: turn.Text}); err != nil {
		log.Error().Err(err).Msg("persisting customer turn failed")
	}

	// A paused conversation belongs to a human attendant; the assistant
	// stays silent until #ia.
	if sess.HumanMode {
		e.deps.Metrics.MessagesTotal.WithLabelValues(outcomePaused).Inc()
		return nil
	}

	if res := e.deps.Filter.CheckInbound(ctx, key.SalonID, sess.ID, turn.Text); !res.Passed {
		e.deps.Metrics.BlockedTotal.WithLabelValues(string(compliance.LayerInbound)).Inc()
		e.deps.Metrics.MessagesTotal.WithLabelValues(outcomeBlocked).Inc()
		return e.deliver(ctx, key, sess.ID, compliance.SafeReply, log)
	}

	it := intent.Classify(turn.Normalized)
	baseText, err := e.respond(ctx, key, sess, turn, it, log)
	if err != nil {
		return err
	}

	composed := e.deps.Composer.Compose(ctx, key, turn.Name, it, baseText)

	final := composed
	if res := e.deps.Filter.CheckOutbound(ctx, key.SalonID, sess.ID, composed); !res.Passed {
		e.deps.Metrics.BlockedTotal.WithLabelValues(string(compliance.LayerOutbound)).Inc()
		final = compliance.SafeReply
	} else if res.SanitizedContent != "" {
		final = res.SanitizedContent
	}

	e.deps.Metrics.MessagesTotal.WithLabelValues(outcomeReplied).Inc()
	return e.deliver(ctx, key, sess.ID, final, log)
}

// respond produces the reply body: deterministic resolvers first, then the
// state machine, then generation as the last resort.
func (e *Engine) respond(ctx context.Context, key domain.SessionKey, sess *domain.Session, turn domain.Turn, it domain.Intent, log *logging.Logger) (string, error) {
	// Mid-flow turns belong to the active skill; "amanhã" while scheduling
	// is a slot answer, not a date question.
	if sess.ActiveSkill == domain.SkillNone {
		if text, ok := e.resolve(ctx, key.SalonID, turn.Normalized, it); ok {
			return text, nil
		}
	}

	out, err := e.deps.Machine.Advance(ctx, sess, turn, it)
	if err != nil {
		return "", err
	}
	if out.HandedOver {
		e.deps.Metrics.HandoversTotal.Inc()
	}
	if out.Booked {
		e.deps.Metrics.BookingsTotal.Inc()
	}
	if out.Handled {
		return out.Reply, nil
	}

	return e.generate(ctx, key, sess, turn, log)
}

// resolve answers closed question classes without the generation service.
func (e *Engine) resolve(ctx context.Context, salonID, normalized string, it domain.Intent) (string, bool) {
	if ans := e.deps.Dates.Resolve(normalized); ans.Matched {
		return ans.Text, true
	}

	switch it {
	case domain.IntentGreeting:
		// A bare "oi" has a fixed answer; spending a generation call on it
		// would only risk an off-script reply. The composer adds the
		// time-of-day greeting and introduction when they are due.
		return "Como posso te ajudar hoje? Posso informar preços, serviços ou agendar um horário. 😊", true

	case domain.IntentPriceInfo:
		services, err := e.deps.Catalog.ActiveServices(ctx, salonID)
		if err != nil {
			e.log.Error().Err(err).Msg("loading services for price answer")
			return "", false
		}
		if ans := resolver.ResolvePrice(normalized, services); ans.Matched {
			return ans.Text, true
		}

	case domain.IntentListServices:
		services, err := e.deps.Catalog.ActiveServices(ctx, salonID)
		if err != nil || len(services) == 0 {
			return "", false
		}
		names := make([]string, len(services))
		for i, svc := range services {
			names[i] = svc.Name
		}
		return "Nossos serviços: " + strings.Join(names, ", ") + ". Quer agendar algum?", true

	case domain.IntentHoursInfo:
		hours, err := e.deps.Catalog.Hours(ctx, salonID)
		if err != nil {
			return "", false
		}
		if text := hoursText(hours); text != "" {
			return text, true
		}
	}

	return "", false
}

// generate is the free-form fallback. A degraded generation returns the
// fixed pre-vetted fallback and skips the confidence gate; real output
// goes through layer 2.
func (e *Engine) generate(ctx context.Context, key domain.SessionKey, sess *domain.Session, turn domain.Turn, log *logging.Logger) (string, error) {
	salonCtx := e.salonContext(ctx, key.SalonID)
	history, err := e.deps.Messages.Recent(ctx, sess.ID, historyLimit)
	if err != nil {
		log.Warn().Err(err).Msg("loading history for generation failed")
	}

	t0 := time.Now()
	text, confidence, degraded := e.deps.Genai.Reply(ctx, salonCtx, history, turn.Text)
	e.deps.Metrics.GenerationLatency.Observe(time.Since(t0).Seconds())

	if degraded {
		return text, nil
	}
	if res := e.deps.Filter.CheckGeneration(ctx, key.SalonID, sess.ID, text, confidence); !res.Passed {
		e.deps.Metrics.BlockedTotal.WithLabelValues(string(compliance.LayerGeneration)).Inc()
		return compliance.SafeReply, nil
	}
	return text, nil
}

func (e *Engine) salonContext(ctx context.Context, salonID string) genai.SalonContext {
	sc := genai.SalonContext{SalonName: e.deps.SalonName}
	if services, err := e.deps.Catalog.ActiveServices(ctx, salonID); err == nil {
		sc.Services = services
	}
	if hours, err := e.deps.Catalog.Hours(ctx, salonID); err == nil {
		sc.Hours = hours
	}
	return sc
}

// deliver sends the final text and persists the assistant turn.
func (e *Engine) deliver(ctx context.Context, key domain.SessionKey, sessionID, text string, log *logging.Logger) error {
	messageID, err := e.deps.Outbound.Send(ctx, key.SalonID, key.Phone, text)
	if err != nil {
		return fmt.Errorf("sending reply: %w", err)
	}
	log.Debug().Str("messageId", messageID).Msg("reply delivered")

	if err := e.deps.Messages.Append(ctx, sessionID, domain.LoggedMessage{Role: "assistant", Content: text}); err != nil {
		log.Error().Err(err).Msg("persisting assistant turn failed")
	}
	return nil
}

func hoursText(h domain.BusinessHours) string {
	var parts []string
	if h.Weekdays != "" {
		parts = append(parts, "segunda a sexta "+h.Weekdays)
	}
	if h.Saturday != "" {
		parts = append(parts, "sábado "+h.Saturday)
	}
	if h.Sunday != "" {
		parts = append(parts, "domingo "+h.Sunday)
	}
	if len(parts) == 0 {
		return ""
	}
	return "Nosso horário de funcionamento: " + strings.Join(parts, ", ") + "."
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
