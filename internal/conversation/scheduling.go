package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rodrigiego-coder/beauty-manager/internal/domain"
	"github.com/rodrigiego-coder/beauty-manager/internal/intent"
	"github.com/rodrigiego-coder/beauty-manager/internal/lexicon"
	"github.com/rodrigiego-coder/beauty-manager/internal/logging"
	"github.com/rodrigiego-coder/beauty-manager/internal/textnorm"
)

// anyProfessionalTokens accept "whoever is free" answers for the
// professional slot.
var anyProfessionalTokens = []string{
	"qualquer", "tanto faz", "qualquer um", "qualquer uma", "quem estiver",
}

// SchedulingSkill walks a customer through service → professional →
// date/time → confirm, filling slots by fuzzy match against the live
// catalog and committing the booking idempotently.
type SchedulingSkill struct {
	catalog  domain.CatalogProvider
	sessions domain.SessionStore
	notifier domain.NotificationScheduler
	lex      *lexicon.Resolver
	now      func() time.Time
	loc      *time.Location
	log      *logging.Logger
}

// NewSchedulingSkill creates the scheduling sub-flow. lex may be nil when
// the salon has no dialect lexicon. The now function is injectable for
// tests; nil means time.Now.
func NewSchedulingSkill(
	catalog domain.CatalogProvider,
	sessions domain.SessionStore,
	notifier domain.NotificationScheduler,
	lex *lexicon.Resolver,
	loc *time.Location,
	now func() time.Time,
	log *logging.Logger,
) *SchedulingSkill {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &SchedulingSkill{
		catalog:  catalog,
		sessions: sessions,
		notifier: notifier,
		lex:      lex,
		now:      now,
		loc:      loc,
		log:      log.Sub("scheduling"),
	}
}

// Name implements Skill.
func (s *SchedulingSkill) Name() domain.Skill { return domain.SkillScheduling }

// Advance implements Skill. It mutates the session in place; the caller
// persists it after the turn.
func (s *SchedulingSkill) Advance(ctx context.Context, sess *domain.Session, turn domain.Turn, it domain.Intent) (Outcome, error) {
	sess.ActiveSkill = domain.SkillScheduling

	switch sess.Step {
	case domain.StepNone:
		return s.start(ctx, sess, turn)
	case domain.StepAwaitingService:
		return s.fillService(ctx, sess, turn)
	case domain.StepAwaitingProfessional:
		return s.fillProfessional(ctx, sess, turn)
	case domain.StepAwaitingDateTime:
		return s.fillDateTime(ctx, sess, turn, it)
	case domain.StepAwaitingConfirm:
		return s.confirm(ctx, sess, turn, it)
	default:
		return Outcome{}, fmt.Errorf("scheduling: unknown step %q", sess.Step)
	}
}

// start handles the first SCHEDULE-intent turn. The opening message often
// already names the service ("quero agendar escova"), so try to fill the
// slot before asking.
func (s *SchedulingSkill) start(ctx context.Context, sess *domain.Session, turn domain.Turn) (Outcome, error) {
	services, err := s.catalog.ActiveServices(ctx, sess.Key.SalonID)
	if err != nil {
		return Outcome{}, fmt.Errorf("loading services: %w", err)
	}

	if svc, ok := s.lookupService(turn.Normalized, services); ok {
		sess.Slots.ServiceID = svc.ID
		sess.Slots.ServiceName = svc.Name
		return s.askProfessional(ctx, sess)
	}

	sess.Step = domain.StepAwaitingService
	return Outcome{
		Reply:    "Claro! Qual serviço você gostaria de agendar? " + serviceMenu(services),
		Handled:  true,
		Progress: true,
	}, nil
}

func (s *SchedulingSkill) fillService(ctx context.Context, sess *domain.Session, turn domain.Turn) (Outcome, error) {
	services, err := s.catalog.ActiveServices(ctx, sess.Key.SalonID)
	if err != nil {
		return Outcome{}, fmt.Errorf("loading services: %w", err)
	}

	svc, ok := s.lookupService(turn.Normalized, services)
	if !ok {
		return s.confused(sess, turn,
			"Desculpe, não encontrei esse serviço. "+serviceMenu(services)), nil
	}

	sess.ConfusionCount = 0
	sess.Slots.ServiceID = svc.ID
	sess.Slots.ServiceName = svc.Name
	return s.askProfessional(ctx, sess)
}

func (s *SchedulingSkill) askProfessional(ctx context.Context, sess *domain.Session) (Outcome, error) {
	pros, err := s.catalog.ActiveProfessionals(ctx, sess.Key.SalonID)
	if err != nil {
		return Outcome{}, fmt.Errorf("loading professionals: %w", err)
	}

	// A single-professional salon has nothing to choose.
	if len(pros) == 1 {
		sess.Slots.ProfessionalID = pros[0].ID
		sess.Slots.ProfessionalName = pros[0].Name
		sess.Step = domain.StepAwaitingDateTime
		return Outcome{
			Reply:    fmt.Sprintf("%s anotado! Para qual dia e horário você gostaria de agendar?", sess.Slots.ServiceName),
			Handled:  true,
			Progress: true,
		}, nil
	}

	sess.Step = domain.StepAwaitingProfessional
	return Outcome{
		Reply: fmt.Sprintf("%s anotado! Com qual profissional você prefere? Temos: %s.",
			sess.Slots.ServiceName, professionalMenu(pros)),
		Handled:  true,
		Progress: true,
	}, nil
}

func (s *SchedulingSkill) fillProfessional(ctx context.Context, sess *domain.Session, turn domain.Turn) (Outcome, error) {
	pros, err := s.catalog.ActiveProfessionals(ctx, sess.Key.SalonID)
	if err != nil {
		return Outcome{}, fmt.Errorf("loading professionals: %w", err)
	}

	pro, ok := matchProfessional(turn.Normalized, pros)
	if !ok {
		return s.confused(sess, turn,
			"Não encontrei esse nome. Temos: "+professionalMenu(pros)+". Com quem você prefere?"), nil
	}

	sess.ConfusionCount = 0
	sess.Slots.ProfessionalID = pro.ID
	sess.Slots.ProfessionalName = pro.Name
	sess.Step = domain.StepAwaitingDateTime
	return Outcome{
		Reply:    fmt.Sprintf("Perfeito, com %s! Para qual dia e horário?", pro.Name),
		Handled:  true,
		Progress: true,
	}, nil
}

func (s *SchedulingSkill) fillDateTime(ctx context.Context, sess *domain.Session, turn domain.Turn, it domain.Intent) (Outcome, error) {
	// "não posso de manhã" classifies as general; IsConfirmation catches
	// the decline the whole-message classifier misses.
	_, declined := intent.IsConfirmation(turn.Normalized)
	if it == domain.IntentAppointmentDecline || declined {
		return s.declined(sess, turn), nil
	}

	now := s.now()
	filled := false
	if sess.Slots.DateISO == "" {
		if date, ok := parseDate(turn.Normalized, now, s.loc); ok {
			sess.Slots.DateISO = date
			filled = true
		}
	}
	if sess.Slots.Time == "" {
		if clock, ok := parseClock(turn.Normalized); ok {
			sess.Slots.Time = clock
			filled = true
		}
	}

	// A turn that filled nothing is an unresolved attempt; a turn that
	// filled one of the two is progress even if the other is still missing.
	if !filled {
		return s.confused(sess, turn,
			"Não consegui entender a data. Pode me dizer o dia e o horário? Por exemplo: \"amanhã às 14h\"."), nil
	}
	sess.ConfusionCount = 0
	switch {
	case sess.Slots.DateISO == "":
		return Outcome{
			Reply:    "E para qual dia seria? Pode ser \"amanhã\", um dia da semana ou uma data como 15/09.",
			Handled:  true,
			Progress: true,
		}, nil
	case sess.Slots.Time == "":
		return Outcome{
			Reply:    "E qual horário fica melhor para você?",
			Handled:  true,
			Progress: true,
		}, nil
	}

	sess.Step = domain.StepAwaitingConfirm
	return Outcome{
		Reply: fmt.Sprintf("Confirmando: %s com %s, dia %s às %s. Posso confirmar?",
			sess.Slots.ServiceName, sess.Slots.ProfessionalName,
			displayDate(sess.Slots.DateISO), sess.Slots.Time),
		Handled:  true,
		Progress: true,
	}, nil
}

func (s *SchedulingSkill) confirm(ctx context.Context, sess *domain.Session, turn domain.Turn, it domain.Intent) (Outcome, error) {
	confirmed, declined := intent.IsConfirmation(turn.Normalized)
	switch {
	case it == domain.IntentAppointmentConfirm || confirmed:
		return s.commit(ctx, sess)

	case it == domain.IntentAppointmentDecline || declined:
		// Turned down the proposed slot: keep service and professional,
		// go back for a new date.
		sess.DeclineCount++
		sess.Slots.LastDeclinedPeriod = mentionedPeriod(turn.Normalized)
		if sess.DeclineCount >= MaxDecline {
			return s.handover(sess, "cliente recusou os horários propostos"), nil
		}
		sess.Slots.DateISO = ""
		sess.Slots.Time = ""
		sess.Step = domain.StepAwaitingDateTime
		return Outcome{
			Reply:    "Sem problemas! Qual outro dia e horário ficam melhores para você?",
			Handled:  true,
			Progress: true,
		}, nil

	default:
		return s.confused(sess, turn,
			fmt.Sprintf("Só para confirmar: %s dia %s às %s. Pode ser? (sim/não)",
				sess.Slots.ServiceName, displayDate(sess.Slots.DateISO), sess.Slots.Time)), nil
	}
}

// commit writes the booking and the idempotency marker in one transaction.
// A replayed confirm observes the marker and repeats the prior answer.
func (s *SchedulingSkill) commit(ctx context.Context, sess *domain.Session) (Outcome, error) {
	appointmentID, err := s.sessions.CommitScheduling(ctx, sess, sess.Slots)
	switch {
	case errors.Is(err, domain.ErrCommitConflict):
		s.log.Info().Str("appointmentId", appointmentID).Msg("replayed commit, returning prior booking")
	case err != nil:
		// The session stays at awaiting_confirm: without the marker a
		// retry must be able to commit again.
		return Outcome{}, fmt.Errorf("committing booking: %w", err)
	}

	if s.notifier != nil {
		if nErr := s.notifier.ScheduleReminder(ctx, appointmentID, sess.Key.SalonID, sess.Key.Phone, sess.Slots); nErr != nil {
			// Reminder scheduling is retryable and must not fail the booking.
			s.log.Warn().Err(nErr).Str("appointmentId", appointmentID).Msg("scheduling reminder failed")
		}
	}

	sess.Step = domain.StepNone
	sess.ActiveSkill = domain.SkillNone
	return Outcome{
		Reply: fmt.Sprintf("Prontinho! Seu horário de %s com %s está confirmado para %s às %s. Até lá! ✨",
			sess.Slots.ServiceName, sess.Slots.ProfessionalName,
			displayDate(sess.Slots.DateISO), sess.Slots.Time),
		Handled:       true,
		Progress:      true,
		Booked:        true,
		AppointmentID: appointmentID,
	}, nil
}

// confused counts an unresolved slot-fill attempt and re-asks, escalating
// once the limit is reached.
func (s *SchedulingSkill) confused(sess *domain.Session, turn domain.Turn, retry string) Outcome {
	sess.ConfusionCount++
	if sess.ConfusionCount >= MaxConfusion {
		return s.handover(sess, "cliente não conseguiu concluir o agendamento: \""+turn.Text+"\"")
	}
	return Outcome{Reply: retry, Handled: true}
}

func (s *SchedulingSkill) declined(sess *domain.Session, turn domain.Turn) Outcome {
	sess.DeclineCount++
	sess.Slots.LastDeclinedPeriod = mentionedPeriod(turn.Normalized)
	if sess.DeclineCount >= MaxDecline {
		return s.handover(sess, "cliente recusou os horários propostos")
	}
	return Outcome{
		Reply:    "Tudo bem! Me diga outro dia ou período que fique melhor para você.",
		Handled:  true,
		Progress: true,
	}
}

func (s *SchedulingSkill) handover(sess *domain.Session, reason string) Outcome {
	summary := reason
	if !sess.Slots.Empty() {
		summary += " | " + slotSummary(sess.Slots)
	}
	sess.HandoverSummary = summary
	sess.HandoverAt = s.now()
	sess.HumanMode = true
	sess.Step = domain.StepNone
	sess.ActiveSkill = domain.SkillNone
	s.log.Info().Str("summary", summary).Msg("handing conversation to a human")
	return Outcome{
		Reply:      "Vou te passar para alguém da nossa equipe continuar o atendimento, um instante! 💕",
		Handled:    true,
		Progress:   true,
		HandedOver: true,
	}
}

// lookupService resolves salon-dialect aliases first ("progressiva" →
// "Escova Progressiva"), then falls back to fuzzy matching against the
// catalog. Ambiguous lexicon entries are never assumed; the caller ends
// up asking a clarifying question instead.
func (s *SchedulingSkill) lookupService(normalized string, services []domain.Service) (domain.Service, bool) {
	if s.lex != nil {
		if m, ok := s.lex.Resolve(normalized); ok && !m.Entry.Ambiguous && m.Entry.EntityType == lexicon.EntityService {
			canonical := textnorm.Normalize(m.Entry.CanonicalName)
			for _, svc := range services {
				if textnorm.Normalize(svc.Name) == canonical {
					return svc, true
				}
			}
		}
	}
	return matchService(normalized, services)
}

func matchService(normalized string, services []domain.Service) (domain.Service, bool) {
	names := make([]string, len(services))
	for i, svc := range services {
		names[i] = textnorm.Normalize(svc.Name)
	}
	best, _, ok := textnorm.BestMatch(normalized, names, textnorm.DefaultConfidenceFloor)
	if !ok {
		// Containment handles "quero agendar escova progressiva por favor",
		// where the extra words drag the whole-message Dice score down.
		for i, name := range names {
			if name != "" && strings.Contains(normalized, name) {
				return services[i], true
			}
		}
		return domain.Service{}, false
	}
	for i, name := range names {
		if name == best {
			return services[i], true
		}
	}
	return domain.Service{}, false
}

func matchProfessional(normalized string, pros []domain.Professional) (domain.Professional, bool) {
	for _, token := range anyProfessionalTokens {
		if strings.Contains(normalized, token) {
			if len(pros) > 0 {
				return pros[0], true
			}
			return domain.Professional{}, false
		}
	}

	names := make([]string, len(pros))
	for i, p := range pros {
		names[i] = textnorm.Normalize(p.Name)
	}
	best, _, ok := textnorm.BestMatch(normalized, names, textnorm.DefaultConfidenceFloor)
	if !ok {
		for i, name := range names {
			if name != "" && strings.Contains(normalized, name) {
				return pros[i], true
			}
		}
		return domain.Professional{}, false
	}
	for i, name := range names {
		if name == best {
			return pros[i], true
		}
	}
	return domain.Professional{}, false
}

func serviceMenu(services []domain.Service) string {
	if len(services) == 0 {
		return "No momento estou sem a lista de serviços, mas já te respondo!"
	}
	names := make([]string, len(services))
	for i, svc := range services {
		names[i] = svc.Name
	}
	return "Temos: " + strings.Join(names, ", ") + "."
}

func professionalMenu(pros []domain.Professional) string {
	names := make([]string, len(pros))
	for i, p := range pros {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}

func slotSummary(slots domain.SchedulingSlots) string {
	var parts []string
	if slots.ServiceName != "" {
		parts = append(parts, "serviço: "+slots.ServiceName)
	}
	if slots.ProfessionalName != "" {
		parts = append(parts, "profissional: "+slots.ProfessionalName)
	}
	if slots.DateISO != "" {
		parts = append(parts, "data: "+slots.DateISO)
	}
	if slots.Time != "" {
		parts = append(parts, "horário: "+slots.Time)
	}
	if slots.LastDeclinedPeriod != "" {
		parts = append(parts, "recusou período: "+slots.LastDeclinedPeriod)
	}
	return strings.Join(parts, ", ")
}

// displayDate renders YYYY-MM-DD as dd/mm for customer-facing text.
func displayDate(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("02/01")
}
