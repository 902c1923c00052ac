package compliance

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/rodrigiego-coder/beauty-manager/internal/domain"
	"github.com/rodrigiego-coder/beauty-manager/internal/logging"
	"github.com/rodrigiego-coder/beauty-manager/internal/textnorm"
)

// Layer identifies which screening pass produced a result.
type Layer string

const (
	LayerInbound    Layer = "inbound"    // pre-processing, on customer text
	LayerGeneration Layer = "generation" // mid-processing, on candidate AI output
	LayerOutbound   Layer = "outbound"   // post-processing, on composed reply
	LayerControl    Layer = "control"    // operator control tokens, outside the pipeline
)

// SafeReply is the fixed reply substituted when a message is blocked. It
// never admits an internal failure or names the violated rule.
const SafeReply = "Desculpe, não consigo ajudar com esse assunto por aqui. " +
	"Posso te ajudar com informações sobre nossos serviços ou agendar um horário. 😊"

// minGenerationConfidence gates layer 2: a low-confidence generation is
// itself a violation and forces the safe templated answer.
const minGenerationConfidence = 0.4

// Filter screens text against the rule table and records every violation
// in the audit sink, regardless of outcome.
type Filter struct {
	rules []Rule
	audit domain.AuditSink
	log   *logging.Logger
	now   func() time.Time
}

// NewFilter creates a compliance filter. audit may not be nil: violations
// must always leave an audit trail.
func NewFilter(rules []Rule, audit domain.AuditSink, log *logging.Logger) *Filter {
	if len(rules) == 0 {
		rules = Rules()
	}
	return &Filter{rules: rules, audit: audit, log: log.Sub("compliance"), now: time.Now}
}

// CheckInbound is layer 1: screens customer text before any processing.
func (f *Filter) CheckInbound(ctx context.Context, salonID, sessionID, text string) domain.FilterResult {
	res := f.screen(text)
	f.record(ctx, LayerInbound, salonID, sessionID, text, res)
	return res
}

// CheckGeneration is layer 2: screens candidate AI output plus its
// confidence score. Low confidence is a violation on its own.
func (f *Filter) CheckGeneration(ctx context.Context, salonID, sessionID, text string, confidence float64) domain.FilterResult {
	res := f.screen(text)
	if confidence < minGenerationConfidence {
		res.Passed = false
		res.RiskLevel = domain.RiskBlocked
		res.Violations = append(res.Violations, domain.Violation{
			Type:           "low_confidence",
			Category:       domain.CategoryCustom,
			Severity:       domain.SeverityHigh,
			MatchedPattern: "generation_confidence_gate",
			Action:         domain.ActionBlock,
		})
	}
	f.record(ctx, LayerGeneration, salonID, sessionID, text, res)
	return res
}

// CheckOutbound is layer 3: final screen of the composed reply with
// best-effort sanitization. A CRITICAL violation that sanitization cannot
// clear blocks the send; the caller substitutes SafeReply and the original
// text is discarded, never sent.
func (f *Filter) CheckOutbound(ctx context.Context, salonID, sessionID, text string) domain.FilterResult {
	res := f.screen(text)
	f.record(ctx, LayerOutbound, salonID, sessionID, text, res)

	needsRedaction := false
	for _, v := range res.Violations {
		if v.Action == domain.ActionSanitize {
			needsRedaction = true
		}
	}
	if needsRedaction {
		if sanitized, changed := Sanitize(text); changed {
			// Re-screen the redacted text; redaction may have cleared it.
			if verify := f.screen(sanitized); verify.Passed {
				return domain.FilterResult{
					Passed:           true,
					RiskLevel:        domain.RiskMedium,
					Violations:       res.Violations,
					SanitizedContent: sanitized,
				}
			}
		}
	}
	if !res.Passed || needsRedaction {
		// Could not clear the violation; the composed text is discarded.
		res.Passed = false
		res.RiskLevel = domain.RiskBlocked
	}
	return res
}

// screen runs the rule table over normalized text, first-match-wins per
// category.
func (f *Filter) screen(text string) domain.FilterResult {
	normalized := textnorm.Normalize(text)
	matched := map[domain.ViolationCategory]bool{}
	var violations []domain.Violation

	for _, rule := range f.rules {
		if matched[rule.Category] {
			continue
		}
		if rule.Pattern.MatchString(normalized) || rule.Pattern.MatchString(text) {
			matched[rule.Category] = true
			violations = append(violations, domain.Violation{
				Type:           rule.Name,
				Category:       rule.Category,
				Severity:       rule.Severity,
				MatchedPattern: rule.Name,
				Action:         rule.Action,
			})
		}
	}

	if len(violations) == 0 {
		return domain.FilterResult{Passed: true, RiskLevel: domain.RiskNone}
	}

	passed := true
	risk := domain.RiskLow
	for _, v := range violations {
		switch v.Severity {
		case domain.SeverityCritical:
			risk = domain.RiskBlocked
		case domain.SeverityHigh:
			if risk != domain.RiskBlocked {
				risk = domain.RiskHigh
			}
		case domain.SeverityMedium:
			if risk == domain.RiskLow {
				risk = domain.RiskMedium
			}
		}
		if v.Action == domain.ActionBlock || v.Severity == domain.SeverityCritical {
			passed = false
		}
	}
	return domain.FilterResult{Passed: passed, RiskLevel: risk, Violations: violations}
}

// record appends one audit row per violation. Only a SHA-256 of the
// offending content is stored, never the raw text.
func (f *Filter) record(ctx context.Context, layer Layer, salonID, sessionID, text string, res domain.FilterResult) {
	if len(res.Violations) == 0 {
		return
	}
	hash := sha256.Sum256([]byte(text))
	contentHash := hex.EncodeToString(hash[:])

	for _, v := range res.Violations {
		rec := domain.AuditRecord{
			ID:          uuid.New().String(),
			SalonID:     salonID,
			SessionID:   sessionID,
			Layer:       string(layer),
			Category:    v.Category,
			Severity:    v.Severity,
			Rule:        v.MatchedPattern,
			ContentHash: contentHash,
			CreatedAt:   f.now(),
		}
		if err := f.audit.Append(ctx, rec); err != nil {
			// Audit failures are operational faults but must not break the
			// customer path.
			f.log.Error().Err(err).Str("rule", v.MatchedPattern).Msg("failed to append audit record")
		}
	}
	f.log.Warn().
		Str("layer", string(layer)).
		Str("salonId", salonID).
		Str("sessionId", sessionID).
		Int("violations", len(res.Violations)).
		Str("risk", string(res.RiskLevel)).
		Msg("compliance violations detected")
}
