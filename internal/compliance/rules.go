// Package compliance screens customer text and generated replies against
// regulatory, privacy and profanity rule sets in three layers.
package compliance

import (
	"regexp"

	"github.com/rodrigiego-coder/beauty-manager/internal/domain"
)

// Rule is one forbidden-pattern entry. Rules are evaluated in declaration
// order with first-match-wins per category.
type Rule struct {
	Name     string
	Pattern  *regexp.Regexp
	Category domain.ViolationCategory
	Severity domain.Severity
	Action   domain.ViolationAction
}

// defaultRules is the built-in rule table. Patterns match normalized
// (diacritic-folded, lowercased) text.
var defaultRules = []Rule{
	// Regulatory: treatment claims a salon may not make.
	{
		Name:     "regulatory.cure_claim",
		Pattern:  regexp.MustCompile(`\b(cura|curar|elimina(r)? de vez|acaba(r)? com (a|o)? ?(calvicie|queda|caspa))\b`),
		Category: domain.CategoryRegulatory,
		Severity: domain.SeverityCritical,
		Action:   domain.ActionBlock,
	},
	{
		Name:     "regulatory.guaranteed_result",
		Pattern:  regexp.MustCompile(`\b(resultado )?(100% garantido|garantia total|milagroso|definitivo para sempre)\b`),
		Category: domain.CategoryRegulatory,
		Severity: domain.SeverityCritical,
		Action:   domain.ActionBlock,
	},
	{
		Name:     "regulatory.medical_diagnosis",
		Pattern:  regexp.MustCompile(`\b(diagnostic(o|ar)|dermatite|psoriase|alopecia|micose|remedio para|qual doenca)\b`),
		Category: domain.CategoryRegulatory,
		Severity: domain.SeverityHigh,
		Action:   domain.ActionBlock,
	},
	{
		Name:     "regulatory.therapeutic_promise",
		Pattern:  regexp.MustCompile(`\b(trata(r)? (a )?ansiedade|anti ?depressivo|efeito terapeutico|rejuvenesce 20 anos)\b`),
		Category: domain.CategoryRegulatory,
		Severity: domain.SeverityHigh,
		Action:   domain.ActionBlock,
	},

	// Privacy: personal data that requires consent gating.
	{
		Name:     "privacy.cpf",
		Pattern:  regexp.MustCompile(`\b\d{3}\.?\d{3}\.?\d{3}-?\d{2}\b`),
		Category: domain.CategoryPrivacy,
		Severity: domain.SeverityHigh,
		Action:   domain.ActionSanitize,
	},
	{
		Name:     "privacy.credit_card",
		Pattern:  regexp.MustCompile(`\b\d{4}[ .-]?\d{4}[ .-]?\d{4}[ .-]?\d{4}\b`),
		Category: domain.CategoryPrivacy,
		Severity: domain.SeverityCritical,
		Action:   domain.ActionSanitize,
	},
	{
		Name:     "privacy.email",
		Pattern:  regexp.MustCompile(`\b[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}\b`),
		Category: domain.CategoryPrivacy,
		Severity: domain.SeverityMedium,
		Action:   domain.ActionSanitize,
	},
	{
		Name:     "privacy.health_data",
		Pattern:  regexp.MustCompile(`\b(gravida|gestante|alergia|alergica|hiv|diabetes|quimioterapia)\b`),
		Category: domain.CategoryPrivacy,
		Severity: domain.SeverityMedium,
		Action:   domain.ActionFlag,
	},

	// Profanity and abuse.
	{
		Name:     "profanity.offensive",
		Pattern:  regexp.MustCompile(`\b(merda|porra|caralho|puta|fdp|vai se foder|desgraca(do|da)?)\b`),
		Category: domain.CategoryProfanity,
		Severity: domain.SeverityHigh,
		Action:   domain.ActionBlock,
	},
	{
		Name:     "profanity.obfuscated",
		Pattern:  regexp.MustCompile(`\b(m3rda|p0rra|c4ralho|pu7a|f[\*@]d)\w*`),
		Category: domain.CategoryProfanity,
		Severity: domain.SeverityHigh,
		Action:   domain.ActionBlock,
	},

	// Bypass attempts against the assistant itself.
	{
		Name:     "custom.prompt_injection",
		Pattern:  regexp.MustCompile(`(ignore (as|suas) instrucoes|esqueca (as|suas) regras|finja que|you are now|system prompt)`),
		Category: domain.CategoryCustom,
		Severity: domain.SeverityHigh,
		Action:   domain.ActionBlock,
	},
}

// Rules returns the built-in rule table.
func Rules() []Rule {
	return defaultRules
}
