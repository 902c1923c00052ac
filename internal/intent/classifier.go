// Package intent maps normalized customer text to a closed set of intents.
package intent

import (
	"strings"

	"github.com/rodrigiego-coder/beauty-manager/internal/domain"
)

// greetingTokens are messages that are *only* a greeting. A greeting with
// trailing content is classified by the rest of the message instead.
var greetingTokens = map[string]struct{}{
	"oi": {}, "ola": {}, "oie": {}, "opa": {}, "hey": {}, "alo": {},
	"bom dia": {}, "boa tarde": {}, "boa noite": {}, "tudo bem": {},
	"tudo bem?": {}, "oi tudo bem": {}, "ola tudo bem": {},
}

// confirmTokens and declineTokens detect booking confirmation answers.
var confirmTokens = []string{
	"sim", "pode ser", "confirmo", "confirmar", "perfeito", "fechado",
	"combinado", "isso mesmo", "pode confirmar", "ok", "claro", "aceito",
}

var declineTokens = []string{
	"nao", "nao pode", "nao posso", "nao quero", "cancela", "deixa pra la",
	"melhor nao", "nao vai dar", "outro horario", "outro dia",
}

// Keyword sets per intent, tested via whole-message keyword presence.
var (
	rescheduleKeywords = []string{"remarcar", "reagendar", "mudar o horario", "trocar o horario", "adiar"}
	cancelKeywords     = []string{"cancelar", "desmarcar", "cancelamento"}
	scheduleKeywords   = []string{"agendar", "marcar", "agendamento", "horario para", "quero marcar", "tem horario", "tem vaga", "encaixe"}
	priceKeywords      = []string{"quanto custa", "preco", "valor", "quanto fica", "quanto sai", "quanto e"}
	productKeywords    = []string{"produto", "shampoo", "condicionador", "mascara capilar", "pomada", "vende"}
	serviceKeywords    = []string{"escova", "corte", "manicure", "pedicure", "progressiva", "luzes", "coloracao", "hidratacao", "sobrancelha", "depilacao"}
	hoursKeywords      = []string{"que horas abre", "que horas fecha", "horario de funcionamento", "abre que horas", "fecha que horas", "abre hoje", "abre amanha", "funciona"}
	listKeywords       = []string{"quais servicos", "que servicos", "lista de servicos", "o que voces fazem", "servicos disponiveis", "cardapio"}
)

// Classify maps normalized text to an Intent. It is total and side-effect
// free: every input yields a value, defaulting to IntentGeneral. Control
// commands are handled upstream and never reach the classifier.
func Classify(normalized string) domain.Intent {
	if normalized == "" {
		return domain.IntentGeneral
	}

	if _, ok := greetingTokens[strings.TrimRight(normalized, "!?.")]; ok {
		return domain.IntentGreeting
	}

	if isExactAny(normalized, confirmTokens) {
		return domain.IntentAppointmentConfirm
	}
	if isExactAny(normalized, declineTokens) {
		return domain.IntentAppointmentDecline
	}

	// Reschedule and cancel outrank schedule: "quero remarcar" mentions no
	// scheduling keyword, but "remarcar o agendamento" mentions both.
	switch {
	case containsAny(normalized, rescheduleKeywords):
		return domain.IntentReschedule
	case containsAny(normalized, cancelKeywords):
		return domain.IntentCancel
	case containsAny(normalized, scheduleKeywords):
		return domain.IntentSchedule
	case containsAny(normalized, listKeywords):
		return domain.IntentListServices
	case containsAny(normalized, priceKeywords):
		return domain.IntentPriceInfo
	case containsAny(normalized, hoursKeywords):
		return domain.IntentHoursInfo
	case containsAny(normalized, productKeywords):
		return domain.IntentProductInfo
	case containsAny(normalized, serviceKeywords):
		return domain.IntentServiceInfo
	}

	return domain.IntentGeneral
}

// IsConfirmation reports whether the text confirms, declines, or neither.
// Used inside the scheduling flow where "sim"/"não" carry meaning that the
// general classifier would not see in longer sentences.
func IsConfirmation(normalized string) (confirm bool, decline bool) {
	if isExactAny(normalized, confirmTokens) || containsAny(normalized, []string{"pode confirmar", "confirma sim", "isso mesmo"}) {
		return true, false
	}
	if isExactAny(normalized, declineTokens) || strings.HasPrefix(normalized, "nao ") {
		return false, true
	}
	return false, false
}

func isExactAny(s string, tokens []string) bool {
	trimmed := strings.TrimRight(s, "!?. ")
	for _, t := range tokens {
		if trimmed == t {
			return true
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
