package genai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rodrigiego-coder/beauty-manager/internal/domain"
	"github.com/rodrigiego-coder/beauty-manager/internal/logging"
)

// History and prompt bounds keep the generation request small and cheap.
const (
	maxHistoryTurns = 6
	maxTurnChars    = 280
	callTimeout     = 15 * time.Second
)

// FallbackReply is returned whenever the generation service fails or times
// out. It never admits degradation and always offers a concrete next step.
const FallbackReply = "Desculpe, não entendi direitinho. 😅 " +
	"Posso te ajudar a agendar um horário ou tirar dúvidas sobre nossos serviços. O que você prefere?"

// SalonContext is the salon-specific data embedded in the prompt.
type SalonContext struct {
	SalonName string
	Services  []domain.Service
	Hours     domain.BusinessHours
}

// Adapter assembles bounded prompts and shields callers from generation
// failures.
type Adapter struct {
	client Client
	log    *logging.Logger
}

// NewAdapter creates a generation fallback adapter.
func NewAdapter(client Client, log *logging.Logger) *Adapter {
	return &Adapter{client: client, log: log.Sub("genai")}
}

// Reply generates a free-form answer to the customer's text. On any error
// or timeout it returns FallbackReply with zero confidence and degraded
// true; the customer is never told the service failed.
func (a *Adapter) Reply(ctx context.Context, salonCtx SalonContext, history []domain.LoggedMessage, userText string) (text string, confidence float64, degraded bool) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	req := Request{
		System:    buildSystemPrompt(salonCtx),
		Prompt:    truncate(userText, maxTurnChars),
		History:   boundedHistory(history),
		MaxTokens: 300,
	}

	resp, err := a.client.Generate(ctx, req)
	if err != nil {
		a.log.Warn().Err(err).Str("provider", a.client.Name()).Msg("generation unavailable, using fallback")
		return FallbackReply, 0, true
	}
	if strings.TrimSpace(resp.Text) == "" {
		a.log.Warn().Str("provider", a.client.Name()).Msg("empty generation, using fallback")
		return FallbackReply, 0, true
	}
	return resp.Text, resp.Confidence, false
}

// boundedHistory keeps the last maxHistoryTurns turns, each truncated.
func boundedHistory(history []domain.LoggedMessage) []Message {
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}
	msgs := make([]Message, 0, len(history))
	for _, h := range history {
		msgs = append(msgs, Message{Role: h.Role, Content: truncate(h.Content, maxTurnChars)})
	}
	return msgs
}

func buildSystemPrompt(sc SalonContext) string {
	var b strings.Builder
	b.WriteString("Você é a atendente virtual do salão de beleza ")
	if sc.SalonName != "" {
		b.WriteString(sc.SalonName)
	} else {
		b.WriteString("nosso salão")
	}
	b.WriteString(". Responda em português, de forma curta, simpática e objetiva. ")
	b.WriteString("Nunca invente preços nem prometa resultados. ")
	b.WriteString("Se não souber, ofereça agendar um horário.\n")

	if len(sc.Services) > 0 {
		b.WriteString("\nServiços e preços:\n")
		for _, s := range sc.Services {
			fmt.Fprintf(&b, "- %s: R$ %.2f\n", s.Name, s.Price)
		}
	}
	if sc.Hours.Weekdays != "" {
		fmt.Fprintf(&b, "\nHorário de funcionamento: %s", sc.Hours.Weekdays)
		if sc.Hours.Saturday != "" {
			fmt.Fprintf(&b, "; sábado: %s", sc.Hours.Saturday)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
