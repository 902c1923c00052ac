package resolver

import (
	"fmt"
	"strings"

	"github.com/rodrigiego-coder/beauty-manager/internal/domain"
	"github.com/rodrigiego-coder/beauty-manager/internal/textnorm"
)

// priceInterrogatives recognize a message as a price question.
var priceInterrogatives = []string{
	"quanto custa",
	"quanto e",
	"qual o preco",
	"qual o valor",
	"qual e o preco",
	"qual e o valor",
	"quanto fica",
	"quanto sai",
	"preco da",
	"preco do",
	"valor da",
	"valor do",
}

// PriceAnswer is the result of a service-price resolution.
type PriceAnswer struct {
	Matched bool
	Found   bool
	Service domain.Service
	Text    string
}

// ResolvePrice answers service-price questions by exact then substring
// match against the salon catalog. It never invents a price: when the
// service isn't in the catalog the answer is non-committal.
func ResolvePrice(normalized string, services []domain.Service) PriceAnswer {
	if !containsAny(normalized, priceInterrogatives) {
		return PriceAnswer{}
	}

	subject := stripInterrogatives(normalized)
	if subject == "" {
		return PriceAnswer{
			Matched: true,
			Text:    "Qual serviço você gostaria de saber o valor? Posso te passar a nossa lista completa.",
		}
	}

	// Exact name first, then substring in either direction.
	for _, svc := range services {
		if textnorm.Normalize(svc.Name) == subject {
			return priceFound(svc)
		}
	}
	for _, svc := range services {
		name := textnorm.Normalize(svc.Name)
		if strings.Contains(subject, name) || strings.Contains(name, subject) {
			return priceFound(svc)
		}
	}

	return PriceAnswer{
		Matched: true,
		Text:    "Não encontrei esse serviço na nossa tabela. Quer que eu te mande a lista de serviços com os valores?",
	}
}

func priceFound(svc domain.Service) PriceAnswer {
	price := strings.Replace(fmt.Sprintf("%.2f", svc.Price), ".", ",", 1)
	return PriceAnswer{
		Matched: true,
		Found:   true,
		Service: svc,
		Text:    fmt.Sprintf("%s custa R$ %s.", svc.Name, price),
	}
}

// stripInterrogatives removes the question scaffolding, leaving the
// service name the customer asked about.
func stripInterrogatives(normalized string) string {
	s := normalized
	for _, q := range priceInterrogatives {
		s = strings.ReplaceAll(s, q, " ")
	}
	for _, filler := range []string{" a ", " o ", " um ", " uma ", " de ", " da ", " do "} {
		s = strings.ReplaceAll(s, filler, " ")
	}
	s = strings.Trim(s, " ?!.")
	return strings.Join(strings.Fields(s), " ")
}
