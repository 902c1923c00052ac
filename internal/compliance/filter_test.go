package compliance

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigiego-coder/beauty-manager/internal/domain"
	"github.com/rodrigiego-coder/beauty-manager/internal/logging"
)

type memAudit struct {
	mu   sync.Mutex
	recs []domain.AuditRecord
}

func (m *memAudit) Append(_ context.Context, rec domain.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return nil
}

func testFilter(t *testing.T) (*Filter, *memAudit) {
	t.Helper()
	audit := &memAudit{}
	return NewFilter(nil, audit, logging.New(nil, "silent")), audit
}

func TestCheckInbound_CleanText(t *testing.T) {
	f, audit := testFilter(t)

	res := f.CheckInbound(context.Background(), "salon-1", "sess-1", "quero agendar um corte")
	assert.True(t, res.Passed)
	assert.Equal(t, domain.RiskNone, res.RiskLevel)
	assert.Empty(t, audit.recs)
}

func TestCheckInbound_RegulatoryClaimBlocked(t *testing.T) {
	f, audit := testFilter(t)

	res := f.CheckInbound(context.Background(), "salon-1", "sess-1", "esse tratamento cura a calvície?")
	assert.False(t, res.Passed)
	assert.Equal(t, domain.RiskBlocked, res.RiskLevel)
	require.NotEmpty(t, res.Violations)
	assert.Equal(t, domain.CategoryRegulatory, res.Violations[0].Category)
	assert.NotEmpty(t, audit.recs, "violations must always be audited")
}

func TestCheckInbound_ProfanityBlocked(t *testing.T) {
	f, _ := testFilter(t)

	res := f.CheckInbound(context.Background(), "salon-1", "sess-1", "que merda de atendimento")
	assert.False(t, res.Passed)
}

func TestCheckInbound_ObfuscatedProfanityBlocked(t *testing.T) {
	f, _ := testFilter(t)

	res := f.CheckInbound(context.Background(), "salon-1", "sess-1", "que m3rda")
	assert.False(t, res.Passed)
}

func TestCheckInbound_CustomerOwnDataFlaggedNotBlocked(t *testing.T) {
	f, audit := testFilter(t)

	// A customer volunteering their own email is audited but not rejected.
	res := f.CheckInbound(context.Background(), "salon-1", "sess-1", "meu email é maria@example.com")
	assert.True(t, res.Passed)
	assert.NotEmpty(t, res.Violations)
	assert.NotEmpty(t, audit.recs)
}

func TestCheckGeneration_LowConfidenceIsViolation(t *testing.T) {
	f, _ := testFilter(t)

	res := f.CheckGeneration(context.Background(), "salon-1", "sess-1", "resposta qualquer", 0.1)
	assert.False(t, res.Passed)
	assert.Equal(t, domain.RiskBlocked, res.RiskLevel)

	found := false
	for _, v := range res.Violations {
		if v.Type == "low_confidence" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCheckGeneration_ConfidentCleanOutputPasses(t *testing.T) {
	f, _ := testFilter(t)

	res := f.CheckGeneration(context.Background(), "salon-1", "sess-1", "Temos horários livres amanhã à tarde.", 0.9)
	assert.True(t, res.Passed)
}

func TestCheckOutbound_SanitizesPersonalData(t *testing.T) {
	f, _ := testFilter(t)

	res := f.CheckOutbound(context.Background(), "salon-1", "sess-1", "Seu cadastro: 123.456.789-01, confirmado!")
	require.True(t, res.Passed)
	assert.NotEmpty(t, res.SanitizedContent)
	assert.NotContains(t, res.SanitizedContent, "123.456.789-01")
	assert.Contains(t, res.SanitizedContent, "[documento removido]")
}

func TestCheckOutbound_CriticalUnrecoverableBlocked(t *testing.T) {
	f, _ := testFilter(t)

	res := f.CheckOutbound(context.Background(), "salon-1", "sess-1", "esse produto cura qualquer doença, resultado 100% garantido")
	assert.False(t, res.Passed)
	assert.Equal(t, domain.RiskBlocked, res.RiskLevel)
	assert.Empty(t, res.SanitizedContent)
}

func TestSanitize_RedactsShapes(t *testing.T) {
	out, changed := Sanitize("CPF 529.982.247-25 e cartão 4111 1111 1111 1111")
	assert.True(t, changed)
	assert.NotContains(t, out, "529.982.247-25")
	assert.NotContains(t, out, "4111")
}

func TestSanitize_NoOpOnCleanText(t *testing.T) {
	out, changed := Sanitize("até amanhã!")
	assert.False(t, changed)
	assert.Equal(t, "até amanhã!", out)
}

func TestScreen_FirstMatchWinsPerCategory(t *testing.T) {
	f, _ := testFilter(t)

	// Text matching two regulatory rules yields a single regulatory violation.
	res := f.screen("cura garantida, resultado 100% garantido")
	count := 0
	for _, v := range res.Violations {
		if v.Category == domain.CategoryRegulatory {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
