package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rodrigiego-coder/beauty-manager/internal/domain"
	"github.com/rodrigiego-coder/beauty-manager/internal/textnorm"
)

func classify(raw string) domain.Intent {
	return Classify(textnorm.Normalize(raw))
}

func TestClassify_PureGreeting(t *testing.T) {
	assert.Equal(t, domain.IntentGreeting, classify("Oi"))
	assert.Equal(t, domain.IntentGreeting, classify("bom dia!"))
	assert.Equal(t, domain.IntentGreeting, classify("Boa tarde"))
}

func TestClassify_GreetingWithContentIsNotGreeting(t *testing.T) {
	// Pure-greeting check requires the message to be only a greeting token.
	assert.Equal(t, domain.IntentSchedule, classify("oi, quero agendar um horário"))
}

func TestClassify_Schedule(t *testing.T) {
	assert.Equal(t, domain.IntentSchedule, classify("quero marcar um horário"))
	assert.Equal(t, domain.IntentSchedule, classify("tem vaga sábado?"))
}

func TestClassify_RescheduleOutranksSchedule(t *testing.T) {
	assert.Equal(t, domain.IntentReschedule, classify("preciso remarcar meu agendamento"))
}

func TestClassify_Cancel(t *testing.T) {
	assert.Equal(t, domain.IntentCancel, classify("quero cancelar o horário de amanhã"))
}

func TestClassify_ConfirmDecline(t *testing.T) {
	assert.Equal(t, domain.IntentAppointmentConfirm, classify("sim"))
	assert.Equal(t, domain.IntentAppointmentConfirm, classify("pode ser"))
	assert.Equal(t, domain.IntentAppointmentDecline, classify("não"))
	assert.Equal(t, domain.IntentAppointmentDecline, classify("outro horário"))
}

func TestClassify_PriceInfo(t *testing.T) {
	assert.Equal(t, domain.IntentPriceInfo, classify("quanto custa a progressiva?"))
}

func TestClassify_ListServices(t *testing.T) {
	assert.Equal(t, domain.IntentListServices, classify("quais serviços vocês oferecem?"))
}

func TestClassify_HoursInfo(t *testing.T) {
	assert.Equal(t, domain.IntentHoursInfo, classify("que horas abre no sábado?"))
}

func TestClassify_ProductInfo(t *testing.T) {
	assert.Equal(t, domain.IntentProductInfo, classify("vocês têm shampoo profissional?"))
}

func TestClassify_ServiceInfo(t *testing.T) {
	assert.Equal(t, domain.IntentServiceInfo, classify("a escova de vocês é boa?"))
}

func TestClassify_DefaultGeneral(t *testing.T) {
	assert.Equal(t, domain.IntentGeneral, classify("me conta uma novidade"))
	assert.Equal(t, domain.IntentGeneral, classify(""))
}

func TestClassify_Total(t *testing.T) {
	// Classification always returns a value, whatever the input.
	inputs := []string{"", "????", "asdfghjkl", "1234567890", "🙂🙂🙂"}
	for _, in := range inputs {
		got := classify(in)
		assert.NotEmpty(t, got, "input %q", in)
	}
}

func TestIsConfirmation(t *testing.T) {
	c, d := IsConfirmation("sim")
	assert.True(t, c)
	assert.False(t, d)

	c, d = IsConfirmation("nao vai dar hoje")
	assert.False(t, c)
	assert.True(t, d)

	c, d = IsConfirmation("talvez mais tarde")
	assert.False(t, c)
	assert.False(t, d)
}
