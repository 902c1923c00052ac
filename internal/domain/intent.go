package domain

// Intent is the closed set of recognized customer intents. It is derived
// per turn and never persisted.
type Intent string

const (
	IntentGreeting           Intent = "greeting"
	IntentSchedule           Intent = "schedule"
	IntentReschedule         Intent = "reschedule"
	IntentCancel             Intent = "cancel"
	IntentProductInfo        Intent = "product_info"
	IntentServiceInfo        Intent = "service_info"
	IntentListServices       Intent = "list_services"
	IntentPriceInfo          Intent = "price_info"
	IntentHoursInfo          Intent = "hours_info"
	IntentAppointmentConfirm Intent = "appointment_confirm"
	IntentAppointmentDecline Intent = "appointment_decline"
	IntentGeneral            Intent = "general"
)
