package domain

import "time"

// SessionKey uniquely identifies a conversation session.
type SessionKey struct {
	SalonID string `json:"salonId"`
	Phone   string `json:"phone"`
}

// String returns the canonical string form of the session key.
func (k SessionKey) String() string {
	return k.SalonID + ":" + k.Phone
}

// Skill identifies a conversational sub-flow.
type Skill string

const (
	SkillNone       Skill = "none"
	SkillScheduling Skill = "scheduling"
)

// Step is the current position inside the scheduling sub-flow.
type Step string

const (
	StepNone                 Step = "none"
	StepAwaitingService      Step = "awaiting_service"
	StepAwaitingProfessional Step = "awaiting_professional"
	StepAwaitingDateTime     Step = "awaiting_datetime"
	StepAwaitingConfirm      Step = "awaiting_confirm"
)

// SchedulingSlots holds the incrementally filled scheduling data.
type SchedulingSlots struct {
	ServiceID          string `json:"serviceId,omitempty"`
	ServiceName        string `json:"serviceName,omitempty"`
	ProfessionalID     string `json:"professionalId,omitempty"`
	ProfessionalName   string `json:"professionalName,omitempty"`
	DateISO            string `json:"dateIso,omitempty"` // YYYY-MM-DD
	Time               string `json:"time,omitempty"`    // HH:MM
	LastDeclinedPeriod string `json:"lastDeclinedPeriod,omitempty"`
}

// Empty reports whether no slot has been filled yet.
func (s SchedulingSlots) Empty() bool {
	return s == SchedulingSlots{}
}

// Session is the per-conversation state record. It is persisted and keyed
// by (salonID, phone). The conversation state machine is its only writer;
// other components receive it read-only and return proposed mutations.
type Session struct {
	ID          string          `json:"id"`
	Key         SessionKey      `json:"key"`
	ActiveSkill Skill           `json:"activeSkill"`
	Step        Step            `json:"step"`
	Slots       SchedulingSlots `json:"slots"`

	ConfusionCount int `json:"confusionCount"`
	DeclineCount   int `json:"declineCount"`

	HumanMode bool `json:"humanMode"`

	TTLExpiresAt time.Time `json:"ttlExpiresAt"`

	// Idempotency markers: written in the same transaction as the booking.
	SchedulingCommittedAt   time.Time `json:"schedulingCommittedAt,omitempty"`
	SchedulingAppointmentID string    `json:"schedulingAppointmentId,omitempty"`

	HandoverSummary string    `json:"handoverSummary,omitempty"`
	HandoverAt      time.Time `json:"handoverAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Expired reports whether the session's idle TTL has elapsed.
func (s *Session) Expired(now time.Time) bool {
	return !s.TTLExpiresAt.IsZero() && now.After(s.TTLExpiresAt)
}

// Committed reports whether this session has already committed a booking.
func (s *Session) Committed() bool {
	return s.SchedulingAppointmentID != ""
}

// HandedOver reports whether the session has been escalated to a human.
func (s *Session) HandedOver() bool {
	return !s.HandoverAt.IsZero()
}

// Reset returns the session to its idle defaults while preserving identity
// and audit fields. Used on TTL expiry; the row itself is never deleted.
func (s *Session) Reset() {
	s.ActiveSkill = SkillNone
	s.Step = StepNone
	s.Slots = SchedulingSlots{}
	s.ConfusionCount = 0
	s.DeclineCount = 0
	s.SchedulingCommittedAt = time.Time{}
	s.SchedulingAppointmentID = ""
	s.HandoverSummary = ""
	s.HandoverAt = time.Time{}
}
