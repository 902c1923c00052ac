package domain

import "time"

// ViolationCategory classifies a compliance violation.
type ViolationCategory string

const (
	CategoryRegulatory ViolationCategory = "regulatory"
	CategoryPrivacy    ViolationCategory = "privacy"
	CategoryProfanity  ViolationCategory = "profanity"
	CategoryCustom     ViolationCategory = "custom"
)

// ViolationAction is what the filter does about a matched rule.
type ViolationAction string

const (
	ActionBlock    ViolationAction = "block"
	ActionWarn     ViolationAction = "warn"
	ActionFlag     ViolationAction = "flag"
	ActionSanitize ViolationAction = "sanitize"
)

// Severity orders violations from informational to critical.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// RiskLevel is the aggregate outcome of one filter layer.
type RiskLevel string

const (
	RiskNone    RiskLevel = "none"
	RiskLow     RiskLevel = "low"
	RiskMedium  RiskLevel = "medium"
	RiskHigh    RiskLevel = "high"
	RiskBlocked RiskLevel = "blocked"
)

// Violation is one matched compliance rule. MatchedPattern identifies the
// rule, never the customer's raw text.
type Violation struct {
	Type           string            `json:"type"`
	Category       ViolationCategory `json:"category"`
	Severity       Severity          `json:"severity"`
	MatchedPattern string            `json:"matchedPattern"`
	Action         ViolationAction   `json:"action"`
}

// FilterResult is the structured outcome of one compliance layer.
type FilterResult struct {
	Passed           bool        `json:"passed"`
	RiskLevel        RiskLevel   `json:"riskLevel"`
	Violations       []Violation `json:"violations,omitempty"`
	SanitizedContent string      `json:"sanitizedContent,omitempty"`
}

// AuditRecord is one immutable entry in the compliance audit log. Only a
// hash of the offending content is stored.
type AuditRecord struct {
	ID          string            `json:"id"`
	SalonID     string            `json:"salonId"`
	SessionID   string            `json:"sessionId"`
	Layer       string            `json:"layer"` // "inbound", "generation", "outbound"
	Category    ViolationCategory `json:"category"`
	Severity    Severity          `json:"severity"`
	Rule        string            `json:"rule"`
	ContentHash string            `json:"contentHash"` // sha256 hex
	CreatedAt   time.Time         `json:"createdAt"`
}
