package enum

type SenderType string

const (
	SenderVIP      SenderType = "vip"
	SenderTeam     SenderType = "team"
	SenderVendor   SenderType = "vendor"
	SenderCustomer SenderType = "customer"
	SenderSpam     SenderType = "spam"
	SenderUnknown  SenderType = "unknown"
)

func (t SenderType) String() string {
	return string(t)
}

type Intent string

const (
	IntentUrgent        Intent = "urgent"
	IntentLegal         Intent = "legal"
	IntentFinance       Intent = "finance"
	IntentRequest       Intent = "request"
	IntentQuestion      Intent = "question"
	IntentMeeting       Intent = "meeting"
	IntentNotification  Intent = "notification"
	IntentComplaint     Intent = "complaint"
	IntentSales         Intent = "sales"
	IntentInformational Intent = "informational"
)

func (t Intent) String() string {
	return string(t)
}

type PriorityLevel string

const (
	PriorityHigh        PriorityLevel = "high"
	PriorityMedium      PriorityLevel = "medium"
	PriorityLow         PriorityLevel = "low"
	PriorityNotRequired PriorityLevel = "not_required"
)

func (t PriorityLevel) String() string {
	return string(t)
}

type Category string

const (
	CategoryAction  Category = "action"
	CategoryFYI     Category = "fyi"
	CategoryWaiting Category = "waiting"
	CategorySpam    Category = "spam"
	CategoryLegal   Category = "legal"
	CategoryFinance Category = "finance"
	CategoryUnknown Category = "unknown"
)

func (t Category) String() string {
	return string(t)
}

type ProcessingStatus string

const (
	StatusPending          ProcessingStatus = "pending"
	StatusProcessing       ProcessingStatus = "processing"
	StatusDraftReady       ProcessingStatus = "draft_ready"
	StatusApprovalRequired ProcessingStatus = "approval_required"
	StatusBlocked          ProcessingStatus = "blocked"
	StatusSkipped          ProcessingStatus = "skipped"
	StatusSent             ProcessingStatus = "sent"
	StatusFailed           ProcessingStatus = "failed"
)

func (t ProcessingStatus) String() string {
	return string(t)
}

// IsTerminal reports whether no further engine stage may run for the status.
func (t ProcessingStatus) IsTerminal() bool {
	switch t {
	case StatusBlocked, StatusSkipped, StatusDraftReady, StatusApprovalRequired, StatusSent, StatusFailed:
		return true
	default:
		return false
	}
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (t Severity) String() string {
	return string(t)
}

// Rank orders severities so callers can compare them.
func (t Severity) Rank() int {
	switch t {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

type FlagType string

const (
	FlagLegalFinanceCritical FlagType = "legal_finance_critical"
	FlagToolLimitation       FlagType = "tool_limitation"
	FlagPIIDetected          FlagType = "pii_detected"
	FlagDomainRestriction    FlagType = "domain_restriction"
	FlagToneViolation        FlagType = "tone_violation"
	FlagReplyAllRisk         FlagType = "reply_all_risk"
)

func (t FlagType) String() string {
	return string(t)
}

type DNDDecision string

const (
	DNDNotApplicable  DNDDecision = "not_applicable"
	DNDDraftAllowed   DNDDecision = "draft_allowed"
	DNDShowWarning    DNDDecision = "show_warning"
	DNDSendingBlocked DNDDecision = "sending_blocked"
)

func (t DNDDecision) String() string {
	return string(t)
}

type OperatingMode string

const (
	ModeFull        OperatingMode = "full"
	ModeDraftOnly   OperatingMode = "draft_only"
	ModeReadOnly    OperatingMode = "read_only"
	ModeUnavailable OperatingMode = "unavailable"
)

func (t OperatingMode) String() string {
	return string(t)
}
