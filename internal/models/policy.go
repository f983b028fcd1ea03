package models

import (
	"strings"
)

// Policy is the immutable per-run configuration every stage reads.
// Build it once with NewPolicy or DefaultPolicy and never mutate it while a
// batch is running.
type Policy struct {
	VIPEmails      []string `json:"vip_emails" yaml:"vip_emails"`
	VIPDomains     []string `json:"vip_domains" yaml:"vip_domains"`
	TeamDomains    []string `json:"team_domains" yaml:"team_domains"`
	VendorEmails   []string `json:"vendor_emails" yaml:"vendor_emails"`
	AllowedDomains []string `json:"allowed_domains" yaml:"allowed_domains"`
	BlockedDomains []string `json:"blocked_domains" yaml:"blocked_domains"`

	UrgencyKeywords []string `json:"urgency_keywords" yaml:"urgency_keywords"`
	LegalKeywords   []string `json:"legal_keywords" yaml:"legal_keywords"`
	FinanceKeywords []string `json:"finance_keywords" yaml:"finance_keywords"`
	SpamIndicators  []string `json:"spam_indicators" yaml:"spam_indicators"`

	PriorityThreshold int `json:"priority_threshold" yaml:"priority_threshold"`
	MaxEmails         int `json:"max_emails" yaml:"max_emails"`

	DNDMode                    bool `json:"dnd_mode" yaml:"dnd_mode"`
	AutoResponder              bool `json:"auto_responder" yaml:"auto_responder"`
	RequireApprovalForExternal bool `json:"require_approval_for_external" yaml:"require_approval_for_external"`
	EnablePIIDetection         bool `json:"enable_pii_detection" yaml:"enable_pii_detection"`
	EnableDomainRestrictions   bool `json:"enable_domain_restrictions" yaml:"enable_domain_restrictions"`
	EnableToneEnforcement      bool `json:"enable_tone_enforcement" yaml:"enable_tone_enforcement"`
}

const DefaultPriorityThreshold = 70

var (
	DefaultUrgencyKeywords = []string{
		"urgent", "asap", "immediately", "emergency", "critical",
		"deadline", "time-sensitive", "priority", "important",
	}
	DefaultLegalKeywords = []string{
		"contract", "agreement", "legal", "lawsuit", "litigation",
		"attorney", "lawyer", "settlement", "terms and conditions",
	}
	DefaultFinanceKeywords = []string{
		"invoice", "payment", "billing", "purchase order", "po",
		"wire transfer", "bank", "account", "credit", "refund",
	}
	DefaultSpamIndicators = []string{
		"unsubscribe", "click here", "limited time offer",
		"act now", "free", "winner", "congratulations",
	}
)

func DefaultPolicy() Policy {
	return Policy{
		UrgencyKeywords:            copyStrings(DefaultUrgencyKeywords),
		LegalKeywords:              copyStrings(DefaultLegalKeywords),
		FinanceKeywords:            copyStrings(DefaultFinanceKeywords),
		SpamIndicators:             copyStrings(DefaultSpamIndicators),
		PriorityThreshold:          DefaultPriorityThreshold,
		MaxEmails:                  100,
		AutoResponder:              true,
		RequireApprovalForExternal: true,
		EnablePIIDetection:         true,
		EnableDomainRestrictions:   true,
		EnableToneEnforcement:      true,
	}
}

// Normalized returns a copy with lower-cased address and domain lists, and
// empty keyword lists replaced by the defaults.
func (p Policy) Normalized() Policy {
	out := p
	out.VIPEmails = lowerAll(p.VIPEmails)
	out.VIPDomains = lowerAll(p.VIPDomains)
	out.TeamDomains = lowerAll(p.TeamDomains)
	out.VendorEmails = lowerAll(p.VendorEmails)
	out.AllowedDomains = lowerAll(p.AllowedDomains)
	out.BlockedDomains = lowerAll(p.BlockedDomains)
	out.UrgencyKeywords = orDefault(lowerAll(p.UrgencyKeywords), DefaultUrgencyKeywords)
	out.LegalKeywords = orDefault(lowerAll(p.LegalKeywords), DefaultLegalKeywords)
	out.FinanceKeywords = orDefault(lowerAll(p.FinanceKeywords), DefaultFinanceKeywords)
	out.SpamIndicators = orDefault(lowerAll(p.SpamIndicators), DefaultSpamIndicators)
	if out.PriorityThreshold <= 0 || out.PriorityThreshold > 100 {
		out.PriorityThreshold = DefaultPriorityThreshold
	}
	return out
}

func (p Policy) IsVIPEmail(email string) bool {
	return containsFold(p.VIPEmails, email)
}

func (p Policy) IsVIPDomain(domain string) bool {
	return containsFold(p.VIPDomains, domain)
}

func (p Policy) IsTeamDomain(domain string) bool {
	return containsFold(p.TeamDomains, domain)
}

func (p Policy) IsVendorEmail(email string) bool {
	return containsFold(p.VendorEmails, email)
}

func (p Policy) IsAllowedDomain(domain string) bool {
	return containsFold(p.AllowedDomains, domain)
}

func (p Policy) IsBlockedDomain(domain string) bool {
	return containsFold(p.BlockedDomains, domain)
}

// IsExternalDomain is true for a domain that is neither allowed nor internal.
func (p Policy) IsExternalDomain(domain string) bool {
	return !p.IsAllowedDomain(domain) && !p.IsTeamDomain(domain)
}

func containsFold(list []string, value string) bool {
	if value == "" {
		return false
	}
	for _, v := range list {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func orDefault(in, def []string) []string {
	if len(in) == 0 {
		return copyStrings(def)
	}
	return in
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
