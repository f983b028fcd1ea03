package guardrails

import (
	"strings"

	"github.com/customeros/mailtriage/internal/enum"
	"github.com/customeros/mailtriage/internal/models"
	"github.com/customeros/mailtriage/internal/utils"
)

// DraftDomains returns the distinct domains of the draft's to and cc lists.
func DraftDomains(d *models.DraftReply) []string {
	if d == nil {
		return nil
	}
	var domains []string
	for _, addr := range append(append([]string{}, d.Recipients...), d.Cc...) {
		if domain := utils.ExtractDomain(addr); domain != "" {
			domains = append(domains, domain)
		}
	}
	return utils.Dedupe(domains)
}

// CheckDomains validates the draft recipients. Blocked domains always fail.
// External domains fail only when the record carries PII.
func (s *guardrailService) CheckDomains(rec *models.DecisionRecord) bool {
	if !s.policy.EnableDomainRestrictions {
		return true
	}

	var blocked, external []string
	for _, domain := range DraftDomains(rec.Draft()) {
		switch {
		case s.policy.IsBlockedDomain(domain):
			blocked = append(blocked, domain)
		case rec.HasPII && s.policy.IsExternalDomain(domain):
			external = append(external, domain)
		}
	}
	if len(blocked) == 0 && len(external) == 0 {
		return true
	}

	var violations []string
	if len(blocked) > 0 {
		violations = append(violations, "blocked domain: "+strings.Join(blocked, ", "))
	}
	if len(external) > 0 {
		violations = append(violations, "PII to external domain: "+strings.Join(external, ", "))
	}

	rec.DomainApproved = false
	rec.AddFlag(models.SecurityFlag{
		FlagType:    enum.FlagDomainRestriction,
		Severity:    enum.SeverityHigh,
		Description: "Domain restriction violated: " + strings.Join(violations, "; "),
		Details: map[string]any{
			"blocked_domains":  blocked,
			"external_domains": external,
		},
		BlocksSending: true,
	})
	s.log.Warnf("domain restriction for %s: %s", rec.ID(), strings.Join(violations, "; "))
	return false
}

// IsExternal is true when any draft to or cc recipient sits outside the
// allowed and internal domains. A record without a draft is never external.
func (s *guardrailService) IsExternal(rec *models.DecisionRecord) bool {
	for _, domain := range DraftDomains(rec.Draft()) {
		if s.policy.IsExternalDomain(domain) {
			return true
		}
	}
	return false
}
