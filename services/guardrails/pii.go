package guardrails

import (
	"regexp"
	"strings"

	"github.com/customeros/mailtriage/internal/enum"
	"github.com/customeros/mailtriage/internal/models"
)

const (
	PIISSN        = "ssn"
	PIICreditCard = "credit_card"
	PIIPhone      = "phone"
	PIIEmail      = "email"
	PIIIPAddress  = "ip_address"
	PIIAPIKey     = "api_key"
	PIIPassword   = "password"

	ConfidentialMarker = "confidential_marker"

	draftSuffix = "_in_draft"
)

type piiPattern struct {
	name string
	re   *regexp.Regexp
}

var (
	ssnRe        = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	creditCardRe = regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`)
	phoneRe      = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)
	apiKeyRe     = regexp.MustCompile(`\b[A-Za-z0-9]{32,}\b`)

	piiPatterns = []piiPattern{
		{PIISSN, ssnRe},
		{PIICreditCard, creditCardRe},
		{PIIPhone, phoneRe},
		{PIIEmail, regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
		{PIIIPAddress, regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)},
		{PIIAPIKey, apiKeyRe},
		{PIIPassword, regexp.MustCompile(`(?i)(password|passwd|pwd)[\s:=]+\S+`)},
	}

	confidentialKeywords = []string{
		"confidential", "proprietary", "internal only",
		"do not share", "restricted", "classified",
		"trade secret", "sensitive",
	}
)

// ScanPII returns the pattern names found in text, in pattern order.
func ScanPII(text string) []string {
	var found []string
	for _, p := range piiPatterns {
		if p.re.MatchString(text) {
			found = append(found, p.name)
		}
	}
	return found
}

// DetectPII scans the message and the draft separately. Draft hits that were
// not already seen in the message are tagged with an _in_draft suffix.
func (s *guardrailService) DetectPII(rec *models.DecisionRecord) []string {
	if !s.policy.EnablePIIDetection {
		return nil
	}

	text := rec.Message.RawText()
	detected := ScanPII(text)

	if d := rec.Draft(); d != nil {
		inMessage := make(map[string]bool, len(detected))
		for _, t := range detected {
			inMessage[t] = true
		}
		for _, t := range ScanPII(d.Subject + "\n" + d.Body) {
			if !inMessage[t] {
				detected = append(detected, t+draftSuffix)
			}
		}
	}

	lower := strings.ToLower(text)
	for _, kw := range confidentialKeywords {
		if strings.Contains(lower, kw) {
			detected = append(detected, ConfidentialMarker)
			break
		}
	}

	if len(detected) == 0 {
		return nil
	}

	severity := enum.SeverityMedium
	for _, t := range detected {
		if strings.HasPrefix(t, PIISSN) || strings.HasPrefix(t, PIICreditCard) {
			severity = enum.SeverityHigh
			break
		}
	}

	rec.HasPII = true
	rec.AddFlag(models.SecurityFlag{
		FlagType:      enum.FlagPIIDetected,
		Severity:      severity,
		Description:   "PII or confidential data detected: " + strings.Join(detected, ", "),
		Details:       map[string]any{"detected_types": detected},
		BlocksSending: true,
	})
	s.log.Warnf("PII detected in %s: %s", rec.ID(), strings.Join(detected, ", "))
	return detected
}

// Anonymize masks SSNs, card numbers, phone numbers and API keys for display.
func Anonymize(text string) string {
	out := ssnRe.ReplaceAllString(text, "XXX-XX-XXXX")
	out = creditCardRe.ReplaceAllString(out, "XXXX-XXXX-XXXX-XXXX")
	out = phoneRe.ReplaceAllString(out, "XXX-XXX-XXXX")
	out = apiKeyRe.ReplaceAllString(out, "[REDACTED_API_KEY]")
	return out
}
