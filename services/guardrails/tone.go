package guardrails

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/customeros/mailtriage/internal/enum"
	"github.com/customeros/mailtriage/internal/models"
	"github.com/customeros/mailtriage/internal/utils"
)

const (
	maxExclamations = 2
	maxCapsWords    = 1
	minCapsLength   = 4
)

var (
	aggressiveWords = []string{
		"must", "immediately", "demand", "unacceptable", "ridiculous",
		"stupid", "incompetent", "failure", "your fault",
	}
	riskyPhrases = []string{
		"i promise", "trust me", "don't worry", "no problem at all",
		"off the record", "between us", "just between",
	}
	liabilityPhrases = []string{
		"guarantee", "we are liable", "admit fault", "legally binding",
		"we accept responsibility", "100% sure", "will never happen",
	}
	unprofessionalSlang = []string{
		"lol", "omg", "wtf", "gonna", "wanna", "dude", "whatever",
	}
)

var toneAlternatives = map[string]string{
	"must":         "could you please",
	"immediately":  "at your earliest convenience",
	"demand":       "request",
	"unacceptable": "not what we expected",
	"your fault":   "an issue we should look at together",
	"i promise":    "we will do our best",
	"guarantee":    "expect",
	"trust me":     "in our experience",
	"don't worry":  "we are looking into it",
	"gonna":        "going to",
	"wanna":        "want to",
	"asap":         "as soon as possible",
}

// ToneReport holds the violations found in a draft.
type ToneReport struct {
	Aggressive     []string
	Risky          []string
	Liability      []string
	Unprofessional []string
	Exclamations   int
	CapsWords      []string
}

// Issues renders every violation as a short human readable line.
func (r ToneReport) Issues() []string {
	var issues []string
	if len(r.Aggressive) > 0 {
		issues = append(issues, "Aggressive language: "+strings.Join(r.Aggressive, ", "))
	}
	if len(r.Risky) > 0 {
		issues = append(issues, "Risky phrase: "+strings.Join(r.Risky, ", "))
	}
	if len(r.Liability) > 0 {
		issues = append(issues, "Liability language: "+strings.Join(r.Liability, ", "))
	}
	if len(r.Unprofessional) > 0 {
		issues = append(issues, "Unprofessional language: "+strings.Join(r.Unprofessional, ", "))
	}
	if r.Exclamations > maxExclamations {
		issues = append(issues, fmt.Sprintf("Excessive exclamation marks (%d)", r.Exclamations))
	}
	if len(r.CapsWords) > maxCapsWords {
		issues = append(issues, fmt.Sprintf("Excessive capitalization (%d words)", len(r.CapsWords)))
	}
	return issues
}

func (r ToneReport) Severity() enum.Severity {
	if len(r.Aggressive) > 0 || len(r.Liability) > 0 {
		return enum.SeverityHigh
	}
	return enum.SeverityMedium
}

// AnalyzeTone checks subject and body. Phrase lists match on the lower-cased
// text, the capitalization check on the original.
func AnalyzeTone(subject, body string) ToneReport {
	raw := subject + "\n" + body
	lower := strings.ToLower(raw)
	return ToneReport{
		Aggressive:     utils.MatchedKeywords(lower, aggressiveWords),
		Risky:          utils.MatchedKeywords(lower, riskyPhrases),
		Liability:      utils.MatchedKeywords(lower, liabilityPhrases),
		Unprofessional: utils.MatchedKeywords(lower, unprofessionalSlang),
		Exclamations:   strings.Count(raw, "!"),
		CapsWords:      capsWords(raw),
	}
}

func capsWords(text string) []string {
	var out []string
	for _, field := range strings.Fields(text) {
		word := strings.TrimFunc(field, func(r rune) bool { return !unicode.IsLetter(r) })
		if len([]rune(word)) < minCapsLength {
			continue
		}
		if strings.ToUpper(word) == word && strings.ToLower(word) != word {
			out = append(out, word)
		}
	}
	return out
}

func (s *guardrailService) EnforceTone(rec *models.DecisionRecord) bool {
	if !s.policy.EnableToneEnforcement {
		return true
	}
	d := rec.Draft()
	if d == nil {
		return true
	}

	report := AnalyzeTone(d.Subject, d.Body)
	issues := report.Issues()
	if len(issues) == 0 {
		return true
	}

	rec.ToneApproved = false
	rec.AddFlag(models.SecurityFlag{
		FlagType:    enum.FlagToneViolation,
		Severity:    report.Severity(),
		Description: "Unsafe tone in draft: " + strings.Join(issues, "; "),
		Details: map[string]any{
			"issues":       issues,
			"alternatives": SuggestAlternatives(d.Body),
		},
	})
	s.log.Warnf("tone issues in %s: %s", rec.ID(), strings.Join(issues, "; "))
	return false
}

// SuggestAlternatives maps each problematic phrase found in text to a softer
// wording.
func SuggestAlternatives(text string) map[string]string {
	lower := strings.ToLower(text)
	out := map[string]string{}
	for phrase, alt := range toneAlternatives {
		if strings.Contains(lower, phrase) {
			out[phrase] = alt
		}
	}
	return out
}
