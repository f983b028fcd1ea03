package legal

import (
	"github.com/customeros/mailtriage/interfaces"
	"github.com/customeros/mailtriage/internal/enum"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
	"github.com/customeros/mailtriage/internal/utils"
)

const (
	CriticalScore = 70

	EscalationNote = "ESCALATED: Contains legal/financial commitments - requires immediate human review"
)

var (
	criticalLegalPhrases = []string{
		"hereby agree", "binding agreement", "legal obligation",
		"contract terms", "subject to", "in accordance with",
		"liability", "indemnify", "confidentiality agreement",
	}
	criticalFinancePhrases = []string{
		"wire transfer", "bank account", "payment details",
		"invoice attached", "purchase order", "payment due",
		"credit card", "routing number",
	}
)

type legalService struct {
	log             logger.Logger
	legalKeywords   []string
	financeKeywords []string
}

func NewLegalService(log logger.Logger, policy models.Policy) interfaces.LegalService {
	p := policy.Normalized()
	return &legalService{
		log:             log,
		legalKeywords:   p.LegalKeywords,
		financeKeywords: p.FinanceKeywords,
	}
}

// IsCritical is true for urgent messages that carry legal or financial
// commitments.
func (s *legalService) IsCritical(rec *models.DecisionRecord) bool {
	if rec.Priority == nil || rec.Priority.Score < CriticalScore {
		return false
	}
	text := rec.Message.FullText()
	hasLegal := HasContent(text, s.legalKeywords, criticalLegalPhrases)
	hasFinance := HasContent(text, s.financeKeywords, criticalFinancePhrases)
	if hasLegal || hasFinance {
		kind := "finance"
		if hasLegal {
			kind = "legal"
		}
		s.log.Warnf("message %s contains urgent %s content", rec.ID(), kind)
		return true
	}
	return false
}

// Escalate blocks the record for human review. It cannot be undone.
func (s *legalService) Escalate(rec *models.DecisionRecord) {
	rec.Block()
	rec.SetStatus(enum.StatusBlocked)
	rec.AddFlag(models.SecurityFlag{
		FlagType:    enum.FlagLegalFinanceCritical,
		Severity:    enum.SeverityCritical,
		Description: "Email contains legal or financial commitments requiring human review",
		Details: map[string]any{
			"requires_escalation": true,
			"auto_reply_blocked":  true,
			"reason":              "Contains binding legal or financial language",
		},
		BlocksSending: true,
	})
	rec.AddNote(EscalationNote)
	s.log.Infof("message %s escalated, auto reply blocked", rec.ID())
}

// HasContent needs two generic keyword hits or a single critical phrase.
func HasContent(text string, keywords, phrases []string) bool {
	return utils.CountMatches(text, keywords) >= 2 || utils.ContainsAny(text, phrases)
}
