package classifier

import (
	"regexp"
	"strings"

	"github.com/customeros/mailtriage/interfaces"
	"github.com/customeros/mailtriage/internal/enum"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
	"github.com/customeros/mailtriage/internal/utils"
)

var (
	vipTitleKeywords = []string{"ceo", "founder", "president", "board", "director", "vp", "cfo", "cto"}

	bulkSenderPatterns = []string{
		"noreply", "no-reply", "donotreply", "notification",
		"marketing", "newsletter", "promo", "deals",
	}

	freeMailProviders = []string{"gmail.com", "yahoo.com", "hotmail.com", "outlook.com"}

	digitRunRegex = regexp.MustCompile(`\d{4,}`)
)

var confidenceByType = map[enum.SenderType]float64{
	enum.SenderVIP:      1.0,
	enum.SenderTeam:     0.95,
	enum.SenderVendor:   0.80,
	enum.SenderCustomer: 0.70,
	enum.SenderSpam:     0.85,
	enum.SenderUnknown:  0.50,
}

// Sender is the normalized sender every rule reads. Email and Local are
// lower-cased; Domain is empty when the address has no @domain part.
type Sender struct {
	Email  string
	Local  string
	Domain string
}

// Rule is one row of the sender type precedence table.
type Rule struct {
	Type    enum.SenderType
	Matches func(p models.Policy, s Sender) bool
}

// Rules is evaluated top to bottom; the first match wins.
var Rules = []Rule{
	{Type: enum.SenderVIP, Matches: func(p models.Policy, s Sender) bool {
		return p.IsVIPEmail(s.Email) || p.IsVIPDomain(s.Domain)
	}},
	{Type: enum.SenderTeam, Matches: func(p models.Policy, s Sender) bool {
		return p.IsTeamDomain(s.Domain)
	}},
	{Type: enum.SenderVendor, Matches: func(p models.Policy, s Sender) bool {
		return p.IsVendorEmail(s.Email)
	}},
	{Type: enum.SenderSpam, Matches: func(_ models.Policy, s Sender) bool {
		return looksLikeBulkSender(s)
	}},
	{Type: enum.SenderCustomer, Matches: func(_ models.Policy, s Sender) bool {
		return looksLikeCustomer(s)
	}},
}

type classifierService struct {
	log    logger.Logger
	policy models.Policy
}

func NewClassifierService(log logger.Logger, policy models.Policy) interfaces.ClassifierService {
	return &classifierService{
		log:    log,
		policy: policy.Normalized(),
	}
}

func (s *classifierService) Classify(msg *models.MessageRecord) *models.ClassificationResult {
	snd := newSender(msg.Sender)

	senderType := s.resolveType(snd)
	isVIP := s.isVIP(snd)
	isInternal := s.policy.IsTeamDomain(snd.Domain)

	result := &models.ClassificationResult{
		SenderType:   senderType,
		SenderEmail:  msg.Sender,
		SenderDomain: snd.Domain,
		IsVIP:        isVIP,
		IsInternal:   isInternal,
		Confidence:   confidence(senderType, isVIP),
		Notes:        notes(senderType, isVIP, isInternal, snd),
	}

	s.log.Debugf("classified %s as %s (vip: %t)", msg.Sender, senderType, isVIP)
	return result
}

func (s *classifierService) resolveType(snd Sender) enum.SenderType {
	for _, rule := range Rules {
		if rule.Matches(s.policy, snd) {
			return rule.Type
		}
	}
	return enum.SenderUnknown
}

func (s *classifierService) isVIP(snd Sender) bool {
	if s.policy.IsVIPEmail(snd.Email) || s.policy.IsVIPDomain(snd.Domain) {
		return true
	}
	if snd.Local == "" {
		return false
	}
	return utils.ContainsAny(snd.Local, vipTitleKeywords)
}

func newSender(raw string) Sender {
	email := strings.ToLower(strings.TrimSpace(utils.StripDisplayName(raw)))
	domain := utils.ExtractDomain(email)
	snd := Sender{Email: email, Domain: domain}
	if domain != "" {
		snd.Local = utils.LocalPart(email)
	}
	return snd
}

func looksLikeBulkSender(s Sender) bool {
	if s.Domain == "" {
		return false
	}
	if utils.ContainsAny(s.Local, bulkSenderPatterns) {
		return true
	}
	if isFreeMail(s.Domain) {
		return len(s.Local) > 15 || digitRunRegex.MatchString(s.Local)
	}
	return false
}

func looksLikeCustomer(s Sender) bool {
	return !isFreeMail(s.Domain) && strings.Contains(s.Domain, ".")
}

func isFreeMail(domain string) bool {
	return utils.IsStringInSlice(domain, freeMailProviders)
}

func confidence(senderType enum.SenderType, isVIP bool) float64 {
	if isVIP {
		return 1.0
	}
	if c, ok := confidenceByType[senderType]; ok {
		return c
	}
	return 0.5
}

func notes(senderType enum.SenderType, isVIP, isInternal bool, snd Sender) string {
	var parts []string
	if isVIP {
		parts = append(parts, "VIP sender")
	}
	if isInternal {
		parts = append(parts, "Internal team member")
	}
	parts = append(parts, "Type: "+senderType.String())
	parts = append(parts, "Domain: "+snd.Domain)

	if snd.Domain != "" {
		addr := utils.ParseAddress(snd.Email)
		if addr.IsRoleAccount {
			parts = append(parts, "Role account")
		}
		if addr.IsSystem {
			parts = append(parts, "System generated")
		}
	}
	return strings.Join(parts, " | ")
}
