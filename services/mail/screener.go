package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/customeros/mailsherpa/domaincheck"
	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/customeros/mailwatcher/blscan"
	"github.com/opentracing/opentracing-go"

	"github.com/customeros/mailtriage/interfaces"
	"github.com/customeros/mailtriage/internal/enum"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
	"github.com/customeros/mailtriage/internal/tracing"
	"github.com/customeros/mailtriage/internal/utils"
)

// BlacklistSpamPercent is the blacklist penalty at which a sender domain is
// treated as spam.
const BlacklistSpamPercent = 80

type ScreenerConfig struct {
	TeamDomains []string
	// CheckDomains enables the DNS backed primary domain and blacklist
	// lookups. Off, only headers and address syntax are used.
	CheckDomains bool
}

type screenerService struct {
	log    logger.Logger
	cfg    ScreenerConfig
	policy models.Policy

	primaryDomain    func(domain string) bool
	blacklistPercent func(domain string) int
}

func NewScreenerService(log logger.Logger, cfg ScreenerConfig) interfaces.ScreenerService {
	return &screenerService{
		log:              log,
		cfg:              cfg,
		policy:           models.Policy{TeamDomains: cfg.TeamDomains}.Normalized(),
		primaryDomain:    isPrimaryDomain,
		blacklistPercent: blacklistPenaltyPercent,
	}
}

func (s *screenerService) Screen(ctx context.Context, msg *models.MessageRecord, headers *models.EmailHeaders) interfaces.Screening {
	span, _ := opentracing.StartSpanFromContext(ctx, "ScreenerService.Screen")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagMessage(span, msg.MessageID)

	result := s.screen(msg, headers)
	span.LogKV("classification", result.Classification.String(), "reason", result.Reason)
	if result.Classification != enum.EmailOK {
		s.log.Debugf("message %s screened as %s: %s", msg.MessageID, result.Classification, result.Reason)
	}
	return result
}

func (s *screenerService) screen(msg *models.MessageRecord, headers *models.EmailHeaders) interfaces.Screening {
	if headers == nil {
		headers = &models.EmailHeaders{}
	}
	if ok, reason := isBounceNotification(headers, msg.Subject, msg.Sender); ok {
		return interfaces.Screening{Classification: enum.EmailBounceNotification, Reason: reason}
	}
	if ok, reason := isAutoresponder(headers); ok {
		return interfaces.Screening{Classification: enum.EmailAutoResponder, Reason: reason}
	}
	if s.isInternal(msg.Sender) {
		return interfaces.Screening{Classification: enum.EmailInternal}
	}
	if ok, reason := s.isBulkEmail(headers, msg.Sender); ok {
		return interfaces.Screening{Classification: enum.EmailBulk, Reason: reason}
	}
	if ok, reason := s.isBlacklisted(msg.Sender); ok {
		return interfaces.Screening{Classification: enum.EmailSpam, Reason: reason}
	}
	if ok, reason := isSensitiveSubject(msg.Subject); ok {
		return interfaces.Screening{Classification: enum.EmailSensitive, Reason: reason}
	}
	return interfaces.Screening{Classification: enum.EmailOK}
}

func (s *screenerService) isInternal(from string) bool {
	return s.policy.IsTeamDomain(utils.ExtractDomain(from))
}

func (s *screenerService) isBulkEmail(headers *models.EmailHeaders, from string) (bool, string) {
	from = utils.StripDisplayName(from)
	replyTo := utils.StripDisplayName(headers.ReplyTo)

	if headers.ForwardedFor == "" {
		switch {
		case headers.ReplyToExists && !strings.EqualFold(replyTo, from):
			return true, "REPLY-TO != FROM"
		case headers.ReturnPathExists && headers.ReturnPath == "":
			return true, "RETURN-PATH header is empty"
		case headers.ReturnPathExists && !strings.Contains(strings.ToLower(headers.ReturnPath), strings.ToLower(from)):
			return true, "RETURN-PATH != FROM"
		}
	}

	switch {
	case headers.ListUnsubscribe:
		return true, "UNSUBSCRIBE header present"
	case strings.EqualFold(headers.Precedence, "bulk"), strings.EqualFold(headers.Precedence, "list"):
		return true, fmt.Sprintf("PRECEDENCE: %s header present", strings.ToUpper(headers.Precedence))
	case headers.Sender != "" && !strings.EqualFold(utils.StripDisplayName(headers.Sender), from):
		return true, "SENDER != FROM"
	default:
		return s.mailsherpaChecks(from)
	}
}

func (s *screenerService) mailsherpaChecks(from string) (bool, string) {
	if from == "" {
		return true, "FROM is empty"
	}
	syntax := mailvalidate.ValidateEmailSyntax(from)
	if syntax.IsRoleAccount {
		return true, "FROM is a role account"
	}
	if syntax.IsSystemGenerated {
		return true, "FROM is system generated"
	}
	if s.cfg.CheckDomains && syntax.IsValid && !syntax.IsFreeAccount && !s.primaryDomain(syntax.Domain) {
		return true, "Email sent from non-primary domain"
	}
	return false, ""
}

func (s *screenerService) isBlacklisted(from string) (bool, string) {
	if !s.cfg.CheckDomains {
		return false, ""
	}
	domain := utils.ExtractDomain(from)
	if domain == "" {
		return false, ""
	}
	if pct := s.blacklistPercent(domain); pct >= BlacklistSpamPercent {
		return true, fmt.Sprintf("Sender domain blacklisted (penalty %d%%)", pct)
	}
	return false, ""
}

func isPrimaryDomain(domain string) bool {
	primary, _ := domaincheck.PrimaryDomainCheck(domain)
	return primary
}

func blacklistPenaltyPercent(domain string) int {
	blacklists := blscan.ScanBlacklists(domain, "domain")
	pct := (blacklists.MajorLists * 80) + (blacklists.MinorLists * 10) + (blacklists.SpamTrapLists * 20)
	return min(pct, 100)
}

func isAutoresponder(headers *models.EmailHeaders) (bool, string) {
	switch {
	case headers.XAutoreply != "":
		return true, "X-AUTOREPLY header present"
	case headers.XAutoresponse != "":
		return true, "X-AUTORESPONSE header present"
	case headers.XLoop:
		return true, "X-LOOP header present"
	case headers.AutoSubmitted:
		return true, "AUTO-SUBMITTED header present"
	case strings.EqualFold(headers.Precedence, "auto_reply"):
		return true, "PRECEDENCE: AUTO_REPLY header present"
	default:
		return false, ""
	}
}

func isBounceNotification(headers *models.EmailHeaders, subject, from string) (bool, string) {
	switch {
	case len(headers.XFailedRecipients) > 0:
		return true, "X-FAILED-RECIPIENTS header present"
	case strings.EqualFold(headers.ContentDescription, "delivery report"):
		return true, "CONTENT-DESCRIPTION: DELIVERY REPORT header present"
	case hasBounceKeywords(headers.ReturnPath):
		return true, "RETURN-PATH contains bounce keywords"
	case hasBounceKeywords(from):
		return true, "FROM contains bounce keywords"
	case isBounceSubject(subject):
		return true, "SUBJECT contains bounce keywords"
	default:
		return false, ""
	}
}

func hasBounceKeywords(str string) bool {
	return strings.Contains(strings.ToLower(str), "mailer-daemon")
}

var bounceSubjects = []string{
	"mail delivery failure",
	"undelivered mail returned to sender",
	"delivery status notification",
	"undeliverable",
	"undelivered",
	"delivery failure",
	"failure notice",
	"returned mail",
	"returned to sender",
}

func isBounceSubject(subject string) bool {
	return utils.ContainsAny(strings.ToLower(subject), bounceSubjects)
}

// subject markers only; body content is left to the legal and PII stages
var confidentialityMarkers = []string{
	"[confidential]", "(confidential)", "***confidential***",
	"[sensitive]", "(sensitive)", "***sensitive***",
	"[private]", "(private)", "***private***",
	"top secret", "for official use only", "not for distribution",
	"do not forward", "under nda",
}

func isSensitiveSubject(subject string) (bool, string) {
	lower := strings.ToLower(subject)
	for _, marker := range confidentialityMarkers {
		if strings.Contains(lower, marker) {
			return true, fmt.Sprintf("Subject contains explicit confidentiality marker: '%s'", marker)
		}
	}
	return false, ""
}
