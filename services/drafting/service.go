package drafting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/opentracing/opentracing-go"

	"github.com/customeros/mailtriage/interfaces"
	"github.com/customeros/mailtriage/internal/enum"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
	"github.com/customeros/mailtriage/internal/tracing"
	"github.com/customeros/mailtriage/internal/utils"
)

const (
	DefaultTone       = "professional"
	DefaultConfidence = 0.85

	maxReplyAllRecipients = 5
	maxReplyAllExternal   = 2

	reasoningGenerated = "AI-generated reply based on email context and intent"
	reasoningTemplate  = "Template reply based on detected intent"
)

var templates = map[enum.Intent]string{
	enum.IntentQuestion: "Thank you for your email. I've received your question and will review it shortly.\n\nBest regards",
	enum.IntentRequest:  "Thank you for reaching out. I've noted your request and will follow up soon.\n\nBest regards",
}

const defaultTemplate = "Thank you for your email. I've received your message and will respond accordingly.\n\nBest regards"

type draftingService struct {
	log       logger.Logger
	policy    models.Policy
	generator interfaces.DraftGenerator
}

// NewDraftingService builds the drafter. generator may be nil, in which case
// every draft comes from the intent templates.
func NewDraftingService(log logger.Logger, policy models.Policy, generator interfaces.DraftGenerator) interfaces.DraftingService {
	return &draftingService{
		log:       log,
		policy:    policy.Normalized(),
		generator: generator,
	}
}

// Draft always returns a reply. A failing or empty generator falls back to
// the template for the primary intent.
func (s *draftingService) Draft(ctx context.Context, msg *models.MessageRecord, intent *models.IntentDetection, now time.Time) *models.DraftReply {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DraftingService.Draft")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagMessage(span, msg.MessageID)

	body, reasoning := s.generate(ctx, span, msg, intent)

	external := s.CountExternalRecipients(msg)
	total := len(msg.Recipients) + len(msg.Cc)
	risk := IsReplyAllRisk(total, external)

	evidence := []string{
		"Original sender: " + msg.Sender,
		fmt.Sprintf("Total recipients: %d", total),
		fmt.Sprintf("External recipients: %d", external),
	}
	if risk {
		evidence = append(evidence, "Large reply-all detected - requires approval")
	}

	return &models.DraftReply{
		Subject:            utils.ReplySubject(msg.Subject),
		Body:               strings.TrimSpace(body),
		Recipients:         []string{msg.Sender},
		Cc:                 []string{},
		Tone:               DefaultTone,
		CreatedAt:          now,
		RequiresApproval:   true,
		Reasoning:          reasoning,
		Confidence:         DefaultConfidence,
		Evidence:           evidence,
		ExternalRecipients: external,
		ReplyAllRisk:       risk,
	}
}

func (s *draftingService) generate(ctx context.Context, span opentracing.Span, msg *models.MessageRecord, intent *models.IntentDetection) (string, string) {
	if s.generator != nil {
		body, err := s.generator.GenerateReply(ctx, msg, intent)
		if err != nil {
			tracing.TraceErr(span, err)
			s.log.Warnf("draft generation failed for %s, using template: %v", msg.MessageID, err)
		} else if strings.TrimSpace(body) != "" {
			return body, reasoningGenerated
		}
	}
	return Template(intent.PrimaryIntent()), reasoningTemplate
}

// Template returns the fallback body for an intent.
func Template(intent enum.Intent) string {
	if t, ok := templates[intent]; ok {
		return t
	}
	return defaultTemplate
}

// CountExternalRecipients counts to, cc and bcc addresses outside the allowed
// and internal domains.
func (s *draftingService) CountExternalRecipients(msg *models.MessageRecord) int {
	count := 0
	for _, list := range [][]string{msg.Recipients, msg.Cc, msg.Bcc} {
		for _, addr := range list {
			domain := utils.ExtractDomain(addr)
			if domain != "" && s.policy.IsExternalDomain(domain) {
				count++
			}
		}
	}
	return count
}

// IsReplyAllRisk is true for more than five to and cc recipients or more than
// two external ones.
func IsReplyAllRisk(totalRecipients, externalRecipients int) bool {
	return totalRecipients > maxReplyAllRecipients || externalRecipients > maxReplyAllExternal
}
