package categorizer

import (
	"github.com/customeros/mailtriage/interfaces"
	"github.com/customeros/mailtriage/internal/enum"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
)

// Input is what a categorization rule looks at.
type Input struct {
	Intent   *models.IntentDetection
	Priority *models.PriorityScore
	IsSpam   bool
}

type Rule struct {
	Category enum.Category
	Matches  func(Input) bool
}

// Rules is evaluated top to bottom and the first match wins.
var Rules = []Rule{
	{enum.CategorySpam, func(in Input) bool { return in.IsSpam }},
	{enum.CategoryLegal, func(in Input) bool { return in.Intent.Has(enum.IntentLegal) }},
	{enum.CategoryFinance, func(in Input) bool { return in.Intent.Has(enum.IntentFinance) }},
	{enum.CategoryAction, func(in Input) bool {
		return in.Intent != nil && (in.Intent.ActionRequired || in.Intent.QuestionDetected)
	}},
	{enum.CategoryWaiting, func(in Input) bool {
		return in.Intent.Has(enum.IntentRequest) || in.Intent.Has(enum.IntentMeeting)
	}},
	{enum.CategoryFYI, func(in Input) bool {
		p := in.Intent.PrimaryIntent()
		return p == enum.IntentInformational || p == enum.IntentNotification
	}},
}

const DefaultCategory = enum.CategoryFYI

type categorizerService struct {
	log logger.Logger
}

func NewCategorizerService(log logger.Logger) interfaces.CategorizerService {
	return &categorizerService{log: log}
}

func (s *categorizerService) Categorize(intent *models.IntentDetection, priority *models.PriorityScore, isSpam bool) enum.Category {
	in := Input{Intent: intent, Priority: priority, IsSpam: isSpam}
	for _, rule := range Rules {
		if rule.Matches(in) {
			s.log.Debugf("categorized as %s", rule.Category)
			return rule.Category
		}
	}
	s.log.Debugf("categorized as %s (default)", DefaultCategory)
	return DefaultCategory
}
