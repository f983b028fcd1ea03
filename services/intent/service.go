package intent

import (
	"math"
	"regexp"
	"strings"

	"github.com/customeros/mailtriage/interfaces"
	"github.com/customeros/mailtriage/internal/enum"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
	"github.com/customeros/mailtriage/internal/utils"
)

var (
	actionWords   = []string{"please", "can you", "could you", "would you", "need", "require", "request", "asking", "help"}
	questionWords = []string{"how", "what", "when", "where", "why", "who"}

	meetingKeywords      = []string{"meeting", "call", "schedule", "calendar", "available", "time to talk", "discuss", "zoom", "teams"}
	notificationKeywords = []string{"notification", "alert", "reminder", "update", "fyi", "for your information", "heads up"}
	complaintKeywords    = []string{
		"complaint", "issue", "problem", "disappointed", "unhappy", "dissatisfied",
		"not working", "broken", "frustrated", "unacceptable",
	}
	salesKeywords = []string{"offer", "discount", "sale", "promotion", "deal", "limited time", "special", "buy now", "save"}
)

var deadlinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2,4}`),
	regexp.MustCompile(`\d{1,2}-\d{1,2}-\d{2,4}`),
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
	regexp.MustCompile(`(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]* \d{1,2}`),
	regexp.MustCompile(`(monday|tuesday|wednesday|thursday|friday|saturday|sunday)`),
	regexp.MustCompile(`(today|tomorrow|tonight|next week|this week)`),
}

type intentService struct {
	log             logger.Logger
	urgencyKeywords []string
	legalKeywords   []string
	financeKeywords []string
}

func NewIntentService(log logger.Logger, policy models.Policy) interfaces.IntentService {
	p := policy.Normalized()
	return &intentService{
		log:             log,
		urgencyKeywords: p.UrgencyKeywords,
		legalKeywords:   p.LegalKeywords,
		financeKeywords: p.FinanceKeywords,
	}
}

func (s *intentService) Detect(msg *models.MessageRecord) *models.IntentDetection {
	text := msg.FullText()

	urgency := utils.MatchedKeywords(text, s.urgencyKeywords)
	legal := utils.MatchedKeywords(text, s.legalKeywords)
	finance := utils.MatchedKeywords(text, s.financeKeywords)
	action := utils.MatchedKeywords(text, actionWords)

	var keywords []string
	keywords = append(keywords, urgency...)
	keywords = append(keywords, legal...)
	keywords = append(keywords, finance...)
	keywords = append(keywords, action...)
	keywords = utils.Dedupe(keywords)

	question := IsQuestion(msg.Subject, text)

	var intents []enum.Intent
	add := func(ok bool, intent enum.Intent) {
		if ok {
			intents = append(intents, intent)
		}
	}
	add(len(urgency) > 0, enum.IntentUrgent)
	add(len(legal) > 0, enum.IntentLegal)
	add(len(finance) > 0, enum.IntentFinance)
	add(len(action) > 0, enum.IntentRequest)
	add(question, enum.IntentQuestion)
	add(utils.ContainsAny(text, meetingKeywords), enum.IntentMeeting)
	add(utils.ContainsAny(text, notificationKeywords), enum.IntentNotification)
	add(utils.ContainsAny(text, complaintKeywords), enum.IntentComplaint)
	add(utils.ContainsAny(text, salesKeywords), enum.IntentSales)
	if len(intents) == 0 {
		intents = []enum.Intent{enum.IntentInformational}
	}

	result := &models.IntentDetection{
		Intents:          intents,
		KeywordsDetected: keywords,
		UrgencyKeywords:  urgency,
		QuestionDetected: question,
		Confidence:       Confidence(len(intents), len(keywords)),
	}
	result.ActionRequired = len(action) > 0 || question || result.Has(enum.IntentRequest)

	s.log.Debugf("detected intent %s for %s (action required: %t)", result.PrimaryIntent(), msg.MessageID, result.ActionRequired)
	return result
}

// ExtractDeadlines returns date-like mentions grouped by pattern, without
// duplicates.
func (s *intentService) ExtractDeadlines(msg *models.MessageRecord) []string {
	text := msg.FullText()
	var found []string
	for _, re := range deadlinePatterns {
		found = append(found, re.FindAllString(text, -1)...)
	}
	return utils.Dedupe(found)
}

// IsQuestion checks for a question mark anywhere, then for a question word
// opening any of the first three sentences. text must already be lower-cased.
func IsQuestion(subject, text string) bool {
	if strings.Contains(subject, "?") || strings.Contains(text, "?") {
		return true
	}
	sentences := strings.Split(text, ".")
	for i, sentence := range sentences {
		if i == 3 {
			break
		}
		sentence = strings.TrimSpace(sentence)
		for _, w := range questionWords {
			if strings.HasPrefix(sentence, w) {
				return true
			}
		}
	}
	return false
}

// Confidence grows with the number of intents and distinct keywords.
func Confidence(intentCount, keywordCount int) float64 {
	intentScore := math.Min(float64(intentCount)*0.2, 0.6)
	keywordScore := math.Min(float64(keywordCount)*0.05, 0.4)
	return roundTo(math.Min(intentScore+keywordScore, 1.0), 4)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
