package priority

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/customeros/mailtriage/interfaces"
	"github.com/customeros/mailtriage/internal/enum"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
	"github.com/customeros/mailtriage/internal/utils"
)

const (
	HiddenUrgencyBonus = 15

	mediumThreshold = 50
	lowThreshold    = 30
)

var senderScores = map[enum.SenderType]int{
	enum.SenderVIP:      40,
	enum.SenderTeam:     30,
	enum.SenderCustomer: 25,
	enum.SenderVendor:   15,
	enum.SenderUnknown:  5,
	enum.SenderSpam:     0,
}

var factorReasons = map[string]string{
	models.FactorSenderImportance: "Important sender",
	models.FactorUrgencyKeywords:  "Urgent keywords",
	models.FactorActionRequired:   "Action needed",
	models.FactorEmailAge:         "Recent email",
	models.FactorThreadContext:    "Active thread",
	models.FactorSpecialCategory:  "Special category",
	models.FactorHiddenUrgency:    "Hidden urgency",
}

type priorityService struct {
	log       logger.Logger
	threshold int
}

func NewPriorityService(log logger.Logger, policy models.Policy) interfaces.PriorityService {
	return &priorityService{
		log:       log,
		threshold: policy.Normalized().PriorityThreshold,
	}
}

func (s *priorityService) Score(msg *models.MessageRecord, classification *models.ClassificationResult, intent *models.IntentDetection, now time.Time) *models.PriorityScore {
	factors := map[string]int{}
	var evidence []string

	senderScore := SenderScore(classification)
	factors[models.FactorSenderImportance] = senderScore
	if senderScore > 20 {
		evidence = append(evidence, "Sender: "+classification.SenderType.String())
	}

	factors[models.FactorUrgencyKeywords] = UrgencyScore(len(intent.UrgencyKeywords))
	if len(intent.UrgencyKeywords) > 0 {
		evidence = append(evidence, "Urgent keywords: "+strings.Join(utils.FirstN(intent.UrgencyKeywords, 3), ", "))
	}

	factors[models.FactorActionRequired] = ActionScore(intent)
	if intent.ActionRequired {
		evidence = append(evidence, "Action required")
	}

	factors[models.FactorEmailAge] = AgeScore(msg.Date, now)
	factors[models.FactorThreadContext] = ThreadScore(msg)
	factors[models.FactorSpecialCategory] = CategoryScore(intent)

	combined := strings.ToLower(msg.BodyText + " " + msg.Subject)
	hidden := DetectHiddenUrgency(combined, len(intent.UrgencyKeywords))
	if hidden {
		factors[models.FactorHiddenUrgency] = HiddenUrgencyBonus
		evidence = append(evidence, "Polite tone with deadline detected")
		if strings.Contains(combined, "tomorrow") || strings.Contains(combined, "today") {
			evidence = append(evidence, "Immediate deadline: today/tomorrow")
		}
	}

	total := 0
	for _, v := range factors {
		total += v
	}
	score := clamp(total, 0, 100)
	level := s.Level(score)

	result := &models.PriorityScore{
		Score:         score,
		Level:         level,
		Factors:       factors,
		Reasoning:     Reasoning(score, level, factors, hidden),
		Evidence:      evidence,
		Confidence:    Confidence(factors, intent.Confidence),
		HiddenUrgency: hidden,
	}

	s.log.Debugf("priority for %s: %d/100 (%s), hidden urgency: %t", msg.MessageID, score, level, hidden)
	return result
}

// Level is a step function of score: HIGH at or above the threshold, then
// MEDIUM at 50 and LOW at 30.
func (s *priorityService) Level(score int) enum.PriorityLevel {
	return LevelFor(score, s.threshold)
}

func LevelFor(score, threshold int) enum.PriorityLevel {
	switch {
	case score >= threshold:
		return enum.PriorityHigh
	case score >= mediumThreshold:
		return enum.PriorityMedium
	case score >= lowThreshold:
		return enum.PriorityLow
	default:
		return enum.PriorityNotRequired
	}
}

func SenderScore(c *models.ClassificationResult) int {
	if c == nil {
		return senderScores[enum.SenderUnknown]
	}
	if c.IsVIP {
		return senderScores[enum.SenderVIP]
	}
	if v, ok := senderScores[c.SenderType]; ok {
		return v
	}
	return senderScores[enum.SenderUnknown]
}

func UrgencyScore(count int) int {
	switch {
	case count <= 0:
		return 0
	case count == 1:
		return 10
	case count == 2:
		return 15
	default:
		return 20
	}
}

func ActionScore(intent *models.IntentDetection) int {
	score := 0
	if intent.ActionRequired {
		score += 10
	}
	if intent.QuestionDetected {
		score += 5
	}
	return min(score, 15)
}

// AgeScore rewards fresh messages. A message dated in the future counts as
// brand new.
func AgeScore(sent, now time.Time) int {
	age := now.Sub(sent)
	switch {
	case age < time.Hour:
		return 10
	case age < 4*time.Hour:
		return 8
	case age < 24*time.Hour:
		return 5
	case age < 72*time.Hour:
		return 2
	default:
		return 0
	}
}

func ThreadScore(msg *models.MessageRecord) int {
	score := 0
	if strings.HasPrefix(strings.ToLower(msg.Subject), "re:") {
		score += 5
	}
	if len(msg.Recipients) > 0 {
		score += 3
	}
	if msg.HasAttachments {
		score += 2
	}
	return min(score, 10)
}

func CategoryScore(intent *models.IntentDetection) int {
	switch {
	case intent.Has(enum.IntentLegal), intent.Has(enum.IntentFinance):
		return 5
	case intent.Has(enum.IntentComplaint):
		return 3
	default:
		return 0
	}
}

var (
	politePhrases   = []string{"please", "kindly", "would you", "could you", "at your convenience", "when possible"}
	deadlinePhrases = []string{"deadline", "due date", "by end of", "before", "tomorrow", "today", "asap", "eod", "eow"}
)

// DetectHiddenUrgency flags polite messages that carry a deadline but at most
// one explicit urgency keyword. text must be lower-cased.
func DetectHiddenUrgency(text string, urgencyCount int) bool {
	return utils.ContainsAny(text, politePhrases) &&
		utils.ContainsAny(text, deadlinePhrases) &&
		urgencyCount <= 1
}

// Reasoning lists the top four non-zero factors, largest first. Equal scores
// keep the fixed factor order.
func Reasoning(score int, level enum.PriorityLevel, factors map[string]int, hidden bool) string {
	var reasons []string
	if hidden {
		reasons = append(reasons, "HIDDEN URGENCY DETECTED")
	}

	names := make([]string, 0, len(factors))
	for _, name := range models.FactorOrder {
		if factors[name] > 0 {
			names = append(names, name)
		}
	}
	sort.SliceStable(names, func(i, j int) bool {
		return factors[names[i]] > factors[names[j]]
	})
	for _, name := range names {
		reasons = append(reasons, fmt.Sprintf("%s (+%d)", factorReasons[name], factors[name]))
	}

	reasoning := fmt.Sprintf("Priority: %s (%d/100)", strings.ToUpper(level.String()), score)
	if len(reasons) > 0 {
		reasoning += " - " + strings.Join(utils.FirstN(reasons, 4), ", ")
	}
	return reasoning
}

func Confidence(factors map[string]int, intentConfidence float64) float64 {
	strong := 0
	for _, v := range factors {
		if v >= 10 {
			strong++
		}
	}
	confidence := 0.7
	switch {
	case strong >= 3:
		confidence = 0.95
	case strong == 2:
		confidence = 0.85
	case strong == 1:
		confidence = 0.75
	}
	if intentConfidence < 0.5 {
		confidence *= 0.9
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
