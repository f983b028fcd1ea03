package spam

import (
	"strings"

	"github.com/customeros/mailtriage/interfaces"
	"github.com/customeros/mailtriage/internal/enum"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
	"github.com/customeros/mailtriage/internal/utils"
)

const (
	Threshold = 50

	SpamLabel = "SPAM"

	senderWeight      = 40
	indicatorWeight   = 10
	indicatorCap      = 30
	labelWeight       = 50
	unsubscribeWeight = 20
	bulkWeight        = 15
	linksWeight       = 15

	maxDirectRecipients = 10
	maxLinks            = 5
	maxClickHere        = 2
)

type spamService struct {
	log        logger.Logger
	indicators []string
}

func NewSpamService(log logger.Logger, policy models.Policy) interfaces.SpamService {
	return &spamService{
		log:        log,
		indicators: policy.Normalized().SpamIndicators,
	}
}

// Score adds up independent spam signals. The total is not capped.
func (s *spamService) Score(msg *models.MessageRecord, classification *models.ClassificationResult) int {
	text := msg.FullText()
	score := 0

	if classification != nil && classification.SenderType == enum.SenderSpam {
		score += senderWeight
	}
	score += min(utils.CountMatches(text, s.indicators)*indicatorWeight, indicatorCap)
	if msg.HasLabel(SpamLabel) {
		score += labelWeight
	}
	if strings.Contains(text, "unsubscribe") {
		score += unsubscribeWeight
	}
	if len(msg.Recipients) == 0 || len(msg.Recipients) > maxDirectRecipients {
		score += bulkWeight
	}
	if strings.Count(text, "http") > maxLinks || strings.Count(text, "click here") > maxClickHere {
		score += linksWeight
	}
	return score
}

func (s *spamService) IsSpam(msg *models.MessageRecord, classification *models.ClassificationResult) bool {
	score := s.Score(msg, classification)
	spam := score >= Threshold
	if spam {
		s.log.Infof("message %s marked as spam (score: %d)", msg.MessageID, score)
	} else {
		s.log.Debugf("message %s not spam (score: %d)", msg.MessageID, score)
	}
	return spam
}
