package drafting

import (
	"strings"
	"time"

	"github.com/customeros/mailtriage/internal/models"
	"github.com/customeros/mailtriage/internal/utils"
)

const (
	businessHoursStart = 9
	businessHoursEnd   = 18

	minDraftLength = 50
)

var (
	pushyPhrases = []string{"asap", "immediately", "right now", "urgent", "must", "need to", "have to", "demand"}
	closings     = []string{"regards", "sincerely", "thanks", "best", "thank you"}
)

// ShouldDelay is true when the draft needs a tone review or now is outside
// business hours.
func (s *draftingService) ShouldDelay(draft *models.DraftReply, now time.Time) bool {
	if draft == nil {
		return false
	}
	toneOK := PreservesTone(draft.Body)
	afterHours := IsAfterHours(now)
	if !toneOK || afterHours {
		var reasons []string
		if !toneOK {
			reasons = append(reasons, "tone needs review")
		}
		if afterHours {
			reasons = append(reasons, "after business hours")
		}
		s.log.Infof("draft should be delayed: %s", strings.Join(reasons, ", "))
		return true
	}
	return false
}

// PreservesTone wants a polite body of at least 50 characters with a closing.
func PreservesTone(body string) bool {
	lower := strings.ToLower(body)
	if utils.ContainsAny(lower, pushyPhrases) {
		return false
	}
	if len(body) < minDraftLength {
		return false
	}
	return utils.ContainsAny(lower, closings)
}

// IsAfterHours covers weekends and anything outside 09:00-18:00 in now's
// location.
func IsAfterHours(now time.Time) bool {
	if wd := now.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return true
	}
	start := time.Date(now.Year(), now.Month(), now.Day(), businessHoursStart, 0, 0, 0, now.Location())
	end := time.Date(now.Year(), now.Month(), now.Day(), businessHoursEnd, 0, 0, 0, now.Location())
	return now.Before(start) || now.After(end)
}
