package drafting

import (
	"time"

	"github.com/customeros/mailtriage/internal/enum"
	"github.com/customeros/mailtriage/internal/models"
)

const day = 24 * time.Hour

var followUpIntents = []enum.Intent{enum.IntentQuestion, enum.IntentRequest, enum.IntentMeeting}

const (
	followUpMeeting  = "Hi,\n\nI wanted to follow up on my previous email regarding scheduling a meeting. Have you had a chance to review your calendar?\n\nLooking forward to hearing from you.\n\nBest regards"
	followUpQuestion = "Hi,\n\nI wanted to check in regarding my previous question. Please let me know if you need any clarification.\n\nThanks!"
	followUpRequest  = "Hi,\n\nJust following up on my previous request. Please let me know if you have any updates.\n\nThank you!"
	followUpDefault  = "Hi,\n\nI wanted to follow up on my previous email. Please let me know if you have any questions.\n\nBest regards"
)

// FollowUps returns at most one reminder, only for questions, requests and
// meetings.
func (s *draftingService) FollowUps(msg *models.MessageRecord, intent *models.IntentDetection, now time.Time) []models.FollowUp {
	if !NeedsFollowUp(intent) {
		return nil
	}
	f := models.FollowUp{
		EmailID:       msg.MessageID,
		Subject:       "Follow-up: " + msg.Subject,
		SuggestedDate: FollowUpDate(intent, now),
		Reason:        followUpReason(intent),
		DraftMessage:  followUpMessage(intent),
	}
	s.log.Infof("follow-up for %s suggested on %s", msg.MessageID, f.SuggestedDate.Format(time.DateOnly))
	return []models.FollowUp{f}
}

func NeedsFollowUp(intent *models.IntentDetection) bool {
	for _, i := range followUpIntents {
		if intent.Has(i) {
			return true
		}
	}
	return false
}

// FollowUpDate is one day out for urgent items, two for meetings, three for
// questions and five otherwise.
func FollowUpDate(intent *models.IntentDetection, now time.Time) time.Time {
	switch {
	case intent.Has(enum.IntentUrgent):
		return now.Add(day)
	case intent.Has(enum.IntentMeeting):
		return now.Add(2 * day)
	case intent.Has(enum.IntentQuestion):
		return now.Add(3 * day)
	default:
		return now.Add(5 * day)
	}
}

func followUpReason(intent *models.IntentDetection) string {
	switch {
	case intent.Has(enum.IntentUrgent):
		return "Urgent matter - follow up if no response"
	case intent.Has(enum.IntentMeeting):
		return "Meeting request pending - check availability"
	case intent.Has(enum.IntentQuestion):
		return "Question asked - follow up if unanswered"
	case intent.Has(enum.IntentRequest):
		return "Request made - verify completion"
	default:
		return "Check status of this conversation"
	}
}

func followUpMessage(intent *models.IntentDetection) string {
	switch {
	case intent.Has(enum.IntentMeeting):
		return followUpMeeting
	case intent.Has(enum.IntentQuestion):
		return followUpQuestion
	case intent.Has(enum.IntentRequest):
		return followUpRequest
	default:
		return followUpDefault
	}
}
