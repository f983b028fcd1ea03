package categorizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/customeros/mailtriage/internal/enum"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
)

func intents(list ...enum.Intent) *models.IntentDetection {
	return &models.IntentDetection{Intents: list}
}

func TestCategorize(t *testing.T) {
	actionLegal := intents(enum.IntentUrgent, enum.IntentLegal, enum.IntentFinance)
	actionLegal.ActionRequired = true

	question := intents(enum.IntentQuestion)
	question.QuestionDetected = true

	tests := []struct {
		name   string
		intent *models.IntentDetection
		spam   bool
		want   enum.Category
	}{
		{"spam overrides legal and action", actionLegal, true, enum.CategorySpam},
		{"legal before finance", actionLegal, false, enum.CategoryLegal},
		{"finance", intents(enum.IntentFinance), false, enum.CategoryFinance},
		{"question is action", question, false, enum.CategoryAction},
		{"meeting waits", intents(enum.IntentMeeting), false, enum.CategoryWaiting},
		{"notification", intents(enum.IntentNotification), false, enum.CategoryFYI},
		{"informational", intents(enum.IntentInformational), false, enum.CategoryFYI},
		{"sales falls through to default", intents(enum.IntentSales), false, enum.CategoryFYI},
		{"nil intent", nil, false, enum.CategoryFYI},
	}

	svc := NewCategorizerService(logger.NewNopLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.Categorize(tt.intent, &models.PriorityScore{Score: 90}, tt.spam))
		})
	}
}

func TestRulesOrder(t *testing.T) {
	var got []enum.Category
	for _, r := range Rules {
		got = append(got, r.Category)
	}
	assert.Equal(t, []enum.Category{
		enum.CategorySpam,
		enum.CategoryLegal,
		enum.CategoryFinance,
		enum.CategoryAction,
		enum.CategoryWaiting,
		enum.CategoryFYI,
	}, got)
}
