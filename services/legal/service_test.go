package legal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailtriage/internal/enum"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
)

func record(subject, body string, score int) *models.DecisionRecord {
	rec := models.NewDecisionRecord(&models.MessageRecord{MessageID: "m1", Subject: subject, BodyText: body})
	rec.Priority = &models.PriorityScore{Score: score}
	return rec
}

func TestIsCritical(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		body    string
		score   int
		want    bool
	}{
		{"two legal keywords", "Contract review", "Please sign the agreement", 75, true},
		{"single legal keyword", "Contract review", "Thoughts welcome", 90, false},
		{"critical legal phrase", "Terms", "We hereby agree to proceed", 70, true},
		{"critical finance phrase", "Hi", "Confirm the wire transfer", 80, true},
		{"two finance keywords", "Invoice", "Payment expected soon", 71, true},
		{"low priority never critical", "Contract", "Binding agreement attached", 69, false},
		{"nothing relevant", "Lunch", "Noon works", 95, false},
	}
	svc := NewLegalService(logger.NewNopLogger(), models.DefaultPolicy())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.IsCritical(record(tt.subject, tt.body, tt.score)))
		})
	}
}

func TestIsCritical_NoPriority(t *testing.T) {
	rec := models.NewDecisionRecord(&models.MessageRecord{Subject: "contract", BodyText: "agreement"})
	svc := NewLegalService(logger.NewNopLogger(), models.DefaultPolicy())
	assert.False(t, svc.IsCritical(rec))
}

func TestEscalate_IsMonotonic(t *testing.T) {
	rec := record("Contract", "binding agreement", 90)
	rec.SetRequiresReply(true)
	require.NoError(t, rec.AttachDraft(&models.DraftReply{Body: "Sure, agreed."}))

	svc := NewLegalService(logger.NewNopLogger(), models.DefaultPolicy())
	svc.Escalate(rec)

	assert.True(t, rec.IsBlocked())
	assert.False(t, rec.RequiresReply())
	assert.Nil(t, rec.Draft())
	assert.Equal(t, enum.StatusBlocked, rec.Status())
	assert.Equal(t, []string{EscalationNote}, rec.Notes())

	flags := rec.Flags()
	require.Len(t, flags, 1)
	assert.Equal(t, enum.FlagLegalFinanceCritical, flags[0].FlagType)
	assert.Equal(t, enum.SeverityCritical, flags[0].Severity)
	assert.True(t, flags[0].BlocksSending)
	assert.Equal(t, true, flags[0].Details["auto_reply_blocked"])

	rec.SetRequiresReply(true)
	assert.False(t, rec.RequiresReply())
	assert.Error(t, rec.AttachDraft(&models.DraftReply{Body: "retry"}))
	assert.False(t, rec.SetStatus(enum.StatusDraftReady))
	assert.Equal(t, enum.StatusBlocked, rec.Status())
}
