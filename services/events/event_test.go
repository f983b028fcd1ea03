package events

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailtriage/internal/enum"
	"github.com/customeros/mailtriage/internal/models"
	"github.com/customeros/mailtriage/internal/utils"
)

func decided(t *testing.T) *models.DecisionRecord {
	t.Helper()
	rec := models.NewDecisionRecord(&models.MessageRecord{MessageID: "m1", Sender: "a@b.com", Subject: "Hi"})
	rec.Priority = &models.PriorityScore{Score: 72, Level: enum.PriorityHigh}
	rec.Category = enum.CategoryAction
	require.NoError(t, rec.AttachDraft(&models.DraftReply{DraftID: "d1", RequiresApproval: true}))
	rec.AddFlag(models.SecurityFlag{FlagType: enum.FlagToneViolation, Severity: enum.SeverityLow})
	rec.SetStatus(enum.StatusApprovalRequired)
	return rec
}

func TestNewDecisionEvent(t *testing.T) {
	event := NewDecisionEvent(decided(t))

	assert.Equal(t, "m1", event.MessageId)
	assert.Equal(t, "approval_required", event.Status)
	assert.Equal(t, "action", event.Category)
	assert.Equal(t, 72, event.PriorityScore)
	assert.Equal(t, "high", event.PriorityLevel)
	assert.Equal(t, "d1", event.DraftId)
	assert.True(t, event.RequiresApproval)
	assert.False(t, event.IsBlocked)
	assert.Equal(t, []string{"tone_violation"}, event.Flags)
}

func TestNewDecisionEvent_Blocked(t *testing.T) {
	rec := decided(t)
	rec.Block()
	rec.SetStatus(enum.StatusBlocked)

	event := NewDecisionEvent(rec)
	assert.True(t, event.IsBlocked)
	assert.Empty(t, event.DraftId)
	assert.Equal(t, "blocked", event.Status)
}

func TestNewEvent(t *testing.T) {
	ctx := utils.WithCustomContext(context.Background(), &utils.CustomContext{AppSource: "mailtriage-cron"})
	payload := NewDecisionEvent(decided(t))

	event := NewEvent(ctx, "batch_1", "m1", enum.DECISION_RECORD, &payload, "trace-1")

	assert.True(t, strings.HasPrefix(event.Event.Id, "event_"))
	assert.Equal(t, "batch_1", event.Event.BatchId)
	assert.Equal(t, "DecisionEvent", event.Event.EventType)
	assert.Equal(t, enum.DECISION_RECORD, event.Event.EntityType)
	assert.Equal(t, "trace-1", event.Metadata.UberTraceId)
	assert.Equal(t, "mailtriage-cron", event.Metadata.AppSource)
	assert.NotEmpty(t, event.Metadata.Timestamp)
}
