package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailtriage/internal/enum"
	triage_errors "github.com/customeros/mailtriage/internal/errors"
)

func newRecord() *DecisionRecord {
	return NewDecisionRecord(&MessageRecord{MessageID: "m1", Sender: "a@b.com"})
}

func TestDecisionRecord_SetStatus(t *testing.T) {
	tests := []struct {
		name   string
		from   enum.ProcessingStatus
		to     enum.ProcessingStatus
		ok     bool
		status enum.ProcessingStatus
	}{
		{"pending to processing", enum.StatusPending, enum.StatusProcessing, true, enum.StatusProcessing},
		{"processing to draft ready", enum.StatusProcessing, enum.StatusDraftReady, true, enum.StatusDraftReady},
		{"skipped stays skipped", enum.StatusSkipped, enum.StatusDraftReady, false, enum.StatusSkipped},
		{"skipped can be blocked", enum.StatusSkipped, enum.StatusBlocked, true, enum.StatusBlocked},
		{"blocked is final", enum.StatusBlocked, enum.StatusSkipped, false, enum.StatusBlocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newRecord()
			require.True(t, rec.SetStatus(tt.from))
			assert.Equal(t, tt.ok, rec.SetStatus(tt.to))
			assert.Equal(t, tt.status, rec.Status())
		})
	}
}

func TestDecisionRecord_BlockIsMonotonic(t *testing.T) {
	rec := newRecord()
	rec.SetRequiresReply(true)
	require.NoError(t, rec.AttachDraft(&DraftReply{Body: "hi"}))

	rec.Block()
	assert.Nil(t, rec.Draft())
	assert.False(t, rec.RequiresReply())

	rec.SetRequiresReply(true)
	assert.False(t, rec.RequiresReply())
	assert.ErrorIs(t, rec.AttachDraft(&DraftReply{Body: "again"}), triage_errors.ErrDraftBlocked)
	assert.False(t, rec.SetStatus(enum.StatusDraftReady))
	assert.True(t, rec.SetStatus(enum.StatusBlocked))
}
