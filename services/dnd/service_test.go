package dnd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailtriage/internal/enum"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
)

func dndPolicy(autoResponder bool) models.Policy {
	p := models.DefaultPolicy()
	p.DNDMode = true
	p.AutoResponder = autoResponder
	p.AllowedDomains = []string{"partner.com"}
	return p
}

func record(domain string, vip, internal bool, score int) *models.DecisionRecord {
	rec := models.NewDecisionRecord(&models.MessageRecord{MessageID: "m1", Sender: "x@" + domain})
	rec.Classification = &models.ClassificationResult{SenderDomain: domain, IsVIP: vip, IsInternal: internal}
	rec.Priority = &models.PriorityScore{Score: score}
	return rec
}

func TestCheckToolAlert(t *testing.T) {
	svc := NewDNDService(logger.NewNopLogger(), models.DefaultPolicy())

	assert.Nil(t, svc.CheckToolAlert(models.FullCapabilities()))

	flag := svc.CheckToolAlert(models.Capabilities{CanRead: true, CanDraft: true})
	require.NotNil(t, flag)
	assert.Equal(t, enum.FlagToolLimitation, flag.FlagType)
	assert.Equal(t, enum.SeverityMedium, flag.Severity)
	assert.Equal(t, "draft_only", flag.Details["mode"])
}

func TestForceDraftOnly_NeverBlocks(t *testing.T) {
	svc := NewDNDService(logger.NewNopLogger(), models.DefaultPolicy())
	rec := record("acme.org", false, false, 40)
	require.NoError(t, rec.AttachDraft(&models.DraftReply{Body: "ok"}))

	flag := svc.CheckToolAlert(models.Capabilities{CanRead: true})
	svc.ForceDraftOnly(rec, *flag)

	assert.False(t, rec.IsBlocked())
	assert.True(t, rec.DraftOnly)
	assert.True(t, rec.RequiresApproval)
	assert.True(t, rec.Draft().RequiresApproval)
	assert.True(t, rec.HasFlag(enum.FlagToolLimitation))
	assert.Equal(t, []string{"send permission not granted - Draft only mode"}, rec.Notes())
}

func TestIsExternalDuringDND(t *testing.T) {
	on := NewDNDService(logger.NewNopLogger(), dndPolicy(true))
	off := NewDNDService(logger.NewNopLogger(), models.DefaultPolicy())

	assert.True(t, on.IsExternalDuringDND(record("acme.org", false, false, 0)))
	assert.False(t, on.IsExternalDuringDND(record("partner.com", false, false, 0)))
	assert.False(t, on.IsExternalDuringDND(record("mycorp.io", false, true, 0)))
	assert.False(t, off.IsExternalDuringDND(record("acme.org", false, false, 0)))
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name          string
		vip           bool
		score         int
		autoResponder bool
		want          enum.DNDDecision
		blocked       bool
		note          string
	}{
		{"vip urgent", true, 85, true, enum.DNDDraftAllowed, false, noteVIPUrgent},
		{"vip only", true, 40, true, enum.DNDShowWarning, false, noteVIP},
		{"urgent only", false, 80, true, enum.DNDShowWarning, false, noteUrgent},
		{"blocked with auto responder", false, 79, true, enum.DNDSendingBlocked, true, noteAutoResponder},
		{"blocked and queued", false, 10, false, enum.DNDSendingBlocked, true, noteQueued},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewDNDService(logger.NewNopLogger(), dndPolicy(tt.autoResponder))
			rec := record("acme.org", tt.vip, false, tt.score)
			rec.SetRequiresReply(true)

			got := svc.Decide(rec)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, rec.DNDDecision)
			assert.Equal(t, tt.blocked, rec.IsBlocked())
			assert.Equal(t, !tt.blocked, rec.RequiresReply())
			assert.Equal(t, []string{tt.note}, rec.Notes())
			if tt.blocked {
				assert.Equal(t, enum.StatusBlocked, rec.Status())
			}
		})
	}
}
