package conflict

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailtriage/internal/enum"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
)

var base = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func record(id, sender string, offset time.Duration) *models.DecisionRecord {
	return models.NewDecisionRecord(&models.MessageRecord{
		MessageID: id,
		Sender:    sender,
		Date:      base.Add(offset),
	})
}

func ids(records []*models.DecisionRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID())
	}
	return out
}

func TestResolve_KeepsLatestPerSender(t *testing.T) {
	a1 := record("a1", "alice@acme.org", 0)
	b1 := record("b1", "bob@acme.org", time.Minute)
	a2 := record("a2", "alice@acme.org", 2*time.Hour)
	a3 := record("a3", "alice@acme.org", time.Hour)

	svc := NewConflictService(logger.NewNopLogger())
	active, superseded := svc.Resolve([]*models.DecisionRecord{a1, b1, a2, a3})

	assert.Equal(t, []string{"b1", "a2"}, ids(active))
	assert.Equal(t, []string{"a1", "a3"}, ids(superseded))
	for _, r := range superseded {
		assert.True(t, r.IsBlocked())
		assert.Equal(t, enum.StatusBlocked, r.Status())
		require.Len(t, r.Notes(), 1)
		assert.Equal(t, "Superseded by newer email from same sender: a2", r.Notes()[0])
	}
	assert.False(t, a2.IsBlocked())
	assert.Empty(t, a2.Notes())
}

func TestResolve_NoConflicts(t *testing.T) {
	records := []*models.DecisionRecord{
		record("a", "alice@acme.org", 0),
		record("b", "bob@acme.org", 0),
	}
	svc := NewConflictService(logger.NewNopLogger())
	active, superseded := svc.Resolve(records)

	assert.Equal(t, records, active)
	assert.Empty(t, superseded)
}

func TestFindConflicts_ExactSenderMatch(t *testing.T) {
	records := []*models.DecisionRecord{
		record("a", "alice@acme.org", 0),
		record("b", "Alice@acme.org", time.Minute),
		record("c", "alice@acme.org", 2*time.Minute),
	}
	svc := NewConflictService(logger.NewNopLogger())
	conflicts := svc.FindConflicts(records)

	require.Len(t, conflicts, 1)
	assert.Equal(t, []string{"a", "c"}, ids(conflicts["alice@acme.org"]))
}

func TestLatest_TieKeepsFirst(t *testing.T) {
	first := record("first", "x@acme.org", 0)
	second := record("second", "x@acme.org", 0)

	latest, older := Latest([]*models.DecisionRecord{first, second})

	assert.Equal(t, "first", latest.ID())
	assert.Equal(t, []string{"second"}, ids(older))
}
