package conflict

import (
	"sort"

	"github.com/customeros/mailtriage/interfaces"
	"github.com/customeros/mailtriage/internal/enum"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
)

type conflictService struct {
	log logger.Logger
}

func NewConflictService(log logger.Logger) interfaces.ConflictService {
	return &conflictService{log: log}
}

// FindConflicts groups records by the exact sender string and keeps only
// senders with more than one record.
func (s *conflictService) FindConflicts(records []*models.DecisionRecord) map[string][]*models.DecisionRecord {
	bySender := make(map[string][]*models.DecisionRecord)
	for _, r := range records {
		bySender[r.Message.Sender] = append(bySender[r.Message.Sender], r)
	}
	conflicts := make(map[string][]*models.DecisionRecord)
	for sender, list := range bySender {
		if len(list) > 1 {
			conflicts[sender] = list
		}
	}
	if len(conflicts) > 0 {
		s.log.Warnf("found %d sender(s) with multiple messages", len(conflicts))
	}
	return conflicts
}

// Resolve keeps the newest record per conflicting sender. Older records are
// blocked and annotated before they leave the active set. Active records
// keep their batch order.
func (s *conflictService) Resolve(records []*models.DecisionRecord) (active, superseded []*models.DecisionRecord) {
	conflicts := s.FindConflicts(records)
	if len(conflicts) == 0 {
		return records, nil
	}

	dropped := make(map[*models.DecisionRecord]struct{})
	for sender, list := range conflicts {
		latest, older := Latest(list)
		for _, r := range older {
			r.AddNote("Superseded by newer email from same sender: %s", latest.ID())
			r.Block()
			r.SetStatus(enum.StatusBlocked)
			dropped[r] = struct{}{}
		}
		s.log.Infof("sender %s: kept %s, superseded %d older message(s)", sender, latest.ID(), len(older))
	}

	active = make([]*models.DecisionRecord, 0, len(records)-len(dropped))
	for _, r := range records {
		if _, ok := dropped[r]; ok {
			superseded = append(superseded, r)
			continue
		}
		active = append(active, r)
	}
	return active, superseded
}

// Latest returns the record with the newest message date. On equal dates the
// earlier record in the list wins.
func Latest(list []*models.DecisionRecord) (latest *models.DecisionRecord, older []*models.DecisionRecord) {
	if len(list) == 0 {
		return nil, nil
	}
	sorted := make([]*models.DecisionRecord, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Message.Date.After(sorted[j].Message.Date)
	})
	return sorted[0], sorted[1:]
}
