package dnd

import (
	"github.com/customeros/mailtriage/interfaces"
	"github.com/customeros/mailtriage/internal/enum"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
)

const (
	UrgentScore = 80

	SendPermissionMissing = "send permission not granted"

	noteVIPUrgent     = "DND MODE: VIP urgent email - draft created"
	noteVIP           = "DND MODE: VIP email - review when available"
	noteUrgent        = "DND MODE: Urgent email - may need attention"
	noteAutoResponder = "DND MODE: Auto-responder sent. Email queued for later review."
	noteQueued        = "DND MODE: Email blocked. Will be reviewed after DND mode ends."
)

type dndService struct {
	log    logger.Logger
	policy models.Policy
}

func NewDNDService(log logger.Logger, policy models.Policy) interfaces.DNDService {
	return &dndService{
		log:    log,
		policy: policy.Normalized(),
	}
}

// CheckToolAlert returns a flag when the mail collaborator cannot send, nil
// otherwise.
func (s *dndService) CheckToolAlert(caps models.Capabilities) *models.SecurityFlag {
	if caps.CanSend {
		return nil
	}
	s.log.Warnf("tool alert: %s", SendPermissionMissing)
	return &models.SecurityFlag{
		FlagType:    enum.FlagToolLimitation,
		Severity:    enum.SeverityMedium,
		Description: "Draft-only mode enforced: " + SendPermissionMissing,
		Details: map[string]any{
			"reason":  SendPermissionMissing,
			"mode":    caps.Mode().String(),
			"missing": caps.Missing(),
		},
		BlocksSending: true,
	}
}

// ForceDraftOnly restricts the record to drafts needing approval. It never
// blocks.
func (s *dndService) ForceDraftOnly(rec *models.DecisionRecord, flag models.SecurityFlag) {
	rec.DraftOnly = true
	rec.RequiresApproval = true
	if d := rec.Draft(); d != nil {
		d.RequiresApproval = true
	}
	rec.AddFlag(flag)
	reason, _ := flag.Details["reason"].(string)
	if reason == "" {
		reason = flag.Description
	}
	rec.AddNote("%s - Draft only mode", reason)
}

// IsExternalDuringDND is only true while DND mode is on and the sender
// domain is neither allowed nor internal.
func (s *dndService) IsExternalDuringDND(rec *models.DecisionRecord) bool {
	if !s.policy.DNDMode {
		return false
	}
	cls := rec.Classification
	if cls == nil {
		return true
	}
	external := !s.policy.IsAllowedDomain(cls.SenderDomain) && !cls.IsInternal
	if external {
		s.log.Warnf("external email while in DND mode: %s", rec.Message.Sender)
	}
	return external
}

func (s *dndService) Decide(rec *models.DecisionRecord) enum.DNDDecision {
	vip := rec.IsVIP()
	urgent := rec.Score() >= UrgentScore

	var decision enum.DNDDecision
	switch {
	case vip && urgent:
		rec.AddNote(noteVIPUrgent)
		decision = enum.DNDDraftAllowed
	case vip:
		rec.AddNote(noteVIP)
		decision = enum.DNDShowWarning
	case urgent:
		rec.AddNote(noteUrgent)
		decision = enum.DNDShowWarning
	default:
		rec.Block()
		rec.SetStatus(enum.StatusBlocked)
		if s.policy.AutoResponder {
			rec.AddNote(noteAutoResponder)
		} else {
			rec.AddNote(noteQueued)
		}
		decision = enum.DNDSendingBlocked
	}
	rec.DNDDecision = decision
	s.log.Infof("DND decision for %s: %s", rec.ID(), decision)
	return decision
}
