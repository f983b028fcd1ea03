package engine

import (
	"github.com/customeros/mailtriage/interfaces"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
	"github.com/customeros/mailtriage/services/categorizer"
	"github.com/customeros/mailtriage/services/classifier"
	"github.com/customeros/mailtriage/services/conflict"
	"github.com/customeros/mailtriage/services/dnd"
	"github.com/customeros/mailtriage/services/drafting"
	"github.com/customeros/mailtriage/services/guardrails"
	"github.com/customeros/mailtriage/services/intent"
	"github.com/customeros/mailtriage/services/legal"
	"github.com/customeros/mailtriage/services/priority"
	"github.com/customeros/mailtriage/services/spam"
)

// Stages holds one implementation per pipeline step.
type Stages struct {
	Classifier  interfaces.ClassifierService
	Intent      interfaces.IntentService
	Priority    interfaces.PriorityService
	Spam        interfaces.SpamService
	Categorizer interfaces.CategorizerService
	Conflict    interfaces.ConflictService
	Legal       interfaces.LegalService
	DND         interfaces.DNDService
	Guardrails  interfaces.GuardrailService
	Drafting    interfaces.DraftingService
}

// NewStages wires the rule based stages for a policy. generator may be nil.
func NewStages(log logger.Logger, policy models.Policy, generator interfaces.DraftGenerator) Stages {
	return Stages{
		Classifier:  classifier.NewClassifierService(log.With("stage", "classifier"), policy),
		Intent:      intent.NewIntentService(log.With("stage", "intent"), policy),
		Priority:    priority.NewPriorityService(log.With("stage", "priority"), policy),
		Spam:        spam.NewSpamService(log.With("stage", "spam"), policy),
		Categorizer: categorizer.NewCategorizerService(log.With("stage", "categorizer")),
		Conflict:    conflict.NewConflictService(log.With("stage", "conflict")),
		Legal:       legal.NewLegalService(log.With("stage", "legal"), policy),
		DND:         dnd.NewDNDService(log.With("stage", "dnd"), policy),
		Guardrails:  guardrails.NewGuardrailService(log.With("stage", "guardrails"), policy),
		Drafting:    drafting.NewDraftingService(log.With("stage", "drafting"), policy, generator),
	}
}
