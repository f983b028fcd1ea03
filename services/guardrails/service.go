package guardrails

import (
	"github.com/customeros/mailtriage/interfaces"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
)

// guardrailService bundles the PII, domain and tone checks. Each check
// appends its own flag and is switched by a policy toggle.
type guardrailService struct {
	log    logger.Logger
	policy models.Policy
}

func NewGuardrailService(log logger.Logger, policy models.Policy) interfaces.GuardrailService {
	return &guardrailService{
		log:    log,
		policy: policy.Normalized(),
	}
}
