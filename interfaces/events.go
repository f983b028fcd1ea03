package interfaces

import (
	"context"

	"github.com/customeros/mailtriage/internal/models"
)

// DecisionPublisher announces every decided record of a batch.
type DecisionPublisher interface {
	PublishDecision(ctx context.Context, batchId string, rec *models.DecisionRecord) error
	Close() error
}
