package interfaces

import (
	"context"

	"github.com/customeros/mailtriage/internal/models"
)

// MailSource supplies already parsed messages for one batch.
type MailSource interface {
	FetchMessages(ctx context.Context, limit int) ([]*models.MessageRecord, error)
}

// DraftStore persists a reply draft and returns its opaque id.
type DraftStore interface {
	CreateDraft(ctx context.Context, draft *models.DraftReply) (string, error)
}

// DraftGenerator produces a reply body. Failure means no generated body.
type DraftGenerator interface {
	GenerateReply(ctx context.Context, msg *models.MessageRecord, intent *models.IntentDetection) (string, error)
}

// SeenFilter reports whether a message id is new, marking it seen.
type SeenFilter interface {
	IsNew(ctx context.Context, messageId string) (bool, error)
}
