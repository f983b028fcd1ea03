package interfaces

import (
	"context"

	"github.com/customeros/mailtriage/internal/enum"
	"github.com/customeros/mailtriage/internal/models"
)

// Screening is the header level verdict for a raw message.
type Screening struct {
	Classification enum.EmailClassification
	Reason         string
}

type ScreenerService interface {
	Screen(ctx context.Context, msg *models.MessageRecord, headers *models.EmailHeaders) Screening
}
