package dto

import (
	"github.com/customeros/mailtriage/internal/models"
)

// TriageRequest is the body of POST /v1/triage. Missing options fall back to
// the defaults; Scopes, when set, override Capabilities.
type TriageRequest struct {
	Messages     []*models.MessageRecord `json:"messages" binding:"required"`
	Options      *models.RunOptions      `json:"options,omitempty"`
	Capabilities *models.Capabilities    `json:"capabilities,omitempty"`
	Scopes       []string                `json:"scopes,omitempty"`
}

type TriageResponse struct {
	Status  string                   `json:"status"`
	BatchID string                   `json:"batch_id"`
	Mode    string                   `json:"mode"`
	Report  *Report                  `json:"report"`
	Records []*models.DecisionRecord `json:"records,omitempty"`
}

type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}
