package triage

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	custom_err "github.com/customeros/mailtriage/api/errors"
	"github.com/customeros/mailtriage/dto"
	"github.com/customeros/mailtriage/interfaces"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
	"github.com/customeros/mailtriage/internal/tracing"
)

type TriageHandler struct {
	log    logger.Logger
	runner interfaces.TriageRunner
	caps   models.Capabilities
}

// NewTriageHandler serves batch triage. caps applies when a request names
// neither scopes nor capabilities.
func NewTriageHandler(log logger.Logger, runner interfaces.TriageRunner, caps models.Capabilities) *TriageHandler {
	return &TriageHandler{log: log, runner: runner, caps: caps}
}

func (h *TriageHandler) Triage() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "TriageHandler.Triage", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		var request dto.TriageRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Status: "error", Error: err.Error()})
			return
		}
		if verr := validate(&request); verr.HasErrors() {
			tracing.TraceErr(span, verr)
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Status: "error", Error: verr.Error()})
			return
		}

		opts := models.DefaultRunOptions()
		if request.Options != nil {
			opts = *request.Options
		}
		caps := h.capabilities(&request)
		span.LogKV("messages", len(request.Messages), "mode", caps.Mode().String())

		report := h.runner.RunMessages(ctx, request.Messages, caps, opts)
		tracing.TagBatch(span, report.BatchID)

		c.JSON(http.StatusOK, dto.TriageResponse{
			Status:  "success",
			BatchID: report.BatchID,
			Mode:    caps.Mode().String(),
			Report:  report,
		})
	}
}

func (h *TriageHandler) capabilities(request *dto.TriageRequest) models.Capabilities {
	switch {
	case len(request.Scopes) > 0:
		return models.CapabilitiesFromScopes(request.Scopes)
	case request.Capabilities != nil:
		return *request.Capabilities
	default:
		return h.caps
	}
}

// validate checks the fields the engine needs to identify a message. Null
// entries are left for the engine to report.
func validate(request *dto.TriageRequest) *custom_err.MultiErrors {
	verr := custom_err.NewMultiErrors()
	if len(request.Messages) == 0 {
		verr.Add("messages", "at least one message is required")
	}
	for i, msg := range request.Messages {
		if msg == nil {
			continue
		}
		field := fmt.Sprintf("messages[%d]", i)
		if msg.MessageID == "" {
			verr.Add(field, "message_id is required")
		}
		if msg.Sender == "" {
			verr.Add(field, "sender is required")
		}
	}
	return verr
}
