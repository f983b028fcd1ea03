package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/mailtriage/config"
	"github.com/customeros/mailtriage/dto"
	"github.com/customeros/mailtriage/interfaces"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
	"github.com/customeros/mailtriage/internal/tracing"
)

const (
	draftReplyPath = "/v1/draft-reply"
	maxBodyChars   = 4000
)

const replyInstructions = "Write a short professional reply to this email. " +
	"Do not promise payments, sign agreements or share personal data. " +
	"End with a polite closing."

type aiService struct {
	log    logger.Logger
	cfg    *config.AIConfig
	client *http.Client
}

// NewAIService returns a DraftGenerator backed by an HTTP text generation
// endpoint. The engine treats any error as "no generated body".
func NewAIService(log logger.Logger, cfg *config.AIConfig) interfaces.DraftGenerator {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &aiService{
		log:    log,
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// BuildRequest is the generation request for one message.
func BuildRequest(msg *models.MessageRecord, intent *models.IntentDetection) dto.DraftReplyRequest {
	body := msg.BodyText
	if r := []rune(body); len(r) > maxBodyChars {
		body = string(r[:maxBodyChars])
	}
	return dto.DraftReplyRequest{
		Subject:      msg.Subject,
		FromEmail:    msg.Sender,
		FromName:     msg.SenderName,
		Intent:       intent.PrimaryIntent().String(),
		EmailBody:    body,
		Instructions: replyInstructions,
	}
}

func (s *aiService) GenerateReply(ctx context.Context, msg *models.MessageRecord, intent *models.IntentDetection) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "aiService.GenerateReply")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagMessage(span, msg.MessageID)

	if s.cfg.Url == "" {
		return "", errors.New("text generation endpoint not configured")
	}

	request := BuildRequest(msg, intent)
	tracing.LogObjectAsJson(span, "request", request)

	payload, err := json.Marshal(request)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrap(err, "failed to marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(s.cfg.Url, "/")+draftReplyPath, bytes.NewBuffer(payload))
	if err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.ApiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.ApiKey)
	}
	req = tracing.InjectSpanContextIntoHTTPRequest(req, span)

	resp, err := s.client.Do(req)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrap(err, "unable to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err = fmt.Errorf("request failed with status code %d: %s", resp.StatusCode, string(body))
		tracing.TraceErr(span, err)
		return "", err
	}

	var response dto.DraftReplyResponse
	if err := json.Unmarshal(body, &response); err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrap(err, "failed to unmarshal response")
	}
	tracing.LogObjectAsJson(span, "response", response)

	reply := strings.TrimSpace(response.Body)
	if reply == "" {
		return "", errors.New("empty reply generated")
	}
	s.log.Debugf("reply generated for %s (request %s)", msg.MessageID, response.RequestID)
	return reply, nil
}
