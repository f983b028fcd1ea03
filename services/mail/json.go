package mail

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/mailtriage/interfaces"
	triage_errors "github.com/customeros/mailtriage/internal/errors"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
	"github.com/customeros/mailtriage/internal/tracing"
)

// jsonSource reads a JSON array of already parsed messages.
type jsonSource struct {
	log  logger.Logger
	path string
}

func NewJSONSource(log logger.Logger, path string) interfaces.MailSource {
	return &jsonSource{log: log, path: path}
}

func (s *jsonSource) FetchMessages(ctx context.Context, limit int) ([]*models.MessageRecord, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "JSONSource.FetchMessages")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	var r io.Reader
	if s.path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(s.path)
		if err != nil {
			tracing.TraceErr(span, err)
			return nil, errors.Wrap(triage_errors.ErrSourceUnavailable, err.Error())
		}
		defer f.Close()
		r = f
	}

	messages, err := DecodeMessages(r)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if limit > 0 && len(messages) > limit {
		messages = messages[:limit]
	}
	s.log.Infof("Read %d messages from %s", len(messages), s.path)
	return messages, nil
}

// DecodeMessages reads a JSON array of messages and fills the plain body
// from the HTML body when only the latter is present.
func DecodeMessages(r io.Reader) ([]*models.MessageRecord, error) {
	var messages []*models.MessageRecord
	if err := json.NewDecoder(r).Decode(&messages); err != nil {
		return nil, errors.Wrap(err, "failed to decode messages")
	}
	for _, msg := range messages {
		if msg == nil {
			continue
		}
		if msg.BodyText == "" && msg.BodyHTML != "" {
			if text, err := HTMLToText(msg.BodyHTML); err == nil {
				msg.BodyText = text
			}
		}
		if msg.ThreadID == "" {
			msg.ThreadID = msg.MessageID
		}
		if msg.Snippet == "" {
			msg.Snippet = Snippet(msg.BodyText)
		}
	}
	return messages, nil
}
