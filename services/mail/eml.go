package mail

import (
	"bytes"
	"context"
	"fmt"
	netmail "net/mail"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jhillyerd/enmime"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/mailtriage/interfaces"
	triage_errors "github.com/customeros/mailtriage/internal/errors"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
	"github.com/customeros/mailtriage/internal/tracing"
)

const snippetLength = 200

// emlSource reads RFC 5322 messages from *.eml files in one directory, in
// file name order.
type emlSource struct {
	log      logger.Logger
	dir      string
	screener interfaces.ScreenerService
}

func NewEMLSource(log logger.Logger, dir string, screener interfaces.ScreenerService) interfaces.MailSource {
	return &emlSource{log: log, dir: dir, screener: screener}
}

func (s *emlSource) FetchMessages(ctx context.Context, limit int) ([]*models.MessageRecord, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EMLSource.FetchMessages")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("dir", s.dir, "limit", limit)

	if _, err := os.Stat(s.dir); err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(triage_errors.ErrSourceUnavailable, err.Error())
	}
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.eml"))
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(triage_errors.ErrSourceUnavailable, err.Error())
	}
	sort.Strings(paths)

	var messages []*models.MessageRecord
	for _, path := range paths {
		if limit > 0 && len(messages) == limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return messages, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			s.log.Warnf("skipping %s: %v", path, err)
			continue
		}
		msg, headers, err := ParseEML(data)
		if err != nil {
			s.log.Warnf("skipping %s: %v", path, err)
			continue
		}
		if msg.MessageID == "" {
			msg.MessageID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		if msg.ThreadID == "" {
			msg.ThreadID = msg.MessageID
		}
		ApplyScreening(ctx, s.screener, msg, headers)
		messages = append(messages, msg)
	}

	span.LogKV("messages", len(messages))
	s.log.Infof("Read %d messages from %s", len(messages), s.dir)
	return messages, nil
}

// ApplyScreening adds the screener's classification label to msg. A nil
// screener leaves the message untouched.
func ApplyScreening(ctx context.Context, screener interfaces.ScreenerService, msg *models.MessageRecord, headers *models.EmailHeaders) {
	if screener == nil {
		return
	}
	screening := screener.Screen(ctx, msg, headers)
	if label := screening.Classification.Label(); label != "" && !msg.HasLabel(label) {
		msg.Labels = append(msg.Labels, label)
	}
}

// ParseEML turns one raw message into a MessageRecord plus the screener
// headers. HTML-only bodies are converted to text.
func ParseEML(data []byte) (*models.MessageRecord, *models.EmailHeaders, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(data))
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to parse message")
	}

	raw := make(map[string][]string)
	for _, key := range env.GetHeaderKeys() {
		if values := env.GetHeaderValues(key); len(values) > 0 {
			raw[key] = values
		}
	}
	subject := env.GetHeader("Subject")
	headers := models.ParseHeaders(raw, subject)

	msg := &models.MessageRecord{
		MessageID: strings.Trim(env.GetHeader("Message-Id"), "<> "),
		ThreadID:  strings.Trim(headers.ThreadRoot(), "<> "),
		Subject:   subject,
		BodyText:  strings.TrimSpace(env.Text),
		BodyHTML:  env.HTML,
	}

	if from := addressList(env, "From"); len(from) > 0 {
		msg.Sender = from[0].Address
		msg.SenderName = from[0].Name
	} else {
		msg.Sender = env.GetHeader("From")
	}
	msg.Recipients = addresses(addressList(env, "To"))
	msg.Cc = addresses(addressList(env, "Cc"))
	msg.Bcc = addresses(addressList(env, "Bcc"))

	if date, err := netmail.ParseDate(env.GetHeader("Date")); err == nil {
		msg.Date = date.UTC()
	}

	if msg.BodyText == "" && msg.BodyHTML != "" {
		if text, err := HTMLToText(msg.BodyHTML); err == nil {
			msg.BodyText = text
		}
	}

	msg.AttachmentCount = len(env.Attachments) + len(env.Inlines)
	msg.HasAttachments = msg.AttachmentCount > 0
	msg.Snippet = Snippet(msg.BodyText)
	return msg, headers, nil
}

func addressList(env *enmime.Envelope, key string) []*netmail.Address {
	list, err := env.AddressList(key)
	if err != nil {
		return nil
	}
	return list
}

func addresses(list []*netmail.Address) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, strings.ToLower(a.Address))
	}
	return out
}

// Snippet is the first characters of the body on one line.
func Snippet(body string) string {
	text := strings.Join(strings.Fields(body), " ")
	if r := []rune(text); len(r) > snippetLength {
		return fmt.Sprintf("%s...", string(r[:snippetLength]))
	}
	return text
}
