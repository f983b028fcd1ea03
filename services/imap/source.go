package imap

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/emersion/go-imap"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/mailtriage/config"
	"github.com/customeros/mailtriage/interfaces"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
	"github.com/customeros/mailtriage/internal/tracing"
	"github.com/customeros/mailtriage/services/mail"
)

// imapSource reads the newest messages of one folder. The folder is selected
// read-only and bodies are fetched with BODY.PEEK, so no flags change.
type imapSource struct {
	log      logger.Logger
	cfg      *config.IMAPConfig
	screener interfaces.ScreenerService
}

func NewIMAPSource(log logger.Logger, cfg *config.IMAPConfig, screener interfaces.ScreenerService) interfaces.MailSource {
	return &imapSource{log: log, cfg: cfg, screener: screener}
}

func (s *imapSource) FetchMessages(ctx context.Context, limit int) ([]*models.MessageRecord, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IMAPSource.FetchMessages")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("folder", s.folder(), "limit", limit)

	c, err := s.connect(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	defer s.disconnect(c)

	// Read-only mode
	if _, err := c.Select(s.folder(), true); err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(err, "failed to select %s", s.folder())
	}

	seqNums, err := c.Search(searchCriteria(s.cfg.UnseenOnly))
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to search folder")
	}
	seqNums = newest(seqNums, limit)
	if len(seqNums) == 0 {
		return nil, nil
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(seqNums...)
	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchUid, section.FetchItem()}

	fetched := make(chan *imap.Message, 16)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqSet, items, fetched)
	}()

	var messages []*models.MessageRecord
	for m := range fetched {
		msg, err := s.toRecord(ctx, m, section)
		if err != nil {
			s.log.Warnf("skipping uid %d: %v", m.Uid, err)
			continue
		}
		messages = append(messages, msg)
	}
	if err := <-done; err != nil {
		tracing.TraceErr(span, err)
		return messages, errors.Wrap(err, "failed to fetch messages")
	}

	span.LogKV("messages", len(messages))
	s.log.Infof("Read %d messages from %s", len(messages), s.folder())
	return messages, nil
}

func (s *imapSource) toRecord(ctx context.Context, m *imap.Message, section *imap.BodySectionName) (*models.MessageRecord, error) {
	body := m.GetBody(section)
	if body == nil {
		return nil, errors.New("message has no body")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read body")
	}
	msg, headers, err := mail.ParseEML(data)
	if err != nil {
		return nil, err
	}
	if msg.MessageID == "" {
		msg.MessageID = uidID(m.Uid)
	}
	if msg.ThreadID == "" {
		msg.ThreadID = msg.MessageID
	}
	mail.ApplyScreening(ctx, s.screener, msg, headers)
	return msg, nil
}

func (s *imapSource) folder() string {
	if s.cfg.Folder == "" {
		return "INBOX"
	}
	return s.cfg.Folder
}

func searchCriteria(unseenOnly bool) *imap.SearchCriteria {
	criteria := imap.NewSearchCriteria()
	if unseenOnly {
		criteria.WithoutFlags = []string{imap.SeenFlag}
	}
	return criteria
}

// newest keeps the last limit sequence numbers in ascending order.
func newest(seqNums []uint32, limit int) []uint32 {
	out := append([]uint32(nil), seqNums...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

func uidID(uid uint32) string {
	return fmt.Sprintf("imap-uid-%d", uid)
}
