package runner

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/mailtriage/dto"
	"github.com/customeros/mailtriage/interfaces"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
	"github.com/customeros/mailtriage/internal/tracing"
	"github.com/customeros/mailtriage/services/engine"
)

// Config holds the collaborators of a runner. Only Stages and Reports are
// required.
type Config struct {
	Policy  models.Policy
	Workers int
	Stages  engine.Stages
	Reports interfaces.ReportService

	Source     interfaces.MailSource
	Seen       interfaces.SeenFilter
	DraftStore interfaces.DraftStore
	Publisher  interfaces.DecisionPublisher
}

type triageRunner struct {
	log logger.Logger
	cfg Config
}

func NewTriageRunner(log logger.Logger, cfg Config) interfaces.TriageRunner {
	cfg.Policy = cfg.Policy.Normalized()
	return &triageRunner{log: log, cfg: cfg}
}

func (r *triageRunner) RunMessages(ctx context.Context, messages []*models.MessageRecord, caps models.Capabilities, opts models.RunOptions) *dto.Report {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TriageRunner.RunMessages")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("messages", len(messages), "mode", caps.Mode().String())

	eng := engine.NewTriageEngine(r.log, engine.Config{
		Policy:       r.cfg.Policy,
		Capabilities: caps,
		Workers:      r.cfg.Workers,
		DraftStore:   r.cfg.DraftStore,
	}, r.cfg.Stages)

	batch := eng.ProcessBatch(ctx, messages, opts)
	tracing.TagBatch(span, batch.ID)
	r.publish(ctx, batch)
	return r.cfg.Reports.Build(batch)
}

// RunSource reads up to MaxEmails messages from the source and drops the ones
// the seen filter already knows before running them.
func (r *triageRunner) RunSource(ctx context.Context, caps models.Capabilities, opts models.RunOptions) (*dto.Report, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TriageRunner.RunSource")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if r.cfg.Source == nil {
		err := errors.New("no mail source configured")
		tracing.TraceErr(span, err)
		return nil, err
	}
	messages, err := r.cfg.Source.FetchMessages(ctx, r.cfg.Policy.MaxEmails)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to fetch messages")
	}

	fresh, seenErrors := r.unseen(ctx, messages)
	span.LogKV("fetched", len(messages), "fresh", len(fresh))
	if len(fresh) < len(messages) {
		r.log.Infof("skipping %d already triaged message(s)", len(messages)-len(fresh))
	}

	report := r.RunMessages(ctx, fresh, caps, opts)
	report.Errors = append(report.Errors, seenErrors...)
	return report, nil
}

// unseen keeps messages the filter reports as new. A filter error keeps
// the message so nothing is silently dropped.
func (r *triageRunner) unseen(ctx context.Context, messages []*models.MessageRecord) ([]*models.MessageRecord, []string) {
	if r.cfg.Seen == nil {
		return messages, nil
	}
	var (
		fresh []*models.MessageRecord
		errs  []string
	)
	for _, msg := range messages {
		if msg == nil {
			fresh = append(fresh, msg)
			continue
		}
		isNew, err := r.cfg.Seen.IsNew(ctx, msg.MessageID)
		if err != nil {
			r.log.Warnf("seen check failed for %s: %v", msg.MessageID, err)
			errs = append(errs, errors.Wrapf(err, "seen check %s", msg.MessageID).Error())
			fresh = append(fresh, msg)
			continue
		}
		if isNew {
			fresh = append(fresh, msg)
		}
	}
	return fresh, errs
}

func (r *triageRunner) publish(ctx context.Context, batch *models.Batch) {
	if r.cfg.Publisher == nil {
		return
	}
	for _, rec := range batch.AllRecords() {
		if err := r.cfg.Publisher.PublishDecision(ctx, batch.ID, rec); err != nil {
			r.log.Errorf("failed to publish decision for %s: %v", rec.ID(), err)
			batch.AddError(errors.Wrapf(err, "publish %s", rec.ID()).Error())
		}
	}
}
