package engine

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/customeros/mailtriage/interfaces"
	"github.com/customeros/mailtriage/internal/enum"
	triage_errors "github.com/customeros/mailtriage/internal/errors"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
	"github.com/customeros/mailtriage/internal/tracing"
	"github.com/customeros/mailtriage/internal/utils"
)

// Config carries the per run inputs that are not messages.
type Config struct {
	Policy       models.Policy
	Capabilities models.Capabilities
	// Workers bounds the parallel analysis phase. Zero means GOMAXPROCS.
	Workers int
	// Clock supplies "now" once per batch. Defaults to utils.Now.
	Clock func() time.Time
	// DraftStore receives every produced draft. Optional.
	DraftStore interfaces.DraftStore
}

type triageEngine struct {
	log    logger.Logger
	cfg    Config
	policy models.Policy
	stages Stages
}

func NewTriageEngine(log logger.Logger, cfg Config, stages Stages) interfaces.TriageEngine {
	if cfg.Clock == nil {
		cfg.Clock = utils.Now
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return &triageEngine{
		log:    log,
		cfg:    cfg,
		policy: cfg.Policy.Normalized(),
		stages: stages,
	}
}

// ProcessBatch never fails as a whole. Per message failures end up in
// Batch.Errors and the affected record is skipped.
func (e *triageEngine) ProcessBatch(ctx context.Context, messages []*models.MessageRecord, opts models.RunOptions) *models.Batch {
	now := e.cfg.Clock()
	batch := models.NewBatch(utils.GenerateBatchID(), now)
	ctx = utils.SetBatchIdInContext(ctx, batch.ID)

	span, ctx := opentracing.StartSpanFromContext(ctx, "TriageEngine.ProcessBatch")
	defer span.Finish()
	tracing.SetDefaultEngineSpanTags(ctx, span)
	tracing.TagBatch(span, batch.ID)
	tracing.LogObjectAsJson(span, "options", opts)

	records := e.ingest(batch, messages, opts)
	batch.TotalEmails = len(records)
	if len(records) == 0 {
		e.log.Warnf("batch %s: no messages to process", batch.ID)
		e.finish(batch, now)
		return batch
	}
	e.log.Infof("batch %s: processing %d message(s)", batch.ID, len(records))

	e.analyze(ctx, batch, records, opts, now)

	active, superseded := e.stages.Conflict.Resolve(records)
	batch.Records = active
	batch.Superseded = superseded

	e.handleEdgeCases(ctx, batch)
	e.draftReplies(ctx, batch, opts, now)
	e.applyGuardrails(ctx, batch, opts)

	e.finish(batch, now)
	span.LogKV("processed", batch.Processed, "drafted", batch.Drafted, "blocked", batch.Blocked, "skipped", batch.Skipped)
	e.log.Infof("batch %s: processed %d, drafted %d, blocked %d, skipped %d, errors %d",
		batch.ID, batch.Processed, batch.Drafted, batch.Blocked, batch.Skipped, len(batch.Errors))
	return batch
}

// ingest applies the ingestion limit and the sender filter, then wraps each
// message in a pending record.
func (e *triageEngine) ingest(batch *models.Batch, messages []*models.MessageRecord, opts models.RunOptions) []*models.DecisionRecord {
	var kept []*models.MessageRecord
	for i, msg := range messages {
		if msg == nil {
			batch.AddError(errors.Wrapf(triage_errors.ErrMessageMissing, "input %d", i).Error())
			continue
		}
		kept = append(kept, msg)
	}
	if limit := e.policy.MaxEmails; limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}

	kept = FilterBySender(kept, opts.SenderFilter, opts.LatestOnly)

	records := make([]*models.DecisionRecord, 0, len(kept))
	for _, msg := range kept {
		records = append(records, models.NewDecisionRecord(msg))
	}
	return records
}

// FilterBySender keeps messages whose sender contains filter, ignoring case.
// With latestOnly only the newest match survives. An empty filter keeps
// everything.
func FilterBySender(messages []*models.MessageRecord, filter string, latestOnly bool) []*models.MessageRecord {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		return messages
	}
	var out []*models.MessageRecord
	for _, m := range messages {
		if strings.Contains(strings.ToLower(m.Sender), filter) {
			out = append(out, m)
		}
	}
	if latestOnly && len(out) > 1 {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
		out = out[:1]
	}
	return out
}

// analyze runs the per message stages in parallel. Records are disjoint so no
// locking is needed; the Wait is the barrier before batch wide stages.
func (e *triageEngine) analyze(ctx context.Context, batch *models.Batch, records []*models.DecisionRecord, opts models.RunOptions, now time.Time) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TriageEngine.analyze")
	defer span.Finish()
	tracing.SetDefaultEngineSpanTags(ctx, span)

	failures := make([]string, len(records))
	grp, _ := errgroup.WithContext(ctx)
	grp.SetLimit(e.cfg.Workers)
	for i, rec := range records {
		grp.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					failures[i] = fmt.Sprintf("%s: analysis panic: %v", rec.ID(), r)
				}
			}()
			e.analyzeOne(rec, opts, now)
			return nil
		})
	}
	_ = grp.Wait()

	for i, failure := range failures {
		if failure != "" {
			e.fail(batch, span, records[i], failure)
		}
	}
}

func (e *triageEngine) analyzeOne(rec *models.DecisionRecord, opts models.RunOptions, now time.Time) {
	rec.SetStatus(enum.StatusProcessing)
	msg := rec.Message

	rec.Classification = e.stages.Classifier.Classify(msg)
	if rec.Classification.Notes != "" {
		rec.AddNote("Classification notes: %s", rec.Classification.Notes)
	}
	rec.AddNote("Sender type: %s, VIP: %t", rec.Classification.SenderType, rec.Classification.IsVIP)

	rec.Intent = e.stages.Intent.Detect(msg)
	rec.AddNote("Intent detected: %s", rec.Intent.PrimaryIntent())
	if len(rec.Intent.KeywordsDetected) > 0 {
		rec.AddNote("Keywords: %s", strings.Join(rec.Intent.KeywordsDetected, ", "))
	}
	if len(rec.Intent.UrgencyKeywords) > 0 {
		rec.AddNote("Urgency keywords: %s", strings.Join(rec.Intent.UrgencyKeywords, ", "))
	}
	rec.Deadlines = e.stages.Intent.ExtractDeadlines(msg)
	if len(rec.Deadlines) > 0 {
		rec.AddNote("Deadlines: %s", strings.Join(rec.Deadlines, ", "))
	}

	rec.Priority = e.stages.Priority.Score(msg, rec.Classification, rec.Intent, now)
	rec.AddNote("Priority score: %d/100 (%s)", rec.Priority.Score, strings.ToUpper(rec.Priority.Level.String()))
	rec.AddNote("Priority reasoning: %s", rec.Priority.Reasoning)

	rec.IsSpam = e.stages.Spam.IsSpam(msg, rec.Classification)
	rec.Category = e.stages.Categorizer.Categorize(rec.Intent, rec.Priority, rec.IsSpam)
	rec.AddNote("Category assigned: %s", rec.Category)

	if rec.IsSpam {
		rec.AddNote("Marked as SPAM by spam filter")
		rec.Block()
		rec.SetStatus(enum.StatusBlocked)
		return
	}

	if opts.OnlyUrgent && rec.Priority.Level != enum.PriorityHigh {
		rec.AddNote("Skipped (only urgent requested)")
		rec.SetStatus(enum.StatusSkipped)
		return
	}

	rec.SetRequiresReply(rec.Intent.ActionRequired || rec.Intent.QuestionDetected || rec.Category == enum.CategoryAction)
	if rec.RequiresReply() {
		rec.AddNote("Marked as requiring a reply")
	} else {
		rec.AddNote("No reply required")
	}
}

func (e *triageEngine) handleEdgeCases(ctx context.Context, batch *models.Batch) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TriageEngine.handleEdgeCases")
	defer span.Finish()
	tracing.SetDefaultEngineSpanTags(ctx, span)

	for _, rec := range batch.Records {
		if isOpen(rec) {
			e.safely(batch, span, rec, "legal", func() {
				if e.stages.Legal.IsCritical(rec) {
					e.stages.Legal.Escalate(rec)
				}
			})
		}
	}

	toolAlert := e.stages.DND.CheckToolAlert(e.cfg.Capabilities)
	for _, rec := range batch.Records {
		if !isOpen(rec) {
			continue
		}
		e.safely(batch, span, rec, "dnd", func() {
			if toolAlert != nil {
				e.stages.DND.ForceDraftOnly(rec, *toolAlert)
			}
			if e.stages.DND.IsExternalDuringDND(rec) {
				e.stages.DND.Decide(rec)
			}
		})
	}
}

func (e *triageEngine) draftReplies(ctx context.Context, batch *models.Batch, opts models.RunOptions, now time.Time) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TriageEngine.draftReplies")
	defer span.Finish()
	tracing.SetDefaultEngineSpanTags(ctx, span)

	if !opts.DraftReplies {
		return
	}
	for _, rec := range batch.Records {
		if !isOpen(rec) || (!rec.RequiresReply() && !opts.ForceReply) {
			continue
		}
		e.safely(batch, span, rec, "drafting", func() {
			e.draftOne(ctx, batch, rec, opts, now)
		})
	}
}

func (e *triageEngine) draftOne(ctx context.Context, batch *models.Batch, rec *models.DecisionRecord, opts models.RunOptions, now time.Time) {
	draft := e.stages.Drafting.Draft(ctx, rec.Message, rec.Intent, now)
	if rec.DraftOnly || opts.RequireApproval {
		draft.RequiresApproval = true
	}
	if err := rec.AttachDraft(draft); err != nil {
		rec.AddNote("Draft discarded: %s", err.Error())
		return
	}
	rec.AddNote("Draft reply generated")

	if draft.ReplyAllRisk {
		rec.AddFlag(models.SecurityFlag{
			FlagType:    enum.FlagReplyAllRisk,
			Severity:    enum.SeverityMedium,
			Description: "Large reply-all detected - requires approval",
			Details: map[string]any{
				"total_recipients":    len(rec.Message.Recipients) + len(rec.Message.Cc),
				"external_recipients": draft.ExternalRecipients,
			},
		})
	}

	if e.cfg.DraftStore != nil {
		draftId, err := e.cfg.DraftStore.CreateDraft(ctx, draft)
		if err != nil {
			err = errors.Wrapf(err, "failed to save draft for %s", rec.ID())
			tracing.TraceErr(opentracing.SpanFromContext(ctx), err)
			e.log.Error(err.Error())
			batch.AddError(err.Error())
			rec.AddNote("Draft could not be saved")
		} else {
			draft.DraftID = draftId
		}
	}

	if e.stages.Drafting.ShouldDelay(draft, now) && opts.IncludeFollowUps {
		rec.FollowUps = e.stages.Drafting.FollowUps(rec.Message, rec.Intent, now)
	}
}

func (e *triageEngine) applyGuardrails(ctx context.Context, batch *models.Batch, opts models.RunOptions) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TriageEngine.applyGuardrails")
	defer span.Finish()
	tracing.SetDefaultEngineSpanTags(ctx, span)

	for _, rec := range batch.Records {
		if !isOpen(rec) {
			continue
		}
		e.safely(batch, span, rec, "guardrails", func() {
			e.guardOne(rec, opts)
		})
	}
}

func (e *triageEngine) guardOne(rec *models.DecisionRecord, opts models.RunOptions) {
	g := e.stages.Guardrails

	if types := g.DetectPII(rec); len(types) > 0 {
		rec.AddNote("PII detected: %s", strings.Join(types, ", "))
	}
	if !g.CheckDomains(rec) {
		rec.AddNote("Domain restriction: external domain not approved for automatic action")
	}
	if !g.EnforceTone(rec) {
		rec.AddNote("Tone issues found in draft")
	}

	external := g.IsExternal(rec) && e.policy.RequireApprovalForExternal
	if external || rec.HasFlags() {
		rec.SetStatus(enum.StatusApprovalRequired)
		rec.RequiresApproval = true
		rec.AddNote("Approval required due to external sender or high-risk security flags")
	} else {
		rec.SetStatus(enum.StatusDraftReady)
		rec.RequiresApproval = opts.RequireApproval && rec.Draft() != nil
	}
	if d := rec.Draft(); d != nil {
		d.RequiresApproval = rec.RequiresApproval
	}
}

// safely runs one stage for one record. A panic skips the record and is
// recorded on the batch instead of aborting it.
func (e *triageEngine) safely(batch *models.Batch, span opentracing.Span, rec *models.DecisionRecord, stage string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.fail(batch, span, rec, fmt.Sprintf("%s: %s panic: %v", rec.ID(), stage, r))
		}
	}()
	fn()
}

func (e *triageEngine) fail(batch *models.Batch, span opentracing.Span, rec *models.DecisionRecord, reason string) {
	tracing.TraceErr(span, errors.New(reason))
	e.log.Errorf("batch %s: %s", batch.ID, reason)
	batch.AddError(reason)
	rec.ClearDraft()
	rec.AddNote("Processing failed: %s", reason)
	rec.SetStatus(enum.StatusSkipped)
}

func (e *triageEngine) finish(batch *models.Batch, now time.Time) {
	for _, rec := range batch.AllRecords() {
		rec.ProcessedAt = &now
		if rec.Draft() != nil {
			batch.Drafted++
		}
		if rec.IsBlocked() {
			batch.Blocked++
		}
		if rec.Status() == enum.StatusSkipped {
			batch.Skipped++
		}
	}
	batch.Processed = len(batch.Records)
	completed := e.cfg.Clock()
	batch.CompletedAt = &completed
}

// isOpen is true for records later stages may still act on.
func isOpen(rec *models.DecisionRecord) bool {
	if rec.IsBlocked() {
		return false
	}
	switch rec.Status() {
	case enum.StatusSkipped, enum.StatusBlocked:
		return false
	}
	return true
}
