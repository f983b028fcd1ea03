package report

import (
	"sort"
	"strings"

	"github.com/customeros/mailtriage/dto"
	"github.com/customeros/mailtriage/interfaces"
	"github.com/customeros/mailtriage/internal/enum"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
	"github.com/customeros/mailtriage/services/guardrails"
)

const (
	TopEmailsLimit    = 10
	DraftRepliesLimit = 10
	SnippetLength     = 200

	// minutes saved, used for the time saved estimate
	minutesPerEmail    = 2
	minutesQueue       = 1
	minutesPerDraft    = 5
	minutesPerFollowUp = 2
)

type reportService struct {
	log logger.Logger
}

func NewReportService(log logger.Logger) interfaces.ReportService {
	return &reportService{log: log}
}

// Build turns a finished batch into the response queue. It only reads the
// batch.
func (s *reportService) Build(batch *models.Batch) *dto.Report {
	report := &dto.Report{
		BatchID:      batch.ID,
		TopEmails:    []dto.EmailItem{},
		DraftReplies: []dto.DraftItem{},
		FollowUps:    []models.FollowUp{},
		BlockedItems: []dto.BlockedItem{},
		Warnings:     []string{},
		Errors:       append([]string{}, batch.Errors...),
	}

	report.Summary = summarize(batch.Records)
	report.Metrics = CalculateMetrics(batch.Records)

	open := make([]*models.DecisionRecord, 0, len(batch.Records))
	for _, rec := range batch.Records {
		if !rec.IsBlocked() {
			open = append(open, rec)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		return open[i].Score() > open[j].Score()
	})
	for i, rec := range open {
		if i == TopEmailsLimit {
			break
		}
		report.TopEmails = append(report.TopEmails, emailItem(rec))
	}

	for _, rec := range batch.Records {
		if d := rec.Draft(); d != nil && len(report.DraftReplies) < DraftRepliesLimit {
			report.DraftReplies = append(report.DraftReplies, draftItem(rec, d))
		}
		report.FollowUps = append(report.FollowUps, rec.FollowUps...)
		if rec.IsBlocked() {
			report.BlockedItems = append(report.BlockedItems, blockedItem(rec))
		}
		for _, f := range rec.Flags() {
			if f.Severity == enum.SeverityHigh || f.Severity == enum.SeverityCritical {
				report.Warnings = append(report.Warnings, rec.Message.Subject+": "+f.Description)
			}
		}
	}
	// superseded records are blocked as well and belong to the blocked list
	for _, rec := range batch.Superseded {
		report.BlockedItems = append(report.BlockedItems, blockedItem(rec))
	}

	s.log.Infof("Report built for batch %s: %d top emails, %d drafts, %d blocked",
		batch.ID, len(report.TopEmails), len(report.DraftReplies), len(report.BlockedItems))
	return report
}

func summarize(records []*models.DecisionRecord) dto.ReportSummary {
	summary := dto.ReportSummary{TotalProcessed: len(records)}
	for _, rec := range records {
		if rec.IsBlocked() {
			summary.Blocked++
			continue
		}
		if rec.Priority != nil {
			switch rec.Priority.Level {
			case enum.PriorityHigh:
				summary.HighPriority++
			case enum.PriorityMedium:
				summary.MediumPriority++
			case enum.PriorityLow:
				summary.LowPriority++
			}
		}
		if d := rec.Draft(); d != nil {
			summary.DraftsCreated++
			if d.RequiresApproval {
				summary.NeedsApproval++
			}
		}
		summary.FollowUps += len(rec.FollowUps)
	}
	return summary
}

// CalculateMetrics counts over the active records of a batch.
func CalculateMetrics(records []*models.DecisionRecord) dto.Metrics {
	m := dto.Metrics{
		TotalEmails: len(records),
		Categories:  map[string]int{},
	}
	withFollowUps := 0
	for _, rec := range records {
		if rec.Priority != nil {
			switch rec.Priority.Level {
			case enum.PriorityHigh:
				m.HighPriority++
			case enum.PriorityMedium:
				m.MediumPriority++
			case enum.PriorityLow:
				m.LowPriority++
			}
			if rec.Priority.HiddenUrgency {
				m.HiddenUrgencyCount++
			}
		}
		if d := rec.Draft(); d != nil {
			m.DraftsCreated++
			if d.RequiresApproval {
				m.ApprovalRequiredCount++
			}
		}
		if len(rec.FollowUps) > 0 {
			m.FollowUpsScheduled += len(rec.FollowUps)
			withFollowUps++
		}
		if rec.IsBlocked() {
			m.BlockedItems++
		}
		m.Categories[rec.Category.String()]++
		if rec.IsVIP() {
			m.VIPEmails++
		}
		m.RiskDetectionCount += len(rec.Flags())
		if rec.HasFlag(enum.FlagReplyAllRisk) {
			m.ReplyAllRisks++
		}
	}
	m.TimeSavedMinutes = TimeSaved(m.TotalEmails, m.DraftsCreated, withFollowUps)
	return m
}

// TimeSaved estimates minutes saved: reading every email, building the queue,
// writing each draft and tracking each follow up by hand.
func TimeSaved(emails, drafts, followUps int) int {
	if emails == 0 {
		return 0
	}
	return emails*minutesPerEmail + minutesQueue + drafts*minutesPerDraft + followUps*minutesPerFollowUp
}

func emailItem(rec *models.DecisionRecord) dto.EmailItem {
	msg := rec.Message
	item := dto.EmailItem{
		MessageID:      msg.MessageID,
		ThreadID:       msg.ThreadID,
		Subject:        msg.Subject,
		From:           msg.Sender,
		Date:           msg.Date,
		Category:       rec.Category.String(),
		Status:         rec.Status().String(),
		HasDraft:       rec.Draft() != nil,
		RequiresAction: rec.RequiresReply(),
		Snippet:        Snippet(msg),
		Reasons:        []string{},
	}
	if rec.Priority != nil {
		item.PriorityScore = rec.Priority.Score
		item.PriorityReasoning = rec.Priority.Reasoning
		item.Reasons = append(item.Reasons, rec.Priority.Evidence...)
	}
	return item
}

// Snippet is the anonymized start of the message preview or body.
func Snippet(msg *models.MessageRecord) string {
	text := msg.Snippet
	if text == "" {
		text = msg.BodyText
	}
	text = strings.Join(strings.Fields(text), " ")
	if r := []rune(text); len(r) > SnippetLength {
		text = string(r[:SnippetLength])
	}
	return guardrails.Anonymize(text)
}

func draftItem(rec *models.DecisionRecord, d *models.DraftReply) dto.DraftItem {
	flags := []string{}
	for _, f := range rec.Flags() {
		flags = append(flags, f.FlagType.String())
	}
	return dto.DraftItem{
		EmailID:          rec.ID(),
		OriginalSubject:  rec.Message.Subject,
		ReplySubject:     d.Subject,
		ReplyBody:        d.Body,
		To:               append([]string{}, d.Recipients...),
		Cc:               append([]string{}, d.Cc...),
		RequiresApproval: d.RequiresApproval,
		SecurityFlags:    flags,
	}
}

func blockedItem(rec *models.DecisionRecord) dto.BlockedItem {
	flags := []dto.FlagItem{}
	for _, f := range rec.Flags() {
		flags = append(flags, dto.FlagItem{
			Type:        f.FlagType.String(),
			Severity:    f.Severity.String(),
			Description: f.Description,
		})
	}
	return dto.BlockedItem{
		MessageID:     rec.ID(),
		Subject:       rec.Message.Subject,
		From:          rec.Message.Sender,
		Reason:        strings.Join(rec.Notes(), " | "),
		SecurityFlags: flags,
	}
}
