package interfaces

import (
	"context"
	"time"

	"github.com/customeros/mailtriage/dto"
	"github.com/customeros/mailtriage/internal/enum"
	"github.com/customeros/mailtriage/internal/models"
)

type ClassifierService interface {
	Classify(msg *models.MessageRecord) *models.ClassificationResult
}

type IntentService interface {
	Detect(msg *models.MessageRecord) *models.IntentDetection
	ExtractDeadlines(msg *models.MessageRecord) []string
}

type PriorityService interface {
	Score(msg *models.MessageRecord, classification *models.ClassificationResult, intent *models.IntentDetection, now time.Time) *models.PriorityScore
	Level(score int) enum.PriorityLevel
}

type SpamService interface {
	Score(msg *models.MessageRecord, classification *models.ClassificationResult) int
	IsSpam(msg *models.MessageRecord, classification *models.ClassificationResult) bool
}

type CategorizerService interface {
	Categorize(intent *models.IntentDetection, priority *models.PriorityScore, isSpam bool) enum.Category
}

type ConflictService interface {
	FindConflicts(records []*models.DecisionRecord) map[string][]*models.DecisionRecord
	Resolve(records []*models.DecisionRecord) (active, superseded []*models.DecisionRecord)
}

type LegalService interface {
	IsCritical(rec *models.DecisionRecord) bool
	Escalate(rec *models.DecisionRecord)
}

type DNDService interface {
	CheckToolAlert(caps models.Capabilities) *models.SecurityFlag
	ForceDraftOnly(rec *models.DecisionRecord, flag models.SecurityFlag)
	IsExternalDuringDND(rec *models.DecisionRecord) bool
	Decide(rec *models.DecisionRecord) enum.DNDDecision
}

type GuardrailService interface {
	DetectPII(rec *models.DecisionRecord) []string
	CheckDomains(rec *models.DecisionRecord) bool
	IsExternal(rec *models.DecisionRecord) bool
	EnforceTone(rec *models.DecisionRecord) bool
}

type DraftingService interface {
	Draft(ctx context.Context, msg *models.MessageRecord, intent *models.IntentDetection, now time.Time) *models.DraftReply
	ShouldDelay(draft *models.DraftReply, now time.Time) bool
	FollowUps(msg *models.MessageRecord, intent *models.IntentDetection, now time.Time) []models.FollowUp
}

// TriageEngine runs the full decision pipeline over one batch.
type TriageEngine interface {
	ProcessBatch(ctx context.Context, messages []*models.MessageRecord, opts models.RunOptions) *models.Batch
}

type ReportService interface {
	Build(batch *models.Batch) *dto.Report
}

// TriageRunner wires a batch run end to end: optional source and dedup,
// the engine, decision publishing and the report.
type TriageRunner interface {
	RunMessages(ctx context.Context, messages []*models.MessageRecord, caps models.Capabilities, opts models.RunOptions) *dto.Report
	RunSource(ctx context.Context, caps models.Capabilities, opts models.RunOptions) (*dto.Report, error)
}
