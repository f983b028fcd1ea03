package events

import (
	"context"
	"reflect"
	"time"

	"github.com/customeros/mailtriage/dto"
	"github.com/customeros/mailtriage/internal/enum"
	"github.com/customeros/mailtriage/internal/models"
	"github.com/customeros/mailtriage/internal/utils"
)

// NewEvent wraps a payload in the event envelope. EventType is the payload's
// type name.
func NewEvent(ctx context.Context, batchId, entityId string, entityType enum.EntityType, message interface{}, traceId string) dto.Event {
	eventType := ""
	if t := reflect.TypeOf(message); t != nil {
		if t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		eventType = t.Name()
	}
	return dto.Event{
		Event: dto.EventDetails{
			Id:         utils.GenerateNanoIDWithPrefix("event", 21),
			BatchId:    batchId,
			EntityId:   entityId,
			EntityType: entityType,
			EventType:  eventType,
			Data:       message,
		},
		Metadata: dto.EventMetadata{
			UberTraceId: traceId,
			AppSource:   utils.GetAppSourceFromContext(ctx),
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
		},
	}
}

func NewDecisionEvent(rec *models.DecisionRecord) dto.DecisionEvent {
	event := dto.DecisionEvent{
		MessageId: rec.ID(),
		Sender:    rec.Message.Sender,
		Subject:   rec.Message.Subject,
		Status:    rec.Status().String(),
		Category:  rec.Category.String(),
		IsBlocked: rec.IsBlocked(),
	}
	if rec.Priority != nil {
		event.PriorityScore = rec.Priority.Score
		event.PriorityLevel = rec.Priority.Level.String()
	}
	if d := rec.Draft(); d != nil {
		event.DraftId = d.DraftID
		event.RequiresApproval = d.RequiresApproval
	} else {
		event.RequiresApproval = rec.RequiresApproval
	}
	for _, f := range rec.Flags() {
		event.Flags = append(event.Flags, f.FlagType.String())
	}
	return event
}
