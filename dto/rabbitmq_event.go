package dto

import "github.com/customeros/mailtriage/internal/enum"

type Event struct {
	Event    EventDetails  `json:"event"`
	Metadata EventMetadata `json:"metadata"`
}

type EventDetails struct {
	Id         string          `json:"id"`
	BatchId    string          `json:"batchId"`
	EntityId   string          `json:"entityId"`
	EntityType enum.EntityType `json:"entityType"`
	EventType  string          `json:"eventType"`
	Data       interface{}     `json:"data"`
}

type EventMetadata struct {
	UberTraceId string `json:"uber-trace-id"`
	AppSource   string `json:"appSource"`
	Timestamp   string `json:"timestamp"`
}

// DecisionEvent is the payload published for every decided record.
type DecisionEvent struct {
	MessageId        string   `json:"messageId"`
	Sender           string   `json:"sender"`
	Subject          string   `json:"subject"`
	Status           string   `json:"status"`
	Category         string   `json:"category"`
	PriorityScore    int      `json:"priorityScore"`
	PriorityLevel    string   `json:"priorityLevel"`
	IsBlocked        bool     `json:"isBlocked"`
	RequiresApproval bool     `json:"requiresApproval"`
	DraftId          string   `json:"draftId,omitempty"`
	Flags            []string `json:"flags,omitempty"`
}
