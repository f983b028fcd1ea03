package enum

type EntityType string

const (
	DECISION_RECORD EntityType = "DECISION_RECORD"
)

func (entityType EntityType) String() string {
	return string(entityType)
}
