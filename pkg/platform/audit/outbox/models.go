package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	audit "confessional/pkg/platform/audit"
)

// Entry is an audit event waiting to be relayed to Kafka.
type Entry struct {
	ID          uuid.UUID
	EventType   string
	SubjectID   string
	Payload     []byte
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// IsPending reports whether the entry still needs publishing.
func (e *Entry) IsPending() bool {
	return e.ProcessedAt == nil
}

// NewEntry serializes an audit event into an outbox entry sharing its ID.
func NewEntry(event audit.Event) (*Entry, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal audit event: %w", err)
	}
	return &Entry{
		ID:        event.ID,
		EventType: string(event.Action),
		SubjectID: event.SubjectID,
		Payload:   payload,
		CreatedAt: event.Timestamp,
	}, nil
}
