package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/screening-service/internal/models"
)

type EventType string

const (
	EventSessionStarted     EventType = "screening.started"
	EventScreeningCompleted EventType = "screening.completed"
)

const (
	eventSource  = "screening-service"
	eventVersion = "1.0"
)

// Event is the envelope for everything published by the service.
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type SessionStartedEvent struct {
	SessionID string    `json:"session_id"`
	StartedAt time.Time `json:"started_at"`
}

// ScreeningCompletedEvent carries scores only; answers never leave the service.
type ScreeningCompletedEvent struct {
	SessionID   string               `json:"session_id"`
	MMSEScore   int                  `json:"mmse_score"`
	ClockScore  int                  `json:"clock_score"`
	MemoryScore int                  `json:"memory_score"`
	Moves       int                  `json:"moves"`
	Total       int                  `json:"total"`
	MaxTotal    int                  `json:"max_total"`
	Level       models.SeverityLevel `json:"level"`
	Commentary  bool                 `json:"commentary"`
	CompletedAt time.Time            `json:"completed_at"`
}

func newEvent(t EventType, data interface{}) *Event {
	return &Event{
		ID:        GenerateEventID(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

func NewSessionStartedEvent(sessionID string, startedAt time.Time) *Event {
	return newEvent(EventSessionStarted, SessionStartedEvent{
		SessionID: sessionID,
		StartedAt: startedAt,
	})
}

func NewScreeningCompletedEvent(r models.Report) *Event {
	return newEvent(EventScreeningCompleted, ScreeningCompletedEvent{
		SessionID:   r.SessionID,
		MMSEScore:   r.Breakdown.MMSEScore,
		ClockScore:  r.Breakdown.ClockScore,
		MemoryScore: r.Breakdown.MemoryScore,
		Moves:       r.Breakdown.Moves,
		Total:       r.Breakdown.Total,
		MaxTotal:    r.Breakdown.MaxTotal,
		Level:       r.Advice.Level,
		Commentary:  len(r.Commentary) > 0,
		CompletedAt: r.CompletedAt,
	})
}

func GenerateEventID() string {
	return uuid.NewString()
}
