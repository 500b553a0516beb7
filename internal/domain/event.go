package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventOperation string

const (
	EventSeriesPainted EventOperation = "series_painted"
	EventSeriesDeleted EventOperation = "series_deleted"
	EventDayPainted    EventOperation = "day_painted"
	EventDayDeleted    EventOperation = "day_deleted"
	EventGenerated     EventOperation = "month_generated"
)

// RosterEvent se publica en la cola roster_events después de confirmar cada
// mutación; el worker de eventos lo consume y lo registra en la auditoría.
type RosterEvent struct {
	ID             uuid.UUID      `json:"id"`
	Operation      EventOperation `json:"operation"`
	InstallationID int64          `json:"installationID,omitempty"`
	PostID         int64          `json:"postID,omitempty"`
	SlotNumber     int32          `json:"slotNumber,omitempty"`
	Date           string         `json:"date,omitempty"`
	Actor          string         `json:"actor,omitempty"`
	CellsAffected  int            `json:"cellsAffected"`
	OccurredAt     time.Time      `json:"occurredAt"`
}

type AuditEntry struct {
	EventID    uuid.UUID      `json:"eventID"`
	Operation  EventOperation `json:"operation"`
	PostID     int64          `json:"postID"`
	SlotNumber int32          `json:"slotNumber"`
	Date       string         `json:"date,omitempty"`
	Actor      string         `json:"actor,omitempty"`
	Payload    []byte         `json:"-"`
	RecordedAt time.Time      `json:"recordedAt"`
}
