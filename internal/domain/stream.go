package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	StreamLocationFix    = "stream:location:fix"
	StreamVisitRecorded  = "stream:visit:recorded"
	StreamTrackingChange = "stream:tracking:state"
)

// LocationFixEvent is a position pushed by a device.
type LocationFixEvent struct {
	UserID     uuid.UUID `json:"user_id"`
	Latitude   *float64  `json:"latitude,omitempty"`
	Longitude  *float64  `json:"longitude,omitempty"`
	// Background marks fixes delivered while the app was not in the foreground
	Background bool      `json:"background,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Coordinate returns the fix position, or false when either axis is missing.
func (e *LocationFixEvent) Coordinate() (Coordinate, bool) {
	if e.Latitude == nil || e.Longitude == nil {
		return Coordinate{}, false
	}
	return Coordinate{Lat: *e.Latitude, Lon: *e.Longitude}, true
}

// VisitRecordedEvent is published once per first visit of a structure.
type VisitRecordedEvent struct {
	EventID     uuid.UUID       `json:"event_id"`
	UserID      uuid.UUID       `json:"user_id"`
	StructureID int             `json:"structure_id"`
	VisitOrder  int             `json:"visit_order"`
	Coordinate  Coordinate      `json:"coordinate"`
	VisitedAt   time.Time       `json:"visited_at"`
	Statistics  VisitStatistics `json:"statistics"`
}

// TrackingChangeEvent tells devices which acquisition intensity to apply.
type TrackingChangeEvent struct {
	State     TrackingState `json:"state"`
	ChangedAt time.Time     `json:"changed_at"`
}

// VisitLog is one entry for the remote logging collaborator.
type VisitLog struct {
	UserID     uuid.UUID  `json:"user_id"`
	Coordinate Coordinate `json:"coordinate"`
	Timestamp  time.Time  `json:"timestamp"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
