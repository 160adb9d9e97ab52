package models

import "time"

const (
	SessionStatusScheduled  = "scheduled"
	SessionStatusInProgress = "in_progress"
	SessionStatusDone       = "done"
)

type Session struct {
	ID              int64     `json:"id"`
	DogID           int64     `json:"dogId"`
	ClientID        int64     `json:"clientId"`
	TrainerID       int64     `json:"trainerId"`
	StartTime       time.Time `json:"startTime"`
	DurationMinutes int       `json:"durationMinutes"`
	Location        string    `json:"location"`
	Status          string    `json:"status"`
	Title           *string   `json:"title"`
	Notes           *string   `json:"notes"`
	Objectives      []string  `json:"objectives"`
	PackageID       *int64    `json:"packageId"`
	TravelMinutes   int       `json:"travelMinutes"`
	BufferMinutes   int       `json:"bufferMinutes"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
