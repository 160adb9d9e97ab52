package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry is append-only: entries are written in the same transaction as
// the mutation they record and are never updated or deleted.
type AuditEntry struct {
	ID         uuid.UUID `json:"id"`
	Action     string    `json:"action"`
	EntityType string    `json:"entityType"`
	EntityID   int64     `json:"entityId"`
	Summary    string    `json:"summary"`
	CreatedAt  time.Time `json:"createdAt"`
}
