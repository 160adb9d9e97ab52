package repository

import (
	"context"

	"github.com/dogdesk/DogDeskBack/internal/models"
	"github.com/google/uuid"
)

type AuditRepository struct {
	db DBTX
}

func NewAuditRepository(db DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append writes one audit entry. The table is insert-only; nothing in this
// codebase updates or deletes audit rows.
func (r *AuditRepository) Append(ctx context.Context, action, entityType string, entityID int64, summary string) (*models.AuditEntry, error) {
	query := `
		INSERT INTO audit_log (id, action, entity_type, entity_id, summary)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	entry := models.AuditEntry{
		ID:         uuid.New(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Summary:    summary,
	}
	if err := r.db.QueryRow(ctx, query, entry.ID, entry.Action, entry.EntityType, entry.EntityID, entry.Summary).
		Scan(&entry.CreatedAt); err != nil {
		return nil, err
	}
	return &entry, nil
}
