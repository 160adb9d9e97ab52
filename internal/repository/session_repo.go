package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dogdesk/DogDeskBack/internal/models"
	"github.com/jackc/pgx/v5"
)

type CreateSessionInput struct {
	DogID           int64
	ClientID        int64
	TrainerID       int64
	StartTime       time.Time
	DurationMinutes int
	Location        string
	Status          string
	Title           *string
	Notes           *string
	Objectives      []string
	PackageID       *int64
	TravelMinutes   int
	BufferMinutes   int
}

// SessionUpdate carries only the columns to change; nil fields are left
// untouched. SetPackage distinguishes "clear the package" (true, nil id)
// from "don't touch the package" (false).
type SessionUpdate struct {
	StartTime       *time.Time
	DurationMinutes *int
	Location        *string
	Status          *string
	Title           *string
	Notes           *string
	Objectives      []string
	TrainerID       *int64
	TravelMinutes   *int
	BufferMinutes   *int
	SetPackage      bool
	PackageID       *int64
}

type SessionListFilter struct {
	DogID     int64
	ClientID  int64
	Timeframe string
}

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, dog_id, client_id, trainer_id, start_time, duration_min, location, status, title, notes, objectives, package_id, travel_min, buffer_min, created_at, updated_at`

func scanSession(row pgx.Row) (*models.Session, error) {
	var session models.Session
	err := row.Scan(
		&session.ID,
		&session.DogID,
		&session.ClientID,
		&session.TrainerID,
		&session.StartTime,
		&session.DurationMinutes,
		&session.Location,
		&session.Status,
		&session.Title,
		&session.Notes,
		&session.Objectives,
		&session.PackageID,
		&session.TravelMinutes,
		&session.BufferMinutes,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Create(ctx context.Context, input CreateSessionInput) (*models.Session, error) {
	query := `
		INSERT INTO sessions (dog_id, client_id, trainer_id, start_time, duration_min, location, status, title, notes, objectives, package_id, travel_min, buffer_min)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + sessionColumns
	return scanSession(r.db.QueryRow(
		ctx,
		query,
		input.DogID,
		input.ClientID,
		input.TrainerID,
		input.StartTime,
		input.DurationMinutes,
		input.Location,
		input.Status,
		input.Title,
		input.Notes,
		input.Objectives,
		input.PackageID,
		input.TravelMinutes,
		input.BufferMinutes,
	))
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID int64) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	return scanSession(r.db.QueryRow(ctx, query, sessionID))
}

// GetByIDForUpdate locks the row so the reservation protocol computes its
// release side from the in-transaction package link, never from a stale
// client-supplied value.
func (r *SessionRepository) GetByIDForUpdate(ctx context.Context, sessionID int64) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1 FOR UPDATE`
	return scanSession(r.db.QueryRow(ctx, query, sessionID))
}

func (r *SessionRepository) Update(ctx context.Context, sessionID int64, update SessionUpdate) (*models.Session, error) {
	setParts, args := buildSessionUpdate(sessionID, update)
	query := fmt.Sprintf(`
		UPDATE sessions
		SET %s
		WHERE id = $1
		RETURNING %s
	`, strings.Join(setParts, ", "), sessionColumns)
	return scanSession(r.db.QueryRow(ctx, query, args...))
}

func buildSessionUpdate(sessionID int64, update SessionUpdate) ([]string, []any) {
	args := []any{sessionID}
	setParts := []string{}

	add := func(column string, value any) {
		args = append(args, value)
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.StartTime != nil {
		add("start_time", *update.StartTime)
	}
	if update.DurationMinutes != nil {
		add("duration_min", *update.DurationMinutes)
	}
	if update.Location != nil {
		add("location", *update.Location)
	}
	if update.Status != nil {
		add("status", *update.Status)
	}
	if update.Title != nil {
		add("title", *update.Title)
	}
	if update.Notes != nil {
		add("notes", *update.Notes)
	}
	if update.Objectives != nil {
		add("objectives", update.Objectives)
	}
	if update.TrainerID != nil {
		add("trainer_id", *update.TrainerID)
	}
	if update.TravelMinutes != nil {
		add("travel_min", *update.TravelMinutes)
	}
	if update.BufferMinutes != nil {
		add("buffer_min", *update.BufferMinutes)
	}
	if update.SetPackage {
		add("package_id", update.PackageID)
	}

	setParts = append(setParts, "updated_at = NOW()")
	return setParts, args
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *SessionRepository) List(ctx context.Context, filter SessionListFilter) ([]models.Session, error) {
	args := []any{}
	whereParts := []string{}

	if filter.DogID > 0 {
		args = append(args, filter.DogID)
		whereParts = append(whereParts, fmt.Sprintf("dog_id = $%d", len(args)))
	}
	if filter.ClientID > 0 {
		args = append(args, filter.ClientID)
		whereParts = append(whereParts, fmt.Sprintf("client_id = $%d", len(args)))
	}

	switch strings.TrimSpace(filter.Timeframe) {
	case "upcoming":
		whereParts = append(
			whereParts,
			"(start_time + (duration_min * INTERVAL '1 minute')) > NOW()",
		)
	case "past":
		whereParts = append(
			whereParts,
			"(start_time + (duration_min * INTERVAL '1 minute')) <= NOW()",
		)
	}

	where := ""
	if len(whereParts) > 0 {
		where = "WHERE " + strings.Join(whereParts, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM sessions
		%s
		ORDER BY start_time ASC, id ASC
	`, sessionColumns, where)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}
