package repository

import (
	"context"

	"github.com/dogdesk/DogDeskBack/internal/models"
	"github.com/jackc/pgx/v5"
)

type CreateDogInput struct {
	ClientID int64
	Name     string
	Breed    *string
	Notes    *string
}

type DogRepository struct {
	db DBTX
}

func NewDogRepository(db DBTX) *DogRepository {
	return &DogRepository{db: db}
}

func (r *DogRepository) Create(ctx context.Context, input CreateDogInput) (*models.Dog, error) {
	query := `
		INSERT INTO dogs (client_id, name, breed, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, client_id, name, breed, notes, created_at, updated_at
	`
	var dog models.Dog
	err := r.db.QueryRow(ctx, query, input.ClientID, input.Name, input.Breed, input.Notes).Scan(
		&dog.ID,
		&dog.ClientID,
		&dog.Name,
		&dog.Breed,
		&dog.Notes,
		&dog.CreatedAt,
		&dog.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &dog, nil
}

func (r *DogRepository) GetByID(ctx context.Context, dogID int64) (*models.Dog, error) {
	query := `
		SELECT id, client_id, name, breed, notes, created_at, updated_at
		FROM dogs
		WHERE id = $1
	`
	var dog models.Dog
	err := r.db.QueryRow(ctx, query, dogID).Scan(
		&dog.ID,
		&dog.ClientID,
		&dog.Name,
		&dog.Breed,
		&dog.Notes,
		&dog.CreatedAt,
		&dog.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &dog, nil
}

func (r *DogRepository) ListByClient(ctx context.Context, clientID int64) ([]models.Dog, error) {
	query := `
		SELECT id, client_id, name, breed, notes, created_at, updated_at
		FROM dogs
		WHERE client_id = $1
		ORDER BY name ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dogs := make([]models.Dog, 0)
	for rows.Next() {
		var dog models.Dog
		if err := rows.Scan(
			&dog.ID,
			&dog.ClientID,
			&dog.Name,
			&dog.Breed,
			&dog.Notes,
			&dog.CreatedAt,
			&dog.UpdatedAt,
		); err != nil {
			return nil, err
		}
		dogs = append(dogs, dog)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return dogs, nil
}

// AppendNote adds a line to the dog's running notes, used when a session
// note is linked back to the dog record.
func (r *DogRepository) AppendNote(ctx context.Context, dogID int64, note string) error {
	query := `
		UPDATE dogs
		SET notes = CASE
			WHEN notes IS NULL OR notes = '' THEN $2
			ELSE notes || E'\n' || $2
		END,
		updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, dogID, note)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
