package repository

import (
	"context"
	"time"

	"github.com/dogdesk/DogDeskBack/internal/models"
	"github.com/jackc/pgx/v5"
)

type CreatePackageInput struct {
	ClientID     *int64
	IsTemplate   bool
	Type         string
	TotalCredits int
	PriceCents   int64
	Currency     string
	ExpiresOn    *time.Time
}

type PackageRepository struct {
	db DBTX
}

func NewPackageRepository(db DBTX) *PackageRepository {
	return &PackageRepository{db: db}
}

const packageColumns = `id, client_id, is_template, type, total_credits, used_credits, price_cents, currency, expires_on, created_at, updated_at`

func scanPackage(row pgx.Row) (*models.Package, error) {
	var pkg models.Package
	err := row.Scan(
		&pkg.ID,
		&pkg.ClientID,
		&pkg.IsTemplate,
		&pkg.Type,
		&pkg.TotalCredits,
		&pkg.UsedCredits,
		&pkg.PriceCents,
		&pkg.Currency,
		&pkg.ExpiresOn,
		&pkg.CreatedAt,
		&pkg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *PackageRepository) Create(ctx context.Context, input CreatePackageInput) (*models.Package, error) {
	query := `
		INSERT INTO packages (client_id, is_template, type, total_credits, used_credits, price_cents, currency, expires_on)
		VALUES ($1, $2, $3, $4, 0, $5, $6, $7)
		RETURNING ` + packageColumns
	return scanPackage(r.db.QueryRow(
		ctx,
		query,
		input.ClientID,
		input.IsTemplate,
		input.Type,
		input.TotalCredits,
		input.PriceCents,
		input.Currency,
		input.ExpiresOn,
	))
}

func (r *PackageRepository) GetByID(ctx context.Context, packageID int64) (*models.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages WHERE id = $1`
	return scanPackage(r.db.QueryRow(ctx, query, packageID))
}

// Clone materializes a template into a live ledger entry owned by clientID.
// The template row itself is never written to; every assignment produces an
// independent clone with a zeroed counter.
func (r *PackageRepository) Clone(ctx context.Context, template *models.Package, clientID int64) (*models.Package, error) {
	query := `
		INSERT INTO packages (client_id, is_template, type, total_credits, used_credits, price_cents, currency, expires_on)
		VALUES ($1, false, $2, $3, 0, $4, $5, $6)
		RETURNING ` + packageColumns
	return scanPackage(r.db.QueryRow(
		ctx,
		query,
		clientID,
		template.Type,
		template.TotalCredits,
		template.PriceCents,
		template.Currency,
		template.ExpiresOn,
	))
}

// AdjustUsedCredits applies a relative delta so concurrent reservations
// against the same row both land under read-committed isolation. There is
// deliberately no used <= total guard: over-booking is allowed and shows up
// as a negative remaining count.
func (r *PackageRepository) AdjustUsedCredits(ctx context.Context, packageID int64, delta int) (int, error) {
	query := `
		UPDATE packages
		SET used_credits = used_credits + $2, updated_at = NOW()
		WHERE id = $1 AND is_template = false
		RETURNING used_credits
	`
	var used int
	if err := r.db.QueryRow(ctx, query, packageID, delta).Scan(&used); err != nil {
		return 0, err
	}
	return used, nil
}

func (r *PackageRepository) ListByClient(ctx context.Context, clientID int64) ([]models.Package, error) {
	query := `
		SELECT ` + packageColumns + `
		FROM packages
		WHERE client_id = $1 AND is_template = false
		ORDER BY created_at DESC, id DESC
	`
	return r.list(ctx, query, clientID)
}

func (r *PackageRepository) ListTemplates(ctx context.Context) ([]models.Package, error) {
	query := `
		SELECT ` + packageColumns + `
		FROM packages
		WHERE is_template = true
		ORDER BY type ASC, id ASC
	`
	return r.list(ctx, query)
}

func (r *PackageRepository) list(ctx context.Context, query string, args ...any) ([]models.Package, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	packages := make([]models.Package, 0)
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		packages = append(packages, *pkg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return packages, nil
}
