package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dogdesk/DogDeskBack/internal/models"
	"github.com/dogdesk/DogDeskBack/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BalanceStore is the projection cache as the package service sees it.
// Lookups that miss fall through to the store and repopulate; writes that
// change a client's ledger invalidate their entry.
type BalanceStore interface {
	GetClient(ctx context.Context, clientID int64) ([]models.PackageBalance, bool)
	SetClient(ctx context.Context, clientID int64, balances []models.PackageBalance)
	InvalidateClient(ctx context.Context, clientID int64)
}

type PackageService struct {
	db          *pgxpool.Pool
	packageRepo *repository.PackageRepository
	clientRepo  *repository.ClientRepository
	balances    BalanceStore
}

func NewPackageService(db *pgxpool.Pool, balances BalanceStore) *PackageService {
	return &PackageService{
		db:          db,
		packageRepo: repository.NewPackageRepository(db),
		clientRepo:  repository.NewClientRepository(db),
		balances:    balances,
	}
}

type CreatePackageInput struct {
	ClientID     int64
	Type         string
	TotalCredits int
	PriceCents   int64
	Currency     string
	ExpiresOn    *time.Time
}

type CreateTemplateInput struct {
	Type         string
	TotalCredits int
	PriceCents   int64
	Currency     string
	ExpiresOn    *time.Time
}

func (s *PackageService) ListForClient(ctx context.Context, clientID int64) ([]models.PackageBalance, error) {
	if s.db == nil {
		return nil, ErrNotConfigured
	}
	if clientID <= 0 {
		return nil, fmt.Errorf("%w: clientId is required", ErrInvalidInput)
	}

	if s.balances != nil {
		if cached, ok := s.balances.GetClient(ctx, clientID); ok {
			return cached, nil
		}
	}

	packages, err := s.packageRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	balances := make([]models.PackageBalance, 0, len(packages))
	for _, pkg := range packages {
		balances = append(balances, models.PackageBalance{
			Package:   pkg,
			Remaining: pkg.Remaining(),
		})
	}

	if s.balances != nil {
		s.balances.SetClient(ctx, clientID, balances)
	}

	return balances, nil
}

func (s *PackageService) ListTemplates(ctx context.Context) ([]models.Package, error) {
	if s.db == nil {
		return nil, ErrNotConfigured
	}
	return s.packageRepo.ListTemplates(ctx)
}

func (s *PackageService) CreateForClient(ctx context.Context, input CreatePackageInput) (*models.Package, error) {
	if s.db == nil {
		return nil, ErrNotConfigured
	}
	if err := validatePackageFields(input.Type, input.TotalCredits, input.PriceCents); err != nil {
		return nil, err
	}

	if _, err := s.clientRepo.GetByID(ctx, input.ClientID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	pkg, err := s.packageRepo.Create(ctx, repository.CreatePackageInput{
		ClientID:     &input.ClientID,
		IsTemplate:   false,
		Type:         strings.TrimSpace(input.Type),
		TotalCredits: input.TotalCredits,
		PriceCents:   input.PriceCents,
		Currency:     normalizeCurrency(input.Currency),
		ExpiresOn:    input.ExpiresOn,
	})
	if err != nil {
		return nil, err
	}

	if s.balances != nil {
		s.balances.InvalidateClient(ctx, input.ClientID)
	}

	return pkg, nil
}

func (s *PackageService) CreateTemplate(ctx context.Context, input CreateTemplateInput) (*models.Package, error) {
	if s.db == nil {
		return nil, ErrNotConfigured
	}
	if err := validatePackageFields(input.Type, input.TotalCredits, input.PriceCents); err != nil {
		return nil, err
	}

	return s.packageRepo.Create(ctx, repository.CreatePackageInput{
		ClientID:     nil,
		IsTemplate:   true,
		Type:         strings.TrimSpace(input.Type),
		TotalCredits: input.TotalCredits,
		PriceCents:   input.PriceCents,
		Currency:     normalizeCurrency(input.Currency),
		ExpiresOn:    input.ExpiresOn,
	})
}

func validatePackageFields(packageType string, totalCredits int, priceCents int64) error {
	if strings.TrimSpace(packageType) == "" {
		return fmt.Errorf("%w: type is required", ErrInvalidInput)
	}
	if totalCredits < 0 {
		return fmt.Errorf("%w: totalCredits must not be negative", ErrInvalidInput)
	}
	if priceCents < 0 {
		return fmt.Errorf("%w: priceCents must not be negative", ErrInvalidInput)
	}
	return nil
}

func normalizeCurrency(currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return "USD"
	}
	return currency
}
