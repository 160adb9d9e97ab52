package services

import (
	"context"
	"errors"
	"testing"
)

func TestValidatePackageFields(t *testing.T) {
	if err := validatePackageFields("obedience-block", 10, 45000); err != nil {
		t.Fatalf("valid fields rejected: %v", err)
	}
	if err := validatePackageFields("  ", 10, 45000); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank type, got %v", err)
	}
	if err := validatePackageFields("obedience-block", -1, 45000); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative credits, got %v", err)
	}
	if err := validatePackageFields("obedience-block", 10, -1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative price, got %v", err)
	}
}

func TestNormalizeCurrency(t *testing.T) {
	if got := normalizeCurrency(" usd "); got != "USD" {
		t.Fatalf("expected USD, got %q", got)
	}
	if got := normalizeCurrency(""); got != "USD" {
		t.Fatalf("expected default USD, got %q", got)
	}
	if got := normalizeCurrency("eur"); got != "EUR" {
		t.Fatalf("expected EUR, got %q", got)
	}
}

func TestPackageServiceRequiresDatabase(t *testing.T) {
	service := NewPackageService(nil, nil)

	if _, err := service.ListForClient(context.Background(), 1); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("ListForClient: expected ErrNotConfigured, got %v", err)
	}
	if _, err := service.ListTemplates(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("ListTemplates: expected ErrNotConfigured, got %v", err)
	}
	if _, err := service.CreateForClient(context.Background(), CreatePackageInput{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("CreateForClient: expected ErrNotConfigured, got %v", err)
	}
}
