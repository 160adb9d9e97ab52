package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dogdesk/DogDeskBack/internal/models"
	"github.com/dogdesk/DogDeskBack/internal/services"
	"github.com/gofiber/fiber/v2"
)

type stubPackageService struct {
	listResult      []models.PackageBalance
	listErr         error
	templatesResult []models.Package
	templatesErr    error
	createResult    *models.Package
	createErr       error
	templateResult  *models.Package
	templateErr     error

	lastClientID      int64
	lastCreateInput   services.CreatePackageInput
	lastTemplateInput services.CreateTemplateInput
}

func (s *stubPackageService) ListForClient(_ context.Context, clientID int64) ([]models.PackageBalance, error) {
	s.lastClientID = clientID
	return s.listResult, s.listErr
}

func (s *stubPackageService) ListTemplates(_ context.Context) ([]models.Package, error) {
	return s.templatesResult, s.templatesErr
}

func (s *stubPackageService) CreateForClient(_ context.Context, input services.CreatePackageInput) (*models.Package, error) {
	s.lastCreateInput = input
	return s.createResult, s.createErr
}

func (s *stubPackageService) CreateTemplate(_ context.Context, input services.CreateTemplateInput) (*models.Package, error) {
	s.lastTemplateInput = input
	return s.templateResult, s.templateErr
}

func newPackageTestApp(service *stubPackageService) *fiber.App {
	handler := &PackageHandler{service: service}
	app := fiber.New()
	app.Get("/api/v1/packages", handler.ListPackages)
	app.Post("/api/v1/packages", handler.CreatePackage)
	app.Get("/api/v1/packages/templates", handler.ListTemplates)
	app.Post("/api/v1/packages/templates", handler.CreateTemplate)
	return app
}

func TestListPackagesForwardsClientAndReportsRemaining(t *testing.T) {
	service := &stubPackageService{
		listResult: []models.PackageBalance{
			{Package: models.Package{ID: 3, TotalCredits: 10, UsedCredits: 11}, Remaining: -1},
		},
	}
	app := newPackageTestApp(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/packages?clientId=9", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastClientID != 9 {
		t.Fatalf("expected client id 9, got %d", service.lastClientID)
	}

	var body struct {
		Packages []models.PackageBalance `json:"packages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(body.Packages) != 1 || body.Packages[0].Remaining != -1 {
		t.Fatalf("expected over-booked balance to pass through, got %+v", body.Packages)
	}
}

func TestCreatePackageParsesExpiryDate(t *testing.T) {
	service := &stubPackageService{createResult: &models.Package{ID: 7}}
	app := newPackageTestApp(service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/packages", strings.NewReader(`{
		"clientId": 9,
		"type": "puppy-starter",
		"totalCredits": 6,
		"priceCents": 30000,
		"currency": "usd",
		"expiresOn": "2026-12-31"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastCreateInput.ClientID != 9 || service.lastCreateInput.TotalCredits != 6 {
		t.Fatalf("unexpected input: %+v", service.lastCreateInput)
	}
	if service.lastCreateInput.ExpiresOn == nil || service.lastCreateInput.ExpiresOn.Format("2006-01-02") != "2026-12-31" {
		t.Fatalf("expected parsed expiry, got %+v", service.lastCreateInput.ExpiresOn)
	}
}

func TestCreatePackageRejectsBadExpiryDate(t *testing.T) {
	service := &stubPackageService{}
	app := newPackageTestApp(service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/packages", strings.NewReader(`{
		"clientId": 9,
		"type": "puppy-starter",
		"totalCredits": 6,
		"expiresOn": "end of year"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreatePackageMapsMissingClientToNotFound(t *testing.T) {
	service := &stubPackageService{createErr: services.ErrClientNotFound}
	app := newPackageTestApp(service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/packages", strings.NewReader(`{
		"clientId": 404,
		"type": "puppy-starter",
		"totalCredits": 6
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCreateTemplateReturnsCreated(t *testing.T) {
	service := &stubPackageService{templateResult: &models.Package{ID: 2, IsTemplate: true}}
	app := newPackageTestApp(service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/packages/templates", strings.NewReader(`{
		"type": "agility-block",
		"totalCredits": 8,
		"priceCents": 52000
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastTemplateInput.Type != "agility-block" || service.lastTemplateInput.TotalCredits != 8 {
		t.Fatalf("unexpected input: %+v", service.lastTemplateInput)
	}
}
