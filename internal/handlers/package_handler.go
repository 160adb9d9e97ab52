package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dogdesk/DogDeskBack/internal/models"
	"github.com/dogdesk/DogDeskBack/internal/services"
	"github.com/gofiber/fiber/v2"
)

type PackageHandler struct {
	service packageApplicationService
}

type packageApplicationService interface {
	ListForClient(ctx context.Context, clientID int64) ([]models.PackageBalance, error)
	ListTemplates(ctx context.Context) ([]models.Package, error)
	CreateForClient(ctx context.Context, input services.CreatePackageInput) (*models.Package, error)
	CreateTemplate(ctx context.Context, input services.CreateTemplateInput) (*models.Package, error)
}

func NewPackageHandler(service *services.PackageService) *PackageHandler {
	return &PackageHandler{service: service}
}

type createPackageRequest struct {
	ClientID     int64   `json:"clientId"`
	Type         string  `json:"type"`
	TotalCredits int     `json:"totalCredits"`
	PriceCents   int64   `json:"priceCents"`
	Currency     string  `json:"currency"`
	ExpiresOn    *string `json:"expiresOn"`
}

type createTemplateRequest struct {
	Type         string  `json:"type"`
	TotalCredits int     `json:"totalCredits"`
	PriceCents   int64   `json:"priceCents"`
	Currency     string  `json:"currency"`
	ExpiresOn    *string `json:"expiresOn"`
}

func (h *PackageHandler) ListPackages(c *fiber.Ctx) error {
	clientID := int64(c.QueryInt("clientId"))
	balances, err := h.service.ListForClient(c.Context(), clientID)
	if err != nil {
		return mapPackageError(c, err)
	}
	return c.JSON(fiber.Map{"packages": balances})
}

func (h *PackageHandler) ListTemplates(c *fiber.Ctx) error {
	templates, err := h.service.ListTemplates(c.Context())
	if err != nil {
		return mapPackageError(c, err)
	}
	return c.JSON(fiber.Map{"templates": templates})
}

func (h *PackageHandler) CreatePackage(c *fiber.Ctx) error {
	var req createPackageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	expiresOn, err := parseExpiresOn(req.ExpiresOn)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	pkg, err := h.service.CreateForClient(c.Context(), services.CreatePackageInput{
		ClientID:     req.ClientID,
		Type:         req.Type,
		TotalCredits: req.TotalCredits,
		PriceCents:   req.PriceCents,
		Currency:     req.Currency,
		ExpiresOn:    expiresOn,
	})
	if err != nil {
		return mapPackageError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"package": pkg})
}

func (h *PackageHandler) CreateTemplate(c *fiber.Ctx) error {
	var req createTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	expiresOn, err := parseExpiresOn(req.ExpiresOn)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	template, err := h.service.CreateTemplate(c.Context(), services.CreateTemplateInput{
		Type:         req.Type,
		TotalCredits: req.TotalCredits,
		PriceCents:   req.PriceCents,
		Currency:     req.Currency,
		ExpiresOn:    expiresOn,
	})
	if err != nil {
		return mapPackageError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"template": template})
}

func parseExpiresOn(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(*value))
	if err != nil {
		return nil, errors.New("expiresOn must be a YYYY-MM-DD date")
	}
	return &parsed, nil
}

func mapPackageError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrClientNotFound),
		errors.Is(err, services.ErrPackageNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrNotConfigured):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	default:
		logUnexpected(c, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process package request"})
	}
}
