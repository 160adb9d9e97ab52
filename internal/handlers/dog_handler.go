package handlers

import (
	"errors"
	"strings"

	"github.com/dogdesk/DogDeskBack/internal/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type DogHandler struct {
	dogRepo    *repository.DogRepository
	clientRepo *repository.ClientRepository
}

func NewDogHandler(dogRepo *repository.DogRepository, clientRepo *repository.ClientRepository) *DogHandler {
	return &DogHandler{dogRepo: dogRepo, clientRepo: clientRepo}
}

type createDogRequest struct {
	ClientID int64   `json:"clientId"`
	Name     string  `json:"name"`
	Breed    *string `json:"breed"`
	Notes    *string `json:"notes"`
}

func (h *DogHandler) CreateDog(c *fiber.Ctx) error {
	var req createDogRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}
	if req.ClientID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "clientId is required"})
	}

	if _, err := h.clientRepo.GetByID(c.Context(), req.ClientID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
		}
		logUnexpected(c, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create dog"})
	}

	dog, err := h.dogRepo.Create(c.Context(), repository.CreateDogInput{
		ClientID: req.ClientID,
		Name:     strings.TrimSpace(req.Name),
		Breed:    req.Breed,
		Notes:    req.Notes,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
		}
		logUnexpected(c, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create dog"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"dog": dog})
}

func (h *DogHandler) ListDogs(c *fiber.Ctx) error {
	clientID := int64(c.QueryInt("clientId"))
	if clientID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "clientId query parameter is required"})
	}

	dogs, err := h.dogRepo.ListByClient(c.Context(), clientID)
	if err != nil {
		logUnexpected(c, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list dogs"})
	}

	return c.JSON(fiber.Map{"dogs": dogs})
}
