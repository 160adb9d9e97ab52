package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/dogdesk/DogDeskBack/internal/models"
	"github.com/dogdesk/DogDeskBack/internal/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type ClientHandler struct {
	clientRepo *repository.ClientRepository
	dogRepo    *repository.DogRepository
}

func NewClientHandler(clientRepo *repository.ClientRepository, dogRepo *repository.DogRepository) *ClientHandler {
	return &ClientHandler{clientRepo: clientRepo, dogRepo: dogRepo}
}

type createClientRequest struct {
	Name  string  `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

func (h *ClientHandler) CreateClient(c *fiber.Ctx) error {
	var req createClientRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	client, err := h.clientRepo.Create(c.Context(), repository.CreateClientInput{
		Name:  strings.TrimSpace(req.Name),
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		logUnexpected(c, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create client"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"client": client})
}

func (h *ClientHandler) ListClients(c *fiber.Ctx) error {
	page, limit := pageParams(c)

	clients, err := h.clientRepo.List(c.Context(), limit, (page-1)*limit)
	if err != nil {
		logUnexpected(c, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list clients"})
	}

	total, err := h.clientRepo.Count(c.Context())
	if err != nil {
		logUnexpected(c, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list clients"})
	}

	return c.JSON(fiber.Map{
		"clients":    clients,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *ClientHandler) GetClient(c *fiber.Ctx) error {
	clientID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || clientID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid client id"})
	}

	client, err := h.clientRepo.GetByID(c.Context(), clientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
		}
		logUnexpected(c, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch client"})
	}

	dogs, err := h.dogRepo.ListByClient(c.Context(), clientID)
	if err != nil {
		logUnexpected(c, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch client"})
	}

	return c.JSON(fiber.Map{"client": models.ClientDetail{
		Client: *client,
		Dogs:   dogs,
	}})
}
