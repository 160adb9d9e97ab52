package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/dogdesk/DogDeskBack/internal/models"
	"github.com/dogdesk/DogDeskBack/internal/repository"
	"github.com/dogdesk/DogDeskBack/internal/services"
	"github.com/gofiber/fiber/v2"
)

type SessionHandler struct {
	service sessionApplicationService
}

type sessionApplicationService interface {
	CreateSession(ctx context.Context, input services.CreateSessionInput) (*models.Session, error)
	UpdateSession(ctx context.Context, sessionID int64, patch services.SessionPatch) (*services.UpdateSessionResult, error)
	DeleteSession(ctx context.Context, sessionID int64) (bool, error)
	GetSession(ctx context.Context, sessionID int64) (*models.Session, error)
	ListSessions(ctx context.Context, filter repository.SessionListFilter) ([]models.Session, error)
}

func NewSessionHandler(service *services.SessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

type createSessionRequest struct {
	DogID           int64    `json:"dogId"`
	Title           *string  `json:"title"`
	TrainerID       *int64   `json:"trainerId"`
	ClientID        *int64   `json:"clientId"`
	StartTime       string   `json:"startTime"`
	DurationMinutes int      `json:"durationMinutes"`
	Location        string   `json:"location"`
	Status          string   `json:"status"`
	Notes           *string  `json:"notes"`
	Objectives      []string `json:"objectives"`
	PackageID       *int64   `json:"packageId"`
	TravelMinutes   int      `json:"travelMinutes"`
	BufferMinutes   int      `json:"bufferMinutes"`
}

func (h *SessionHandler) CreateSession(c *fiber.Ctx) error {
	var req createSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	startTime, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartTime))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "startTime must be a valid RFC3339 timestamp"})
	}

	session, err := h.service.CreateSession(c.Context(), services.CreateSessionInput{
		DogID:           req.DogID,
		ClientID:        req.ClientID,
		TrainerID:       req.TrainerID,
		StartTime:       startTime,
		DurationMinutes: req.DurationMinutes,
		Location:        req.Location,
		Status:          req.Status,
		Title:           req.Title,
		Notes:           req.Notes,
		Objectives:      req.Objectives,
		PackageID:       req.PackageID,
		TravelMinutes:   req.TravelMinutes,
		BufferMinutes:   req.BufferMinutes,
	})
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) UpdateSession(c *fiber.Ctx) error {
	sessionID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || sessionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	// Decode to raw keys first: "packageId": null must clear the package,
	// which a plain struct decode cannot tell apart from an absent key.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &raw); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	patch, err := buildSessionPatch(raw)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := h.service.UpdateSession(c.Context(), sessionID, patch)
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.JSON(fiber.Map{
		"updated":     true,
		"objectives":  result.Objectives,
		"sessionNote": result.SessionNote,
		"title":       result.Title,
	})
}

func buildSessionPatch(raw map[string]json.RawMessage) (services.SessionPatch, error) {
	var patch services.SessionPatch

	decode := func(key string, target any) error {
		value, ok := raw[key]
		if !ok {
			return nil
		}
		if err := json.Unmarshal(value, target); err != nil {
			return errors.New(key + " has an invalid value")
		}
		return nil
	}

	if err := decode("objective", &patch.Objective); err != nil {
		return patch, err
	}
	if err := decode("objectives", &patch.Objectives); err != nil {
		return patch, err
	}
	if err := decode("note", &patch.Note); err != nil {
		return patch, err
	}
	// sessionNote is the older key for the same field; note wins when both
	// are supplied.
	if patch.Note == nil {
		if err := decode("sessionNote", &patch.Note); err != nil {
			return patch, err
		}
	}
	if err := decode("title", &patch.Title); err != nil {
		return patch, err
	}
	if rawStart, ok := raw["startTime"]; ok {
		var value string
		if err := json.Unmarshal(rawStart, &value); err != nil {
			return patch, errors.New("startTime has an invalid value")
		}
		startTime, err := time.Parse(time.RFC3339, strings.TrimSpace(value))
		if err != nil {
			return patch, errors.New("startTime must be a valid RFC3339 timestamp")
		}
		startTime = startTime.UTC()
		patch.StartTime = &startTime
	}
	if err := decode("durationMinutes", &patch.DurationMinutes); err != nil {
		return patch, err
	}
	if err := decode("location", &patch.Location); err != nil {
		return patch, err
	}
	if err := decode("status", &patch.Status); err != nil {
		return patch, err
	}
	if err := decode("trainerId", &patch.TrainerID); err != nil {
		return patch, err
	}
	if err := decode("travelMinutes", &patch.TravelMinutes); err != nil {
		return patch, err
	}
	if err := decode("bufferMinutes", &patch.BufferMinutes); err != nil {
		return patch, err
	}
	if value, ok := raw["packageId"]; ok {
		patch.SetPackage = true
		if err := json.Unmarshal(value, &patch.PackageID); err != nil {
			return patch, errors.New("packageId has an invalid value")
		}
	}
	if err := decode("linkNoteToDog", &patch.LinkNoteToDog); err != nil {
		return patch, err
	}

	return patch, nil
}

func (h *SessionHandler) DeleteSession(c *fiber.Ctx) error {
	sessionID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || sessionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	if _, err := h.service.DeleteSession(c.Context(), sessionID); err != nil {
		return mapSessionError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	sessionID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || sessionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	session, err := h.service.GetSession(c.Context(), sessionID)
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) ListSessions(c *fiber.Ctx) error {
	timeframe := strings.TrimSpace(c.Query("timeframe"))
	if timeframe != "" && timeframe != "upcoming" && timeframe != "past" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "timeframe must be upcoming or past"})
	}

	filter := repository.SessionListFilter{Timeframe: timeframe}
	if dogID := c.QueryInt("dogId"); dogID > 0 {
		filter.DogID = int64(dogID)
	}
	if clientID := c.QueryInt("clientId"); clientID > 0 {
		filter.ClientID = int64(clientID)
	}

	sessions, err := h.service.ListSessions(c.Context(), filter)
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.JSON(fiber.Map{"sessions": sessions})
}

func mapSessionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrEmptyPatch),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrPackageClientMismatch):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrDogNotFound),
		errors.Is(err, services.ErrClientNotFound),
		errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrTrainerNotFound),
		errors.Is(err, services.ErrPackageNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrNotConfigured):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	default:
		logUnexpected(c, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process session request"})
	}
}
