package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/marksheet-go-api/internal/dto"
	"github.com/noah-isme/marksheet-go-api/internal/service"
	"github.com/noah-isme/marksheet-go-api/internal/utils"
)

// MarksheetHandler exposes computed marksheets for display and printing.
type MarksheetHandler struct {
	service           service.MarksheetService
	passingPercentage float64
	logger            zerolog.Logger
}

// NewMarksheetHandler constructs the handler. passingPercentage is the
// default overall threshold applied when the caller does not supply one.
func NewMarksheetHandler(service service.MarksheetService, passingPercentage float64, logger zerolog.Logger) *MarksheetHandler {
	return &MarksheetHandler{
		service:           service,
		passingPercentage: passingPercentage,
		logger:            logger.With().Str("component", "marksheet_handler").Logger(),
	}
}

// RegisterStudentRoutes attaches the per-student marksheet route.
func (h *MarksheetHandler) RegisterStudentRoutes(router fiber.Router) {
	router.Get("/:id/marksheet", h.forStudent)
}

// RegisterPreviewRoutes attaches the draft preview route.
func (h *MarksheetHandler) RegisterPreviewRoutes(router fiber.Router) {
	router.Post("/preview", h.preview)
}

func (h *MarksheetHandler) forStudent(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	percentage, err := parseQueryFloat(c, "passing_percentage", h.passingPercentage)
	if err != nil || percentage < 0 || percentage > 100 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid passing percentage")
	}

	marksheet, err := h.service.ForStudent(c.Context(), id, percentage)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to compute marksheet")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute marksheet")
	}

	return utils.SendSuccess(c, "marksheet computed", marksheet)
}

func (h *MarksheetHandler) preview(c *fiber.Ctx) error {
	var payload dto.MarksheetPreviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	marksheet, err := h.service.Preview(c.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStudent), isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to compute preview")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute preview")
		}
	}

	return utils.SendSuccess(c, "marksheet computed", marksheet)
}
