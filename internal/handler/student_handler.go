package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/marksheet-go-api/internal/dto"
	"github.com/noah-isme/marksheet-go-api/internal/service"
	"github.com/noah-isme/marksheet-go-api/internal/utils"
)

// StudentHandler wires student management endpoints.
type StudentHandler struct {
	service service.StudentService
	logger  zerolog.Logger
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(service service.StudentService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		service: service,
		logger:  logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register attaches student routes to the router group.
func (h *StudentHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *StudentHandler) create(c *fiber.Ctx) error {
	var payload dto.StudentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	student, err := h.service.Create(c.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStudentExists):
			return utils.SendError(c, fiber.StatusConflict, "student already exists for this session")
		case errors.Is(err, service.ErrInvalidStudent), isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create student")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create student")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student created", student)
}

func (h *StudentHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	if page <= 0 {
		page = 1
	}

	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}
	if pageSize <= 0 {
		pageSize = 20
	} else if pageSize > 100 {
		pageSize = 100
	}

	req := dto.StudentListRequest{
		Search:   c.Query("search"),
		Faculty:  c.Query("faculty"),
		Class:    c.Query("class"),
		Session:  c.Query("session"),
		Page:     page,
		PageSize: pageSize,
	}

	response, err := h.service.List(c.Context(), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list students")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list students")
	}

	return utils.SendSuccess(c, "students retrieved", response)
}

func (h *StudentHandler) get(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	student, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch student")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch student")
	}

	return utils.SendSuccess(c, "student retrieved", student)
}

func (h *StudentHandler) update(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.StudentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	student, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStudentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		case errors.Is(err, service.ErrStudentExists):
			return utils.SendError(c, fiber.StatusConflict, "student already exists for this session")
		case errors.Is(err, service.ErrInvalidStudent), isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update student")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update student")
		}
	}

	return utils.SendSuccess(c, "student updated", student)
}

func (h *StudentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete student")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete student")
	}

	return utils.SendSuccess(c, "student deleted", nil)
}
