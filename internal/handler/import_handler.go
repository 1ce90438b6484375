package handler

import (
	"errors"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/marksheet-go-api/internal/service"
	"github.com/noah-isme/marksheet-go-api/internal/utils"
)

// ImportHandler accepts workbook uploads for bulk import.
type ImportHandler struct {
	service service.ImportService
	logger  zerolog.Logger
}

// NewImportHandler constructs the handler.
func NewImportHandler(service service.ImportService, logger zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		service: service,
		logger:  logger.With().Str("component", "import_handler").Logger(),
	}
}

// Register wires the import route.
func (h *ImportHandler) Register(router fiber.Router) {
	router.Post("", h.upload)
}

func (h *ImportHandler) upload(c *fiber.Ctx) error {
	session := strings.TrimSpace(c.FormValue("session"))
	if err := service.ValidateSessionLabel(session); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "failed to open uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "failed to read uploaded file")
	}

	if !isWorkbookContentType(data) {
		return utils.SendError(c, fiber.StatusBadRequest, "file must be an xlsx workbook")
	}

	summary, err := h.service.Import(c.Context(), data, session)
	if err != nil {
		if errors.Is(err, service.ErrWorkbookUnreadable) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("import failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "import failed")
	}

	return utils.SendSuccess(c, "import processed", summary)
}

// isWorkbookContentType sniffs the upload; xlsx files are zip containers so
// both the specific OOXML type and plain zip are accepted.
func isWorkbookContentType(data []byte) bool {
	detected := mimetype.Detect(data)
	return detected.Is("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet") ||
		detected.Is("application/zip")
}
