package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/marksheet-go-api/internal/config"
	"github.com/noah-isme/marksheet-go-api/internal/dto"
	"github.com/noah-isme/marksheet-go-api/internal/handler"
	"github.com/noah-isme/marksheet-go-api/internal/models"
	"github.com/noah-isme/marksheet-go-api/internal/repository"
	"github.com/noah-isme/marksheet-go-api/internal/router"
	"github.com/noah-isme/marksheet-go-api/internal/service"
	"github.com/noah-isme/marksheet-go-api/internal/utils"
)

func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Student{}, &models.SubjectMark{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	studentRepo := repository.NewStudentRepository(db)
	markRepo := repository.NewSubjectMarkRepository(db)

	marksheetService := service.NewMarksheetService(studentRepo, markRepo, validate, nil, time.Minute, "Kathmandu", logger)
	studentService := service.NewStudentService(studentRepo, markRepo, validate, marksheetService, logger)
	importService := service.NewImportService(studentRepo, markRepo, logger)

	app := fiber.New()
	router.Register(app, config.Config{
		AppName:           "Test",
		JWTSecret:         "secret",
		PassingPercentage: 33,
		ImportRateLimit:   100,
		ImportRateWindow:  time.Minute,
	}, router.Dependencies{
		StudentHandler:   handler.NewStudentHandler(studentService, logger),
		ImportHandler:    handler.NewImportHandler(importService, logger),
		MarksheetHandler: handler.NewMarksheetHandler(marksheetService, 33, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(1))
			c.Locals("user_role", "admin")
			return c.Next()
		},
	})

	return app
}

func studentPayload() dto.StudentRequest {
	theory := 60.0
	return dto.StudentRequest{
		RollNumber:      "10245",
		Name:            "Asha Rai",
		FatherName:      "Hari Rai",
		MotherName:      "Gita Rai",
		DateOfBirth:     "15-07-2003",
		Gender:          "Female",
		Faculty:         "SCIENCE",
		Class:           "12th",
		AcademicSession: "2023-2024",
		Marks: []dto.SubjectMarkRequest{{
			SubjectName:         "Physics",
			Category:            "Compulsory",
			MaxMarks:            100,
			TheoryMarksObtained: &theory,
		}},
	}
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeData(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()

	var envelope utils.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))

	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, target))
}

func TestStudentHandlerLifecycle(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/students", studentPayload())
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created dto.StudentResponse
	decodeData(t, resp, &created)
	require.Equal(t, "2003-07-15", created.DateOfBirth)
	require.Len(t, created.Marks, 1)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/students", studentPayload())
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/students/"+created.ID.String(), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var fetched dto.StudentResponse
	decodeData(t, resp, &fetched)
	require.Equal(t, created.ID, fetched.ID)

	changed := studentPayload()
	changed.Name = "Asha K. Rai"
	resp = doJSON(t, app, http.MethodPut, "/api/v1/students/"+created.ID.String(), changed)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var updated dto.StudentResponse
	decodeData(t, resp, &updated)
	require.Equal(t, "Asha K. Rai", updated.Name)

	resp = doJSON(t, app, http.MethodDelete, "/api/v1/students/"+created.ID.String(), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/students/"+created.ID.String(), nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestStudentHandlerList(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/students", studentPayload())
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/v1/students?search=asha", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var listed dto.StudentListResponse
	decodeData(t, resp, &listed)
	require.Equal(t, int64(1), listed.Total)
	require.Len(t, listed.Students, 1)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/students?faculty=ARTS", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	decodeData(t, resp, &listed)
	require.Equal(t, int64(0), listed.Total)
}

func TestStudentHandlerRejectsBadInput(t *testing.T) {
	app := setupApp(t)

	bad := studentPayload()
	bad.AcademicSession = "2023-2030"
	resp := doJSON(t, app, http.MethodPost, "/api/v1/students", bad)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/students/not-a-uuid", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
