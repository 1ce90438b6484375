package handler_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/marksheet-go-api/internal/dto"
)

func TestMarksheetHandlerForStudent(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/students", studentPayload())
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created dto.StudentResponse
	decodeData(t, resp, &created)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/students/"+created.ID.String()+"/marksheet", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var marksheet dto.MarksheetResponse
	decodeData(t, resp, &marksheet)
	require.NotNil(t, marksheet.Student)
	require.Equal(t, 60.0, marksheet.AggregateMarks)
	require.Equal(t, "Pass", marksheet.OverallResult)
	require.Equal(t, "Sixty", marksheet.TotalMarksInWords)
	require.Equal(t, "Kathmandu", marksheet.IssuePlace)
	require.NotEmpty(t, marksheet.MarksheetNumber)

	// A stricter explicit threshold flips the verdict.
	resp = doJSON(t, app, http.MethodGet, "/api/v1/students/"+created.ID.String()+"/marksheet?passing_percentage=75", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	decodeData(t, resp, &marksheet)
	require.Equal(t, "Fail", marksheet.OverallResult)
}

func TestMarksheetHandlerBadRequests(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/students/"+uuid.NewString()+"/marksheet", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/students/not-a-uuid/marksheet", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/students", studentPayload())
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created dto.StudentResponse
	decodeData(t, resp, &created)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/students/"+created.ID.String()+"/marksheet?passing_percentage=150", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestMarksheetHandlerPreview(t *testing.T) {
	app := setupApp(t)

	theory := 70.0
	payload := dto.MarksheetPreviewRequest{
		Subjects: []dto.MarksheetSubjectRequest{{
			SubjectName:         "Maths",
			Category:            "Compulsory",
			MaxMarks:            100,
			TheoryMarksObtained: &theory,
		}},
		PassingPercentage: 33,
	}

	resp := doJSON(t, app, http.MethodPost, "/api/v1/marksheets/preview", payload)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var marksheet dto.MarksheetResponse
	decodeData(t, resp, &marksheet)
	require.Nil(t, marksheet.Student)
	require.Equal(t, 70.0, marksheet.AggregateMarks)
	require.Equal(t, "Pass", marksheet.OverallResult)

	payload.Subjects[0].Category = "Optional"
	resp = doJSON(t, app, http.MethodPost, "/api/v1/marksheets/preview", payload)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/marksheets/preview", dto.MarksheetPreviewRequest{})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
