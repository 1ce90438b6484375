package handler_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/marksheet-go-api/internal/dto"
)

func buildWorkbook(t *testing.T) []byte {
	t.Helper()

	file := excelize.NewFile()

	studentSheet := "Student Details"
	index, err := file.NewSheet(studentSheet)
	require.NoError(t, err)
	file.SetActiveSheet(index)
	header := []interface{}{"Student ID", "Student Name", "Father Name", "Mother Name", "Date of Birth", "Gender", "Faculty", "Class", "Registration No"}
	require.NoError(t, file.SetSheetRow(studentSheet, "A1", &header))
	row := []interface{}{"S1", "Asha Rai", "Hari Rai", "Gita Rai", "15-07-2003", "Female", "SCIENCE", "12th", ""}
	require.NoError(t, file.SetSheetRow(studentSheet, "A2", &row))

	markSheet := "Student Marks Details"
	_, err = file.NewSheet(markSheet)
	require.NoError(t, err)
	markHeader := []interface{}{"Student ID", "Subject Name", "Subject Category", "Max Marks", "Theory Pass Marks", "Practical Pass Marks", "Theory Marks Obtained", "Practical Marks Obtained"}
	require.NoError(t, file.SetSheetRow(markSheet, "A1", &markHeader))
	markRow := []interface{}{"S1", "Physics", "Compulsory", 100, "", "", 60, 20}
	require.NoError(t, file.SetSheetRow(markSheet, "A2", &markRow))

	require.NoError(t, file.DeleteSheet("Sheet1"))

	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))
	return buf.Bytes()
}

func uploadWorkbook(t *testing.T, app *fiber.App, session string, data []byte) *http.Response {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("session", session))

	part, err := writer.CreateFormFile("file", "students.xlsx")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestImportHandlerUpload(t *testing.T) {
	app := setupApp(t)

	resp := uploadWorkbook(t, app, "2023-2024", buildWorkbook(t))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var summary dto.ImportSummaryResponse
	decodeData(t, resp, &summary)
	require.Equal(t, "2023-2024", summary.Session)
	require.Equal(t, 1, summary.Students.Added)
	require.Equal(t, 1, summary.Marks.Added)
	require.NotEmpty(t, summary.Students.Rows[0].SystemID)

	// The imported student is immediately servable as a marksheet.
	resp = doJSON(t, app, http.MethodGet, "/api/v1/students/"+summary.Students.Rows[0].SystemID+"/marksheet", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var marksheet dto.MarksheetResponse
	decodeData(t, resp, &marksheet)
	require.Equal(t, 80.0, marksheet.AggregateMarks)
}

func TestImportHandlerRejectsBadRequests(t *testing.T) {
	app := setupApp(t)
	workbook := buildWorkbook(t)

	resp := uploadWorkbook(t, app, "2023-2030", workbook)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = uploadWorkbook(t, app, "2023-2024", []byte("plain text, not a workbook"))
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("session", "2023-2024"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
