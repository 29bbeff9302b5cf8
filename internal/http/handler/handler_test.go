package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"casedocs/docs"
	"casedocs/internal/apperr"
	"casedocs/internal/http/middleware"
	"casedocs/internal/logger"
	"casedocs/internal/model"
	"casedocs/internal/policy"
	"casedocs/internal/service"
	serviceMocks "casedocs/internal/service/mocks"
)

// newTestApp wires the full route table with an identified caller.
func newTestApp(t *testing.T, svc service.DocumentService, db *sql.DB) *fiber.App {
	t.Helper()
	pol, err := policy.Default()
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger.Nop())})
	app.Use(middleware.RequestID())
	RegisterRoutes(app, db, svc, pol, prometheus.NewRegistry())
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path, roles string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = bytes.NewBufferString(b)
		default:
			buf, err := json.Marshal(b)
			require.NoError(t, err)
			r = bytes.NewReader(buf)
		}
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if roles != "" {
		req.Header.Set(middleware.UserIDHeader, "7")
		req.Header.Set(middleware.UserRolesHeader, roles)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newTestApp(t, mockSvc, nil)

	t.Run("success", func(t *testing.T) {
		docs := []model.Document{{ID: uuid.New().String(), SubjectID: 42, Name: "decl"}}
		mockSvc.On("List", mock.Anything, int64(42)).Return(docs, nil).Once()

		resp := doRequest(t, app, http.MethodGet, "/api/docs?subjectId=42", "researcher", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result []model.Document
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Len(t, result, 1)
		assert.Equal(t, docs[0].ID, result[0].ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid subject id", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/api/docs?subjectId=abc", "researcher", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		assert.NotEmpty(t, body.RequestID)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, int64(42)).Return(nil, errors.New("db down")).Once()

		resp := doRequest(t, app, http.MethodGet, "/api/docs?subjectId=42", "researcher", nil)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
		assert.NotContains(t, body.Error.Message, "db down")
		mockSvc.AssertExpectations(t)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/api/docs?subjectId=42", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, resp).Error.Code)
	})
}

func TestAddDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newTestApp(t, mockSvc, nil)

	body := map[string]any{
		"subjectId":   42,
		"jobId":       7,
		"type":        "assetDeclaration",
		"status":      "waitingOCR",
		"date":        "2024-05-17",
		"name":        "decl 2024",
		"downloadUrl": "https://example.org/decl.pdf",
	}

	t.Run("success", func(t *testing.T) {
		want := service.AddDocumentInput{
			SubjectID:   42,
			JobID:       7,
			Type:        model.DocumentTypeAssetDeclaration,
			Status:      model.StatusWaitingOCR,
			Date:        time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC),
			Name:        "decl 2024",
			DownloadURL: "https://example.org/decl.pdf",
			UserID:      7,
		}
		doc := &model.Document{ID: uuid.New().String(), SubjectID: 42, Status: model.StatusWaitingOCR}
		mockSvc.On("Add", mock.Anything, want).Return(doc, nil).Once()

		resp := doRequest(t, app, http.MethodPost, "/api/docs", "researcher", body)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result model.Document
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, doc.ID, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing type and bad date", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPost, "/api/docs", "researcher", map[string]any{
			"subjectId": 42, "status": "waitingOCR", "date": "17/05/2024", "name": "x", "downloadUrl": "https://e.org/a",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_ERROR", res.Error.Code)
		assert.Len(t, res.Error.Details, 2)
	})

	t.Run("unknown status value", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPost, "/api/docs", "researcher", map[string]any{
			"subjectId": 42, "type": "assetDeclaration", "status": "shredded", "name": "x", "downloadUrl": "https://e.org/a",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", decodeError(t, resp).Error.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPost, "/api/docs", "researcher", "{not json")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("duplicate", func(t *testing.T) {
		mockSvc.On("Add", mock.Anything, mock.Anything).Return(nil, apperr.DocumentAlreadyExists).Once()

		resp := doRequest(t, app, http.MethodPost, "/api/docs", "researcher", body)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "DOCUMENT_ALREADY_EXISTS", decodeError(t, resp).Error.Code)
	})

	t.Run("enqueue failed carries document id", func(t *testing.T) {
		err := apperr.OCREnqueueFailed.WithDetails(map[string]string{"documentId": "d-1"}).Wrap(errors.New("redis down"))
		mockSvc.On("Add", mock.Anything, mock.Anything).Return(nil, err).Once()

		resp := doRequest(t, app, http.MethodPost, "/api/docs", "researcher", body)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "OCR_ENQUEUE_FAILED", res.Error.Code)
		assert.Equal(t, map[string]any{"documentId": "d-1"}, res.Error.Details)
	})

	t.Run("download timeout", func(t *testing.T) {
		mockSvc.On("Add", mock.Anything, mock.Anything).Return(nil, apperr.DownloadTimeout).Once()

		resp := doRequest(t, app, http.MethodPost, "/api/docs", "researcher", body)
		assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	})
}

func TestGetDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newTestApp(t, mockSvc, nil)

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(&model.Document{ID: id, Name: "decl"}, nil).Once()

		resp := doRequest(t, app, http.MethodGet, "/api/docs/"+id, "reviewer", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.Document
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, id, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(nil, apperr.DocumentNotFound).Once()

		resp := doRequest(t, app, http.MethodGet, "/api/docs/"+id, "reviewer", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "DOCUMENT_NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/api/docs/invalid-uuid", "reviewer", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
	})
}

func TestUpdateDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newTestApp(t, mockSvc, nil)
	id := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		want := service.UpdateDocumentInput{
			JobID:  3,
			Type:   model.DocumentTypeInterestDeclaration,
			Status: model.StatusValidated,
			Name:   "renamed",
			UserID: 7,
		}
		mockSvc.On("Update", mock.Anything, id, want).Return(&model.Document{ID: id, Status: model.StatusValidated}, nil).Once()

		resp := doRequest(t, app, http.MethodPut, "/api/docs/"+id, "reviewer", map[string]any{
			"jobId": 3, "type": "interestDeclaration", "status": "validated", "name": "renamed",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid transition", func(t *testing.T) {
		mockSvc.On("Update", mock.Anything, id, mock.Anything).Return(nil, apperr.InvalidStatusTransition).Once()

		resp := doRequest(t, app, http.MethodPut, "/api/docs/"+id, "reviewer", map[string]any{
			"type": 0, "status": 0, "name": "x",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "INVALID_STATUS_TRANSITION", decodeError(t, resp).Error.Code)
	})
}

func TestDeleteDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newTestApp(t, mockSvc, nil)

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id, int64(7)).Return(nil).Once()

		resp := doRequest(t, app, http.MethodDelete, "/api/docs/"+id, "coordinator", nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("forbidden for researcher", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodDelete, "/api/docs/"+uuid.New().String(), "researcher", nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "FORBIDDEN", decodeError(t, resp).Error.Code)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id, int64(7)).Return(apperr.DocumentNotFound).Once()

		resp := doRequest(t, app, http.MethodDelete, "/api/docs/"+id, "admin", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestDocumentData(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newTestApp(t, mockSvc, nil)
	id := uuid.New().String()

	t.Run("update", func(t *testing.T) {
		mockSvc.On("UpdateData", mock.Anything, id, int64(7), `{"assets":[]}`).Return(nil).Once()

		resp := doRequest(t, app, http.MethodPut, "/api/docs/"+id+"/data", "reviewer", map[string]any{"data": `{"assets":[]}`})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("update without data", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPut, "/api/docs/"+id+"/data", "reviewer", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", decodeError(t, resp).Error.Code)
	})

	t.Run("get", func(t *testing.T) {
		data := `{"assets":[]}`
		mockSvc.On("GetData", mock.Anything, id).Return(&model.DocumentData{ID: id, Data: &data}, nil).Once()

		resp := doRequest(t, app, http.MethodGet, "/api/docs/"+id+"/data", "researcher", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var out model.DocumentData
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		require.NotNil(t, out.Data)
		assert.Equal(t, data, *out.Data)
	})

	t.Run("get raw", func(t *testing.T) {
		raw := "OCR text"
		mockSvc.On("GetDataRaw", mock.Anything, id).Return(&model.DocumentDataRaw{ID: id, DataRaw: &raw}, nil).Once()

		resp := doRequest(t, app, http.MethodGet, "/api/docs/"+id+"/dataraw", "researcher", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var out model.DocumentDataRaw
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, raw, *out.DataRaw)
	})
}

func TestGetOriginalDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newTestApp(t, mockSvc, nil)
	id := uuid.New().String()

	mockSvc.On("GetOriginalURL", mock.Anything, id).Return("https://storage.example/signed", nil).Once()

	resp := doRequest(t, app, http.MethodGet, "/api/docs/"+id+"/odoc", "researcher", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "https://storage.example/signed", out["url"])
}

func TestResubmitDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newTestApp(t, mockSvc, nil)
	id := uuid.New().String()

	t.Run("accepted", func(t *testing.T) {
		mockSvc.On("Resubmit", mock.Anything, id).Return(nil).Once()

		resp := doRequest(t, app, http.MethodPost, "/api/docs/"+id+"/resubmit", "coordinator", nil)
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("reviewer is forbidden", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPost, "/api/docs/"+id+"/resubmit", "reviewer", nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestRouting(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newTestApp(t, mockSvc, nil)

	t.Run("not found route", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/non-existent", "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// Health endpoint only allows GET
		resp := doRequest(t, app, http.MethodPost, "/health", "", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Error.Code)
	})

	t.Run("metrics exposed", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/metrics", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("swagger doc ignores request host", func(t *testing.T) {
		for _, host := range []string{"api.example.com", "10.0.0.7:8080"} {
			req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
			req.Host = host
			req.Header.Set("X-Forwarded-Proto", "https")
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Contains(t, string(body), `"host": ""`)
			assert.NotContains(t, string(body), host)
		}
		assert.Empty(t, docs.SwaggerInfo.Host)
		assert.Empty(t, docs.SwaggerInfo.Schemes)
	})
}
