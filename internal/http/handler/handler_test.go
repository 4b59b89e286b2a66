package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"hisapi/internal/auth"
	"hisapi/internal/config"
	"hisapi/internal/database"
	"hisapi/internal/http/middleware"
	"hisapi/internal/model"
	"hisapi/internal/service"
	serviceMocks "hisapi/internal/service/mocks"
)

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
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

	tables := func(names ...string) *sqlmock.Rows {
		rows := sqlmock.NewRows([]string{"table_name"})
		for _, n := range names {
			rows.AddRow(n)
		}
		return rows
	}

	type healthBody struct {
		Status   string          `json:"status"`
		Database database.Health `json:"database"`
	}

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)
		dbMock.ExpectQuery("information_schema.tables").WillReturnRows(tables(database.Tables...))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body healthBody
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body.Status)
		assert.Equal(t, database.StatusUp, body.Database.Status)
	})

	t.Run("schema missing", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)
		dbMock.ExpectQuery("information_schema.tables").WillReturnRows(tables("users"))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		var body healthBody
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "degraded", body.Status)
		assert.Contains(t, body.Database.MissingTables, "messages")
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListRecords(t *testing.T) {
	mockSvc := new(serviceMocks.MockMessageService)
	app := fiber.New()
	app.Get("/messages", ListRecords[model.Message](mockSvc, zap.NewNop()))

	t.Run("success with filters", func(t *testing.T) {
		expected := &service.ListResult[model.Message]{
			Items: []model.Message{{ID: 1, Subject: "Lab results"}},
			Total: 1,
		}
		q := service.ListQuery{Limit: 5, Offset: 10, Filters: map[string]any{"hospital_id": int64(3), "is_read": false}}
		mockSvc.On("List", mock.Anything, q).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/messages?limit=5&offset=10&hospital_id=3&is_read=false", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.ListResult[model.Message]
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("defaults", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, service.ListQuery{Limit: 10}).
			Return(&service.ListResult[model.Message]{Items: []model.Message{}}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/messages", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/messages?limit=abc", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_LIMIT", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid offset", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/messages?offset=-x", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_OFFSET", decodeError(t, resp).Error.Code)
	})

	t.Run("unknown filter", func(t *testing.T) {
		verr := &service.ValidationError{Fields: []service.FieldError{{Field: "filter", Message: `unknown filter "color"`}}}
		mockSvc.On("List", mock.Anything, service.ListQuery{Limit: 10, Filters: map[string]any{"color": "red"}}).
			Return(nil, verr).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/messages?color=red", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		require.Len(t, body.Error.Fields, 1)
		assert.Equal(t, "filter", body.Error.Fields[0].Field)
	})

	t.Run("non-numeric id filter", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/messages?patient_id=abc", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		require.Len(t, body.Error.Fields, 1)
		assert.Equal(t, "patient_id", body.Error.Fields[0].Field)
		mockSvc.AssertNotCalled(t, "List", mock.Anything, mock.MatchedBy(func(q service.ListQuery) bool {
			_, ok := q.Filters["patient_id"]
			return ok
		}))
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, service.ListQuery{Limit: 10}).Return(nil, errors.New("service error")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/messages", nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "INTERNAL_ERROR", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestCreateRecord(t *testing.T) {
	mockSvc := new(serviceMocks.MockComplaintService)
	app := fiber.New()
	app.Post("/complaints", CreateRecord[model.Complaint](mockSvc, zap.NewNop()))

	t.Run("success", func(t *testing.T) {
		stored := &model.Complaint{ID: 4, HospitalID: 3, Subject: "Noise", Status: model.ComplaintOpen}
		mockSvc.On("Create", mock.Anything, mock.MatchedBy(func(c *model.Complaint) bool {
			return c.Subject == "Noise" && c.HospitalID == 3
		})).Return(stored, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/complaints", jsonBody(t, map[string]any{"hospital_id": 3, "subject": "Noise"}))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var result model.Complaint
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, int64(4), result.ID)
		assert.Equal(t, model.ComplaintOpen, result.Status)
		mockSvc.AssertExpectations(t)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/complaints", bytes.NewReader([]byte("{")))
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_BODY", decodeError(t, resp).Error.Code)
	})

	t.Run("validation error", func(t *testing.T) {
		verr := &service.ValidationError{Fields: []service.FieldError{{Field: "subject", Message: "failed on 'required'"}}}
		mockSvc.On("Create", mock.Anything, mock.Anything).Return(nil, verr).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/complaints", jsonBody(t, map[string]any{"hospital_id": 3})))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		assert.Equal(t, []service.FieldError{{Field: "subject", Message: "failed on 'required'"}}, body.Error.Fields)
	})

	t.Run("conflict", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, mock.Anything).Return(nil, service.ErrConflict).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/complaints", jsonBody(t, map[string]any{"hospital_id": 3})))

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "CONFLICT", decodeError(t, resp).Error.Code)
	})
}

func TestGetRecord(t *testing.T) {
	mockSvc := new(serviceMocks.MockInterventionTypeService)
	app := fiber.New()
	app.Get("/intervention-types/:id", GetRecord[model.InterventionType](mockSvc, zap.NewNop()))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, int64(12)).Return(&model.InterventionType{ID: 12, Code: "ECG"}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/intervention-types/12", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result model.InterventionType
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "ECG", result.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, int64(13)).Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/intervention-types/13", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		for _, id := range []string{"abc", "0", "-4"} {
			resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/intervention-types/"+id, nil))

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, id)
			assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code, id)
		}
	})
}

func TestUpdateRecord(t *testing.T) {
	mockSvc := new(serviceMocks.MockInsuranceConventionService)
	app := fiber.New()
	app.Put("/insurance-conventions/:id", UpdateRecord[model.InsuranceConvention](mockSvc, zap.NewNop()))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Update", mock.Anything, int64(8), mock.MatchedBy(func(ic *model.InsuranceConvention) bool {
			return ic.InsurerName == "CNSS"
		})).Return(&model.InsuranceConvention{ID: 8, InsurerName: "CNSS"}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPut, "/insurance-conventions/8", jsonBody(t, map[string]any{"insurer_name": "CNSS"})))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Update", mock.Anything, int64(9), mock.Anything).Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPut, "/insurance-conventions/9", jsonBody(t, map[string]any{})))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestDeleteRecord(t *testing.T) {
	mockSvc := new(serviceMocks.MockCustomReportService)
	app := fiber.New()
	app.Delete("/custom-reports/:id", DeleteRecord[model.CustomReport](mockSvc, zap.NewNop()))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, int64(2)).Return(nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/custom-reports/2", nil))

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, int64(3)).Return(service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/custom-reports/3", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("service error is logged", func(t *testing.T) {
		core, logs := observer.New(zapcore.ErrorLevel)
		app := fiber.New()
		app.Use(middleware.RequestID())
		app.Delete("/custom-reports/:id", DeleteRecord[model.CustomReport](mockSvc, zap.New(core)))
		mockSvc.On("Delete", mock.Anything, int64(4)).Return(errors.New("connection reset")).Once()

		req := httptest.NewRequest(http.MethodDelete, "/custom-reports/4", nil)
		req.Header.Set(middleware.RequestIDHeader, "rid-9")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "rid-9", body.RequestID)
		assert.Equal(t, "internal server error", body.Error.Message)
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "rid-9", logs.All()[0].ContextMap()["request_id"])
	})
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	issuer, err := auth.NewJWTIssuer(config.JWTConfig{Secret: "s3cret", Issuer: "hisapi", TTL: time.Hour})
	require.NoError(t, err)

	messages := new(serviceMocks.MockMessageService)
	authSvc := new(serviceMocks.MockAuthService)
	RegisterRoutes(app, Dependencies{
		Services:     Services{Messages: messages, Auth: authSvc},
		Authenticate: middleware.JWTAuth(issuer),
	})

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// Health endpoint only allows GET
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Error.Code)
	})

	t.Run("record routes require a session", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/messages", nil))

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, resp).Error.Code)
	})

	t.Run("login routes are public", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/google/login", bytes.NewReader([]byte("{")))
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("current user needs a session", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		authSvc.AssertNotCalled(t, "CurrentUser", mock.Anything, mock.Anything)
	})

	t.Run("current user from session claims", func(t *testing.T) {
		token, _, err := issuer.Issue(&model.User{ID: 42, Email: "nurse@example.org"})
		require.NoError(t, err)
		authSvc.On("CurrentUser", mock.Anything, int64(42)).
			Return(&model.User{ID: 42, Email: "nurse@example.org", IsActive: true}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body authResponse
		json.NewDecoder(resp.Body).Decode(&body)
		assert.True(t, body.Success)
		require.NotNil(t, body.User)
		assert.Equal(t, "nurse@example.org", body.User.Email)
		authSvc.AssertExpectations(t)
	})

	t.Run("fixed paths win over ids", func(t *testing.T) {
		token, _, err := issuer.Issue(&model.User{ID: 1, Email: "a@example.org"})
		require.NoError(t, err)
		messages.On("UnreadCount", mock.Anything, int64(5)).Return(2, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/messages/unread-count?recipient_id=5", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body countResponse
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, 2, body.Count)
		messages.AssertExpectations(t)
	})
}
