package handler

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"docvault/internal/model"
	"docvault/internal/service"
	serviceMocks "docvault/internal/service/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// withUser injects an authenticated user into context locals, standing in
// for the Identity middleware.
func withUser(u *model.User) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user", u)
		return c.Next()
	}
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

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents", withUser(&model.User{ID: "user_1", Role: model.RoleUser}), ListDocuments(mockSvc))

	t.Run("success", func(t *testing.T) {
		expectedRes := &service.DocumentListResult{
			Items: []model.Document{{ID: uuid.New().String(), FileName: "test.pdf"}},
			Total: 1,
		}
		mockSvc.On("List", mock.Anything, model.RoleUser, service.ListOptions{Limit: 10, Skip: 0}).
			Return(expectedRes, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents?limit=10&skip=0", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.DocumentListResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/documents?limit=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_LIMIT", body.Error.Code)
	})

	t.Run("invalid status", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/documents?status=archived", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_STATUS", body.Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, model.RoleUser, service.ListOptions{}).
			Return(nil, errors.New("service error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func multipartUpload(t *testing.T, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename)}
	hdr["Content-Type"] = []string{contentType}
	part, err := writer.CreatePart(hdr)
	require.NoError(t, err)
	part.Write(content)

	writer.WriteField("title", "Test Document")
	writer.WriteField("description", "A test upload")
	writer.WriteField("category", "HR")
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestUploadDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Post("/documents", withUser(&model.User{ID: "admin_1", Role: model.RoleAdmin}), UploadDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		body, ct := multipartUpload(t, "test.pdf", "application/pdf", []byte("%PDF-1.7"))

		expectedDoc := &model.Document{ID: uuid.New().String(), FileName: "test.pdf"}
		mockSvc.On("Upload", mock.Anything, []byte("%PDF-1.7"), service.UploadInput{
			Title:       "Test Document",
			Description: "A test upload",
			Category:    "HR",
			FileName:    "test.pdf",
			MimeType:    "application/pdf",
			UploadedBy:  "admin_1",
		}).Return(expectedDoc, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result model.Document
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, expectedDoc.ID, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_REQUIRED", res.Error.Code)
	})

	t.Run("validation error from service", func(t *testing.T) {
		body, ct := multipartUpload(t, "test.txt", "text/plain", []byte("hello"))

		mockSvc.On("Upload", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: only application/pdf files are allowed", service.ErrValidation)).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "VALIDATION_ERROR", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestDownloadDocument(t *testing.T) {
	newApp := func(mockSvc *serviceMocks.MockDocumentService, role model.Role) *fiber.App {
		app := fiber.New()
		app.Get("/documents/:id", withUser(&model.User{ID: "user_1", Role: role}), DownloadDocument(mockSvc, false))
		app.Get("/documents/:id/view", withUser(&model.User{ID: "user_1", Role: role}), DownloadDocument(mockSvc, true))
		return app
	}

	t.Run("attachment download", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp(mockSvc, model.RoleUser)

		id := uuid.New().String()
		content := []byte("%PDF-1.7 content")
		mockSvc.On("Download", mock.Anything, id, model.RoleUser, false).Return(&service.DownloadResult{
			Stream:      io.NopCloser(bytes.NewReader(content)),
			FileName:    "report 2024.pdf",
			ContentType: "application/pdf",
			Size:        int64(len(content)),
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "report%202024.pdf")

		got, _ := io.ReadAll(resp.Body)
		assert.Equal(t, content, got)
		mockSvc.AssertExpectations(t)
	})

	t.Run("inline view", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp(mockSvc, model.RoleUser)

		id := uuid.New().String()
		mockSvc.On("Download", mock.Anything, id, model.RoleUser, true).Return(&service.DownloadResult{
			Stream:      io.NopCloser(bytes.NewReader([]byte("x"))),
			FileName:    "doc.pdf",
			ContentType: "application/pdf",
			Size:        1,
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id+"/view", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "inline")
		mockSvc.AssertExpectations(t)
	})

	t.Run("forbidden", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp(mockSvc, model.RoleUser)

		id := uuid.New().String()
		mockSvc.On("Download", mock.Anything, id, model.RoleUser, false).
			Return(nil, fmt.Errorf("%w: downloads are disabled for this document", service.ErrForbidden)).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FORBIDDEN", res.Error.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp(mockSvc, model.RoleUser)

		req := httptest.NewRequest(http.MethodGet, "/documents/invalid-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_ID", res.Error.Code)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp(mockSvc, model.RoleAdmin)

		id := uuid.New().String()
		mockSvc.On("Download", mock.Anything, id, model.RoleAdmin, false).
			Return(nil, fmt.Errorf("%w: document %s", service.ErrNotFound, id)).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestDeleteDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Delete("/documents/:id", DeleteDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(true, nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(false, nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(false, errors.New("delete error")).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestToggleDocumentStatus(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Patch("/documents/:id/toggle", ToggleDocumentStatus(mockSvc))

	id := uuid.New().String()
	mockSvc.On("ToggleStatus", mock.Anything, id).
		Return(&model.Document{ID: id, Status: model.StatusDisabled}, nil).Once()

	req := httptest.NewRequest(http.MethodPatch, "/documents/"+id+"/toggle", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result model.Document
	json.NewDecoder(resp.Body).Decode(&result)
	assert.Equal(t, model.StatusDisabled, result.Status)
	mockSvc.AssertExpectations(t)
}

func TestToggleDocumentDownload(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Patch("/documents/:id/toggle-download", ToggleDocumentDownload(mockSvc))

	id := uuid.New().String()
	mockSvc.On("ToggleDownloadEnabled", mock.Anything, id).
		Return(&model.Document{ID: id, DownloadEnabled: false}, nil).Once()

	req := httptest.NewRequest(http.MethodPatch, "/documents/"+id+"/toggle-download", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result model.Document
	json.NewDecoder(resp.Body).Decode(&result)
	assert.False(t, result.DownloadEnabled)
	mockSvc.AssertExpectations(t)
}

func TestCategoryHandlers(t *testing.T) {
	mockSvc := new(serviceMocks.MockCategoryService)
	app := fiber.New()
	app.Get("/categories", ListCategories(mockSvc))
	app.Post("/categories", CreateCategory(mockSvc))
	app.Patch("/categories/:id", UpdateCategory(mockSvc))
	app.Delete("/categories/:id", DeleteCategory(mockSvc))

	t.Run("list", func(t *testing.T) {
		mockSvc.On("List", mock.Anything).
			Return([]model.Category{{ID: "cat-1", Name: "HR", Slug: "hr"}}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/categories", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Categories []model.Category `json:"categories"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Len(t, body.Categories, 1)
	})

	t.Run("create", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, service.CategoryInput{Name: "Legal", Description: "contracts"}).
			Return(&model.Category{ID: "cat-2", Name: "Legal", Slug: "legal"}, nil).Once()

		payload, _ := json.Marshal(map[string]string{"name": "Legal", "description": "contracts"})
		req := httptest.NewRequest(http.MethodPost, "/categories", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("create conflict", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: category %q already exists", service.ErrConflict, "legal")).Once()

		payload, _ := json.Marshal(map[string]string{"name": "Legal"})
		req := httptest.NewRequest(http.MethodPost, "/categories", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "CONFLICT", res.Error.Code)
	})

	t.Run("update", func(t *testing.T) {
		mockSvc.On("Update", mock.Anything, "cat-1", service.CategoryInput{Name: "People Ops"}).
			Return(&model.Category{ID: "cat-1", Name: "People Ops", Slug: "people-ops"}, nil).Once()

		payload, _ := json.Marshal(map[string]string{"name": "People Ops"})
		req := httptest.NewRequest(http.MethodPatch, "/categories/cat-1", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("delete missing", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, "missing").Return(false, nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/categories/missing", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestUserHandlers(t *testing.T) {
	actor := &model.User{ID: "admin_1", Role: model.RoleAdmin}

	t.Run("list users", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := fiber.New()
		app.Get("/users", ListUsers(mockSvc))

		mockSvc.On("List", mock.Anything, 5, 0).
			Return(&service.UserListResult{Items: []model.User{{ID: "user_1"}}, Total: 1}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/users?limit=5", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("update role", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := fiber.New()
		app.Patch("/users/:id/role", withUser(actor), UpdateUserRole(mockSvc))

		mockSvc.On("UpdateRole", mock.Anything, "admin_1", "user_2", model.RoleAdmin).
			Return(&model.User{ID: "user_2", Role: model.RoleAdmin}, nil).Once()

		payload, _ := json.Marshal(map[string]string{"role": "admin"})
		req := httptest.NewRequest(http.MethodPatch, "/users/user_2/role", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("self demotion rejected", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := fiber.New()
		app.Patch("/users/:id/role", withUser(actor), UpdateUserRole(mockSvc))

		mockSvc.On("UpdateRole", mock.Anything, "admin_1", "admin_1", model.RoleUser).
			Return(nil, fmt.Errorf("%w: cannot demote your own account", service.ErrValidation)).Once()

		payload, _ := json.Marshal(map[string]string{"role": "user"})
		req := httptest.NewRequest(http.MethodPatch, "/users/admin_1/role", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("toggle favorite", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := fiber.New()
		app.Post("/me/favorites", withUser(actor), ToggleFavorite(mockSvc))

		mockSvc.On("ToggleFavorite", mock.Anything, "admin_1", "doc-1").Return(true, nil).Once()

		payload, _ := json.Marshal(map[string]string{"document_id": "doc-1"})
		req := httptest.NewRequest(http.MethodPost, "/me/favorites", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, true, body["favorited"])
	})

	t.Run("list favorites empty", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := fiber.New()
		app.Get("/me/favorites", withUser(actor), ListFavorites(mockSvc))

		mockSvc.On("Favorites", mock.Anything, "admin_1").Return([]string(nil), nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/me/favorites", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Favorites []string `json:"favorites"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		assert.NotNil(t, body.Favorites)
		assert.Len(t, body.Favorites, 0)
	})

	t.Run("add and list recent", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := fiber.New()
		app.Post("/me/recent", withUser(actor), AddRecent(mockSvc))
		app.Get("/me/recent", withUser(actor), ListRecent(mockSvc))

		mockSvc.On("AddRecent", mock.Anything, "admin_1", "doc-1").Return(nil).Once()
		mockSvc.On("Recent", mock.Anything, "admin_1").
			Return([]model.RecentDoc{{DocumentID: "doc-1", ViewedAt: time.Now()}}, nil).Once()

		payload, _ := json.Marshal(map[string]string{"document_id": "doc-1"})
		req := httptest.NewRequest(http.MethodPost, "/me/recent", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		reqList := httptest.NewRequest(http.MethodGet, "/me/recent", nil)
		respList, _ := app.Test(reqList)
		assert.Equal(t, http.StatusOK, respList.StatusCode)

		var body struct {
			Recent []model.RecentDoc `json:"recent"`
		}
		json.NewDecoder(respList.Body).Decode(&body)
		assert.Len(t, body.Recent, 1)
		mockSvc.AssertExpectations(t)
	})
}

const testWebhookSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"

// signWebhook produces a valid signature for the payload the way the
// provider does: HMAC-SHA256 over "id.timestamp.payload" keyed with the
// base64-decoded secret.
func signWebhook(t *testing.T, msgID, timestamp string, payload []byte) string {
	t.Helper()
	key, err := base64.StdEncoding.DecodeString(testWebhookSecret[len("whsec_"):])
	require.NoError(t, err)

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(msgID + "." + timestamp + "."))
	mac.Write(payload)
	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestIdentityWebhook(t *testing.T) {
	newApp := func(mockSvc *serviceMocks.MockUserService) *fiber.App {
		app := fiber.New()
		app.Post("/webhooks/identity", IdentityWebhook(testWebhookSecret, mockSvc))
		return app
	}

	signedRequest := func(t *testing.T, payload []byte) *http.Request {
		msgID := "msg_test_1"
		ts := strconv.FormatInt(time.Now().Unix(), 10)
		req := httptest.NewRequest(http.MethodPost, "/webhooks/identity", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("svix-id", msgID)
		req.Header.Set("svix-timestamp", ts)
		req.Header.Set("svix-signature", signWebhook(t, msgID, ts, payload))
		return req
	}

	t.Run("rejects unsigned requests", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := newApp(mockSvc)

		payload := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)
		req := httptest.NewRequest(http.MethodPost, "/webhooks/identity", bytes.NewReader(payload))
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		mockSvc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("user created", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := newApp(mockSvc)

		mockSvc.On("Create", mock.Anything, service.UserInput{
			ID:        "user_1",
			Email:     "jo@example.com",
			FirstName: "Jo",
			LastName:  "Doe",
		}).Return(&model.User{ID: "user_1"}, nil).Once()

		payload := []byte(`{"type":"user.created","data":{"id":"user_1","email_addresses":[{"email_address":"jo@example.com"}],"first_name":"Jo","last_name":"Doe"}}`)
		resp, _ := app.Test(signedRequest(t, payload))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("replayed create is acknowledged", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := newApp(mockSvc)

		mockSvc.On("Create", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: user user_1 already exists", service.ErrConflict)).Once()

		payload := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)
		resp, _ := app.Test(signedRequest(t, payload))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("user updated", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := newApp(mockSvc)

		mockSvc.On("Sync", mock.Anything, service.UserInput{ID: "user_1", FirstName: "Joanna"}).
			Return(&model.User{ID: "user_1", FirstName: "Joanna"}, nil).Once()

		payload := []byte(`{"type":"user.updated","data":{"id":"user_1","first_name":"Joanna"}}`)
		resp, _ := app.Test(signedRequest(t, payload))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("user deleted", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := newApp(mockSvc)

		mockSvc.On("Delete", mock.Anything, "user_1").Return(true, nil).Once()

		payload := []byte(`{"type":"user.deleted","data":{"id":"user_1"}}`)
		resp, _ := app.Test(signedRequest(t, payload))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("unknown event acknowledged", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := newApp(mockSvc)

		payload := []byte(`{"type":"session.created","data":{"id":"sess_1"}}`)
		resp, _ := app.Test(signedRequest(t, payload))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	mockDoc := new(serviceMocks.MockDocumentService)
	mockCat := new(serviceMocks.MockCategoryService)
	mockUser := new(serviceMocks.MockUserService)
	RegisterRoutes(app, nil, mockDoc, mockCat, mockUser, testWebhookSecret)

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("anonymous request is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "UNAUTHORIZED", res.Error.Code)
	})

	t.Run("regular user cannot reach admin routes", func(t *testing.T) {
		mockUser.On("Get", mock.Anything, "user_1").
			Return(&model.User{ID: "user_1", Role: model.RoleUser}, nil)

		req := httptest.NewRequest(http.MethodDelete, "/documents/"+uuid.New().String(), nil)
		req.Header.Set("X-User-ID", "user_1")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FORBIDDEN", res.Error.Code)
	})
}
