package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"signdesk/internal/auth"
	"signdesk/internal/http/middleware"
	"signdesk/internal/model"
	"signdesk/internal/service"
	serviceMocks "signdesk/internal/service/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testActor = model.Actor{ID: "user-1", Name: "Ada", Email: "ada@example.com"}

// withActor stands in for middleware.Authenticate.
func withActor(actor model.Actor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.ActorLocalKey, actor)
		return c.Next()
	}
}

func newAuthedApp() *fiber.App {
	app := fiber.New()
	app.Use(withActor(testActor))
	return app
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
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

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newAuthedApp()
	app.Get("/documents", ListDocuments(mockSvc))

	t.Run("success", func(t *testing.T) {
		expectedRes := &service.DocumentListResult{
			Items: []model.DocumentWithSummary{{
				Document:         model.Document{ID: uuid.New().String(), Filename: "test.pdf"},
				SignatureSummary: model.SignatureSummary{Total: 3, Signed: 1, Pending: 2},
			}},
			Total: 1,
		}
		mockSvc.On("List", mock.Anything, testActor, 10, 0).Return(expectedRes, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents?limit=10&offset=0", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.DocumentListResult
		json.NewDecoder(resp.Body).Decode(&result)
		require.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		assert.Equal(t, 2, result.Items[0].SignatureSummary.Pending)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/documents?limit=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_LIMIT", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid offset", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/documents?offset=x", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_OFFSET", decodeError(t, resp).Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, testActor, 10, 0).Return(nil, errors.New("service error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "INTERNAL_ERROR", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func multipartPDF(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	part.Write([]byte(content))
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newAuthedApp()
	app.Post("/documents", UploadDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		body, ct := multipartPDF(t, "contract.pdf", "%PDF-1.4")

		expectedDoc := &model.Document{ID: uuid.New().String(), Filename: "contract.pdf", OwnerID: "user-1"}
		mockSvc.On("Upload", mock.Anything, testActor, mock.Anything, "contract.pdf", int64(8)).Return(expectedDoc, nil).Once()

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
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp).Error.Code)
	})

	t.Run("not a pdf", func(t *testing.T) {
		body, ct := multipartPDF(t, "notes.txt", "hello")
		mockSvc.On("Upload", mock.Anything, testActor, mock.Anything, "notes.txt", mock.Anything).
			Return(nil, &service.ValidationError{Field: "file", Message: "is not a valid PDF"}).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "INVALID_INPUT", res.Error.Code)
		assert.Equal(t, "file is not a valid PDF", res.Error.Message)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		body, ct := multipartPDF(t, "contract.pdf", "%PDF")
		mockSvc.On("Upload", mock.Anything, testActor, mock.Anything, "contract.pdf", mock.Anything).Return(nil, errors.New("upload failed")).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newAuthedApp()
	app.Get("/documents/:id", GetDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		token := "secret-token"
		expectedDoc := &model.Document{ID: id, Filename: "test.pdf", PublicToken: &token}
		mockSvc.On("Get", mock.Anything, testActor, id).Return(expectedDoc, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		raw := new(bytes.Buffer)
		raw.ReadFrom(resp.Body)
		assert.NotContains(t, raw.String(), token)

		var result model.Document
		json.Unmarshal(raw.Bytes(), &result)
		assert.Equal(t, id, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, testActor, id).Return(nil, service.ErrDocumentNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("forbidden", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, testActor, id).Return(nil, service.ErrForbidden).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "FORBIDDEN", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/documents/invalid-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
	})
}

func TestDeleteDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newAuthedApp()
	app.Delete("/documents/:id", DeleteDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, testActor, id).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, testActor, id).Return(service.ErrDocumentNotFound).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("storage failure", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, testActor, id).Return(service.ErrStorageFailure).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.Equal(t, "STORAGE_FAILURE", decodeError(t, resp).Error.Code)
	})
}

func TestHandlersRequireActor(t *testing.T) {
	app := fiber.New()
	app.Get("/documents", ListDocuments(new(serviceMocks.MockDocumentService)))
	app.Post("/signatures", PlaceSignature(new(serviceMocks.MockSignatureService)))

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/documents", nil),
		jsonRequest(http.MethodPost, "/signatures", `{}`),
	} {
		resp, _ := app.Test(req)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, resp).Error.Code)
	}
}

const placeBody = `{"document_id":"doc-1","x":400,"y":103.5,"page":1,"render_width":800,"render_height":1035,"text":"Ada"}`

func TestPlaceSignature(t *testing.T) {
	mockSvc := new(serviceMocks.MockSignatureService)
	app := newAuthedApp()
	app.Post("/signatures", PlaceSignature(mockSvc))

	t.Run("success", func(t *testing.T) {
		want := service.PlaceInput{
			DocumentID:   "doc-1",
			X:            400,
			Y:            103.5,
			Page:         1,
			RenderWidth:  800,
			RenderHeight: 1035,
			Text:         "Ada",
		}
		author := "user-1"
		mockSvc.On("Place", mock.Anything, testActor, want).
			Return(&model.Signature{ID: "sig-1", Status: model.StatusPending, AuthorID: &author, XFrac: 0.5, YFrac: 0.1}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/signatures", placeBody))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var sig model.Signature
		json.NewDecoder(resp.Body).Decode(&sig)
		assert.Equal(t, model.StatusPending, sig.Status)
		assert.Equal(t, 0.5, sig.XFrac)
		mockSvc.AssertExpectations(t)
	})

	t.Run("fractional unit", func(t *testing.T) {
		mockSvc.On("Place", mock.Anything, testActor, mock.MatchedBy(func(in service.PlaceInput) bool {
			return in.Fractional && in.X == 0.5 && in.FontColor == "#112233" && in.FontSize == 18
		})).Return(&model.Signature{ID: "sig-2"}, nil).Once()

		body := `{"document_id":"doc-1","x":0.5,"y":0.5,"unit":"fraction","page":2,"render_width":1,"render_height":1,"text":"Ada","font_size":18,"font_color":"#112233"}`
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/signatures", body))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing render width", func(t *testing.T) {
		body := `{"document_id":"doc-1","x":1,"y":1,"page":1,"render_height":10,"text":"Ada"}`
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/signatures", body))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "INVALID_INPUT", res.Error.Code)
		assert.Contains(t, res.Error.Message, "render_width")
	})

	t.Run("unknown unit", func(t *testing.T) {
		body := `{"document_id":"doc-1","x":1,"y":1,"unit":"cm","page":1,"render_width":10,"render_height":10,"text":"Ada"}`
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/signatures", body))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, decodeError(t, resp).Error.Message, "unit")
	})

	t.Run("string encoded numbers are rejected", func(t *testing.T) {
		body := `{"document_id":"doc-1","x":"1","y":1,"page":1,"render_width":10,"render_height":10,"text":"Ada"}`
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/signatures", body))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_BODY", decodeError(t, resp).Error.Code)
	})

	t.Run("zero render size from service", func(t *testing.T) {
		body := `{"document_id":"doc-1","x":1,"y":1,"page":1,"render_width":0,"render_height":10,"text":"Ada"}`
		mockSvc.On("Place", mock.Anything, testActor, mock.Anything).
			Return(nil, &service.ValidationError{Field: "render_width", Message: "must be greater than 0"}).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/signatures", body))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "render_width must be greater than 0", decodeError(t, resp).Error.Message)
	})

	t.Run("malformed document id", func(t *testing.T) {
		body := `{"document_id":"abc","x":1,"y":1,"page":1,"render_width":10,"render_height":10,"text":"Ada"}`
		mockSvc.On("Place", mock.Anything, testActor, mock.MatchedBy(func(in service.PlaceInput) bool {
			return in.DocumentID == "abc"
		})).Return(nil, &service.ValidationError{Field: "document_id", Message: "must be a UUID"}).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/signatures", body))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "INVALID_INPUT", res.Error.Code)
		assert.Equal(t, "document_id must be a UUID", res.Error.Message)
	})

	t.Run("unknown document", func(t *testing.T) {
		mockSvc.On("Place", mock.Anything, testActor, mock.Anything).Return(nil, service.ErrDocumentNotFound).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/signatures", placeBody))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestListSignatures(t *testing.T) {
	mockSvc := new(serviceMocks.MockSignatureService)
	app := newAuthedApp()
	app.Get("/documents/:id/signatures", ListSignatures(mockSvc))
	id := uuid.New().String()

	mockSvc.On("ListByDocument", mock.Anything, testActor, id).Return([]model.Signature{{ID: "a"}, {ID: "b"}}, nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+id+"/signatures", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Data []model.Signature `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Len(t, body.Data, 2)
	mockSvc.AssertExpectations(t)
}

func TestUpdateSignatureStatus(t *testing.T) {
	mockSvc := new(serviceMocks.MockSignatureService)
	app := newAuthedApp()
	app.Patch("/signatures/:id/status", UpdateSignatureStatus(mockSvc))
	id := uuid.New().String()

	t.Run("reject", func(t *testing.T) {
		mockSvc.On("UpdateStatus", mock.Anything, testActor, id, model.StatusRejected, "blurry").
			Return(&model.Signature{ID: id, Status: model.StatusRejected, RejectionReason: "blurry"}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPatch, "/signatures/"+id+"/status", `{"status":"Rejected","reason":"blurry"}`))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var sig model.Signature
		json.NewDecoder(resp.Body).Decode(&sig)
		assert.Equal(t, "blurry", sig.RejectionReason)
		mockSvc.AssertExpectations(t)
	})

	t.Run("already final", func(t *testing.T) {
		mockSvc.On("UpdateStatus", mock.Anything, testActor, id, model.StatusSigned, "").Return(nil, service.ErrStatusFinal).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPatch, "/signatures/"+id+"/status", `{"status":"Signed"}`))

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "STATUS_FINAL", decodeError(t, resp).Error.Code)
	})

	t.Run("not the owner", func(t *testing.T) {
		mockSvc.On("UpdateStatus", mock.Anything, testActor, id, model.StatusSigned, "").Return(nil, service.ErrForbidden).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPatch, "/signatures/"+id+"/status", `{"status":"Signed"}`))

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("unknown signature", func(t *testing.T) {
		mockSvc.On("UpdateStatus", mock.Anything, testActor, id, model.StatusSigned, "").Return(nil, service.ErrSignatureNotFound).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPatch, "/signatures/"+id+"/status", `{"status":"Signed"}`))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "signature not found", decodeError(t, resp).Error.Message)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPatch, "/signatures/"+id+"/status", `{"status":`))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_BODY", decodeError(t, resp).Error.Code)
	})
}

func TestDeleteSignature(t *testing.T) {
	mockSvc := new(serviceMocks.MockSignatureService)
	app := newAuthedApp()
	app.Delete("/signatures/:id", DeleteSignature(mockSvc))
	id := uuid.New().String()

	mockSvc.On("Delete", mock.Anything, testActor, id).Return(nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/signatures/"+id, nil))

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	mockSvc.AssertExpectations(t)
}

func TestFinalizeDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockFinalizeService)
	app := newAuthedApp()
	app.Post("/documents/:id/finalize", FinalizeDocument(mockSvc))
	id := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Finalize", mock.Anything, testActor, id).Return(&service.FinalizeResult{
			DocumentID: id,
			Key:        "signed/" + id + "/x.pdf",
			URL:        "https://files.example.com/x.pdf",
			Drawn:      2,
			Skipped:    1,
		}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/documents/"+id+"/finalize", nil))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var res service.FinalizeResult
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, 2, res.Drawn)
		assert.Equal(t, 1, res.Skipped)
	})

	t.Run("storage failure", func(t *testing.T) {
		mockSvc.On("Finalize", mock.Anything, testActor, id).Return(nil, errors.Join(service.ErrStorageFailure, errors.New("s3 down"))).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/documents/"+id+"/finalize", nil))

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "STORAGE_FAILURE", res.Error.Code)
		assert.NotContains(t, res.Error.Message, "s3 down")
	})
}

func TestIssueLink(t *testing.T) {
	mockSvc := new(serviceMocks.MockLinkService)
	app := newAuthedApp()
	app.Post("/documents/:id/link", IssueLink(mockSvc))
	id := uuid.New().String()
	expires := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)

	t.Run("with recipient", func(t *testing.T) {
		mockSvc.On("Issue", mock.Anything, testActor, id, "bob@example.com").Return(&service.IssuedLink{
			DocumentID: id,
			Token:      "tok",
			URL:        "https://sign.example.com/sign/tok",
			ExpiresAt:  expires,
			Notified:   true,
		}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/documents/"+id+"/link", `{"recipient_email":"bob@example.com"}`))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var link service.IssuedLink
		json.NewDecoder(resp.Body).Decode(&link)
		assert.Equal(t, "https://sign.example.com/sign/tok", link.URL)
		assert.True(t, link.Notified)
		mockSvc.AssertExpectations(t)
	})

	t.Run("empty body", func(t *testing.T) {
		mockSvc.On("Issue", mock.Anything, testActor, id, "").Return(&service.IssuedLink{Token: "tok"}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/documents/"+id+"/link", nil))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("delivery failure", func(t *testing.T) {
		mockSvc.On("Issue", mock.Anything, testActor, id, "bob@example.com").Return(nil, service.ErrDeliveryFailure).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/documents/"+id+"/link", `{"recipient_email":"bob@example.com"}`))

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.Equal(t, "DELIVERY_FAILED", decodeError(t, resp).Error.Code)
	})
}

func TestListAudit(t *testing.T) {
	mockSvc := new(serviceMocks.MockAuditService)
	app := newAuthedApp()
	app.Get("/documents/:id/audit", ListAudit(mockSvc))
	id := uuid.New().String()

	mockSvc.On("List", mock.Anything, testActor, id).Return([]model.AuditRecord{
		{ID: "a-1", Action: model.ActionFinalGenerated},
	}, nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+id+"/audit", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Data []model.AuditRecord `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Final PDF Generated", body.Data[0].Action)
}

func TestPublicSigning(t *testing.T) {
	linkSvc := new(serviceMocks.MockLinkService)
	sigSvc := new(serviceMocks.MockSignatureService)
	app := fiber.New()
	app.Get("/public/sign/:token", ViewPublicDocument(linkSvc))
	app.Post("/public/sign/:token", PlacePublicSignature(sigSvc))

	t.Run("view", func(t *testing.T) {
		linkSvc.On("View", mock.Anything, "tok").Return(&service.PublicDocument{ID: "doc-1", Filename: "contract.pdf", URL: "https://files.example.com/c.pdf"}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/public/sign/tok", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var view service.PublicDocument
		json.NewDecoder(resp.Body).Decode(&view)
		assert.Equal(t, "contract.pdf", view.Filename)
	})

	t.Run("expired and unknown links look the same", func(t *testing.T) {
		linkSvc.On("View", mock.Anything, "old").Return(nil, service.ErrLinkExpired).Once()
		linkSvc.On("View", mock.Anything, "nope").Return(nil, service.ErrLinkInvalid).Once()

		expired, _ := app.Test(httptest.NewRequest(http.MethodGet, "/public/sign/old", nil))
		unknown, _ := app.Test(httptest.NewRequest(http.MethodGet, "/public/sign/nope", nil))

		assert.Equal(t, http.StatusNotFound, expired.StatusCode)
		assert.Equal(t, expired.StatusCode, unknown.StatusCode)
		assert.Equal(t, decodeError(t, expired).Error, decodeError(t, unknown).Error)
	})

	t.Run("sign", func(t *testing.T) {
		sigSvc.On("PlacePublic", mock.Anything, "tok", mock.MatchedBy(func(a model.Actor) bool {
			return a.ID == "" && a.Name == ""
		}), mock.Anything).Return(&model.Signature{ID: "sig-1", DocumentID: "doc-1", Status: model.StatusSigned}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/public/sign/tok", placeBody))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var sig model.Signature
		json.NewDecoder(resp.Body).Decode(&sig)
		assert.Equal(t, model.StatusSigned, sig.Status)
		assert.Nil(t, sig.AuthorID)
	})

	t.Run("replay", func(t *testing.T) {
		sigSvc.On("PlacePublic", mock.Anything, "tok", mock.Anything, mock.Anything).Return(nil, service.ErrLinkInvalid).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/public/sign/tok", placeBody))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "LINK_INVALID", res.Error.Code)
		assert.Equal(t, "invalid or expired link", res.Error.Message)
	})
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	secret := []byte("routing-secret")
	docSvc := new(serviceMocks.MockDocumentService)
	// Register all routes
	RegisterRoutes(app, nil, Services{
		Documents:  docSvc,
		Signatures: new(serviceMocks.MockSignatureService),
		Finalize:   new(serviceMocks.MockFinalizeService),
		Links:      new(serviceMocks.MockLinkService),
		Audit:      new(serviceMocks.MockAuditService),
	}, middleware.Authenticate(secret))

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// Liveness endpoint only allows GET
		req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Error.Code)
	})

	t.Run("api requires a token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, resp).Error.Code)
	})

	t.Run("api with a token", func(t *testing.T) {
		token, err := auth.GenerateToken("user-1", "Ada", "ada@example.com", secret, time.Hour)
		require.NoError(t, err)
		docSvc.On("List", mock.Anything, mock.MatchedBy(func(a model.Actor) bool { return a.ID == "user-1" }), 10, 0).
			Return(&service.DocumentListResult{Items: []model.DocumentWithSummary{}}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		docSvc.AssertExpectations(t)
	})

	t.Run("health without database", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}
