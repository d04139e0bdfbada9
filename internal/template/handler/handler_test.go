package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vouch/internal/template/service"
	"vouch/internal/template/store"
	id "vouch/pkg/domain"
	"vouch/pkg/testutil"
)

// passthroughAuth trusts the issuer already placed on the request context by
// testutil.WithIssuer.
func passthroughAuth(next http.Handler) http.Handler {
	return next
}

func newRouter(t *testing.T) chi.Router {
	t.Helper()
	router := chi.NewRouter()
	svc := service.New(store.NewInMemory(), testutil.DiscardLogger())
	New(svc, passthroughAuth, testutil.DiscardLogger()).Register(router)
	return router
}

func send(t *testing.T, router chi.Router, issuerID, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := testutil.WithIssuer(httptest.NewRequest(method, path, &buf), issuerID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestTemplateLifecycle(t *testing.T) {
	router := newRouter(t)
	issuerID := id.IssuerID(uuid.New()).String()

	var templateID string

	testutil.Given(t, "an issuer creates a template", func(t *testing.T) {
		rec := send(t, router, issuerID, http.MethodPost, "/api/v1/templates/", map[string]any{
			"name":   "Course Completion",
			"layout": "modern",
			"fields": []map[string]any{{"name": "grade", "type": "text", "required": true}},
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var created struct {
			ID     string `json:"id"`
			Layout string `json:"layout"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, "modern", created.Layout)
		templateID = created.ID
	})

	testutil.When(t, "the issuer updates only the name", func(t *testing.T) {
		rec := send(t, router, issuerID, http.MethodPut, "/api/v1/templates/"+templateID,
			map[string]any{"name": "Course Completion v2"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var updated struct {
			Name   string `json:"name"`
			Layout string `json:"layout"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, "Course Completion v2", updated.Name)
		assert.Equal(t, "modern", updated.Layout, "fields absent from the payload stay untouched")
	})

	testutil.Then(t, "the template is listed, fetchable, and deletable", func(t *testing.T) {
		rec := send(t, router, issuerID, http.MethodGet, "/api/v1/templates/", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var listed struct {
			Templates []struct {
				ID string `json:"id"`
			} `json:"templates"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
		require.Len(t, listed.Templates, 1)
		assert.Equal(t, templateID, listed.Templates[0].ID)

		rec = send(t, router, issuerID, http.MethodGet, "/api/v1/templates/"+templateID, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = send(t, router, issuerID, http.MethodDelete, "/api/v1/templates/"+templateID, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = send(t, router, issuerID, http.MethodGet, "/api/v1/templates/"+templateID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestTemplateHandler_CreateRejectsUnknownLayout(t *testing.T) {
	router := newRouter(t)
	issuerID := id.IssuerID(uuid.New()).String()

	rec := send(t, router, issuerID, http.MethodPost, "/api/v1/templates/", map[string]any{
		"name":   "Broken",
		"layout": "brutalist",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown layout")
}

func TestTemplateHandler_ForeignTemplateIs404(t *testing.T) {
	router := newRouter(t)
	owner := id.IssuerID(uuid.New()).String()
	stranger := id.IssuerID(uuid.New()).String()

	rec := send(t, router, owner, http.MethodPost, "/api/v1/templates/",
		map[string]any{"name": "Course Completion"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = send(t, router, stranger, http.MethodGet, "/api/v1/templates/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = send(t, router, stranger, http.MethodDelete, "/api/v1/templates/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTemplateHandler_MalformedTemplateIDIs400(t *testing.T) {
	router := newRouter(t)
	issuerID := id.IssuerID(uuid.New()).String()

	rec := send(t, router, issuerID, http.MethodGet, "/api/v1/templates/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
