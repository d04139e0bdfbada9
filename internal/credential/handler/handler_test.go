package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vouch/internal/assets"
	"vouch/internal/contentstore"
	"vouch/internal/credential/models"
	"vouch/internal/credential/service"
	credstore "vouch/internal/credential/store"
	issuermodels "vouch/internal/issuer/models"
	issuerstore "vouch/internal/issuer/store"
	"vouch/internal/ledger"
	"vouch/internal/render"
	tmplmodels "vouch/internal/template/models"
	tmplstore "vouch/internal/template/store"
	id "vouch/pkg/domain"
	"vouch/pkg/requestcontext"
	"vouch/pkg/testutil"
)

type stubRenderer struct{}

func (stubRenderer) Render(_ context.Context, c *models.Credential, t *tmplmodels.Template,
	issuerName string, set assets.ResolvedSet) (*render.Document, error) {
	markup := render.BuildMarkup(c, t, issuerName, set)
	return &render.Document{Markup: markup, PDF: []byte("%PDF-1.7 stub")}, nil
}

type testServer struct {
	router   chi.Router
	content  *contentstore.InMemory
	issuer   *issuermodels.Issuer
	template *tmplmodels.Template
}

// newTestServer mounts the handler over a real service and in-memory
// collaborators. The auth middleware is replaced by one that injects the
// seeded issuer's identity, the way the JWT middleware would after
// validating a token.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	issuers := issuerstore.NewInMemory()
	templates := tmplstore.NewInMemory()
	content := contentstore.NewInMemory()

	issuer, err := issuermodels.New(id.IssuerID(uuid.New()), "Test University", "admin@test.edu", now)
	require.NoError(t, err)
	issuer.Status = issuermodels.StatusApproved
	require.NoError(t, issuers.Create(context.Background(), issuer))

	template, err := tmplmodels.New(id.TemplateID(uuid.New()), issuer.ID, "Course Completion",
		[]tmplmodels.Field{{Name: "grade", Type: tmplmodels.FieldText, Required: true}},
		tmplmodels.LayoutDefault, now)
	require.NoError(t, err)
	require.NoError(t, templates.Create(context.Background(), template))

	svc := service.New(credstore.NewInMemory(), templates, issuers,
		ledger.NewInMemory(), stubRenderer{}, assets.NewResolver(nil),
		service.WithContentStore(content))

	asIssuer := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(requestcontext.WithIssuerID(r.Context(), issuer.ID)))
		})
	}

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(testutil.WithFixedTime(r.Context(), now)))
		})
	})
	New(svc, asIssuer, testutil.DiscardLogger()).Register(router)

	return &testServer{router: router, content: content, issuer: issuer, template: template}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) issuePayload() map[string]any {
	return map[string]any{
		"template_id":     s.template.ID.String(),
		"subject_name":    "Ada Lovelace",
		"subject_contact": "ada@example.org",
		"course":          "Analytical Engines 101",
		"attributes":      []map[string]string{{"name": "grade", "value": "A"}},
	}
}

func (s *testServer) issue(t *testing.T) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/credentials/", s.issuePayload())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Credential struct {
			ID string `json:"id"`
		} `json:"credential"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Credential.ID
}

func TestHandler_IssueReturnsCommittedCredential(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/v1/credentials/", srv.issuePayload())

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		Credential struct {
			ID        string `json:"id"`
			Status    string `json:"status"`
			LedgerRef string `json:"ledger_ref"`
			StoreRef  string `json:"store_ref"`
		} `json:"credential"`
		Warnings []string `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Credential.ID, "CERT-"))
	assert.Equal(t, "issued", resp.Credential.Status)
	assert.NotEmpty(t, resp.Credential.LedgerRef)
	assert.NotEmpty(t, resp.Credential.StoreRef)
	assert.Empty(t, resp.Warnings)
}

func TestHandler_IssueReportsDegradedStorageAsWarning(t *testing.T) {
	srv := newTestServer(t)
	srv.content.PutErr = fmt.Errorf("ipfs node unreachable")

	rec := srv.do(t, http.MethodPost, "/api/v1/credentials/", srv.issuePayload())

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		Warnings []string `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "document storage")
}

func TestHandler_IssueRejectsMalformedTemplateID(t *testing.T) {
	srv := newTestServer(t)
	payload := srv.issuePayload()
	payload["template_id"] = "not-a-uuid"

	rec := srv.do(t, http.MethodPost, "/api/v1/credentials/", payload)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_IssueRejectsMalformedBody(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/credentials/", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "bad_request")
}

func TestHandler_VerifyReportsValid(t *testing.T) {
	srv := newTestServer(t)
	credentialID := srv.issue(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/credentials/"+credentialID+"/verify", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Status        string `json:"status"`
		LedgerChecked bool   `json:"ledger_checked"`
		Credential    *struct {
			SubjectName string `json:"subject_name"`
			IssuerName  string `json:"issuer_name"`
		} `json:"credential"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "valid", resp.Status)
	assert.True(t, resp.LedgerChecked)
	require.NotNil(t, resp.Credential)
	assert.Equal(t, "Ada Lovelace", resp.Credential.SubjectName)
	assert.Equal(t, "Test University", resp.Credential.IssuerName)
}

func TestHandler_VerifyUnknownCredentialIs404(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/credentials/CERT-1700000000-ffff/verify", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}

func TestHandler_VerifyMalformedIDIs400(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/credentials/banana/verify", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_RevokeThenVerifyReportsRevoked(t *testing.T) {
	srv := newTestServer(t)
	credentialID := srv.issue(t)

	rec := srv.do(t, http.MethodPost, "/api/v1/credentials/"+credentialID+"/revoke",
		map[string]string{"reason": "fraudulent transcript"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/api/v1/credentials/"+credentialID+"/verify", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Status           string `json:"status"`
		RevocationReason string `json:"revocation_reason"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "revoked", resp.Status)
	assert.Equal(t, "fraudulent transcript", resp.RevocationReason)
}

func TestHandler_RevokeTwiceIsConflict(t *testing.T) {
	srv := newTestServer(t)
	credentialID := srv.issue(t)

	rec := srv.do(t, http.MethodPost, "/api/v1/credentials/"+credentialID+"/revoke",
		map[string]string{"reason": "fraud"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/v1/credentials/"+credentialID+"/revoke",
		map[string]string{"reason": "again"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "conflict")
}

func TestHandler_DownloadServesPDFAttachment(t *testing.T) {
	srv := newTestServer(t)
	credentialID := srv.issue(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/credentials/"+credentialID+"/download", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, fmt.Sprintf(`attachment; filename="certificate-%s.pdf"`, credentialID),
		rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestHandler_ListReturnsIssuerCredentials(t *testing.T) {
	srv := newTestServer(t)
	first := srv.issue(t)
	second := srv.issue(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/credentials/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Credentials []struct {
			ID string `json:"id"`
		} `json:"credentials"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Credentials, 2)
	ids := []string{resp.Credentials[0].ID, resp.Credentials[1].ID}
	assert.ElementsMatch(t, []string{first, second}, ids)
}
