package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "vouch/pkg/domain"
	"vouch/pkg/requestcontext"
	"vouch/pkg/testutil"
)

const testSigningKey = "test-signing-key"

func signToken(t *testing.T, key string, claims issuerClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func protectedEndpoint(seen *id.IssuerID) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen = requestcontext.IssuerID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireIssuer_AcceptsSignedTokenAndInjectsIssuer(t *testing.T) {
	issuerID := id.IssuerID(uuid.New())
	token := signToken(t, testSigningKey, issuerClaims{
		IssuerID: issuerID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	var seen id.IssuerID
	handler := RequireIssuer(testSigningKey, testutil.DiscardLogger())(protectedEndpoint(&seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, issuerID, seen)
}

func TestRequireIssuer_RejectsMissingToken(t *testing.T) {
	var seen id.IssuerID
	handler := RequireIssuer(testSigningKey, testutil.DiscardLogger())(protectedEndpoint(&seen))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthorized")
}

func TestRequireIssuer_RejectsWrongKey(t *testing.T) {
	token := signToken(t, "some-other-key", issuerClaims{
		IssuerID: id.IssuerID(uuid.New()).String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	var seen id.IssuerID
	handler := RequireIssuer(testSigningKey, testutil.DiscardLogger())(protectedEndpoint(&seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireIssuer_RejectsExpiredToken(t *testing.T) {
	token := signToken(t, testSigningKey, issuerClaims{
		IssuerID: id.IssuerID(uuid.New()).String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})

	var seen id.IssuerID
	handler := RequireIssuer(testSigningKey, testutil.DiscardLogger())(protectedEndpoint(&seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireIssuer_RejectsTokenWithoutIssuerClaim(t *testing.T) {
	token := signToken(t, testSigningKey, issuerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	var seen id.IssuerID
	handler := RequireIssuer(testSigningKey, testutil.DiscardLogger())(protectedEndpoint(&seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
