package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fluxcrm/metamorph/internal/auth"

	"github.com/golang-jwt/jwt/v5"
)

func signTestToken(t *testing.T, secret, tenantID, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"tenant_id": tenantID,
		"sub":       userID,
		"exp":       time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return signed
}

func claimsProbe(got *auth.TenantClaims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := auth.GetTenantClaims(r.Context())
		*got = claims
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_BearerToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	var got auth.TenantClaims
	handler := AuthMiddleware(nil)(claimsProbe(&got))

	req := httptest.NewRequest("GET", "/api/v1/fields", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "test-secret", "tenant-1", "user-1"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if got == nil {
		t.Fatal("Expected claims in context")
	}
	if got.TenantID() != "tenant-1" || got.UserID() != "user-1" {
		t.Errorf("Wrong identity: %s / %s", got.TenantID(), got.UserID())
	}
	if got.Source() != "JWT" {
		t.Errorf("Expected JWT source, got %s", got.Source())
	}
}

func TestAuthMiddleware_BadToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	var got auth.TenantClaims
	handler := AuthMiddleware(nil)(claimsProbe(&got))

	req := httptest.NewRequest("GET", "/api/v1/fields", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "wrong-secret", "tenant-1", "user-1"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for a token signed with the wrong secret, got %d", rec.Code)
	}
	if got != nil {
		t.Error("Handler must not run for a bad token")
	}
}

func TestAuthMiddleware_MissingCredentials(t *testing.T) {
	var got auth.TenantClaims
	handler := AuthMiddleware(nil)(claimsProbe(&got))

	req := httptest.NewRequest("GET", "/api/v1/fields", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without credentials, got %d", rec.Code)
	}
}

func TestAuthMiddleware_APIKeyRequiresTenantHeader(t *testing.T) {
	var got auth.TenantClaims
	handler := AuthMiddleware(nil)(claimsProbe(&got))

	req := httptest.NewRequest("GET", "/api/v1/fields", nil)
	req.Header.Set("X-API-Key", "some-key")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without X-Tenant-Id, got %d", rec.Code)
	}
}
