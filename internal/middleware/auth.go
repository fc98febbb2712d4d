package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"fluxcrm/metamorph/internal/auth"
	"fluxcrm/metamorph/internal/db/repositories"
)

// AuthMiddleware resolves the caller's tenant identity. Two paths:
// a bearer JWT carrying tenant_id, or an API key (hashed lookup) plus the
// X-Tenant-Id / X-User-Id headers set by the upstream gateway.
func AuthMiddleware(keysRepo *repositories.KeysRepo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			authHeader := r.Header.Get("Authorization")
			apiKey := r.Header.Get("X-API-Key")

			var claims auth.TenantClaims

			switch {
			case strings.HasPrefix(authHeader, "Bearer "):
				parsed, err := auth.ParseBearerToken(strings.TrimPrefix(authHeader, "Bearer "))
				if err != nil {
					http.Error(w, "Unauthorized. Invalid token", http.StatusUnauthorized)
					return
				}
				claims = parsed

			case apiKey != "":
				tenantID := r.Header.Get("X-Tenant-Id")
				userID := r.Header.Get("X-User-Id")
				if tenantID == "" {
					http.Error(w, "Unauthorized. Missing X-Tenant-Id", http.StatusUnauthorized)
					return
				}

				keyRes, err := keysRepo.GetStatus(r.Context(), hashKey(apiKey))
				if err != nil {
					http.Error(w, "Unauthorized. Invalid API Key", http.StatusUnauthorized)
					return
				}
				if !keyRes.Status || keyRes.TenantID != tenantID {
					http.Error(w, "Unauthorized. Inactive API Key", http.StatusUnauthorized)
					return
				}

				claims = &auth.APIKeyClaims{
					TenantUUID: tenantID,
					UserUUID:   userID,
				}

			default:
				http.Error(w, "Unauthorized. Missing credentials", http.StatusUnauthorized)
				return
			}

			ctx := auth.SetTenantClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
