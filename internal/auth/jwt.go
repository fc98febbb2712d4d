package auth

import (
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims is the wire shape of the platform's bearer tokens.
type tokenClaims struct {
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// ParseBearerToken validates an HS256 token signed with JWT_SECRET and
// returns the tenant claims it carries.
func ParseBearerToken(tokenString string) (*JWTTenantClaims, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET not configured")
	}

	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.TenantID == "" {
		return nil, fmt.Errorf("token missing tenant_id claim")
	}

	return &JWTTenantClaims{
		TenantUUID: claims.TenantID,
		UserUUID:   claims.Subject,
	}, nil
}
