package auth

// TenantClaims is the authenticated identity context the engine trusts.
// Authentication itself happens upstream; the middleware only resolves
// headers or a bearer token into this shape.
type TenantClaims interface {
	TenantID() string
	UserID() string
	Source() string
}

// JWTTenantClaims carries identity parsed from a bearer token.
type JWTTenantClaims struct {
	TenantUUID string
	UserUUID   string
}

func (c *JWTTenantClaims) TenantID() string { return c.TenantUUID }
func (c *JWTTenantClaims) UserID() string   { return c.UserUUID }
func (c *JWTTenantClaims) Source() string   { return "JWT" }

// APIKeyClaims carries identity resolved from an API key plus the
// tenant/user headers supplied by the upstream gateway.
type APIKeyClaims struct {
	TenantUUID string
	UserUUID   string
}

func (c *APIKeyClaims) TenantID() string { return c.TenantUUID }
func (c *APIKeyClaims) UserID() string   { return c.UserUUID }
func (c *APIKeyClaims) Source() string   { return "API_KEY" }
