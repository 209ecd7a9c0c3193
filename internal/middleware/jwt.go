package middleware

import (
	"context"
	"net/http"

	"shopledger/internal/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTCustomClaims carries the tenant claim alongside the registered
// set. Subject holds the user id.
type JWTCustomClaims struct {
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// JWTConfig builds the echo-jwt configuration. On a valid token the
// caller's user and tenant ids are placed into the request context;
// every repository query downstream filters by the tenant id put here.
// Handlers treat a missing tenant id as unauthorized, so a token with
// malformed ids is rejected at the first context lookup.
func JWTConfig(jwtSecret string) echojwt.Config {
	return echojwt.Config{
		SigningKey: []byte(jwtSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(JWTCustomClaims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := token.Claims.(*JWTCustomClaims)
			if !ok {
				return
			}
			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return
			}
			tenantID, err := uuid.Parse(claims.TenantID)
			if err != nil {
				return
			}

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
			ctx = context.WithValue(ctx, common.TenantIDKey, tenantID)
			c.SetRequest(c.Request().WithContext(ctx))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	}
}
