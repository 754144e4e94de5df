package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
	"github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers

	"github.com/cinetick/cinema-booking/internal/model"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the account ID and role claims into the request context.
// The auth service issues the tokens; this service only verifies them.
// Handlers read the values via ActorID(c) and ActorRole(c).
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Only HS256 tokens are accepted; a token signed any other
			// way is rejected before the secret is consulted.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			accountID, _ := claims["account_id"].(string)
			if accountID == "" {
				// older tokens carry the account under sub
				accountID, _ = claims["sub"].(string)
			}
			if accountID == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			// JSON numbers decode as float64.
			roleNum, _ := claims["role_id"].(float64)

			c.Set("user_id", accountID)
			c.Set("role", model.Role(roleNum))
			return next(c)
		}
	}
}

// ActorID returns the authenticated account ID stored by JWTAuth, or ""
// on an unauthenticated request.
func ActorID(c echo.Context) string {
	if s, ok := c.Get("user_id").(string); ok {
		return s
	}
	return ""
}

// ActorRole returns the authenticated role stored by JWTAuth.  The zero
// Role matches no permission check.
func ActorRole(c echo.Context) model.Role {
	if r, ok := c.Get("role").(model.Role); ok {
		return r
	}
	return 0
}
