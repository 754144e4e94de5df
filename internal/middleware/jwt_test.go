package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinetick/cinema-booking/internal/middleware"
	"github.com/cinetick/cinema-booking/internal/model"
)

const testSecret = "auth-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return tok
}

func runAuth(t *testing.T, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	res := httptest.NewRecorder()
	c := e.NewContext(req, res)

	h := middleware.JWTAuth(testSecret)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return res, c
}

func TestJWTAuthValidToken(t *testing.T) {
	tok := signToken(t, jwt.MapClaims{"account_id": "alice", "role_id": float64(model.RoleUser)})

	res, c := runAuth(t, "Bearer "+tok)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "alice", middleware.ActorID(c))
	assert.Equal(t, model.RoleUser, middleware.ActorRole(c))
}

func TestJWTAuthSubFallback(t *testing.T) {
	tok := signToken(t, jwt.MapClaims{"sub": "alice", "role_id": float64(model.RoleEmployee)})

	res, c := runAuth(t, "Bearer "+tok)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "alice", middleware.ActorID(c))
	assert.Equal(t, model.RoleEmployee, middleware.ActorRole(c))
}

func TestJWTAuthMissingHeader(t *testing.T) {
	res, c := runAuth(t, "")
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Empty(t, middleware.ActorID(c))
}

func TestJWTAuthWrongSecret(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.MapClaims{"account_id": "alice"}).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	res, _ := runAuth(t, "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestJWTAuthNoAccountClaim(t *testing.T) {
	tok := signToken(t, jwt.MapClaims{"role_id": float64(model.RoleUser)})

	res, _ := runAuth(t, "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestRequireStaff(t *testing.T) {
	e := echo.New()
	h := middleware.RequireStaff()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	run := func(role interface{}) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		res := httptest.NewRecorder()
		c := e.NewContext(req, res)
		if role != nil {
			c.Set("role", role)
		}
		require.NoError(t, h(c))
		return res.Code
	}

	assert.Equal(t, http.StatusOK, run(model.RoleAdmin))
	assert.Equal(t, http.StatusOK, run(model.RoleEmployee))
	assert.Equal(t, http.StatusForbidden, run(model.RoleUser))
	assert.Equal(t, http.StatusForbidden, run(nil))
}
