package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mingle/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-used-only-in-unit-tests"

func newAuthApp(t *testing.T) *fiber.App {
	t.Helper()
	InitMiddleware(&config.Config{JWTSecret: testSecret})

	app := fiber.New()
	app.Get("/protected", AuthRequired, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"userID":   c.Locals("userID"),
			"userName": c.Locals("userName"),
		})
	})
	return app
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuthRequired_ValidToken(t *testing.T) {
	app := newAuthApp(t)
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":  "42",
		"name": "Olga",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRequired_Rejections(t *testing.T) {
	app := newAuthApp(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not a bearer token", "Basic dXNlcjpwYXNz"},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong secret", "Bearer " + signToken(t, "some-other-secret", jwt.MapClaims{
			"sub": "42",
			"exp": time.Now().Add(time.Hour).Unix(),
		})},
		{"expired token", "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			"sub": "42",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})},
		{"missing subject", "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})},
		{"non-numeric subject", "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			"sub": "forty-two",
			"exp": time.Now().Add(time.Hour).Unix(),
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}
