package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwtpkg "github.com/motowave/motowave/internal/pkg/jwt"
	"github.com/motowave/motowave/internal/pkg/models"
)

func jwtTestConfig() *models.Config {
	return &models.Config{
		JWT: models.JWTConfig{
			Secret:     "test-secret",
			Expiration: 60,
			Issuer:     "motowave",
		},
	}
}

func runThroughMiddleware(t *testing.T, authHeader string) (*httptest.ResponseRecorder, uuid.UUID, bool) {
	t.Helper()

	cfg := jwtTestConfig()
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotOwner uuid.UUID
	var gotOK bool
	handler := JWTAuthMiddleware(cfg.JWT)(func(c echo.Context) error {
		gotOwner, gotOK = OwnerIDFromContext(c)
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, handler(c))
	return rec, gotOwner, gotOK
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	ownerID := uuid.New()
	token, _, err := jwtpkg.GenerateToken(ownerID, jwtTestConfig())
	require.NoError(t, err)

	rec, gotOwner, gotOK := runThroughMiddleware(t, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotOK)
	assert.Equal(t, ownerID, gotOwner)
}

func TestJWTAuthMiddleware_MissingHeader(t *testing.T) {
	rec, _, gotOK := runThroughMiddleware(t, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, gotOK)
}

func TestJWTAuthMiddleware_MalformedHeader(t *testing.T) {
	rec, _, gotOK := runThroughMiddleware(t, "Token abc")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, gotOK)
}

func TestJWTAuthMiddleware_BadSignature(t *testing.T) {
	other := jwtTestConfig()
	other.JWT.Secret = "different-secret"
	token, _, err := jwtpkg.GenerateToken(uuid.New(), other)
	require.NoError(t, err)

	rec, _, gotOK := runThroughMiddleware(t, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, gotOK)
}
