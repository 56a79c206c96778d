package middleware

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	jwtpkg "github.com/motowave/motowave/internal/pkg/jwt"
	"github.com/motowave/motowave/internal/pkg/models"
	"github.com/motowave/motowave/internal/utils"
)

// ContextKeyOwnerID is the echo context key carrying the authenticated owner id
const ContextKeyOwnerID = "owner_id"

// JWTAuthMiddleware creates a middleware for JWT authentication
func JWTAuthMiddleware(config models.JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Get the Authorization header
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return utils.UnauthorizedResponse(c, "Authorization header is required")
			}

			// Check if the Authorization header has the correct format
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return utils.UnauthorizedResponse(c, "Invalid authorization format")
			}

			// Extract the token
			tokenString := parts[1]

			// Validate the token using our JWT package
			claims, err := jwtpkg.ValidateToken(tokenString, config.Secret)
			if err != nil {
				return utils.UnauthorizedResponse(c, "Invalid token")
			}

			// Extract owner ID from claims
			ownerIDStr, ok := (*claims)["owner_id"]
			if !ok {
				return utils.UnauthorizedResponse(c, "Invalid token: missing owner_id claim")
			}

			// Parse the UUID
			ownerID, err := uuid.Parse(fmt.Sprintf("%v", ownerIDStr))
			if err != nil {
				return utils.UnauthorizedResponse(c, "Invalid token: owner_id is not a valid UUID")
			}

			// Set the owner ID in the context
			c.Set(ContextKeyOwnerID, ownerID)

			return next(c)
		}
	}
}

// OwnerIDFromContext returns the authenticated owner id set by the middleware
func OwnerIDFromContext(c echo.Context) (uuid.UUID, bool) {
	ownerID, ok := c.Get(ContextKeyOwnerID).(uuid.UUID)
	return ownerID, ok
}
