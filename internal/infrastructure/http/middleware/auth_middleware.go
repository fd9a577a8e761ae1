package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "github.com/pitchlabs/salescoach/errors"
	"github.com/pitchlabs/salescoach/pkg/jwt"
)

// Context keys set by the auth middleware.
const (
	UserIDKey = "user_id"
	EmailKey  = "user_email"
	RoleKey   = "user_role"
)

// AuthMiddleware validates bearer tokens on protected routes.
type AuthMiddleware struct {
	jwtManager *jwt.Manager
}

// NewAuthMiddleware creates the middleware over a JWT manager.
func NewAuthMiddleware(jwtManager *jwt.Manager) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager}
}

// Authenticate validates the access token and stores the caller's identity
// in the echo context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := extractToken(c)
		if token == "" {
			return reject(c, apperrors.ErrUnauthenticated())
		}

		claims, err := m.jwtManager.ValidateAccessToken(token)
		if err != nil {
			return reject(c, apperrors.ErrInvalidToken())
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(EmailKey, claims.Email)
		c.Set(RoleKey, claims.Role)
		return next(c)
	}
}

// reject writes the standard error body without passing through the handler
// helpers; middleware runs before any handler is bound.
func reject(c echo.Context, appErr apperrors.AppError) error {
	return c.JSON(appErr.HTTPCode, map[string]interface{}{
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}

// extractToken reads the bearer token from the Authorization header, falling
// back to the access_token cookie for browser clients.
func extractToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return ""
}
