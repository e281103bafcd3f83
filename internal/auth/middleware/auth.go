package middleware

import (
	"context"
	"net/http"

	"cms-search/internal/auth"
	"cms-search/logger"

	"github.com/labstack/echo/v4"
)

type contextKey string

// ServiceContextKey holds the validated *auth.ServiceToken.
const ServiceContextKey contextKey = "service"

const ServiceTokenHeader = "X-Service-Token"

type AuthMiddleware struct {
	authClient *auth.Client
}

func NewAuthMiddleware(authClient *auth.Client) *AuthMiddleware {
	return &AuthMiddleware{authClient: authClient}
}

// RequireServiceAuth accepts only signed service tokens that carry every listed permission.
func (m *AuthMiddleware) RequireServiceAuth(permissions ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := c.Request().Header.Get(ServiceTokenHeader)
			if tokenString == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "service token required")
			}

			token, err := m.authClient.ValidateServiceToken(tokenString)
			if err != nil {
				logger.GlobalContext.WithContext(c.Request().Context()).Warn("service token rejected", "error", err)
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid service token")
			}
			for _, p := range permissions {
				if !token.HasPermission(p) {
					return echo.NewHTTPError(http.StatusUnauthorized, "insufficient permissions")
				}
			}

			ctx := context.WithValue(c.Request().Context(), ServiceContextKey, token)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// ServiceFromContext returns the token stored by RequireServiceAuth.
func ServiceFromContext(ctx context.Context) (*auth.ServiceToken, bool) {
	token, ok := ctx.Value(ServiceContextKey).(*auth.ServiceToken)
	return token, ok
}
