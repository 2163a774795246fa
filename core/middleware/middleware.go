package middleware

import (
	"errors"
	"strings"

	"meeting-slot-api/core/constants"
	"meeting-slot-api/core/controller"
	apperrors "meeting-slot-api/core/errors"
	"meeting-slot-api/core/logger"
	"meeting-slot-api/core/utils"

	"github.com/labstack/echo/v4"
)

type Middleware struct {
	controller.BaseController
	jwtSecret string
}

func NewMiddleware(jwtSecret string) *Middleware {
	return &Middleware{
		BaseController: controller.NewBaseController(),
		jwtSecret:      jwtSecret,
	}
}

// AuthMiddleware validates the bearer token and stores its claims under ContextTokenData.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return m.ErrorResponse(c, apperrors.NewAppError(apperrors.ErrMissingAuthorizationHeader, "Missing authorization header", nil))
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				return m.ErrorResponse(c, apperrors.NewAppError(apperrors.ErrInvalidTokenFormat, "Invalid authorization header format", nil))
			}

			claims, err := utils.ParseToken(m.jwtSecret, strings.TrimSpace(token))
			if err != nil {
				logger.Warn("Middleware:Auth:ParseToken", "error", err, "path", c.Path())
				if errors.Is(err, utils.ErrTokenExpired) {
					return m.ErrorResponse(c, apperrors.NewAppError(apperrors.ErrTokenExpired, "Token expired", err))
				}
				return m.ErrorResponse(c, apperrors.NewAppError(apperrors.ErrUnauthorized, "Invalid token", err))
			}

			c.Set(constants.ContextTokenData, claims)
			return next(c)
		}
	}
}
