package middleware

import (
	"context"
	"fmt"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"indumart/internal/common"
	"indumart/internal/services"
)

// JWTMiddleware validates the bearer token on admin routes and places the
// authenticated admin ID on the request context.
func JWTMiddleware(authSvc services.AuthService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ParseTokenFunc: func(c echo.Context, auth string) (any, error) {
			claims, err := authSvc.ValidateToken(c.Request().Context(), auth)
			if err != nil {
				return nil, err
			}
			if claims.Role != "admin" {
				return nil, fmt.Errorf("admin access required")
			}
			adminID, err := uuid.Parse(claims.AdminID)
			if err != nil {
				return nil, fmt.Errorf("invalid admin_id claim")
			}

			ctx := context.WithValue(c.Request().Context(), common.AdminIDKey, adminID)
			c.SetRequest(c.Request().WithContext(ctx))

			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	})
}
