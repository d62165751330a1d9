package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"indumart/internal/common"
)

// CSRF guards the public state-changing routes with echo's double-submit
// token: safe requests receive the token in a cookie, unsafe ones must echo
// it back in X-CSRF-Token. Admin routes authenticate with bearer tokens and
// are not wrapped.
func CSRF() echo.MiddlewareFunc {
	return echoMiddleware.CSRFWithConfig(echoMiddleware.CSRFConfig{
		TokenLookup:    "header:X-CSRF-Token",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieHTTPOnly: false, // the storefront JS reads it to set the header
		CookieSameSite: http.SameSiteLaxMode,
		ErrorHandler: func(err error, c echo.Context) error {
			return c.JSON(http.StatusForbidden, common.CreateErrorResponse("CSRF_REJECTED", "Invalid or missing CSRF token", nil))
		},
	})
}
