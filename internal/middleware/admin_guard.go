package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// contextのroleがAdminかどうかを確認します。
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, messageJSON(msgAuthRequired))
			}

			//Employeeは拒否、Adminだけ許可
			if !identity.IsAdmin() {
				return c.JSON(http.StatusForbidden, messageJSON(msgAdminOnly))
			}

			return next(c)
		}
	}
}

// Adminか、パスパラメータのユーザー本人なら許可
func RequireAdminOrSelf(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, messageJSON(msgAuthRequired))
			}

			if identity.IsAdmin() {
				return next(c)
			}
			if target := c.Param(param); target != "" && target == identity.UserID {
				return next(c)
			}

			return c.JSON(http.StatusForbidden, messageJSON(msgAccessDenied))
		}
	}
}
