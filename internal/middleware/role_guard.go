package middleware

import (
	"net/http"

	"littlelemon/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// 認証済み かつ（Admin もしくは指定ロールのどれか）
func RequireAnyRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, ok := CallerFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("UNAUTHORIZED", "authentication required"))
			}

			if !caller.IsAdminOr(roles...) {
				return c.JSON(http.StatusForbidden, errorJSON("FORBIDDEN", "insufficient role"))
			}

			return next(c)
		}
	}
}

// 書き込み系のメソッドだけ RequireAnyRole を掛ける（GETは素通り）
func RequireAnyRoleForWrites(roles ...model.Role) echo.MiddlewareFunc {
	guard := RequireAnyRole(roles...)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		guarded := guard(next)
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}
			return guarded(c)
		}
	}
}
