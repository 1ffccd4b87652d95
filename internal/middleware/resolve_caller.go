package middleware

import (
	"errors"
	"net/http"

	"littlelemon/internal/domain/model"
	"littlelemon/internal/repository"

	"github.com/labstack/echo/v4"
)

// AuthJWTの後に置く。
// DBのユーザーとtoken_versionを照合し、ロールを引いてCallerを作る。
func ResolveCaller(users repository.UserRepository, roles repository.RoleRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := c.Get(CtxUserIDKey).(int64)
			if !ok || userID <= 0 {
				// OptionalAuthJWTで匿名のまま来た
				return next(c)
			}
			tv, ok := c.Get(CtxTokenVersionKey).(int)
			if !ok || tv < 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON("UNAUTHORIZED", "authentication required"))
			}

			ctx := c.Request().Context()

			//DBから最新のuserを取得する
			user, err := users.FindByID(ctx, userID)
			if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
				return c.JSON(http.StatusInternalServerError, errorJSON("INTERNAL", "internal error"))
			}
			if err != nil || user == nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("UNAUTHORIZED", "authentication required"))
			}

			//token_version が一致しなければ強制ログアウト扱い（401）
			if user.TokenVersion != tv || !user.IsActive {
				return c.JSON(http.StatusUnauthorized, errorJSON("UNAUTHORIZED", "token revoked"))
			}

			rs, err := roles.ListRoles(ctx, userID)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, errorJSON("INTERNAL", "internal error"))
			}

			c.Set(CtxCallerKey, model.Caller{UserID: userID, Roles: rs})
			return next(c)
		}
	}
}

// ResolveCallerが入れたCallerを取り出す
func CallerFrom(c echo.Context) (model.Caller, bool) {
	caller, ok := c.Get(CtxCallerKey).(model.Caller)
	if !ok || caller.UserID <= 0 {
		return model.Caller{}, false
	}
	return caller, true
}
