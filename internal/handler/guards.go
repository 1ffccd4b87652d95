package handler

import (
	"littlelemon/internal/middleware"
	"littlelemon/internal/repository"

	"github.com/labstack/echo/v4"
)

// ルートごとに組む認証ミドルウェアの材料
type Guards struct {
	Tokens   middleware.TokenParser
	Users    repository.UserRepository
	Roles    repository.RoleRepository
	Throttle echo.MiddlewareFunc // nilなら制限なし
}

// JWT必須 + token_version一致 + Caller解決 + スロットル
func (g Guards) Authenticated() []echo.MiddlewareFunc {
	return g.chain(middleware.AuthJWT(g.Tokens))
}

// トークンがあれば読む（公開API）
func (g Guards) Public() []echo.MiddlewareFunc {
	return g.chain(middleware.OptionalAuthJWT(g.Tokens))
}

func (g Guards) chain(auth echo.MiddlewareFunc) []echo.MiddlewareFunc {
	mws := []echo.MiddlewareFunc{auth, middleware.ResolveCaller(g.Users, g.Roles)}
	if g.Throttle != nil {
		mws = append(mws, g.Throttle)
	}
	return mws
}
