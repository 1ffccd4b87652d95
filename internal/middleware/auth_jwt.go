package middleware

import (
	"net/http"
	"strings"

	"littlelemon/internal/infra/token"

	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey       = "user_id"       // int64
	CtxTokenVersionKey = "token_version" // int
	CtxCallerKey       = "caller"        // model.Caller
	CtxRequestIDKey    = "request_id"    // string

	ctxLoggerKey = "logger"
)

// アクセストークンを検証する約束
type TokenParser interface {
	Parse(raw string) (token.Claims, error)
}

// bearerAuth用のJWT検証ミドルウェア。
func AuthJWT(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := bearerClaims(c, parser)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("UNAUTHORIZED", "authentication required"))
			}

			//contextへ保存
			c.Set(CtxUserIDKey, claims.UserID)
			c.Set(CtxTokenVersionKey, claims.TokenVersion)
			return next(c)
		}
	}
}

// 公開APIでトークンがあれば読む。ヘッダーなしは匿名、壊れたトークンは401
func OptionalAuthJWT(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				return next(c)
			}
			return AuthJWT(parser)(next)(c)
		}
	}
}

func bearerClaims(c echo.Context, parser TokenParser) (token.Claims, bool) {
	//Authorizationヘッダを取得
	authz := c.Request().Header.Get(echo.HeaderAuthorization)
	if authz == "" {
		return token.Claims{}, false
	}

	//Bearer形式か確認してtokenを抜く
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return token.Claims{}, false
	}
	rawToken := strings.TrimSpace(parts[1])
	if rawToken == "" {
		return token.Claims{}, false
	}

	claims, err := parser.Parse(rawToken)
	if err != nil {
		return token.Claims{}, false
	}
	return claims, true
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func errorJSON(kind string, msg string) errorResponse {
	return errorResponse{Error: kind, Message: msg}
}
