package handler

import (
	"context"
	"errors"
	"net/http"

	"littlelemon/internal/usecase"
	auth "littlelemon/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

type registerExecutor interface {
	Execute(ctx context.Context, in auth.RegisterUserInput) (auth.RegisterUserOutput, error)
}

type loginExecutor interface {
	Execute(ctx context.Context, in auth.LoginInput) (auth.JwtAccessToken, error)
}

type logoutExecutor interface {
	Execute(ctx context.Context, userID int64) error
}

type AuthHandler struct {
	registerUC registerExecutor // 会員登録usecase
	loginUC    loginExecutor    // ログインusecase
	logoutUC   logoutExecutor   // 全端末ログアウト
}

// DIコンストラクタ
func NewAuthHandler(registerUC registerExecutor, loginUC loginExecutor, logoutUC logoutExecutor) *AuthHandler {
	return &AuthHandler{registerUC: registerUC, loginUC: loginUC, logoutUC: logoutUC}
}

// /auth/register のリクエストボディ。
type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required"`
}

// /auth/login のリクエストボディ。
type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo, guards Guards) {
	g := e.Group("/auth")
	g.POST("/register", h.register, guards.Public()...)
	g.POST("/login", h.login, guards.Public()...)
	g.POST("/logout", h.logout, guards.Authenticated()...)
}

func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if err := decodeBody(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.registerUC.Execute(c.Request().Context(), auth.RegisterUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, authError(err))
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := decodeBody(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.loginUC.Execute(c.Request().Context(), auth.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, authError(err))
	}

	return c.JSON(http.StatusOK, out)
}

// token_versionを上げて発行済みトークンを全部無効にする
func (h *AuthHandler) logout(c echo.Context) error {
	caller, ok := getCallerFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.logoutUC.Execute(c.Request().Context(), caller.UserID); err != nil {
		return writeError(c, authError(err))
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "logged out"})
}

// auth usecaseのエラーをusecase.Errorへ
func authError(err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidUsername),
		errors.Is(err, auth.ErrInvalidEmailFormat),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, auth.ErrWeakPassword):
		return usecase.NewError(usecase.KindInvalidInput, err.Error())
	case errors.Is(err, auth.ErrUsernameAlreadyExists):
		return usecase.NewError(usecase.KindConflict, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		return usecase.NewError(usecase.KindUnauthorized, err.Error())
	case errors.Is(err, auth.ErrUserInactive):
		return usecase.NewError(usecase.KindForbidden, err.Error())
	default:
		return err
	}
}
