package handler

import (
	"net/http"
	"strconv"

	"littlelemon/internal/domain/model"
	"littlelemon/internal/middleware"
	"littlelemon/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

var statusByKind = map[usecase.ErrorKind]int{
	usecase.KindNotFound:     http.StatusNotFound,
	usecase.KindInvalidInput: http.StatusBadRequest,
	usecase.KindInvalidState: http.StatusBadRequest,
	usecase.KindForbidden:    http.StatusForbidden,
	usecase.KindUnauthorized: http.StatusUnauthorized,
	usecase.KindConflict:     http.StatusConflict,
	usecase.KindInternal:     http.StatusInternalServerError,
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	ue, ok := usecase.AsError(err)
	if !ok || ue.Kind == usecase.KindInternal {
		//原因はログだけに出す
		middleware.LoggerFrom(c, nil).Error("request failed",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: string(usecase.KindInternal), Message: "internal error"})
	}

	status, ok := statusByKind[ue.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, ErrorResponse{Error: string(ue.Kind), Message: ue.Message})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: string(usecase.KindInvalidInput), Message: msg})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: string(usecase.KindUnauthorized), Message: "authentication required"})
}

// ResolveCallerが通った後の呼び出し元
func getCallerFromContext(c echo.Context) (model.Caller, bool) {
	return middleware.CallerFrom(c)
}

// パスの:idを正の整数として読む
func parseIDParam(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// クエリの整数。空なら0
func queryInt(c echo.Context, name string) (int, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// bind + validate。失敗はINVALID_INPUTで返す
func decodeBody(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return usecase.NewError(usecase.KindInvalidInput, "invalid body")
	}
	if err := c.Validate(req); err != nil {
		return usecase.NewError(usecase.KindInvalidInput, err.Error())
	}
	return nil
}
