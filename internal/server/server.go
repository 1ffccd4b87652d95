package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"littlelemon/internal/middleware"
	reqvalidator "littlelemon/internal/validator"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// 共通ミドルウェアを積んだechoを作る
func New(log *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = reqvalidator.New()
	e.HTTPErrorHandler = errorHandler(log)

	// /orders/ と /orders を同じに扱う
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())

	return e
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// echo自身のエラー（404/405/bind失敗など）も同じ形で返す
func errorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := "internal error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(status)
			}
		} else {
			middleware.LoggerFrom(c, log).Error("unhandled error", zap.Error(err))
		}

		body := errorBody{Error: errorKind(status), Message: msg}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Warn("write error response", zap.Error(err))
		}
	}
}

func errorKind(status int) string {
	switch status {
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusTooManyRequests:
		return "THROTTLED"
	}
	if status >= 400 && status < 500 {
		return "INVALID_INPUT"
	}
	return "INTERNAL"
}

// ctxがキャンセルされるまで待ってgraceful shutdown
func Start(ctx context.Context, e *echo.Echo, addr string, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server started", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("http server shutting down")
	return e.Shutdown(shutdownCtx)
}
