package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"littlelemon/internal/domain/model"
	"littlelemon/internal/usecase"

	"github.com/labstack/echo/v4"
)

const headerIdempotencyKey = "X-Idempotency-Key"

type orderService interface {
	Checkout(ctx context.Context, caller model.Caller, idempotencyKey string) (usecase.OrderOutput, bool, error)
	ListOrders(ctx context.Context, caller model.Caller, page int, limit int) (usecase.OrderListOutput, error)
	GetOrder(ctx context.Context, caller model.Caller, orderID int64) (usecase.OrderOutput, error)
	UpdateOrder(ctx context.Context, caller model.Caller, orderID int64, in usecase.UpdateOrderInput) (usecase.OrderOutput, error)
	DeleteOrder(ctx context.Context, caller model.Caller, orderID int64) error
}

type OrderHandler struct {
	uc orderService
}

func NewOrderHandler(uc orderService) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// 見える範囲はロールで決まる（usecase側）
func (h *OrderHandler) RegisterRoutes(e *echo.Echo, guards Guards) {
	g := e.Group("/orders", guards.Authenticated()...)

	g.GET("", h.list)
	g.POST("", h.checkout)
	g.GET("/:id", h.detail)
	g.PUT("/:id", h.update)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

// カートを注文にする
func (h *OrderHandler) checkout(c echo.Context) error {
	caller, ok := getCallerFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	//二重送信防止キーはヘッダーから受け取る（bodyには入れない）
	idemKey := c.Request().Header.Get(headerIdempotencyKey)

	out, created, err := h.uc.Checkout(c.Request().Context(), caller, idemKey)
	if err != nil {
		return writeError(c, err)
	}

	// 同じキーの再送は既存の注文を200で返す
	if !created {
		return c.JSON(http.StatusOK, out)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	caller, ok := getCallerFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	page, ok := queryInt(c, "page")
	if !ok {
		return badRequest(c, "invalid page")
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return badRequest(c, "invalid limit")
	}

	out, err := h.uc.ListOrders(c.Request().Context(), caller, page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	caller, ok := getCallerFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.GetOrder(c.Request().Context(), caller, orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// PUTもPATCHも送られたキーだけ反映する
func (h *OrderHandler) update(c echo.Context) error {
	caller, ok := getCallerFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return badRequest(c, "invalid body")
	}

	in, err := usecase.ParseOrderUpdate(body)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.UpdateOrder(c.Request().Context(), caller, orderID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) delete(c echo.Context) error {
	caller, ok := getCallerFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	if err := h.uc.DeleteOrder(c.Request().Context(), caller, orderID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
