package handler

import (
	"context"
	"net/http"

	"littlelemon/internal/usecase"

	"github.com/labstack/echo/v4"
)

type cartService interface {
	AddLine(ctx context.Context, userID int64, in usecase.AddCartLineInput) (usecase.CartLineOutput, error)
	ListLines(ctx context.Context, userID int64) ([]usecase.CartLineOutput, error)
	ClearLines(ctx context.Context, userID int64) error
	RemoveLine(ctx context.Context, userID int64, menuItemID int64) error
}

// /cart/menu-itemsのHTTP
type CartHandler struct {
	uc cartService
}

// DI
func NewCartHandler(uc cartService) *CartHandler {
	return &CartHandler{uc: uc}
}

// menuitem_id と menuitem のどちらでも受ける
type addCartRequest struct {
	MenuItemID int64 `json:"menuitem_id" validate:"omitempty,gt=0"`
	MenuItem   int64 `json:"menuitem" validate:"omitempty,gt=0"`
	Quantity   int64 `json:"quantity" validate:"required,gt=0,lte=1000"`
}

func (r addCartRequest) menuItemID() int64 {
	if r.MenuItemID != 0 {
		return r.MenuItemID
	}
	return r.MenuItem
}

// 自分のカートだけ触れる
func (h *CartHandler) RegisterRoutes(e *echo.Echo, guards Guards) {
	g := e.Group("/cart/menu-items", guards.Authenticated()...)

	g.GET("", h.list)
	g.POST("", h.add)
	g.DELETE("", h.clear)
	g.DELETE("/:menuitem_id", h.remove)
}

func (h *CartHandler) list(c echo.Context) error {
	caller, ok := getCallerFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.ListLines(c.Request().Context(), caller.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) add(c echo.Context) error {
	caller, ok := getCallerFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req addCartRequest
	if err := decodeBody(c, &req); err != nil {
		return writeError(c, err)
	}
	if req.menuItemID() == 0 {
		return badRequest(c, "menuitem_id is required")
	}

	out, err := h.uc.AddLine(c.Request().Context(), caller.UserID, usecase.AddCartLineInput{
		MenuItemID: req.menuItemID(),
		Quantity:   req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

// 空でも成功
func (h *CartHandler) clear(c echo.Context) error {
	caller, ok := getCallerFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.uc.ClearLines(c.Request().Context(), caller.UserID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) remove(c echo.Context) error {
	caller, ok := getCallerFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	menuItemID, ok := parseIDParam(c, "menuitem_id")
	if !ok {
		return badRequest(c, "invalid menuitem_id")
	}

	if err := h.uc.RemoveLine(c.Request().Context(), caller.UserID, menuItemID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
