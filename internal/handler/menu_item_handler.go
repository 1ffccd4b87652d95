package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"littlelemon/internal/domain/model"
	"littlelemon/internal/middleware"
	"littlelemon/internal/usecase"

	"github.com/labstack/echo/v4"
)

type menuItemService interface {
	List(ctx context.Context, in usecase.MenuListInput) (usecase.MenuItemListOutput, error)
	Get(ctx context.Context, id int64) (usecase.MenuItemOutput, error)
	Create(ctx context.Context, in usecase.MenuItemInput) (usecase.MenuItemOutput, error)
	Update(ctx context.Context, id int64, in usecase.MenuItemInput) (usecase.MenuItemOutput, error)
	Patch(ctx context.Context, id int64, in usecase.MenuItemPatch) (usecase.MenuItemOutput, error)
	Delete(ctx context.Context, id int64) error
}

// /menu-items。読むのは誰でも、書くのはManager/Admin
type MenuItemHandler struct {
	uc menuItemService
}

func NewMenuItemHandler(uc menuItemService) *MenuItemHandler {
	return &MenuItemHandler{uc: uc}
}

// priceは "5.50" でも 5.5 でも受ける
type menuItemRequest struct {
	Title      *string         `json:"title"`
	Price      json.RawMessage `json:"price"`
	Featured   *bool           `json:"featured"`
	CategoryID *int64          `json:"category_id"`
}

func (h *MenuItemHandler) RegisterRoutes(e *echo.Echo, guards Guards) {
	g := e.Group("/menu-items", guards.Public()...)
	g.Use(middleware.RequireAnyRoleForWrites(model.RoleManager))

	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.detail)
	g.PUT("/:id", h.update)
	g.PATCH("/:id", h.patch)
	g.DELETE("/:id", h.delete)
}

func (h *MenuItemHandler) list(c echo.Context) error {
	page, ok := queryInt(c, "page")
	if !ok {
		return badRequest(c, "invalid page")
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return badRequest(c, "invalid limit")
	}

	in := usecase.MenuListInput{
		Page:     page,
		Limit:    limit,
		Search:   c.QueryParam("search"),
		Ordering: c.QueryParam("ordering"),
	}

	if v := c.QueryParam("category"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid category")
		}
		in.CategoryID = &id
	}
	if v := c.QueryParam("featured"); v != "" {
		f, err := strconv.ParseBool(v)
		if err != nil {
			return badRequest(c, "invalid featured")
		}
		in.Featured = &f
	}

	out, err := h.uc.List(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *MenuItemHandler) detail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *MenuItemHandler) create(c echo.Context) error {
	in, err := h.bindFull(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.Create(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *MenuItemHandler) update(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	in, err := h.bindFull(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.Update(c.Request().Context(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *MenuItemHandler) patch(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req menuItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	in := usecase.MenuItemPatch{
		Title:      req.Title,
		Featured:   req.Featured,
		CategoryID: req.CategoryID,
	}
	if len(req.Price) > 0 {
		p, err := priceText(req.Price)
		if err != nil {
			return writeError(c, err)
		}
		in.Price = &p
	}

	out, err := h.uc.Patch(c.Request().Context(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *MenuItemHandler) delete(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	if err := h.uc.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// POST/PUTは全項目必須
func (h *MenuItemHandler) bindFull(c echo.Context) (usecase.MenuItemInput, error) {
	var req menuItemRequest
	if err := c.Bind(&req); err != nil {
		return usecase.MenuItemInput{}, usecase.NewError(usecase.KindInvalidInput, "invalid body")
	}

	var missing []string
	if req.Title == nil {
		missing = append(missing, "title")
	}
	if len(req.Price) == 0 {
		missing = append(missing, "price")
	}
	if req.CategoryID == nil {
		missing = append(missing, "category_id")
	}
	if len(missing) > 0 {
		return usecase.MenuItemInput{}, usecase.NewError(usecase.KindInvalidInput, strings.Join(missing, ", ")+" is required")
	}

	price, err := priceText(req.Price)
	if err != nil {
		return usecase.MenuItemInput{}, err
	}

	in := usecase.MenuItemInput{
		Title:      *req.Title,
		Price:      price,
		CategoryID: *req.CategoryID,
	}
	if req.Featured != nil {
		in.Featured = *req.Featured
	}
	return in, nil
}

// JSONの文字列でも数値でもpriceの文字列表現にする
func priceText(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", usecase.NewError(usecase.KindInvalidInput, "price must be a decimal")
}
