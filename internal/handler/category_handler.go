package handler

import (
	"context"
	"net/http"

	"littlelemon/internal/domain/model"
	"littlelemon/internal/middleware"
	"littlelemon/internal/usecase"

	"github.com/labstack/echo/v4"
)

type categoryService interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, in usecase.CategoryInput) (model.Category, error)
}

// /categories
type CategoryHandler struct {
	uc categoryService
}

func NewCategoryHandler(uc categoryService) *CategoryHandler {
	return &CategoryHandler{uc: uc}
}

type categoryRequest struct {
	Slug  string `json:"slug" validate:"required"`
	Title string `json:"title" validate:"required"`
}

func (h *CategoryHandler) RegisterRoutes(e *echo.Echo, guards Guards) {
	g := e.Group("/categories", guards.Public()...)
	g.Use(middleware.RequireAnyRoleForWrites(model.RoleManager))

	g.GET("", h.list)
	g.POST("", h.create)
}

func (h *CategoryHandler) list(c echo.Context) error {
	cats, err := h.uc.ListCategories(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	if cats == nil {
		cats = []model.Category{}
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *CategoryHandler) create(c echo.Context) error {
	var req categoryRequest
	if err := decodeBody(c, &req); err != nil {
		return writeError(c, err)
	}

	cat, err := h.uc.CreateCategory(c.Request().Context(), usecase.CategoryInput{Slug: req.Slug, Title: req.Title})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, cat)
}
