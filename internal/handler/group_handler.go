package handler

import (
	"context"
	"net/http"

	"littlelemon/internal/domain/model"
	"littlelemon/internal/middleware"
	"littlelemon/internal/usecase"

	"github.com/labstack/echo/v4"
)

type groupService interface {
	ListMembers(ctx context.Context, role model.Role) ([]usecase.UserOutput, error)
	AddMember(ctx context.Context, role model.Role, username string) (usecase.UserOutput, error)
	RemoveMember(ctx context.Context, role model.Role, userID int64) error
}

// /groups/{manager|delivery-crew}/users
type GroupHandler struct {
	uc groupService
}

func NewGroupHandler(uc groupService) *GroupHandler {
	return &GroupHandler{uc: uc}
}

type addMemberRequest struct {
	Username string `json:"username" validate:"required"`
}

// Manager/Adminだけ
func (h *GroupHandler) RegisterRoutes(e *echo.Echo, guards Guards) {
	mws := append(guards.Authenticated(), middleware.RequireAnyRole(model.RoleManager))
	g := e.Group("/groups/:group/users", mws...)

	g.GET("", h.list)
	g.POST("", h.add)
	g.DELETE("/:id", h.remove)
}

func groupRole(c echo.Context) (model.Role, error) {
	role, ok := model.RoleFromGroup(c.Param("group"))
	if !ok || role == model.RoleAdmin {
		return "", usecase.NewError(usecase.KindNotFound, "group not found")
	}
	return role, nil
}

func (h *GroupHandler) list(c echo.Context) error {
	role, err := groupRole(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.ListMembers(c.Request().Context(), role)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *GroupHandler) add(c echo.Context) error {
	role, err := groupRole(c)
	if err != nil {
		return writeError(c, err)
	}

	var req addMemberRequest
	if err := decodeBody(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.AddMember(c.Request().Context(), role, req.Username)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *GroupHandler) remove(c echo.Context) error {
	role, err := groupRole(c)
	if err != nil {
		return writeError(c, err)
	}

	userID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	if err := h.uc.RemoveMember(c.Request().Context(), role, userID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "removed"})
}
