package server

import (
	"littlelemon/internal/handler"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	Category *handler.CategoryHandler
	MenuItem *handler.MenuItemHandler
	Cart     *handler.CartHandler
	Order    *handler.OrderHandler
	Group    *handler.GroupHandler
}

func RegisterRoutes(e *echo.Echo, h Handlers, guards handler.Guards) {
	h.Auth.RegisterRoutes(e, guards)
	h.Category.RegisterRoutes(e, guards)
	h.MenuItem.RegisterRoutes(e, guards)
	h.Cart.RegisterRoutes(e, guards)
	h.Order.RegisterRoutes(e, guards)
	h.Group.RegisterRoutes(e, guards)
}
