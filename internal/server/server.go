package server

import (
	"app/internal/handler"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Newはルーティング済みのechoインスタンスを作る。
func New(productH *handler.ProductHandler, orderH *handler.OrderHandler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	productH.RegisterRoutes(e)
	orderH.RegisterRoutes(e)

	return e
}

func Start(addr string, productH *handler.ProductHandler, orderH *handler.OrderHandler) error {
	e := New(productH, orderH)
	return e.Start(addr)
}
