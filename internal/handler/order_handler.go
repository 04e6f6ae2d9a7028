package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc *usecase.CheckoutUsecase
}

func NewOrderHandler(uc *usecase.CheckoutUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/order", h.create)
	e.GET("/order/:id", h.detail)
	e.PUT("/order/:id", h.advance)
}

func (h *OrderHandler) create(c echo.Context) error {
	var req usecase.CreateOrderInput
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "No JSON received")
	}

	orderID, err := h.uc.CreateOrder(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}

	//作成済み。取得先はLocationで示す
	location := fmt.Sprintf("/order/%d", orderID)
	c.Response().Header().Set(echo.HeaderLocation, location)
	return c.JSON(http.StatusFound, map[string]string{"Location": location})
}

func (h *OrderHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return writeError(c, usecase.NewOrderNotFound())
	}

	out, err := h.uc.GetOrder(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]usecase.OrderView{"order": out})
}

func (h *OrderHandler) advance(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return writeError(c, usecase.NewOrderNotFound())
	}

	var req usecase.AdvanceOrderInput
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "No JSON received")
	}

	out, err := h.uc.AdvanceOrder(c.Request().Context(), id, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]usecase.OrderView{"order": out})
}
