package handler

import (
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// writeErrorはusecaseのエラーを公開APIの形に変換する。
// 404はプレーンテキスト、それ以外は {"errors": {<scope>: {"code", "name"}}}。
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if ce, ok := usecase.AsCheckoutError(err); ok {
		if ce.Status == http.StatusNotFound {
			return c.String(http.StatusNotFound, ce.Name)
		}
		return c.JSON(ce.Status, map[string]any{
			"errors": map[string]any{
				ce.Scope: map[string]string{
					"code": ce.Code,
					"name": ce.Name,
				},
			},
		})
	}

	//500
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

// GET / の公開API
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.list)
}

func (h *ProductHandler) list(c echo.Context) error {
	out, err := h.uc.ListProducts(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
