package reporting

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bbms/bbms/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleMedicalOfficer, auth.RoleTechnician))
	read.GET("/reports/stock", h.GetStockReport)
	read.GET("/reports/summary", h.GetSummary)
}

func (h *Handler) GetStockReport(c echo.Context) error {
	report, err := h.svc.StockReport(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) GetSummary(c echo.Context) error {
	sum, err := h.svc.Summary(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sum)
}
