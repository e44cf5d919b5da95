package inventory

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/bbms/bbms/internal/platform/auth"
	"github.com/bbms/bbms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleMedicalOfficer, auth.RoleTechnician))
	read.GET("/blood-units", h.ListUnits)
	read.GET("/blood-units/:id", h.GetUnit)
	read.GET("/blood-units/number/:unitNumber", h.GetUnitByNumber)

	write := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleTechnician))
	write.POST("/blood-units", h.CreateUnit)
	write.PATCH("/blood-units/:id/status", h.UpdateStatus)
	write.DELETE("/blood-units/:id", h.DeleteUnit)
}

func (h *Handler) CreateUnit(c echo.Context) error {
	var u BloodUnit
	if err := c.Bind(&u); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateUnit(c.Request().Context(), &u); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) GetUnit(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	u, err := h.svc.GetUnit(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "blood unit not found")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) GetUnitByNumber(c echo.Context) error {
	u, err := h.svc.GetUnitByNumber(c.Request().Context(), c.Param("unitNumber"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "blood unit not found")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) ListUnits(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{}
	for _, key := range []string{"blood_type", "component", "status", "donation_id", "expiring"} {
		if v := c.QueryParam(key); v != "" {
			params[key] = v
		}
	}
	items, total, err := h.svc.SearchUnits(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdateStatus(c.Request().Context(), id, body.Status); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.GetUnit(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "blood unit not found")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) DeleteUnit(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteUnit(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrUnitInUse) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusNotFound, "blood unit not found")
	}
	return c.NoContent(http.StatusNoContent)
}
