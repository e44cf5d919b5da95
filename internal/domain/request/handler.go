package request

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
	read.GET("/blood-requests", h.ListRequests)
	read.GET("/blood-requests/:id", h.GetRequest)
	read.GET("/blood-requests/:id/transfusions", h.ListTransfusions)

	officer := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleMedicalOfficer))
	officer.POST("/blood-requests", h.CreateRequest)
	officer.POST("/blood-requests/:id/approve", h.ApproveRequest)
	officer.POST("/blood-requests/:id/reject", h.RejectRequest)
	officer.POST("/blood-requests/:id/cancel", h.CancelRequest)
	officer.DELETE("/blood-requests/:id", h.DeleteRequest)
	officer.POST("/transfusions", h.Transfuse)
}

func (h *Handler) CreateRequest(c echo.Context) error {
	var r BloodRequest
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	if uid, err := uuid.Parse(auth.UserIDFromContext(ctx)); err == nil {
		r.RequesterID = &uid
	}
	if err := h.svc.CreateRequest(ctx, &r); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) GetRequest(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	r, err := h.svc.GetRequest(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "request not found")
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) ListRequests(c echo.Context) error {
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()
	params := map[string]string{}
	for _, key := range []string{"patient_id", "blood_type", "component", "status", "urgency"} {
		if v := c.QueryParam(key); v != "" {
			params[key] = v
		}
	}
	// Medical officers see their own requests; admins and technicians see
	// all.
	if auth.RoleFromContext(ctx) == auth.RoleMedicalOfficer {
		params["requester"] = auth.UserIDFromContext(ctx)
	}
	items, total, err := h.svc.SearchRequests(ctx, params, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ApproveRequest(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	r, err := h.svc.ApproveRequest(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) RejectRequest(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body struct {
		Reason *string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.RejectRequest(c.Request().Context(), id, body.Reason)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) CancelRequest(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	r, err := h.svc.CancelRequest(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) DeleteRequest(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteRequest(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrHasTransfusions) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Transfuse(c echo.Context) error {
	var body struct {
		RequestID uuid.UUID `json:"request_id"`
		TransfusionInput
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if body.RequestID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "request_id is required")
	}
	ctx := c.Request().Context()
	if body.PerformedBy == nil {
		if uid, err := uuid.Parse(auth.UserIDFromContext(ctx)); err == nil {
			body.PerformedBy = &uid
		}
	}
	r, t, units, err := h.svc.Transfuse(ctx, body.RequestID, body.TransfusionInput)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"request":     r,
		"transfusion": t,
		"blood_units": units,
	})
}

func (h *Handler) ListTransfusions(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	items, err := h.svc.ListTransfusions(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}
