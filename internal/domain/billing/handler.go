package billing

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/odontari/clinic/internal/platform/auth"
	"github.com/odontari/clinic/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(g *echo.Group) {
	g.POST("/treatments", h.createTreatment, auth.RequireRole("billing"))
	g.GET("/treatments", h.listTreatments, auth.RequireRole("billing", "clinician"))
	g.GET("/treatments/:id", h.getTreatment, auth.RequireRole("billing", "clinician"))
	g.PUT("/treatments/:id", h.updateTreatment, auth.RequireRole("billing"))
	g.GET("/appointments/:id/procedures", h.listProcedures, auth.RequireRole("billing", "clinician"))
}

func (h *Handler) createTreatment(c echo.Context) error {
	var t Treatment
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.CreateTreatment(c.Request().Context(), &t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) getTreatment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid treatment id")
	}
	t, err := h.svc.GetTreatment(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrTreatmentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "treatment not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) updateTreatment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid treatment id")
	}
	var t Treatment
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	t.ID = id
	if err := h.svc.UpdateTreatment(c.Request().Context(), &t); err != nil {
		if errors.Is(err, ErrTreatmentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "treatment not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) listTreatments(c echo.Context) error {
	params := pagination.FromContext(c)
	items, total, err := h.svc.ListTreatments(c.Request().Context(), params.Limit, params.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, params.Limit, params.Offset))
}

func (h *Handler) listProcedures(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	items, err := h.svc.ListProcedures(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": items, "total": len(items)})
}
