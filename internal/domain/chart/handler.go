package chart

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/odontari/clinic/internal/domain/patient"
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
	g.GET("/patients/:id/charts/:kind", h.get, auth.RequireRole("clinician"))
	g.PUT("/patients/:id/charts/:kind", h.save, auth.RequireRole("clinician"))
	g.GET("/patients/:id/charts/:kind/summary", h.summary, auth.RequireRole("clinician"))
	g.GET("/patients/:id/charts/:kind/revisions", h.revisions, auth.RequireRole("clinician"))
}

func chartParams(c echo.Context) (uuid.UUID, Kind, error) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, "", echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	kind, err := ParseKind(c.Param("kind"))
	if err != nil {
		return uuid.Nil, "", echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return patientID, kind, nil
}

func (h *Handler) get(c echo.Context) error {
	patientID, kind, err := chartParams(c)
	if err != nil {
		return err
	}
	doc, err := h.svc.Get(c.Request().Context(), patientID, kind)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, doc)
}

func (h *Handler) save(c echo.Context) error {
	patientID, kind, err := chartParams(c)
	if err != nil {
		return err
	}
	document, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable request body")
	}

	var appointmentID *uuid.UUID
	if raw := c.QueryParam("appointment_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment_id")
		}
		appointmentID = &id
	}
	var editorID *uuid.UUID
	if id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context())); err == nil {
		editorID = &id
	}

	result, err := h.svc.Save(c.Request().Context(), patientID, kind, document, editorID, appointmentID)
	if err != nil {
		return mapSaveError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func mapSaveError(err error) error {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, verr.Msg)
	case errors.Is(err, patient.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	case errors.Is(err, ErrAppointmentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	return err
}

func (h *Handler) summary(c echo.Context) error {
	patientID, kind, err := chartParams(c)
	if err != nil {
		return err
	}
	summary, err := h.svc.Summarize(c.Request().Context(), patientID, kind)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) revisions(c echo.Context) error {
	patientID, kind, err := chartParams(c)
	if err != nil {
		return err
	}
	params := pagination.FromContext(c)
	items, total, err := h.svc.ListRevisions(c.Request().Context(), patientID, kind, params.Limit, params.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, params.Limit, params.Offset))
}
