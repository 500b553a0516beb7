package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/segurplan-dev/roster-manager/backend/internal/domain"
	"github.com/segurplan-dev/roster-manager/backend/internal/roster"
)

// rosterError traduce la taxonomía de errores del motor a respuestas con el
// motivo concreto: quien planifica necesita saber qué corregir, no un
// fallo genérico.
func (h *Handler) rosterError(w http.ResponseWriter, r *http.Request, err error) {
	var cfgErr *domain.ConfigurationError
	var valErr *domain.ValidationError

	switch {
	case errors.As(err, &cfgErr):
		h.errorResponse(w, r, cfgErr.Reason)
	case errors.As(err, &valErr):
		h.errorResponse(w, r, valErr.Reason)
	case errors.Is(err, domain.ErrNotFound):
		h.errorResponse(w, r, "el recurso no existe")
	case errors.Is(err, domain.ErrConflict):
		h.errorResponse(w, r, "otra operación está modificando la misma ranura, reintente en unos segundos")
	case errors.Is(err, domain.ErrNoPostsConfigured):
		h.errorResponse(w, r, "la instalación no tiene puestos configurados")
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) actor(r *http.Request) string {
	if actor, ok := r.Context().Value(ActorCtxKey).(string); ok {
		return actor
	}
	return ""
}

func (h *Handler) monthYearParams(r *http.Request) (int, int, error) {
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		return 0, 0, errors.New("el parámetro month es obligatorio y debe ser numérico")
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		return 0, 0, errors.New("el parámetro year es obligatorio y debe ser numérico")
	}
	return month, year, nil
}

func (h *Handler) GetMatrix(w http.ResponseWriter, r *http.Request) {
	installationID := r.Context().Value(InstallationIDCtxKey).(int64)

	month, year, err := h.monthYearParams(r)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	matrix, err := h.engine.BuildMatrix(installationID, month, year)
	if err != nil {
		h.rosterError(w, r, err)
		return
	}

	h.successResponse(w, r, "cuadrante generado correctamente", matrix)
}

func (h *Handler) GenerateRoster(w http.ResponseWriter, r *http.Request) {
	installationID := r.Context().Value(InstallationIDCtxKey).(int64)

	var req struct {
		Month int `json:"month" validate:"required"`
		Year  int `json:"year" validate:"required"`
		// Overwrite descarta las ediciones manuales del mes: la interfaz
		// debe pedir confirmación explícita antes de enviarlo.
		Overwrite bool `json:"overwrite"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	created, err := h.engine.GenerateIfMissing(installationID, req.Month, req.Year, req.Overwrite, h.actor(r))
	if err != nil {
		h.rosterError(w, r, err)
		return
	}

	h.successResponse(w, r, "generación del mes completada", map[string]any{
		"cellsCreated": created,
	})
}

func (h *Handler) PaintSeries(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PostID           int64  `json:"postID" validate:"required"`
		SlotNumber       int32  `json:"slotNumber" validate:"required,min=1"`
		GuardID          int64  `json:"guardID" validate:"required"`
		PatternCode      string `json:"patternCode" validate:"required"`
		StartDate        string `json:"startDate" validate:"required"`
		StartPosition    int32  `json:"startPosition" validate:"required,min=1"`
		Rotativo         bool   `json:"rotativo"`
		RotatePostID     *int64 `json:"rotatePostID"`
		RotateSlotNumber *int32 `json:"rotateSlotNumber"`
		StartShift       string `json:"startShift" validate:"omitempty,oneof=DIA NOCHE"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	startDate, err := time.Parse(domain.DateKey, req.StartDate)
	if err != nil {
		h.errorResponse(w, r, "la fecha de inicio debe tener formato AAAA-MM-DD")
		return
	}

	series, cellsPainted, err := h.engine.PaintSeries(roster.PaintSeriesParams{
		PostID:           req.PostID,
		SlotNumber:       req.SlotNumber,
		GuardID:          req.GuardID,
		PatternCode:      req.PatternCode,
		StartDate:        startDate,
		StartPosition:    req.StartPosition,
		Rotativo:         req.Rotativo,
		RotatePostID:     req.RotatePostID,
		RotateSlotNumber: req.RotateSlotNumber,
		StartShift:       domain.ShiftVariant(req.StartShift),
		Actor:            h.actor(r),
	})
	if err != nil {
		h.rosterError(w, r, err)
		return
	}

	h.successResponse(w, r, "serie pintada correctamente", map[string]any{
		"series":       series,
		"cellsPainted": cellsPainted,
	})
}

func (h *Handler) PaintSingleDay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PostID     int64  `json:"postID" validate:"required"`
		SlotNumber int32  `json:"slotNumber" validate:"required,min=1"`
		Date       string `json:"date" validate:"required"`
		ShiftCode  string `json:"shiftCode" validate:"required"`
		GuardID    *int64 `json:"guardID"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	date, err := time.Parse(domain.DateKey, req.Date)
	if err != nil {
		h.errorResponse(w, r, "la fecha debe tener formato AAAA-MM-DD")
		return
	}

	cell, err := h.engine.PaintSingleDay(roster.PaintSingleDayParams{
		PostID:     req.PostID,
		SlotNumber: req.SlotNumber,
		Date:       date,
		ShiftCode:  domain.ShiftCode(req.ShiftCode),
		GuardID:    req.GuardID,
		Actor:      h.actor(r),
	})
	if err != nil {
		h.rosterError(w, r, err)
		return
	}

	h.successResponse(w, r, "día pintado correctamente", cell)
}

func (h *Handler) DeleteSeries(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PostID     int64  `json:"postID" validate:"required"`
		SlotNumber int32  `json:"slotNumber" validate:"required,min=1"`
		Date       string `json:"date" validate:"required"`
		Mode       string `json:"mode" validate:"required,oneof=FROM_DATE_FORWARD SINGLE_DAY"`
		DayOff     bool   `json:"dayOff"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	date, err := time.Parse(domain.DateKey, req.Date)
	if err != nil {
		h.errorResponse(w, r, "la fecha debe tener formato AAAA-MM-DD")
		return
	}

	cellsAffected, err := h.engine.DeleteSeries(roster.DeleteSeriesParams{
		PostID:     req.PostID,
		SlotNumber: req.SlotNumber,
		Date:       date,
		Mode:       roster.DeleteMode(req.Mode),
		DayOff:     req.DayOff,
		Actor:      h.actor(r),
	})
	if err != nil {
		h.rosterError(w, r, err)
		return
	}

	h.successResponse(w, r, "borrado completado", map[string]any{
		"cellsAffected": cellsAffected,
	})
}
