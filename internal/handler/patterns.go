package handler

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/segurplan-dev/roster-manager/backend/internal/domain"
)

func (h *Handler) GetAllPatterns(w http.ResponseWriter, r *http.Request) {
	patterns, err := h.repository.GetAllPatterns()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "patrones obtenidos correctamente", patterns)
}

func (h *Handler) CreatePattern(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code     string `json:"code" validate:"required,max=16"`
		WorkDays int32  `json:"workDays" validate:"required,min=1"`
		RestDays int32  `json:"restDays" validate:"min=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	pattern := &domain.Pattern{
		Code:     req.Code,
		WorkDays: req.WorkDays,
		RestDays: req.RestDays,
	}

	if err := h.repository.CreatePattern(pattern); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "patterns_code_key":
				h.errorResponse(w, r, "ya existe un patrón con ese código")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "patrón creado correctamente", pattern)
}
