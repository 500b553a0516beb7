package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/segurplan-dev/roster-manager/backend/internal/domain"
)

func (h *Handler) GetInstallationPosts(w http.ResponseWriter, r *http.Request) {
	installationID := r.Context().Value(InstallationIDCtxKey).(int64)

	posts, err := h.repository.GetActivePosts(installationID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "puestos obtenidos correctamente", posts)
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	post := r.Context().Value(PostCtxKey).(*domain.Post)

	h.successResponse(w, r, "puesto obtenido correctamente", post)
}

func (h *Handler) GetAllGuards(w http.ResponseWriter, r *http.Request) {
	guards, err := h.repository.GetAllGuards()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "vigilantes obtenidos correctamente", guards)
}

// UpsertSlotAssignment cambia el titular actual de una ranura sin repintar
// su serie: la asignación y el vigilante de la serie pueden divergir hasta
// el siguiente pintado.
func (h *Handler) UpsertSlotAssignment(w http.ResponseWriter, r *http.Request) {
	post := r.Context().Value(PostCtxKey).(*domain.Post)

	slotNumberParam := chi.URLParam(r, "slotNumber")
	slotNumber64, err := strconv.ParseInt(slotNumberParam, 10, 32)
	if err != nil {
		h.errorResponse(w, r, "número de ranura inválido")
		return
	}
	slotNumber := int32(slotNumber64)

	if slotNumber < 1 || slotNumber > post.RequiredSlots {
		h.errorResponse(w, r, "la ranura no existe en este puesto")
		return
	}

	var req struct {
		GuardID int64 `json:"guardID" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	assignment := &domain.SlotAssignment{
		PostID:     post.ID,
		SlotNumber: slotNumber,
		GuardID:    req.GuardID,
	}

	if err := h.repository.UpsertSlotAssignment(assignment); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "slot_assignments_guard_id_fkey":
				h.errorResponse(w, r, "el vigilante no existe")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "titular de la ranura actualizado", assignment)
}
