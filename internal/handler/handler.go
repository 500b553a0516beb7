package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	es_translations "github.com/go-playground/validator/v10/translations/es"
	"github.com/segurplan-dev/roster-manager/backend/internal/config"
	"github.com/segurplan-dev/roster-manager/backend/internal/domain"
	"github.com/segurplan-dev/roster-manager/backend/internal/repository"
	"github.com/segurplan-dev/roster-manager/backend/internal/roster"
)

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	repository *repository.Repository
	engine     *roster.Engine
	translator ut.Translator

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, engine *roster.Engine) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	es := es.New()
	uni := ut.New(es, es)
	trans, _ := uni.GetTranslator("es")
	if err := es_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		repository: repo,
		engine:     engine,
		translator: trans,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// Toda la API requiere el token emitido por la aplicación anfitriona
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		// Catálogos de consulta
		r.Get("/patterns", h.GetAllPatterns)
		r.With(h.RequiredRole([]domain.Role{domain.RoleScheduler})).Post("/patterns", h.CreatePattern)
		r.Get("/guards", h.GetAllGuards)

		r.Route("/installations/{installationID}", func(r chi.Router) {
			r.Use(h.installation)
			r.Get("/posts", h.GetInstallationPosts)
			r.Get("/roster", h.GetMatrix)
			r.With(h.RequiredRole([]domain.Role{domain.RoleScheduler})).Post("/roster/generate", h.GenerateRoster)
		})

		r.Route("/posts/{postID}", func(r chi.Router) {
			r.Use(h.post)
			r.Get("/", h.GetPost)
			r.With(h.RequiredRole([]domain.Role{domain.RoleScheduler})).Put("/slots/{slotNumber}/assignment", h.UpsertSlotAssignment)
		})

		// Operaciones de mutación del cuadrante
		r.Route("/roster", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleScheduler}))
			r.Post("/series", h.PaintSeries)
			r.Post("/days", h.PaintSingleDay)
			r.Delete("/series", h.DeleteSeries)
		})
	})
}
