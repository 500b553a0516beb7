package seed

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/segurplan-dev/roster-manager/backend/internal/domain"
	"github.com/segurplan-dev/roster-manager/backend/internal/repository"
	"github.com/segurplan-dev/roster-manager/backend/internal/roster"
	"github.com/segurplan-dev/roster-manager/backend/internal/utils"
)

func InsertRandomGuards(r *repository.Repository, n int) int {
	inserted := 0
	for i := 0; i < n; i++ {
		guard := utils.GenerateRandomGuard()
		if err := r.CreateGuard(guard); err != nil {
			slog.Error("no se pudo insertar el vigilante", slog.String("error", err.Error()))
			continue
		}
		inserted++
	}
	return inserted
}

func InsertRandomPosts(r *repository.Repository, installationID int64, n int) int {
	inserted := 0
	for i := 0; i < n; i++ {
		post := utils.GenerateRandomPost(installationID)
		if err := r.CreatePost(post); err != nil {
			slog.Error("no se pudo insertar el puesto", slog.String("error", err.Error()))
			continue
		}
		inserted++
	}
	return inserted
}

func InsertRandomPatterns(r *repository.Repository, n int) int {
	inserted := 0
	for i := 0; i < n; i++ {
		pattern := utils.GenerateRandomPattern()
		if err := r.CreatePattern(pattern); err != nil {
			slog.Error("no se pudo insertar el patrón", slog.String("error", err.Error()))
			continue
		}
		inserted++
	}
	return inserted
}

// PaintRandomSeries asigna a cada ranura de la instalación un vigilante al
// azar y le pinta una serie 4x4 empezando el primer día del mes actual, de
// modo que el cuadrante de demostración quede completo.
func PaintRandomSeries(engine *roster.Engine, r *repository.Repository, installationID int64) int {
	posts, err := r.GetActivePosts(installationID)
	if err != nil {
		slog.Error("no se pudieron obtener los puestos", slog.String("error", err.Error()))
		return 0
	}
	guards, err := r.GetAllGuards()
	if err != nil || len(guards) == 0 {
		slog.Error("no hay vigilantes para pintar series")
		return 0
	}

	now := time.Now()
	startDate := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	painted := 0
	for _, post := range posts {
		for slot := int32(1); slot <= post.RequiredSlots; slot++ {
			guard := guards[rand.Intn(len(guards))]

			if err := r.UpsertSlotAssignment(&domain.SlotAssignment{
				PostID:     post.ID,
				SlotNumber: slot,
				GuardID:    guard.ID,
			}); err != nil {
				slog.Error("no se pudo asignar el titular", slog.String("error", err.Error()))
				continue
			}

			_, _, err := engine.PaintSeries(roster.PaintSeriesParams{
				PostID:        post.ID,
				SlotNumber:    slot,
				GuardID:       guard.ID,
				PatternCode:   "4x4",
				StartDate:     startDate,
				StartPosition: int32(rand.Intn(8) + 1),
				Actor:         "seed",
			})
			if err != nil {
				slog.Error("no se pudo pintar la serie", slog.String("error", err.Error()))
				continue
			}
			painted++
		}
	}
	return painted
}
