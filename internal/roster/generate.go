package roster

import (
	"time"

	"github.com/google/uuid"
	"github.com/segurplan-dev/roster-manager/backend/internal/domain"
)

// GenerateIfMissing materializa las celdas por defecto de un mes en el que
// todavía no se ha pintado nada: un día de trabajo por cada ranura de cada
// puesto activo en sus días de semana configurados, con el titular actual
// de la ranura. Con overwrite = true el mes se regenera por completo y se
// descartan las ediciones manuales; quien llame debe haberlo confirmado
// explícitamente con el usuario.
func (e *Engine) GenerateIfMissing(installationID int64, month, year int, overwrite bool, actor string) (int, error) {
	if err := e.validateMonthYear(month, year); err != nil {
		return 0, err
	}

	posts, err := e.store.GetActivePosts(installationID)
	if err != nil {
		return 0, err
	}
	if len(posts) == 0 {
		return 0, domain.ErrNoPostsConfigured
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	count, err := e.store.CountDayCellsInRange(installationID, from, to)
	if err != nil {
		return 0, err
	}
	if count > 0 && !overwrite {
		// Ya hay plan para el mes; sin overwrite no se toca nada.
		return 0, nil
	}

	assignments, err := e.store.GetSlotAssignments(installationID)
	if err != nil {
		return 0, err
	}
	assignmentMap := make(map[string]int64, len(assignments))
	for _, a := range assignments {
		assignmentMap[slotKey(a.PostID, a.SlotNumber)] = a.GuardID
	}

	var cells []*domain.DayCell
	for _, post := range posts {
		// Un puesto sin ranuras o sin días de semana configurados no aporta
		// celdas, pero tampoco interrumpe la generación del resto.
		if post.RequiredSlots < 1 || len(post.Weekdays) == 0 {
			continue
		}

		weekdays := make(map[int32]bool, len(post.Weekdays))
		for _, d := range post.Weekdays {
			weekdays[d] = true
		}

		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			if !weekdays[isoWeekday(d)] {
				continue
			}
			for slot := int32(1); slot <= post.RequiredSlots; slot++ {
				cell := &domain.DayCell{
					PostID:     post.ID,
					SlotNumber: slot,
					Date:       d,
					ShiftCode:  domain.ShiftWork,
				}
				if guardID, ok := assignmentMap[slotKey(post.ID, slot)]; ok {
					g := guardID
					cell.GuardID = &g
				}
				cells = append(cells, cell)
			}
		}
	}

	// Vaciado y reescritura del mes en una sola transacción: un fallo a
	// mitad de la materialización no deja el plan anterior a medias.
	if err := e.store.RegenerateMonth(installationID, from, to, cells); err != nil {
		return 0, err
	}

	e.publish(&domain.RosterEvent{
		ID:             uuid.New(),
		Operation:      domain.EventGenerated,
		InstallationID: installationID,
		Date:           from.Format(domain.DateKey),
		Actor:          actor,
		CellsAffected:  len(cells),
		OccurredAt:     time.Now(),
	})

	return len(cells), nil
}

// isoWeekday devuelve el día de la semana con lunes = 1 y domingo = 7.
func isoWeekday(t time.Time) int32 {
	w := int32(t.Weekday())
	if w == 0 {
		return 7
	}
	return w
}
