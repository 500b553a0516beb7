package roster

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/segurplan-dev/roster-manager/backend/internal/cycle"
	"github.com/segurplan-dev/roster-manager/backend/internal/domain"
)

type PaintSeriesParams struct {
	PostID           int64
	SlotNumber       int32
	GuardID          int64
	PatternCode      string
	StartDate        time.Time
	StartPosition    int32
	Rotativo         bool
	RotatePostID     *int64
	RotateSlotNumber *int32
	StartShift       domain.ShiftVariant
	Actor            string
}

// PaintSeries establece la regla generativa de una ranura y materializa sus
// celdas desde la fecha de inicio hasta el final del horizonte. La serie
// activa anterior se trunca en startDate-1, de modo que el histórico previo
// se conserva bajo la definición antigua. Solo se sustituyen las celdas
// derivadas: las ediciones manuales del tramo sobreviven al repintado. La
// operación es idempotente: repetirla con los mismos argumentos reproduce
// las mismas celdas.
func (e *Engine) PaintSeries(params PaintSeriesParams) (*domain.Series, int, error) {
	post, err := e.store.GetPost(params.PostID)
	if err != nil {
		return nil, 0, err
	}
	if params.SlotNumber < 1 || params.SlotNumber > post.RequiredSlots {
		return nil, 0, domain.NewValidationError("la ranura %d no existe en el puesto %s (requiere %d)", params.SlotNumber, post.Name, post.RequiredSlots)
	}

	pattern, err := e.store.GetPattern(params.PatternCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, 0, domain.NewConfigurationError("el patrón %s no existe en el catálogo", params.PatternCode)
		}
		return nil, 0, err
	}

	series := &domain.Series{
		PostID:        params.PostID,
		SlotNumber:    params.SlotNumber,
		GuardID:       params.GuardID,
		PatternCode:   pattern.Code,
		WorkDays:      pattern.WorkDays,
		RestDays:      pattern.RestDays,
		StartDate:     truncateDate(params.StartDate),
		StartPosition: params.StartPosition,
		IsRotativo:    params.Rotativo,
	}

	if params.Rotativo {
		if err := e.resolveRotativoCounterpart(post, series, params); err != nil {
			return nil, 0, err
		}
	}

	rule := cycle.RuleFromSeries(series)
	if err := rule.Validate(); err != nil {
		return nil, 0, err
	}

	release, err := e.locker.AcquireSlot(params.PostID, params.SlotNumber)
	if err != nil {
		return nil, 0, err
	}
	defer release()

	cells, err := e.materialize(series, rule)
	if err != nil {
		return nil, 0, err
	}

	// Truncado de la serie anterior, alta de la nueva y sustitución de las
	// celdas en una sola transacción: o se aplica todo o nada.
	if err := e.store.PaintSeries(series, cells); err != nil {
		return nil, 0, err
	}

	e.publish(&domain.RosterEvent{
		ID:             uuid.New(),
		Operation:      domain.EventSeriesPainted,
		InstallationID: post.InstallationID,
		PostID:         series.PostID,
		SlotNumber:     series.SlotNumber,
		Date:           series.StartDate.Format(domain.DateKey),
		Actor:          params.Actor,
		CellsAffected:  len(cells),
		OccurredAt:     time.Now(),
	})

	return series, len(cells), nil
}

// resolveRotativoCounterpart valida la pareja explícita o localiza
// automáticamente el puesto de clasificación contraria cuyo inicio de turno
// queda más cerca del fin de turno del puesto principal.
func (e *Engine) resolveRotativoCounterpart(post *domain.Post, series *domain.Series, params PaintSeriesParams) error {
	series.StartShift = params.StartShift
	if series.StartShift == "" {
		// Por defecto el primer bloque se trabaja en el puesto principal.
		series.StartShift = domain.VariantDay
		if post.IsNight() {
			series.StartShift = domain.VariantNight
		}
	}

	if params.RotatePostID != nil {
		counterpart, err := e.store.GetPost(*params.RotatePostID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewConfigurationError("el puesto de rotación %d no existe", *params.RotatePostID)
			}
			return err
		}
		if counterpart.IsNight() == post.IsNight() {
			return domain.NewConfigurationError("el puesto de rotación %s tiene la misma clasificación día/noche que %s", counterpart.Name, post.Name)
		}

		rotateSlot := int32(1)
		if params.RotateSlotNumber != nil {
			rotateSlot = *params.RotateSlotNumber
		}
		if rotateSlot < 1 || rotateSlot > counterpart.RequiredSlots {
			return domain.NewConfigurationError("el puesto de rotación %s no tiene capacidad para la ranura %d (requiere %d)", counterpart.Name, rotateSlot, counterpart.RequiredSlots)
		}

		series.RotatePostID = &counterpart.ID
		series.RotateSlotNumber = &rotateSlot
		return nil
	}

	posts, err := e.store.GetActivePosts(post.InstallationID)
	if err != nil {
		return err
	}

	var best *domain.Post
	bestDistance := 0
	for _, candidate := range posts {
		if candidate.ID == post.ID || candidate.IsNight() == post.IsNight() || candidate.RequiredSlots < 1 {
			continue
		}
		distance := clockDistance(candidate.StartMinutes(), post.EndMinutes())
		if best == nil || distance < bestDistance {
			best = candidate
			bestDistance = distance
		}
	}
	if best == nil {
		classification := "nocturno"
		if post.IsNight() {
			classification = "diurno"
		}
		return domain.NewConfigurationError("no hay ningún puesto %s disponible para el emparejamiento rotativo de %s; cree el puesto contrario antes de reintentar", classification, post.Name)
	}

	rotateSlot := params.SlotNumber
	if rotateSlot > best.RequiredSlots {
		rotateSlot = 1
	}
	series.RotatePostID = &best.ID
	series.RotateSlotNumber = &rotateSlot
	return nil
}

// clockDistance es la distancia circular entre dos horas del día en minutos.
func clockDistance(a, b int) int {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	if wrap := 24*60 - diff; wrap < diff {
		return wrap
	}
	return diff
}

// materialize resuelve una celda por fecha desde el inicio de la serie
// hasta el final del mes visible más el futuro rodante configurado.
func (e *Engine) materialize(series *domain.Series, rule cycle.Rule) ([]*domain.DayCell, error) {
	start := series.StartDate
	endOfMonth := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1)
	horizon := endOfMonth.AddDate(0, 0, e.cfg.Roster.HorizonDays)

	var cells []*domain.DayCell
	for d := start; !d.After(horizon); d = d.AddDate(0, 0, 1) {
		state, err := cycle.Resolve(rule, d)
		if err != nil {
			return nil, err
		}

		code := domain.ShiftRest
		if state.Working {
			code = domain.ShiftWork
		}
		guardID := series.GuardID
		cells = append(cells, &domain.DayCell{
			PostID:     series.PostID,
			SlotNumber: series.SlotNumber,
			Date:       d,
			ShiftCode:  code,
			GuardID:    &guardID,
		})
	}
	return cells, nil
}

type PaintSingleDayParams struct {
	PostID     int64
	SlotNumber int32
	Date       time.Time
	ShiftCode  domain.ShiftCode
	GuardID    *int64
	Actor      string
}

// PaintSingleDay escribe exactamente una celda manual, independiente de
// cualquier serie: un marcado puntual que no establece regla recurrente ni
// altera lo que el resolutor produce para las demás fechas.
func (e *Engine) PaintSingleDay(params PaintSingleDayParams) (*domain.DayCell, error) {
	post, err := e.store.GetPost(params.PostID)
	if err != nil {
		return nil, err
	}
	if params.SlotNumber < 1 || params.SlotNumber > post.RequiredSlots {
		return nil, domain.NewValidationError("la ranura %d no existe en el puesto %s (requiere %d)", params.SlotNumber, post.Name, post.RequiredSlots)
	}
	if !domain.ValidShiftCode(params.ShiftCode) {
		return nil, domain.NewValidationError("código de turno desconocido: %s", params.ShiftCode)
	}

	guardID := params.GuardID
	if guardID == nil {
		// Sin vigilante explícito se usa el titular actual de la ranura.
		assignment, err := e.store.GetSlotAssignment(params.PostID, params.SlotNumber)
		if err != nil {
			return nil, err
		}
		if assignment != nil {
			guardID = &assignment.GuardID
		}
	}

	release, err := e.locker.AcquireSlot(params.PostID, params.SlotNumber)
	if err != nil {
		return nil, err
	}
	defer release()

	cell := &domain.DayCell{
		PostID:     params.PostID,
		SlotNumber: params.SlotNumber,
		Date:       truncateDate(params.Date),
		ShiftCode:  params.ShiftCode,
		GuardID:    guardID,
		Manual:     true,
	}
	if err := e.store.UpsertDayCell(cell); err != nil {
		return nil, err
	}

	e.publish(&domain.RosterEvent{
		ID:             uuid.New(),
		Operation:      domain.EventDayPainted,
		InstallationID: post.InstallationID,
		PostID:         cell.PostID,
		SlotNumber:     cell.SlotNumber,
		Date:           cell.Date.Format(domain.DateKey),
		Actor:          params.Actor,
		CellsAffected:  1,
		OccurredAt:     time.Now(),
	})

	return cell, nil
}
