package roster

import (
	"time"

	"github.com/google/uuid"
	"github.com/segurplan-dev/roster-manager/backend/internal/cycle"
	"github.com/segurplan-dev/roster-manager/backend/internal/domain"
)

type DeleteMode string

const (
	// DeleteFromDateForward trunca la serie activa el día anterior y vacía
	// todas las celdas desde la fecha: ningún patrón aplica en adelante
	// hasta que se vuelva a pintar.
	DeleteFromDateForward DeleteMode = "FROM_DATE_FORWARD"
	// DeleteSingleDay elimina solo la celda de la fecha; la serie queda
	// intacta.
	DeleteSingleDay DeleteMode = "SINGLE_DAY"
)

type DeleteSeriesParams struct {
	PostID     int64
	SlotNumber int32
	Date       time.Time
	Mode       DeleteMode
	// DayOff solo aplica en modo SINGLE_DAY: true deja la fecha en blanco
	// (día libre explícito); false vuelve a derivar la celda desde la serie
	// aún activa, tratando la edición manual como una anulación reversible.
	DayOff bool
	Actor  string
}

// DeleteSeries ejecuta los dos alcances de borrado. Las celdas anteriores a
// la fecha nunca se tocan en ningún modo.
func (e *Engine) DeleteSeries(params DeleteSeriesParams) (int, error) {
	post, err := e.store.GetPost(params.PostID)
	if err != nil {
		return 0, err
	}
	date := truncateDate(params.Date)

	release, err := e.locker.AcquireSlot(params.PostID, params.SlotNumber)
	if err != nil {
		return 0, err
	}
	defer release()

	switch params.Mode {
	case DeleteFromDateForward:
		// Truncar sin serie que truncar no es un error: la operación es
		// idempotente y devuelve cero celdas afectadas.
		removed, err := e.store.TruncateSeriesFrom(params.PostID, params.SlotNumber, date)
		if err != nil {
			return 0, err
		}

		e.publish(&domain.RosterEvent{
			ID:             uuid.New(),
			Operation:      domain.EventSeriesDeleted,
			InstallationID: post.InstallationID,
			PostID:         params.PostID,
			SlotNumber:     params.SlotNumber,
			Date:           date.Format(domain.DateKey),
			Actor:          params.Actor,
			CellsAffected:  int(removed),
			OccurredAt:     time.Now(),
		})
		return int(removed), nil

	case DeleteSingleDay:
		deleted, err := e.store.DeleteDayCell(params.PostID, params.SlotNumber, date)
		if err != nil {
			return 0, err
		}

		affected := 0
		if deleted {
			affected = 1
		}

		if !params.DayOff {
			// La fecha liberada vuelve a lo que dicte la serie todavía
			// activa; sin serie, queda en blanco.
			rederived, err := e.rederiveFromSeries(params.PostID, params.SlotNumber, date)
			if err != nil {
				return affected, err
			}
			if rederived {
				affected = 1
			}
		}

		e.publish(&domain.RosterEvent{
			ID:             uuid.New(),
			Operation:      domain.EventDayDeleted,
			InstallationID: post.InstallationID,
			PostID:         params.PostID,
			SlotNumber:     params.SlotNumber,
			Date:           date.Format(domain.DateKey),
			Actor:          params.Actor,
			CellsAffected:  affected,
			OccurredAt:     time.Now(),
		})
		return affected, nil

	default:
		return 0, domain.NewValidationError("modo de borrado desconocido: %s", params.Mode)
	}
}

func (e *Engine) rederiveFromSeries(postID int64, slotNumber int32, date time.Time) (bool, error) {
	series, err := e.store.GetActiveSeries(postID, slotNumber, date)
	if err != nil {
		return false, err
	}
	if series == nil {
		return false, nil
	}

	state, err := cycle.Resolve(cycle.RuleFromSeries(series), date)
	if err != nil {
		return false, err
	}

	code := domain.ShiftRest
	if state.Working {
		code = domain.ShiftWork
	}
	guardID := series.GuardID
	cell := &domain.DayCell{
		PostID:     postID,
		SlotNumber: slotNumber,
		Date:       date,
		ShiftCode:  code,
		GuardID:    &guardID,
	}
	if err := e.store.UpsertDayCell(cell); err != nil {
		return false, err
	}
	return true, nil
}
