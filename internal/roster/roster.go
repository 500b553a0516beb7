// Package roster contiene el motor del cuadrante: las cuatro operaciones de
// mutación, la generación mensual y el constructor de la matriz. El motor se
// apoya en interfaces de almacenamiento, candados y publicación para que el
// núcleo sea comprobable sin Postgres, Redis ni RabbitMQ.
package roster

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/segurplan-dev/roster-manager/backend/internal/config"
	"github.com/segurplan-dev/roster-manager/backend/internal/domain"
)

// Store es la vista del motor sobre el almacenamiento. Los métodos Get* de
// un único registro devuelven (nil, nil) cuando no existe, salvo GetPost y
// GetPattern que devuelven domain.ErrNotFound.
type Store interface {
	GetPost(postID int64) (*domain.Post, error)
	GetActivePosts(installationID int64) ([]*domain.Post, error)
	GetPattern(code string) (*domain.Pattern, error)

	GetActiveSeries(postID int64, slotNumber int32, date time.Time) (*domain.Series, error)
	GetSeriesOverlapping(installationID int64, from, to time.Time) ([]*domain.Series, error)
	// PaintSeries trunca la serie activa anterior en startDate-1, inserta la
	// nueva serie y sustituye las celdas no manuales de la ranura dentro del
	// horizonte, todo en una única transacción. Las celdas manuales del
	// tramo se conservan tal cual.
	PaintSeries(series *domain.Series, cells []*domain.DayCell) error
	// TruncateSeriesFrom cierra la serie activa el día anterior a la fecha y
	// elimina las celdas de la ranura desde la fecha en adelante. Devuelve
	// cuántas celdas se eliminaron; sin serie que truncar no es un error.
	TruncateSeriesFrom(postID int64, slotNumber int32, date time.Time) (int64, error)

	GetDayCell(postID int64, slotNumber int32, date time.Time) (*domain.DayCell, error)
	GetDayCellsInRange(installationID int64, from, to time.Time) ([]*domain.DayCell, error)
	CountDayCellsInRange(installationID int64, from, to time.Time) (int64, error)
	UpsertDayCell(cell *domain.DayCell) error
	DeleteDayCell(postID int64, slotNumber int32, date time.Time) (bool, error)
	// RegenerateMonth vacía las celdas del rango y escribe el lote generado
	// en una única transacción: si la reescritura falla, el mes anterior
	// queda intacto.
	RegenerateMonth(installationID int64, from, to time.Time, cells []*domain.DayCell) error

	GetSlotAssignment(postID int64, slotNumber int32) (*domain.SlotAssignment, error)
	GetSlotAssignments(installationID int64) ([]*domain.SlotAssignment, error)

	GetExecutionRecords(installationID int64, from, to time.Time) ([]*domain.ExecutionRecord, error)
	GetHolidays(year int) (map[string]string, error)
	GetGuardNames(ids []int64) (map[int64]string, error)
}

// Locker serializa las mutaciones que compiten por la misma ranura. Debe
// devolver domain.ErrConflict si el candado no se adquiere a tiempo;
// ranuras distintas nunca se bloquean entre sí.
type Locker interface {
	AcquireSlot(postID int64, slotNumber int32) (release func(), err error)
}

// Publisher publica los eventos del cuadrante tras confirmar cada mutación.
type Publisher interface {
	Publish(event *domain.RosterEvent) error
}

type Engine struct {
	cfg       *config.Config
	store     Store
	locker    Locker
	publisher Publisher
}

func NewEngine(cfg *config.Config, store Store, locker Locker, publisher Publisher) *Engine {
	return &Engine{
		cfg:       cfg,
		store:     store,
		locker:    locker,
		publisher: publisher,
	}
}

// publish notifica el evento sin afectar al resultado de la mutación: la
// escritura ya está confirmada, así que un fallo de publicación solo se
// registra en el log.
func (e *Engine) publish(event *domain.RosterEvent) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(event); err != nil {
		slog.Error("no se pudo publicar el evento del cuadrante", "operation", event.Operation, "error", err)
	}
}

func (e *Engine) validateMonthYear(month, year int) error {
	if month < 1 || month > 12 {
		return domain.NewValidationError("el mes %d está fuera del rango 1..12", month)
	}
	if year < e.cfg.Roster.MinYear || year > e.cfg.Roster.MaxYear {
		return domain.NewValidationError("el año %d está fuera del rango admitido %d..%d", year, e.cfg.Roster.MinYear, e.cfg.Roster.MaxYear)
	}
	return nil
}

// truncateDate descarta la hora y la zona horaria de una fecha.
func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func slotKey(postID int64, slotNumber int32) string {
	return fmt.Sprintf("%d:%d", postID, slotNumber)
}

func cellKey(postID int64, slotNumber int32, date time.Time) string {
	return fmt.Sprintf("%d:%d:%s", postID, slotNumber, date.Format(domain.DateKey))
}
