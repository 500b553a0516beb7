// Package cycle implementa la aritmética modular de los ciclos de
// trabajo/descanso. Es puro y sin estado: seguro para cualquier grado de
// paralelismo y total sobre cualquier fecha, pasada o futura.
package cycle

import (
	"time"

	"github.com/segurplan-dev/roster-manager/backend/internal/domain"
)

// Rule contiene lo mínimo de una serie que necesita el resolutor.
type Rule struct {
	WorkDays      int32
	RestDays      int32
	StartDate     time.Time
	StartPosition int32 // 1..longitud del ciclo; permite empezar a mitad de bloque
	Rotativo      bool
	StartShift    domain.ShiftVariant // obligatorio cuando Rotativo
}

// State es el resultado de resolver una fecha: descanso, o trabajo con su
// variante (NONE en series no rotativas).
type State struct {
	Working bool
	Variant domain.ShiftVariant
}

func RuleFromSeries(s *domain.Series) Rule {
	return Rule{
		WorkDays:      s.WorkDays,
		RestDays:      s.RestDays,
		StartDate:     s.StartDate,
		StartPosition: s.StartPosition,
		Rotativo:      s.IsRotativo,
		StartShift:    s.StartShift,
	}
}

// Validate rechaza las configuraciones degeneradas antes de resolver nada.
// Una posición de inicio fuera de rango se rechaza, no se recorta.
func (r Rule) Validate() error {
	cycleLength := r.WorkDays + r.RestDays
	if cycleLength < 1 {
		return domain.NewConfigurationError("la longitud del ciclo debe ser al menos 1 (trabajo %d + descanso %d)", r.WorkDays, r.RestDays)
	}
	if r.WorkDays < 1 {
		return domain.NewConfigurationError("el patrón debe tener al menos 1 día de trabajo")
	}
	if r.RestDays < 0 {
		return domain.NewConfigurationError("los días de descanso no pueden ser negativos")
	}
	if r.StartPosition < 1 || r.StartPosition > cycleLength {
		return domain.NewConfigurationError("la posición de inicio %d está fuera del rango 1..%d", r.StartPosition, cycleLength)
	}
	if r.Rotativo && r.StartShift != domain.VariantDay && r.StartShift != domain.VariantNight {
		return domain.NewConfigurationError("una serie rotativa requiere variante de inicio día o noche")
	}
	return nil
}

// Resolve calcula el estado de la regla en la fecha dada. Nunca falla para
// fechas válidas: las fechas anteriores al inicio se resuelven con el mismo
// módulo normalizado (daysDiff negativo incluido).
func Resolve(r Rule, date time.Time) (State, error) {
	if err := r.Validate(); err != nil {
		return State{}, err
	}

	cycleLength := int(r.WorkDays + r.RestDays)
	daysDiff := DaysBetween(r.StartDate, date)
	offset := daysDiff + int(r.StartPosition) - 1

	if !r.Rotativo {
		position := ((offset % cycleLength) + cycleLength) % cycleLength
		if position < int(r.WorkDays) {
			return State{Working: true}, nil
		}
		return State{}, nil
	}

	// Modo rotativo: mismo módulo pero sobre el ciclo doblado. La primera
	// mitad usa la variante de inicio y la segunda la contraria, de modo que
	// el vigilante alterna de puesto físico cada bloque de trabajo completo.
	doubleLength := 2 * cycleLength
	doublePosition := ((offset % doubleLength) + doubleLength) % doubleLength

	firstCycle := doublePosition < cycleLength
	positionInCycle := doublePosition
	if !firstCycle {
		positionInCycle = doublePosition - cycleLength
	}

	if positionInCycle >= int(r.WorkDays) {
		return State{}, nil
	}

	variant := r.StartShift
	if !firstCycle {
		variant = variant.Opposite()
	}
	return State{Working: true, Variant: variant}, nil
}

// DaysBetween devuelve los días completos entre dos fechas ignorando la
// hora y la zona horaria; negativo cuando to es anterior a from.
func DaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
