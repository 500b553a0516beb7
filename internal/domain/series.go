package domain

import "time"

type ShiftVariant string

const (
	VariantDay   ShiftVariant = "DIA"
	VariantNight ShiftVariant = "NOCHE"
)

// Opposite devuelve la variante contraria (día ↔ noche).
func (v ShiftVariant) Opposite() ShiftVariant {
	if v == VariantDay {
		return VariantNight
	}
	return VariantDay
}

// Series es la regla generativa de una ranura: a partir de StartDate el
// vigilante sigue el patrón indicado. Como máximo hay una serie activa por
// ranura en cualquier fecha; crear una nueva trunca la anterior en
// StartDate-1 en lugar de borrar el histórico.
type Series struct {
	ID            int64      `json:"id"`
	PostID        int64      `json:"postID"`
	SlotNumber    int32      `json:"slotNumber"`
	GuardID       int64      `json:"guardID"`
	PatternCode   string     `json:"patternCode"`
	WorkDays      int32      `json:"workDays"`
	RestDays      int32      `json:"restDays"`
	StartDate     time.Time  `json:"startDate"`
	EndDate       *time.Time `json:"endDate"` // nil = abierta hacia el futuro
	StartPosition int32      `json:"startPosition"`
	IsRotativo    bool       `json:"isRotativo"`
	// Solo para series rotativas: puesto y ranura de la pareja con
	// clasificación día/noche opuesta, y variante del primer bloque.
	RotatePostID     *int64       `json:"rotatePostID,omitempty"`
	RotateSlotNumber *int32       `json:"rotateSlotNumber,omitempty"`
	StartShift       ShiftVariant `json:"startShift,omitempty"`
	CreatedAt        time.Time    `json:"createdAt"`
	Version          int32        `json:"-"`
}

// ActiveOn indica si la serie cubre la fecha dada.
func (s *Series) ActiveOn(date time.Time) bool {
	if date.Before(s.StartDate) {
		return false
	}
	if s.EndDate != nil && date.After(*s.EndDate) {
		return false
	}
	return true
}
