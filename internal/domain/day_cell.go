package domain

import "time"

type ShiftCode string

const (
	ShiftWork       ShiftCode = "TRABAJO"
	ShiftRest       ShiftCode = "DESCANSO"
	ShiftVacation   ShiftCode = "VACACIONES"
	ShiftLeave      ShiftCode = "BAJA"
	ShiftPermission ShiftCode = "PERMISO"
	ShiftExtra      ShiftCode = "TURNO_EXTRA"
)

// ValidShiftCode comprueba que el código pertenezca al conjunto cerrado.
func ValidShiftCode(code ShiftCode) bool {
	switch code {
	case ShiftWork, ShiftRest, ShiftVacation, ShiftLeave, ShiftPermission, ShiftExtra:
		return true
	}
	return false
}

// DayCell es el estado resuelto de una ranura en una fecha. Las celdas las
// materializa el pintado de series (Manual = false) o una edición puntual
// de un solo día (Manual = true); una celda puede existir sin serie activa
// y una serie puede tener fechas sin celda.
type DayCell struct {
	PostID     int64     `json:"postID"`
	SlotNumber int32     `json:"slotNumber"`
	Date       time.Time `json:"date"`
	ShiftCode  ShiftCode `json:"shiftCode"`
	GuardID    *int64    `json:"guardID"`
	Manual     bool      `json:"manual"`
}
