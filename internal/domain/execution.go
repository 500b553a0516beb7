package domain

import "time"

type ExecutionState string

const (
	ExecutionAttended  ExecutionState = "ASISTIDO"
	ExecutionExtra     ExecutionState = "TURNO_EXTRA"
	ExecutionUncovered ExecutionState = "SIN_CUBRIR"
	ExecutionGap       ExecutionState = "HUECO"
)

// ExecutionRecord es la capa de conciliación de asistencia. Es de solo
// lectura para el motor: se superpone a las celdas del cuadrante pero nunca
// modifica series ni celdas.
type ExecutionRecord struct {
	PostID     int64          `json:"postID"`
	SlotNumber int32          `json:"slotNumber"`
	Date       time.Time      `json:"date"`
	State      ExecutionState `json:"state"`
}
