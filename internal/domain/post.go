package domain

import (
	"time"
)

// Post es un puesto operativo de una instalación. Cada puesto exige
// RequiredSlots vigilantes simultáneos; la ranura (postID, slotNumber)
// es la clave primaria de todos los datos de planificación.
type Post struct {
	ID             int64     `json:"id"`
	InstallationID int64     `json:"installationID"`
	Name           string    `json:"name"`
	ShiftStart     string    `json:"shiftStart"` // formato 15:04:05
	ShiftEnd       string    `json:"shiftEnd"`
	RequiredSlots  int32     `json:"requiredSlots"`
	Weekdays       []int32   `json:"weekdays"` // 1 = lunes ... 7 = domingo
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	Version        int32     `json:"-"`
}

// IsNight clasifica el puesto como nocturno cuando su turno comienza a las
// 18:00 o más tarde, o antes de las 06:00.
func (p *Post) IsNight() bool {
	start, err := time.Parse("15:04:05", p.ShiftStart)
	if err != nil {
		return false
	}
	hour := start.Hour()
	return hour >= 18 || hour < 6
}

// StartMinutes devuelve la hora de inicio del turno en minutos del día,
// usada para emparejar el puesto rotativo más cercano.
func (p *Post) StartMinutes() int {
	start, err := time.Parse("15:04:05", p.ShiftStart)
	if err != nil {
		return 0
	}
	return start.Hour()*60 + start.Minute()
}

// EndMinutes devuelve la hora de fin del turno en minutos del día.
func (p *Post) EndMinutes() int {
	end, err := time.Parse("15:04:05", p.ShiftEnd)
	if err != nil {
		return 0
	}
	return end.Hour()*60 + end.Minute()
}

type SlotAssignment struct {
	PostID     int64 `json:"postID"`
	SlotNumber int32 `json:"slotNumber"`
	GuardID    int64 `json:"guardID"`
}
