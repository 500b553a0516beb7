package domain

import "time"

// Pattern es un ciclo nominal de trabajo/descanso, p. ej. 4x4 = 4 días de
// trabajo seguidos de 4 de descanso.
type Pattern struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	WorkDays  int32     `json:"workDays"`
	RestDays  int32     `json:"restDays"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}

func (p *Pattern) CycleLength() int32 {
	return p.WorkDays + p.RestDays
}

// DefaultPatterns es el catálogo fijo que se usa cuando la instalación no
// tiene patrones propios configurados.
func DefaultPatterns() []*Pattern {
	return []*Pattern{
		{Code: "4x4", WorkDays: 4, RestDays: 4},
		{Code: "5x2", WorkDays: 5, RestDays: 2},
		{Code: "7x7", WorkDays: 7, RestDays: 7},
		{Code: "6x1", WorkDays: 6, RestDays: 1},
		{Code: "2x2", WorkDays: 2, RestDays: 2},
		{Code: "2x5", WorkDays: 2, RestDays: 5},
	}
}
