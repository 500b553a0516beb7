package domain

// DateKey es el formato de las claves de fecha del cuadrante (AAAA-MM-DD).
const DateKey = "2006-01-02"

// MatrixCell es una celda del cuadrante tal y como se entrega al
// renderizado: el código de turno resuelto, la variante día/noche (solo en
// filas rotativas) y la insignia de ejecución superpuesta.
type MatrixCell struct {
	Date      string         `json:"date"`
	ShiftCode ShiftCode      `json:"shiftCode,omitempty"`
	Variant   ShiftVariant   `json:"variant,omitempty"`
	GuardID   *int64         `json:"guardID,omitempty"`
	Manual    bool           `json:"manual,omitempty"`
	Execution ExecutionState `json:"execution,omitempty"`
}

type MatrixRow struct {
	PostID      int64        `json:"postID"`
	PostName    string       `json:"postName"`
	SlotNumber  int32        `json:"slotNumber"`
	GuardID     int64        `json:"guardID,omitempty"`
	GuardName   string       `json:"guardName,omitempty"`
	PatternCode string       `json:"patternCode,omitempty"`
	IsRotativo  bool         `json:"isRotativo"`
	Cells       []MatrixCell `json:"cells"`
}

type CoverageSummary struct {
	AssignedSlots int32 `json:"assignedSlots"`
	RequiredSlots int32 `json:"requiredSlots"`
	Vacancies     int32 `json:"vacancies"`
}

type Matrix struct {
	InstallationID int64             `json:"installationID"`
	Month          int               `json:"month"`
	Year           int               `json:"year"`
	Rows           []MatrixRow       `json:"rows"`
	DayTotals      []int32           `json:"dayTotals"` // vigilantes trabajando por día del mes
	Holidays       map[string]string `json:"holidays"`  // clave de fecha → nombre del festivo
	Coverage       CoverageSummary   `json:"coverage"`
	// NeedsGeneration distingue "hay puestos pero nada pintado" (candidato a
	// generación automática) de una instalación sin puestos, que es error.
	NeedsGeneration bool `json:"needsGeneration"`
}
