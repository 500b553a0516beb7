package roster

import (
	"log/slog"
	"time"

	"github.com/segurplan-dev/roster-manager/backend/internal/cycle"
	"github.com/segurplan-dev/roster-manager/backend/internal/domain"
)

// BuildMatrix monta el cuadrante de un mes: una fila por (puesto, ranura)
// aunque no exista ninguna celda todavía, para que los huecos de cobertura
// se vean en vez de desaparecer. Las capas se funden de forma determinista:
// celda materializada/manual, metadatos de la serie activa, titular de la
// ranura y la superposición de ejecución de solo lectura.
func (e *Engine) BuildMatrix(installationID int64, month, year int) (*domain.Matrix, error) {
	if err := e.validateMonthYear(month, year); err != nil {
		return nil, err
	}

	posts, err := e.store.GetActivePosts(installationID)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, domain.ErrNoPostsConfigured
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	daysInMonth := to.Day()

	cells, err := e.store.GetDayCellsInRange(installationID, from, to)
	if err != nil {
		return nil, err
	}
	seriesList, err := e.store.GetSeriesOverlapping(installationID, from, to)
	if err != nil {
		return nil, err
	}
	assignments, err := e.store.GetSlotAssignments(installationID)
	if err != nil {
		return nil, err
	}

	// Las capas de anotación degradan sin abortar el cuadrante completo.
	executions, err := e.store.GetExecutionRecords(installationID, from, to)
	if err != nil {
		slog.Warn("no se pudo leer la capa de ejecución, se omite", "installation", installationID, "error", err)
		executions = nil
	}
	holidays, err := e.store.GetHolidays(year)
	if err != nil {
		slog.Warn("no se pudieron leer los festivos, se omiten", "year", year, "error", err)
		holidays = map[string]string{}
	}

	cellMap := make(map[string]*domain.DayCell, len(cells))
	for _, c := range cells {
		if !domain.ValidShiftCode(c.ShiftCode) {
			// Una celda corrupta se registra y se ignora; no tumba la
			// petición entera.
			slog.Warn("celda con código de turno inválido, se ignora", "post", c.PostID, "slot", c.SlotNumber, "date", c.Date.Format(domain.DateKey), "code", c.ShiftCode)
			continue
		}
		cellMap[cellKey(c.PostID, c.SlotNumber, c.Date)] = c
	}

	seriesMap := make(map[string][]*domain.Series)
	for _, s := range seriesList {
		key := slotKey(s.PostID, s.SlotNumber)
		seriesMap[key] = append(seriesMap[key], s)
	}

	executionMap := make(map[string]domain.ExecutionState, len(executions))
	for _, rec := range executions {
		executionMap[cellKey(rec.PostID, rec.SlotNumber, rec.Date)] = rec.State
	}

	assignmentMap := make(map[string]int64, len(assignments))
	for _, a := range assignments {
		assignmentMap[slotKey(a.PostID, a.SlotNumber)] = a.GuardID
	}

	guardNames := e.lookupGuardNames(cells, seriesList, assignments)

	matrix := &domain.Matrix{
		InstallationID:  installationID,
		Month:           month,
		Year:            year,
		Rows:            make([]domain.MatrixRow, 0),
		DayTotals:       make([]int32, daysInMonth),
		Holidays:        holidays,
		NeedsGeneration: len(cells) == 0,
	}

	for _, post := range posts {
		if post.RequiredSlots < 1 || len(post.Weekdays) == 0 {
			// Puesto degenerado: cero filas, sin fallar el resto del
			// cuadrante.
			continue
		}
		matrix.Coverage.RequiredSlots += post.RequiredSlots

		for slot := int32(1); slot <= post.RequiredSlots; slot++ {
			row := e.buildRow(post, slot, from, daysInMonth, cellMap, seriesMap, executionMap, assignmentMap, guardNames)

			if row.GuardID != 0 || rowHasCells(row) {
				matrix.Coverage.AssignedSlots++
			}
			for i, cell := range row.Cells {
				if cell.ShiftCode == domain.ShiftWork || cell.ShiftCode == domain.ShiftExtra {
					matrix.DayTotals[i]++
				}
			}
			matrix.Rows = append(matrix.Rows, row)
		}
	}

	matrix.Coverage.Vacancies = matrix.Coverage.RequiredSlots - matrix.Coverage.AssignedSlots

	return matrix, nil
}

func (e *Engine) buildRow(
	post *domain.Post,
	slot int32,
	from time.Time,
	daysInMonth int,
	cellMap map[string]*domain.DayCell,
	seriesMap map[string][]*domain.Series,
	executionMap map[string]domain.ExecutionState,
	assignmentMap map[string]int64,
	guardNames map[int64]string,
) domain.MatrixRow {
	row := domain.MatrixRow{
		PostID:     post.ID,
		PostName:   post.Name,
		SlotNumber: slot,
		Cells:      make([]domain.MatrixCell, 0, daysInMonth),
	}

	slotSeries := seriesMap[slotKey(post.ID, slot)]

	// El titular de la fila es la asignación vigente; en su defecto, el
	// vigilante de la última serie que toca el mes.
	if guardID, ok := assignmentMap[slotKey(post.ID, slot)]; ok {
		row.GuardID = guardID
	} else if len(slotSeries) > 0 {
		row.GuardID = slotSeries[len(slotSeries)-1].GuardID
	}
	if row.GuardID != 0 {
		row.GuardName = guardNames[row.GuardID]
	}
	if len(slotSeries) > 0 {
		last := slotSeries[len(slotSeries)-1]
		row.PatternCode = last.PatternCode
		row.IsRotativo = last.IsRotativo
	}

	for day := 0; day < daysInMonth; day++ {
		date := from.AddDate(0, 0, day)
		cell := domain.MatrixCell{Date: date.Format(domain.DateKey)}

		if stored, ok := cellMap[cellKey(post.ID, slot, date)]; ok {
			cell.ShiftCode = stored.ShiftCode
			cell.GuardID = stored.GuardID
			cell.Manual = stored.Manual

			// En filas rotativas la variante día/noche se deriva en vivo
			// desde la serie, no desde la celda almacenada, para que la
			// visualización siga siendo correcta aunque los metadatos de la
			// serie cambien después de materializar.
			if !stored.Manual && stored.ShiftCode == domain.ShiftWork {
				if s := activeSeriesOn(slotSeries, date); s != nil && s.IsRotativo {
					if state, err := cycle.Resolve(cycle.RuleFromSeries(s), date); err == nil && state.Working {
						cell.Variant = state.Variant
					}
				}
			}
		}

		if state, ok := executionMap[cellKey(post.ID, slot, date)]; ok {
			cell.Execution = state
		}

		row.Cells = append(row.Cells, cell)
	}

	return row
}

func activeSeriesOn(series []*domain.Series, date time.Time) *domain.Series {
	for i := len(series) - 1; i >= 0; i-- {
		if series[i].ActiveOn(date) {
			return series[i]
		}
	}
	return nil
}

func rowHasCells(row domain.MatrixRow) bool {
	for _, cell := range row.Cells {
		if cell.ShiftCode != "" {
			return true
		}
	}
	return false
}

func (e *Engine) lookupGuardNames(cells []*domain.DayCell, series []*domain.Series, assignments []*domain.SlotAssignment) map[int64]string {
	seen := make(map[int64]bool)
	var ids []int64
	add := func(id int64) {
		if id != 0 && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, c := range cells {
		if c.GuardID != nil {
			add(*c.GuardID)
		}
	}
	for _, s := range series {
		add(s.GuardID)
	}
	for _, a := range assignments {
		add(a.GuardID)
	}
	if len(ids) == 0 {
		return map[int64]string{}
	}

	names, err := e.store.GetGuardNames(ids)
	if err != nil {
		slog.Warn("no se pudieron resolver los nombres de los vigilantes", "error", err)
		return map[int64]string{}
	}
	return names
}
