package roster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segurplan-dev/roster-manager/backend/internal/domain"
)

func findRow(t *testing.T, matrix *domain.Matrix, postID int64, slot int32) *domain.MatrixRow {
	t.Helper()
	for i := range matrix.Rows {
		if matrix.Rows[i].PostID == postID && matrix.Rows[i].SlotNumber == slot {
			return &matrix.Rows[i]
		}
	}
	t.Fatalf("no hay fila para el puesto %d ranura %d", postID, slot)
	return nil
}

func TestBuildMatrixVirtualRows(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = dayPost(1, 10, 2)
	store.posts[2] = nightPost(2, 10, 3)
	engine, _ := newTestEngine(store)

	matrix, err := engine.BuildMatrix(10, 1, 2024)
	require.NoError(t, err)

	// una fila por ranura aunque no haya ninguna celda pintada
	require.Len(t, matrix.Rows, 5)
	assert.True(t, matrix.NeedsGeneration)
	assert.Len(t, matrix.DayTotals, 31)

	for _, row := range matrix.Rows {
		require.Len(t, row.Cells, 31)
		for _, cell := range row.Cells {
			assert.Empty(t, cell.ShiftCode)
		}
	}
	for _, total := range matrix.DayTotals {
		assert.Zero(t, total)
	}
}

func TestBuildMatrixCoverage(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = dayPost(1, 10, 2)
	store.posts[2] = nightPost(2, 10, 3)
	engine, _ := newTestEngine(store)

	// 4 de las 5 ranuras pintadas: la quinta queda vacante
	painted := []struct {
		postID int64
		slot   int32
		guard  int64
	}{
		{1, 1, 41}, {1, 2, 42}, {2, 1, 43}, {2, 2, 44},
	}
	for _, p := range painted {
		_, _, err := engine.PaintSeries(PaintSeriesParams{
			PostID: p.postID, SlotNumber: p.slot, GuardID: p.guard,
			PatternCode: "4x4", StartDate: date(2024, time.January, 1), StartPosition: 1,
		})
		require.NoError(t, err)
	}

	matrix, err := engine.BuildMatrix(10, 1, 2024)
	require.NoError(t, err)

	assert.EqualValues(t, 5, matrix.Coverage.RequiredSlots)
	assert.EqualValues(t, 4, matrix.Coverage.AssignedSlots)
	assert.EqualValues(t, 1, matrix.Coverage.Vacancies)
	assert.False(t, matrix.NeedsGeneration)

	// la ranura vacante sigue presente como fila vacía
	empty := findRow(t, matrix, 2, 3)
	assert.Zero(t, empty.GuardID)
	for _, cell := range empty.Cells {
		assert.Empty(t, cell.ShiftCode)
	}

	// el 1 de enero trabajan las cuatro ranuras pintadas (posición 1 del 4x4)
	assert.EqualValues(t, 4, matrix.DayTotals[0])
	// el 5 de enero todas descansan
	assert.Zero(t, matrix.DayTotals[4])
}

func TestBuildMatrixRowMetadata(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = dayPost(1, 10, 1)
	store.guards[7] = "Carmen Ruiz Delgado"
	engine, _ := newTestEngine(store)

	_, _, err := engine.PaintSeries(PaintSeriesParams{
		PostID: 1, SlotNumber: 1, GuardID: 7,
		PatternCode: "5x2", StartDate: date(2024, time.January, 1), StartPosition: 1,
	})
	require.NoError(t, err)

	matrix, err := engine.BuildMatrix(10, 1, 2024)
	require.NoError(t, err)

	row := findRow(t, matrix, 1, 1)
	assert.EqualValues(t, 7, row.GuardID)
	assert.Equal(t, "Carmen Ruiz Delgado", row.GuardName)
	assert.Equal(t, "5x2", row.PatternCode)
	assert.False(t, row.IsRotativo)
}

func TestBuildMatrixWithoutPosts(t *testing.T) {
	store := newFakeStore()
	engine, _ := newTestEngine(store)

	_, err := engine.BuildMatrix(10, 1, 2024)
	require.ErrorIs(t, err, domain.ErrNoPostsConfigured)
}

func TestBuildMatrixSkipsDegeneratePosts(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = dayPost(1, 10, 2)
	noSlots := dayPost(2, 10, 0)
	store.posts[2] = noSlots
	noWeekdays := dayPost(3, 10, 1)
	noWeekdays.Weekdays = nil
	store.posts[3] = noWeekdays
	engine, _ := newTestEngine(store)

	matrix, err := engine.BuildMatrix(10, 1, 2024)
	require.NoError(t, err)

	// los puestos degenerados no aportan filas ni cuentan como cobertura exigida
	require.Len(t, matrix.Rows, 2)
	assert.EqualValues(t, 2, matrix.Coverage.RequiredSlots)
	for _, row := range matrix.Rows {
		assert.EqualValues(t, 1, row.PostID)
	}
}

func TestBuildMatrixRotativoVariant(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = dayPost(1, 10, 1)
	store.posts[2] = nightPost(2, 10, 1)
	engine, _ := newTestEngine(store)

	_, _, err := engine.PaintSeries(PaintSeriesParams{
		PostID: 1, SlotNumber: 1, GuardID: 7,
		PatternCode: "4x4", StartDate: date(2024, time.January, 1), StartPosition: 1,
		Rotativo: true,
	})
	require.NoError(t, err)

	matrix, err := engine.BuildMatrix(10, 1, 2024)
	require.NoError(t, err)

	row := findRow(t, matrix, 1, 1)
	assert.True(t, row.IsRotativo)

	// primer bloque de trabajo (días 1..4) en el puesto principal diurno
	for day := 0; day < 4; day++ {
		cell := row.Cells[day]
		require.Equal(t, domain.ShiftWork, cell.ShiftCode, "día %d", day+1)
		assert.Equal(t, domain.VariantDay, cell.Variant, "día %d", day+1)
	}
	// descanso intermedio sin variante
	for day := 4; day < 8; day++ {
		assert.Equal(t, domain.ShiftRest, row.Cells[day].ShiftCode)
		assert.Empty(t, row.Cells[day].Variant)
	}
	// segundo bloque (días 9..12) en la pareja nocturna
	for day := 8; day < 12; day++ {
		cell := row.Cells[day]
		require.Equal(t, domain.ShiftWork, cell.ShiftCode, "día %d", day+1)
		assert.Equal(t, domain.VariantNight, cell.Variant, "día %d", day+1)
	}
	// el segundo ciclo doble vuelve a empezar de día (días 17..20)
	for day := 16; day < 20; day++ {
		assert.Equal(t, domain.VariantDay, row.Cells[day].Variant, "día %d", day+1)
	}
}

func TestBuildMatrixManualCellHasNoLiveVariant(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = dayPost(1, 10, 1)
	store.posts[2] = nightPost(2, 10, 1)
	engine, _ := newTestEngine(store)

	_, _, err := engine.PaintSeries(PaintSeriesParams{
		PostID: 1, SlotNumber: 1, GuardID: 7,
		PatternCode: "4x4", StartDate: date(2024, time.January, 1), StartPosition: 1,
		Rotativo: true,
	})
	require.NoError(t, err)

	_, err = engine.PaintSingleDay(PaintSingleDayParams{
		PostID: 1, SlotNumber: 1,
		Date:      date(2024, time.January, 2),
		ShiftCode: domain.ShiftExtra,
	})
	require.NoError(t, err)

	matrix, err := engine.BuildMatrix(10, 1, 2024)
	require.NoError(t, err)

	cell := findRow(t, matrix, 1, 1).Cells[1]
	assert.True(t, cell.Manual)
	assert.Equal(t, domain.ShiftExtra, cell.ShiftCode)
	assert.Empty(t, cell.Variant)
}

func TestBuildMatrixExecutionOverlay(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = dayPost(1, 10, 1)
	engine, _ := newTestEngine(store)

	_, _, err := engine.PaintSeries(PaintSeriesParams{
		PostID: 1, SlotNumber: 1, GuardID: 7,
		PatternCode: "4x4", StartDate: date(2024, time.January, 1), StartPosition: 1,
	})
	require.NoError(t, err)

	store.executions = append(store.executions,
		&domain.ExecutionRecord{PostID: 1, SlotNumber: 1, Date: date(2024, time.January, 1), State: domain.ExecutionAttended},
		&domain.ExecutionRecord{PostID: 1, SlotNumber: 1, Date: date(2024, time.January, 2), State: domain.ExecutionUncovered},
	)

	matrix, err := engine.BuildMatrix(10, 1, 2024)
	require.NoError(t, err)

	row := findRow(t, matrix, 1, 1)
	assert.Equal(t, domain.ExecutionAttended, row.Cells[0].Execution)
	assert.Equal(t, domain.ExecutionUncovered, row.Cells[1].Execution)
	assert.Empty(t, row.Cells[2].Execution)

	// la superposición nunca altera la celda planificada
	assert.Equal(t, domain.ShiftWork, row.Cells[1].ShiftCode)
}

func TestBuildMatrixIgnoresCorruptCells(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = dayPost(1, 10, 1)
	engine, _ := newTestEngine(store)

	require.NoError(t, store.UpsertDayCell(&domain.DayCell{
		PostID: 1, SlotNumber: 1,
		Date:      date(2024, time.January, 5),
		ShiftCode: "???",
	}))
	require.NoError(t, store.UpsertDayCell(&domain.DayCell{
		PostID: 1, SlotNumber: 1,
		Date:      date(2024, time.January, 6),
		ShiftCode: domain.ShiftWork,
	}))

	matrix, err := engine.BuildMatrix(10, 1, 2024)
	require.NoError(t, err)

	row := findRow(t, matrix, 1, 1)
	assert.Empty(t, row.Cells[4].ShiftCode)
	assert.Equal(t, domain.ShiftWork, row.Cells[5].ShiftCode)
}

func TestBuildMatrixHolidays(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = dayPost(1, 10, 1)
	store.holidays["2024-01-06"] = "Epifanía del Señor"
	engine, _ := newTestEngine(store)

	matrix, err := engine.BuildMatrix(10, 1, 2024)
	require.NoError(t, err)
	assert.Equal(t, "Epifanía del Señor", matrix.Holidays["2024-01-06"])
}
