package roster

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segurplan-dev/roster-manager/backend/internal/domain"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

type conflictLocker struct{}

func (conflictLocker) AcquireSlot(postID int64, slotNumber int32) (func(), error) {
	return nil, domain.ErrConflict
}

func TestPaintSeriesMaterializesCycle(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = dayPost(1, 10, 2)
	engine, publisher := newTestEngine(store)

	series, affected, err := engine.PaintSeries(PaintSeriesParams{
		PostID:        1,
		SlotNumber:    1,
		GuardID:       7,
		PatternCode:   "4x4",
		StartDate:     date(2024, time.January, 1),
		StartPosition: 1,
		Actor:         "planificador@segurplan.es",
	})
	require.NoError(t, err)
	require.NotNil(t, series)
	assert.Greater(t, affected, 0)

	// 4 de trabajo, 4 de descanso desde el 1 de enero
	expected := map[int]domain.ShiftCode{
		1: domain.ShiftWork, 2: domain.ShiftWork, 3: domain.ShiftWork, 4: domain.ShiftWork,
		5: domain.ShiftRest, 6: domain.ShiftRest, 7: domain.ShiftRest, 8: domain.ShiftRest,
		9: domain.ShiftWork,
	}
	for day, code := range expected {
		cell, err := store.GetDayCell(1, 1, date(2024, time.January, day))
		require.NoError(t, err)
		require.NotNil(t, cell, "día %d sin celda", day)
		assert.Equal(t, code, cell.ShiftCode, "día %d", day)
		require.NotNil(t, cell.GuardID)
		assert.EqualValues(t, 7, *cell.GuardID)
		assert.False(t, cell.Manual)
	}

	require.Len(t, publisher.events, 1)
	assert.Equal(t, domain.EventSeriesPainted, publisher.events[0].Operation)
	assert.Equal(t, affected, publisher.events[0].CellsAffected)
}

func TestPaintSeriesIdempotent(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = dayPost(1, 10, 1)
	engine, _ := newTestEngine(store)

	params := PaintSeriesParams{
		PostID:        1,
		SlotNumber:    1,
		GuardID:       7,
		PatternCode:   "5x2",
		StartDate:     date(2024, time.March, 4),
		StartPosition: 1,
	}
	_, first, err := engine.PaintSeries(params)
	require.NoError(t, err)

	snapshot := make(map[string]domain.ShiftCode, len(store.cells))
	for key, cell := range store.cells {
		snapshot[key] = cell.ShiftCode
	}

	_, second, err := engine.PaintSeries(params)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.Len(t, store.cells, len(snapshot))
	for key, cell := range store.cells {
		assert.Equal(t, snapshot[key], cell.ShiftCode, key)
	}
}

func TestPaintSeriesPreservesManualCells(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = dayPost(1, 10, 1)
	engine, _ := newTestEngine(store)

	params := PaintSeriesParams{
		PostID: 1, SlotNumber: 1, GuardID: 7,
		PatternCode: "4x4", StartDate: date(2024, time.January, 1), StartPosition: 1,
	}
	_, _, err := engine.PaintSeries(params)
	require.NoError(t, err)

	_, err = engine.PaintSingleDay(PaintSingleDayParams{
		PostID: 1, SlotNumber: 1,
		Date:      date(2024, time.January, 3),
		ShiftCode: domain.ShiftVacation,
	})
	require.NoError(t, err)

	// repintar la misma serie no destruye la edición manual del tramo
	_, _, err = engine.PaintSeries(params)
	require.NoError(t, err)

	cell, err := store.GetDayCell(1, 1, date(2024, time.January, 3))
	require.NoError(t, err)
	require.NotNil(t, cell)
	assert.Equal(t, domain.ShiftVacation, cell.ShiftCode)
	assert.True(t, cell.Manual)

	// las celdas derivadas del resto del tramo sí se reescriben
	cell, err = store.GetDayCell(1, 1, date(2024, time.January, 2))
	require.NoError(t, err)
	require.NotNil(t, cell)
	assert.Equal(t, domain.ShiftWork, cell.ShiftCode)
	assert.False(t, cell.Manual)
}

func TestPaintSeriesTruncatesPrevious(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = dayPost(1, 10, 1)
	engine, _ := newTestEngine(store)

	_, _, err := engine.PaintSeries(PaintSeriesParams{
		PostID: 1, SlotNumber: 1, GuardID: 7,
		PatternCode: "4x4", StartDate: date(2024, time.January, 1), StartPosition: 1,
	})
	require.NoError(t, err)

	// nueva serie a mitad de mes: el histórico anterior al 15 no se toca
	_, _, err = engine.PaintSeries(PaintSeriesParams{
		PostID: 1, SlotNumber: 1, GuardID: 9,
		PatternCode: "7x7", StartDate: date(2024, time.January, 15), StartPosition: 1,
	})
	require.NoError(t, err)

	old := store.series[0]
	require.NotNil(t, old.EndDate)
	assert.Equal(t, date(2024, time.January, 14), *old.EndDate)

	// días 1..4 siguen siendo del patrón 4x4 con el vigilante original
	for day := 1; day <= 4; day++ {
		cell, err := store.GetDayCell(1, 1, date(2024, time.January, day))
		require.NoError(t, err)
		require.NotNil(t, cell)
		assert.Equal(t, domain.ShiftWork, cell.ShiftCode)
		assert.EqualValues(t, 7, *cell.GuardID)
	}

	// del 15 al 21 manda el 7x7 nuevo
	for day := 15; day <= 21; day++ {
		cell, err := store.GetDayCell(1, 1, date(2024, time.January, day))
		require.NoError(t, err)
		require.NotNil(t, cell)
		assert.Equal(t, domain.ShiftWork, cell.ShiftCode, "día %d", day)
		assert.EqualValues(t, 9, *cell.GuardID)
	}
	cell, err := store.GetDayCell(1, 1, date(2024, time.January, 22))
	require.NoError(t, err)
	require.NotNil(t, cell)
	assert.Equal(t, domain.ShiftRest, cell.ShiftCode)
}

func TestPaintSeriesSlotOutOfRange(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = dayPost(1, 10, 2)
	engine, _ := newTestEngine(store)

	_, _, err := engine.PaintSeries(PaintSeriesParams{
		PostID: 1, SlotNumber: 3, GuardID: 7,
		PatternCode: "4x4", StartDate: date(2024, time.January, 1), StartPosition: 1,
	})
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestPaintSeriesUnknownPattern(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = dayPost(1, 10, 1)
	engine, _ := newTestEngine(store)

	_, _, err := engine.PaintSeries(PaintSeriesParams{
		PostID: 1, SlotNumber: 1, GuardID: 7,
		PatternCode: "9x9", StartDate: date(2024, time.January, 1), StartPosition: 1,
	})
	var configErr *domain.ConfigurationError
	require.ErrorAs(t, err, &configErr)
}

func TestPaintSeriesUnknownPost(t *testing.T) {
	store := newFakeStore()
	engine, _ := newTestEngine(store)

	_, _, err := engine.PaintSeries(PaintSeriesParams{
		PostID: 99, SlotNumber: 1, GuardID: 7,
		PatternCode: "4x4", StartDate: date(2024, time.January, 1), StartPosition: 1,
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPaintSeriesLockConflict(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = dayPost(1, 10, 1)
	engine := NewEngine(testConfig(), store, conflictLocker{}, nil)

	_, _, err := engine.PaintSeries(PaintSeriesParams{
		PostID: 1, SlotNumber: 1, GuardID: 7,
		PatternCode: "4x4", StartDate: date(2024, time.January, 1), StartPosition: 1,
	})
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Empty(t, store.cells)
	assert.Empty(t, store.series)
}

func TestPaintRotativoAutoMatch(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = dayPost(1, 10, 2)
	store.posts[2] = nightPost(2, 10, 2)
	engine, _ := newTestEngine(store)

	series, _, err := engine.PaintSeries(PaintSeriesParams{
		PostID: 1, SlotNumber: 2, GuardID: 7,
		PatternCode: "4x4", StartDate: date(2024, time.January, 1), StartPosition: 1,
		Rotativo: true,
	})
	require.NoError(t, err)
	require.NotNil(t, series.RotatePostID)
	assert.EqualValues(t, 2, *series.RotatePostID)
	require.NotNil(t, series.RotateSlotNumber)
	assert.EqualValues(t, 2, *series.RotateSlotNumber)
	// el primer bloque se trabaja en el puesto principal, que es diurno
	assert.Equal(t, domain.VariantDay, series.StartShift)
}

func TestPaintRotativoNoCounterpart(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = dayPost(1, 10, 1)
	engine, _ := newTestEngine(store)

	_, _, err := engine.PaintSeries(PaintSeriesParams{
		PostID: 1, SlotNumber: 1, GuardID: 7,
		PatternCode: "4x4", StartDate: date(2024, time.January, 1), StartPosition: 1,
		Rotativo: true,
	})
	var configErr *domain.ConfigurationError
	require.ErrorAs(t, err, &configErr)
	assert.Contains(t, configErr.Reason, "nocturno")
	assert.Empty(t, store.series)
}

func TestPaintRotativoExplicitSameClassification(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = dayPost(1, 10, 1)
	store.posts[2] = dayPost(2, 10, 1)
	engine, _ := newTestEngine(store)

	rotatePost := int64(2)
	_, _, err := engine.PaintSeries(PaintSeriesParams{
		PostID: 1, SlotNumber: 1, GuardID: 7,
		PatternCode: "4x4", StartDate: date(2024, time.January, 1), StartPosition: 1,
		Rotativo: true, RotatePostID: &rotatePost,
	})
	var configErr *domain.ConfigurationError
	require.ErrorAs(t, err, &configErr)
}

func TestPaintSingleDayUsesAssignmentGuard(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = dayPost(1, 10, 1)
	store.assignments[slotKey(1, 1)] = &domain.SlotAssignment{PostID: 1, SlotNumber: 1, GuardID: 42}
	engine, publisher := newTestEngine(store)

	cell, err := engine.PaintSingleDay(PaintSingleDayParams{
		PostID: 1, SlotNumber: 1,
		Date:      date(2024, time.February, 10),
		ShiftCode: domain.ShiftVacation,
	})
	require.NoError(t, err)
	assert.True(t, cell.Manual)
	require.NotNil(t, cell.GuardID)
	assert.EqualValues(t, 42, *cell.GuardID)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, domain.EventDayPainted, publisher.events[0].Operation)
}

func TestPaintSingleDayInvalidCode(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = dayPost(1, 10, 1)
	engine, _ := newTestEngine(store)

	_, err := engine.PaintSingleDay(PaintSingleDayParams{
		PostID: 1, SlotNumber: 1,
		Date:      date(2024, time.February, 10),
		ShiftCode: "SIESTA",
	})
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestDeleteFromDateForward(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = dayPost(1, 10, 1)
	engine, publisher := newTestEngine(store)

	_, _, err := engine.PaintSeries(PaintSeriesParams{
		PostID: 1, SlotNumber: 1, GuardID: 7,
		PatternCode: "4x4", StartDate: date(2024, time.January, 1), StartPosition: 1,
	})
	require.NoError(t, err)

	affected, err := engine.DeleteSeries(DeleteSeriesParams{
		PostID: 1, SlotNumber: 1,
		Date: date(2024, time.January, 15),
		Mode: DeleteFromDateForward,
	})
	require.NoError(t, err)
	assert.Greater(t, affected, 0)

	// el histórico anterior al 15 queda intacto
	for day := 1; day <= 14; day++ {
		cell, err := store.GetDayCell(1, 1, date(2024, time.January, day))
		require.NoError(t, err)
		assert.NotNil(t, cell, "día %d", day)
	}
	// desde el 15 no queda nada
	for day := 15; day <= 31; day++ {
		cell, err := store.GetDayCell(1, 1, date(2024, time.January, day))
		require.NoError(t, err)
		assert.Nil(t, cell, "día %d", day)
	}

	series := store.series[0]
	require.NotNil(t, series.EndDate)
	assert.Equal(t, date(2024, time.January, 14), *series.EndDate)

	require.Len(t, publisher.events, 2)
	assert.Equal(t, domain.EventSeriesDeleted, publisher.events[1].Operation)

	// repintar desde la misma fecha vuelve a funcionar
	_, repainted, err := engine.PaintSeries(PaintSeriesParams{
		PostID: 1, SlotNumber: 1, GuardID: 7,
		PatternCode: "7x7", StartDate: date(2024, time.January, 15), StartPosition: 1,
	})
	require.NoError(t, err)
	assert.Greater(t, repainted, 0)
	cell, err := store.GetDayCell(1, 1, date(2024, time.January, 15))
	require.NoError(t, err)
	require.NotNil(t, cell)
	assert.Equal(t, domain.ShiftWork, cell.ShiftCode)
}

func TestDeleteFromDateForwardWithoutSeries(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = dayPost(1, 10, 1)
	engine, _ := newTestEngine(store)

	affected, err := engine.DeleteSeries(DeleteSeriesParams{
		PostID: 1, SlotNumber: 1,
		Date: date(2024, time.June, 1),
		Mode: DeleteFromDateForward,
	})
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestDeleteSingleDayRederivesFromSeries(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = dayPost(1, 10, 1)
	engine, _ := newTestEngine(store)

	_, _, err := engine.PaintSeries(PaintSeriesParams{
		PostID: 1, SlotNumber: 1, GuardID: 7,
		PatternCode: "4x4", StartDate: date(2024, time.January, 1), StartPosition: 1,
	})
	require.NoError(t, err)

	// marcado manual de vacaciones sobre un día de trabajo
	_, err = engine.PaintSingleDay(PaintSingleDayParams{
		PostID: 1, SlotNumber: 1,
		Date:      date(2024, time.January, 3),
		ShiftCode: domain.ShiftVacation,
	})
	require.NoError(t, err)

	// al quitar la edición manual la celda vuelve a lo que dicte la serie
	affected, err := engine.DeleteSeries(DeleteSeriesParams{
		PostID: 1, SlotNumber: 1,
		Date: date(2024, time.January, 3),
		Mode: DeleteSingleDay,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, affected)

	cell, err := store.GetDayCell(1, 1, date(2024, time.January, 3))
	require.NoError(t, err)
	require.NotNil(t, cell)
	assert.Equal(t, domain.ShiftWork, cell.ShiftCode)
	assert.False(t, cell.Manual)
}

func TestDeleteSingleDayAsDayOff(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = dayPost(1, 10, 1)
	engine, _ := newTestEngine(store)

	_, _, err := engine.PaintSeries(PaintSeriesParams{
		PostID: 1, SlotNumber: 1, GuardID: 7,
		PatternCode: "4x4", StartDate: date(2024, time.January, 1), StartPosition: 1,
	})
	require.NoError(t, err)

	affected, err := engine.DeleteSeries(DeleteSeriesParams{
		PostID: 1, SlotNumber: 1,
		Date:   date(2024, time.January, 3),
		Mode:   DeleteSingleDay,
		DayOff: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, affected)

	// día libre explícito: la fecha queda en blanco aunque la serie siga activa
	cell, err := store.GetDayCell(1, 1, date(2024, time.January, 3))
	require.NoError(t, err)
	assert.Nil(t, cell)

	// las demás fechas de la serie no cambian
	cell, err = store.GetDayCell(1, 1, date(2024, time.January, 4))
	require.NoError(t, err)
	require.NotNil(t, cell)
	assert.Equal(t, domain.ShiftWork, cell.ShiftCode)
}

func TestDeleteSeriesUnknownMode(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = dayPost(1, 10, 1)
	engine, _ := newTestEngine(store)

	_, err := engine.DeleteSeries(DeleteSeriesParams{
		PostID: 1, SlotNumber: 1,
		Date: date(2024, time.January, 3),
		Mode: "TODO_EL_MES",
	})
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestGenerateIfMissing(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = dayPost(1, 10, 2)
	store.posts[2] = nightPost(2, 10, 1)
	store.assignments[slotKey(1, 1)] = &domain.SlotAssignment{PostID: 1, SlotNumber: 1, GuardID: 42}
	engine, publisher := newTestEngine(store)

	// enero de 2024: 31 días x 3 ranuras con todos los días de semana activos
	created, err := engine.GenerateIfMissing(10, 1, 2024, false, "planificador@segurplan.es")
	require.NoError(t, err)
	assert.Equal(t, 31*3, created)

	cell, err := store.GetDayCell(1, 1, date(2024, time.January, 20))
	require.NoError(t, err)
	require.NotNil(t, cell)
	assert.Equal(t, domain.ShiftWork, cell.ShiftCode)
	require.NotNil(t, cell.GuardID)
	assert.EqualValues(t, 42, *cell.GuardID)

	// sin titular asignado la celda queda sin vigilante
	cell, err = store.GetDayCell(2, 1, date(2024, time.January, 20))
	require.NoError(t, err)
	require.NotNil(t, cell)
	assert.Nil(t, cell.GuardID)

	// con celdas ya presentes y sin overwrite no se toca nada
	created, err = engine.GenerateIfMissing(10, 1, 2024, false, "planificador@segurplan.es")
	require.NoError(t, err)
	assert.Zero(t, created)

	// overwrite regenera el mes completo
	created, err = engine.GenerateIfMissing(10, 1, 2024, true, "planificador@segurplan.es")
	require.NoError(t, err)
	assert.Equal(t, 31*3, created)

	// la llamada intermedia no tocó nada y por tanto no publica evento
	require.Len(t, publisher.events, 2)
	for _, event := range publisher.events {
		assert.Equal(t, domain.EventGenerated, event.Operation)
	}
}

type failingRegenerateStore struct {
	*fakeStore
}

func (s *failingRegenerateStore) RegenerateMonth(installationID int64, from, to time.Time, cells []*domain.DayCell) error {
	return errors.New("conexión perdida durante la reescritura")
}

func TestGenerateOverwriteFailureKeepsMonth(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = dayPost(1, 10, 1)
	engine, _ := newTestEngine(store)

	created, err := engine.GenerateIfMissing(10, 1, 2024, false, "")
	require.NoError(t, err)
	require.Equal(t, 31, created)

	// si la regeneración falla, el plan anterior del mes queda intacto
	broken := NewEngine(testConfig(), &failingRegenerateStore{fakeStore: store}, NoopLocker{}, nil)
	_, err = broken.GenerateIfMissing(10, 1, 2024, true, "")
	require.Error(t, err)

	count, err := store.CountDayCellsInRange(10, date(2024, time.January, 1), date(2024, time.January, 31))
	require.NoError(t, err)
	assert.EqualValues(t, 31, count)
}

func TestGenerateRespectsWeekdays(t *testing.T) {
	store := newFakeStore()
	post := dayPost(1, 10, 1)
	post.Weekdays = []int32{1, 2, 3, 4, 5} // lunes a viernes
	store.posts[1] = post
	engine, _ := newTestEngine(store)

	// enero de 2024 tiene 23 días laborables
	created, err := engine.GenerateIfMissing(10, 1, 2024, false, "")
	require.NoError(t, err)
	assert.Equal(t, 23, created)

	// el sábado 6 y el domingo 7 quedan vacíos
	for _, day := range []int{6, 7} {
		cell, err := store.GetDayCell(1, 1, date(2024, time.January, day))
		require.NoError(t, err)
		assert.Nil(t, cell, "día %d", day)
	}
}

func TestGenerateWithoutPosts(t *testing.T) {
	store := newFakeStore()
	engine, _ := newTestEngine(store)

	_, err := engine.GenerateIfMissing(10, 1, 2024, false, "")
	require.True(t, errors.Is(err, domain.ErrNoPostsConfigured))
}

func TestGenerateRejectsOutOfRangeMonthYear(t *testing.T) {
	store := newFakeStore()
	store.posts[1] = dayPost(1, 10, 1)
	engine, _ := newTestEngine(store)

	var validationErr *domain.ValidationError

	_, err := engine.GenerateIfMissing(10, 13, 2024, false, "")
	require.ErrorAs(t, err, &validationErr)

	_, err = engine.GenerateIfMissing(10, 1, 1800, false, "")
	require.ErrorAs(t, err, &validationErr)

	_, err = engine.GenerateIfMissing(10, 1, 3000, false, "")
	require.ErrorAs(t, err, &validationErr)
}
