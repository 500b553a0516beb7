package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/segurplan-dev/roster-manager/backend/internal/domain"
)

const seriesColumns = `
	s.id,
	s.post_id,
	s.slot_number,
	s.guard_id,
	s.pattern_code,
	s.work_days,
	s.rest_days,
	s.start_date,
	s.end_date,
	s.start_position,
	s.is_rotativo,
	s.rotate_post_id,
	s.rotate_slot_number,
	s.start_shift,
	s.created_at,
	s.version
`

func scanSeries(scan func(dst ...any) error) (*domain.Series, error) {
	series := &domain.Series{}
	var endDate sql.NullTime
	var rotatePostID sql.NullInt64
	var rotateSlotNumber sql.NullInt32
	var startShift sql.NullString

	dst := []any{
		&series.ID,
		&series.PostID,
		&series.SlotNumber,
		&series.GuardID,
		&series.PatternCode,
		&series.WorkDays,
		&series.RestDays,
		&series.StartDate,
		&endDate,
		&series.StartPosition,
		&series.IsRotativo,
		&rotatePostID,
		&rotateSlotNumber,
		&startShift,
		&series.CreatedAt,
		&series.Version,
	}
	if err := scan(dst...); err != nil {
		return nil, err
	}

	if endDate.Valid {
		series.EndDate = &endDate.Time
	}
	if rotatePostID.Valid {
		series.RotatePostID = &rotatePostID.Int64
	}
	if rotateSlotNumber.Valid {
		series.RotateSlotNumber = &rotateSlotNumber.Int32
	}
	if startShift.Valid {
		series.StartShift = domain.ShiftVariant(startShift.String)
	}

	return series, nil
}

func (r *Repository) GetActiveSeries(postID int64, slotNumber int32, date time.Time) (*domain.Series, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT ` + seriesColumns + `
		FROM series s
		WHERE s.post_id = $1
			AND s.slot_number = $2
			AND s.start_date <= $3
			AND (s.end_date IS NULL OR s.end_date >= $3)
		ORDER BY s.start_date DESC
		LIMIT 1
	`

	row := r.dbpool.QueryRowContext(ctx, query, postID, slotNumber, date)
	series, err := scanSeries(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Ranura sin serie activa en esa fecha: no es un error
			return nil, nil
		}
		return nil, err
	}

	return series, nil
}

func (r *Repository) GetSeriesOverlapping(installationID int64, from, to time.Time) ([]*domain.Series, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT ` + seriesColumns + `
		FROM series s
		JOIN posts p ON p.id = s.post_id
		WHERE p.installation_id = $1
			AND s.start_date <= $3
			AND (s.end_date IS NULL OR s.end_date >= $2)
		ORDER BY s.post_id, s.slot_number, s.start_date
	`

	rows, err := r.dbpool.QueryContext(ctx, query, installationID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seriesList := make([]*domain.Series, 0)
	for rows.Next() {
		series, err := scanSeries(rows.Scan)
		if err != nil {
			return nil, err
		}
		seriesList = append(seriesList, series)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return seriesList, nil
}

// PaintSeries aplica el pintado completo en una transacción: la serie
// activa anterior se trunca en startDate-1, la nueva serie se inserta y las
// celdas no manuales de la ranura dentro del horizonte se sustituyen por
// las materializadas; las ediciones manuales se conservan. Si cualquier
// paso falla no se aplica nada.
func (r *Repository) PaintSeries(series *domain.Series, cells []*domain.DayCell) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Truncar la serie activa anterior; el histórico previo a start_date se
	// conserva bajo la definición antigua
	query := `
		UPDATE series
		SET end_date = $3::date - 1, version = version + 1
		WHERE post_id = $1
			AND slot_number = $2
			AND (end_date IS NULL OR end_date >= $3)
	`
	if _, err := tx.ExecContext(ctx, query, series.PostID, series.SlotNumber, series.StartDate); err != nil {
		return err
	}

	query = `
		INSERT INTO series (
			post_id, slot_number, guard_id, pattern_code, work_days, rest_days,
			start_date, start_position, is_rotativo, rotate_post_id,
			rotate_slot_number, start_shift
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, version
	`
	var startShift any
	if series.IsRotativo {
		startShift = string(series.StartShift)
	}
	params := []any{
		series.PostID,
		series.SlotNumber,
		series.GuardID,
		series.PatternCode,
		series.WorkDays,
		series.RestDays,
		series.StartDate,
		series.StartPosition,
		series.IsRotativo,
		series.RotatePostID,
		series.RotateSlotNumber,
		startShift,
	}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&series.ID, &series.CreatedAt, &series.Version); err != nil {
		return err
	}

	if len(cells) > 0 {
		// Se eliminan las celdas derivadas del tramo y se reescriben, de
		// modo que repetir el pintado con los mismos argumentos produce
		// exactamente las mismas celdas. Las ediciones manuales sobreviven:
		// el borrado las salta y la inserción cede ante ellas.
		first := cells[0].Date
		last := cells[len(cells)-1].Date
		query = `
			DELETE FROM day_cells
			WHERE post_id = $1 AND slot_number = $2 AND date >= $3 AND date <= $4
				AND manual = FALSE
		`
		if _, err := tx.ExecContext(ctx, query, series.PostID, series.SlotNumber, first, last); err != nil {
			return err
		}

		query = `
			INSERT INTO day_cells (post_id, slot_number, date, shift_code, guard_id, manual)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (post_id, slot_number, date) DO NOTHING
		`
		for _, cell := range cells {
			params := []any{cell.PostID, cell.SlotNumber, cell.Date, cell.ShiftCode, cell.GuardID, cell.Manual}
			if _, err := tx.ExecContext(ctx, query, params...); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// TruncateSeriesFrom cierra la serie activa el día anterior a la fecha y
// borra las celdas de la ranura desde la fecha en adelante, en una sola
// transacción. Sin serie que truncar la operación es un no-op que devuelve
// cero celdas.
func (r *Repository) TruncateSeriesFrom(postID int64, slotNumber int32, date time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE series
		SET end_date = $3::date - 1, version = version + 1
		WHERE post_id = $1
			AND slot_number = $2
			AND (end_date IS NULL OR end_date >= $3)
	`
	if _, err := tx.ExecContext(ctx, query, postID, slotNumber, date); err != nil {
		return 0, err
	}

	query = `
		DELETE FROM day_cells
		WHERE post_id = $1 AND slot_number = $2 AND date >= $3
	`
	result, err := tx.ExecContext(ctx, query, postID, slotNumber, date)
	if err != nil {
		return 0, err
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return removed, nil
}
