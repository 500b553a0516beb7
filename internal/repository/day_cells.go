package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/segurplan-dev/roster-manager/backend/internal/domain"
)

func (r *Repository) GetDayCell(postID int64, slotNumber int32, date time.Time) (*domain.DayCell, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT shift_code, guard_id, manual
		FROM day_cells
		WHERE post_id = $1 AND slot_number = $2 AND date = $3
	`

	cell := &domain.DayCell{
		PostID:     postID,
		SlotNumber: slotNumber,
		Date:       date,
	}
	var guardID sql.NullInt64
	if err := r.dbpool.QueryRowContext(ctx, query, postID, slotNumber, date).Scan(&cell.ShiftCode, &guardID, &cell.Manual); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Fecha sin celda: no es un error
			return nil, nil
		}
		return nil, err
	}
	if guardID.Valid {
		cell.GuardID = &guardID.Int64
	}

	return cell, nil
}

func (r *Repository) GetDayCellsInRange(installationID int64, from, to time.Time) ([]*domain.DayCell, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT dc.post_id, dc.slot_number, dc.date, dc.shift_code, dc.guard_id, dc.manual
		FROM day_cells dc
		JOIN posts p ON p.id = dc.post_id
		WHERE p.installation_id = $1 AND dc.date >= $2 AND dc.date <= $3
		ORDER BY dc.post_id, dc.slot_number, dc.date
	`

	rows, err := r.dbpool.QueryContext(ctx, query, installationID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cells := make([]*domain.DayCell, 0)
	for rows.Next() {
		cell := &domain.DayCell{}
		var guardID sql.NullInt64
		dst := []any{
			&cell.PostID,
			&cell.SlotNumber,
			&cell.Date,
			&cell.ShiftCode,
			&guardID,
			&cell.Manual,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		if guardID.Valid {
			cell.GuardID = &guardID.Int64
		}
		cells = append(cells, cell)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return cells, nil
}

func (r *Repository) CountDayCellsInRange(installationID int64, from, to time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT COUNT(*)
		FROM day_cells dc
		JOIN posts p ON p.id = dc.post_id
		WHERE p.installation_id = $1 AND dc.date >= $2 AND dc.date <= $3
	`

	var count int64
	if err := r.dbpool.QueryRowContext(ctx, query, installationID, from, to).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *Repository) UpsertDayCell(cell *domain.DayCell) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO day_cells (post_id, slot_number, date, shift_code, guard_id, manual)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (post_id, slot_number, date)
		DO UPDATE SET shift_code = EXCLUDED.shift_code, guard_id = EXCLUDED.guard_id, manual = EXCLUDED.manual
	`

	params := []any{cell.PostID, cell.SlotNumber, cell.Date, cell.ShiftCode, cell.GuardID, cell.Manual}
	_, err := r.dbpool.ExecContext(ctx, query, params...)
	return err
}

func (r *Repository) DeleteDayCell(postID int64, slotNumber int32, date time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM day_cells
		WHERE post_id = $1 AND slot_number = $2 AND date = $3
	`

	result, err := r.dbpool.ExecContext(ctx, query, postID, slotNumber, date)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// RegenerateMonth vacía las celdas del rango y escribe el lote de la
// generación mensual en una única transacción: si la reescritura falla, el
// plan anterior del mes queda intacto.
func (r *Repository) RegenerateMonth(installationID int64, from, to time.Time, cells []*domain.DayCell) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		DELETE FROM day_cells dc
		USING posts p
		WHERE p.id = dc.post_id AND p.installation_id = $1 AND dc.date >= $2 AND dc.date <= $3
	`
	if _, err := tx.ExecContext(ctx, query, installationID, from, to); err != nil {
		return err
	}

	query = `
		INSERT INTO day_cells (post_id, slot_number, date, shift_code, guard_id, manual)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, cell := range cells {
		params := []any{cell.PostID, cell.SlotNumber, cell.Date, cell.ShiftCode, cell.GuardID, cell.Manual}
		if _, err := tx.ExecContext(ctx, query, params...); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
