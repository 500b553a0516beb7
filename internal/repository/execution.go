package repository

import (
	"context"
	"time"

	"github.com/segurplan-dev/roster-manager/backend/internal/domain"
)

// La capa de ejecución la escribe el sistema de asistencia externo; aquí
// solo se lee para superponerla al cuadrante.

func (r *Repository) GetExecutionRecords(installationID int64, from, to time.Time) ([]*domain.ExecutionRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT er.post_id, er.slot_number, er.date, er.state
		FROM execution_records er
		JOIN posts p ON p.id = er.post_id
		WHERE p.installation_id = $1 AND er.date >= $2 AND er.date <= $3
		ORDER BY er.post_id, er.slot_number, er.date
	`

	rows, err := r.dbpool.QueryContext(ctx, query, installationID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*domain.ExecutionRecord, 0)
	for rows.Next() {
		record := &domain.ExecutionRecord{}
		if err := rows.Scan(&record.PostID, &record.SlotNumber, &record.Date, &record.State); err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
