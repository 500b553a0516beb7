package repository

import (
	"context"
	"time"

	"github.com/segurplan-dev/roster-manager/backend/internal/domain"
)

// GetHolidays devuelve los festivos del año como mapa fecha → nombre. Es
// una anotación de solo visualización para el cuadrante.
func (r *Repository) GetHolidays(year int) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT date, name
		FROM holidays
		WHERE date >= $1 AND date <= $2
	`

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	rows, err := r.dbpool.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holidays := make(map[string]string)
	for rows.Next() {
		var date time.Time
		var name string
		if err := rows.Scan(&date, &name); err != nil {
			return nil, err
		}
		holidays[date.Format(domain.DateKey)] = name
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return holidays, nil
}
