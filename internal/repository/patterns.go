package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/segurplan-dev/roster-manager/backend/internal/domain"
)

func (r *Repository) GetAllPatterns() ([]*domain.Pattern, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, code, work_days, rest_days, created_at, version
		FROM patterns
		ORDER BY code
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	patterns := make([]*domain.Pattern, 0)
	for rows.Next() {
		pattern := &domain.Pattern{}
		dst := []any{
			&pattern.ID,
			&pattern.Code,
			&pattern.WorkDays,
			&pattern.RestDays,
			&pattern.CreatedAt,
			&pattern.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		patterns = append(patterns, pattern)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Sin patrones propios se sirve el catálogo fijo por defecto
	if len(patterns) == 0 {
		return domain.DefaultPatterns(), nil
	}

	return patterns, nil
}

func (r *Repository) GetPattern(code string) (*domain.Pattern, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, work_days, rest_days, created_at, version
		FROM patterns
		WHERE code = $1
	`

	pattern := &domain.Pattern{Code: code}
	dst := []any{
		&pattern.ID,
		&pattern.WorkDays,
		&pattern.RestDays,
		&pattern.CreatedAt,
		&pattern.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, code).Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// El catálogo fijo actúa de reserva cuando no hay patrones
			// propios con ese código
			for _, fallback := range domain.DefaultPatterns() {
				if fallback.Code == code {
					return fallback, nil
				}
			}
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return pattern, nil
}

func (r *Repository) CreatePattern(pattern *domain.Pattern) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO patterns (code, work_days, rest_days)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`

	params := []any{pattern.Code, pattern.WorkDays, pattern.RestDays}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&pattern.ID, &pattern.CreatedAt, &pattern.Version); err != nil {
		return err
	}

	return nil
}
