package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/segurplan-dev/roster-manager/backend/internal/domain"
)

func (r *Repository) GetAllGuards() ([]*domain.Guard, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, full_name, document_id, is_active, created_at, version
		FROM guards
		ORDER BY full_name
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	guards := make([]*domain.Guard, 0)
	for rows.Next() {
		guard := &domain.Guard{}
		dst := []any{
			&guard.ID,
			&guard.FullName,
			&guard.DocumentID,
			&guard.IsActive,
			&guard.CreatedAt,
			&guard.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		guards = append(guards, guard)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return guards, nil
}

func (r *Repository) GetGuard(guardID int64) (*domain.Guard, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT full_name, document_id, is_active, created_at, version
		FROM guards
		WHERE id = $1
	`

	guard := &domain.Guard{ID: guardID}
	dst := []any{
		&guard.FullName,
		&guard.DocumentID,
		&guard.IsActive,
		&guard.CreatedAt,
		&guard.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, guardID).Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return guard, nil
}

func (r *Repository) GetGuardNames(ids []int64) (map[int64]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, full_name
		FROM guards
		WHERE id = ANY($1)
	`

	rows, err := r.dbpool.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[int64]string, len(ids))
	for rows.Next() {
		var id int64
		var fullName string
		if err := rows.Scan(&id, &fullName); err != nil {
			return nil, err
		}
		names[id] = fullName
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return names, nil
}

func (r *Repository) CreateGuard(guard *domain.Guard) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO guards (full_name, document_id, is_active)
		VALUES ($1, $2, TRUE)
		RETURNING id, created_at, version
	`

	if err := r.dbpool.QueryRowContext(ctx, query, guard.FullName, guard.DocumentID).Scan(&guard.ID, &guard.CreatedAt, &guard.Version); err != nil {
		return err
	}

	return nil
}
