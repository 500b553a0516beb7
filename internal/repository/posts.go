package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/segurplan-dev/roster-manager/backend/internal/domain"
)

func (r *Repository) GetPost(postID int64) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			p.installation_id,
			p.name,
			p.shift_start,
			p.shift_end,
			p.required_slots,
			p.is_active,
			p.created_at,
			p.version,
			pw.day
		FROM posts p
		LEFT JOIN post_weekdays pw ON p.id = pw.post_id
		WHERE p.id = $1
		ORDER BY pw.day
	`

	rows, err := r.dbpool.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	post := &domain.Post{
		ID:       postID,
		Weekdays: make([]int32, 0),
	}
	found := false

	for rows.Next() {
		var row struct {
			InstallationID int64
			Name           string
			ShiftStart     string
			ShiftEnd       string
			RequiredSlots  int32
			IsActive       bool
			CreatedAt      time.Time
			Version        int32

			Day sql.NullInt32
		}

		dst := []any{
			&row.InstallationID,
			&row.Name,
			&row.ShiftStart,
			&row.ShiftEnd,
			&row.RequiredSlots,
			&row.IsActive,
			&row.CreatedAt,
			&row.Version,
			&row.Day,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if !found {
			// Primera fila del puesto: se inicializan los campos escalares
			found = true
			post.InstallationID = row.InstallationID
			post.Name = row.Name
			post.ShiftStart = row.ShiftStart
			post.ShiftEnd = row.ShiftEnd
			post.RequiredSlots = row.RequiredSlots
			post.IsActive = row.IsActive
			post.CreatedAt = row.CreatedAt
			post.Version = row.Version
		}

		// Si day es nulo, el puesto no tiene días de semana configurados
		if !row.Day.Valid {
			continue
		}
		post.Weekdays = append(post.Weekdays, row.Day.Int32)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNotFound
	}

	return post, nil
}

func (r *Repository) GetActivePosts(installationID int64) ([]*domain.Post, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			p.id,
			p.name,
			p.shift_start,
			p.shift_end,
			p.required_slots,
			p.created_at,
			p.version,
			pw.day
		FROM posts p
		LEFT JOIN post_weekdays pw ON p.id = pw.post_id
		WHERE p.installation_id = $1 AND p.is_active = TRUE
		ORDER BY p.id, pw.day
	`

	rows, err := r.dbpool.QueryContext(ctx, query, installationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	postsMap := make(map[int64]*domain.Post)
	order := make([]int64, 0)

	for rows.Next() {
		var row struct {
			ID            int64
			Name          string
			ShiftStart    string
			ShiftEnd      string
			RequiredSlots int32
			CreatedAt     time.Time
			Version       int32

			Day sql.NullInt32
		}

		dst := []any{
			&row.ID,
			&row.Name,
			&row.ShiftStart,
			&row.ShiftEnd,
			&row.RequiredSlots,
			&row.CreatedAt,
			&row.Version,
			&row.Day,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		post, exists := postsMap[row.ID]
		if !exists {
			post = &domain.Post{
				ID:             row.ID,
				InstallationID: installationID,
				Name:           row.Name,
				ShiftStart:     row.ShiftStart,
				ShiftEnd:       row.ShiftEnd,
				RequiredSlots:  row.RequiredSlots,
				IsActive:       true,
				Weekdays:       make([]int32, 0),
				CreatedAt:      row.CreatedAt,
				Version:        row.Version,
			}
			postsMap[row.ID] = post
			order = append(order, row.ID)
		}

		if !row.Day.Valid {
			continue
		}
		post.Weekdays = append(post.Weekdays, row.Day.Int32)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	posts := make([]*domain.Post, 0, len(order))
	for _, id := range order {
		posts = append(posts, postsMap[id])
	}

	return posts, nil
}

func (r *Repository) CreatePost(post *domain.Post) error {
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
		INSERT INTO posts (installation_id, name, shift_start, shift_end, required_slots, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING id, created_at, version
	`
	params := []any{post.InstallationID, post.Name, post.ShiftStart, post.ShiftEnd, post.RequiredSlots}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&post.ID, &post.CreatedAt, &post.Version); err != nil {
		return err
	}

	for _, day := range post.Weekdays {
		query = `
			INSERT INTO post_weekdays (post_id, day)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, post.ID, day); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetSlotAssignment(postID int64, slotNumber int32) (*domain.SlotAssignment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT guard_id
		FROM slot_assignments
		WHERE post_id = $1 AND slot_number = $2
	`

	assignment := &domain.SlotAssignment{
		PostID:     postID,
		SlotNumber: slotNumber,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, postID, slotNumber).Scan(&assignment.GuardID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Ranura sin titular: no es un error
			return nil, nil
		}
		return nil, err
	}

	return assignment, nil
}

func (r *Repository) GetSlotAssignments(installationID int64) ([]*domain.SlotAssignment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT sa.post_id, sa.slot_number, sa.guard_id
		FROM slot_assignments sa
		JOIN posts p ON p.id = sa.post_id
		WHERE p.installation_id = $1
		ORDER BY sa.post_id, sa.slot_number
	`

	rows, err := r.dbpool.QueryContext(ctx, query, installationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]*domain.SlotAssignment, 0)
	for rows.Next() {
		assignment := &domain.SlotAssignment{}
		if err := rows.Scan(&assignment.PostID, &assignment.SlotNumber, &assignment.GuardID); err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *Repository) UpsertSlotAssignment(assignment *domain.SlotAssignment) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO slot_assignments (post_id, slot_number, guard_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (post_id, slot_number)
		DO UPDATE SET guard_id = EXCLUDED.guard_id
	`

	_, err := r.dbpool.ExecContext(ctx, query, assignment.PostID, assignment.SlotNumber, assignment.GuardID)
	return err
}
