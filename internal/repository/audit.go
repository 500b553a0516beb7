package repository

import (
	"context"
	"time"

	"github.com/segurplan-dev/roster-manager/backend/internal/domain"
)

// InsertAuditEntry la usa el worker de eventos para dejar constancia de
// cada mutación del cuadrante consumida de la cola.
func (r *Repository) InsertAuditEntry(entry *domain.AuditEntry) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO audit_entries (event_id, operation, post_id, slot_number, date, actor, payload)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
		ON CONFLICT (event_id) DO NOTHING
	`

	params := []any{
		entry.EventID,
		entry.Operation,
		entry.PostID,
		entry.SlotNumber,
		entry.Date,
		entry.Actor,
		entry.Payload,
	}
	if _, err := r.dbpool.ExecContext(ctx, query, params...); err != nil {
		return err
	}

	entry.RecordedAt = time.Now()
	return nil
}
