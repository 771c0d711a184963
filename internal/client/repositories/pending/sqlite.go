package pending

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mymind/internal/client/models"
	"github.com/dmitrijs2005/mymind/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Put records w, replacing any earlier entry for the same id.
func (r *SQLiteRepository) Put(ctx context.Context, w models.PendingWrite) error {
	var record []byte
	if w.Item != nil {
		b, err := json.Marshal(w.Item)
		if err != nil {
			return fmt.Errorf("encode pending %s: %w", w.ID, err)
		}
		record = b
	}
	if w.QueuedAt.IsZero() {
		w.QueuedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pending_writes (id, owner, op, record, queued_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner = excluded.owner,
			op = excluded.op,
			record = excluded.record,
			queued_at = excluded.queued_at
	`, w.ID, w.Owner, string(w.Op), record, w.QueuedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("put pending %s: %w", w.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pending_writes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete pending %s: %w", id, err)
	}
	return nil
}

// List returns the owner's journal, oldest first.
func (r *SQLiteRepository) List(ctx context.Context, owner string) ([]models.PendingWrite, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner, op, record, queued_at FROM pending_writes
		WHERE owner = ?
		ORDER BY queued_at, id
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	defer rows.Close()

	out := make([]models.PendingWrite, 0)
	for rows.Next() {
		var (
			w      models.PendingWrite
			op     string
			record []byte
			queued int64
		)
		if err := rows.Scan(&w.ID, &w.Owner, &op, &record, &queued); err != nil {
			return nil, fmt.Errorf("scan pending: %w", err)
		}
		w.Op = models.PendingOp(op)
		w.QueuedAt = time.Unix(0, queued)
		if len(record) > 0 {
			var item models.Item
			if err := json.Unmarshal(record, &item); err != nil {
				return nil, fmt.Errorf("decode pending %s: %w", w.ID, err)
			}
			w.Item = &item
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context, owner string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pending_writes WHERE owner = ?`, owner); err != nil {
		return fmt.Errorf("clear pending: %w", err)
	}
	return nil
}
