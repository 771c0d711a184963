package items

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/mymind/internal/common"
	"github.com/dmitrijs2005/mymind/internal/dbx"
	"github.com/dmitrijs2005/mymind/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FetchAll(ctx context.Context, userID string) ([]models.Item, error) {
	query := `
		SELECT id, user_id, url, title, thumbnail, platform, category, tags,
		       created_at, deleted_at, reviewed_at
		FROM items
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Item, 0)
	for rows.Next() {
		var (
			it         models.Item
			tags       []byte
			deletedAt  sql.NullTime
			reviewedAt sql.NullTime
		)
		if err := rows.Scan(&it.ID, &it.UserID, &it.URL, &it.Title, &it.Thumbnail,
			&it.Platform, &it.Category, &tags, &it.CreatedAt, &deletedAt, &reviewedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if len(tags) > 0 {
			if err := json.Unmarshal(tags, &it.Tags); err != nil {
				return nil, fmt.Errorf("decode tags of %s: %w", it.ID, err)
			}
		}
		if deletedAt.Valid {
			t := deletedAt.Time
			it.DeletedAt = &t
		}
		if reviewedAt.Valid {
			t := reviewedAt.Time
			it.ReviewedAt = &t
		}
		result = append(result, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, item *models.Item) (string, error) {
	tags, err := encodeTags(item.Tags)
	if err != nil {
		return "", err
	}
	query := `
		INSERT INTO items (id, user_id, url, title, thumbnail, platform, category, tags,
		                   created_at, deleted_at, reviewed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		WHERE items.user_id = EXCLUDED.user_id
		RETURNING id
	`
	var id string
	err = r.db.QueryRowContext(ctx, query,
		item.ID, item.UserID, item.URL, item.Title, item.Thumbnail, item.Platform,
		item.Category, tags, item.CreatedAt, item.DeletedAt, item.ReviewedAt,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: item %s", common.ErrorAlreadyExists, item.ID)
	}
	if err != nil {
		return "", fmt.Errorf("insert item: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) Update(ctx context.Context, userID, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return fmt.Errorf("%w: nothing to update", common.ErrorValidation)
	}

	// sorted for a stable statement text
	names := make([]string, 0, len(fields))
	for name := range fields {
		if !UpdatableColumns[name] {
			return fmt.Errorf("%w: unknown column %q", common.ErrorValidation, name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	sets := make([]string, 0, len(names))
	args := make([]any, 0, len(names)+2)
	for i, name := range names {
		v := fields[name]
		if name == "tags" {
			tags, _ := v.([]string)
			enc, err := encodeTags(tags)
			if err != nil {
				return err
			}
			v = enc
		}
		sets = append(sets, name+" = $"+strconv.Itoa(i+1))
		args = append(args, v)
	}
	args = append(args, userID, id)

	query := fmt.Sprintf(`UPDATE items SET %s WHERE user_id = $%d AND id = $%d`,
		strings.Join(sets, ", "), len(names)+1, len(names)+2)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectRows(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectRows(res)
}

func (r *PostgresRepository) DeleteMany(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}
	query := `DELETE FROM items WHERE user_id = $1 AND id IN (` + dbx.Placeholders(2, len(ids)) + `)`

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

func expectRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}
