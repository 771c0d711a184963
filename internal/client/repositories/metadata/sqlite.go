package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mymind/internal/dbx"
)

const (
	keyUserID   = "user_id"
	keyUsername = "username"
	keySalt     = "salt"
	keyVerifier = "verifier"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func get(ctx context.Context, db dbx.DBTX, key string) ([]byte, error) {
	var value []byte
	err := db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func set(ctx context.Context, db dbx.DBTX, key string, value []byte) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set metadata[%s]: %w", key, err)
	}
	return nil
}

// Get returns (nil, nil) when the key is absent.
func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	return get(ctx, r.db, key)
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	return set(ctx, r.db, key, value)
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM metadata`); err != nil {
		return fmt.Errorf("clear metadata: %w", err)
	}
	return nil
}

// SaveCredentials replaces the cached credentials atomically.
func (r *SQLiteRepository) SaveCredentials(ctx context.Context, c Credentials) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		pairs := []struct {
			key   string
			value []byte
		}{
			{keyUserID, []byte(c.UserID)},
			{keyUsername, []byte(c.Username)},
			{keySalt, c.Salt},
			{keyVerifier, c.Verifier},
		}
		for _, p := range pairs {
			if err := set(ctx, tx, p.key, p.value); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadCredentials returns ErrNoCredentials unless every field is cached.
func (r *SQLiteRepository) LoadCredentials(ctx context.Context) (*Credentials, error) {
	values := make(map[string][]byte, 4)
	for _, key := range []string{keyUserID, keyUsername, keySalt, keyVerifier} {
		v, err := get(ctx, r.db, key)
		if err != nil {
			return nil, err
		}
		if len(v) == 0 {
			return nil, ErrNoCredentials
		}
		values[key] = v
	}
	return &Credentials{
		UserID:   string(values[keyUserID]),
		Username: string(values[keyUsername]),
		Salt:     values[keySalt],
		Verifier: values[keyVerifier],
	}, nil
}
