package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresStore keeps every key in the kv_store table as JSONB.
type PostgresStore struct {
	db *sqlx.DB
}

type kvRow struct {
	Key   string `db:"key"`
	Value []byte `db:"value"`
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM kv_store WHERE key = $1`

	var value []byte
	err := s.db.GetContext(ctx, &value, query, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("kv get %s: %w", key, err)
	}

	return value, nil
}

func (s *PostgresStore) MGet(ctx context.Context, keys []string) ([][]byte, error) {
	if len(keys) == 0 {
		return [][]byte{}, nil
	}

	query := `SELECT key, value FROM kv_store WHERE key = ANY($1)`

	var rows []kvRow
	if err := s.db.SelectContext(ctx, &rows, query, pq.Array(keys)); err != nil {
		return nil, fmt.Errorf("kv mget: %w", err)
	}

	byKey := make(map[string][]byte, len(rows))
	for _, row := range rows {
		byKey[row.Key] = row.Value
	}

	values := make([][]byte, len(keys))
	for i, key := range keys {
		values[i] = byKey[key]
	}

	return values, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_store (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`

	if _, err := s.db.ExecContext(ctx, query, key, string(value)); err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}

	return nil
}

func (s *PostgresStore) CompareAndSwap(ctx context.Context, key string, old, value []byte) error {
	var (
		result sql.Result
		err    error
	)

	if old == nil {
		query := `INSERT INTO kv_store (key, value) VALUES ($1, $2) ON CONFLICT (key) DO NOTHING`
		result, err = s.db.ExecContext(ctx, query, key, string(value))
	} else {
		query := `UPDATE kv_store SET value = $1 WHERE key = $2 AND value = $3::jsonb`
		result, err = s.db.ExecContext(ctx, query, string(value), key, string(old))
	}
	if err != nil {
		return fmt.Errorf("kv cas %s: %w", key, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("kv cas %s: rows affected: %w", key, err)
	}

	if rowsAffected == 0 {
		return ErrConflict
	}

	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM kv_store WHERE key = $1`

	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("kv delete %s: %w", key, err)
	}

	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
