package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgPropertyStore struct {
	pool *pgxpool.Pool
}

// NewPgPropertyStore returns a PropertyStore backed by the properties table.
func NewPgPropertyStore(pool *pgxpool.Pool) PropertyStore {
	return &pgPropertyStore{pool: pool}
}

func (s *pgPropertyStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.pool.QueryRow(ctx, `SELECT value FROM properties WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get property %s: %w", key, err)
	}
	return value, true, nil
}

func (s *pgPropertyStore) Set(ctx context.Context, key, value string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO properties (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value)
	if err != nil {
		return fmt.Errorf("set property %s: %w", key, err)
	}
	return nil
}

func (s *pgPropertyStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM properties WHERE key = ANY($1)`, keys); err != nil {
		return fmt.Errorf("delete properties: %w", err)
	}
	return nil
}
