package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ricirt/report-robot/internal/domain"
)

type pgConsoleRepository struct {
	pool *pgxpool.Pool
}

// NewPgConsoleRepository returns a ConsoleRepository backed by console_log.
func NewPgConsoleRepository(pool *pgxpool.Pool) ConsoleRepository {
	return &pgConsoleRepository{pool: pool}
}

func (r *pgConsoleRepository) Append(ctx context.Context, line domain.ConsoleLine) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO console_log (logged_at, level, message) VALUES ($1, $2, $3)`,
		line.At, line.Level, line.Message)
	if err != nil {
		return fmt.Errorf("append console line: %w", err)
	}
	return nil
}

func (r *pgConsoleRepository) Truncate(ctx context.Context, keep int) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM console_log
		WHERE id IN (SELECT id FROM console_log ORDER BY id DESC OFFSET $1)`, keep)
	if err != nil {
		return fmt.Errorf("truncate console: %w", err)
	}
	return nil
}

func (r *pgConsoleRepository) Reset(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `TRUNCATE console_log`); err != nil {
		return fmt.Errorf("reset console: %w", err)
	}
	return nil
}
