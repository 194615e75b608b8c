package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ricirt/report-robot/internal/domain"
)

// Flag values read by the external bot that polls bot_control.
const (
	ControlStateBusy = "DISTRIBUYENDO"
	ControlStateFree = "LIBRE"
)

type pgControlRepository struct {
	pool *pgxpool.Pool
}

// NewPgControlRepository returns a ControlRepository over the single
// bot_control row.
func NewPgControlRepository(pool *pgxpool.Pool) ControlRepository {
	return &pgControlRepository{pool: pool}
}

func (r *pgControlRepository) SetBusy(ctx context.Context, total int, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO bot_control (id, state, started_at, total, progress, updated_at)
		VALUES (1, $1, $2, $3, $4, NOW())
		ON CONFLICT (id) DO UPDATE
		SET state = EXCLUDED.state, started_at = EXCLUDED.started_at,
		    total = EXCLUDED.total, progress = EXCLUDED.progress, updated_at = NOW()`,
		ControlStateBusy, at, total, "0/"+strconv.Itoa(total))
	if err != nil {
		return fmt.Errorf("set control busy: %w", err)
	}
	return nil
}

func (r *pgControlRepository) SetProgress(ctx context.Context, current, total int) error {
	progress := strconv.Itoa(current) + "/" + strconv.Itoa(total)
	_, err := r.pool.Exec(ctx,
		`UPDATE bot_control SET progress = $1, updated_at = NOW() WHERE id = 1`, progress)
	if err != nil {
		return fmt.Errorf("set control progress: %w", err)
	}
	return nil
}

func (r *pgControlRepository) SetFree(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO bot_control (id, state, total, progress, updated_at)
		VALUES (1, $1, 0, '', NOW())
		ON CONFLICT (id) DO UPDATE
		SET state = EXCLUDED.state, started_at = NULL, total = 0, progress = '', updated_at = NOW()`,
		ControlStateFree)
	if err != nil {
		return fmt.Errorf("set control free: %w", err)
	}
	return nil
}

func (r *pgControlRepository) Get(ctx context.Context) (domain.ControlState, error) {
	var (
		st        domain.ControlState
		state     string
		startedAt *time.Time
	)
	err := r.pool.QueryRow(ctx,
		`SELECT state, started_at, total, progress FROM bot_control WHERE id = 1`).
		Scan(&state, &startedAt, &st.Total, &st.Progress)
	if errors.Is(err, pgx.ErrNoRows) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("get control: %w", err)
	}
	st.Busy = state == ControlStateBusy
	if startedAt != nil {
		st.StartedAt = *startedAt
	}
	return st, nil
}
