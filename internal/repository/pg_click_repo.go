package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ricirt/report-robot/internal/domain"
)

type pgClickRepository struct {
	pool *pgxpool.Pool
}

// NewPgClickRepository returns a ClickRepository backed by click_events.
func NewPgClickRepository(pool *pgxpool.Pool) ClickRepository {
	return &pgClickRepository{pool: pool}
}

func (r *pgClickRepository) Append(ctx context.Context, c *domain.Click) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO click_events
			(id, clicked_at, recipient, report_kind, sent_at, reaction_time,
			 device, browser, os, link, location)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		c.ID, c.ClickedAt, c.Recipient, c.ReportKind, c.SentAt, c.ReactionTime,
		c.Device, c.Browser, c.OS, c.Link, c.Location,
	)
	if err != nil {
		return fmt.Errorf("insert click: %w", err)
	}
	return nil
}

func (r *pgClickRepository) LatestByRecipient(ctx context.Context, recipient string) (*domain.Click, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, clicked_at, recipient, report_kind, sent_at, reaction_time,
		       device, browser, os, link, location
		FROM click_events
		WHERE recipient = $1
		ORDER BY seq DESC
		LIMIT 1`, recipient)

	var c domain.Click
	err := row.Scan(&c.ID, &c.ClickedAt, &c.Recipient, &c.ReportKind, &c.SentAt, &c.ReactionTime,
		&c.Device, &c.Browser, &c.OS, &c.Link, &c.Location)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan click: %w", err)
	}
	return &c, nil
}

func (r *pgClickRepository) UpdateClient(ctx context.Context, id string, info domain.ClientInfo) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE click_events
		SET device = $1, browser = $2, os = $3, location = $4
		WHERE id = $5`, info.Device, info.Browser, info.OS, info.Location, id)
	if err != nil {
		return fmt.Errorf("update click: %w", err)
	}
	return nil
}
