package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ricirt/report-robot/internal/domain"
)

type pgDashboardRepository struct {
	pool *pgxpool.Pool
}

func NewPgDashboardRepository(pool *pgxpool.Pool) DashboardRepository {
	return &pgDashboardRepository{pool: pool}
}

func (r *pgDashboardRepository) Record(ctx context.Context, fileName string, stats domain.DistributionStats, at time.Time) error {
	recipients := stats.Recipients
	if recipients == nil {
		recipients = []string{}
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO distribution_dashboard
			(recorded_at, file_name, total, succeeded, failed, skipped, recipients)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		at, fileName, stats.Total, stats.Succeeded, stats.Failed, stats.Skipped, recipients)
	if err != nil {
		return fmt.Errorf("record dashboard row: %w", err)
	}
	return nil
}
