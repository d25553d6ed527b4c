package repository

import (
	"context"
	"fmt"

	"cfbranker.dev/cfb/internal/core"
	"cfbranker.dev/cfb/internal/db"
)

type APIUsageRepository struct {
	db *db.DB
}

func NewAPIUsageRepository(d *db.DB) *APIUsageRepository {
	return &APIUsageRepository{db: d}
}

func (r *APIUsageRepository) Record(ctx context.Context, u *core.APIUsage) error {
	_, err := r.db.Queryer(ctx).ExecContext(ctx, `
		INSERT INTO api_usage (month_key, endpoint, created_at, duration_ms)
		VALUES ($1, $2, $3, $4)`,
		u.MonthKey, u.Endpoint, u.Timestamp, u.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to record api usage: %w", err)
	}
	return nil
}

func (r *APIUsageRepository) CountForMonth(ctx context.Context, monthKey string) (int, error) {
	var count int
	err := r.db.Queryer(ctx).QueryRowContext(ctx, `
		SELECT COUNT(*) FROM api_usage WHERE month_key = $1`, monthKey).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count api usage: %w", err)
	}
	return count, nil
}

func (r *APIUsageRepository) TopEndpoints(ctx context.Context, monthKey string, limit int) ([]core.EndpointUsage, error) {
	rows, err := r.db.Queryer(ctx).QueryContext(ctx, `
		SELECT endpoint, COUNT(*) AS calls
		FROM api_usage WHERE month_key = $1
		GROUP BY endpoint ORDER BY calls DESC LIMIT $2`, monthKey, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top endpoints: %w", err)
	}
	defer rows.Close()

	var out []core.EndpointUsage
	for rows.Next() {
		var e core.EndpointUsage
		if err := rows.Scan(&e.Endpoint, &e.Count); err != nil {
			return nil, fmt.Errorf("failed to scan endpoint usage: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
