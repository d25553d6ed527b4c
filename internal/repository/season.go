package repository

import (
	"context"
	"database/sql"
	"fmt"

	"cfbranker.dev/cfb/internal/core"
	"cfbranker.dev/cfb/internal/db"
)

type SeasonRepository struct {
	db *db.DB
}

func NewSeasonRepository(d *db.DB) *SeasonRepository {
	return &SeasonRepository{db: d}
}

func scanSeason(row interface {
	Scan(dest ...any) error
}) (*core.Season, error) {
	var s core.Season
	err := row.Scan(&s.Year, &s.CurrentWeek, &s.IsActive)
	if err == sql.ErrNoRows {
		return nil, core.NewNotFoundError("season", "")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan season: %w", err)
	}
	return &s, nil
}

func (r *SeasonRepository) GetActive(ctx context.Context) (*core.Season, error) {
	row := r.db.Queryer(ctx).QueryRowContext(ctx, `
		SELECT year, current_week, is_active FROM seasons WHERE is_active = true`)
	return scanSeason(row)
}

func (r *SeasonRepository) GetByYear(ctx context.Context, year core.SeasonYear) (*core.Season, error) {
	row := r.db.Queryer(ctx).QueryRowContext(ctx, `
		SELECT year, current_week, is_active FROM seasons WHERE year = $1`, int(year))
	return scanSeason(row)
}

func (r *SeasonRepository) List(ctx context.Context) ([]core.Season, error) {
	rows, err := r.db.Queryer(ctx).QueryContext(ctx, `
		SELECT year, current_week, is_active FROM seasons ORDER BY year DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}
	defer rows.Close()

	var out []core.Season
	for rows.Next() {
		s, err := scanSeason(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// Upsert creates or updates a season row. Activating one season
// deactivates any other, preserving the at-most-one-active invariant
// enforced in SQL by the teacher-style partial unique index.
func (r *SeasonRepository) Upsert(ctx context.Context, s *core.Season) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		q := r.db.Queryer(ctx)
		if s.IsActive {
			if _, err := q.ExecContext(ctx, `UPDATE seasons SET is_active = false WHERE year != $1`, int(s.Year)); err != nil {
				return fmt.Errorf("failed to deactivate other seasons: %w", err)
			}
		}
		_, err := q.ExecContext(ctx, `
			INSERT INTO seasons (year, current_week, is_active)
			VALUES ($1, $2, $3)
			ON CONFLICT (year) DO UPDATE SET
				current_week = EXCLUDED.current_week,
				is_active = EXCLUDED.is_active`,
			int(s.Year), s.CurrentWeek, s.IsActive)
		if err != nil {
			return fmt.Errorf("failed to upsert season: %w", err)
		}
		return nil
	})
}

func (r *SeasonRepository) SetCurrentWeek(ctx context.Context, year core.SeasonYear, week int) error {
	res, err := r.db.Queryer(ctx).ExecContext(ctx, `
		UPDATE seasons SET current_week = $2 WHERE year = $1`, int(year), week)
	if err != nil {
		return fmt.Errorf("failed to set current week: %w", err)
	}
	return requireOneRow(res, "season")
}
