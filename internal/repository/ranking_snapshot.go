package repository

import (
	"context"
	"database/sql"
	"fmt"

	"cfbranker.dev/cfb/internal/core"
	"cfbranker.dev/cfb/internal/db"
)

type RankingSnapshotRepository struct {
	db *db.DB
}

func NewRankingSnapshotRepository(d *db.DB) *RankingSnapshotRepository {
	return &RankingSnapshotRepository{db: d}
}

// Save writes an immutable batch of snapshots for one (season, week). Each
// row is inserted individually inside a single transaction so a partial
// failure never leaves a half-written week on record.
func (r *RankingSnapshotRepository) Save(ctx context.Context, snapshots []core.RankingSnapshot) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		q := r.db.Queryer(ctx)
		for _, s := range snapshots {
			_, err := q.ExecContext(ctx, `
				INSERT INTO ranking_snapshots (team_id, season, week, rank, rating, wins, losses, sos, sos_rank)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				ON CONFLICT (team_id, season, week) DO NOTHING`,
				int64(s.TeamID), int(s.Season), s.Week, s.Rank, s.Rating, s.Wins, s.Losses,
				nullFloat(s.SOS), nullInt(s.SOSRank))
			if err != nil {
				return fmt.Errorf("failed to save ranking snapshot: %w", err)
			}
		}
		return nil
	})
}

func (r *RankingSnapshotRepository) History(ctx context.Context, teamID core.TeamID, season core.SeasonYear) ([]core.RankingSnapshot, error) {
	rows, err := r.db.Queryer(ctx).QueryContext(ctx, `
		SELECT team_id, season, week, rank, rating, wins, losses, sos, sos_rank
		FROM ranking_snapshots WHERE team_id = $1 AND season = $2
		ORDER BY week ASC`, int64(teamID), int(season))
	if err != nil {
		return nil, fmt.Errorf("failed to list ranking history: %w", err)
	}
	defer rows.Close()

	var out []core.RankingSnapshot
	for rows.Next() {
		var s core.RankingSnapshot
		var sos sql.NullFloat64
		var sosRank sql.NullInt64
		if err := rows.Scan(&s.TeamID, &s.Season, &s.Week, &s.Rank, &s.Rating, &s.Wins, &s.Losses, &sos, &sosRank); err != nil {
			return nil, fmt.Errorf("failed to scan ranking snapshot: %w", err)
		}
		if sos.Valid {
			v := sos.Float64
			s.SOS = &v
		}
		if sosRank.Valid {
			v := int(sosRank.Int64)
			s.SOSRank = &v
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}
