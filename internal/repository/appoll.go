package repository

import (
	"context"
	"database/sql"
	"fmt"

	"cfbranker.dev/cfb/internal/core"
	"cfbranker.dev/cfb/internal/db"
)

type APPollRepository struct {
	db *db.DB
}

func NewAPPollRepository(d *db.DB) *APPollRepository {
	return &APPollRepository{db: d}
}

func scanAPPoll(row interface {
	Scan(dest ...any) error
}) (*core.APPollRanking, error) {
	var r core.APPollRanking
	err := row.Scan(&r.Season, &r.Week, &r.Rank, &r.TeamID, &r.FirstPlaceVotes, &r.Points)
	if err == sql.ErrNoRows {
		return nil, core.NewNotFoundError("ap_poll_ranking", "")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan ap poll ranking: %w", err)
	}
	return &r, nil
}

func (r *APPollRepository) Upsert(ctx context.Context, ranking *core.APPollRanking) error {
	_, err := r.db.Queryer(ctx).ExecContext(ctx, `
		INSERT INTO ap_poll_rankings (season, week, team_id, rank, first_place_votes, points)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (season, week, team_id) DO UPDATE SET
			rank = EXCLUDED.rank,
			first_place_votes = EXCLUDED.first_place_votes,
			points = EXCLUDED.points`,
		int(ranking.Season), ranking.Week, int64(ranking.TeamID), ranking.Rank, ranking.FirstPlaceVotes, ranking.Points)
	if err != nil {
		return fmt.Errorf("failed to upsert ap poll ranking: %w", err)
	}
	return nil
}

func (r *APPollRepository) ListByWeek(ctx context.Context, season core.SeasonYear, week int) ([]core.APPollRanking, error) {
	rows, err := r.db.Queryer(ctx).QueryContext(ctx, `
		SELECT season, week, rank, team_id, first_place_votes, points
		FROM ap_poll_rankings WHERE season = $1 AND week = $2
		ORDER BY rank ASC`, int(season), week)
	if err != nil {
		return nil, fmt.Errorf("failed to list ap poll week: %w", err)
	}
	defer rows.Close()

	var out []core.APPollRanking
	for rows.Next() {
		a, err := scanAPPoll(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *APPollRepository) GetTeamRank(ctx context.Context, season core.SeasonYear, week int, teamID core.TeamID) (*core.APPollRanking, error) {
	row := r.db.Queryer(ctx).QueryRowContext(ctx, `
		SELECT season, week, rank, team_id, first_place_votes, points
		FROM ap_poll_rankings WHERE season = $1 AND week = $2 AND team_id = $3`,
		int(season), week, int64(teamID))
	return scanAPPoll(row)
}
