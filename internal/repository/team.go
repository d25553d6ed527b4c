package repository

import (
	"context"
	"database/sql"
	"fmt"

	"cfbranker.dev/cfb/internal/core"
	"cfbranker.dev/cfb/internal/db"
)

type TeamRepository struct {
	db *db.DB
}

func NewTeamRepository(d *db.DB) *TeamRepository {
	return &TeamRepository{db: d}
}

const teamColumns = `
	id, name, conference_tier, conference_name, recruiting_rank, transfer_rank,
	returning_production, initial_rating, current_rating, wins, losses`

func scanTeam(row interface {
	Scan(dest ...any) error
}) (*core.Team, error) {
	var t core.Team
	err := row.Scan(
		&t.ID, &t.Name, &t.Tier, &t.Conference,
		&t.RecruitingRank, &t.TransferRank, &t.ReturningProduction,
		&t.InitialRating, &t.CurrentRating, &t.Wins, &t.Losses,
	)
	if err == sql.ErrNoRows {
		return nil, core.NewNotFoundError("team", "")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan team: %w", err)
	}
	return &t, nil
}

func (r *TeamRepository) GetByID(ctx context.Context, id core.TeamID) (*core.Team, error) {
	row := r.db.Queryer(ctx).QueryRowContext(ctx, `SELECT`+teamColumns+` FROM teams WHERE id = $1`, int64(id))
	return scanTeam(row)
}

func (r *TeamRepository) GetByName(ctx context.Context, name string) (*core.Team, error) {
	row := r.db.Queryer(ctx).QueryRowContext(ctx, `SELECT`+teamColumns+` FROM teams WHERE name = $1`, name)
	return scanTeam(row)
}

func (r *TeamRepository) List(ctx context.Context, filter core.TeamFilter) ([]core.Team, error) {
	query := `SELECT` + teamColumns + ` FROM teams WHERE 1=1`
	args := []any{}
	argNum := 1

	if filter.Conference != "" {
		query += fmt.Sprintf(" AND conference_name = $%d", argNum)
		args = append(args, filter.Conference)
		argNum++
	}
	if filter.Tier != nil {
		query += fmt.Sprintf(" AND conference_tier = $%d", argNum)
		args = append(args, *filter.Tier)
		argNum++
	}

	query += " ORDER BY current_rating DESC, id ASC"
	if filter.Pagination.PerPage > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
		args = append(args, filter.Pagination.PerPage, (filter.Pagination.Page-1)*filter.Pagination.PerPage)
	}

	rows, err := r.db.Queryer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []core.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, *t)
	}
	return teams, rows.Err()
}

func (r *TeamRepository) Count(ctx context.Context, filter core.TeamFilter) (int, error) {
	query := `SELECT COUNT(*) FROM teams WHERE 1=1`
	args := []any{}
	argNum := 1

	if filter.Conference != "" {
		query += fmt.Sprintf(" AND conference_name = $%d", argNum)
		args = append(args, filter.Conference)
		argNum++
	}
	if filter.Tier != nil {
		query += fmt.Sprintf(" AND conference_tier = $%d", argNum)
		args = append(args, *filter.Tier)
	}

	var count int
	err := r.db.Queryer(ctx).QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

// UpsertIngested creates or updates a team's non-rating fields by unique
// name. On conflict, rating/record fields are left untouched.
func (r *TeamRepository) UpsertIngested(ctx context.Context, t *core.Team) (core.TeamID, error) {
	var id int64
	err := r.db.Queryer(ctx).QueryRowContext(ctx, `
		INSERT INTO teams (name, conference_tier, conference_name, recruiting_rank, transfer_rank, returning_production)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO UPDATE SET
			conference_tier = EXCLUDED.conference_tier,
			conference_name = EXCLUDED.conference_name,
			recruiting_rank = EXCLUDED.recruiting_rank,
			transfer_rank = EXCLUDED.transfer_rank,
			returning_production = EXCLUDED.returning_production
		RETURNING id`,
		t.Name, t.Tier, t.Conference, t.RecruitingRank, t.TransferRank, t.ReturningProduction,
	).Scan(&id)
	if err != nil {
		return 0, core.NewDataIntegrityError(fmt.Sprintf("upsert team %q", t.Name), err)
	}
	return core.TeamID(id), nil
}

func (r *TeamRepository) UpdateRating(ctx context.Context, id core.TeamID, currentRating float64, wins, losses int) error {
	res, err := r.db.Queryer(ctx).ExecContext(ctx, `
		UPDATE teams SET current_rating = $2, wins = $3, losses = $4 WHERE id = $1`,
		int64(id), currentRating, wins, losses)
	if err != nil {
		return fmt.Errorf("failed to update team rating: %w", err)
	}
	return requireOneRow(res, "team")
}

func (r *TeamRepository) ResetToInitial(ctx context.Context) error {
	_, err := r.db.Queryer(ctx).ExecContext(ctx, `
		UPDATE teams SET current_rating = initial_rating, wins = 0, losses = 0`)
	if err != nil {
		return fmt.Errorf("failed to reset teams to initial rating: %w", err)
	}
	return nil
}

func (r *TeamRepository) SetInitialRating(ctx context.Context, id core.TeamID, initialRating float64) error {
	res, err := r.db.Queryer(ctx).ExecContext(ctx, `
		UPDATE teams SET initial_rating = $2, current_rating = $2 WHERE id = $1`,
		int64(id), initialRating)
	if err != nil {
		return fmt.Errorf("failed to set initial rating: %w", err)
	}
	return requireOneRow(res, "team")
}

func requireOneRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.NewNotFoundError(what, "")
	}
	return nil
}
