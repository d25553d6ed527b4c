package repository

import (
	"context"
	"database/sql"
	"fmt"

	"cfbranker.dev/cfb/internal/core"
	"cfbranker.dev/cfb/internal/db"
)

type PredictionRepository struct {
	db *db.DB
}

func NewPredictionRepository(d *db.DB) *PredictionRepository {
	return &PredictionRepository{db: d}
}

func scanPrediction(row interface {
	Scan(dest ...any) error
}) (*core.Prediction, error) {
	var p core.Prediction
	var wasCorrect sql.NullBool
	err := row.Scan(
		&p.GameID, &p.PredictedWinnerID, &p.PredictedHomeScore, &p.PredictedAwayScore,
		&p.HomeWinProbability, &p.AwayWinProbability, &p.PreGameHomeRating, &p.PreGameAwayRating,
		&p.Confidence, &wasCorrect,
	)
	if err == sql.ErrNoRows {
		return nil, core.NewNotFoundError("prediction", "")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan prediction: %w", err)
	}
	if wasCorrect.Valid {
		p.WasCorrect = core.TriStateFromBool(wasCorrect.Bool)
	} else {
		p.WasCorrect = core.Unresolved
	}
	return &p, nil
}

const predictionColumns = `
	game_id, predicted_winner_id, predicted_home_score, predicted_away_score,
	home_win_probability, away_win_probability, pre_game_home_rating, pre_game_away_rating,
	confidence, was_correct`

func (r *PredictionRepository) GetByGameID(ctx context.Context, gameID core.GameID) (*core.Prediction, error) {
	row := r.db.Queryer(ctx).QueryRowContext(ctx, `SELECT`+predictionColumns+` FROM predictions WHERE game_id = $1`, int64(gameID))
	return scanPrediction(row)
}

func (r *PredictionRepository) List(ctx context.Context, filter core.PredictionFilter) ([]core.Prediction, error) {
	query := `
		SELECT p.game_id, p.predicted_winner_id, p.predicted_home_score, p.predicted_away_score,
			p.home_win_probability, p.away_win_probability, p.pre_game_home_rating, p.pre_game_away_rating,
			p.confidence, p.was_correct
		FROM predictions p JOIN games g ON g.id = p.game_id
		WHERE 1=1`
	args := []any{}
	argNum := 1

	if filter.Season != nil {
		query += fmt.Sprintf(" AND g.season = $%d", argNum)
		args = append(args, int(*filter.Season))
		argNum++
	}
	if filter.Week != nil {
		query += fmt.Sprintf(" AND g.week = $%d", argNum)
		args = append(args, *filter.Week)
		argNum++
	}
	if filter.TeamID != nil {
		query += fmt.Sprintf(" AND (g.home_id = $%d OR g.away_id = $%d)", argNum, argNum)
		args = append(args, int64(*filter.TeamID))
		argNum++
	}
	if filter.NextWeek {
		query += " AND g.is_processed = false AND g.week = (SELECT MIN(week) FROM games WHERE is_processed = false AND season = g.season)"
	}

	query += " ORDER BY g.week ASC, g.id ASC"
	if filter.Pagination.PerPage > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
		args = append(args, filter.Pagination.PerPage, (filter.Pagination.Page-1)*filter.Pagination.PerPage)
	}

	rows, err := r.db.Queryer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	defer rows.Close()

	var out []core.Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PredictionRepository) Create(ctx context.Context, p *core.Prediction) error {
	_, err := r.db.Queryer(ctx).ExecContext(ctx, `
		INSERT INTO predictions (game_id, predicted_winner_id, predicted_home_score, predicted_away_score,
			home_win_probability, away_win_probability, pre_game_home_rating, pre_game_away_rating, confidence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		int64(p.GameID), int64(p.PredictedWinnerID), p.PredictedHomeScore, p.PredictedAwayScore,
		p.HomeWinProbability, p.AwayWinProbability, p.PreGameHomeRating, p.PreGameAwayRating, p.Confidence)
	if err != nil {
		return core.NewDataIntegrityError(fmt.Sprintf("create prediction for game %d", p.GameID), err)
	}
	return nil
}

func (r *PredictionRepository) SetOutcome(ctx context.Context, gameID core.GameID, correct core.TriState) error {
	value, ok := correct.Bool()
	var arg sql.NullBool
	if ok {
		arg = sql.NullBool{Bool: value, Valid: true}
	}
	res, err := r.db.Queryer(ctx).ExecContext(ctx, `
		UPDATE predictions SET was_correct = $2 WHERE game_id = $1`, int64(gameID), arg)
	if err != nil {
		return fmt.Errorf("failed to set prediction outcome: %w", err)
	}
	return requireOneRow(res, "prediction")
}

func (r *PredictionRepository) Accuracy(ctx context.Context, filter core.PredictionFilter) (total, resolved, correct int, err error) {
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE p.was_correct IS NOT NULL),
			COUNT(*) FILTER (WHERE p.was_correct = true)
		FROM predictions p JOIN games g ON g.id = p.game_id
		WHERE 1=1`
	args := []any{}
	argNum := 1

	if filter.Season != nil {
		query += fmt.Sprintf(" AND g.season = $%d", argNum)
		args = append(args, int(*filter.Season))
		argNum++
	}
	if filter.Week != nil {
		query += fmt.Sprintf(" AND g.week = $%d", argNum)
		args = append(args, *filter.Week)
		argNum++
	}
	if filter.TeamID != nil {
		query += fmt.Sprintf(" AND (g.home_id = $%d OR g.away_id = $%d)", argNum, argNum)
		args = append(args, int64(*filter.TeamID))
	}

	err = r.db.Queryer(ctx).QueryRowContext(ctx, query, args...).Scan(&total, &resolved, &correct)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to aggregate prediction accuracy: %w", err)
	}
	return total, resolved, correct, nil
}
