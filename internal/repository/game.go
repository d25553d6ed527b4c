package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cfbranker.dev/cfb/internal/core"
	"cfbranker.dev/cfb/internal/db"
)

type GameRepository struct {
	db *db.DB
}

func NewGameRepository(d *db.DB) *GameRepository {
	return &GameRepository{db: d}
}

const gameColumns = `
	id, season, week, home_id, away_id, home_score, away_score,
	is_neutral_site, is_processed, excluded_from_rankings, game_type,
	postseason_name, game_date, home_rating_change, away_rating_change`

func scanGame(row interface {
	Scan(dest ...any) error
}) (*core.Game, error) {
	var g core.Game
	var postseasonName sql.NullString
	var gameDate sql.NullTime

	err := row.Scan(
		&g.ID, &g.Season, &g.Week, &g.HomeID, &g.AwayID, &g.HomeScore, &g.AwayScore,
		&g.IsNeutralSite, &g.IsProcessed, &g.ExcludedFromRankings, &g.GameType,
		&postseasonName, &gameDate, &g.HomeRatingChange, &g.AwayRatingChange,
	)
	if err == sql.ErrNoRows {
		return nil, core.NewNotFoundError("game", "")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan game: %w", err)
	}
	if postseasonName.Valid {
		g.PostseasonName = postseasonName.String
	}
	if gameDate.Valid {
		t := gameDate.Time
		g.GameDate = &t
	}
	return &g, nil
}

func (r *GameRepository) GetByID(ctx context.Context, id core.GameID) (*core.Game, error) {
	row := r.db.Queryer(ctx).QueryRowContext(ctx, `SELECT`+gameColumns+` FROM games WHERE id = $1`, int64(id))
	return scanGame(row)
}

func (r *GameRepository) List(ctx context.Context, filter core.GameFilter) ([]core.Game, error) {
	query := `SELECT` + gameColumns + ` FROM games WHERE 1=1`
	args := []any{}
	argNum := 1

	if filter.Season != nil {
		query += fmt.Sprintf(" AND season = $%d", argNum)
		args = append(args, int(*filter.Season))
		argNum++
	}
	if filter.Week != nil {
		query += fmt.Sprintf(" AND week = $%d", argNum)
		args = append(args, *filter.Week)
		argNum++
	}
	if filter.TeamID != nil {
		query += fmt.Sprintf(" AND (home_id = $%d OR away_id = $%d)", argNum, argNum)
		args = append(args, int64(*filter.TeamID))
		argNum++
	}
	if filter.Processed != nil {
		query += fmt.Sprintf(" AND is_processed = $%d", argNum)
		args = append(args, *filter.Processed)
		argNum++
	}

	query += " ORDER BY week ASC, game_date ASC NULLS LAST, id ASC"
	if filter.Pagination.PerPage > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
		args = append(args, filter.Pagination.PerPage, (filter.Pagination.Page-1)*filter.Pagination.PerPage)
	}

	rows, err := r.db.Queryer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var games []core.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, *g)
	}
	return games, rows.Err()
}

func (r *GameRepository) Count(ctx context.Context, filter core.GameFilter) (int, error) {
	query := `SELECT COUNT(*) FROM games WHERE 1=1`
	args := []any{}
	argNum := 1

	if filter.Season != nil {
		query += fmt.Sprintf(" AND season = $%d", argNum)
		args = append(args, int(*filter.Season))
		argNum++
	}
	if filter.Week != nil {
		query += fmt.Sprintf(" AND week = $%d", argNum)
		args = append(args, *filter.Week)
		argNum++
	}
	if filter.TeamID != nil {
		query += fmt.Sprintf(" AND (home_id = $%d OR away_id = $%d)", argNum, argNum)
		args = append(args, int64(*filter.TeamID))
		argNum++
	}
	if filter.Processed != nil {
		query += fmt.Sprintf(" AND is_processed = $%d", argNum)
		args = append(args, *filter.Processed)
	}

	var count int
	err := r.db.Queryer(ctx).QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

// existingIngest holds the fields of a previously ingested row that
// re-ingestion must not silently clobber once the game is processed.
type existingIngest struct {
	homeScore, awayScore int
	isNeutralSite        bool
	excludedFromRankings bool
	isProcessed          bool
}

func (r *GameRepository) lookupExisting(ctx context.Context, g *core.Game) (*existingIngest, error) {
	var e existingIngest
	err := r.db.Queryer(ctx).QueryRowContext(ctx, `
		SELECT home_score, away_score, is_neutral_site, excluded_from_rankings, is_processed
		FROM games WHERE season = $1 AND home_id = $2 AND away_id = $3 AND week = $4`,
		int(g.Season), int64(g.HomeID), int64(g.AwayID), g.Week,
	).Scan(&e.homeScore, &e.awayScore, &e.isNeutralSite, &e.excludedFromRankings, &e.isProcessed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up existing game: %w", err)
	}
	return &e, nil
}

// UpsertIngested applies the ingestion pipeline's upsert semantics keyed on
// (season, home_id, away_id, week): a new row starts unprocessed; an
// existing unprocessed row has its scores, date, and neutral-site flag
// refreshed; an existing processed row keeps its scores immutable and only
// has schedule metadata (date, postseason name) refreshed.
//
// When a processed row's incoming values diverge from what is already
// stored, the divergence is reported back as a non-fatal
// *core.DataIntegrityError (the caller logs it as a data-integrity
// warning) rather than silently discarded; the immutable value is still
// the one persisted.
func (r *GameRepository) UpsertIngested(ctx context.Context, g *core.Game) (core.GameID, error, error) {
	existing, err := r.lookupExisting(ctx, g)
	if err != nil {
		return 0, nil, err
	}

	var divergence error
	if existing != nil && existing.isProcessed {
		if existing.homeScore != g.HomeScore || existing.awayScore != g.AwayScore ||
			existing.isNeutralSite != g.IsNeutralSite || existing.excludedFromRankings != g.ExcludedFromRankings {
			divergence = core.NewDataIntegrityError(fmt.Sprintf(
				"upsert game: re-ingested values diverge from processed game (season=%d week=%d home=%d away=%d): stored home_score=%d away_score=%d neutral=%v excluded=%v, incoming home_score=%d away_score=%d neutral=%v excluded=%v",
				g.Season, g.Week, g.HomeID, g.AwayID,
				existing.homeScore, existing.awayScore, existing.isNeutralSite, existing.excludedFromRankings,
				g.HomeScore, g.AwayScore, g.IsNeutralSite, g.ExcludedFromRankings,
			), nil)
		}
	}

	var id int64
	q := r.db.Queryer(ctx)

	err = q.QueryRowContext(ctx, `
		INSERT INTO games (season, week, home_id, away_id, home_score, away_score,
			is_neutral_site, excluded_from_rankings, game_type, postseason_name, game_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (season, home_id, away_id, week) DO UPDATE SET
			home_score = CASE WHEN games.is_processed THEN games.home_score ELSE EXCLUDED.home_score END,
			away_score = CASE WHEN games.is_processed THEN games.away_score ELSE EXCLUDED.away_score END,
			is_neutral_site = CASE WHEN games.is_processed THEN games.is_neutral_site ELSE EXCLUDED.is_neutral_site END,
			excluded_from_rankings = CASE WHEN games.is_processed THEN games.excluded_from_rankings ELSE EXCLUDED.excluded_from_rankings END,
			game_type = EXCLUDED.game_type,
			postseason_name = EXCLUDED.postseason_name,
			game_date = EXCLUDED.game_date
		RETURNING id`,
		int(g.Season), g.Week, int64(g.HomeID), int64(g.AwayID), g.HomeScore, g.AwayScore,
		g.IsNeutralSite, g.ExcludedFromRankings, g.GameType, nullString(g.PostseasonName), nullTime(g.GameDate),
	).Scan(&id)
	if err != nil {
		return 0, nil, core.NewDataIntegrityError("upsert game", err)
	}
	return core.GameID(id), divergence, nil
}

func (r *GameRepository) ListUnprocessedChronological(ctx context.Context, season core.SeasonYear) ([]core.Game, error) {
	rows, err := r.db.Queryer(ctx).QueryContext(ctx, `SELECT`+gameColumns+`
		FROM games WHERE season = $1 AND is_processed = false
		ORDER BY week ASC, game_date ASC NULLS LAST, id ASC`, int(season))
	if err != nil {
		return nil, fmt.Errorf("failed to list unprocessed games: %w", err)
	}
	defer rows.Close()

	var games []core.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, *g)
	}
	return games, rows.Err()
}

func (r *GameRepository) ListBySeason(ctx context.Context, season core.SeasonYear) ([]core.Game, error) {
	rows, err := r.db.Queryer(ctx).QueryContext(ctx, `SELECT`+gameColumns+`
		FROM games WHERE season = $1
		ORDER BY week ASC, game_date ASC NULLS LAST, id ASC`, int(season))
	if err != nil {
		return nil, fmt.Errorf("failed to list season games: %w", err)
	}
	defer rows.Close()

	var games []core.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, *g)
	}
	return games, rows.Err()
}

func (r *GameRepository) MarkProcessed(ctx context.Context, id core.GameID, excluded bool, homeDelta, awayDelta float64) error {
	res, err := r.db.Queryer(ctx).ExecContext(ctx, `
		UPDATE games SET is_processed = true, excluded_from_rankings = $2,
			home_rating_change = $3, away_rating_change = $4
		WHERE id = $1`,
		int64(id), excluded, homeDelta, awayDelta)
	if err != nil {
		return fmt.Errorf("failed to mark game processed: %w", err)
	}
	return requireOneRow(res, "game")
}

func (r *GameRepository) ResetProcessing(ctx context.Context, season core.SeasonYear) error {
	_, err := r.db.Queryer(ctx).ExecContext(ctx, `
		UPDATE games SET is_processed = false, home_rating_change = 0, away_rating_change = 0
		WHERE season = $1`, int(season))
	if err != nil {
		return fmt.Errorf("failed to reset game processing: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
