package provider

import "time"

// TeamRecord is the provider's representation of a team, mapped at the
// ingestion boundary into core.Team.
type TeamRecord struct {
	Name                string  `json:"name"`
	ConferenceTier      string  `json:"conference_tier"`
	ConferenceName      string  `json:"conference_name"`
	RecruitingRank      int     `json:"recruiting_rank"`
	TransferRank        int     `json:"transfer_rank"`
	ReturningProduction float64 `json:"returning_production"`
}

// GameRecord is the provider's representation of a scheduled or played
// game.
type GameRecord struct {
	Season         int        `json:"season"`
	Week           int        `json:"week"`
	HomeTeam       string     `json:"home_team"`
	AwayTeam       string     `json:"away_team"`
	HomeScore      *int       `json:"home_score"`
	AwayScore      *int       `json:"away_score"`
	IsNeutralSite  bool       `json:"is_neutral_site"`
	GameType       string     `json:"game_type"`
	PostseasonName string     `json:"postseason_name"`
	GameDate       *time.Time `json:"game_date"`
}

// PollEntry is one team's slot in a weekly AP poll.
type PollEntry struct {
	Rank            int    `json:"rank"`
	Team            string `json:"team"`
	FirstPlaceVotes int    `json:"first_place_votes"`
	Points          int    `json:"points"`
}

// SeasonType distinguishes regular-season from postseason game fetches.
type SeasonType string

const (
	SeasonRegular    SeasonType = "regular"
	SeasonPostseason SeasonType = "postseason"
)
