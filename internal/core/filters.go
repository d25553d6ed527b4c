package core

type Pagination struct {
	Page    int
	PerPage int
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// TeamFilter scopes team listings.
type TeamFilter struct {
	Tier       *ConferenceTier
	Conference string
	NameQuery  string

	Pagination Pagination
}

// GameFilter scopes game listings by the fields §6 enumerates
// (season, week, team_id, processed).
type GameFilter struct {
	Season    *SeasonYear
	Week      *int
	TeamID    *TeamID
	Processed *bool

	Pagination Pagination
}

// PredictionFilter scopes prediction listings and accuracy aggregation.
type PredictionFilter struct {
	Season   *SeasonYear
	Week     *int
	TeamID   *TeamID
	NextWeek bool

	Pagination Pagination
}
