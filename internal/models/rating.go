package models

// GameMetric holds the possession-derived metrics for one team in one game.
// Transient: only season aggregates are persisted.
type GameMetric struct {
	OffensiveRating float64
	DefensiveRating float64
	NetRating       float64
	Possessions     float64
	PlusMinus       float64
}

// TeamRating is the per-team per-season aggregate served to consumers.
type TeamRating struct {
	Team       string `json:"team"`
	Conference string `json:"conference"`

	AverageOffensiveRating float64 `json:"average_offensive_rating"`
	AverageDefensiveRating float64 `json:"average_defensive_rating"`
	AverageNetRating       float64 `json:"average_net_rating"`
	AveragePlusMinus       float64 `json:"average_plus_minus"`

	RelativeNetRating       float64 `json:"relative_net_rating"`
	RelativeOffensiveRating float64 `json:"relative_offensive_rating"`
	RelativeDefensiveRating float64 `json:"relative_defensive_rating"`
}

// SeasonMap maps a season identifier ("2009-10") to the ratings of every team
// that played qualifying games in that season.
type SeasonMap map[string][]TeamRating
