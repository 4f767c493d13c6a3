package models

// Team represents an NBA team as persisted in the metrics store. Conference
// carries the full name ("Western"/"Eastern"); the store keeps the single
// letter code.
type Team struct {
	TeamID     int    `json:"team_id"`
	TeamName   string `json:"team_name"`
	Conference string `json:"conference_name"`
}

// Season is one entry of the persisted season calendar, derived from the
// "YYYY-YY" identifier.
type Season struct {
	SeasonID  string `json:"season_id"`
	StartYear int    `json:"start_year"`
	EndYear   int    `json:"end_year"`
}
