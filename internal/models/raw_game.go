package models

// RawGame is one row of the snapshot's game table. The source flattens both
// perspectives of a game onto a single row: every stat column exists once with
// a _home suffix and once with an _away suffix.
//
// All fields are scanned as text. SQLite columns in the snapshot are
// dynamically typed and the decade window predates any schema guarantees from
// the upstream dataset, so parsing (and rejecting) values is the analytics
// engine's job, not the extractor's.
type RawGame struct {
	GameDate     string
	TeamIDHome   string
	TeamNameHome string
	TeamIDAway   string
	TeamNameAway string

	FGAHome  string
	FGMHome  string
	FTAHome  string
	OrebHome string
	DrebHome string
	TovHome  string
	PtsHome  string

	FGAAway  string
	FGMAway  string
	FTAAway  string
	OrebAway string
	DrebAway string
	TovAway  string
	PtsAway  string

	PlusMinusHome string
	PlusMinusAway string
}
