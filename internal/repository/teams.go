package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"nba_decade/backend/internal/models"
)

// upsertTeams inserts every distinct team appearing in the season map,
// ignoring names already present. The stored conference code is the first
// letter of the full name.
func upsertTeams(ctx context.Context, tx *sql.Tx, seasons models.SeasonMap) error {
	type teamRow struct {
		name string
		code string
	}

	unique := make(map[string]teamRow)
	for _, ratings := range seasons {
		for _, r := range ratings {
			unique[r.Team] = teamRow{name: r.Team, code: r.Conference[:1]}
		}
	}

	names := make([]string, 0, len(unique))
	for name := range unique {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		row := unique[name]
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO Teams (team_name, conference_id) VALUES (?, ?)`,
			row.name, row.code,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert team %s: %w", row.name, err)
		}
	}

	return nil
}

// ListTeams retrieves all persisted teams with their full conference names,
// ordered by team name.
func (s *Store) ListTeams(ctx context.Context) ([]models.Team, error) {
	query := `
		SELECT t.team_id, t.team_name, c.conference_name
		FROM Teams t
		JOIN Conferences c ON t.conference_id = c.conference_id
		ORDER BY t.team_name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var team models.Team
		if err := rows.Scan(&team.TeamID, &team.TeamName, &team.Conference); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}

	return teams, nil
}

// teamIDsByName builds the name-to-id mapping used when keying stats rows.
func teamIDsByName(ctx context.Context, tx *sql.Tx) (map[string]int, error) {
	rows, err := tx.QueryContext(ctx, `SELECT team_id, team_name FROM Teams`)
	if err != nil {
		return nil, fmt.Errorf("failed to read team ids: %w", err)
	}
	defer rows.Close()

	mapping := make(map[string]int)
	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan team id: %w", err)
		}
		mapping[name] = id
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team ids: %w", err)
	}

	return mapping, nil
}
