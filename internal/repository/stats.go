package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"nba_decade/backend/internal/models"
)

// upsertStats writes one row per (team, season), replacing any prior row for
// the same pair. Returns the number of rows written.
func upsertStats(ctx context.Context, tx *sql.Tx, seasons models.SeasonMap) (int, error) {
	teamIDs, err := teamIDsByName(ctx, tx)
	if err != nil {
		return 0, err
	}

	query := `
		INSERT INTO TeamStats (
			team_id, season_id,
			average_offensive_rating, average_defensive_rating,
			average_net_rating, average_plus_minus,
			relative_net_rating, relative_offensive_rating,
			relative_defensive_rating
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (team_id, season_id) DO UPDATE SET
			average_offensive_rating = excluded.average_offensive_rating,
			average_defensive_rating = excluded.average_defensive_rating,
			average_net_rating = excluded.average_net_rating,
			average_plus_minus = excluded.average_plus_minus,
			relative_net_rating = excluded.relative_net_rating,
			relative_offensive_rating = excluded.relative_offensive_rating,
			relative_defensive_rating = excluded.relative_defensive_rating
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare stats upsert: %w", err)
	}
	defer stmt.Close()

	ids := make([]string, 0, len(seasons))
	for id := range seasons {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	written := 0
	for _, seasonID := range ids {
		for _, r := range seasons[seasonID] {
			teamID, ok := teamIDs[r.Team]
			if !ok {
				return 0, fmt.Errorf("no team id for %s", r.Team)
			}

			_, err := stmt.ExecContext(ctx,
				teamID, seasonID,
				r.AverageOffensiveRating, r.AverageDefensiveRating,
				r.AverageNetRating, r.AveragePlusMinus,
				r.RelativeNetRating, r.RelativeOffensiveRating,
				r.RelativeDefensiveRating,
			)
			if err != nil {
				return 0, fmt.Errorf("failed to upsert stats for %s %s: %w", r.Team, seasonID, err)
			}
			written++
		}
	}

	return written, nil
}

// CountStats returns the total number of persisted team-season stat rows.
func (s *Store) CountStats(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM TeamStats`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count stats: %w", err)
	}
	return count, nil
}
