package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"nba_decade/backend/internal/fsutil"
	"nba_decade/backend/internal/metrics"
	"nba_decade/backend/internal/models"
)

// Write persists a full analytics result in a single transaction: schema
// creation, season and team upserts, then stats keyed by (team, season). Any
// failure rolls the whole write back so no partial state is ever visible.
func (s *Store) Write(ctx context.Context, seasons models.SeasonMap) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin store transaction: %w", err)
	}
	defer tx.Rollback()

	if err := createSchema(ctx, tx); err != nil {
		return err
	}
	if err := upsertSeasons(ctx, tx, seasons); err != nil {
		return err
	}
	if err := upsertTeams(ctx, tx, seasons); err != nil {
		return err
	}

	written, err := upsertStats(ctx, tx, seasons)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit store transaction: %w", err)
	}

	metrics.StatsRowsWritten.Set(float64(written))
	log.Info().
		Int("seasons", len(seasons)).
		Int("stat_rows", written).
		Msg("Metrics store written")

	return nil
}

// Read reconstructs the season-to-teams mapping by joining stats, teams,
// seasons and conferences, ordered by season identifier then team name.
func (s *Store) Read(ctx context.Context) (models.SeasonMap, error) {
	query := `
		SELECT
			se.season_id,
			t.team_name,
			t.conference_id,
			ts.average_offensive_rating,
			ts.average_defensive_rating,
			ts.average_net_rating,
			ts.average_plus_minus,
			ts.relative_net_rating,
			ts.relative_offensive_rating,
			ts.relative_defensive_rating
		FROM TeamStats ts
		JOIN Teams t ON ts.team_id = t.team_id
		JOIN Seasons se ON ts.season_id = se.season_id
		JOIN Conferences c ON t.conference_id = c.conference_id
		ORDER BY se.season_id, t.team_name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		metrics.StoreReadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to read stats: %w", err)
	}
	defer rows.Close()

	result := make(models.SeasonMap)
	for rows.Next() {
		var seasonID, conferenceID string
		var r models.TeamRating
		err := rows.Scan(
			&seasonID,
			&r.Team,
			&conferenceID,
			&r.AverageOffensiveRating,
			&r.AverageDefensiveRating,
			&r.AverageNetRating,
			&r.AveragePlusMinus,
			&r.RelativeNetRating,
			&r.RelativeOffensiveRating,
			&r.RelativeDefensiveRating,
		)
		if err != nil {
			metrics.StoreReadsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}

		r.Conference = conferenceNames[conferenceID]
		result[seasonID] = append(result[seasonID], r)
	}

	if err := rows.Err(); err != nil {
		metrics.StoreReadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("error iterating stats rows: %w", err)
	}

	metrics.StoreReadsTotal.WithLabelValues("success").Inc()
	return result, nil
}

// Verify is the pre-read integrity check: the store file must exist and meet
// the minimum size floor. Its failure is the trigger condition for a forced
// recompute, not a fatal read error.
func (s *Store) Verify() (int64, error) {
	return fsutil.VerifyFile(s.path, s.minFileSize)
}
