package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"nba_decade/backend/internal/models"
)

// upsertSeasons inserts every season present in the map, deriving start and
// end years from the "YYYY-YY" identifier.
func upsertSeasons(ctx context.Context, tx *sql.Tx, seasons models.SeasonMap) error {
	ids := make([]string, 0, len(seasons))
	for id := range seasons {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		season, err := parseSeasonID(id)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO Seasons (season_id, start_year, end_year) VALUES (?, ?, ?)`,
			season.SeasonID, season.StartYear, season.EndYear,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert season %s: %w", id, err)
		}
	}

	return nil
}

// parseSeasonID splits a "YYYY-YY" identifier into start and end years. The
// short suffix is relative to 2000; the dataset window guarantees that.
func parseSeasonID(id string) (models.Season, error) {
	parts := strings.SplitN(id, "-", 2)
	if len(parts) != 2 {
		return models.Season{}, fmt.Errorf("invalid season identifier %q", id)
	}

	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return models.Season{}, fmt.Errorf("invalid season identifier %q: %w", id, err)
	}

	endShort, err := strconv.Atoi(parts[1])
	if err != nil {
		return models.Season{}, fmt.Errorf("invalid season identifier %q: %w", id, err)
	}

	return models.Season{SeasonID: id, StartYear: start, EndYear: 2000 + endShort}, nil
}

// ListSeasons retrieves all persisted seasons in chronological order.
func (s *Store) ListSeasons(ctx context.Context) ([]models.Season, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT season_id, start_year, end_year FROM Seasons ORDER BY start_year, end_year`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}
	defer rows.Close()

	var seasons []models.Season
	for rows.Next() {
		var season models.Season
		if err := rows.Scan(&season.SeasonID, &season.StartYear, &season.EndYear); err != nil {
			return nil, fmt.Errorf("failed to scan season: %w", err)
		}
		seasons = append(seasons, season)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating seasons: %w", err)
	}

	return seasons, nil
}
