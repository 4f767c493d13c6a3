// Package extract opens the raw snapshot as a relational store and
// materializes the game table into memory.
package extract

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"nba_decade/backend/internal/metrics"
	"nba_decade/backend/internal/models"
)

var (
	// ErrStoreBusy indicates lock contention on the snapshot. Callers may
	// retry a whole recompute; the extractor itself never does.
	ErrStoreBusy = errors.New("snapshot database is locked")

	// ErrSchemaInvalid indicates the snapshot lacks the expected game table
	// or its column schema.
	ErrSchemaInvalid = errors.New("snapshot schema invalid")

	// ErrNoData indicates the game table exists but holds no rows.
	ErrNoData = errors.New("snapshot contains no game rows")
)

const gameTable = "game"

// gameColumns lists the snapshot columns the pipeline consumes, in scan order.
var gameColumns = []string{
	"game_date",
	"team_id_home", "team_name_home",
	"team_id_away", "team_name_away",
	"fga_home", "fgm_home", "fta_home", "oreb_home", "dreb_home", "tov_home", "pts_home",
	"fga_away", "fgm_away", "fta_away", "oreb_away", "dreb_away", "tov_away", "pts_away",
	"plus_minus_home", "plus_minus_away",
}

// Extractor reads the game table out of a snapshot SQLite file.
type Extractor struct {
	openTimeout time.Duration
}

// NewExtractor creates an extractor with the given busy timeout for opening
// the snapshot.
func NewExtractor(openTimeout time.Duration) *Extractor {
	return &Extractor{openTimeout: openTimeout}
}

// Extract opens the snapshot, validates its shape and reads every game row
// into memory. The connection is released on every exit path.
func (e *Extractor) Extract(ctx context.Context, path string) ([]models.RawGame, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(%d)", path, e.openTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, translateBusy(err, "failed to open snapshot")
	}

	if err := e.validateSchema(ctx, db); err != nil {
		return nil, err
	}

	rows, err := e.readGames(ctx, db)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, ErrNoData
	}

	log.Info().Int("rows", len(rows)).Msg("Snapshot game table extracted")
	metrics.RowsExtracted.Set(float64(len(rows)))

	return rows, nil
}

// validateSchema verifies the game table exists and reports a non-empty
// column schema.
func (e *Extractor) validateSchema(ctx context.Context, db *sql.DB) error {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?`, gameTable,
	).Scan(&count)
	if err != nil {
		return translateBusy(err, "failed to inspect snapshot schema")
	}
	if count == 0 {
		return fmt.Errorf("%w: the %q table does not exist", ErrSchemaInvalid, gameTable)
	}

	cols, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, gameTable))
	if err != nil {
		return translateBusy(err, "failed to read table info")
	}
	defer cols.Close()

	if !cols.Next() {
		if err := cols.Err(); err != nil {
			return fmt.Errorf("failed to read table info: %w", err)
		}
		return fmt.Errorf("%w: the %q table has no columns", ErrSchemaInvalid, gameTable)
	}

	return nil
}

func (e *Extractor) readGames(ctx context.Context, db *sql.DB) ([]models.RawGame, error) {
	// NULLs are scanned as empty strings; rows outside the decade window may
	// legitimately carry them, and filtering is the analytics engine's job.
	selects := make([]string, len(gameColumns))
	for i, col := range gameColumns {
		selects[i] = fmt.Sprintf("COALESCE(%s, '')", col)
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(selects, ", "), gameTable)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		// A missing column surfaces here rather than in table_info.
		if strings.Contains(err.Error(), "no such column") {
			return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
		}
		return nil, translateBusy(err, "failed to query game table")
	}
	defer rows.Close()

	var games []models.RawGame
	for rows.Next() {
		var g models.RawGame
		err := rows.Scan(
			&g.GameDate,
			&g.TeamIDHome, &g.TeamNameHome,
			&g.TeamIDAway, &g.TeamNameAway,
			&g.FGAHome, &g.FGMHome, &g.FTAHome, &g.OrebHome, &g.DrebHome, &g.TovHome, &g.PtsHome,
			&g.FGAAway, &g.FGMAway, &g.FTAAway, &g.OrebAway, &g.DrebAway, &g.TovAway, &g.PtsAway,
			&g.PlusMinusHome, &g.PlusMinusAway,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating game rows: %w", err)
	}

	return games, nil
}

// translateBusy turns SQLite lock contention into ErrStoreBusy so callers can
// tell a transient condition from a broken snapshot.
func translateBusy(err error, msg string) error {
	if strings.Contains(err.Error(), "database is locked") {
		return fmt.Errorf("%w: %v", ErrStoreBusy, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
