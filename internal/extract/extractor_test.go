package extract

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSnapshotSchema = `
	CREATE TABLE game (
		game_date TEXT,
		team_id_home TEXT, team_name_home TEXT,
		team_id_away TEXT, team_name_away TEXT,
		fga_home TEXT, fgm_home TEXT, fta_home TEXT,
		oreb_home TEXT, dreb_home TEXT, tov_home TEXT, pts_home TEXT,
		fga_away TEXT, fgm_away TEXT, fta_away TEXT,
		oreb_away TEXT, dreb_away TEXT, tov_away TEXT, pts_away TEXT,
		plus_minus_home TEXT, plus_minus_away TEXT
	)
`

// buildSnapshot creates a snapshot file in a temp dir and returns its path.
// The setup callback receives the open handle to shape the fixture.
func buildSnapshot(t *testing.T, setup func(db *sql.DB)) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "snapshot.sqlite")
	db, err := sql.Open("sqlite", "file:"+path)
	require.NoError(t, err, "Failed to create snapshot fixture")
	defer db.Close()

	setup(db)
	return path
}

func insertGame(t *testing.T, db *sql.DB, date string, overrides map[string]string) {
	t.Helper()

	values := map[string]string{
		"game_date":       date,
		"team_id_home":    "1610612747",
		"team_name_home":  "Los Angeles Lakers",
		"team_id_away":    "1610612738",
		"team_name_away":  "Boston Celtics",
		"fga_home":        "80",
		"fgm_home":        "40",
		"fta_home":        "20",
		"oreb_home":       "10",
		"dreb_home":       "30",
		"tov_home":        "12",
		"pts_home":        "100",
		"fga_away":        "85",
		"fgm_away":        "35",
		"fta_away":        "25",
		"oreb_away":       "8",
		"dreb_away":       "32",
		"tov_away":        "14",
		"pts_away":        "95",
		"plus_minus_home": "5",
		"plus_minus_away": "-5",
	}
	for k, v := range overrides {
		values[k] = v
	}

	cols := make([]string, 0, len(values))
	placeholders := make([]string, 0, len(values))
	args := make([]any, 0, len(values))
	for k, v := range values {
		cols = append(cols, k)
		placeholders = append(placeholders, "?")
		args = append(args, v)
	}

	query := fmt.Sprintf("INSERT INTO game (%s) VALUES (%s)",
		strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	_, err := db.Exec(query, args...)
	require.NoError(t, err)
}

func TestExtractReadsGameRows(t *testing.T) {
	path := buildSnapshot(t, func(db *sql.DB) {
		_, err := db.Exec(testSnapshotSchema)
		require.NoError(t, err)
		insertGame(t, db, "2015-01-15 00:00:00", nil)
		insertGame(t, db, "2015-02-10 00:00:00", map[string]string{"pts_home": "112"})
	})

	games, err := NewExtractor(30*time.Second).Extract(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, games, 2)

	assert.Equal(t, "2015-01-15 00:00:00", games[0].GameDate)
	assert.Equal(t, "Los Angeles Lakers", games[0].TeamNameHome)
	assert.Equal(t, "1610612738", games[0].TeamIDAway)
	assert.Equal(t, "100", games[0].PtsHome)
	assert.Equal(t, "112", games[1].PtsHome)
	assert.Equal(t, "-5", games[1].PlusMinusAway)
}

func TestExtractNullColumnsBecomeEmptyStrings(t *testing.T) {
	path := buildSnapshot(t, func(db *sql.DB) {
		_, err := db.Exec(testSnapshotSchema)
		require.NoError(t, err)
		_, err = db.Exec(`INSERT INTO game (game_date) VALUES ('2003-04-01 00:00:00')`)
		require.NoError(t, err)
	})

	games, err := NewExtractor(30*time.Second).Extract(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, games, 1)

	// Sparse rows still extract; downstream filtering decides their fate.
	assert.Equal(t, "2003-04-01 00:00:00", games[0].GameDate)
	assert.Empty(t, games[0].TeamNameHome)
	assert.Empty(t, games[0].FGAHome)
}

func TestExtractMissingTable(t *testing.T) {
	path := buildSnapshot(t, func(db *sql.DB) {
		_, err := db.Exec(`CREATE TABLE player (id INTEGER)`)
		require.NoError(t, err)
	})

	_, err := NewExtractor(30*time.Second).Extract(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaInvalid)
}

func TestExtractMissingColumn(t *testing.T) {
	path := buildSnapshot(t, func(db *sql.DB) {
		_, err := db.Exec(`CREATE TABLE game (game_date TEXT, team_id_home TEXT)`)
		require.NoError(t, err)
		_, err = db.Exec(`INSERT INTO game VALUES ('2015-01-15', '1')`)
		require.NoError(t, err)
	})

	_, err := NewExtractor(30*time.Second).Extract(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaInvalid)
}

func TestExtractLockedSnapshot(t *testing.T) {
	path := buildSnapshot(t, func(db *sql.DB) {
		_, err := db.Exec(testSnapshotSchema)
		require.NoError(t, err)
		insertGame(t, db, "2015-01-15 00:00:00", nil)
	})

	// Hold an exclusive transaction on a second connection for the duration
	// of the extract attempt.
	holder, err := sql.Open("sqlite", "file:"+path)
	require.NoError(t, err)
	defer holder.Close()

	ctx := context.Background()
	conn, err := holder.Conn(ctx)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.ExecContext(ctx, "BEGIN EXCLUSIVE")
	require.NoError(t, err)
	defer conn.ExecContext(ctx, "ROLLBACK")

	_, err = NewExtractor(50*time.Millisecond).Extract(ctx, path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreBusy, "Lock contention should surface as the busy sentinel")
}

func TestExtractEmptyTable(t *testing.T) {
	path := buildSnapshot(t, func(db *sql.DB) {
		_, err := db.Exec(testSnapshotSchema)
		require.NoError(t, err)
	})

	_, err := NewExtractor(30*time.Second).Extract(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoData)
}
