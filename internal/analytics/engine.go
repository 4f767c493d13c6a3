// Package analytics derives possession-based efficiency ratings from raw
// game rows and aggregates them per team per season.
package analytics

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"nba_decade/backend/internal/models"
)

// ErrTransform indicates a malformed snapshot row (unparseable date or
// non-numeric stat). The whole recompute aborts; partial analytics are never
// persisted.
var ErrTransform = errors.New("malformed snapshot row")

// dateFormats covers the layouts the snapshot has been observed to use for
// game_date.
var dateFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02",
}

// parsedGame is a raw row with its date resolved, retained for the decade
// window.
type parsedGame struct {
	date time.Time
	raw  *models.RawGame
}

// team accumulates per-game metrics for one discovered team.
type team struct {
	id         string
	name       string
	conference string
	games      []teamGame
}

type teamGame struct {
	date   time.Time
	metric models.GameMetric
}

// sideStats is one perspective of a game row. The home and away column sets
// feed identical algebra, so every formula below works on a pair of these.
type sideStats struct {
	fga       float64
	fgm       float64
	fta       float64
	oreb      float64
	dreb      float64
	tov       float64
	pts       float64
	plusMinus float64
}

// Compute runs the full analytics pass: date filtering, team discovery,
// per-game ratings, season aggregation and season-relative deltas.
func Compute(rows []models.RawGame) (models.SeasonMap, error) {
	filtered, err := filterDecade(rows)
	if err != nil {
		return nil, err
	}

	teams := discoverTeams(filtered)
	log.Debug().
		Int("games", len(filtered)).
		Int("teams", len(teams)).
		Msg("Decade window filtered")

	for _, t := range teams {
		if err := computeGameMetrics(t, filtered); err != nil {
			return nil, err
		}
	}

	seasons := aggregateSeasons(teams)
	applyRelativeRatings(seasons)

	return seasons, nil
}

// filterDecade parses every row's date and retains rows inside the decade
// window. A date that fails to parse anywhere in the table aborts the run.
func filterDecade(rows []models.RawGame) ([]parsedGame, error) {
	var filtered []parsedGame
	for i := range rows {
		d, err := parseDate(rows[i].GameDate)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrTransform, i, err)
		}
		if inDecade(d) {
			filtered = append(filtered, parsedGame{date: d, raw: &rows[i]})
		}
	}
	return filtered, nil
}

// discoverTeams finds every distinct home-side team in the filtered window,
// in first-appearance order, tagging each with its conference. Teams outside
// both membership sets are dropped silently.
func discoverTeams(games []parsedGame) []*team {
	var teams []*team
	seen := make(map[string]bool)

	for _, g := range games {
		id := g.raw.TeamIDHome
		if seen[id] {
			continue
		}
		seen[id] = true

		conference, ok := conferenceOf(g.raw.TeamNameHome)
		if !ok {
			continue
		}

		teams = append(teams, &team{
			id:         id,
			name:       g.raw.TeamNameHome,
			conference: conference,
		})
	}

	return teams
}

// computeGameMetrics fills in per-game ratings for every game the team played
// inside the window, from whichever side it played.
func computeGameMetrics(t *team, games []parsedGame) error {
	for _, g := range games {
		var home bool
		switch t.id {
		case g.raw.TeamIDHome:
			home = true
		case g.raw.TeamIDAway:
			home = false
		default:
			continue
		}

		own, err := sideOf(g.raw, home)
		if err != nil {
			return err
		}
		opp, err := sideOf(g.raw, !home)
		if err != nil {
			return err
		}

		ownPoss := possessions(own, opp)
		oppPoss := possessions(opp, own)

		offensive := 100 * own.pts / ownPoss
		defensive := 100 * opp.pts / oppPoss

		t.games = append(t.games, teamGame{
			date: g.date,
			metric: models.GameMetric{
				OffensiveRating: offensive,
				DefensiveRating: defensive,
				NetRating:       offensive - defensive,
				Possessions:     (ownPoss + oppPoss) / 2,
				PlusMinus:       own.plusMinus,
			},
		})
	}
	return nil
}

// possessions estimates ball-control events for one side. The rebound
// denominator is floored at 1 to guard the division when a game records no
// rebounds at all.
func possessions(own, opp sideStats) float64 {
	orbDenom := math.Max(own.oreb+opp.dreb, 1)
	orbPct := own.oreb / orbDenom
	return own.fga + 0.4*own.fta - 1.07*orbPct*(own.fga-own.fgm) + own.tov
}

// aggregateSeasons buckets each team's games into the season calendar and
// averages the metrics of every non-empty bucket. Seasons with no qualifying
// teams get no entry.
func aggregateSeasons(teams []*team) models.SeasonMap {
	seasons := make(models.SeasonMap)

	for _, w := range seasonWindows {
		for _, t := range teams {
			var sum models.GameMetric
			var count int
			for _, g := range t.games {
				if !w.Contains(g.date) {
					continue
				}
				sum.OffensiveRating += g.metric.OffensiveRating
				sum.DefensiveRating += g.metric.DefensiveRating
				sum.NetRating += g.metric.NetRating
				sum.PlusMinus += g.metric.PlusMinus
				count++
			}
			if count == 0 {
				continue
			}

			n := float64(count)
			seasons[w.ID] = append(seasons[w.ID], models.TeamRating{
				Team:                   t.name,
				Conference:             t.conference,
				AverageOffensiveRating: sum.OffensiveRating / n,
				AverageDefensiveRating: sum.DefensiveRating / n,
				AverageNetRating:       sum.NetRating / n,
				AveragePlusMinus:       sum.PlusMinus / n,
			})
		}
	}

	return seasons
}

// applyRelativeRatings mean-centers each season's ratings across the teams
// present in that season.
func applyRelativeRatings(seasons models.SeasonMap) {
	for _, ratings := range seasons {
		var offMean, defMean, netMean float64
		for _, r := range ratings {
			offMean += r.AverageOffensiveRating
			defMean += r.AverageDefensiveRating
			netMean += r.AverageNetRating
		}
		n := float64(len(ratings))
		offMean /= n
		defMean /= n
		netMean /= n

		for i := range ratings {
			ratings[i].RelativeOffensiveRating = ratings[i].AverageOffensiveRating - offMean
			ratings[i].RelativeDefensiveRating = ratings[i].AverageDefensiveRating - defMean
			ratings[i].RelativeNetRating = ratings[i].AverageNetRating - netMean
		}
	}
}

// sideOf parses one perspective's stat columns out of a raw row.
func sideOf(g *models.RawGame, home bool) (sideStats, error) {
	type field struct {
		name string
		raw  string
		dest *float64
	}

	var s sideStats
	var fields []field
	if home {
		fields = []field{
			{"fga_home", g.FGAHome, &s.fga},
			{"fgm_home", g.FGMHome, &s.fgm},
			{"fta_home", g.FTAHome, &s.fta},
			{"oreb_home", g.OrebHome, &s.oreb},
			{"dreb_home", g.DrebHome, &s.dreb},
			{"tov_home", g.TovHome, &s.tov},
			{"pts_home", g.PtsHome, &s.pts},
			{"plus_minus_home", g.PlusMinusHome, &s.plusMinus},
		}
	} else {
		fields = []field{
			{"fga_away", g.FGAAway, &s.fga},
			{"fgm_away", g.FGMAway, &s.fgm},
			{"fta_away", g.FTAAway, &s.fta},
			{"oreb_away", g.OrebAway, &s.oreb},
			{"dreb_away", g.DrebAway, &s.dreb},
			{"tov_away", g.TovAway, &s.tov},
			{"pts_away", g.PtsAway, &s.pts},
			{"plus_minus_away", g.PlusMinusAway, &s.plusMinus},
		}
	}

	for _, f := range fields {
		v, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return sideStats{}, fmt.Errorf("%w: game %s: column %s: %q is not numeric",
				ErrTransform, g.GameDate, f.name, f.raw)
		}
		*f.dest = v
	}

	return s, nil
}

// parseDate resolves the snapshot's game_date formats.
func parseDate(value string) (time.Time, error) {
	for _, layout := range dateFormats {
		if d, err := time.Parse(layout, value); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date %q", value)
}
