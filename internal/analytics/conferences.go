package analytics

// Conference names as served to consumers. The store abbreviates them to
// their first letter.
const (
	ConferenceWestern = "Western"
	ConferenceEastern = "Eastern"
)

// Static conference membership keyed by the team names appearing in the
// dataset. Relocated or renamed franchises appear under every name the
// dataset uses for them ("New Orleans Hornets" and "New Orleans Pelicans" are
// distinct entries sharing a team identifier).
var westernConferenceTeams = map[string]struct{}{
	"Portland Trail Blazers": {},
	"Los Angeles Lakers":     {},
	"Dallas Mavericks":       {},
	"Golden State Warriors":  {},
	"Denver Nuggets":         {},
	"Los Angeles Clippers":   {},
	"San Antonio Spurs":      {},
	"Minnesota Timberwolves": {},
	"Memphis Grizzlies":      {},
	"New Orleans Hornets":    {},
	"Phoenix Suns":           {},
	"Oklahoma City Thunder":  {},
	"Utah Jazz":              {},
	"Houston Rockets":        {},
	"Sacramento Kings":       {},
	"LA Clippers":            {},
	"New Orleans Pelicans":   {},
}

var easternConferenceTeams = map[string]struct{}{
	"Cleveland Cavaliers": {},
	"Atlanta Hawks":       {},
	"Miami Heat":          {},
	"Boston Celtics":      {},
	"Orlando Magic":       {},
	"Toronto Raptors":     {},
	"Chicago Bulls":       {},
	"New Jersey Nets":     {},
	"Detroit Pistons":     {},
	"Charlotte Bobcats":   {},
	"Philadelphia 76ers":  {},
	"Indiana Pacers":      {},
	"Washington Wizards":  {},
	"New York Knicks":     {},
	"Milwaukee Bucks":     {},
	"Brooklyn Nets":       {},
	"Charlotte Hornets":   {},
}

// conferenceOf returns the conference for a team name. Teams absent from both
// membership sets are dropped from the analysis, not treated as errors.
func conferenceOf(name string) (string, bool) {
	if _, ok := westernConferenceTeams[name]; ok {
		return ConferenceWestern, true
	}
	if _, ok := easternConferenceTeams[name]; ok {
		return ConferenceEastern, true
	}
	return "", false
}
