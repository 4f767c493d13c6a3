package analytics

import "time"

// SeasonWindow is one entry of the static season calendar.
type SeasonWindow struct {
	ID    string
	Start time.Time
	End   time.Time
}

// The decade filter applied before any per-season bucketing. Start is
// inclusive, end is exclusive.
var (
	filterStart = date(2009, 10, 27)
	filterEnd   = date(2019, 10, 22)
)

// seasonWindows is the fixed calendar of the ten seasons in the dataset
// window. Bucketing tests each window independently with inclusive start and
// end dates.
var seasonWindows = []SeasonWindow{
	{"2009-10", date(2009, 10, 27), date(2010, 6, 17)},
	{"2010-11", date(2010, 10, 26), date(2011, 6, 12)},
	{"2011-12", date(2011, 12, 25), date(2012, 6, 21)},
	{"2012-13", date(2012, 10, 30), date(2013, 6, 20)},
	{"2013-14", date(2013, 10, 29), date(2014, 6, 15)},
	{"2014-15", date(2014, 10, 28), date(2015, 6, 16)},
	{"2015-16", date(2015, 10, 27), date(2016, 6, 19)},
	{"2016-17", date(2016, 10, 25), date(2017, 6, 12)},
	{"2017-18", date(2017, 10, 17), date(2018, 6, 8)},
	{"2018-19", date(2018, 10, 16), date(2019, 6, 13)},
}

// SeasonWindows returns a copy of the static season calendar.
func SeasonWindows() []SeasonWindow {
	windows := make([]SeasonWindow, len(seasonWindows))
	copy(windows, seasonWindows)
	return windows
}

// Contains reports whether d falls within the window, inclusive of both the
// start and the end date.
func (w SeasonWindow) Contains(d time.Time) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// inDecade reports whether d falls within [filterStart, filterEnd).
func inDecade(d time.Time) bool {
	return !d.Before(filterStart) && d.Before(filterEnd)
}
