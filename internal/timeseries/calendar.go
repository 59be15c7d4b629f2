package timeseries

import "time"

// Normalize truncates t to its calendar date at midnight UTC. Every
// date stored in a Series or Frame goes through Normalize first, so
// dates coming from different sources compare equal.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// BusinessDays returns every business day in [start, end] inclusive,
// normalized and ascending. Returns nil when end precedes start.
func BusinessDays(start, end time.Time) []time.Time {
	start = Normalize(start)
	end = Normalize(end)

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if IsBusinessDay(d) {
			days = append(days, d)
		}
	}
	return days
}
