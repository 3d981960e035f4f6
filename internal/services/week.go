package services

import "time"

// ReportZone is the fixed UTC+8 offset reports are bucketed in.
var ReportZone = time.FixedZone("UTC+8", 8*60*60)

// WeekWindow is the half-open span [Start, End) from Monday 00:00 to the
// following Monday 00:00 in ReportZone.
type WeekWindow struct {
	Start time.Time
	End   time.Time
}

func CurrentWeek(now time.Time) WeekWindow {
	local := now.In(ReportZone)
	offset := (int(local.Weekday()) + 6) % 7
	start := time.Date(local.Year(), local.Month(), local.Day()-offset, 0, 0, 0, 0, ReportZone)
	return WeekWindow{Start: start, End: start.AddDate(0, 0, 7)}
}

func (w WeekWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// LastDay is the Sunday that closes the window.
func (w WeekWindow) LastDay() time.Time {
	return w.End.AddDate(0, 0, -1)
}

// Label formats the window as "MM/DD - MM/DD".
func (w WeekWindow) Label() string {
	return w.Start.Format("01/02") + " - " + w.LastDay().Format("01/02")
}
