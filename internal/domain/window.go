package domain

import "time"

// TimeWindow identifies a calendar bucket: a whole year, a month, a single
// day, or an ISO-style week. Day requires month; week excludes month and day.
type TimeWindow struct {
	Year  int
	Month int // 1-12, 0 when unset
	Day   int // 1-31, 0 when unset
	Week  int // 1-53, 0 when unset
}

// Validate rejects windows that do not name exactly one calendar bucket: a
// week combined with month or day, a day outside the month's length, or week
// 53 in a year whose ISO calendar only has 52 weeks.
func (w TimeWindow) Validate() error {
	if w.Week != 0 && (w.Month != 0 || w.Day != 0) {
		return NewValidationError(CodeInvalidDate)
	}
	if w.Week == 53 && isoWeeksInYear(w.Year) != 53 {
		return NewValidationError(CodeInvalidWeek)
	}
	if w.Week < 0 || w.Week > 53 {
		return NewValidationError(CodeInvalidWeek)
	}
	if w.Day != 0 {
		if w.Month == 0 {
			return NewValidationError(CodeInvalidDay)
		}
		if w.Day < 1 || w.Day > daysInMonth(w.Year, w.Month) {
			return NewValidationError(CodeInvalidDay)
		}
	}
	if w.Month != 0 && (w.Month < 1 || w.Month > 12) {
		return NewValidationError(CodeInvalidDate)
	}
	return nil
}

// Range resolves the window to its first and last calendar day, both
// inclusive, at midnight UTC. Week 1 is the week containing January 4th.
func (w TimeWindow) Range() (start, end time.Time) {
	switch {
	case w.Week != 0:
		jan4 := time.Date(w.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
		monday := jan4.AddDate(0, 0, -mondayOffset(jan4))
		start = monday.AddDate(0, 0, (w.Week-1)*7)
		end = start.AddDate(0, 0, 6)
	case w.Day != 0 && w.Month != 0:
		start = time.Date(w.Year, time.Month(w.Month), w.Day, 0, 0, 0, 0, time.UTC)
		end = start
	case w.Month != 0:
		start = time.Date(w.Year, time.Month(w.Month), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0).AddDate(0, 0, -1)
	default:
		start = time.Date(w.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(w.Year, time.December, 31, 0, 0, 0, 0, time.UTC)
	}
	return start, end
}

// mondayOffset is the number of days since the most recent Monday.
func mondayOffset(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// isoWeeksInYear is 52 or 53. December 28th always falls in the last ISO
// week of its year.
func isoWeeksInYear(year int) int {
	_, week := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return week
}

func daysInMonth(year, month int) int {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 1, -1).Day()
}
