package domain

import (
	"fmt"
	"time"
)

type WindowKind string

const (
	WindowRolling     WindowKind = "rolling"
	WindowToday       WindowKind = "today"
	WindowWeekToDate  WindowKind = "week_to_date"
	WindowMonthToDate WindowKind = "month_to_date"
	WindowAllTime     WindowKind = "all_time"
)

// Window is a typed query time range. Rolling windows are "now minus N
// days"; calendar windows snap to day, ISO week, or month boundaries.
// The window itself never appears in SQL text, only its resolved bounds.
type Window struct {
	Kind WindowKind
	Days int
}

func LastNDays(days int) Window {
	if days < 1 {
		days = 1
	}
	return Window{Kind: WindowRolling, Days: days}
}

func Today() Window       { return Window{Kind: WindowToday} }
func WeekToDate() Window  { return Window{Kind: WindowWeekToDate} }
func MonthToDate() Window { return Window{Kind: WindowMonthToDate} }
func AllTime() Window     { return Window{Kind: WindowAllTime} }

// Bounds resolves the window against the evaluation time. bounded is
// false for the all-time window, in which case start and end are zero.
func (w Window) Bounds(now time.Time) (start, end time.Time, bounded bool) {
	now = now.UTC()
	switch w.Kind {
	case WindowToday:
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return start, now, true
	case WindowWeekToDate:
		// ISO week: Monday is day one.
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		start = day.AddDate(0, 0, -(weekday - 1))
		return start, now, true
	case WindowMonthToDate:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, now, true
	case WindowAllTime:
		return time.Time{}, time.Time{}, false
	default:
		return now.AddDate(0, 0, -w.Days), now, true
	}
}

// CacheKey identifies the window in cache keys.
func (w Window) CacheKey() string {
	switch w.Kind {
	case WindowToday:
		return "today"
	case WindowWeekToDate:
		return "wtd"
	case WindowMonthToDate:
		return "mtd"
	case WindowAllTime:
		return "all"
	default:
		return fmt.Sprintf("%dd", w.Days)
	}
}
