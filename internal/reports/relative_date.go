package reports

import (
	"fmt"
	"time"
)

// RelativeDate formats the age of a date against a fixed reference
// instant. Thresholds sit on calendar-day and whole-hour boundaries so
// output is deterministic for a pinned reference date:
//
//	same day, <1h   "Just now"
//	same day, 1h    "1 hour ago"
//	same day        "N hours ago"
//	1 day ago       "Yesterday"
//	<7 days         "N days ago"
//	<30 days        "N weeks ago" (floor days/7)
//	otherwise       an absolute date
func RelativeDate(date, ref time.Time) string {
	if date.After(ref) {
		return "Just now"
	}

	days := calendarDaysBetween(date, ref)
	switch {
	case days == 0:
		hours := int(ref.Sub(date).Hours())
		switch {
		case hours < 1:
			return "Just now"
		case hours == 1:
			return "1 hour ago"
		default:
			return fmt.Sprintf("%d hours ago", hours)
		}
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		weeks := days / 7
		if weeks == 1 {
			return "1 week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	default:
		return date.Format("Jan 2, 2006")
	}
}

// calendarDaysBetween counts whole calendar days from date to ref,
// comparing day components rather than elapsed duration.
func calendarDaysBetween(date, ref time.Time) int {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	r := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	return int(r.Sub(d).Hours() / 24)
}
