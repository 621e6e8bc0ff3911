package printer

import (
	"fmt"
	"time"
)

// TimeAgo returns a human-readable relative time string in UTC.
// Examples: "5 seconds ago (UTC)", "2 minutes ago (UTC)", "3 hours ago (UTC)".
func TimeAgo(t time.Time) string {
	return timeAgo(t, time.Now())
}

func timeAgo(t, now time.Time) string {
	diff := now.UTC().Sub(t.UTC())
	if diff < 0 {
		return "in the future (UTC)"
	}

	unit, n := "second", int(diff.Seconds())
	switch {
	case diff >= 24*time.Hour:
		unit, n = "day", int(diff.Hours()/24)
	case diff >= time.Hour:
		unit, n = "hour", int(diff.Hours())
	case diff >= time.Minute:
		unit, n = "minute", int(diff.Minutes())
	}

	if n == 1 {
		return fmt.Sprintf("1 %s ago (UTC)", unit)
	}
	return fmt.Sprintf("%d %ss ago (UTC)", n, unit)
}

// FormatTimestamp returns a formatted timestamp string in UTC.
// Format: "2006-01-02 15:04:05 UTC".
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

// FormatOptionalTimestamp is FormatTimestamp with "-" for missing times.
func FormatOptionalTimestamp(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return FormatTimestamp(*t)
}

// FormatDate returns the day of a time.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}
