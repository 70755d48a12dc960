package display

import (
	"fmt"
	"strconv"
	"time"

	"github.com/benoctopus/titan/internal/models"
)

// WeightUnit is appended to every displayed weight
const WeightUnit = "kg"

// FormatWeight renders a weight without trailing zeros, e.g. 100 or 102.5
func FormatWeight(weight float64) string {
	return strconv.FormatFloat(weight, 'f', -1, 64)
}

// FormatSet renders a set as "100kg × 8"
func FormatSet(weight float64, reps int) string {
	return fmt.Sprintf("%s%s × %d", FormatWeight(weight), WeightUnit, reps)
}

// FormatDate renders a stored YYYY-MM-DD date as Today, Yesterday, or "Mon, Oct 12"
func FormatDate(date string, now time.Time) string {
	day, err := time.ParseInLocation(models.DateLayout, date, now.Location())
	if err != nil {
		return date
	}

	today := now.Format(models.DateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(models.DateLayout)
	switch date {
	case today:
		return "Today"
	case yesterday:
		return "Yesterday"
	}

	if day.Year() != now.Year() {
		return day.Format("Mon, Jan 2 2006")
	}
	return day.Format("Mon, Jan 2")
}

// FormatDuration renders the length of a session as "45m" or "1h 05m"
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return "<1m"
	}
	d = d.Round(time.Minute)
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %02dm", hours, minutes)
}

// FormatTimeAgo formats t relative to now as a human-readable "time ago" string
func FormatTimeAgo(t, now time.Time) string {
	duration := now.Sub(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		return plural(int(duration.Minutes()), "min")
	case duration < 24*time.Hour:
		return plural(int(duration.Hours()), "hour")
	case duration < 7*24*time.Hour:
		return plural(int(duration.Hours()/24), "day")
	case duration < 30*24*time.Hour:
		return plural(int(duration.Hours()/24/7), "week")
	case duration < 365*24*time.Hour:
		return plural(int(duration.Hours()/24/30), "month")
	}
	return plural(int(duration.Hours()/24/365), "year")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// Truncate shortens s to at most maxLen runes, marking the cut with "..."
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
