package application

import (
	"fmt"
	"time"
)

const releaseDateLayout = "Monday, January 2, 2006"

// ReleaseDate renders the report heading date in en-US long form.
func ReleaseDate(now time.Time) string {
	return now.Format(releaseDateLayout)
}

// RoundMinutes rounds m to the nearest multiple of base, halves up.
// The result may be 60 or more; callers carry it into the hour.
func RoundMinutes(m, base int) int {
	if base <= 0 {
		return m
	}
	return (m + base/2) / base * base
}

// NextRoundedTime returns now+minutesAhead with the minute rounded to the
// nearest roundTo, formatted as "H:MM <label>".
func NextRoundedTime(now time.Time, minutesAhead, roundTo int, label string) string {
	t := now.Add(time.Duration(minutesAhead) * time.Minute)

	hour := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	t = hour.Add(time.Duration(RoundMinutes(t.Minute(), roundTo)) * time.Minute)

	out := fmt.Sprintf("%d:%02d", t.Hour(), t.Minute())
	if label != "" {
		out += " " + label
	}
	return out
}

// ReleaseNotice is the optional closing line announcing the release time.
func ReleaseNotice(now time.Time, minutesAhead, roundTo int, label string) string {
	return fmt.Sprintf("Will :big-red-button: in approx. %dmins at %s if no objections.",
		minutesAhead, NextRoundedTime(now, minutesAhead, roundTo, label))
}
