// Package format renders seed timestamps and text for display.
//
// Every formatter takes the raw ISO-8601 string from the seed and returns it
// unchanged when it cannot be parsed.
package format

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ekaya-inc/clearbrief/pkg/models"
)

const (
	timestampLayout = "15:04:05Z"
	dateLayout      = "02 Jan 2006"
	dateTimeLayout  = "02 Jan 2006 15:04:05"
)

// Timestamp formats s as a Zulu clock time, e.g. "06:42:00Z".
func Timestamp(s string) string {
	return layout(s, timestampLayout)
}

// Date formats s as "15 Mar 2024".
func Date(s string) string {
	return layout(s, dateLayout)
}

// DateTime formats s as "15 Mar 2024 06:42:00".
func DateTime(s string) string {
	return layout(s, dateTimeLayout)
}

// Relative describes s relative to now, e.g. "3 hours ago".
func Relative(s string, now time.Time) string {
	t, ok := models.ParseTimestamp(s)
	if !ok {
		return s
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func layout(s, l string) string {
	t, ok := models.ParseTimestamp(s)
	if !ok {
		return s
	}
	return t.UTC().Format(l)
}

// Truncate keeps the first max runes of s and marks the cut with "...".
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
