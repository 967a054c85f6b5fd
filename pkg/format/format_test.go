package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatters(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"timestamp", Timestamp, "2024-03-15T06:42:00Z", "06:42:00Z"},
		{"timestamp offset", Timestamp, "2024-03-15T08:42:00+02:00", "06:42:00Z"},
		{"date", Date, "2024-03-15T06:42:00Z", "15 Mar 2024"},
		{"date only", Date, "2024-03-05", "05 Mar 2024"},
		{"datetime", DateTime, "2024-03-15T06:42:00Z", "15 Mar 2024 06:42:00"},
		{"unparseable", Timestamp, "yesterday", "yesterday"},
		{"empty", Date, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(tt.in))
		})
	}
}

func TestRelative(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "3 minutes ago", Relative("2024-03-15T11:57:00Z", now))
	assert.Equal(t, "2 hours from now", Relative("2024-03-15T14:00:00Z", now))
	assert.Equal(t, "not a date", Relative("not a date", now))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "Ñañ...", Truncate("Ñañaña", 3))
}
