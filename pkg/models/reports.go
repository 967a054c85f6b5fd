package models

import (
	"time"
)

// SourceType identifies where a report or item originated.
type SourceType string

const (
	SourceTypeMilitary SourceType = "military"
	SourceTypeSocial   SourceType = "social"
	SourceTypeNews     SourceType = "news"
)

// Location is a named place with optional coordinates and grid reference.
type Location struct {
	Name string   `json:"name"`
	Lat  *float64 `json:"lat,omitempty"`
	Lon  *float64 `json:"lon,omitempty"`
	Grid string   `json:"grid,omitempty"`
}

// MilitaryReport is a primary, authoritative report from a unit.
type MilitaryReport struct {
	ID         string     `json:"id"`
	SourceType SourceType `json:"sourceType"`
	Unit       string     `json:"unit"`
	Channel    string     `json:"channel"`
	ReportedAt string     `json:"reportedAt"`
	Location   Location   `json:"location"`
	Text       string     `json:"text"`
	Confidence float64    `json:"confidence"`
}

// PublicItem is a social or news item collected as OSINT.
type PublicItem struct {
	ID                  string     `json:"id"`
	SourceType          SourceType `json:"sourceType"`
	Platform            string     `json:"platform,omitempty"`
	PublisherType       string     `json:"publisherType,omitempty"`
	AuthorType          string     `json:"authorType,omitempty"`
	PostedAt            string     `json:"postedAt"`
	ClaimedLocationText string     `json:"claimedLocationText,omitempty"`
	Headline            string     `json:"headline,omitempty"`
	Text                string     `json:"text"`
	Media               []string   `json:"media,omitempty"`
	RawURL              string     `json:"rawUrl"`
}

// DisplayText returns the headline when present, the body otherwise.
func (p PublicItem) DisplayText() string {
	if p.Headline != "" {
		return p.Headline
	}
	return p.Text
}

// DisplayLocation returns the claimed location, or "Unknown".
func (p PublicItem) DisplayLocation() string {
	if p.ClaimedLocationText != "" {
		return p.ClaimedLocationText
	}
	return "Unknown"
}

// ParseTimestamp parses an ISO-8601 timestamp as stored in the seed.
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// MilitaryIDPrefix marks evidence ids that reference military reports.
const MilitaryIDPrefix = "MIL-"
