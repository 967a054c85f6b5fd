package services

import (
	"math"
	"strings"

	"github.com/ekaya-inc/clearbrief/pkg/models"
)

// VerifiedPercentage is the rounded share of results labelled Verified, or
// 0 when there are no results.
func VerifiedPercentage(results []models.VerificationResult) int {
	if len(results) == 0 {
		return 0
	}
	verified := 0
	for _, v := range results {
		if v.Label == models.LabelVerified {
			verified++
		}
	}
	return int(math.Round(100 * float64(verified) / float64(len(results))))
}

// LabelCounts tallies verification results by label.
type LabelCounts struct {
	Verified   int `json:"verified"`
	Unverified int `json:"unverified"`
	Suspicious int `json:"suspicious"`
}

// CountLabels tallies results by their stored label.
func CountLabels(results []models.VerificationResult) LabelCounts {
	var c LabelCounts
	for _, v := range results {
		switch v.Label {
		case models.LabelVerified:
			c.Verified++
		case models.LabelUnverified:
			c.Unverified++
		case models.LabelSuspicious:
			c.Suspicious++
		}
	}
	return c
}

// BucketConfidence places a score in the high, medium or low bucket using
// the same thresholds as verification labels.
func BucketConfidence(score float64) models.ConfidenceBucket {
	return models.BucketForConfidence(score)
}

// ConfidenceDistribution counts scores per bucket.
type ConfidenceDistribution struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
	Total  int `json:"total"`
}

// Percent returns the share of bucket b, 0 for an empty distribution.
func (d ConfidenceDistribution) Percent(b models.ConfidenceBucket) float64 {
	if d.Total == 0 {
		return 0
	}
	n := 0
	switch b {
	case models.BucketHigh:
		n = d.High
	case models.BucketMedium:
		n = d.Medium
	case models.BucketLow:
		n = d.Low
	}
	return 100 * float64(n) / float64(d.Total)
}

// Distribute buckets the final confidence of every result.
func Distribute(results []models.VerificationResult) ConfidenceDistribution {
	d := ConfidenceDistribution{Total: len(results)}
	for _, v := range results {
		switch BucketConfidence(v.FinalConfidence) {
		case models.BucketHigh:
			d.High++
		case models.BucketMedium:
			d.Medium++
		default:
			d.Low++
		}
	}
	return d
}

// IsMilitaryOnly reports whether every evidence id of r references a
// military report. Relations without evidence qualify.
func IsMilitaryOnly(r models.Relation) bool {
	for _, ev := range r.Evidence {
		if !strings.HasPrefix(ev, models.MilitaryIDPrefix) {
			return false
		}
	}
	return true
}

// MilitaryRelations keeps the relations backed only by military reports.
func MilitaryRelations(relations []models.Relation) []models.Relation {
	out := make([]models.Relation, 0, len(relations))
	for _, r := range relations {
		if IsMilitaryOnly(r) {
			out = append(out, r)
		}
	}
	return out
}

// SourceDetail resolves a cited id to the report or item behind it.
type SourceDetail struct {
	ID         string                   `json:"id"`
	Kind       string                   `json:"kind"` // "military", "public" or "unknown"
	Text       string                   `json:"text,omitempty"`
	Unit       string                   `json:"unit,omitempty"`
	Time       string                   `json:"time,omitempty"`
	Location   string                   `json:"location,omitempty"`
	Confidence *float64                 `json:"confidence,omitempty"`
	Label      models.VerificationLabel `json:"label,omitempty"`
}

// ResolveSources looks up each id among the project's military reports and
// public items, in that order.
func ResolveSources(p *models.Project, ids []string) []SourceDetail {
	out := make([]SourceDetail, 0, len(ids))
	for _, id := range ids {
		out = append(out, resolveSource(p, id))
	}
	return out
}

func resolveSource(p *models.Project, id string) SourceDetail {
	for _, r := range p.MilitaryReports {
		if r.ID == id {
			conf := r.Confidence
			return SourceDetail{
				ID:         id,
				Kind:       string(models.SourceTypeMilitary),
				Text:       r.Text,
				Unit:       r.Unit,
				Time:       r.ReportedAt,
				Location:   r.Location.Name,
				Confidence: &conf,
			}
		}
	}
	for _, item := range p.PublicItems {
		if item.ID == id {
			d := SourceDetail{
				ID:       id,
				Kind:     "public",
				Text:     item.Text,
				Time:     item.PostedAt,
				Location: item.DisplayLocation(),
			}
			if v, ok := p.VerificationFor(id); ok {
				conf := v.FinalConfidence
				d.Confidence = &conf
				d.Label = v.Label
			}
			return d
		}
	}
	return SourceDetail{ID: id, Kind: "unknown"}
}

func percent(score float64) int {
	return int(math.Round(score * 100))
}
