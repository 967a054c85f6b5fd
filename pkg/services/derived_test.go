package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/ekaya-inc/clearbrief/pkg/models"
)

func TestVerifiedPercentage(t *testing.T) {
	repo := newTestRepo(t)

	assert.Equal(t, 63, VerifiedPercentage(mustProject(t, repo, borderProject).VerificationResults))
	assert.Equal(t, 50, VerifiedPercentage(mustProject(t, repo, harborProject).VerificationResults))
	assert.Equal(t, 0, VerifiedPercentage(nil))
}

func TestCountLabels(t *testing.T) {
	p := mustProject(t, newTestRepo(t), borderProject)
	assert.Equal(t, LabelCounts{Verified: 5, Unverified: 2, Suspicious: 1}, CountLabels(p.VerificationResults))
}

func TestBucketConfidence(t *testing.T) {
	tests := []struct {
		score float64
		want  models.ConfidenceBucket
	}{
		{1, models.BucketHigh},
		{0.7, models.BucketHigh},
		{0.69, models.BucketMedium},
		{0.4, models.BucketMedium},
		{0.39, models.BucketLow},
		{0, models.BucketLow},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.2f", tt.score), func(t *testing.T) {
			assert.Equal(t, tt.want, BucketConfidence(tt.score))
		})
	}
}

func TestBucketConfidence_AgreesWithLabels(t *testing.T) {
	want := map[models.VerificationLabel]models.ConfidenceBucket{
		models.LabelVerified:   models.BucketHigh,
		models.LabelUnverified: models.BucketMedium,
		models.LabelSuspicious: models.BucketLow,
	}
	rapid.Check(t, func(t *rapid.T) {
		score := rapid.Float64Range(0, 1).Draw(t, "score")
		if got := BucketConfidence(score); got != want[models.LabelForConfidence(score)] {
			t.Fatalf("score %v: bucket %s disagrees with label %s", score, got, models.LabelForConfidence(score))
		}
	})
}

func TestDistribute(t *testing.T) {
	p := mustProject(t, newTestRepo(t), borderProject)

	d := Distribute(p.VerificationResults)
	assert.Equal(t, ConfidenceDistribution{High: 5, Medium: 2, Low: 1, Total: 8}, d)
	assert.InDelta(t, 62.5, d.Percent(models.BucketHigh), 0.001)
	assert.InDelta(t, 12.5, d.Percent(models.BucketLow), 0.001)

	assert.Equal(t, 0.0, ConfidenceDistribution{}.Percent(models.BucketHigh))
}

func TestIsMilitaryOnly(t *testing.T) {
	tests := []struct {
		name     string
		evidence []string
		want     bool
	}{
		{"all military", []string{"MIL-001", "MIL-002"}, true},
		{"mixed", []string{"MIL-001", "PUB-010"}, false},
		{"empty", []string{}, true},
		{"nil", nil, true},
		{"lowercase prefix", []string{"mil-001"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMilitaryOnly(models.Relation{ID: "R", Evidence: tt.evidence}))
		})
	}
}

func TestMilitaryRelations_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		idGen := rapid.SampledFrom([]string{"MIL-001", "MIL-002", "PUB-001", "PUB-002", "X-1"})
		relations := rapid.SliceOfN(rapid.Custom(func(t *rapid.T) models.Relation {
			return models.Relation{Evidence: rapid.SliceOfN(idGen, 0, 4).Draw(t, "evidence")}
		}), 0, 10).Draw(t, "relations")

		kept := MilitaryRelations(relations)
		for _, r := range kept {
			for _, ev := range r.Evidence {
				if ev[:4] != models.MilitaryIDPrefix {
					t.Fatalf("kept relation with evidence %s", ev)
				}
			}
		}
		dropped := 0
		for _, r := range relations {
			if !IsMilitaryOnly(r) {
				dropped++
			}
		}
		if len(kept)+dropped != len(relations) {
			t.Fatalf("kept %d + dropped %d != %d", len(kept), dropped, len(relations))
		}
	})
}

func TestMilitaryRelations_Seed(t *testing.T) {
	p := mustProject(t, newTestRepo(t), borderProject)
	got := MilitaryRelations(p.Relations)
	assert.Equal(t, []string{"R-001", "R-002", "R-005", "R-006"}, ids(got, func(r models.Relation) string { return r.ID }))
}

func TestResolveSources(t *testing.T) {
	p := mustProject(t, newTestRepo(t), borderProject)

	got := ResolveSources(p, []string{"MIL-003", "PUB-003", "PUB-999"})
	require.Len(t, got, 3)

	assert.Equal(t, "military", got[0].Kind)
	assert.NotEmpty(t, got[0].Unit)
	require.NotNil(t, got[0].Confidence)
	assert.Equal(t, 0.9, *got[0].Confidence)

	assert.Equal(t, "public", got[1].Kind)
	assert.Equal(t, models.LabelSuspicious, got[1].Label)
	require.NotNil(t, got[1].Confidence)
	assert.Equal(t, 0.18, *got[1].Confidence)
	assert.Equal(t, "Checkpoint Kilo", got[1].Location)

	assert.Equal(t, SourceDetail{ID: "PUB-999", Kind: "unknown"}, got[2])
}
