package models

// VerificationLabel is the outcome bucket of the verification pipeline.
type VerificationLabel string

const (
	LabelVerified   VerificationLabel = "Verified"
	LabelUnverified VerificationLabel = "Unverified"
	LabelSuspicious VerificationLabel = "Suspicious"
)

// Confidence thresholds shared by labels and distribution buckets.
const (
	HighConfidenceThreshold   = 0.7
	MediumConfidenceThreshold = 0.4
)

// VerificationResult is the pre-computed pipeline output for one public item.
type VerificationResult struct {
	ItemID            string            `json:"itemId"`
	Relevance         float64           `json:"relevance"`
	SourceReliability float64           `json:"sourceReliability"`
	GeoConsistency    float64           `json:"geoConsistency"`
	CrossConfirmCount int               `json:"crossConfirmCount"`
	FinalConfidence   float64           `json:"finalConfidence"`
	Label             VerificationLabel `json:"label"`
	Reasons           []string          `json:"reasons"`
}

// LabelForConfidence maps a final confidence to the label the pipeline
// would assign. Seed labels are validated against this, never rewritten.
func LabelForConfidence(score float64) VerificationLabel {
	switch {
	case score >= HighConfidenceThreshold:
		return LabelVerified
	case score >= MediumConfidenceThreshold:
		return LabelUnverified
	default:
		return LabelSuspicious
	}
}

// ConfidenceBucket groups scores for the distribution chart.
type ConfidenceBucket string

const (
	BucketHigh   ConfidenceBucket = "high"
	BucketMedium ConfidenceBucket = "medium"
	BucketLow    ConfidenceBucket = "low"
)

// BucketForConfidence places a score in high (>= 0.7), medium
// ([0.4, 0.7)) or low (< 0.4).
func BucketForConfidence(score float64) ConfidenceBucket {
	switch {
	case score >= HighConfidenceThreshold:
		return BucketHigh
	case score >= MediumConfidenceThreshold:
		return BucketMedium
	default:
		return BucketLow
	}
}
