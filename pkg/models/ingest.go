package models

import "time"

// StagedReport is a military report uploaded on the ingest tab. Staged
// reports are listed for the analyst but never merged into the project's
// canonical reports.
type StagedReport struct {
	ID         string    `json:"id"`
	FileName   string    `json:"fileName"`
	Text       string    `json:"text"`
	Status     string    `json:"status"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// FetchRequest holds the public-source toggles of a simulated fetch.
type FetchRequest struct {
	Keywords     []string `json:"keywords"`
	LocationHint string   `json:"locationHint"`
	RadiusKm     float64  `json:"radiusKm"`
	Social       bool     `json:"social"`
	News         bool     `json:"news"`
	Alerts       bool     `json:"alerts"`
}

// IngestSummary is the result card shown after a simulated fetch.
type IngestSummary struct {
	ItemsFetched      int           `json:"itemsFetched"`
	DuplicatesRemoved int           `json:"duplicatesRemoved"`
	Sources           []string      `json:"sources"`
	Steps             int           `json:"steps"`
	Duration          time.Duration `json:"duration"`
}

// SyncStatus is the status-bar view of ingestion activity.
type SyncStatus struct {
	LastSyncTime       time.Time `json:"lastSyncTime"`
	SecondsAgo         int       `json:"secondsAgo"`
	IngestionStatus    string    `json:"ingestionStatus"`
	VerificationStatus string    `json:"verificationStatus"`
}
