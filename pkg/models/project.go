// Package models contains domain types for ClearBrief.
package models

import (
	"time"
)

// ProjectStatus is the lifecycle state of an investigation project.
type ProjectStatus string

const (
	ProjectStatusActive     ProjectStatus = "Active"
	ProjectStatusMonitoring ProjectStatus = "Monitoring"
	ProjectStatusClosed     ProjectStatus = "Closed"
)

// Project type constants offered by the create-project form.
const (
	ProjectTypeBorderIncident = "border_incident"
	ProjectTypeUrbanSecurity  = "urban_security"
	ProjectTypeDisasterRelief = "disaster_relief"
	ProjectTypeInvestigation  = "investigation"
)

// ValidProjectTypes contains all project types the UI offers.
var ValidProjectTypes = []string{
	ProjectTypeBorderIncident,
	ProjectTypeUrbanSecurity,
	ProjectTypeDisasterRelief,
	ProjectTypeInvestigation,
}

// TimeWindow is an ISO-8601 start/end pair.
type TimeWindow struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// IngestionSources toggles which public channels are ingested.
type IngestionSources struct {
	Social bool `json:"social"`
	News   bool `json:"news"`
	Alerts bool `json:"alerts"`
}

// IngestionConfig describes how public data is collected for a project.
type IngestionConfig struct {
	Keywords     []string         `json:"keywords"`
	LocationHint string           `json:"locationHint"`
	RadiusKm     float64          `json:"radiusKm"`
	Sources      IngestionSources `json:"sources"`
}

// ProjectChat holds the scripted assistant content of a project.
type ProjectChat struct {
	SuggestedPrompts []string     `json:"suggestedPrompts"`
	QAPairs          []ChatQAPair `json:"qaPairs"`
}

// RealtimeQueue holds public items that are "ingested" live while the
// overview is open.
type RealtimeQueue struct {
	Enabled            bool         `json:"enabled"`
	IntervalSeconds    int          `json:"intervalSeconds"`
	ToastTemplate      string       `json:"toastTemplate"`
	PendingPublicItems []PublicItem `json:"pendingPublicItems"`
}

// Interval returns the queue tick interval, defaulting to 10 seconds.
func (q RealtimeQueue) Interval() time.Duration {
	if q.IntervalSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(q.IntervalSeconds) * time.Second
}

// Project is a single investigation workspace. All collections are owned by
// the project; ids never reference another project's data.
type Project struct {
	ID                  string               `json:"id"`
	Name                string               `json:"name"`
	Type                string               `json:"type"`
	Region              string               `json:"region"`
	Status              ProjectStatus        `json:"status"`
	CreatedBy           string               `json:"createdBy"`
	CreatedAt           string               `json:"createdAt"`
	TimeWindow          TimeWindow           `json:"timeWindow"`
	Tags                []string             `json:"tags"`
	IngestionConfig     IngestionConfig      `json:"ingestionConfig"`
	MilitaryReports     []MilitaryReport     `json:"militaryReports"`
	PublicItems         []PublicItem         `json:"publicItems"`
	VerificationResults []VerificationResult `json:"verificationResults"`
	Entities            []Entity             `json:"entities"`
	Relations           []Relation           `json:"relations"`
	Conflicts           []Conflict           `json:"conflicts"`
	SpotrepVersions     []SpotrepVersion     `json:"spotrepVersions"`
	Chat                ProjectChat          `json:"chat"`
	RealtimeQueue       RealtimeQueue        `json:"realtimeQueue"`
}

// VerificationFor returns the verification result for the given item id.
func (p *Project) VerificationFor(itemID string) (*VerificationResult, bool) {
	for i := range p.VerificationResults {
		if p.VerificationResults[i].ItemID == itemID {
			return &p.VerificationResults[i], true
		}
	}
	return nil, false
}

// OpenConflicts returns conflicts whose status is Open, in seed order.
func (p *Project) OpenConflicts() []Conflict {
	var open []Conflict
	for _, c := range p.Conflicts {
		if c.Status == ConflictStatusOpen {
			open = append(open, c)
		}
	}
	return open
}

// LatestSpotrep returns the last SPOTREP version, or nil when none exist.
func (p *Project) LatestSpotrep() *SpotrepVersion {
	if len(p.SpotrepVersions) == 0 {
		return nil
	}
	return &p.SpotrepVersions[len(p.SpotrepVersions)-1]
}

// ProjectInput carries the caller-supplied fields of a new project.
// Zero values fall back to defaults.
type ProjectInput struct {
	Name       string      `json:"name"`
	Type       string      `json:"type"`
	Region     string      `json:"region"`
	TimeWindow *TimeWindow `json:"timeWindow,omitempty"`
	Tags       []string    `json:"tags,omitempty"`
}
