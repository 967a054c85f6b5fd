package models

// SpotrepSections holds the fixed sections of a SPOTREP. Field order is the
// display order.
type SpotrepSections struct {
	Situation              string   `json:"SITUATION" yaml:"SITUATION"`
	Location               string   `json:"LOCATION" yaml:"LOCATION"`
	TimeWindow             string   `json:"TIME_WINDOW" yaml:"TIME_WINDOW"`
	FriendlyForces         string   `json:"FRIENDLY_FORCES" yaml:"FRIENDLY_FORCES"`
	ObservedActivity       string   `json:"OBSERVED_ACTIVITY" yaml:"OBSERVED_ACTIVITY"`
	CivilianSignals        string   `json:"CIVILIAN_SIGNALS" yaml:"CIVILIAN_SIGNALS"`
	ConflictsUncertainties string   `json:"CONFLICTS_UNCERTAINTIES" yaml:"CONFLICTS_UNCERTAINTIES"`
	ConfidenceSummary      string   `json:"CONFIDENCE_SUMMARY" yaml:"CONFIDENCE_SUMMARY"`
	Sources                []string `json:"SOURCES" yaml:"SOURCES"`
}

// SpotrepSection is one keyed section, used for ordered iteration.
type SpotrepSection struct {
	Key   string   `json:"key"`
	Label string   `json:"label"`
	Text  string   `json:"text,omitempty"`
	Items []string `json:"items,omitempty"`
}

// Ordered returns the sections in display order with their human labels.
func (s SpotrepSections) Ordered() []SpotrepSection {
	return []SpotrepSection{
		{Key: "SITUATION", Label: "Situation", Text: s.Situation},
		{Key: "LOCATION", Label: "Location (AOI)", Text: s.Location},
		{Key: "TIME_WINDOW", Label: "Time Window", Text: s.TimeWindow},
		{Key: "FRIENDLY_FORCES", Label: "Friendly Forces", Text: s.FriendlyForces},
		{Key: "OBSERVED_ACTIVITY", Label: "Observed Activity", Text: s.ObservedActivity},
		{Key: "CIVILIAN_SIGNALS", Label: "Civilian Signals", Text: s.CivilianSignals},
		{Key: "CONFLICTS_UNCERTAINTIES", Label: "Conflicts / Uncertainties", Text: s.ConflictsUncertainties},
		{Key: "CONFIDENCE_SUMMARY", Label: "Confidence Summary", Text: s.ConfidenceSummary},
		{Key: "SOURCES", Label: "Sources", Items: s.Sources},
	}
}

// SpotrepVersion is one generated situation report.
type SpotrepVersion struct {
	ID          string          `json:"id" yaml:"id"`
	GeneratedAt string          `json:"generatedAt" yaml:"generatedAt"`
	TimeWindow  string          `json:"timeWindow" yaml:"timeWindow"`
	Sections    SpotrepSections `json:"sections" yaml:"sections"`
}
