package models

// SourceIsolation controls whether public items join the overview feed.
type SourceIsolation string

const (
	IsolationMilitary SourceIsolation = "military"
	IsolationCombined SourceIsolation = "combined"
)

// ParseSourceIsolation returns the isolation mode for s, defaulting to
// combined for anything unrecognized.
func ParseSourceIsolation(s string) SourceIsolation {
	if SourceIsolation(s) == IsolationMilitary {
		return IsolationMilitary
	}
	return IsolationCombined
}

// AuthSettings describes the (bypassed) login screen.
type AuthSettings struct {
	Enabled     bool   `json:"enabled"`
	LoginBypass bool   `json:"loginBypass"`
	Banner      string `json:"banner"`
}

// SourceDefaults are the baseline confidence values shown on the settings page.
type SourceDefaults struct {
	MilitaryDefaultConfidence    float64            `json:"militaryDefaultConfidence"`
	PublicDefaultConfidenceRange [2]float64         `json:"publicDefaultConfidenceRange"`
	ReliabilityBySourceType      map[string]float64 `json:"reliabilityBySourceType"`
}

// AppData is the root of the seed document.
type AppData struct {
	AppName        string         `json:"appName"`
	DemoMode       bool           `json:"demoMode"`
	Auth           AuthSettings   `json:"auth"`
	SourceDefaults SourceDefaults `json:"sourceDefaults"`
	Projects       []*Project     `json:"projects"`
}

// DefaultReliabilityBySourceType mirrors the settings page baseline when the
// seed omits reliability values. Percentages.
var DefaultReliabilityBySourceType = map[string]float64{
	"official_gov":      80,
	"major_news":        70,
	"local_news":        55,
	"verified_reporter": 50,
	"known_user":        35,
	"unknown_user":      20,
}
