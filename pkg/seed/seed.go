// Package seed loads and validates the static workspace dataset.
package seed

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"github.com/ekaya-inc/clearbrief/pkg/models"
)

//go:embed seed.json
var embedded []byte

// Source produces a fresh copy of the seed document on every call.
// Each call decodes anew, so callers may mutate the result freely.
type Source interface {
	Load() (*models.AppData, error)
	Name() string
}

// Embedded returns the dataset compiled into the binary.
func Embedded() Source {
	return bytesSource{name: "embedded", data: embedded}
}

// File returns a source reading the dataset from path on each Load.
func File(path string) Source {
	return fileSource{path: path}
}

type bytesSource struct {
	name string
	data []byte
}

func (s bytesSource) Load() (*models.AppData, error) { return Decode(s.data) }
func (s bytesSource) Name() string                   { return s.name }

type fileSource struct {
	path string
}

func (s fileSource) Load() (*models.AppData, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Decode(data)
}

func (s fileSource) Name() string { return s.path }

// Decode parses a seed document and fills defaults the document may omit.
func Decode(data []byte) (*models.AppData, error) {
	var app models.AppData
	if err := json.Unmarshal(data, &app); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if app.AppName == "" {
		app.AppName = "ClearBrief"
	}
	if len(app.SourceDefaults.ReliabilityBySourceType) == 0 {
		app.SourceDefaults.ReliabilityBySourceType = make(map[string]float64, len(models.DefaultReliabilityBySourceType))
		for k, v := range models.DefaultReliabilityBySourceType {
			app.SourceDefaults.ReliabilityBySourceType[k] = v
		}
	}
	for _, p := range app.Projects {
		if p == nil {
			return nil, fmt.Errorf("decode seed: null project entry")
		}
	}
	return &app, nil
}

// ValidationError lists every inconsistency found in a seed document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("seed validation failed (%d problems): %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

// Validate checks the invariants the views rely on: unique project ids,
// labels that agree with final confidence, and verification results that
// reference a public item of the same project. Dangling relation endpoints
// are allowed and are not reported.
func Validate(app *models.AppData) error {
	var problems []string
	seen := make(map[string]bool, len(app.Projects))

	for _, p := range app.Projects {
		if p.ID == "" {
			problems = append(problems, "project with empty id")
			continue
		}
		if seen[p.ID] {
			problems = append(problems, fmt.Sprintf("duplicate project id %s", p.ID))
		}
		seen[p.ID] = true

		items := make(map[string]bool, len(p.PublicItems))
		for _, it := range p.PublicItems {
			items[it.ID] = true
		}

		for _, v := range p.VerificationResults {
			if !items[v.ItemID] {
				problems = append(problems, fmt.Sprintf("%s: verification for unknown item %s", p.ID, v.ItemID))
			}
			if want := models.LabelForConfidence(v.FinalConfidence); v.Label != want {
				problems = append(problems, fmt.Sprintf("%s: item %s labeled %s but confidence %.2f implies %s",
					p.ID, v.ItemID, v.Label, v.FinalConfidence, want))
			}
		}

		for _, e := range p.Entities {
			if !isValidEntityType(e.Type) {
				problems = append(problems, fmt.Sprintf("%s: entity %s has unknown type %q", p.ID, e.ID, e.Type))
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func isValidEntityType(t models.EntityType) bool {
	for _, v := range models.ValidEntityTypes {
		if v == t {
			return true
		}
	}
	return false
}
