package models

// EntityType classifies knowledge-graph entities.
type EntityType string

const (
	EntityTypeEvent    EntityType = "event"
	EntityTypeLocation EntityType = "location"
	EntityTypeUnit     EntityType = "unit"
	EntityTypePerson   EntityType = "person"
	// EntityTypeSource is never stored; it marks nodes synthesized for
	// relation endpoints that have no matching entity.
	EntityTypeSource EntityType = "source"
)

// ValidEntityTypes contains the entity types that may appear in seed data.
var ValidEntityTypes = []EntityType{
	EntityTypeEvent,
	EntityTypeLocation,
	EntityTypeUnit,
	EntityTypePerson,
}

// Relation type names with dedicated styling.
const (
	RelationConflictsWith  = "conflicts_with"
	RelationSupports       = "supports"
	RelationLocatedAt      = "located_at"
	RelationParticipatedIn = "participated_in"
	RelationCommandedBy    = "commanded_by"
)

// Entity is a node of the knowledge graph.
type Entity struct {
	ID        string     `json:"id"`
	Type      EntityType `json:"type"`
	Name      string     `json:"name"`
	Lat       *float64   `json:"lat,omitempty"`
	Lon       *float64   `json:"lon,omitempty"`
	TimeStart string     `json:"timeStart,omitempty"`
	TimeEnd   string     `json:"timeEnd,omitempty"`
}

// Relation is a directed, typed edge between two entity ids. Evidence lists
// the report or item ids that support the relation.
type Relation struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	From       string   `json:"from"`
	To         string   `json:"to"`
	Evidence   []string `json:"evidence,omitempty"`
	Confidence float64  `json:"confidence"`
	Notes      string   `json:"notes,omitempty"`
}

// Touches reports whether id is either endpoint of the relation.
func (r Relation) Touches(id string) bool {
	return r.From == id || r.To == id
}

// ConflictSeverity is the display color of a conflict.
type ConflictSeverity string

const (
	SeverityAmber ConflictSeverity = "amber"
	SeverityBlue  ConflictSeverity = "blue"
	SeverityRed   ConflictSeverity = "red"
)

// ConflictStatus tracks whether a discrepancy is still under review.
type ConflictStatus string

const (
	ConflictStatusOpen     ConflictStatus = "Open"
	ConflictStatusResolved ConflictStatus = "Resolved"
)

// Conflict is a discrepancy between two or more sources.
type Conflict struct {
	ID       string           `json:"id"`
	Severity ConflictSeverity `json:"severity"`
	Summary  string           `json:"summary"`
	Items    []string         `json:"items"`
	Status   ConflictStatus   `json:"status"`
}
