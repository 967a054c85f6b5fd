// Package graph builds the knowledge-graph view model and renders it.
package graph

import (
	"sort"
	"strings"

	"github.com/ekaya-inc/clearbrief/pkg/models"
)

// FilterAll keeps every relation regardless of entity type.
const FilterAll = "all"

// CurvatureStep is the bend added for each additional edge between the
// same pair of nodes.
const CurvatureStep = 0.3

// Node is a drawable graph node.
type Node struct {
	ID   string            `json:"id"`
	Name string            `json:"name"`
	Type models.EntityType `json:"type"`
	// Synthesized marks nodes created for relation endpoints that have no
	// matching entity.
	Synthesized bool `json:"synthesized,omitempty"`
}

// Link is a drawable directed edge.
type Link struct {
	ID         string   `json:"id"`
	Source     string   `json:"source"`
	Target     string   `json:"target"`
	Type       string   `json:"type"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence"`
	Notes      string   `json:"notes,omitempty"`
	Curvature  float64  `json:"curvature"`
}

// IsConflict reports whether the link is drawn as a conflict.
func (l Link) IsConflict() bool {
	return l.Type == models.RelationConflictsWith
}

// IsLowConfidence reports whether the link is drawn dashed.
func (l Link) IsLowConfidence() bool {
	return l.Confidence < models.MediumConfidenceThreshold
}

// Label is the edge caption: the relation type in title case.
func (l Link) Label() string {
	return FormatRelationType(l.Type)
}

// View is the filtered node/link set plus lookup indexes.
type View struct {
	Filter string `json:"filter"`
	Nodes  []Node `json:"nodes"`
	Links  []Link `json:"links"`

	entities  map[string]models.Entity
	relations map[string]models.Relation
	nodeIndex map[string]int
	neighbors map[string]map[string]bool
}

// Build filters relations by entity type and derives nodes and links.
//
// With filter "all" every relation is kept; otherwise a relation is kept
// when either endpoint is an entity of the filtered type. Entities of the
// filtered type and both endpoints of every kept relation become nodes;
// endpoints with no entity are synthesized as "source" nodes named by their
// id. Nodes keep entity order followed by synthesized nodes in relation
// order.
func Build(entities []models.Entity, relations []models.Relation, filter string) *View {
	if filter == "" {
		filter = FilterAll
	}

	matches := make(map[string]bool)
	for _, e := range entities {
		if filter == FilterAll || string(e.Type) == filter {
			matches[e.ID] = true
		}
	}

	allowed := make(map[string]bool, len(matches))
	for id := range matches {
		allowed[id] = true
	}
	var kept []models.Relation
	for _, r := range relations {
		if filter == FilterAll || matches[r.From] || matches[r.To] {
			kept = append(kept, r)
			allowed[r.From] = true
			allowed[r.To] = true
		}
	}

	v := &View{
		Filter:    filter,
		Nodes:     []Node{},
		Links:     make([]Link, 0, len(kept)),
		entities:  make(map[string]models.Entity, len(entities)),
		relations: make(map[string]models.Relation, len(kept)),
		nodeIndex: make(map[string]int),
		neighbors: make(map[string]map[string]bool),
	}

	for _, e := range entities {
		v.entities[e.ID] = e
		if !allowed[e.ID] {
			continue
		}
		if _, dup := v.nodeIndex[e.ID]; dup {
			continue
		}
		v.nodeIndex[e.ID] = len(v.Nodes)
		v.Nodes = append(v.Nodes, Node{ID: e.ID, Name: e.Name, Type: e.Type})
	}

	for _, r := range kept {
		for _, id := range []string{r.From, r.To} {
			if _, ok := v.nodeIndex[id]; ok {
				continue
			}
			v.nodeIndex[id] = len(v.Nodes)
			v.Nodes = append(v.Nodes, Node{ID: id, Name: id, Type: models.EntityTypeSource, Synthesized: true})
		}
	}

	pairCounts := make(map[string]int)
	for _, r := range kept {
		key := pairKey(r.From, r.To)
		count := pairCounts[key]
		pairCounts[key] = count + 1

		evidence := r.Evidence
		if evidence == nil {
			evidence = []string{}
		}
		v.Links = append(v.Links, Link{
			ID:         r.ID,
			Source:     r.From,
			Target:     r.To,
			Type:       r.Type,
			Confidence: r.Confidence,
			Evidence:   evidence,
			Notes:      r.Notes,
			Curvature:  float64(count) * CurvatureStep,
		})
		v.relations[r.ID] = r
		v.link(r.From, r.To)
	}

	return v
}

func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

func (v *View) link(a, b string) {
	if v.neighbors[a] == nil {
		v.neighbors[a] = make(map[string]bool)
	}
	if v.neighbors[b] == nil {
		v.neighbors[b] = make(map[string]bool)
	}
	v.neighbors[a][b] = true
	v.neighbors[b][a] = true
}

// Node returns the node with the given id.
func (v *View) Node(id string) (Node, bool) {
	i, ok := v.nodeIndex[id]
	if !ok {
		return Node{}, false
	}
	return v.Nodes[i], true
}

// Neighbors returns the sorted ids adjacent to id in either direction.
func (v *View) Neighbors(id string) []string {
	out := make([]string, 0, len(v.neighbors[id]))
	for n := range v.neighbors[id] {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ConnectedToHover reports whether id is highlighted for the hovered node:
// true with no hover, for the hovered node itself, and for its neighbors.
func (v *View) ConnectedToHover(id, hoverNode string) bool {
	if hoverNode == "" || id == hoverNode {
		return true
	}
	return v.neighbors[hoverNode][id]
}

// LinkConnectedToHover reports whether l touches the hovered node.
func (v *View) LinkConnectedToHover(l Link, hoverNode string) bool {
	return hoverNode == "" || l.Source == hoverNode || l.Target == hoverNode
}

// NodeAlpha is the opacity of a node under the given hover state.
func (v *View) NodeAlpha(id, hoverNode string) float64 {
	if v.ConnectedToHover(id, hoverNode) {
		return 1
	}
	return 0.15
}

// LinkAlpha is the opacity of a link under the given hover state.
func (v *View) LinkAlpha(l Link, hoverNode, hoverLink string) float64 {
	if !v.LinkConnectedToHover(l, hoverNode) {
		return 0.1
	}
	if l.ID == hoverLink {
		return 1
	}
	return 0.8
}

// Entity returns the domain entity behind a node, for selection.
func (v *View) Entity(id string) (models.Entity, bool) {
	e, ok := v.entities[id]
	return e, ok
}

// Relation returns the domain relation behind a link, for selection.
func (v *View) Relation(id string) (models.Relation, bool) {
	r, ok := v.relations[id]
	return r, ok
}

// LinkedSources returns the evidence ids of every displayed relation that
// touches entityID, deduplicated in first-seen order.
func (v *View) LinkedSources(entityID string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, l := range v.Links {
		if l.Source != entityID && l.Target != entityID {
			continue
		}
		for _, ev := range l.Evidence {
			if !seen[ev] {
				seen[ev] = true
				out = append(out, ev)
			}
		}
	}
	return out
}

// FormatRelationType turns "conflicts_with" into "Conflicts With".
func FormatRelationType(t string) string {
	words := strings.Split(t, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
