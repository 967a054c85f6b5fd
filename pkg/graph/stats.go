package graph

import (
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// ConnectedComponent is a group of nodes linked by at least one relation.
type ConnectedComponent struct {
	Nodes []string `json:"nodes"`
	Size  int      `json:"size"`
}

// KeyEntity ranks a node by its structural importance.
type KeyEntity struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Degree      int     `json:"degree"`
	Betweenness float64 `json:"betweenness"`
	PageRank    float64 `json:"pageRank"`
}

// Stats summarizes the structure of a view.
type Stats struct {
	NodeCount   int                  `json:"nodeCount"`
	LinkCount   int                  `json:"linkCount"`
	Conflicts   int                  `json:"conflicts"`
	Components  []ConnectedComponent `json:"components"`
	Islands     []string             `json:"islands"`
	KeyEntities []KeyEntity          `json:"keyEntities"`
}

// ComputeStats returns component and centrality figures for v. Components
// are sorted largest first; single-node components are reported as islands.
// KeyEntities holds at most top nodes ordered by betweenness, then degree.
func ComputeStats(v *View, top int) Stats {
	stats := Stats{
		NodeCount:   len(v.Nodes),
		LinkCount:   len(v.Links),
		Components:  []ConnectedComponent{},
		Islands:     []string{},
		KeyEntities: []KeyEntity{},
	}
	if len(v.Nodes) == 0 {
		return stats
	}

	ug := simple.NewUndirectedGraph()
	dg := simple.NewDirectedGraph()
	for i := range v.Nodes {
		ug.AddNode(simple.Node(int64(i)))
		dg.AddNode(simple.Node(int64(i)))
	}
	for _, l := range v.Links {
		if l.IsConflict() {
			stats.Conflicts++
		}
		from, to := int64(v.nodeIndex[l.Source]), int64(v.nodeIndex[l.Target])
		if from == to {
			continue
		}
		if !ug.HasEdgeBetween(from, to) {
			ug.SetEdge(ug.NewEdge(ug.Node(from), ug.Node(to)))
		}
		if !dg.HasEdgeFromTo(from, to) {
			dg.SetEdge(dg.NewEdge(dg.Node(from), dg.Node(to)))
		}
	}

	for _, comp := range topo.ConnectedComponents(ug) {
		ids := make([]string, len(comp))
		for i, n := range comp {
			ids[i] = v.Nodes[n.ID()].ID
		}
		sort.Strings(ids)
		if len(ids) == 1 {
			stats.Islands = append(stats.Islands, ids[0])
			continue
		}
		stats.Components = append(stats.Components, ConnectedComponent{Nodes: ids, Size: len(ids)})
	}
	sort.Slice(stats.Components, func(i, j int) bool {
		if stats.Components[i].Size != stats.Components[j].Size {
			return stats.Components[i].Size > stats.Components[j].Size
		}
		return stats.Components[i].Nodes[0] < stats.Components[j].Nodes[0]
	})
	sort.Strings(stats.Islands)

	betweenness := network.Betweenness(ug)
	pageRank := network.PageRank(dg, 0.85, 1e-6)

	keys := make([]KeyEntity, len(v.Nodes))
	for i, n := range v.Nodes {
		keys[i] = KeyEntity{
			ID:          n.ID,
			Name:        n.Name,
			Degree:      len(v.neighbors[n.ID]),
			Betweenness: betweenness[int64(i)],
			PageRank:    pageRank[int64(i)],
		}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].Betweenness != keys[j].Betweenness {
			return keys[i].Betweenness > keys[j].Betweenness
		}
		if keys[i].Degree != keys[j].Degree {
			return keys[i].Degree > keys[j].Degree
		}
		return keys[i].ID < keys[j].ID
	})
	if top > 0 && len(keys) > top {
		keys = keys[:top]
	}
	stats.KeyEntities = keys
	return stats
}
