package graph

import (
	"math"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/graph/layout"
	"gonum.org/v1/gonum/graph/simple"
)

// Point is a canvas position in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LayoutOptions tune the force-directed layout.
type LayoutOptions struct {
	Width    int
	Height   int
	Margin   float64
	Seed     int64
	MaxSteps int
}

// DefaultLayoutOptions returns the sizes used by the graph tab.
func DefaultLayoutOptions() LayoutOptions {
	return LayoutOptions{
		Width:    1200,
		Height:   800,
		Margin:   60,
		Seed:     1,
		MaxSteps: 200,
	}
}

// Layout positions every node of v with the Eades force-directed algorithm
// and scales the result into the canvas. Runs are seeded, but node
// iteration order inside gonum is not fixed, so positions are only stable
// within a process through Layouter's cache.
func Layout(v *View, opts LayoutOptions) map[string]Point {
	positions := make(map[string]Point, len(v.Nodes))
	if len(v.Nodes) == 0 {
		return positions
	}
	if len(v.Nodes) == 1 {
		positions[v.Nodes[0].ID] = Point{X: float64(opts.Width) / 2, Y: float64(opts.Height) / 2}
		return positions
	}

	g := simple.NewUndirectedGraph()
	for i := range v.Nodes {
		g.AddNode(simple.Node(int64(i)))
	}
	for _, l := range v.Links {
		from, to := int64(v.nodeIndex[l.Source]), int64(v.nodeIndex[l.Target])
		if from == to || g.HasEdgeBetween(from, to) {
			continue
		}
		g.SetEdge(g.NewEdge(g.Node(from), g.Node(to)))
	}

	steps := opts.MaxSteps
	if steps <= 0 {
		steps = DefaultLayoutOptions().MaxSteps
	}
	eades := layout.EadesR2{
		Repulsion: 1,
		Rate:      0.05,
		Updates:   steps,
		Theta:     0.2,
		Src:       rand.NewPCG(uint64(opts.Seed), uint64(opts.Seed)^0x9e3779b97f4a7c15),
	}
	optimizer := layout.NewOptimizerR2(g, eades.Update)
	for optimizer.Update() {
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	raw := make([]Point, len(v.Nodes))
	for i := range v.Nodes {
		c := optimizer.Coord2(int64(i))
		raw[i] = Point{X: c.X, Y: c.Y}
		minX, maxX = math.Min(minX, c.X), math.Max(maxX, c.X)
		minY, maxY = math.Min(minY, c.Y), math.Max(maxY, c.Y)
	}

	w := float64(opts.Width) - 2*opts.Margin
	h := float64(opts.Height) - 2*opts.Margin
	spanX, spanY := maxX-minX, maxY-minY
	for i, n := range v.Nodes {
		x, y := 0.5, 0.5
		if spanX > 0 {
			x = (raw[i].X - minX) / spanX
		}
		if spanY > 0 {
			y = (raw[i].Y - minY) / spanY
		}
		positions[n.ID] = Point{X: opts.Margin + x*w, Y: opts.Margin + y*h}
	}
	return positions
}

// Layouter caches layouts by key so repeated renders of the same view keep
// their node positions.
type Layouter struct {
	mu    sync.RWMutex
	cache map[string]map[string]Point
	opts  LayoutOptions
}

// NewLayouter creates a cache computing layouts with opts.
func NewLayouter(opts LayoutOptions) *Layouter {
	return &Layouter{
		cache: make(map[string]map[string]Point),
		opts:  opts,
	}
}

// Options returns the layout options in use.
func (l *Layouter) Options() LayoutOptions {
	return l.opts
}

// Positions returns the cached layout for key, computing it on first use.
// The key must change whenever the node set of v changes.
func (l *Layouter) Positions(key string, v *View) map[string]Point {
	l.mu.RLock()
	pos, ok := l.cache[key]
	l.mu.RUnlock()
	if ok && covers(pos, v) {
		return pos
	}

	pos = Layout(v, l.opts)

	l.mu.Lock()
	l.cache[key] = pos
	l.mu.Unlock()
	return pos
}

// Invalidate drops every cached layout.
func (l *Layouter) Invalidate() {
	l.mu.Lock()
	l.cache = make(map[string]map[string]Point)
	l.mu.Unlock()
}

func covers(pos map[string]Point, v *View) bool {
	if len(pos) != len(v.Nodes) {
		return false
	}
	for _, n := range v.Nodes {
		if _, ok := pos[n.ID]; !ok {
			return false
		}
	}
	return true
}
