package graph

import (
	"bytes"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/clearbrief/pkg/models"
	"github.com/ekaya-inc/clearbrief/pkg/seed"
)

func seedView(t *testing.T) *View {
	t.Helper()
	app, err := seed.Embedded().Load()
	require.NoError(t, err)
	p := app.Projects[0]
	return Build(p.Entities, p.Relations, FilterAll)
}

func TestComputeStats_Seed(t *testing.T) {
	v := seedView(t)

	stats := ComputeStats(v, 3)

	assert.Equal(t, 11, stats.NodeCount)
	assert.Equal(t, 11, stats.LinkCount)
	assert.Equal(t, 2, stats.Conflicts)
	require.Len(t, stats.Components, 1)
	assert.Equal(t, 11, stats.Components[0].Size)
	assert.Empty(t, stats.Islands)
	require.Len(t, stats.KeyEntities, 3)
	assert.GreaterOrEqual(t, stats.KeyEntities[0].Betweenness, stats.KeyEntities[1].Betweenness)
}

func TestComputeStats_IslandsAndComponents(t *testing.T) {
	relations := []models.Relation{
		{ID: "R1", Type: models.RelationSupports, From: "E1", To: "E2"},
		{ID: "R2", Type: models.RelationSupports, From: "E2", To: "E3"},
		{ID: "R3", Type: models.RelationConflictsWith, From: "E1", To: "E3"},
	}
	v := Build(testEntities(), relations, FilterAll)

	stats := ComputeStats(v, 0)

	require.Len(t, stats.Components, 1)
	assert.Equal(t, []string{"E1", "E2", "E3"}, stats.Components[0].Nodes)
	assert.Equal(t, []string{"E4"}, stats.Islands)
	assert.Equal(t, 1, stats.Conflicts)
	assert.Len(t, stats.KeyEntities, 4)
}

func TestComputeStats_SelfLoopIgnoredByAlgorithms(t *testing.T) {
	relations := []models.Relation{{ID: "R1", Type: models.RelationSupports, From: "E1", To: "E1"}}
	v := Build(testEntities(), relations, FilterAll)

	stats := ComputeStats(v, 0)

	assert.Equal(t, 1, stats.LinkCount)
	assert.Len(t, stats.Islands, 4)
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(Build(nil, nil, FilterAll), 5)

	assert.Equal(t, 0, stats.NodeCount)
	assert.NotNil(t, stats.Components)
	assert.NotNil(t, stats.KeyEntities)
}

func TestLayout_StaysInsideMargins(t *testing.T) {
	v := seedView(t)
	opts := DefaultLayoutOptions()
	opts.MaxSteps = 50

	pos := Layout(v, opts)

	require.Len(t, pos, len(v.Nodes))
	for id, p := range pos {
		assert.GreaterOrEqual(t, p.X, opts.Margin-1e-6, id)
		assert.LessOrEqual(t, p.X, float64(opts.Width)-opts.Margin+1e-6, id)
		assert.GreaterOrEqual(t, p.Y, opts.Margin-1e-6, id)
		assert.LessOrEqual(t, p.Y, float64(opts.Height)-opts.Margin+1e-6, id)
	}
}

func TestLayout_SingleNodeCentered(t *testing.T) {
	v := Build(testEntities()[:1], nil, FilterAll)
	opts := DefaultLayoutOptions()

	pos := Layout(v, opts)

	assert.Equal(t, Point{X: 600, Y: 400}, pos["E1"])
}

func TestLayouter_CachesByKey(t *testing.T) {
	v := seedView(t)
	opts := DefaultLayoutOptions()
	opts.MaxSteps = 20
	l := NewLayouter(opts)

	first := l.Positions("PRJ-001/all", v)
	second := l.Positions("PRJ-001/all", v)
	assert.Equal(t, first, second)

	smaller := Build(testEntities(), nil, FilterAll)
	other := l.Positions("PRJ-001/all", smaller)
	assert.Len(t, other, 4, "a changed node set recomputes the layout")

	l.Invalidate()
	assert.Len(t, l.Positions("PRJ-001/all", v), 11)
}

func TestRenderPNG(t *testing.T) {
	v := seedView(t)
	opts := DefaultLayoutOptions()
	opts.MaxSteps = 20
	c := Canvas{View: v, Positions: Layout(v, opts), Width: 640, Height: 480}

	var buf bytes.Buffer
	err := RenderPNG(&buf, c, RenderOptions{HoverNode: "E-005", Title: "Northern Ridge", ShowLegend: true, Scale: 2})
	require.NoError(t, err)

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 640, img.Bounds().Dx())
	assert.Equal(t, 480, img.Bounds().Dy())
}

func TestRenderSVG(t *testing.T) {
	v := seedView(t)
	c := Canvas{View: v, Positions: map[string]Point{}, Width: 400, Height: 300}

	var buf bytes.Buffer
	err := RenderSVG(&buf, c, RenderOptions{Title: "A & B", ShowLegend: true})
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.Contains(out, "<svg"))
	assert.Contains(t, out, `id="node-E-001"`)
	assert.Contains(t, out, "A &amp; B")
	assert.Contains(t, out, "stroke-dasharray:8,5", "low confidence supports edge is dashed")
	assert.Contains(t, out, "Legend")
}

func TestRenderSVG_NonFiniteScale(t *testing.T) {
	v := seedView(t)
	opts := DefaultLayoutOptions()
	opts.MaxSteps = 20
	c := Canvas{View: v, Positions: Layout(v, opts), Width: 400, Height: 300}

	for _, scale := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		var buf bytes.Buffer
		require.NoError(t, RenderSVG(&buf, c, RenderOptions{Scale: scale, HoverNode: "E-001"}))
		out := buf.String()
		assert.NotContains(t, out, "NaN")
		assert.NotContains(t, out, "-9223372036854775808")
	}
}
