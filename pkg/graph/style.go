package graph

import (
	"fmt"
	"image/color"
	"math"

	"github.com/ekaya-inc/clearbrief/pkg/models"
)

// nodePalette is the fill, border and glow of one node type.
type nodePalette struct {
	Fill   color.NRGBA
	Stroke color.NRGBA
	Glow   color.NRGBA
}

// edgePalette is the line and caption color of one relation type.
type edgePalette struct {
	Line  color.NRGBA
	Label color.NRGBA
}

var (
	colorBackdrop    = color.NRGBA{R: 7, G: 11, B: 20, A: 255} // hsl(222 47% 5%)
	colorPanel       = color.NRGBA{R: 15, G: 23, B: 42, A: 242}
	colorEdgeLabelBG = color.NRGBA{R: 10, G: 17, B: 30, A: 235}
	colorText        = color.NRGBA{R: 241, G: 245, B: 249, A: 242}
	colorSubtle      = color.NRGBA{R: 148, G: 163, B: 184, A: 255}
	colorHighlight   = color.NRGBA{R: 255, G: 255, B: 255, A: 77}
	colorConfHigh    = color.NRGBA{R: 74, G: 222, B: 128, A: 230}
	colorConfLow     = color.NRGBA{R: 251, G: 191, B: 36, A: 230}
)

var nodeColors = map[models.EntityType]nodePalette{
	models.EntityTypeEvent: {
		Fill:   color.NRGBA{R: 245, G: 158, B: 11, A: 230},
		Stroke: color.NRGBA{R: 251, G: 191, B: 36, A: 255},
		Glow:   color.NRGBA{R: 245, G: 158, B: 11, A: 128},
	},
	models.EntityTypeLocation: {
		Fill:   color.NRGBA{R: 59, G: 130, B: 246, A: 230},
		Stroke: color.NRGBA{R: 96, G: 165, B: 250, A: 255},
		Glow:   color.NRGBA{R: 59, G: 130, B: 246, A: 128},
	},
	models.EntityTypeUnit: {
		Fill:   color.NRGBA{R: 34, G: 197, B: 94, A: 230},
		Stroke: color.NRGBA{R: 74, G: 222, B: 128, A: 255},
		Glow:   color.NRGBA{R: 34, G: 197, B: 94, A: 128},
	},
	models.EntityTypePerson: {
		Fill:   color.NRGBA{R: 20, G: 184, B: 166, A: 230},
		Stroke: color.NRGBA{R: 45, G: 212, B: 191, A: 255},
		Glow:   color.NRGBA{R: 20, G: 184, B: 166, A: 128},
	},
	models.EntityTypeSource: {
		Fill:   color.NRGBA{R: 100, G: 116, B: 139, A: 204},
		Stroke: color.NRGBA{R: 148, G: 163, B: 184, A: 255},
		Glow:   color.NRGBA{R: 100, G: 116, B: 139, A: 77},
	},
}

var edgeColors = map[string]edgePalette{
	models.RelationConflictsWith: {
		Line:  color.NRGBA{R: 239, G: 68, B: 68, A: 230},
		Label: color.NRGBA{R: 254, G: 202, B: 202, A: 242},
	},
	models.RelationSupports: {
		Line:  color.NRGBA{R: 34, G: 197, B: 94, A: 204},
		Label: color.NRGBA{R: 187, G: 247, B: 208, A: 242},
	},
	models.RelationLocatedAt: {
		Line:  color.NRGBA{R: 59, G: 130, B: 246, A: 204},
		Label: color.NRGBA{R: 191, G: 219, B: 254, A: 242},
	},
	models.RelationParticipatedIn: {
		Line:  color.NRGBA{R: 168, G: 85, B: 247, A: 204},
		Label: color.NRGBA{R: 233, G: 213, B: 255, A: 242},
	},
	models.RelationCommandedBy: {
		Line:  color.NRGBA{R: 245, G: 158, B: 11, A: 204},
		Label: color.NRGBA{R: 254, G: 243, B: 199, A: 242},
	},
}

var defaultEdgeColor = edgePalette{
	Line:  color.NRGBA{R: 148, G: 163, B: 184, A: 179},
	Label: color.NRGBA{R: 226, G: 232, B: 240, A: 242},
}

func paletteForNode(t models.EntityType) nodePalette {
	if p, ok := nodeColors[t]; ok {
		return p
	}
	return nodeColors[models.EntityTypeSource]
}

func paletteForEdge(t string) edgePalette {
	if p, ok := edgeColors[t]; ok {
		return p
	}
	return defaultEdgeColor
}

// RenderOptions carry the interaction state a browser would hold.
type RenderOptions struct {
	HoverNode string
	HoverLink string
	// Scale is the zoom factor; labels appear as it grows.
	Scale      float64
	Title      string
	ShowLegend bool
}

// maxScale caps the zoom factor used for styling.
const maxScale = 10

func (o RenderOptions) scale() float64 {
	switch {
	case math.IsNaN(o.Scale), o.Scale <= 0:
		return 1
	case math.IsInf(o.Scale, 1), o.Scale > maxScale:
		return maxScale
	}
	return o.Scale
}

// NodeStyle is how one node is drawn under a hover state.
type NodeStyle struct {
	Radius      float64
	BorderWidth float64
	Alpha       float64
	Glow        bool
	ShowLabel   bool
	LabelAlpha  float64
	FontSize    float64
}

// StyleNode computes the drawing style of n.
func (v *View) StyleNode(n Node, opts RenderOptions) NodeStyle {
	hovered := n.ID == opts.HoverNode && opts.HoverNode != ""
	connected := v.ConnectedToHover(n.ID, opts.HoverNode)
	s := NodeStyle{
		Radius:      7,
		BorderWidth: 1.5,
		Alpha:       v.NodeAlpha(n.ID, opts.HoverNode),
		ShowLabel:   hovered || opts.scale() > 1.8,
		LabelAlpha:  0.15,
		FontSize:    math.Max(11, 13/opts.scale()),
	}
	if hovered {
		s.Radius = 9
		s.BorderWidth = 2.5
		s.Glow = true
	}
	if connected {
		s.LabelAlpha = 0.95
	}
	return s
}

// LinkStyle is how one link is drawn under a hover state.
type LinkStyle struct {
	Width     float64
	Dashed    bool
	Alpha     float64
	ShowLabel bool
	FontSize  float64
}

// StyleLink computes the drawing style of l.
func (v *View) StyleLink(l Link, opts RenderOptions) LinkStyle {
	hovered := l.ID == opts.HoverLink && opts.HoverLink != ""
	s := LinkStyle{
		Width:    1.5,
		Dashed:   l.IsLowConfidence() && !l.IsConflict(),
		Alpha:    v.LinkAlpha(l, opts.HoverNode, opts.HoverLink),
		FontSize: math.Max(8, 10/opts.scale()),
	}
	switch {
	case hovered:
		s.Width = 3
	case l.IsConflict():
		s.Width = 2.2
	}
	s.ShowLabel = (hovered || opts.scale() > 1.2) && v.LinkConnectedToHover(l, opts.HoverNode)
	return s
}

// EdgeCurve holds the quadratic curve and arrowhead of a link.
type EdgeCurve struct {
	Control    Point
	ArrowTip   Point
	ArrowLeft  Point
	ArrowRight Point
}

const (
	arrowLength = 10
	arrowAngle  = math.Pi / 6
	arrowInset  = 8
	arrowT      = 0.85
)

// CurveFor computes the control point and arrowhead of an edge from src to
// dst. A zero curvature is drawn with a slight default bend of 0.2.
func CurveFor(src, dst Point, curvature float64) EdgeCurve {
	if curvature == 0 {
		curvature = 0.2
	}
	mid := Point{X: (src.X + dst.X) / 2, Y: (src.Y + dst.Y) / 2}
	dx, dy := dst.X-src.X, dst.Y-src.Y
	cp := Point{X: mid.X - dy*curvature, Y: mid.Y + dx*curvature}

	t := arrowT
	qx := (1-t)*(1-t)*src.X + 2*(1-t)*t*cp.X + t*t*dst.X
	qy := (1-t)*(1-t)*src.Y + 2*(1-t)*t*cp.Y + t*t*dst.Y
	angle := math.Atan2(dst.Y-qy, dst.X-qx)

	tip := Point{X: dst.X - arrowInset*math.Cos(angle), Y: dst.Y - arrowInset*math.Sin(angle)}
	return EdgeCurve{
		Control:  cp,
		ArrowTip: tip,
		ArrowLeft: Point{
			X: tip.X - arrowLength*math.Cos(angle-arrowAngle),
			Y: tip.Y - arrowLength*math.Sin(angle-arrowAngle),
		},
		ArrowRight: Point{
			X: tip.X - arrowLength*math.Cos(angle+arrowAngle),
			Y: tip.Y - arrowLength*math.Sin(angle+arrowAngle),
		},
	}
}

// ConfidenceText formats a confidence as a rounded percentage.
func ConfidenceText(c float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(c*100)))
}

func withAlpha(c color.NRGBA, alpha float64) color.NRGBA {
	c.A = uint8(math.Round(float64(c.A) * clamp01(alpha)))
	return c
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}

func css(c color.NRGBA) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%.3f)", c.R, c.G, c.B, float64(c.A)/255)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// legendTypes is the legend order.
var legendTypes = []models.EntityType{
	models.EntityTypeEvent,
	models.EntityTypeLocation,
	models.EntityTypeUnit,
	models.EntityTypePerson,
	models.EntityTypeSource,
}
