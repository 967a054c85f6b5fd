package graph

import (
	"fmt"
	"io"
	"math"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"
)

// Canvas is a positioned view ready to draw.
type Canvas struct {
	View      *View
	Positions map[string]Point
	Width     int
	Height    int
}

func (c Canvas) pos(id string) Point {
	if p, ok := c.Positions[id]; ok {
		return p
	}
	return Point{X: float64(c.Width) / 2, Y: float64(c.Height) / 2}
}

// RenderPNG draws the canvas as a PNG image.
func RenderPNG(w io.Writer, c Canvas, opts RenderOptions) error {
	dc := gg.NewContext(c.Width, c.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	for _, l := range c.View.Links {
		drawLink(dc, c, l, opts)
	}
	for _, n := range c.View.Nodes {
		drawNode(dc, c, n, opts)
	}
	drawHeader(dc, c, opts)
	if opts.ShowLegend {
		drawLegend(dc, c)
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func drawLink(dc *gg.Context, c Canvas, l Link, opts RenderOptions) {
	style := c.View.StyleLink(l, opts)
	palette := paletteForEdge(l.Type)
	src, dst := c.pos(l.Source), c.pos(l.Target)
	curve := CurveFor(src, dst, l.Curvature)

	dc.SetColor(withAlpha(palette.Line, style.Alpha))
	dc.SetLineWidth(style.Width)
	if style.Dashed {
		dc.SetDash(8, 5)
	} else {
		dc.SetDash()
	}
	dc.NewSubPath()
	dc.MoveTo(src.X, src.Y)
	dc.QuadraticTo(curve.Control.X, curve.Control.Y, dst.X, dst.Y)
	dc.Stroke()
	dc.SetDash()

	dc.SetLineWidth(2)
	dc.DrawLine(curve.ArrowTip.X, curve.ArrowTip.Y, curve.ArrowLeft.X, curve.ArrowLeft.Y)
	dc.DrawLine(curve.ArrowTip.X, curve.ArrowTip.Y, curve.ArrowRight.X, curve.ArrowRight.Y)
	dc.Stroke()

	if !style.ShowLabel {
		return
	}
	label := l.Label()
	conf := ConfidenceText(l.Confidence)
	lw, lh := dc.MeasureString(label)
	cw, _ := dc.MeasureString(conf)
	total := lw + cw + 10
	const pad = 3
	x := curve.Control.X - total/2
	y := curve.Control.Y - lh/2 - 2

	alpha := 0.75
	switch {
	case l.ID == opts.HoverLink:
		alpha = 0.98
	case opts.scale() > 1.8:
		alpha = 0.9
	}
	dc.SetColor(withAlpha(colorEdgeLabelBG, alpha))
	dc.DrawRoundedRectangle(x-pad, y-pad, total+pad*2, lh+pad*2, 3)
	dc.Fill()
	dc.SetColor(withAlpha(palette.Line, alpha))
	dc.SetLineWidth(0.8)
	dc.DrawRoundedRectangle(x-pad, y-pad, total+pad*2, lh+pad*2, 3)
	dc.Stroke()

	dc.SetColor(withAlpha(palette.Label, alpha))
	dc.DrawStringAnchored(label, x, y+lh/2, 0, 0.5)
	confColor := colorConfHigh
	if l.IsLowConfidence() {
		confColor = colorConfLow
	}
	dc.SetColor(withAlpha(confColor, alpha))
	dc.DrawStringAnchored(conf, x+lw+6, y+lh/2, 0, 0.5)
}

func drawNode(dc *gg.Context, c Canvas, n Node, opts RenderOptions) {
	style := c.View.StyleNode(n, opts)
	palette := paletteForNode(n.Type)
	p := c.pos(n.ID)
	r := style.Radius

	if style.Glow {
		for i := 3; i >= 1; i-- {
			dc.SetColor(withAlpha(palette.Glow, style.Alpha*0.35))
			dc.DrawCircle(p.X, p.Y, r+float64(i)*4)
			dc.Fill()
		}
	}

	dc.SetColor(withAlpha(palette.Fill, style.Alpha))
	dc.DrawCircle(p.X, p.Y, r)
	dc.Fill()

	dc.SetColor(withAlpha(colorHighlight, style.Alpha))
	dc.DrawCircle(p.X-r*0.25, p.Y-r*0.25, r*0.4)
	dc.Fill()

	dc.SetColor(withAlpha(palette.Stroke, style.Alpha))
	dc.SetLineWidth(style.BorderWidth)
	dc.DrawCircle(p.X, p.Y, r)
	dc.Stroke()

	if !style.ShowLabel {
		return
	}
	const pad = 6
	tw, th := dc.MeasureString(n.Name)
	x := p.X + r + 8
	y := p.Y - th/2
	dc.SetColor(withAlpha(colorPanel, style.LabelAlpha))
	dc.DrawRoundedRectangle(x-pad, y-pad, tw+pad*2, th+pad*2, 4)
	dc.Fill()
	dc.SetColor(withAlpha(palette.Stroke, style.LabelAlpha))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x-pad, y-pad, tw+pad*2, th+pad*2, 4)
	dc.Stroke()
	dc.SetColor(withAlpha(colorText, style.LabelAlpha))
	dc.DrawStringAnchored(n.Name, x, y+th/2, 0, 0.5)
}

func drawHeader(dc *gg.Context, c Canvas, opts RenderOptions) {
	if opts.Title == "" {
		return
	}
	dc.SetColor(colorText)
	dc.DrawStringAnchored(truncate(opts.Title, 80), 20, 20, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(fmt.Sprintf("filter: %s  nodes: %d  links: %d", c.View.Filter, len(c.View.Nodes), len(c.View.Links)), 20, 38, 0, 0.5)
}

func drawLegend(dc *gg.Context, c Canvas) {
	const boxW, rowH = 130.0, 18.0
	boxH := rowH*float64(len(legendTypes)) + 30
	x := float64(c.Width) - boxW - 16
	y := float64(c.Height) - boxH - 16

	dc.SetColor(colorPanel)
	dc.DrawRoundedRectangle(x, y, boxW, boxH, 8)
	dc.Fill()
	dc.SetColor(colorText)
	dc.DrawStringAnchored("Legend", x+12, y+16, 0, 0.5)
	for i, t := range legendTypes {
		ry := y + 34 + float64(i)*rowH
		dc.SetColor(paletteForNode(t).Fill)
		dc.DrawCircle(x+18, ry, 5)
		dc.Fill()
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(string(t), x+30, ry, 0, 0.5)
	}
}

// RenderSVG draws the canvas as an SVG document.
func RenderSVG(w io.Writer, c Canvas, opts RenderOptions) error {
	canvas := svg.New(w)
	canvas.Start(c.Width, c.Height)
	canvas.Rect(0, 0, c.Width, c.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))

	for _, l := range c.View.Links {
		drawLinkSVG(canvas, c, l, opts)
	}
	for _, n := range c.View.Nodes {
		drawNodeSVG(canvas, c, n, opts)
	}
	if opts.Title != "" {
		canvas.Text(20, 24, truncate(opts.Title, 80), fmt.Sprintf("fill:%s;font-size:14px;font-family:monospace;font-weight:bold", css(colorText)))
		canvas.Text(20, 42, fmt.Sprintf("filter: %s  nodes: %d  links: %d", c.View.Filter, len(c.View.Nodes), len(c.View.Links)),
			fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))
	}
	if opts.ShowLegend {
		drawLegendSVG(canvas, c)
	}
	canvas.End()
	return nil
}

func drawLinkSVG(canvas *svg.SVG, c Canvas, l Link, opts RenderOptions) {
	style := c.View.StyleLink(l, opts)
	palette := paletteForEdge(l.Type)
	src, dst := c.pos(l.Source), c.pos(l.Target)
	curve := CurveFor(src, dst, l.Curvature)

	stroke := fmt.Sprintf("fill:none;stroke:%s;stroke-width:%.1f", css(withAlpha(palette.Line, style.Alpha)), style.Width)
	if style.Dashed {
		stroke += ";stroke-dasharray:8,5"
	}
	canvas.Path(fmt.Sprintf("M%.1f,%.1f Q%.1f,%.1f %.1f,%.1f", src.X, src.Y, curve.Control.X, curve.Control.Y, dst.X, dst.Y),
		fmt.Sprintf(`data-id="%s" style="%s"`, l.ID, stroke))

	arrow := fmt.Sprintf("stroke:%s;stroke-width:2", css(withAlpha(palette.Line, style.Alpha)))
	canvas.Line(round(curve.ArrowTip.X), round(curve.ArrowTip.Y), round(curve.ArrowLeft.X), round(curve.ArrowLeft.Y), arrow)
	canvas.Line(round(curve.ArrowTip.X), round(curve.ArrowTip.Y), round(curve.ArrowRight.X), round(curve.ArrowRight.Y), arrow)

	if !style.ShowLabel {
		return
	}
	text := l.Label() + " " + ConfidenceText(l.Confidence)
	width := int(float64(len(text)) * style.FontSize * 0.62)
	x := round(curve.Control.X) - width/2
	y := round(curve.Control.Y)
	canvas.Roundrect(x-3, y-int(style.FontSize)-3, width+6, int(style.FontSize)+8, 3, 3,
		fmt.Sprintf("fill:%s;stroke:%s;stroke-width:0.8", css(colorEdgeLabelBG), css(palette.Line)))
	canvas.Text(x, y, text, fmt.Sprintf("fill:%s;font-size:%.0fpx;font-family:monospace", css(palette.Label), style.FontSize))
}

func drawNodeSVG(canvas *svg.SVG, c Canvas, n Node, opts RenderOptions) {
	style := c.View.StyleNode(n, opts)
	palette := paletteForNode(n.Type)
	p := c.pos(n.ID)
	r := style.Radius

	canvas.Gid(svgID("node", n.ID))
	if style.Glow {
		canvas.Circle(round(p.X), round(p.Y), round(r+12), fmt.Sprintf("fill:%s", css(withAlpha(palette.Glow, style.Alpha*0.5))))
	}
	canvas.Circle(round(p.X), round(p.Y), round(r),
		fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%.1f", css(withAlpha(palette.Fill, style.Alpha)), css(withAlpha(palette.Stroke, style.Alpha)), style.BorderWidth))
	canvas.Circle(round(p.X-r*0.25), round(p.Y-r*0.25), round(r*0.4), fmt.Sprintf("fill:%s", css(withAlpha(colorHighlight, style.Alpha))))
	if style.ShowLabel {
		x := round(p.X + r + 8)
		width := int(float64(len(n.Name))*style.FontSize*0.6) + 12
		canvas.Roundrect(x-6, round(p.Y-style.FontSize/2)-6, width, int(style.FontSize)+12, 4, 4,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(withAlpha(colorPanel, style.LabelAlpha)), css(withAlpha(palette.Stroke, style.LabelAlpha))))
		canvas.Text(x, round(p.Y+style.FontSize/2), n.Name,
			fmt.Sprintf("fill:%s;font-size:%.0fpx;font-family:sans-serif", css(withAlpha(colorText, style.LabelAlpha)), style.FontSize))
	}
	canvas.Gend()
}

func drawLegendSVG(canvas *svg.SVG, c Canvas) {
	const boxW, rowH = 130, 18
	boxH := rowH*len(legendTypes) + 30
	x := c.Width - boxW - 16
	y := c.Height - boxH - 16
	canvas.Roundrect(x, y, boxW, boxH, 8, 8, fmt.Sprintf("fill:%s", css(colorPanel)))
	canvas.Text(x+12, y+18, "Legend", fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;font-weight:bold", css(colorText)))
	for i, t := range legendTypes {
		ry := y + 34 + i*rowH
		canvas.Circle(x+18, ry, 5, fmt.Sprintf("fill:%s", css(paletteForNode(t).Fill)))
		canvas.Text(x+30, ry+4, string(t), fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))
	}
}

func round(f float64) int {
	return int(math.Round(f))
}

func svgID(prefix, id string) string {
	return prefix + "-" + strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, id)
}
