package view

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"
)

// RenderSVG draws a scene as a static SVG document. The snapshot CLI uses
// it to export a converged layout; the interactive client renders the same
// scene model itself.
func RenderSVG(w io.Writer, scene Scene, vp *Viewport) {
	canvas := svg.New(w)
	canvas.Start(int(vp.Width), int(vp.Height))
	defer canvas.End()

	canvas.Rect(0, 0, int(vp.Width), int(vp.Height), "fill:#fafafa")

	if scene.Empty {
		canvas.Text(int(vp.Width/2), int(vp.Height/2), "No people match the current filters",
			"text-anchor:middle;font-size:16px;fill:#616161;font-family:sans-serif")
		return
	}

	nodeAt := make(map[string]SceneNode, len(scene.Nodes))
	for _, n := range scene.Nodes {
		nodeAt[n.ID] = n
	}

	// Edges first so nodes draw over them.
	for _, e := range scene.Edges {
		a, okA := nodeAt[e.SourceID]
		b, okB := nodeAt[e.TargetID]
		if !okA || !okB {
			continue
		}
		ax, ay := vp.ToScreen(a.X, a.Y)
		bx, by := vp.ToScreen(b.X, b.Y)
		canvas.Line(int(ax), int(ay), int(bx), int(by),
			fmt.Sprintf("stroke:%s;stroke-width:%.1f;stroke-opacity:0.7", e.Color, e.Stroke*vp.Scale))

		label := e.SourceLabel
		if e.TargetLabel != e.SourceLabel {
			label = e.SourceLabel + " / " + e.TargetLabel
		}
		canvas.Text(int((ax+bx)/2), int((ay+by)/2)-4, label,
			"text-anchor:middle;font-size:9px;fill:#757575;font-family:sans-serif")
	}

	for _, n := range scene.Nodes {
		x, y := vp.ToScreen(n.X, n.Y)
		r := n.Radius * vp.Scale
		if n.IsCenter {
			canvas.Circle(int(x), int(y), int(r+4),
				fmt.Sprintf("fill:none;stroke:%s;stroke-width:3", centerHalo))
		}
		canvas.Circle(int(x), int(y), int(r), "fill:#546e7a;stroke:#37474f;stroke-width:1.5")
		canvas.Text(int(x), int(y+r)+12, n.Label,
			"text-anchor:middle;font-size:11px;fill:#212121;font-family:sans-serif")
	}
}
