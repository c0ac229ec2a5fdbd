package view

import (
	"fmt"
	"sort"

	"kith-backend/domain/core/aggregates"
	"kith-backend/domain/core/valueobjects"
	"kith-backend/domain/layout"
)

// Node radius bounds in world units. Radius scales with the person's
// network-wide degree, not the degree within the current subgraph, so a
// well-connected person stays visually large under a narrow filter.
const (
	minNodeRadius  = 8
	maxNodeRadius  = 26
	radiusPerEdge  = 1.5
	fallbackColor  = "#9e9e9e"
	centerHalo     = "#ffca28"
	maxEdgeStroke  = 4.0
	baseEdgeStroke = 1.0
)

// categoryColors maps well-known categories to their hues. Unknown
// categories fall back to grey.
var categoryColors = map[valueobjects.Category]string{
	valueobjects.CategoryFamily:       "#e53935",
	valueobjects.CategoryProfessional: "#1e88e5",
	valueobjects.CategorySocial:       "#43a047",
}

// CategoryColor returns the hue for a category.
func CategoryColor(c valueobjects.Category) string {
	if color, ok := categoryColors[c]; ok {
		return color
	}
	return fallbackColor
}

// SceneNode is a drawable person node.
type SceneNode struct {
	ID        string  `json:"id"`
	Label     string  `json:"label"`
	AvatarRef string  `json:"avatar_ref,omitempty"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Radius    float64 `json:"radius"`
	IsCenter  bool    `json:"is_center"`
	Degree    int     `json:"degree"`
}

// SceneEdge is a drawable relationship edge. Each relationship appears
// exactly once; SourceLabel and TargetLabel carry the perspective-dependent
// names of an asymmetric type.
type SceneEdge struct {
	SourceID    string  `json:"source_id"`
	TargetID    string  `json:"target_id"`
	TypeName    string  `json:"type_name"`
	SourceLabel string  `json:"source_label"`
	TargetLabel string  `json:"target_label"`
	Category    string  `json:"category"`
	Color       string  `json:"color"`
	Stroke      float64 `json:"stroke"`
}

// Scene is the drawable model for one frame: everything a renderer needs,
// with no reference back into the domain aggregates.
type Scene struct {
	Nodes []SceneNode `json:"nodes"`
	Edges []SceneEdge `json:"edges"`
	Empty bool        `json:"empty"`
}

// TypeLookup resolves relationship type metadata by forward name. The
// network aggregate satisfies it directly.
type TypeLookup interface {
	TypeByName(name string) (valueobjects.RelationshipType, bool)
}

// BuildScene projects a subgraph and its current positions into a drawable
// scene. Nodes without a position yet (a frame from an older generation, or
// a race during reseeding) are placed at the origin rather than dropped, so
// the node set always matches the subgraph.
func BuildScene(sub *aggregates.Subgraph, types TypeLookup, positions map[string]layout.Position) Scene {
	if sub == nil || sub.IsEmpty() {
		return Scene{Empty: true}
	}

	scene := Scene{
		Nodes: make([]SceneNode, 0, sub.NodeCount()),
		Edges: make([]SceneEdge, 0, sub.EdgeCount()),
	}

	var centerKey string
	if c := sub.CenterID(); c != nil {
		centerKey = c.String()
	}

	for _, id := range sub.NodeIDs() {
		person, _ := sub.Node(id)
		key := id.String()
		pos := positions[key]
		scene.Nodes = append(scene.Nodes, SceneNode{
			ID:        key,
			Label:     person.DisplayName(),
			AvatarRef: person.AvatarRef(),
			X:         pos.X,
			Y:         pos.Y,
			Radius:    nodeRadius(person.RelationshipCount()),
			IsCenter:  key == centerKey,
			Degree:    person.RelationshipCount(),
		})
	}

	for _, rel := range sub.Edges() {
		edge := SceneEdge{
			SourceID:    rel.SourceID.String(),
			TargetID:    rel.TargetID.String(),
			TypeName:    rel.TypeName,
			SourceLabel: rel.TypeName,
			TargetLabel: rel.TypeName,
			Color:       fallbackColor,
			Stroke:      edgeStroke(rel.Strength),
		}
		if t, ok := types.TypeByName(rel.TypeName); ok {
			edge.SourceLabel = t.LabelFrom(true)
			edge.TargetLabel = t.LabelFrom(false)
			edge.Category = t.Category().String()
			edge.Color = CategoryColor(t.Category())
		}
		scene.Edges = append(scene.Edges, edge)
	}
	sort.Slice(scene.Edges, func(i, j int) bool {
		a, b := scene.Edges[i], scene.Edges[j]
		if a.SourceID != b.SourceID {
			return a.SourceID < b.SourceID
		}
		if a.TargetID != b.TargetID {
			return a.TargetID < b.TargetID
		}
		return a.TypeName < b.TypeName
	})

	return scene
}

func nodeRadius(degree int) float64 {
	r := minNodeRadius + radiusPerEdge*float64(degree)
	if r > maxNodeRadius {
		return maxNodeRadius
	}
	return r
}

func edgeStroke(strength int) float64 {
	if strength <= 0 {
		return baseEdgeStroke
	}
	s := baseEdgeStroke + float64(strength-1)*0.75
	if s > maxEdgeStroke {
		return maxEdgeStroke
	}
	return s
}

// Tooltip is the hover detail for a node.
type Tooltip struct {
	PersonID    string   `json:"person_id"`
	DisplayName string   `json:"display_name"`
	Degree      int      `json:"degree"`
	Lines       []string `json:"lines"`
}

// NodeTooltip assembles the hover tooltip for a node: the person's name,
// their network-wide degree and one line per incident edge in the current
// subgraph, labelled from the hovered person's perspective.
func NodeTooltip(sub *aggregates.Subgraph, types TypeLookup, id valueobjects.PersonID) (Tooltip, bool) {
	person, ok := sub.Node(id)
	if !ok {
		return Tooltip{}, false
	}

	tip := Tooltip{
		PersonID:    id.String(),
		DisplayName: person.DisplayName(),
		Degree:      person.RelationshipCount(),
	}
	for _, rel := range sub.Edges() {
		if !rel.SourceID.Equals(id) && !rel.TargetID.Equals(id) {
			continue
		}
		other, _ := sub.Node(rel.Other(id))
		label := rel.TypeName
		if t, ok := types.TypeByName(rel.TypeName); ok {
			label = t.LabelFrom(rel.SourceID.Equals(id))
		}
		tip.Lines = append(tip.Lines, fmt.Sprintf("%s of %s", label, other.DisplayName()))
	}
	sort.Strings(tip.Lines)
	return tip, true
}

// HitTest resolves a screen coordinate against the scene. It checks nodes
// front to back first (the center and later nodes draw on top), then edges
// within a small tolerance, and returns the IDs of whatever was hit.
type Hit struct {
	NodeID     string
	EdgeSource string
	EdgeTarget string
	EdgeType   string
}

// edgeHitTolerance is the screen-space slack for clicking an edge.
const edgeHitTolerance = 5.0

// HitTestScene maps a screen position to the topmost node, or failing that
// the nearest edge within tolerance. The boolean reports whether anything
// was hit.
func HitTestScene(scene Scene, vp *Viewport, sx, sy float64) (Hit, bool) {
	// Later nodes render on top, so scan in reverse draw order.
	for i := len(scene.Nodes) - 1; i >= 0; i-- {
		n := scene.Nodes[i]
		nx, ny := vp.ToScreen(n.X, n.Y)
		dx, dy := sx-nx, sy-ny
		r := n.Radius * vp.Scale
		if dx*dx+dy*dy <= r*r {
			return Hit{NodeID: n.ID}, true
		}
	}

	nodeAt := make(map[string]SceneNode, len(scene.Nodes))
	for _, n := range scene.Nodes {
		nodeAt[n.ID] = n
	}
	bestDist := edgeHitTolerance
	var best *SceneEdge
	for i := range scene.Edges {
		e := scene.Edges[i]
		a, okA := nodeAt[e.SourceID]
		b, okB := nodeAt[e.TargetID]
		if !okA || !okB {
			continue
		}
		ax, ay := vp.ToScreen(a.X, a.Y)
		bx, by := vp.ToScreen(b.X, b.Y)
		if d := distanceToSegment(sx, sy, ax, ay, bx, by); d <= bestDist {
			bestDist = d
			best = &scene.Edges[i]
		}
	}
	if best != nil {
		return Hit{EdgeSource: best.SourceID, EdgeTarget: best.TargetID, EdgeType: best.TypeName}, true
	}
	return Hit{}, false
}
