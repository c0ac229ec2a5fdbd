package view

import (
	"fmt"

	"kith-backend/domain/core/aggregates"
	"kith-backend/domain/core/valueobjects"
)

// Interactor translates pointer gestures on the rendered scene into engine
// operations. It holds only view-side state: a node click re-centers
// through the supplied callback, the open-profile affordance hands the
// person id to an external navigator, and a background click does nothing.
// Routing is the navigator's concern, never the view's.
type Interactor struct {
	viewport *Viewport
	recenter func(valueobjects.PersonID) error
	navigate func(personID string)

	scene Scene
	sub   *aggregates.Subgraph
	types TypeLookup
}

// NewInteractor wires pointer handling to a viewport and the two outward
// callbacks. Either callback may be nil, turning that gesture into a no-op.
func NewInteractor(viewport *Viewport, recenter func(valueobjects.PersonID) error, navigate func(string)) *Interactor {
	return &Interactor{
		viewport: viewport,
		recenter: recenter,
		navigate: navigate,
	}
}

// Show replaces the scene the interactor resolves gestures against. The
// subgraph and type lookup back the hover tooltips.
func (in *Interactor) Show(scene Scene, sub *aggregates.Subgraph, types TypeLookup) {
	in.scene = scene
	in.sub = sub
	in.types = types
}

// Click re-centers the view on the node under the pointer. Clicks on edges
// or empty background change nothing.
func (in *Interactor) Click(sx, sy float64) error {
	hit, ok := HitTestScene(in.scene, in.viewport, sx, sy)
	if !ok || hit.NodeID == "" || in.recenter == nil {
		return nil
	}
	id, err := valueobjects.NewPersonIDFromString(hit.NodeID)
	if err != nil {
		return err
	}
	return in.recenter(id)
}

// OpenProfile emits the id of the node under the pointer to the navigator
// and reports whether a node was there.
func (in *Interactor) OpenProfile(sx, sy float64) bool {
	hit, ok := HitTestScene(in.scene, in.viewport, sx, sy)
	if !ok || hit.NodeID == "" {
		return false
	}
	if in.navigate != nil {
		in.navigate(hit.NodeID)
	}
	return true
}

// HoverDetail is the tooltip model under the pointer: exactly one of Node
// or Edge is set.
type HoverDetail struct {
	Node *Tooltip     `json:"node,omitempty"`
	Edge *EdgeTooltip `json:"edge,omitempty"`
}

// Hover resolves the tooltip under the pointer, if any.
func (in *Interactor) Hover(sx, sy float64) (HoverDetail, bool) {
	hit, ok := HitTestScene(in.scene, in.viewport, sx, sy)
	if !ok || in.sub == nil {
		return HoverDetail{}, false
	}
	if hit.NodeID != "" {
		id, err := valueobjects.NewPersonIDFromString(hit.NodeID)
		if err != nil {
			return HoverDetail{}, false
		}
		tip, ok := NodeTooltip(in.sub, in.types, id)
		if !ok {
			return HoverDetail{}, false
		}
		return HoverDetail{Node: &tip}, true
	}
	tip, ok := EdgeTooltipFor(in.sub, in.types, hit.EdgeSource, hit.EdgeTarget, hit.EdgeType)
	if !ok {
		return HoverDetail{}, false
	}
	return HoverDetail{Edge: &tip}, true
}

// EdgeTooltip is the hover detail for a relationship edge.
type EdgeTooltip struct {
	TypeName    string `json:"type_name"`
	Description string `json:"description"`
	Strength    int    `json:"strength,omitempty"`
	StartedDate string `json:"started_date,omitempty"`
}

// EdgeTooltipFor assembles the hover tooltip for the edge identified by its
// endpoints and type name, described from the source's perspective.
func EdgeTooltipFor(sub *aggregates.Subgraph, types TypeLookup, sourceID, targetID, typeName string) (EdgeTooltip, bool) {
	for _, rel := range sub.Edges() {
		if rel.SourceID.String() != sourceID || rel.TargetID.String() != targetID || rel.TypeName != typeName {
			continue
		}
		source, okS := sub.Node(rel.SourceID)
		target, okT := sub.Node(rel.TargetID)
		if !okS || !okT {
			return EdgeTooltip{}, false
		}
		label := rel.TypeName
		if t, ok := types.TypeByName(rel.TypeName); ok {
			label = t.LabelFrom(true)
		}
		tip := EdgeTooltip{
			TypeName:    rel.TypeName,
			Description: fmt.Sprintf("%s is %s of %s", source.DisplayName(), label, target.DisplayName()),
			Strength:    rel.Strength,
		}
		if rel.StartedDate != nil {
			tip.StartedDate = rel.StartedDate.Format("2006-01-02")
		}
		return tip, true
	}
	return EdgeTooltip{}, false
}
