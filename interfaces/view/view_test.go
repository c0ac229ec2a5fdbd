package view

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kith-backend/domain/core/aggregates"
	"kith-backend/domain/core/entities"
	"kith-backend/domain/core/valueobjects"
	"kith-backend/domain/layout"
)

// familyFixture builds a three-person subgraph with an asymmetric Parent
// type and its network for type lookups: alice is bob's parent, bob and
// carol are friends, alice is the center.
func familyFixture(t *testing.T) (*aggregates.Network, *aggregates.Subgraph) {
	t.Helper()
	network := aggregates.NewNetwork()

	parent, err := valueobjects.NewRelationshipType("Parent", "Child", true, valueobjects.CategoryFamily)
	require.NoError(t, err)
	network.AddRelationshipType(parent)
	friend, err := valueobjects.NewRelationshipType("Friend", "", false, valueobjects.CategorySocial)
	require.NoError(t, err)
	network.AddRelationshipType(friend)

	people := []struct {
		id     string
		name   string
		degree int
	}{
		{"alice", "Alice", 1},
		{"bob", "Bob", 2},
		{"carol", "Carol", 30},
	}
	for _, person := range people {
		id, err := valueobjects.NewPersonIDFromString(person.id)
		require.NoError(t, err)
		p, err := entities.ReconstructPerson(id, person.name, "", person.degree)
		require.NoError(t, err)
		require.NoError(t, network.AddPerson(p))
	}

	mk := func(source, target, typeName string) aggregates.Relationship {
		sourceID, err := valueobjects.NewPersonIDFromString(source)
		require.NoError(t, err)
		targetID, err := valueobjects.NewPersonIDFromString(target)
		require.NoError(t, err)
		return aggregates.Relationship{SourceID: sourceID, TargetID: targetID, TypeName: typeName, Strength: 4}
	}
	require.NoError(t, network.AddRelationship(mk("alice", "bob", "Parent")))
	require.NoError(t, network.AddRelationship(mk("bob", "carol", "Friend")))

	centerID, err := valueobjects.NewPersonIDFromString("alice")
	require.NoError(t, err)
	sub := aggregates.NewSubgraph(&centerID)
	for _, p := range network.Persons() {
		sub.AddNode(p)
	}
	for _, rel := range network.Relationships() {
		require.NoError(t, sub.AddEdge(rel))
	}
	return network, sub
}

func fixturePositions() map[string]layout.Position {
	return map[string]layout.Position{
		"alice": {X: 0, Y: 0},
		"bob":   {X: 100, Y: 0},
		"carol": {X: 100, Y: 100},
	}
}

func TestBuildScene_NodesAndEdges(t *testing.T) {
	network, sub := familyFixture(t)

	scene := BuildScene(sub, network, fixturePositions())

	require.False(t, scene.Empty)
	require.Len(t, scene.Nodes, 3)
	require.Len(t, scene.Edges, 2)

	// Nodes come out in sorted ID order; the center is flagged.
	assert.Equal(t, "alice", scene.Nodes[0].ID)
	assert.True(t, scene.Nodes[0].IsCenter)
	assert.False(t, scene.Nodes[1].IsCenter)
}

func TestBuildScene_RadiusScalesAndClamps(t *testing.T) {
	network, sub := familyFixture(t)

	scene := BuildScene(sub, network, fixturePositions())

	byID := map[string]SceneNode{}
	for _, n := range scene.Nodes {
		byID[n.ID] = n
	}
	assert.Greater(t, byID["bob"].Radius, byID["alice"].Radius)
	// carol's degree of 30 would exceed the cap.
	assert.Equal(t, float64(maxNodeRadius), byID["carol"].Radius)
}

func TestBuildScene_AsymmetricLabels(t *testing.T) {
	network, sub := familyFixture(t)

	scene := BuildScene(sub, network, fixturePositions())

	var parentEdge SceneEdge
	for _, e := range scene.Edges {
		if e.TypeName == "Parent" {
			parentEdge = e
		}
	}
	assert.Equal(t, "Parent", parentEdge.SourceLabel)
	assert.Equal(t, "Child", parentEdge.TargetLabel)
	assert.Equal(t, "family", parentEdge.Category)
	assert.Equal(t, CategoryColor(valueobjects.CategoryFamily), parentEdge.Color)
}

func TestBuildScene_EachRelationshipDrawnOnce(t *testing.T) {
	network, sub := familyFixture(t)

	scene := BuildScene(sub, network, fixturePositions())

	seen := map[string]int{}
	for _, e := range scene.Edges {
		seen[e.SourceID+"|"+e.TargetID+"|"+e.TypeName]++
	}
	for key, count := range seen {
		assert.Equal(t, 1, count, "edge %s drawn %d times", key, count)
	}
}

func TestBuildScene_EmptySubgraph(t *testing.T) {
	network := aggregates.NewNetwork()
	sub := aggregates.NewSubgraph(nil)

	scene := BuildScene(sub, network, nil)

	assert.True(t, scene.Empty)
	assert.Empty(t, scene.Nodes)
}

func TestCategoryColor_UnknownFallsBackToGrey(t *testing.T) {
	assert.Equal(t, fallbackColor, CategoryColor(valueobjects.Category("custom")))
	assert.NotEqual(t, fallbackColor, CategoryColor(valueobjects.CategorySocial))
}

func TestNodeTooltip_LabelsFromPerspective(t *testing.T) {
	network, sub := familyFixture(t)

	bobID, err := valueobjects.NewPersonIDFromString("bob")
	require.NoError(t, err)
	tip, ok := NodeTooltip(sub, network, bobID)

	require.True(t, ok)
	assert.Equal(t, "Bob", tip.DisplayName)
	assert.Equal(t, 2, tip.Degree)
	// bob is the target of the Parent edge, so from his side it reads Child.
	assert.Contains(t, tip.Lines, "Child of Alice")
	assert.Contains(t, tip.Lines, "Friend of Carol")
}

func TestNodeTooltip_UnknownNode(t *testing.T) {
	network, sub := familyFixture(t)

	ghostID, err := valueobjects.NewPersonIDFromString("ghost")
	require.NoError(t, err)
	_, ok := NodeTooltip(sub, network, ghostID)

	assert.False(t, ok)
}

func TestViewport_ScreenWorldRoundTrip(t *testing.T) {
	vp := NewViewport(800, 600)
	vp.Pan(37, -12)
	vp.ZoomAt(1.7, 200, 300)

	sx, sy := vp.ToScreen(55, -20)
	wx, wy := vp.ToWorld(sx, sy)

	assert.InDelta(t, 55, wx, 1e-9)
	assert.InDelta(t, -20, wy, 1e-9)
}

func TestViewport_ZoomAtKeepsPointStationary(t *testing.T) {
	vp := NewViewport(800, 600)
	wx, wy := vp.ToWorld(250, 130)

	vp.ZoomAt(2.5, 250, 130)

	sx, sy := vp.ToScreen(wx, wy)
	assert.InDelta(t, 250, sx, 1e-9)
	assert.InDelta(t, 130, sy, 1e-9)
}

func TestViewport_ZoomClamped(t *testing.T) {
	vp := NewViewport(800, 600)

	vp.ZoomAt(1e6, 0, 0)
	assert.Equal(t, float64(maxScale), vp.Scale)

	vp.ZoomAt(1e-9, 0, 0)
	assert.Equal(t, float64(minScale), vp.Scale)
}

func TestViewport_PanDoesNotChangeScale(t *testing.T) {
	vp := NewViewport(800, 600)

	vp.Pan(500, -300)

	assert.Equal(t, 1.0, vp.Scale)
}

func TestHitTestScene_NodeAndEdge(t *testing.T) {
	network, sub := familyFixture(t)
	scene := BuildScene(sub, network, fixturePositions())
	vp := NewViewport(800, 600) // world origin maps to (400, 300)

	// Dead center of alice.
	hit, ok := HitTestScene(scene, vp, 400, 300)
	require.True(t, ok)
	assert.Equal(t, "alice", hit.NodeID)

	// Midway along the alice-bob edge, just off the line.
	hit, ok = HitTestScene(scene, vp, 450, 302)
	require.True(t, ok)
	assert.Empty(t, hit.NodeID)
	assert.Equal(t, "Parent", hit.EdgeType)

	// Nowhere near anything.
	_, ok = HitTestScene(scene, vp, 10, 10)
	assert.False(t, ok)
}

func TestHitTestScene_NodeWinsOverEdge(t *testing.T) {
	network, sub := familyFixture(t)
	scene := BuildScene(sub, network, fixturePositions())
	vp := NewViewport(800, 600)

	// bob sits at (500, 300) on top of both edges.
	hit, ok := HitTestScene(scene, vp, 500, 300)

	require.True(t, ok)
	assert.Equal(t, "bob", hit.NodeID)
}

func TestRenderSVG_ContainsNodesAndLabels(t *testing.T) {
	network, sub := familyFixture(t)
	scene := BuildScene(sub, network, fixturePositions())
	vp := NewViewport(800, 600)

	var out strings.Builder
	RenderSVG(&out, scene, vp)
	svg := out.String()

	assert.Contains(t, svg, "<svg")
	assert.Contains(t, svg, "Alice")
	assert.Contains(t, svg, "Parent / Child")
	assert.Contains(t, svg, CategoryColor(valueobjects.CategoryFamily))
}

func TestRenderSVG_EmptyScene(t *testing.T) {
	var out strings.Builder
	RenderSVG(&out, Scene{Empty: true}, NewViewport(400, 300))

	assert.Contains(t, out.String(), "No people match the current filters")
}
