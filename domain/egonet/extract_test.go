package egonet

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kith-backend/domain/core/aggregates"
	"kith-backend/domain/core/entities"
	"kith-backend/domain/core/valueobjects"
)

func personID(t *testing.T, raw string) valueobjects.PersonID {
	t.Helper()
	id, err := valueobjects.NewPersonIDFromString(raw)
	require.NoError(t, err)
	return id
}

func addPerson(t *testing.T, network *aggregates.Network, id, name string) {
	t.Helper()
	p, err := entities.NewPerson(personID(t, id), name)
	require.NoError(t, err)
	require.NoError(t, network.AddPerson(p))
}

func addType(t *testing.T, network *aggregates.Network, name, inverse string, asymmetric bool, category valueobjects.Category) {
	t.Helper()
	rt, err := valueobjects.NewRelationshipType(name, inverse, asymmetric, category)
	require.NoError(t, err)
	network.AddRelationshipType(rt)
}

func addEdge(t *testing.T, network *aggregates.Network, source, target, typeName string) {
	t.Helper()
	require.NoError(t, network.AddRelationship(aggregates.Relationship{
		SourceID: personID(t, source),
		TargetID: personID(t, target),
		TypeName: typeName,
	}))
}

// chainNetwork is the canonical fixture: alice-bob-carol-dave in a line,
// Friend/Friend/Colleague.
func chainNetwork(t *testing.T) *aggregates.Network {
	t.Helper()
	network := aggregates.NewNetwork()
	addType(t, network, "Friend", "", false, valueobjects.CategorySocial)
	addType(t, network, "Colleague", "", false, valueobjects.CategoryProfessional)
	addPerson(t, network, "alice", "Alice")
	addPerson(t, network, "bob", "Bob")
	addPerson(t, network, "carol", "Carol")
	addPerson(t, network, "dave", "Dave")
	addEdge(t, network, "alice", "bob", "Friend")
	addEdge(t, network, "bob", "carol", "Friend")
	addEdge(t, network, "carol", "dave", "Colleague")
	return network
}

func filterFor(t *testing.T, query string) Filter {
	t.Helper()
	values, err := url.ParseQuery(query)
	require.NoError(t, err)
	f, err := DecodeFilter(values)
	require.NoError(t, err)
	return f
}

func nodeIDStrings(sub *aggregates.Subgraph) []string {
	ids := sub.NodeIDs()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func TestExtract_DepthBoundsTraversal(t *testing.T) {
	network := chainNetwork(t)

	tests := []struct {
		name      string
		query     string
		wantNodes []string
		wantEdges int
	}{
		{"depth 1 reaches direct neighbors", "center=alice&depth=1", []string{"alice", "bob"}, 1},
		{"depth 2 reaches two hops", "center=alice&depth=2", []string{"alice", "bob", "carol"}, 2},
		{"depth 3 reaches the whole chain", "center=alice&depth=3", []string{"alice", "bob", "carol", "dave"}, 3},
		{"depth beyond the diameter is a no-op", "center=alice&depth=10", []string{"alice", "bob", "carol", "dave"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := Extract(network, filterFor(t, tt.query))

			assert.Equal(t, tt.wantNodes, nodeIDStrings(sub))
			assert.Equal(t, tt.wantEdges, sub.EdgeCount())
			require.NotNil(t, sub.CenterID())
			assert.Equal(t, "alice", sub.CenterID().String())
		})
	}
}

func TestExtract_CategoryFilterBlocksTraversal(t *testing.T) {
	// Only carol-dave is professional; alice cannot reach anyone over
	// professional edges, so the ego network collapses to the center alone.
	network := chainNetwork(t)

	sub := Extract(network, filterFor(t, "center=alice&depth=3&category=professional"))

	assert.Equal(t, []string{"alice"}, nodeIDStrings(sub))
	assert.Zero(t, sub.EdgeCount())
	assert.False(t, sub.IsEmpty())
}

func TestExtract_CategoryFilterOnWholeNetwork(t *testing.T) {
	network := chainNetwork(t)

	sub := Extract(network, filterFor(t, "category=professional"))

	// All nodes survive; only the professional edge does.
	assert.Len(t, nodeIDStrings(sub), 4)
	require.Equal(t, 1, sub.EdgeCount())
	assert.Equal(t, "Colleague", sub.Edges()[0].TypeName)
	assert.Nil(t, sub.CenterID())
}

func TestExtract_UnknownCenterFallsBackToWholeNetwork(t *testing.T) {
	// A bookmarked center may reference a person deleted since; the view
	// degrades to the unfiltered whole-network state instead of erroring.
	network := chainNetwork(t)

	sub := Extract(network, filterFor(t, "center=ghost&depth=1"))

	assert.Equal(t, []string{"alice", "bob", "carol", "dave"}, nodeIDStrings(sub))
	assert.Equal(t, 3, sub.EdgeCount())
	assert.Nil(t, sub.CenterID())
}

func TestExtract_UnknownCenterMatchesUnsetCenter(t *testing.T) {
	network := chainNetwork(t)

	withGhost := Extract(network, filterFor(t, "center=ghost&depth=2"))
	withoutCenter := Extract(network, filterFor(t, "depth=2"))

	assert.Equal(t, nodeIDStrings(withoutCenter), nodeIDStrings(withGhost))
	assert.Equal(t, withoutCenter.EdgeCount(), withGhost.EdgeCount())
}

func TestExtract_RecenterOnMidChainNode(t *testing.T) {
	network := chainNetwork(t)

	sub := Extract(network, filterFor(t, "center=carol&depth=1"))

	assert.Equal(t, []string{"bob", "carol", "dave"}, nodeIDStrings(sub))
	assert.Equal(t, 2, sub.EdgeCount())
}

func TestExtract_IncludesClosingEdges(t *testing.T) {
	// alice knows bob and carol; bob and carol also know each other. At
	// depth 1 the bob-carol edge closes the triangle and must be included
	// even though neither endpoint is the center.
	network := aggregates.NewNetwork()
	addType(t, network, "Friend", "", false, valueobjects.CategorySocial)
	addPerson(t, network, "alice", "Alice")
	addPerson(t, network, "bob", "Bob")
	addPerson(t, network, "carol", "Carol")
	addEdge(t, network, "alice", "bob", "Friend")
	addEdge(t, network, "alice", "carol", "Friend")
	addEdge(t, network, "bob", "carol", "Friend")

	sub := Extract(network, filterFor(t, "center=alice&depth=1"))

	assert.Equal(t, []string{"alice", "bob", "carol"}, nodeIDStrings(sub))
	assert.Equal(t, 3, sub.EdgeCount())
}

func TestExtract_DeterministicAcrossInsertionOrder(t *testing.T) {
	// The same dataset inserted in reverse order must extract to the same
	// node set and edge set.
	build := func(reversed bool) *aggregates.Network {
		network := aggregates.NewNetwork()
		addType(t, network, "Friend", "", false, valueobjects.CategorySocial)
		addType(t, network, "Colleague", "", false, valueobjects.CategoryProfessional)
		addPerson(t, network, "alice", "Alice")
		addPerson(t, network, "bob", "Bob")
		addPerson(t, network, "carol", "Carol")
		addPerson(t, network, "dave", "Dave")
		edges := [][3]string{
			{"alice", "bob", "Friend"},
			{"bob", "carol", "Friend"},
			{"carol", "dave", "Colleague"},
			{"alice", "carol", "Friend"},
		}
		if reversed {
			for i := len(edges) - 1; i >= 0; i-- {
				addEdge(t, network, edges[i][0], edges[i][1], edges[i][2])
			}
		} else {
			for _, e := range edges {
				addEdge(t, network, e[0], e[1], e[2])
			}
		}
		return network
	}

	filter := filterFor(t, "center=alice&depth=2")
	first := Extract(build(false), filter)
	second := Extract(build(true), filter)

	assert.Equal(t, nodeIDStrings(first), nodeIDStrings(second))

	keys := func(sub *aggregates.Subgraph) map[string]struct{} {
		out := make(map[string]struct{})
		for _, e := range sub.Edges() {
			out[e.Key()] = struct{}{}
		}
		return out
	}
	assert.Equal(t, keys(first), keys(second))
}

func TestExtract_EmptyNetwork(t *testing.T) {
	network := aggregates.NewNetwork()

	sub := Extract(network, DefaultFilter())

	assert.True(t, sub.IsEmpty())
	assert.Zero(t, sub.EdgeCount())
}

func TestExtract_CategoryWithNoMatchingEdges(t *testing.T) {
	network := chainNetwork(t)

	sub := Extract(network, filterFor(t, "category=family"))

	// Nodes survive, every edge is filtered out.
	assert.Len(t, nodeIDStrings(sub), 4)
	assert.Zero(t, sub.EdgeCount())
}
