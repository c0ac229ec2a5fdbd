// Package egonet derives bounded-depth, category-filtered ego networks
// from the full relationship dataset. Extraction is a pure function of its
// inputs: for a fixed network and filter the output node and edge sets are
// identical regardless of edge ordering.
package egonet

import (
	"kith-backend/domain/core/aggregates"
	"kith-backend/domain/core/valueobjects"
)

// Extract returns the subgraph around the filter's center.
//
// Category filtering is applied to edges before anything else: an excluded
// edge is neither traversed nor emitted, even when both endpoints survive.
// When the center is unset, or does not resolve to a known person (it may
// have been deleted after the filter was bookmarked), extraction falls back
// to the whole network over the filtered edges. Otherwise a breadth-first
// traversal includes every node within Depth hops of the center, and the
// output carries every filtered edge whose both endpoints were included,
// closing edges between non-center nodes too.
func Extract(network *aggregates.Network, filter Filter) *aggregates.Subgraph {
	edges := filteredEdges(network, filter.Category)

	center, resolved := resolveCenter(network, filter.CenterID)
	if !resolved {
		return wholeNetwork(network, edges)
	}

	included := traverse(center, filter.Depth, edges)

	sub := aggregates.NewSubgraph(&center)
	for id := range included {
		if p, ok := network.Persons()[id]; ok {
			sub.AddNode(p)
		}
	}
	for _, edge := range edges {
		if _, ok := included[edge.SourceID.String()]; !ok {
			continue
		}
		if _, ok := included[edge.TargetID.String()]; !ok {
			continue
		}
		_ = sub.AddEdge(edge) // endpoints verified above
	}
	return sub
}

// filteredEdges returns the traversable edge set: category-matched, no
// self-loops, deduplicated on the unordered endpoint pair plus type. The
// Network enforces these invariants on ingest, but extraction re-checks
// them so a Subgraph is well-formed even for a hand-assembled dataset.
func filteredEdges(network *aggregates.Network, category *valueobjects.Category) []aggregates.Relationship {
	var out []aggregates.Relationship
	seen := make(map[string]struct{})
	for _, edge := range network.Relationships() {
		if edge.IsSelfLoop() {
			continue
		}
		if category != nil {
			t, ok := network.TypeByName(edge.TypeName)
			if !ok || t.Category() != *category {
				continue
			}
		}
		key := edge.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, edge)
	}
	return out
}

func resolveCenter(network *aggregates.Network, centerID *valueobjects.PersonID) (valueobjects.PersonID, bool) {
	if centerID == nil {
		return valueobjects.PersonID{}, false
	}
	if _, ok := network.PersonByID(*centerID); !ok {
		return valueobjects.PersonID{}, false
	}
	return *centerID, true
}

// wholeNetwork is the deterministic fallback: all nodes plus the filtered
// edges, i.e. depth treated as unbounded.
func wholeNetwork(network *aggregates.Network, edges []aggregates.Relationship) *aggregates.Subgraph {
	sub := aggregates.NewSubgraph(nil)
	for _, p := range network.Persons() {
		sub.AddNode(p)
	}
	for _, edge := range edges {
		_ = sub.AddEdge(edge)
	}
	return sub
}

// traverse runs a breadth-first expansion from the center up to and
// including depth hops. Visited-set semantics make inclusion depend on
// minimum hop distance only, never on edge iteration order.
func traverse(center valueobjects.PersonID, depth int, edges []aggregates.Relationship) map[string]struct{} {
	adjacency := make(map[string][]valueobjects.PersonID)
	for _, edge := range edges {
		src, dst := edge.SourceID, edge.TargetID
		adjacency[src.String()] = append(adjacency[src.String()], dst)
		adjacency[dst.String()] = append(adjacency[dst.String()], src)
	}

	visited := map[string]struct{}{center.String(): {}}
	frontier := []valueobjects.PersonID{center}
	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []valueobjects.PersonID
		for _, id := range frontier {
			for _, neighbor := range adjacency[id.String()] {
				if _, ok := visited[neighbor.String()]; ok {
					continue
				}
				visited[neighbor.String()] = struct{}{}
				next = append(next, neighbor)
			}
		}
		frontier = next
	}
	return visited
}
