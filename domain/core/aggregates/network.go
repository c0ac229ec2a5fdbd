package aggregates

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"kith-backend/domain/core/entities"
	"kith-backend/domain/core/valueobjects"
)

var (
	// ErrSelfRelationship indicates an edge whose endpoints are the same person.
	ErrSelfRelationship = errors.New("relationship cannot connect a person to themselves")
	// ErrDuplicateRelationship indicates an edge with the same unordered
	// endpoint pair and type as an existing one.
	ErrDuplicateRelationship = errors.New("duplicate relationship for endpoint pair and type")
	// ErrUnknownPerson indicates an edge endpoint that is not in the network.
	ErrUnknownPerson = errors.New("relationship endpoint is not a known person")
	// ErrUnknownRelationshipType indicates an edge referencing an unregistered type.
	ErrUnknownRelationshipType = errors.New("relationship references an unknown type")
)

// Relationship is a typed edge between two people. Edges are undirected for
// traversal purposes even when the type is asymmetric; direction only
// selects which label is shown from each endpoint.
type Relationship struct {
	SourceID    valueobjects.PersonID `json:"source_id"`
	TargetID    valueobjects.PersonID `json:"target_id"`
	TypeName    string                `json:"relationship_type"`
	Strength    int                   `json:"strength,omitempty"` // 1-5, 0 when unset
	StartedDate *time.Time            `json:"started_date,omitempty"`
}

// Key returns the canonical identity of the edge: the unordered endpoint
// pair plus the type name. Two edges with equal keys are duplicates.
func (r Relationship) Key() string {
	a, b := r.SourceID.String(), r.TargetID.String()
	if b < a {
		a, b = b, a
	}
	return a + "|" + b + "|" + r.TypeName
}

// IsSelfLoop reports whether both endpoints are the same person.
func (r Relationship) IsSelfLoop() bool {
	return r.SourceID.Equals(r.TargetID)
}

// Other returns the opposite endpoint of the edge relative to id.
func (r Relationship) Other(id valueobjects.PersonID) valueobjects.PersonID {
	if r.SourceID.Equals(id) {
		return r.TargetID
	}
	return r.SourceID
}

// Network is the full relationship dataset supplied by the catalog: every
// person, every typed edge and the relationship type metadata. It enforces
// the structural invariants (no self-loops, no duplicate edges, endpoints
// and types known) so everything derived from it can rely on them.
type Network struct {
	persons       map[string]*entities.Person
	relationships []Relationship
	types         map[string]valueobjects.RelationshipType
	edgeKeys      map[string]struct{}
}

// NewNetwork creates an empty network.
func NewNetwork() *Network {
	return &Network{
		persons:  make(map[string]*entities.Person),
		types:    make(map[string]valueobjects.RelationshipType),
		edgeKeys: make(map[string]struct{}),
	}
}

// AddPerson registers a person node. Re-adding the same ID replaces the
// snapshot, which lets catalogs stream updated records.
func (n *Network) AddPerson(p *entities.Person) error {
	if p == nil {
		return errors.New("person cannot be nil")
	}
	n.persons[p.ID().String()] = p
	return nil
}

// AddRelationshipType registers type metadata under its forward name.
func (n *Network) AddRelationshipType(t valueobjects.RelationshipType) {
	n.types[t.Name()] = t
}

// AddRelationship registers an edge, enforcing the structural invariants.
func (n *Network) AddRelationship(r Relationship) error {
	if r.IsSelfLoop() {
		return ErrSelfRelationship
	}
	if _, ok := n.persons[r.SourceID.String()]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPerson, r.SourceID)
	}
	if _, ok := n.persons[r.TargetID.String()]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPerson, r.TargetID)
	}
	if _, ok := n.types[r.TypeName]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRelationshipType, r.TypeName)
	}
	if r.Strength < 0 || r.Strength > 5 {
		return fmt.Errorf("relationship strength %d out of range", r.Strength)
	}
	key := r.Key()
	if _, ok := n.edgeKeys[key]; ok {
		return ErrDuplicateRelationship
	}
	n.edgeKeys[key] = struct{}{}
	n.relationships = append(n.relationships, r)
	return nil
}

// PersonByID resolves a person node, if present.
func (n *Network) PersonByID(id valueobjects.PersonID) (*entities.Person, bool) {
	p, ok := n.persons[id.String()]
	return p, ok
}

// Persons returns the node set keyed by ID string. The map is shared, not
// copied; callers must treat it as read-only.
func (n *Network) Persons() map[string]*entities.Person {
	return n.persons
}

// Relationships returns all edges in insertion order.
func (n *Network) Relationships() []Relationship {
	return n.relationships
}

// TypeByName resolves relationship type metadata.
func (n *Network) TypeByName(name string) (valueobjects.RelationshipType, bool) {
	t, ok := n.types[name]
	return t, ok
}

// Types returns all registered relationship types sorted by name.
func (n *Network) Types() []valueobjects.RelationshipType {
	names := make([]string, 0, len(n.types))
	for name := range n.types {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]valueobjects.RelationshipType, 0, len(names))
	for _, name := range names {
		out = append(out, n.types[name])
	}
	return out
}

// PersonCount returns the number of nodes.
func (n *Network) PersonCount() int {
	return len(n.persons)
}

// RelationshipCount returns the number of edges.
func (n *Network) RelationshipCount() int {
	return len(n.relationships)
}

// Subgraph is the derived ego network handed from the extractor to the
// layout engine: a node set and exactly the edges whose both endpoints are
// in it. CenterID is set only when the filter's center resolved to a node.
type Subgraph struct {
	nodes    map[string]*entities.Person
	edges    []Relationship
	centerID *valueobjects.PersonID
}

// NewSubgraph creates an empty subgraph.
func NewSubgraph(centerID *valueobjects.PersonID) *Subgraph {
	return &Subgraph{
		nodes:    make(map[string]*entities.Person),
		centerID: centerID,
	}
}

// AddNode includes a person in the subgraph.
func (s *Subgraph) AddNode(p *entities.Person) {
	s.nodes[p.ID().String()] = p
}

// AddEdge includes an edge. Both endpoints must already be nodes.
func (s *Subgraph) AddEdge(r Relationship) error {
	if !s.HasNode(r.SourceID) || !s.HasNode(r.TargetID) {
		return fmt.Errorf("edge %s has an endpoint outside the subgraph", r.Key())
	}
	s.edges = append(s.edges, r)
	return nil
}

// HasNode reports whether the person is included.
func (s *Subgraph) HasNode(id valueobjects.PersonID) bool {
	_, ok := s.nodes[id.String()]
	return ok
}

// Node resolves an included person.
func (s *Subgraph) Node(id valueobjects.PersonID) (*entities.Person, bool) {
	p, ok := s.nodes[id.String()]
	return p, ok
}

// Nodes returns the included node set keyed by ID string (read-only).
func (s *Subgraph) Nodes() map[string]*entities.Person {
	return s.nodes
}

// NodeIDs returns the included IDs in sorted order, giving derived
// consumers (seeding, rendering) a deterministic iteration order.
func (s *Subgraph) NodeIDs() []valueobjects.PersonID {
	keys := make([]string, 0, len(s.nodes))
	for k := range s.nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ids := make([]valueobjects.PersonID, len(keys))
	for i, k := range keys {
		ids[i] = s.nodes[k].ID()
	}
	return ids
}

// Edges returns the included edges.
func (s *Subgraph) Edges() []Relationship {
	return s.edges
}

// CenterID returns the resolved center, or nil for a whole-network view.
func (s *Subgraph) CenterID() *valueobjects.PersonID {
	return s.centerID
}

// NodeCount returns the number of included nodes.
func (s *Subgraph) NodeCount() int {
	return len(s.nodes)
}

// EdgeCount returns the number of included edges.
func (s *Subgraph) EdgeCount() int {
	return len(s.edges)
}

// IsEmpty reports whether extraction produced no nodes at all.
func (s *Subgraph) IsEmpty() bool {
	return len(s.nodes) == 0
}
