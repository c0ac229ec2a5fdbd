package valueobjects

import "errors"

// Category is a coarse classification of a relationship type, used to
// filter which edges participate in traversal and rendering.
type Category string

// Well-known categories. The set is open: catalogs may define others and
// the engine treats any non-empty label as a valid filter value.
const (
	CategoryFamily       Category = "family"
	CategoryProfessional Category = "professional"
	CategorySocial       Category = "social"
)

// String returns the category label.
func (c Category) String() string {
	return string(c)
}

// IsZero checks if the category is unset.
func (c Category) IsZero() bool {
	return c == ""
}

// RelationshipType describes how two people relate. Asymmetric types read
// differently from each endpoint's perspective (Parent vs Child); asymmetry
// affects display labels only, never traversal.
type RelationshipType struct {
	name         string
	inverseName  string
	isAsymmetric bool
	category     Category
}

// NewRelationshipType creates a relationship type value object.
func NewRelationshipType(name, inverseName string, isAsymmetric bool, category Category) (RelationshipType, error) {
	if name == "" {
		return RelationshipType{}, errors.New("relationship type name cannot be empty")
	}
	if inverseName == "" {
		inverseName = name
	}
	if isAsymmetric && inverseName == name {
		return RelationshipType{}, errors.New("asymmetric relationship type requires a distinct inverse name")
	}
	return RelationshipType{
		name:         name,
		inverseName:  inverseName,
		isAsymmetric: isAsymmetric,
		category:     category,
	}, nil
}

// Name returns the type's forward label.
func (t RelationshipType) Name() string {
	return t.name
}

// InverseName returns the label read from the target's perspective.
func (t RelationshipType) InverseName() string {
	return t.inverseName
}

// IsAsymmetric reports whether the relationship reads differently from
// each endpoint.
func (t RelationshipType) IsAsymmetric() bool {
	return t.isAsymmetric
}

// Category returns the type's category.
func (t RelationshipType) Category() Category {
	return t.category
}

// LabelFrom returns the label as seen from one endpoint: the forward name
// when viewed from the source, the inverse name when viewed from the target
// of an asymmetric type.
func (t RelationshipType) LabelFrom(viewedFromSource bool) string {
	if !viewedFromSource && t.isAsymmetric {
		return t.inverseName
	}
	return t.name
}
