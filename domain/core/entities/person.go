package entities

import (
	"errors"

	"kith-backend/domain/core/valueobjects"
)

// Person is a node in the relationship network. For the duration of one
// extraction a Person is an immutable snapshot; identity is the PersonID.
type Person struct {
	id                valueobjects.PersonID
	displayName       string
	avatarRef         string
	relationshipCount int
}

// NewPerson creates a person snapshot.
func NewPerson(id valueobjects.PersonID, displayName string) (*Person, error) {
	if id.IsZero() {
		return nil, errors.New("person requires an ID")
	}
	if displayName == "" {
		return nil, errors.New("person requires a display name")
	}
	return &Person{
		id:          id,
		displayName: displayName,
	}, nil
}

// ReconstructPerson rebuilds a person from catalog data, including the
// precomputed degree used for default node sizing.
func ReconstructPerson(id valueobjects.PersonID, displayName, avatarRef string, relationshipCount int) (*Person, error) {
	p, err := NewPerson(id, displayName)
	if err != nil {
		return nil, err
	}
	p.avatarRef = avatarRef
	if relationshipCount > 0 {
		p.relationshipCount = relationshipCount
	}
	return p, nil
}

// ID returns the person's identifier.
func (p *Person) ID() valueobjects.PersonID {
	return p.id
}

// DisplayName returns the person's display name.
func (p *Person) DisplayName() string {
	return p.displayName
}

// AvatarRef returns an optional reference to the person's avatar.
func (p *Person) AvatarRef() string {
	return p.avatarRef
}

// RelationshipCount returns the precomputed degree of the person across
// the whole network, independent of any active filter.
func (p *Person) RelationshipCount() int {
	return p.relationshipCount
}
