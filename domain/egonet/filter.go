package egonet

import (
	"fmt"
	"net/url"
	"strconv"

	"kith-backend/domain/core/valueobjects"
)

// DefaultDepth is the degrees-of-separation used when no depth is chosen.
const DefaultDepth = 2

// Query-string keys of the bookmarkable filter representation. Each key is
// present only when the field differs from its default.
const (
	keyCenter   = "center"
	keyDepth    = "depth"
	keyCategory = "category"
)

// Filter is the single source of truth for what the view shows: an optional
// center, a degrees-of-separation bound and an optional relationship
// category. It is a value; transitions return a new Filter and never mutate
// the receiver.
type Filter struct {
	CenterID *valueobjects.PersonID
	Depth    int
	Category *valueobjects.Category
}

// DefaultFilter is the initial state: whole network, depth 2, no category.
func DefaultFilter() Filter {
	return Filter{Depth: DefaultDepth}
}

// Validate checks the filter's own invariants.
func (f Filter) Validate() error {
	if f.Depth < 1 {
		return fmt.Errorf("depth must be at least 1, got %d", f.Depth)
	}
	if f.Category != nil && f.Category.IsZero() {
		return fmt.Errorf("category filter cannot be empty")
	}
	return nil
}

// Recenter returns the filter centered on the given person, preserving
// depth and category so drilling into a neighborhood keeps the user's
// filter preferences.
func (f Filter) Recenter(id valueobjects.PersonID) Filter {
	next := f
	next.CenterID = &id
	return next
}

// Reset returns the default filter.
func (f Filter) Reset() Filter {
	return DefaultFilter()
}

// Equals compares two filters by value.
func (f Filter) Equals(other Filter) bool {
	if f.Depth != other.Depth {
		return false
	}
	if (f.CenterID == nil) != (other.CenterID == nil) {
		return false
	}
	if f.CenterID != nil && !f.CenterID.Equals(*other.CenterID) {
		return false
	}
	if (f.Category == nil) != (other.Category == nil) {
		return false
	}
	if f.Category != nil && *f.Category != *other.Category {
		return false
	}
	return true
}

// Encode produces the flat key-value representation, omitting every field
// at its default so the encoding of the default filter is empty.
func (f Filter) Encode() url.Values {
	values := url.Values{}
	if f.CenterID != nil {
		values.Set(keyCenter, f.CenterID.String())
	}
	if f.Depth != DefaultDepth {
		values.Set(keyDepth, strconv.Itoa(f.Depth))
	}
	if f.Category != nil {
		values.Set(keyCategory, f.Category.String())
	}
	return values
}

// EncodeString returns the filter as a query string suitable for a
// shareable link.
func (f Filter) EncodeString() string {
	return f.Encode().Encode()
}

// DecodeFilter reconstructs a filter from its flat key-value encoding.
// Absent keys decode to the corresponding defaults, so Decode(Encode(f))
// round-trips exactly, including the no-center and default-depth cases.
func DecodeFilter(values url.Values) (Filter, error) {
	f := DefaultFilter()

	if raw := values.Get(keyCenter); raw != "" {
		id, err := valueobjects.NewPersonIDFromString(raw)
		if err != nil {
			return Filter{}, fmt.Errorf("invalid center: %w", err)
		}
		f.CenterID = &id
	}

	if raw := values.Get(keyDepth); raw != "" {
		depth, err := strconv.Atoi(raw)
		if err != nil {
			return Filter{}, fmt.Errorf("invalid depth %q: %w", raw, err)
		}
		f.Depth = depth
	}

	if raw := values.Get(keyCategory); raw != "" {
		category := valueobjects.Category(raw)
		f.Category = &category
	}

	if err := f.Validate(); err != nil {
		return Filter{}, err
	}
	return f, nil
}

// DecodeFilterString reconstructs a filter from a raw query string.
func DecodeFilterString(encoded string) (Filter, error) {
	values, err := url.ParseQuery(encoded)
	if err != nil {
		return Filter{}, fmt.Errorf("invalid filter encoding: %w", err)
	}
	return DecodeFilter(values)
}
