package queries

import (
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"

	"kith-backend/domain/egonet"
)

var validate = validator.New()

// GetNetworkViewQuery asks for the ego network around an optional center,
// bounded by depth, over an optional relationship category. It is the
// transport-agnostic form of the catalog query contract; the flat
// center/depth/category encoding maps onto it one to one.
type GetNetworkViewQuery struct {
	CenterID string `json:"center_id,omitempty"`
	Depth    int    `json:"depth,omitempty" validate:"omitempty,min=1"`
	Category string `json:"category,omitempty"`
}

// Validate validates the query
func (q GetNetworkViewQuery) Validate() error {
	return validate.Struct(q)
}

// Filter converts the query into the domain filter, applying defaults for
// omitted fields.
func (q GetNetworkViewQuery) Filter() (egonet.Filter, error) {
	values := url.Values{}
	if q.CenterID != "" {
		values.Set("center", q.CenterID)
	}
	if q.Depth != 0 {
		values.Set("depth", strconv.Itoa(q.Depth))
	}
	if q.Category != "" {
		values.Set("category", q.Category)
	}
	return egonet.DecodeFilter(values)
}

// NetworkPerson is a person node in the view result.
type NetworkPerson struct {
	ID                string `json:"id"`
	DisplayName       string `json:"display_name"`
	AvatarRef         string `json:"avatar_ref,omitempty"`
	RelationshipCount int    `json:"relationship_count"`
}

// NetworkEdge is a relationship edge in the view result.
type NetworkEdge struct {
	SourceID         string `json:"source_id"`
	TargetID         string `json:"target_id"`
	RelationshipType string `json:"relationship_type"`
	Category         string `json:"category,omitempty"`
	Strength         int    `json:"strength,omitempty"`
	StartedDate      string `json:"started_date,omitempty"`
}

// NetworkRelationshipType is relationship type metadata in the view result.
type NetworkRelationshipType struct {
	Name         string `json:"name"`
	InverseName  string `json:"inverse_name"`
	IsAsymmetric bool   `json:"is_asymmetric"`
	Category     string `json:"category"`
}

// GetNetworkViewResult is the extracted subgraph plus the type metadata the
// renderer needs for labels and color coding. CenterID is null when the
// requested center did not resolve and the whole-network fallback applied.
type GetNetworkViewResult struct {
	Nodes             []NetworkPerson           `json:"nodes"`
	Edges             []NetworkEdge             `json:"edges"`
	RelationshipTypes []NetworkRelationshipType `json:"relationship_types"`
	CenterID          *string                   `json:"center_id"`
}
