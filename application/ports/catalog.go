// Package ports defines the interfaces the application layer expects from
// infrastructure. Following the dependency inversion principle, the
// interfaces live here and the adapters under infrastructure implement them.
package ports

import (
	"context"

	"kith-backend/domain/core/aggregates"
)

// Catalog is the relationship catalog collaborator: a queryable store of
// person nodes, typed relationship edges and relationship type metadata.
// The engine only reads from it; all CRUD belongs to the surrounding
// application.
type Catalog interface {
	// Snapshot returns the current dataset as a validated Network.
	// Implementations may page through a remote store internally; the
	// caller always receives the complete picture or an error.
	Snapshot(ctx context.Context) (*aggregates.Network, error)
}
