// Package memory provides an in-process relationship catalog used by
// tests, the snapshot CLI and local development.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"kith-backend/domain/core/aggregates"
	"kith-backend/domain/core/entities"
	"kith-backend/domain/core/valueobjects"
)

// PersonRecord is the wire form of a person node.
type PersonRecord struct {
	ID                string `json:"id"`
	DisplayName       string `json:"display_name"`
	AvatarRef         string `json:"avatar_ref,omitempty"`
	RelationshipCount int    `json:"relationship_count,omitempty"`
}

// TypeRecord is the wire form of relationship type metadata.
type TypeRecord struct {
	Name         string `json:"name"`
	InverseName  string `json:"inverse_name,omitempty"`
	IsAsymmetric bool   `json:"is_asymmetric,omitempty"`
	Category     string `json:"category"`
}

// RelationshipRecord is the wire form of an edge.
type RelationshipRecord struct {
	SourceID         string `json:"source_id"`
	TargetID         string `json:"target_id"`
	RelationshipType string `json:"relationship_type"`
	Strength         int    `json:"strength,omitempty"`
	StartedDate      string `json:"started_date,omitempty"` // YYYY-MM-DD
}

// Dataset is a complete serialized catalog.
type Dataset struct {
	RelationshipTypes []TypeRecord         `json:"relationship_types"`
	Persons           []PersonRecord       `json:"persons"`
	Relationships     []RelationshipRecord `json:"relationships"`
}

// Catalog is a seedable in-memory catalog.
type Catalog struct {
	mu      sync.RWMutex
	dataset Dataset
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// NewCatalogFromDataset creates a catalog preloaded with a dataset.
func NewCatalogFromDataset(ds Dataset) *Catalog {
	return &Catalog{dataset: ds}
}

// LoadFile replaces the catalog contents with a JSON dataset file.
func (c *Catalog) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read dataset: %w", err)
	}
	var ds Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return fmt.Errorf("parse dataset: %w", err)
	}
	c.mu.Lock()
	c.dataset = ds
	c.mu.Unlock()
	return nil
}

// SeedType adds relationship type metadata.
func (c *Catalog) SeedType(t TypeRecord) {
	c.mu.Lock()
	c.dataset.RelationshipTypes = append(c.dataset.RelationshipTypes, t)
	c.mu.Unlock()
}

// SeedPerson adds a person node.
func (c *Catalog) SeedPerson(p PersonRecord) {
	c.mu.Lock()
	c.dataset.Persons = append(c.dataset.Persons, p)
	c.mu.Unlock()
}

// SeedRelationship adds an edge.
func (c *Catalog) SeedRelationship(r RelationshipRecord) {
	c.mu.Lock()
	c.dataset.Relationships = append(c.dataset.Relationships, r)
	c.mu.Unlock()
}

// Snapshot implements ports.Catalog. Each call assembles a fresh validated
// Network; a missing relationship_count is backfilled with the person's
// degree across the whole dataset.
func (c *Catalog) Snapshot(ctx context.Context) (*aggregates.Network, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	ds := c.dataset
	c.mu.RUnlock()

	return BuildNetwork(ds)
}

// BuildNetwork assembles a validated Network from a dataset.
func BuildNetwork(ds Dataset) (*aggregates.Network, error) {
	network := aggregates.NewNetwork()

	for _, tr := range ds.RelationshipTypes {
		t, err := valueobjects.NewRelationshipType(tr.Name, tr.InverseName, tr.IsAsymmetric, valueobjects.Category(tr.Category))
		if err != nil {
			return nil, fmt.Errorf("relationship type %q: %w", tr.Name, err)
		}
		network.AddRelationshipType(t)
	}

	degrees := make(map[string]int)
	for _, rr := range ds.Relationships {
		degrees[rr.SourceID]++
		degrees[rr.TargetID]++
	}

	for _, pr := range ds.Persons {
		id, err := valueobjects.NewPersonIDFromString(pr.ID)
		if err != nil {
			return nil, fmt.Errorf("person %q: %w", pr.ID, err)
		}
		count := pr.RelationshipCount
		if count == 0 {
			count = degrees[pr.ID]
		}
		person, err := entities.ReconstructPerson(id, pr.DisplayName, pr.AvatarRef, count)
		if err != nil {
			return nil, fmt.Errorf("person %q: %w", pr.ID, err)
		}
		if err := network.AddPerson(person); err != nil {
			return nil, err
		}
	}

	for _, rr := range ds.Relationships {
		sourceID, err := valueobjects.NewPersonIDFromString(rr.SourceID)
		if err != nil {
			return nil, fmt.Errorf("relationship source %q: %w", rr.SourceID, err)
		}
		targetID, err := valueobjects.NewPersonIDFromString(rr.TargetID)
		if err != nil {
			return nil, fmt.Errorf("relationship target %q: %w", rr.TargetID, err)
		}
		rel := aggregates.Relationship{
			SourceID: sourceID,
			TargetID: targetID,
			TypeName: rr.RelationshipType,
			Strength: rr.Strength,
		}
		if rr.StartedDate != "" {
			started, err := time.Parse("2006-01-02", rr.StartedDate)
			if err != nil {
				return nil, fmt.Errorf("relationship started_date %q: %w", rr.StartedDate, err)
			}
			rel.StartedDate = &started
		}
		if err := network.AddRelationship(rel); err != nil {
			return nil, fmt.Errorf("relationship %s-%s: %w", rr.SourceID, rr.TargetID, err)
		}
	}

	return network, nil
}
