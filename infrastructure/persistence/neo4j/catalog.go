// Package neo4j implements the relationship catalog over a Bolt-compatible
// graph database (Neo4j, or Neptune's openCypher endpoint, which speaks the
// same wire protocol).
package neo4j

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"kith-backend/domain/core/aggregates"
	"kith-backend/domain/core/entities"
	"kith-backend/domain/core/valueobjects"
)

// ErrMissingURI indicates the graph URI is not provided.
var ErrMissingURI = errors.New("neo4j URI is required")

// Options configures the catalog connection.
type Options struct {
	URI      string
	Database string
	Username string
	Password string
}

// Catalog implements ports.Catalog against a Bolt graph database. The
// expected schema matches the surrounding CRUD application: (:Person)
// nodes and [:RELATES_TO {type}] relationships, with type metadata on
// (:RelationshipType) nodes.
type Catalog struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *zap.Logger
}

// NewCatalog establishes the Bolt connection and verifies it.
func NewCatalog(ctx context.Context, opts Options, logger *zap.Logger) (*Catalog, error) {
	if opts.URI == "" {
		return nil, ErrMissingURI
	}

	auth := neo4j.NoAuth()
	if opts.Username != "" {
		auth = neo4j.BasicAuth(opts.Username, opts.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(opts.URI, auth)
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify catalog connectivity: %w", err)
	}

	return &Catalog{
		driver:   driver,
		database: opts.Database,
		logger:   logger,
	}, nil
}

// Close releases the underlying driver.
func (c *Catalog) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// Snapshot implements ports.Catalog.
func (c *Catalog) Snapshot(ctx context.Context) (*aggregates.Network, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	network := aggregates.NewNetwork()

	if err := c.loadTypes(ctx, session, network); err != nil {
		return nil, err
	}
	if err := c.loadPersons(ctx, session, network); err != nil {
		return nil, err
	}
	if err := c.loadRelationships(ctx, session, network); err != nil {
		return nil, err
	}

	c.logger.Debug("Catalog snapshot loaded",
		zap.Int("personCount", network.PersonCount()),
		zap.Int("relationshipCount", network.RelationshipCount()),
	)
	return network, nil
}

func (c *Catalog) loadTypes(ctx context.Context, session neo4j.SessionWithContext, network *aggregates.Network) error {
	res, err := session.Run(ctx, `
		MATCH (t:RelationshipType)
		RETURN t.name AS name, t.inverse_name AS inverse_name,
		       t.is_asymmetric AS is_asymmetric, t.category AS category`, nil)
	if err != nil {
		return fmt.Errorf("query relationship types: %w", err)
	}
	for res.Next(ctx) {
		rec := res.Record()
		t, err := valueobjects.NewRelationshipType(
			stringValue(rec, "name"),
			stringValue(rec, "inverse_name"),
			boolValue(rec, "is_asymmetric"),
			valueobjects.Category(stringValue(rec, "category")),
		)
		if err != nil {
			return fmt.Errorf("relationship type: %w", err)
		}
		network.AddRelationshipType(t)
	}
	return res.Err()
}

func (c *Catalog) loadPersons(ctx context.Context, session neo4j.SessionWithContext, network *aggregates.Network) error {
	res, err := session.Run(ctx, `
		MATCH (p:Person)
		OPTIONAL MATCH (p)-[r:RELATES_TO]-()
		RETURN p.id AS id, p.display_name AS display_name,
		       p.avatar_ref AS avatar_ref, count(r) AS degree`, nil)
	if err != nil {
		return fmt.Errorf("query persons: %w", err)
	}
	for res.Next(ctx) {
		rec := res.Record()
		id, err := valueobjects.NewPersonIDFromString(stringValue(rec, "id"))
		if err != nil {
			return fmt.Errorf("person: %w", err)
		}
		person, err := entities.ReconstructPerson(
			id,
			stringValue(rec, "display_name"),
			stringValue(rec, "avatar_ref"),
			intValue(rec, "degree"),
		)
		if err != nil {
			return fmt.Errorf("person %s: %w", id, err)
		}
		if err := network.AddPerson(person); err != nil {
			return err
		}
	}
	return res.Err()
}

func (c *Catalog) loadRelationships(ctx context.Context, session neo4j.SessionWithContext, network *aggregates.Network) error {
	res, err := session.Run(ctx, `
		MATCH (a:Person)-[r:RELATES_TO]->(b:Person)
		RETURN a.id AS source_id, b.id AS target_id, r.type AS type,
		       r.strength AS strength, r.started_date AS started_date`, nil)
	if err != nil {
		return fmt.Errorf("query relationships: %w", err)
	}
	for res.Next(ctx) {
		rec := res.Record()
		sourceID, err := valueobjects.NewPersonIDFromString(stringValue(rec, "source_id"))
		if err != nil {
			return fmt.Errorf("relationship: %w", err)
		}
		targetID, err := valueobjects.NewPersonIDFromString(stringValue(rec, "target_id"))
		if err != nil {
			return fmt.Errorf("relationship: %w", err)
		}
		rel := aggregates.Relationship{
			SourceID: sourceID,
			TargetID: targetID,
			TypeName: stringValue(rec, "type"),
			Strength: intValue(rec, "strength"),
		}
		if raw := stringValue(rec, "started_date"); raw != "" {
			started, err := time.Parse("2006-01-02", raw)
			if err == nil {
				rel.StartedDate = &started
			}
		}
		if err := network.AddRelationship(rel); err != nil {
			c.logger.Warn("Skipping invalid relationship record",
				zap.String("source", rel.SourceID.String()),
				zap.String("target", rel.TargetID.String()),
				zap.Error(err),
			)
		}
	}
	return res.Err()
}

func stringValue(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func boolValue(rec *neo4j.Record, key string) bool {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return false
	}
	b, _ := v.(bool)
	return b
}

func intValue(rec *neo4j.Record, key string) int {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return 0
	}
	n, _ := v.(int64)
	return int(n)
}
