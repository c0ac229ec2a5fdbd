// Package dynamodb implements the relationship catalog over a single
// DynamoDB table. Persons, relationships and type metadata share the table
// and are distinguished by their sort key prefix.
package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"kith-backend/domain/core/aggregates"
	"kith-backend/domain/core/entities"
	"kith-backend/domain/core/valueobjects"
)

const (
	catalogPK        = "CATALOG"
	skPrefixType     = "TYPE#"
	skPrefixPerson   = "PERSON#"
	skPrefixRelation = "REL#"
)

// Catalog implements ports.Catalog against DynamoDB.
type Catalog struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewCatalog creates a new DynamoDB catalog
func NewCatalog(client *dynamodb.Client, tableName string, logger *zap.Logger) *Catalog {
	return &Catalog{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// catalogItem is the DynamoDB item structure shared by all record kinds.
type catalogItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`

	// Person fields
	PersonID          string `dynamodbav:"PersonID,omitempty"`
	DisplayName       string `dynamodbav:"DisplayName,omitempty"`
	AvatarRef         string `dynamodbav:"AvatarRef,omitempty"`
	RelationshipCount int    `dynamodbav:"RelationshipCount,omitempty"`

	// Relationship type fields
	TypeName     string `dynamodbav:"TypeName,omitempty"`
	InverseName  string `dynamodbav:"InverseName,omitempty"`
	IsAsymmetric bool   `dynamodbav:"IsAsymmetric,omitempty"`
	Category     string `dynamodbav:"Category,omitempty"`

	// Relationship fields
	SourceID    string `dynamodbav:"SourceID,omitempty"`
	TargetID    string `dynamodbav:"TargetID,omitempty"`
	Strength    int    `dynamodbav:"Strength,omitempty"`
	StartedDate string `dynamodbav:"StartedDate,omitempty"`
}

// Snapshot implements ports.Catalog. It pages through the whole catalog
// partition and assembles a validated Network.
func (c *Catalog) Snapshot(ctx context.Context) (*aggregates.Network, error) {
	items, err := c.queryPartition(ctx)
	if err != nil {
		return nil, err
	}

	network := aggregates.NewNetwork()

	// Types first, then persons, then relationships: AddRelationship
	// validates against both.
	for _, item := range items {
		if item.EntityType != "RELATIONSHIP_TYPE" {
			continue
		}
		t, err := valueobjects.NewRelationshipType(item.TypeName, item.InverseName, item.IsAsymmetric, valueobjects.Category(item.Category))
		if err != nil {
			return nil, fmt.Errorf("relationship type %q: %w", item.TypeName, err)
		}
		network.AddRelationshipType(t)
	}

	for _, item := range items {
		if item.EntityType != "PERSON" {
			continue
		}
		id, err := valueobjects.NewPersonIDFromString(item.PersonID)
		if err != nil {
			return nil, fmt.Errorf("person item %s: %w", item.SK, err)
		}
		person, err := entities.ReconstructPerson(id, item.DisplayName, item.AvatarRef, item.RelationshipCount)
		if err != nil {
			return nil, fmt.Errorf("person item %s: %w", item.SK, err)
		}
		if err := network.AddPerson(person); err != nil {
			return nil, err
		}
	}

	for _, item := range items {
		if item.EntityType != "RELATIONSHIP" {
			continue
		}
		rel, err := relationshipFromItem(item)
		if err != nil {
			return nil, err
		}
		if err := network.AddRelationship(rel); err != nil {
			// The table is maintained by the surrounding CRUD application;
			// a bad row should not take the whole view down.
			c.logger.Warn("Skipping invalid relationship item",
				zap.String("sk", item.SK),
				zap.Error(err),
			)
		}
	}

	c.logger.Debug("Catalog snapshot loaded",
		zap.Int("personCount", network.PersonCount()),
		zap.Int("relationshipCount", network.RelationshipCount()),
	)
	return network, nil
}

func (c *Catalog) queryPartition(ctx context.Context) ([]catalogItem, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(catalogPK))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("build catalog query: %w", err)
	}

	var items []catalogItem
	var startKey map[string]types.AttributeValue
	for {
		result, err := c.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(c.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("query catalog: %w", err)
		}

		var page []catalogItem
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal catalog items: %w", err)
		}
		items = append(items, page...)

		if result.LastEvaluatedKey == nil {
			return items, nil
		}
		startKey = result.LastEvaluatedKey
	}
}

func relationshipFromItem(item catalogItem) (aggregates.Relationship, error) {
	sourceID, err := valueobjects.NewPersonIDFromString(item.SourceID)
	if err != nil {
		return aggregates.Relationship{}, fmt.Errorf("relationship item %s: %w", item.SK, err)
	}
	targetID, err := valueobjects.NewPersonIDFromString(item.TargetID)
	if err != nil {
		return aggregates.Relationship{}, fmt.Errorf("relationship item %s: %w", item.SK, err)
	}
	rel := aggregates.Relationship{
		SourceID: sourceID,
		TargetID: targetID,
		TypeName: item.TypeName,
		Strength: item.Strength,
	}
	if item.StartedDate != "" {
		started, err := time.Parse("2006-01-02", item.StartedDate)
		if err != nil {
			return aggregates.Relationship{}, fmt.Errorf("relationship item %s started date: %w", item.SK, err)
		}
		rel.StartedDate = &started
	}
	return rel, nil
}
