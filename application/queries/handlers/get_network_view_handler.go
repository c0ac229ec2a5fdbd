package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"kith-backend/application/ports"
	"kith-backend/application/queries"
	"kith-backend/application/queries/bus"
	"kith-backend/domain/egonet"
	apperrors "kith-backend/pkg/errors"
	"kith-backend/pkg/observability"
)

// GetNetworkViewHandler serves the network view query: it fetches the full
// dataset from the relationship catalog and runs the ego-network extraction
// server-side.
type GetNetworkViewHandler struct {
	catalog ports.Catalog
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewGetNetworkViewHandler creates a new network view handler
func NewGetNetworkViewHandler(
	catalog ports.Catalog,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *GetNetworkViewHandler {
	return &GetNetworkViewHandler{
		catalog: catalog,
		metrics: metrics,
		logger:  logger,
	}
}

// Handle implements bus.QueryHandler for GetNetworkViewQuery.
func (h *GetNetworkViewHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.GetNetworkViewQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected query type %T", query)
	}
	return h.handle(ctx, q)
}

func (h *GetNetworkViewHandler) handle(ctx context.Context, q queries.GetNetworkViewQuery) (*queries.GetNetworkViewResult, error) {
	filter, err := q.Filter()
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	network, err := h.catalog.Snapshot(ctx)
	if err != nil {
		h.logger.Error("Catalog snapshot failed",
			zap.String("filter", filter.EncodeString()),
			zap.Error(err),
		)
		h.metrics.CatalogFailures.Inc()
		return nil, apperrors.NewDataFetchError(err)
	}

	start := time.Now()
	sub := egonet.Extract(network, filter)
	h.metrics.ExtractionDuration.Observe(time.Since(start).Seconds())
	h.metrics.SubgraphNodes.Set(float64(sub.NodeCount()))
	h.metrics.SubgraphEdges.Set(float64(sub.EdgeCount()))

	result := &queries.GetNetworkViewResult{
		Nodes: make([]queries.NetworkPerson, 0, sub.NodeCount()),
		Edges: make([]queries.NetworkEdge, 0, sub.EdgeCount()),
	}

	for _, id := range sub.NodeIDs() {
		person, _ := sub.Node(id)
		result.Nodes = append(result.Nodes, queries.NetworkPerson{
			ID:                person.ID().String(),
			DisplayName:       person.DisplayName(),
			AvatarRef:         person.AvatarRef(),
			RelationshipCount: person.RelationshipCount(),
		})
	}

	for _, edge := range sub.Edges() {
		out := queries.NetworkEdge{
			SourceID:         edge.SourceID.String(),
			TargetID:         edge.TargetID.String(),
			RelationshipType: edge.TypeName,
			Strength:         edge.Strength,
		}
		if t, ok := network.TypeByName(edge.TypeName); ok {
			out.Category = t.Category().String()
		}
		if edge.StartedDate != nil {
			out.StartedDate = edge.StartedDate.Format("2006-01-02")
		}
		result.Edges = append(result.Edges, out)
	}

	for _, t := range network.Types() {
		result.RelationshipTypes = append(result.RelationshipTypes, queries.NetworkRelationshipType{
			Name:         t.Name(),
			InverseName:  t.InverseName(),
			IsAsymmetric: t.IsAsymmetric(),
			Category:     t.Category().String(),
		})
	}

	if c := sub.CenterID(); c != nil {
		center := c.String()
		result.CenterID = &center
	}

	h.logger.Debug("Network view extracted",
		zap.String("filter", filter.EncodeString()),
		zap.Int("nodeCount", sub.NodeCount()),
		zap.Int("edgeCount", sub.EdgeCount()),
	)

	return result, nil
}
