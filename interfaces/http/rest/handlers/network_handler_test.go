package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kith-backend/application/queries"
	querybus "kith-backend/application/queries/bus"
	queryhandlers "kith-backend/application/queries/handlers"
	"kith-backend/infrastructure/persistence/memory"
	"kith-backend/pkg/common"
	apperrors "kith-backend/pkg/errors"
	"kith-backend/pkg/observability"
)

func newTestHandler(t *testing.T) *NetworkHandler {
	t.Helper()

	catalog := memory.NewCatalogFromDataset(memory.Dataset{
		RelationshipTypes: []memory.TypeRecord{
			{Name: "Friend", Category: "social"},
			{Name: "Colleague", Category: "professional"},
		},
		Persons: []memory.PersonRecord{
			{ID: "alice", DisplayName: "Alice"},
			{ID: "bob", DisplayName: "Bob"},
			{ID: "carol", DisplayName: "Carol"},
		},
		Relationships: []memory.RelationshipRecord{
			{SourceID: "alice", TargetID: "bob", RelationshipType: "Friend"},
			{SourceID: "bob", TargetID: "carol", RelationshipType: "Colleague"},
		},
	})

	logger := zap.NewNop()
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	bus := querybus.NewQueryBus()
	require.NoError(t, bus.Register(
		queries.GetNetworkViewQuery{},
		queryhandlers.NewGetNetworkViewHandler(catalog, metrics, logger),
	))

	return NewNetworkHandler(bus, apperrors.NewErrorHandler(logger, false), logger)
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) (common.APIResponse, queries.GetNetworkViewResult) {
	t.Helper()
	var envelope common.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var result queries.GetNetworkViewResult
	require.NoError(t, json.Unmarshal(raw, &result))
	return envelope, result
}

func TestNetworkHandler_GetNetworkView_WholeNetwork(t *testing.T) {
	handler := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/network", nil)
	rec := httptest.NewRecorder()

	handler.GetNetworkView(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope, result := decodeResponse(t, rec)
	assert.True(t, envelope.Success)
	assert.Len(t, result.Nodes, 3)
	assert.Len(t, result.Edges, 2)
	assert.Len(t, result.RelationshipTypes, 2)
	assert.Nil(t, result.CenterID)
}

func TestNetworkHandler_GetNetworkView_CenterAndDepth(t *testing.T) {
	handler := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/network?center=alice&depth=1", nil)
	rec := httptest.NewRecorder()

	handler.GetNetworkView(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	_, result := decodeResponse(t, rec)
	assert.Len(t, result.Nodes, 2)
	assert.Len(t, result.Edges, 1)
	require.NotNil(t, result.CenterID)
	assert.Equal(t, "alice", *result.CenterID)
}

func TestNetworkHandler_GetNetworkView_CategoryFilter(t *testing.T) {
	handler := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/network?category=professional", nil)
	rec := httptest.NewRecorder()

	handler.GetNetworkView(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	_, result := decodeResponse(t, rec)
	assert.Len(t, result.Nodes, 3)
	require.Len(t, result.Edges, 1)
	assert.Equal(t, "Colleague", result.Edges[0].RelationshipType)
}

func TestNetworkHandler_GetNetworkView_InvalidDepth(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		name  string
		query string
	}{
		{"non-numeric depth", "depth=abc"},
		{"zero depth", "depth=0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/network?"+tt.query, nil)
			rec := httptest.NewRecorder()

			handler.GetNetworkView(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var response apperrors.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
			assert.True(t, response.Error)
			assert.False(t, response.Retryable)
		})
	}
}
