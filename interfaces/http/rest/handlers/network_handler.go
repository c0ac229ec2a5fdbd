// Package handlers contains the REST request handlers.
package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"kith-backend/application/queries"
	querybus "kith-backend/application/queries/bus"
	"kith-backend/pkg/common"
	apperrors "kith-backend/pkg/errors"
)

// NetworkHandler serves the network view query over HTTP. The query string
// uses the same flat center/depth/category encoding the client bookmarks.
type NetworkHandler struct {
	queryBus     *querybus.QueryBus
	errorHandler *apperrors.ErrorHandler
	logger       *zap.Logger
}

// NewNetworkHandler creates a new network handler
func NewNetworkHandler(queryBus *querybus.QueryBus, errorHandler *apperrors.ErrorHandler, logger *zap.Logger) *NetworkHandler {
	return &NetworkHandler{
		queryBus:     queryBus,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// GetNetworkView handles GET /api/v1/network?center=&depth=&category=
func (h *NetworkHandler) GetNetworkView(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	query := queries.GetNetworkViewQuery{
		CenterID: params.Get("center"),
		Category: params.Get("category"),
	}
	if raw := params.Get("depth"); raw != "" {
		depth, err := strconv.Atoi(raw)
		if err != nil || depth < 1 {
			h.errorHandler.Handle(w, r, apperrors.NewValidationError("depth must be a positive integer"))
			return
		}
		query.Depth = depth
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}
