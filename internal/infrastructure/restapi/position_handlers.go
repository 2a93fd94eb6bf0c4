package restapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"position_aggregator/internal/app/port"
	"position_aggregator/internal/domain/entity"
)

// APIPositionsResponse defines the response structure for the positions endpoint.
type APIPositionsResponse struct {
	Data struct {
		View *entity.CrossChainPositionView `json:"view"`
	} `json:"data"`
	ServiceErrors []entity.ChainQueryError `json:"service_errors,omitempty"`
	StatusMessage string                   `json:"status_message"`
}

// PositionHandler handles HTTP requests related to cross-chain positions.
type PositionHandler struct {
	aggregator port.PositionAggregator
	cache      port.CachedPositionSource
}

// NewPositionHandler creates a new PositionHandler. cache may be nil when
// the deployment runs without a position cache.
func NewPositionHandler(aggregator port.PositionAggregator, cache port.CachedPositionSource) *PositionHandler {
	return &PositionHandler{
		aggregator: aggregator,
		cache:      cache,
	}
}

// GetPositionsHandler handles the request for a wallet's cross-chain position view.
func (h *PositionHandler) GetPositionsHandler(c *gin.Context) {
	ctx := c.Request.Context()
	walletID := c.Param("walletId")

	opts := entity.AggregateOptions{}
	if networks := c.Query("networks"); networks != "" {
		for _, id := range strings.Split(networks, ",") {
			id = strings.TrimSpace(id)
			if id != "" {
				opts.NetworkIDs = append(opts.NetworkIDs, id)
			}
		}
	}
	opts.IncludeZeroBalances = c.Query("includeZero") == "true"
	if minUSD := c.Query("minUsd"); minUSD != "" {
		parsed, err := decimal.NewFromString(minUSD)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "minUsd must be a decimal number"})
			return
		}
		opts.MinUSDValue = parsed
	}

	view, serviceErrors, err := h.aggregator.Aggregate(ctx, walletID, opts)
	if err != nil {
		// Wallet resolution is the only fatal path.
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	response := APIPositionsResponse{ServiceErrors: serviceErrors}
	response.Data.View = view

	switch {
	case len(serviceErrors) > 0 && len(view.ChainSummaries) == 0:
		response.StatusMessage = "No network responded. View is empty; see service_errors."
	case len(serviceErrors) > 0:
		response.StatusMessage = "Position view retrieved. Some networks failed and were excluded; see service_errors."
	case len(view.ChainSummaries) == 0:
		response.StatusMessage = "No positions found on any queried network."
	default:
		response.StatusMessage = "Position view retrieved successfully."
	}

	c.JSON(http.StatusOK, response)
}

// RefreshPositionsHandler drops the cached raw positions for a wallet so the
// next aggregation refetches from every source.
func (h *PositionHandler) RefreshPositionsHandler(c *gin.Context) {
	if h.cache == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "position cache is not enabled"})
		return
	}
	walletID := c.Param("walletId")
	networkID := c.Query("network")
	h.cache.Invalidate(walletID, networkID)
	c.JSON(http.StatusOK, gin.H{"status": "cache invalidated", "walletId": walletID})
}
