package positionsource

import (
	"context"
	"fmt"

	"position_aggregator/internal/app/port"
	"position_aggregator/internal/domain/entity"
)

// RoutingSource dispatches each network to the position source matching its
// configured kind (HTTP lending data API or on-chain RPC).
type RoutingSource struct {
	api     port.PositionSource
	onchain port.PositionSource
}

// NewRoutingSource creates a new RoutingSource. Either source may be nil
// when the deployment does not configure that kind; routing to a missing
// source is a per-network error, not a panic.
func NewRoutingSource(api, onchain port.PositionSource) *RoutingSource {
	return &RoutingSource{api: api, onchain: onchain}
}

// GetPositions routes the fetch to the source for the network's kind.
func (s *RoutingSource) GetPositions(ctx context.Context, wallet entity.Wallet, network entity.NetworkDefinition) ([]entity.RawPosition, error) {
	switch network.Source {
	case entity.PositionSourceOnChain:
		if s.onchain == nil {
			return nil, fmt.Errorf("no on-chain position source configured for network %s", network.Identifier)
		}
		return s.onchain.GetPositions(ctx, wallet, network)
	case entity.PositionSourceAPI, "":
		if s.api == nil {
			return nil, fmt.Errorf("no lending data API source configured for network %s", network.Identifier)
		}
		return s.api.GetPositions(ctx, wallet, network)
	default:
		return nil, fmt.Errorf("unknown position source kind %q for network %s", network.Source, network.Identifier)
	}
}
