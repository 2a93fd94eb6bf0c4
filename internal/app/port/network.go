package port

import (
	"context"

	"position_aggregator/internal/domain/entity"
)

// NetworkCatalog provides the set of networks the deployment supports.
type NetworkCatalog interface {
	// GetAllNetworkDefinitions returns all available network definitions as a slice.
	GetAllNetworkDefinitions() []entity.NetworkDefinition

	// GetNetworkDefinitionByID returns a specific network definition by its
	// identifier. The second return value reports whether it was found.
	GetNetworkDefinitionByID(identifier string) (entity.NetworkDefinition, bool)
}

// PositionSource fetches one network's raw lending positions for a wallet.
// Implementations are network-type specific (lending data API, on-chain RPC).
// Records are returned in whatever shape the provider uses; callers run them
// through the normalizer.
type PositionSource interface {
	GetPositions(ctx context.Context, wallet entity.Wallet, network entity.NetworkDefinition) ([]entity.RawPosition, error)
}

// CachedPositionSource is a PositionSource whose results are cached per
// (walletId, networkId) with explicit invalidation.
type CachedPositionSource interface {
	PositionSource

	// Invalidate drops the cached positions for one wallet on one network.
	// An empty networkID drops every network for the wallet.
	Invalidate(walletID, networkID string)
}
