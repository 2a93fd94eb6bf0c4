package port

import (
	"context"

	"position_aggregator/internal/domain/entity"
)

// PositionAggregator builds the cross-chain position view for a wallet.
type PositionAggregator interface {
	// Aggregate concurrently fetches the wallet's positions on every target
	// network, merges the networks that responded and derives the risk
	// metrics. Per-network failures are returned as ChainQueryError values
	// alongside a complete view of the networks that did respond; the error
	// return is non-nil only when the wallet itself cannot be resolved.
	Aggregate(ctx context.Context, walletID string, opts entity.AggregateOptions) (*entity.CrossChainPositionView, []entity.ChainQueryError, error)
}
