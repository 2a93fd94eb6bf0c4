package port

import "position_aggregator/internal/domain/entity"

// WalletResolver resolves a wallet id to its address and permitted network
// set. Resolution failure is the only fatal error path of an aggregation
// call.
type WalletResolver interface {
	Resolve(walletID string) (*entity.Wallet, error)
}
