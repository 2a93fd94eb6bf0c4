package entity

import "github.com/shopspring/decimal"

// TokenInfo identifies the underlying token of a lending position.
type TokenInfo struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
}

// SupplyPosition is the supplied (collateral side) leg of a lending position.
type SupplyPosition struct {
	Balance      decimal.Decimal `json:"balance"`
	BalanceUSD   decimal.Decimal `json:"balanceUsd"`
	BalanceRaw   string          `json:"balanceRaw"`
	APY          decimal.Decimal `json:"apy"`
	IsCollateral bool            `json:"isCollateral"`
}

// BorrowPosition is the borrowed (debt side) leg of a lending position.
type BorrowPosition struct {
	Balance    decimal.Decimal `json:"balance"`
	BalanceUSD decimal.Decimal `json:"balanceUsd"`
	BalanceRaw string          `json:"balanceRaw"`
	APY        decimal.Decimal `json:"apy"`
}

// TokenPosition is one token's lending position on one network, normalized
// from whatever shape the network-specific source returned. Values are never
// mutated after construction.
type TokenPosition struct {
	NetworkID            string          `json:"networkId"`
	Token                TokenInfo       `json:"token"`
	Supply               SupplyPosition  `json:"supply"`
	Borrow               BorrowPosition  `json:"borrow"`
	LoanToValue          decimal.Decimal `json:"loanToValue"`
	LiquidationThreshold decimal.Decimal `json:"liquidationThreshold"`
}

// Magnitude is the combined supply+borrow USD size of the position, used for
// deterministic ordering of the final position list.
func (p TokenPosition) Magnitude() decimal.Decimal {
	return p.Supply.BalanceUSD.Add(p.Borrow.BalanceUSD)
}

// IsZero reports whether the position carries no balance on either leg.
// A zero position is valid data: the token exists in a reserve list the
// wallet never touched.
func (p TokenPosition) IsZero() bool {
	return p.Supply.Balance.IsZero() && p.Supply.BalanceUSD.IsZero() &&
		p.Borrow.Balance.IsZero() && p.Borrow.BalanceUSD.IsZero()
}

// RawPosition is one position record exactly as a network-specific source
// returned it. Field names and nesting vary per provider; the normalizer
// absorbs that variance.
type RawPosition map[string]any
