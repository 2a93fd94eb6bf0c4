package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LiquidationRisk is the coarse risk bucket derived from the health factor.
type LiquidationRisk string

const (
	LiquidationRiskNone   LiquidationRisk = "none"
	LiquidationRiskLow    LiquidationRisk = "low"
	LiquidationRiskMedium LiquidationRisk = "medium"
	LiquidationRiskHigh   LiquidationRisk = "high"
)

// ChainPositionSummary is one network's rollup of the wallet's positions.
type ChainPositionSummary struct {
	NetworkID     string          `json:"networkId"`
	SupplyUSD     decimal.Decimal `json:"supplyUsd"`
	BorrowUSD     decimal.Decimal `json:"borrowUsd"`
	NetWorthUSD   decimal.Decimal `json:"netWorthUsd"`
	HealthFactor  HealthFactor    `json:"healthFactor"`
	PositionCount int             `json:"positionCount"`
}

// AggregatedPositionSummary is the portfolio-level rollup across every
// network that responded.
type AggregatedPositionSummary struct {
	TotalSupplyUSD     decimal.Decimal `json:"totalSupplyUsd"`
	TotalBorrowUSD     decimal.Decimal `json:"totalBorrowUsd"`
	NetWorthUSD        decimal.Decimal `json:"netWorthUsd"`
	AvailableBorrowUSD decimal.Decimal `json:"availableBorrowUsd"`
	HealthFactor       HealthFactor    `json:"healthFactor"`
	LiquidationRisk    LiquidationRisk `json:"liquidationRisk"`
	WeightedSupplyAPY  decimal.Decimal `json:"weightedSupplyApy"`
	WeightedBorrowAPY  decimal.Decimal `json:"weightedBorrowApy"`
	NetAPY             decimal.Decimal `json:"netApy"`
}

// CollateralUtilization describes how much of the flagged collateral is
// backing debt.
type CollateralUtilization struct {
	TotalCollateralUSD     decimal.Decimal `json:"totalCollateralUsd"`
	UsedCollateralUSD      decimal.Decimal `json:"usedCollateralUsd"`
	AvailableCollateralUSD decimal.Decimal `json:"availableCollateralUsd"`
	UtilizationRate        decimal.Decimal `json:"utilizationRate"`
}

// RiskMetrics are the liquidation-oriented metrics derived from the
// aggregated state.
type RiskMetrics struct {
	MaxLTV                 decimal.Decimal `json:"maxLtv"`
	CurrentLTV             decimal.Decimal `json:"currentLtv"`
	BufferUntilLiquidation decimal.Decimal `json:"bufferUntilLiquidation"`
	SafeMaxBorrowUSD       decimal.Decimal `json:"safeMaxBorrowUsd"`
}

// Recommendation is one advisory message derived from the finished view.
type Recommendation struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

const (
	RecommendationSeverityInfo    = "info"
	RecommendationSeverityWarning = "warning"
)

// CrossChainPositionView is the complete result of one aggregation call.
// It is a value owned entirely by the caller; no component retains
// references to it after returning.
type CrossChainPositionView struct {
	WalletID              string                    `json:"walletId"`
	Address               string                    `json:"address"`
	Timestamp             time.Time                 `json:"timestamp"`
	Summary               AggregatedPositionSummary `json:"summary"`
	ChainSummaries        []ChainPositionSummary    `json:"chainSummaries"`
	Positions             []TokenPosition           `json:"positions"`
	CollateralUtilization CollateralUtilization     `json:"collateralUtilization"`
	RiskMetrics           RiskMetrics               `json:"riskMetrics"`
	Recommendations       []Recommendation          `json:"recommendations"`
}

// AggregateOptions control the scope of one aggregation call.
type AggregateOptions struct {
	// NetworkIDs restricts the fetch to these networks. Empty means every
	// network the catalog and the wallet both support.
	NetworkIDs []string
	// IncludeZeroBalances keeps networks and positions with no balance in
	// the output.
	IncludeZeroBalances bool
	// MinUSDValue drops positions whose combined supply+borrow USD value is
	// below the threshold. Zero disables the filter.
	MinUSDValue decimal.Decimal
}
