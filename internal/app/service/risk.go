package service

import (
	"github.com/shopspring/decimal"

	"position_aggregator/internal/domain/entity"
)

var (
	oneHundred       = decimal.NewFromInt(100)
	safeBorrowMargin = decimal.NewFromFloat(0.8)
)

// ComputeCollateralUtilization derives how much of the flagged collateral
// currently backs debt. The utilization rate is zero when no collateral
// exists, regardless of borrow.
func ComputeCollateralUtilization(positions []entity.TokenPosition) entity.CollateralUtilization {
	totalCollateral := decimal.Zero
	totalBorrow := decimal.Zero
	for _, p := range positions {
		if p.Supply.IsCollateral {
			totalCollateral = totalCollateral.Add(p.Supply.BalanceUSD)
		}
		totalBorrow = totalBorrow.Add(p.Borrow.BalanceUSD)
	}

	available := totalCollateral.Sub(totalBorrow)
	if available.IsNegative() {
		available = decimal.Zero
	}

	rate := decimal.Zero
	if totalCollateral.IsPositive() {
		rate = totalBorrow.Div(totalCollateral).Mul(oneHundred)
	}

	return entity.CollateralUtilization{
		TotalCollateralUSD:     totalCollateral,
		UsedCollateralUSD:      totalBorrow,
		AvailableCollateralUSD: available,
		UtilizationRate:        rate,
	}
}

// ComputeRiskMetrics derives the liquidation-oriented metrics. The weighted
// LTV and liquidation threshold are supply-weighted means across ALL
// positions, not just collateral-flagged ones: they describe market
// parameters, while the health factor describes actual risk exposure. That
// asymmetry is deliberate.
func ComputeRiskMetrics(positions []entity.TokenPosition) entity.RiskMetrics {
	totalSupply := decimal.Zero
	totalBorrow := decimal.Zero
	ltvWeight := decimal.Zero
	thresholdWeight := decimal.Zero

	for _, p := range positions {
		totalSupply = totalSupply.Add(p.Supply.BalanceUSD)
		totalBorrow = totalBorrow.Add(p.Borrow.BalanceUSD)
		ltvWeight = ltvWeight.Add(p.Supply.BalanceUSD.Mul(p.LoanToValue))
		thresholdWeight = thresholdWeight.Add(p.Supply.BalanceUSD.Mul(p.LiquidationThreshold))
	}

	maxLTV := decimal.Zero
	weightedThreshold := decimal.Zero
	currentLTV := decimal.Zero
	if totalSupply.IsPositive() {
		maxLTV = ltvWeight.Div(totalSupply)
		weightedThreshold = thresholdWeight.Div(totalSupply)
		currentLTV = totalBorrow.Div(totalSupply)
	}

	buffer := weightedThreshold.Sub(currentLTV)
	if buffer.IsNegative() {
		buffer = decimal.Zero
	}

	// 20% safety margin below the formal liquidation point.
	safeMaxBorrow := totalSupply.Mul(weightedThreshold).Mul(safeBorrowMargin)

	return entity.RiskMetrics{
		MaxLTV:                 maxLTV,
		CurrentLTV:             currentLTV,
		BufferUntilLiquidation: buffer.Mul(oneHundred),
		SafeMaxBorrowUSD:       safeMaxBorrow,
	}
}
