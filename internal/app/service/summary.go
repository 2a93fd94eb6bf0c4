package service

import (
	"github.com/shopspring/decimal"

	"position_aggregator/internal/domain/entity"
)

// Risk bucket boundaries. Lower bound inclusive, upper bound exclusive.
var (
	riskBoundaryHigh   = decimal.NewFromFloat(1.10)
	riskBoundaryMedium = decimal.NewFromFloat(1.50)
	riskBoundaryLow    = decimal.NewFromInt(2)
)

// ComputeHealthFactor computes the health factor over a position set:
// the sum of supplyUsd × liquidationThreshold across collateral-flagged
// positions, divided by total borrow. With zero borrow the result is
// infinite when collateral exists and null otherwise.
//
// This is the single implementation shared by the per-network summaries and
// the portfolio rollup; both scopes must use exactly the same formula.
func ComputeHealthFactor(positions []entity.TokenPosition) entity.HealthFactor {
	totalBorrow := decimal.Zero
	collateral := decimal.Zero
	weightedCollateral := decimal.Zero

	for _, p := range positions {
		totalBorrow = totalBorrow.Add(p.Borrow.BalanceUSD)
		if p.Supply.IsCollateral {
			collateral = collateral.Add(p.Supply.BalanceUSD)
			weightedCollateral = weightedCollateral.Add(p.Supply.BalanceUSD.Mul(p.LiquidationThreshold))
		}
	}

	if totalBorrow.IsZero() {
		if collateral.IsPositive() {
			return entity.InfiniteHealthFactor()
		}
		return entity.NoHealthFactor()
	}
	return entity.NewHealthFactor(weightedCollateral.Div(totalBorrow))
}

// RiskBucket maps a health factor to its liquidation-risk bucket.
func RiskBucket(hf entity.HealthFactor) entity.LiquidationRisk {
	if !hf.Finite() {
		return entity.LiquidationRiskNone
	}
	v := hf.Value()
	switch {
	case v.LessThan(riskBoundaryHigh):
		return entity.LiquidationRiskHigh
	case v.LessThan(riskBoundaryMedium):
		return entity.LiquidationRiskMedium
	case v.LessThan(riskBoundaryLow):
		return entity.LiquidationRiskLow
	default:
		return entity.LiquidationRiskNone
	}
}

// BuildChainSummary reduces one network's positions to its rollup.
func BuildChainSummary(networkID string, positions []entity.TokenPosition) entity.ChainPositionSummary {
	supply := decimal.Zero
	borrow := decimal.Zero
	for _, p := range positions {
		supply = supply.Add(p.Supply.BalanceUSD)
		borrow = borrow.Add(p.Borrow.BalanceUSD)
	}

	return entity.ChainPositionSummary{
		NetworkID:     networkID,
		SupplyUSD:     supply,
		BorrowUSD:     borrow,
		NetWorthUSD:   supply.Sub(borrow),
		HealthFactor:  ComputeHealthFactor(positions),
		PositionCount: len(positions),
	}
}

// AggregatePositions reduces the full cross-network position list to the
// portfolio rollup.
func AggregatePositions(positions []entity.TokenPosition) entity.AggregatedPositionSummary {
	totalSupply := decimal.Zero
	totalBorrow := decimal.Zero
	supplyAPYWeight := decimal.Zero
	borrowAPYWeight := decimal.Zero
	ltvSum := decimal.Zero

	for _, p := range positions {
		totalSupply = totalSupply.Add(p.Supply.BalanceUSD)
		totalBorrow = totalBorrow.Add(p.Borrow.BalanceUSD)
		supplyAPYWeight = supplyAPYWeight.Add(p.Supply.BalanceUSD.Mul(p.Supply.APY))
		borrowAPYWeight = borrowAPYWeight.Add(p.Borrow.BalanceUSD.Mul(p.Borrow.APY))
		ltvSum = ltvSum.Add(p.LoanToValue)
	}

	weightedSupplyAPY := decimal.Zero
	if totalSupply.IsPositive() {
		weightedSupplyAPY = supplyAPYWeight.Div(totalSupply)
	}
	weightedBorrowAPY := decimal.Zero
	if totalBorrow.IsPositive() {
		weightedBorrowAPY = borrowAPYWeight.Div(totalBorrow)
	}

	// Available borrow uses the unweighted mean LTV across all positions.
	// This is a coarse estimate, not a borrowing-power oracle call, and is
	// kept as-is for continuity with observed behavior.
	avgLTV := decimal.Zero
	if len(positions) > 0 {
		avgLTV = ltvSum.Div(decimal.NewFromInt(int64(len(positions))))
	}
	availableBorrow := totalSupply.Mul(avgLTV).Sub(totalBorrow)
	if availableBorrow.IsNegative() {
		availableBorrow = decimal.Zero
	}

	netAPY := decimal.Zero
	if totalSupply.IsPositive() {
		netAPY = weightedSupplyAPY.Mul(totalSupply).Sub(weightedBorrowAPY.Mul(totalBorrow)).Div(totalSupply)
	}

	hf := ComputeHealthFactor(positions)

	return entity.AggregatedPositionSummary{
		TotalSupplyUSD:     totalSupply,
		TotalBorrowUSD:     totalBorrow,
		NetWorthUSD:        totalSupply.Sub(totalBorrow),
		AvailableBorrowUSD: availableBorrow,
		HealthFactor:       hf,
		LiquidationRisk:    RiskBucket(hf),
		WeightedSupplyAPY:  weightedSupplyAPY,
		WeightedBorrowAPY:  weightedBorrowAPY,
		NetAPY:             netAPY,
	}
}
