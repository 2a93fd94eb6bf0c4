package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"position_aggregator/internal/domain/entity"
)

const (
	RecommendationLowHealthFactor  = "low_health_factor"
	RecommendationBorrowingPower   = "available_borrowing_power"
	RecommendationHighUtilization  = "high_collateral_utilization"
	RecommendationNegativeCarry    = "negative_carry"
	RecommendationCrossChainSpread = "cross_chain_monitoring"
)

var (
	lowHealthFactorThreshold  = decimal.NewFromFloat(1.5)
	borrowNoticeHealthFactor  = decimal.NewFromInt(2)
	borrowNoticeMinUSD        = decimal.NewFromInt(1000)
	highUtilizationThreshold  = decimal.NewFromInt(80)
	crossChainSupplyThreshold = decimal.NewFromInt(100)
)

// BuildRecommendations evaluates the fixed advisory rule set against the
// finished view. Rules are independent, evaluated in a fixed order, and
// never fail; an empty list is a valid result.
func BuildRecommendations(view *entity.CrossChainPositionView) []entity.Recommendation {
	recs := make([]entity.Recommendation, 0, 4)

	if view.Summary.HealthFactor.LessThan(lowHealthFactorThreshold) {
		recs = append(recs, entity.Recommendation{
			Type:     RecommendationLowHealthFactor,
			Severity: entity.RecommendationSeverityWarning,
			Message: fmt.Sprintf("Health factor is %s. Consider repaying debt or adding collateral to reduce liquidation risk.",
				view.Summary.HealthFactor.Display()),
		})
	}

	if view.Summary.AvailableBorrowUSD.GreaterThan(borrowNoticeMinUSD) &&
		view.Summary.HealthFactor.GreaterThan(borrowNoticeHealthFactor) {
		recs = append(recs, entity.Recommendation{
			Type:     RecommendationBorrowingPower,
			Severity: entity.RecommendationSeverityInfo,
			Message: fmt.Sprintf("You have approximately $%s of unused borrowing power with a comfortable health factor.",
				view.Summary.AvailableBorrowUSD.Round(2)),
		})
	}

	if view.CollateralUtilization.UtilizationRate.GreaterThan(highUtilizationThreshold) {
		recs = append(recs, entity.Recommendation{
			Type:     RecommendationHighUtilization,
			Severity: entity.RecommendationSeverityWarning,
			Message: fmt.Sprintf("Collateral utilization is %s%%. Little collateral headroom remains before liquidation.",
				view.CollateralUtilization.UtilizationRate.Round(1)),
		})
	}

	if view.Summary.NetAPY.IsNegative() {
		recs = append(recs, entity.Recommendation{
			Type:     RecommendationNegativeCarry,
			Severity: entity.RecommendationSeverityInfo,
			Message:  "Net APY is negative: borrow interest currently outweighs supply yield.",
		})
	}

	activeChains := 0
	for _, cs := range view.ChainSummaries {
		if cs.SupplyUSD.GreaterThan(crossChainSupplyThreshold) {
			activeChains++
		}
	}
	if activeChains > 1 {
		recs = append(recs, entity.Recommendation{
			Type:     RecommendationCrossChainSpread,
			Severity: entity.RecommendationSeverityInfo,
			Message: fmt.Sprintf("Positions are spread across %d networks. Monitor each network's health factor separately.",
				activeChains),
		})
	}

	return recs
}
