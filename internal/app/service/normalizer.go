package service

import (
	"strings"

	"github.com/shopspring/decimal"

	"position_aggregator/internal/domain/entity"
	"position_aggregator/internal/pkg/utils"
)

// Candidate source-field paths per logical attribute, evaluated in order.
// Different lending data providers nest the same value under different names;
// the first present path wins. Paths are dot-separated for nested objects.
var (
	tokenAddressPaths   = []string{"token.address", "tokenAddress", "underlyingAsset", "asset.address", "address"}
	tokenSymbolPaths    = []string{"token.symbol", "tokenSymbol", "asset.symbol", "symbol"}
	tokenNamePaths      = []string{"token.name", "tokenName", "asset.name", "name"}
	tokenDecimalsPaths  = []string{"token.decimals", "tokenDecimals", "asset.decimals", "decimals"}
	supplyBalancePaths  = []string{"supply.balance", "supplyBalance", "suppliedAmount", "currentATokenBalance", "deposit.amount"}
	supplyUSDPaths      = []string{"supply.balanceUsd", "supplyBalanceUsd", "suppliedUsd", "deposit.amountUsd"}
	supplyRawPaths      = []string{"supply.balanceRaw", "supplyBalanceRaw", "currentATokenBalanceRaw"}
	supplyAPYPaths      = []string{"supply.apy", "supplyApy", "liquidityRate", "depositApy"}
	isCollateralPaths   = []string{"supply.isCollateral", "isCollateral", "usageAsCollateralEnabled", "collateral"}
	borrowBalancePaths  = []string{"borrow.balance", "borrowBalance", "borrowedAmount", "currentVariableDebt", "debt.amount"}
	borrowUSDPaths      = []string{"borrow.balanceUsd", "borrowBalanceUsd", "borrowedUsd", "debt.amountUsd"}
	borrowRawPaths      = []string{"borrow.balanceRaw", "borrowBalanceRaw", "currentVariableDebtRaw"}
	borrowAPYPaths      = []string{"borrow.apy", "borrowApy", "variableBorrowRate", "debtApy"}
	loanToValuePaths    = []string{"loanToValue", "ltv", "baseLTVasCollateral", "maxLtv"}
	liqThresholdPaths   = []string{"liquidationThreshold", "reserveLiquidationThreshold", "liqThreshold"}
)

// NormalizePosition converts one raw provider record into the canonical
// TokenPosition. It never fails: absent or unparseable fields take their
// typed zero defaults, since a position of zero is semantically valid (the
// token exists in a reserve list with no user balance).
func NormalizePosition(networkID string, raw entity.RawPosition) entity.TokenPosition {
	return entity.TokenPosition{
		NetworkID: networkID,
		Token: entity.TokenInfo{
			Address:  stringField(raw, tokenAddressPaths, ""),
			Symbol:   stringField(raw, tokenSymbolPaths, ""),
			Name:     stringField(raw, tokenNamePaths, ""),
			Decimals: decimalsField(raw, tokenDecimalsPaths),
		},
		Supply: entity.SupplyPosition{
			Balance:      decimalField(raw, supplyBalancePaths),
			BalanceUSD:   decimalField(raw, supplyUSDPaths),
			BalanceRaw:   stringField(raw, supplyRawPaths, "0"),
			APY:          decimalField(raw, supplyAPYPaths),
			IsCollateral: boolField(raw, isCollateralPaths),
		},
		Borrow: entity.BorrowPosition{
			Balance:    decimalField(raw, borrowBalancePaths),
			BalanceUSD: decimalField(raw, borrowUSDPaths),
			BalanceRaw: stringField(raw, borrowRawPaths, "0"),
			APY:        decimalField(raw, borrowAPYPaths),
		},
		LoanToValue:          ratioField(raw, loanToValuePaths),
		LiquidationThreshold: ratioField(raw, liqThresholdPaths),
	}
}

// lookup resolves one dot-separated path inside the nested raw record.
func lookup(raw entity.RawPosition, path string) (any, bool) {
	segments := strings.Split(path, ".")
	var current any = map[string]any(raw)
	for _, seg := range segments {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[seg]
		if !ok || current == nil {
			return nil, false
		}
	}
	return current, true
}

func firstPresent(raw entity.RawPosition, paths []string) (any, bool) {
	for _, path := range paths {
		if v, ok := lookup(raw, path); ok {
			return v, true
		}
	}
	return nil, false
}

func stringField(raw entity.RawPosition, paths []string, fallback string) string {
	v, ok := firstPresent(raw, paths)
	if !ok {
		return fallback
	}
	return utils.CoerceString(v, fallback)
}

func decimalField(raw entity.RawPosition, paths []string) decimal.Decimal {
	v, ok := firstPresent(raw, paths)
	if !ok {
		return decimal.Zero
	}
	return utils.CoerceDecimal(v)
}

func boolField(raw entity.RawPosition, paths []string) bool {
	v, ok := firstPresent(raw, paths)
	if !ok {
		return false
	}
	return utils.CoerceBool(v)
}

func decimalsField(raw entity.RawPosition, paths []string) uint8 {
	v, ok := firstPresent(raw, paths)
	if !ok {
		return 0
	}
	return utils.CoerceUint8(v)
}

var tenThousand = decimal.NewFromInt(10000)

// ratioField reads a 0..1 ratio. Providers that express LTV and liquidation
// threshold in basis points (e.g. 8250) are scaled down to the unit range.
func ratioField(raw entity.RawPosition, paths []string) decimal.Decimal {
	d := decimalField(raw, paths)
	if d.GreaterThan(decimal.NewFromInt(1)) {
		return d.Div(tenThousand)
	}
	return d
}
