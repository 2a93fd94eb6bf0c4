package service

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"position_aggregator/internal/domain/entity"
	"position_aggregator/internal/pkg/logger"
)

type stubWalletResolver struct {
	wallet *entity.Wallet
	err    error
}

func (s *stubWalletResolver) Resolve(walletID string) (*entity.Wallet, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.wallet, nil
}

type stubNetworkCatalog struct {
	networks []entity.NetworkDefinition
}

func (s *stubNetworkCatalog) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	return s.networks
}

func (s *stubNetworkCatalog) GetNetworkDefinitionByID(identifier string) (entity.NetworkDefinition, bool) {
	for _, nd := range s.networks {
		if strings.EqualFold(nd.Identifier, identifier) {
			return nd, true
		}
	}
	return entity.NetworkDefinition{}, false
}

type stubPositionSource struct {
	positions map[string][]entity.RawPosition
	failing   map[string]error
	calls     atomic.Int64
}

func (s *stubPositionSource) GetPositions(_ context.Context, _ entity.Wallet, network entity.NetworkDefinition) ([]entity.RawPosition, error) {
	s.calls.Add(1)
	if err, ok := s.failing[network.Identifier]; ok {
		return nil, err
	}
	return s.positions[network.Identifier], nil
}

func rawSupply(symbol string, supplyUSD, borrowUSD string) entity.RawPosition {
	return entity.RawPosition{
		"symbol":               symbol,
		"supplyBalance":        supplyUSD,
		"supplyBalanceUsd":     supplyUSD,
		"borrowBalance":        borrowUSD,
		"borrowBalanceUsd":     borrowUSD,
		"isCollateral":         true,
		"loanToValue":          "0.75",
		"liquidationThreshold": "0.8",
	}
}

func testCatalog() *stubNetworkCatalog {
	return &stubNetworkCatalog{networks: []entity.NetworkDefinition{
		{Identifier: "ethereum", Name: "Ethereum", ChainID: 1},
		{Identifier: "arbitrum", Name: "Arbitrum One", ChainID: 42161},
		{Identifier: "polygon", Name: "Polygon", ChainID: 137},
	}}
}

func testWallet() *entity.Wallet {
	return &entity.Wallet{ID: "main", Address: "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"}
}

func newTestAggregator(wr *stubWalletResolver, nc *stubNetworkCatalog, ps *stubPositionSource) *AggregatorServiceImpl {
	svc := NewAggregatorService(wr, nc, ps, logger.NewSlogAdapter(), 4, 0)
	return svc.(*AggregatorServiceImpl)
}

func TestAggregateWalletResolutionIsFatal(t *testing.T) {
	svc := newTestAggregator(
		&stubWalletResolver{err: errors.New("unknown wallet")},
		testCatalog(),
		&stubPositionSource{},
	)

	view, queryErrs, err := svc.Aggregate(context.Background(), "ghost", entity.AggregateOptions{})

	require.Error(t, err)
	assert.Nil(t, view)
	assert.Nil(t, queryErrs)
	assert.Contains(t, err.Error(), "ghost")
}

func TestAggregateSurvivesPartialNetworkFailure(t *testing.T) {
	source := &stubPositionSource{
		positions: map[string][]entity.RawPosition{
			"ethereum": {rawSupply("WETH", "1000", "0")},
			"polygon":  {rawSupply("WMATIC", "300", "100")},
		},
		failing: map[string]error{
			"arbitrum": errors.New("rpc connection timed out"),
		},
	}
	svc := newTestAggregator(&stubWalletResolver{wallet: testWallet()}, testCatalog(), source)

	view, queryErrs, err := svc.Aggregate(context.Background(), "main", entity.AggregateOptions{})

	require.NoError(t, err)
	require.NotNil(t, view)

	require.Len(t, queryErrs, 1)
	assert.Equal(t, "arbitrum", queryErrs[0].NetworkID)
	assert.Equal(t, "main", queryErrs[0].WalletID)
	assert.Contains(t, queryErrs[0].Message, "position fetch failed")

	require.Len(t, view.ChainSummaries, 2)
	assert.Equal(t, "ethereum", view.ChainSummaries[0].NetworkID)
	assert.Equal(t, "polygon", view.ChainSummaries[1].NetworkID)
	assert.True(t, view.Summary.TotalSupplyUSD.Equal(decimal.NewFromInt(1300)))
	assert.True(t, view.Summary.TotalBorrowUSD.Equal(decimal.NewFromInt(100)))
}

func TestAggregateRequestedNetworkScoping(t *testing.T) {
	source := &stubPositionSource{
		positions: map[string][]entity.RawPosition{
			"ethereum": {rawSupply("WETH", "1000", "0")},
			"polygon":  {rawSupply("WMATIC", "300", "0")},
		},
	}
	svc := newTestAggregator(&stubWalletResolver{wallet: testWallet()}, testCatalog(), source)

	view, queryErrs, err := svc.Aggregate(context.Background(), "main", entity.AggregateOptions{
		NetworkIDs: []string{"ethereum", "dogechain"},
	})

	require.NoError(t, err)
	require.Len(t, queryErrs, 1)
	assert.Equal(t, "dogechain", queryErrs[0].NetworkID)
	assert.Contains(t, queryErrs[0].Message, "not supported")

	require.Len(t, view.ChainSummaries, 1)
	assert.Equal(t, "ethereum", view.ChainSummaries[0].NetworkID)
	assert.Equal(t, int64(1), source.calls.Load())
}

func TestAggregateRespectsWalletNetworkList(t *testing.T) {
	source := &stubPositionSource{
		positions: map[string][]entity.RawPosition{
			"ethereum": {rawSupply("WETH", "1000", "0")},
		},
	}
	wallet := testWallet()
	wallet.SupportedNetworks = []string{"ethereum"}
	svc := newTestAggregator(&stubWalletResolver{wallet: wallet}, testCatalog(), source)

	view, queryErrs, err := svc.Aggregate(context.Background(), "main", entity.AggregateOptions{})

	require.NoError(t, err)
	assert.Empty(t, queryErrs)
	require.Len(t, view.ChainSummaries, 1)
	assert.Equal(t, "ethereum", view.ChainSummaries[0].NetworkID)
	assert.Equal(t, int64(1), source.calls.Load())
}

func TestAggregateZeroBalanceHandling(t *testing.T) {
	zero := entity.RawPosition{"symbol": "GHO", "supplyBalanceUsd": "0", "borrowBalanceUsd": "0"}
	source := &stubPositionSource{
		positions: map[string][]entity.RawPosition{
			"ethereum": {rawSupply("WETH", "1000", "0"), zero},
			"arbitrum": {zero},
			"polygon":  {},
		},
	}
	svc := newTestAggregator(&stubWalletResolver{wallet: testWallet()}, testCatalog(), source)

	t.Run("zero positions and empty networks excluded by default", func(t *testing.T) {
		view, queryErrs, err := svc.Aggregate(context.Background(), "main", entity.AggregateOptions{})
		require.NoError(t, err)
		assert.Empty(t, queryErrs)
		require.Len(t, view.ChainSummaries, 1)
		assert.Equal(t, "ethereum", view.ChainSummaries[0].NetworkID)
		require.Len(t, view.Positions, 1)
		assert.Equal(t, "WETH", view.Positions[0].Token.Symbol)
	})

	t.Run("included on request", func(t *testing.T) {
		view, _, err := svc.Aggregate(context.Background(), "main", entity.AggregateOptions{IncludeZeroBalances: true})
		require.NoError(t, err)
		assert.Len(t, view.ChainSummaries, 3)
		assert.Len(t, view.Positions, 3)
	})
}

func TestAggregateMinUSDFilter(t *testing.T) {
	source := &stubPositionSource{
		positions: map[string][]entity.RawPosition{
			"ethereum": {
				rawSupply("WETH", "1000", "0"),
				rawSupply("DUST", "3", "1"),
			},
		},
	}
	svc := newTestAggregator(&stubWalletResolver{wallet: testWallet()}, testCatalog(), source)

	view, _, err := svc.Aggregate(context.Background(), "main", entity.AggregateOptions{
		NetworkIDs:  []string{"ethereum"},
		MinUSDValue: decimal.NewFromInt(10),
	})

	require.NoError(t, err)
	require.Len(t, view.Positions, 1)
	assert.Equal(t, "WETH", view.Positions[0].Token.Symbol)
}

func TestAggregateDeterministicOrdering(t *testing.T) {
	source := &stubPositionSource{
		positions: map[string][]entity.RawPosition{
			"ethereum": {rawSupply("WETH", "500", "0")},
			"arbitrum": {rawSupply("ARB", "2000", "300")},
			"polygon":  {rawSupply("WMATIC", "800", "0")},
		},
	}
	svc := newTestAggregator(&stubWalletResolver{wallet: testWallet()}, testCatalog(), source)

	first, _, err := svc.Aggregate(context.Background(), "main", entity.AggregateOptions{})
	require.NoError(t, err)
	second, _, err := svc.Aggregate(context.Background(), "main", entity.AggregateOptions{})
	require.NoError(t, err)

	// Chain summaries by net worth descending, regardless of goroutine
	// completion order.
	wantChains := []string{"arbitrum", "polygon", "ethereum"}
	for i, cs := range first.ChainSummaries {
		assert.Equal(t, wantChains[i], cs.NetworkID)
	}
	require.Len(t, second.ChainSummaries, len(first.ChainSummaries))
	for i := range first.ChainSummaries {
		assert.Equal(t, first.ChainSummaries[i].NetworkID, second.ChainSummaries[i].NetworkID)
	}
	for i := range first.Positions {
		assert.Equal(t, first.Positions[i].Token.Symbol, second.Positions[i].Token.Symbol)
	}
	assert.True(t, first.Summary.TotalSupplyUSD.Equal(second.Summary.TotalSupplyUSD))
	assert.True(t, first.Summary.NetWorthUSD.Equal(second.Summary.NetWorthUSD))
}
