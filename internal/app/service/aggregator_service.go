package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"position_aggregator/internal/app/port"
	"position_aggregator/internal/domain/entity"
	"position_aggregator/internal/pkg/metrics"
)

// AggregatorServiceImpl implements port.PositionAggregator.
type AggregatorServiceImpl struct {
	walletResolver        port.WalletResolver
	networkCatalog        port.NetworkCatalog
	positionSource        port.PositionSource
	logger                port.Logger
	maxConcurrentRoutines int
	fetchTimeout          time.Duration
}

// NewAggregatorService creates a new instance of AggregatorServiceImpl.
func NewAggregatorService(
	wr port.WalletResolver,
	nc port.NetworkCatalog,
	ps port.PositionSource,
	l port.Logger,
	maxRoutines int,
	fetchTimeout time.Duration,
) port.PositionAggregator {
	if maxRoutines <= 0 {
		maxRoutines = 1
	}
	if fetchTimeout <= 0 {
		fetchTimeout = 15 * time.Second
	}
	return &AggregatorServiceImpl{
		walletResolver:        wr,
		networkCatalog:        nc,
		positionSource:        ps,
		logger:                l,
		maxConcurrentRoutines: maxRoutines,
		fetchTimeout:          fetchTimeout,
	}
}

// chainResult is one network's successful contribution to the view.
type chainResult struct {
	networkID string
	positions []entity.TokenPosition
	summary   entity.ChainPositionSummary
}

// Aggregate fans out one position query per target network, joins all of
// them, and reduces whatever succeeded into the cross-chain view. A failed
// network is logged and excluded; it never aborts its siblings. The only
// fatal error is wallet resolution.
func (s *AggregatorServiceImpl) Aggregate(
	ctx context.Context,
	walletID string,
	opts entity.AggregateOptions,
) (*entity.CrossChainPositionView, []entity.ChainQueryError, error) {
	start := time.Now()

	wallet, err := s.walletResolver.Resolve(walletID)
	if err != nil {
		s.logger.Error("Failed to resolve wallet", "wallet_id", walletID, "error", err)
		metrics.AggregationDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return nil, nil, fmt.Errorf("failed to resolve wallet %s: %w", walletID, err)
	}

	targetNetworks, queryErrs := s.targetNetworks(wallet, opts.NetworkIDs)
	s.logger.Debug("Dispatching per-network position queries",
		"wallet_id", wallet.ID, "address", wallet.Address, "network_count", len(targetNetworks))

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []chainResult
	)
	networkSemaphore := make(chan struct{}, s.maxConcurrentRoutines)

	for _, netDef := range targetNetworks {
		networkSemaphore <- struct{}{}
		wg.Add(1)
		go func(nd entity.NetworkDefinition) {
			defer wg.Done()
			defer func() { <-networkSemaphore }()

			result, queryErr := s.queryNetwork(ctx, *wallet, nd, opts)

			mu.Lock()
			defer mu.Unlock()
			if queryErr != nil {
				queryErrs = append(queryErrs, *queryErr)
				return
			}
			if result != nil {
				results = append(results, *result)
			}
		}(netDef)
	}

	wg.Wait()

	view := s.buildView(wallet, results)
	s.logger.Info("Aggregation completed",
		"wallet_id", wallet.ID,
		"networks_succeeded", len(results),
		"networks_failed", len(queryErrs),
		"position_count", len(view.Positions))
	metrics.AggregationDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	return view, queryErrs, nil
}

// targetNetworks determines the fetch scope: the requested network ids (or
// the full catalog when none were requested), intersected with the wallet's
// permitted network set.
func (s *AggregatorServiceImpl) targetNetworks(wallet *entity.Wallet, requested []string) ([]entity.NetworkDefinition, []entity.ChainQueryError) {
	var queryErrs []entity.ChainQueryError
	var targets []entity.NetworkDefinition

	if len(requested) == 0 {
		for _, nd := range s.networkCatalog.GetAllNetworkDefinitions() {
			if wallet.SupportsNetwork(nd.Identifier) {
				targets = append(targets, nd)
			}
		}
		return targets, queryErrs
	}

	for _, id := range requested {
		nd, ok := s.networkCatalog.GetNetworkDefinitionByID(id)
		if !ok {
			s.logger.Warn("Requested network is not in the catalog", "network", id, "wallet_id", wallet.ID)
			queryErrs = append(queryErrs, entity.ChainQueryError{
				WalletID:  wallet.ID,
				Address:   wallet.Address,
				NetworkID: id,
				Message:   "network not supported by catalog",
			})
			continue
		}
		if !wallet.SupportsNetwork(nd.Identifier) {
			s.logger.Debug("Wallet does not support requested network, skipping",
				"network", nd.Identifier, "wallet_id", wallet.ID)
			continue
		}
		targets = append(targets, nd)
	}
	return targets, queryErrs
}

// queryNetwork fetches and normalizes one network's positions. Every failure
// is caught here and reported as a ChainQueryError so it cannot unwind the
// fan-out. A nil, nil return means the network has nothing to contribute
// under the current options.
func (s *AggregatorServiceImpl) queryNetwork(
	ctx context.Context,
	wallet entity.Wallet,
	nd entity.NetworkDefinition,
	opts entity.AggregateOptions,
) (*chainResult, *entity.ChainQueryError) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	fetchStart := time.Now()
	rawPositions, err := s.positionSource.GetPositions(fetchCtx, wallet, nd)
	metrics.NetworkFetchDuration.WithLabelValues(nd.Identifier).Observe(time.Since(fetchStart).Seconds())
	if err != nil {
		s.logger.Error("Failed to fetch positions for network",
			"network", nd.Identifier, "wallet_id", wallet.ID, "error", err)
		metrics.NetworkFetchFailures.WithLabelValues(nd.Identifier).Inc()
		return nil, &entity.ChainQueryError{
			WalletID:  wallet.ID,
			Address:   wallet.Address,
			NetworkID: nd.Identifier,
			Message:   fmt.Sprintf("position fetch failed: %v", err),
		}
	}

	positions := make([]entity.TokenPosition, 0, len(rawPositions))
	for _, raw := range rawPositions {
		p := NormalizePosition(nd.Identifier, raw)
		if opts.MinUSDValue.IsPositive() && p.Magnitude().LessThan(opts.MinUSDValue) {
			continue
		}
		if !opts.IncludeZeroBalances && p.IsZero() {
			continue
		}
		positions = append(positions, p)
	}

	if len(positions) == 0 && !opts.IncludeZeroBalances {
		s.logger.Debug("Network has no nonzero positions, excluding",
			"network", nd.Identifier, "wallet_id", wallet.ID)
		return nil, nil
	}

	return &chainResult{
		networkID: nd.Identifier,
		positions: positions,
		summary:   BuildChainSummary(nd.Identifier, positions),
	}, nil
}

// buildView merges the per-network results into the final view. Chain
// summaries are sorted by net worth descending and positions by combined
// supply+borrow size descending, so output is reproducible regardless of
// completion order.
func (s *AggregatorServiceImpl) buildView(wallet *entity.Wallet, results []chainResult) *entity.CrossChainPositionView {
	chainSummaries := make([]entity.ChainPositionSummary, 0, len(results))
	var positions []entity.TokenPosition
	positionTotal := 0
	for _, r := range results {
		positionTotal += len(r.positions)
	}
	positions = make([]entity.TokenPosition, 0, positionTotal)

	for _, r := range results {
		chainSummaries = append(chainSummaries, r.summary)
		positions = append(positions, r.positions...)
	}

	sort.SliceStable(chainSummaries, func(i, j int) bool {
		if !chainSummaries[i].NetWorthUSD.Equal(chainSummaries[j].NetWorthUSD) {
			return chainSummaries[i].NetWorthUSD.GreaterThan(chainSummaries[j].NetWorthUSD)
		}
		return chainSummaries[i].NetworkID < chainSummaries[j].NetworkID
	})

	sort.SliceStable(positions, func(i, j int) bool {
		mi, mj := positions[i].Magnitude(), positions[j].Magnitude()
		if !mi.Equal(mj) {
			return mi.GreaterThan(mj)
		}
		if positions[i].NetworkID != positions[j].NetworkID {
			return positions[i].NetworkID < positions[j].NetworkID
		}
		return positions[i].Token.Symbol < positions[j].Token.Symbol
	})

	view := &entity.CrossChainPositionView{
		WalletID:              wallet.ID,
		Address:               wallet.Address,
		Timestamp:             time.Now().UTC(),
		Summary:               AggregatePositions(positions),
		ChainSummaries:        chainSummaries,
		Positions:             positions,
		CollateralUtilization: ComputeCollateralUtilization(positions),
		RiskMetrics:           ComputeRiskMetrics(positions),
	}
	view.Recommendations = BuildRecommendations(view)
	return view
}
