package onchain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/shopspring/decimal"

	"position_aggregator/internal/app/port"
	"position_aggregator/internal/domain/entity"
	"position_aggregator/internal/pkg/utils"
)

// Minimal ABI slice of an Aave V3 style protocol data provider plus the
// matching price oracle: enough to enumerate reserves and read one user's
// per-reserve lending state.
const dataProviderABI = `[
{"inputs":[],"name":"getAllReservesTokens","outputs":[{"components":[{"internalType":"string","name":"symbol","type":"string"},{"internalType":"address","name":"tokenAddress","type":"address"}],"internalType":"struct TokenData[]","name":"","type":"tuple[]"}],"stateMutability":"view","type":"function"},
{"inputs":[{"internalType":"address","name":"asset","type":"address"}],"name":"getReserveConfigurationData","outputs":[{"internalType":"uint256","name":"decimals","type":"uint256"},{"internalType":"uint256","name":"ltv","type":"uint256"},{"internalType":"uint256","name":"liquidationThreshold","type":"uint256"},{"internalType":"uint256","name":"liquidationBonus","type":"uint256"},{"internalType":"uint256","name":"reserveFactor","type":"uint256"},{"internalType":"bool","name":"usageAsCollateralEnabled","type":"bool"},{"internalType":"bool","name":"borrowingEnabled","type":"bool"},{"internalType":"bool","name":"stableBorrowRateEnabled","type":"bool"},{"internalType":"bool","name":"isActive","type":"bool"},{"internalType":"bool","name":"isFrozen","type":"bool"}],"stateMutability":"view","type":"function"},
{"inputs":[{"internalType":"address","name":"asset","type":"address"}],"name":"getReserveData","outputs":[{"internalType":"uint256","name":"unbacked","type":"uint256"},{"internalType":"uint256","name":"accruedToTreasuryScaled","type":"uint256"},{"internalType":"uint256","name":"totalAToken","type":"uint256"},{"internalType":"uint256","name":"totalStableDebt","type":"uint256"},{"internalType":"uint256","name":"totalVariableDebt","type":"uint256"},{"internalType":"uint256","name":"liquidityRate","type":"uint256"},{"internalType":"uint256","name":"variableBorrowRate","type":"uint256"},{"internalType":"uint256","name":"stableBorrowRate","type":"uint256"},{"internalType":"uint256","name":"averageStableBorrowRate","type":"uint256"},{"internalType":"uint256","name":"liquidityIndex","type":"uint256"},{"internalType":"uint256","name":"variableBorrowIndex","type":"uint256"},{"internalType":"uint40","name":"lastUpdateTimestamp","type":"uint40"}],"stateMutability":"view","type":"function"},
{"inputs":[{"internalType":"address","name":"asset","type":"address"},{"internalType":"address","name":"user","type":"address"}],"name":"getUserReserveData","outputs":[{"internalType":"uint256","name":"currentATokenBalance","type":"uint256"},{"internalType":"uint256","name":"currentStableDebt","type":"uint256"},{"internalType":"uint256","name":"currentVariableDebt","type":"uint256"},{"internalType":"uint256","name":"principalStableDebt","type":"uint256"},{"internalType":"uint256","name":"scaledVariableDebt","type":"uint256"},{"internalType":"uint256","name":"stableBorrowRate","type":"uint256"},{"internalType":"uint256","name":"liquidityRate","type":"uint256"},{"internalType":"uint40","name":"stableRateLastUpdated","type":"uint40"},{"internalType":"bool","name":"usageAsCollateralEnabled","type":"bool"}],"stateMutability":"view","type":"function"}
]`

const priceOracleABI = `[
{"inputs":[{"internalType":"address","name":"asset","type":"address"}],"name":"getAssetPrice","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

// Aave oracles quote asset prices in the USD base currency with 8 decimals.
const oraclePriceDecimals = 8

// Rates are expressed in ray (27 decimals).
const rayDecimals = 27

var (
	parsedDataProviderABI abi.ABI
	parsedOracleABI       abi.ABI
	parseABIsOnce         sync.Once
)

func initParsedABIs() {
	parseABIsOnce.Do(func() {
		var err error
		parsedDataProviderABI, err = abi.JSON(strings.NewReader(dataProviderABI))
		if err != nil {
			panic(fmt.Sprintf("failed to parse data provider ABI: %v", err))
		}
		parsedOracleABI, err = abi.JSON(strings.NewReader(priceOracleABI))
		if err != nil {
			panic(fmt.Sprintf("failed to parse price oracle ABI: %v", err))
		}
	})
}

// reserveToken mirrors the data provider's TokenData tuple.
type reserveToken struct {
	Symbol       string
	TokenAddress common.Address
}

// EVMSource implements port.PositionSource by reading lending positions
// straight from a protocol data provider contract over RPC. Clients are
// dialed lazily per network and reused across calls.
type EVMSource struct {
	clients           map[string]*ethclient.Client
	mu                sync.Mutex
	logger            port.Logger
	connectionTimeout time.Duration
	rpcCallTimeout    time.Duration
}

// NewEVMSource creates a new on-chain position source.
func NewEVMSource(logger port.Logger, connectionTimeout, rpcCallTimeout time.Duration) *EVMSource {
	initParsedABIs()
	return &EVMSource{
		clients:           make(map[string]*ethclient.Client),
		logger:            logger,
		connectionTimeout: connectionTimeout,
		rpcCallTimeout:    rpcCallTimeout,
	}
}

// getClient retrieves or dials the RPC client for the given network,
// trying the primary URL first and then each fallback.
func (s *EVMSource) getClient(netDef entity.NetworkDefinition) (*ethclient.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if client, exists := s.clients[netDef.Identifier]; exists {
		return client, nil
	}

	rpcURLs := append([]string{netDef.PrimaryRPCURL}, netDef.FallbackRPCURLs...)
	var lastErr error
	for _, rpcURL := range rpcURLs {
		ctx, cancel := context.WithTimeout(context.Background(), s.connectionTimeout)
		client, err := ethclient.DialContext(ctx, rpcURL)
		cancel()
		if err == nil {
			s.logger.Info("Created and cached RPC client", "network", netDef.Identifier, "rpc", rpcURL)
			s.clients[netDef.Identifier] = client
			return client, nil
		}
		lastErr = fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}
	return nil, fmt.Errorf("all RPC connection attempts failed for network %s: %w", netDef.Identifier, lastErr)
}

// GetPositions reads the wallet's per-reserve lending state on one network
// and returns raw records for the normalizer.
func (s *EVMSource) GetPositions(ctx context.Context, wallet entity.Wallet, network entity.NetworkDefinition) ([]entity.RawPosition, error) {
	if network.PoolDataProvider == "" || network.PriceOracle == "" {
		return nil, fmt.Errorf("network %s has no pool data provider or price oracle configured", network.Identifier)
	}

	client, err := s.getClient(network)
	if err != nil {
		return nil, err
	}

	dataProvider := common.HexToAddress(network.PoolDataProvider)
	oracle := common.HexToAddress(network.PriceOracle)
	user := common.HexToAddress(wallet.Address)

	reserves, err := s.fetchReserves(ctx, client, dataProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to list reserves on %s: %w", network.Identifier, err)
	}
	if len(reserves) == 0 {
		return []entity.RawPosition{}, nil
	}

	return s.fetchReserveStates(ctx, client, network, dataProvider, oracle, user, reserves)
}

func (s *EVMSource) fetchReserves(ctx context.Context, client *ethclient.Client, dataProvider common.Address) ([]reserveToken, error) {
	callData, err := parsedDataProviderABI.Pack("getAllReservesTokens")
	if err != nil {
		return nil, fmt.Errorf("failed to pack getAllReservesTokens: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.rpcCallTimeout)
	defer cancel()

	res, err := client.CallContract(callCtx, ethereum.CallMsg{To: &dataProvider, Data: callData}, nil)
	if err != nil {
		return nil, fmt.Errorf("getAllReservesTokens call failed: %w", err)
	}

	out, err := parsedDataProviderABI.Unpack("getAllReservesTokens", res)
	if err != nil || len(out) == 0 {
		return nil, fmt.Errorf("failed to unpack getAllReservesTokens result: %w", err)
	}
	reserves := *abi.ConvertType(out[0], new([]reserveToken)).(*[]reserveToken)
	return reserves, nil
}

// callsPerReserve is the number of batched eth_call elements per reserve:
// user data, reserve configuration, reserve rates, oracle price.
const callsPerReserve = 4

// fetchReserveStates batch-reads every reserve's user state, configuration,
// rates and oracle price in a single JSON-RPC batch, then assembles one raw
// record per reserve.
func (s *EVMSource) fetchReserveStates(
	ctx context.Context,
	client *ethclient.Client,
	network entity.NetworkDefinition,
	dataProvider, oracle, user common.Address,
	reserves []reserveToken,
) ([]entity.RawPosition, error) {
	batchElems := make([]rpc.BatchElem, 0, len(reserves)*callsPerReserve)
	for _, reserve := range reserves {
		userData, err := parsedDataProviderABI.Pack("getUserReserveData", reserve.TokenAddress, user)
		if err != nil {
			return nil, fmt.Errorf("failed to pack getUserReserveData for %s: %w", reserve.Symbol, err)
		}
		configData, err := parsedDataProviderABI.Pack("getReserveConfigurationData", reserve.TokenAddress)
		if err != nil {
			return nil, fmt.Errorf("failed to pack getReserveConfigurationData for %s: %w", reserve.Symbol, err)
		}
		reserveData, err := parsedDataProviderABI.Pack("getReserveData", reserve.TokenAddress)
		if err != nil {
			return nil, fmt.Errorf("failed to pack getReserveData for %s: %w", reserve.Symbol, err)
		}
		priceData, err := parsedOracleABI.Pack("getAssetPrice", reserve.TokenAddress)
		if err != nil {
			return nil, fmt.Errorf("failed to pack getAssetPrice for %s: %w", reserve.Symbol, err)
		}

		for _, call := range []struct {
			to   common.Address
			data []byte
		}{
			{dataProvider, userData},
			{dataProvider, configData},
			{dataProvider, reserveData},
			{oracle, priceData},
		} {
			callArgs := map[string]interface{}{
				"to":   call.to,
				"data": hexutil.Bytes(call.data),
			}
			batchElems = append(batchElems, rpc.BatchElem{
				Method: "eth_call",
				Args:   []interface{}{callArgs, "latest"},
				Result: new(hexutil.Bytes),
			})
		}
	}

	rpcCallCtx, cancel := context.WithTimeout(ctx, s.rpcCallTimeout)
	defer cancel()
	if err := client.Client().BatchCallContext(rpcCallCtx, batchElems); err != nil {
		return nil, fmt.Errorf("RPC batch call failed: %w", err)
	}

	positions := make([]entity.RawPosition, 0, len(reserves))
	for i, reserve := range reserves {
		base := i * callsPerReserve
		raw, err := s.assembleRawPosition(reserve, batchElems[base:base+callsPerReserve])
		if err != nil {
			// One undecodable reserve should not lose the rest of the
			// network; the caller already treats the whole network as a
			// unit, so only log and skip the reserve.
			s.logger.Warn("Skipping undecodable reserve",
				"network", network.Identifier, "reserve", reserve.Symbol, "error", err)
			continue
		}
		positions = append(positions, raw)
	}
	return positions, nil
}

func batchResult(elem rpc.BatchElem) (hexutil.Bytes, error) {
	if elem.Error != nil {
		return nil, elem.Error
	}
	res, ok := elem.Result.(*hexutil.Bytes)
	if !ok || res == nil {
		return nil, fmt.Errorf("unexpected batch element result type %T", elem.Result)
	}
	return *res, nil
}

// assembleRawPosition decodes the four batched call results for one reserve
// into a raw record using the data provider's native field names; the
// normalizer maps them to the canonical position shape.
func (s *EVMSource) assembleRawPosition(reserve reserveToken, elems []rpc.BatchElem) (entity.RawPosition, error) {
	userBytes, err := batchResult(elems[0])
	if err != nil {
		return nil, fmt.Errorf("getUserReserveData: %w", err)
	}
	configBytes, err := batchResult(elems[1])
	if err != nil {
		return nil, fmt.Errorf("getReserveConfigurationData: %w", err)
	}
	reserveBytes, err := batchResult(elems[2])
	if err != nil {
		return nil, fmt.Errorf("getReserveData: %w", err)
	}
	priceBytes, err := batchResult(elems[3])
	if err != nil {
		return nil, fmt.Errorf("getAssetPrice: %w", err)
	}

	userOut, err := parsedDataProviderABI.Unpack("getUserReserveData", userBytes)
	if err != nil || len(userOut) < 9 {
		return nil, fmt.Errorf("failed to unpack getUserReserveData: %w", err)
	}
	configOut, err := parsedDataProviderABI.Unpack("getReserveConfigurationData", configBytes)
	if err != nil || len(configOut) < 10 {
		return nil, fmt.Errorf("failed to unpack getReserveConfigurationData: %w", err)
	}
	reserveOut, err := parsedDataProviderABI.Unpack("getReserveData", reserveBytes)
	if err != nil || len(reserveOut) < 12 {
		return nil, fmt.Errorf("failed to unpack getReserveData: %w", err)
	}
	priceOut, err := parsedOracleABI.Unpack("getAssetPrice", priceBytes)
	if err != nil || len(priceOut) < 1 {
		return nil, fmt.Errorf("failed to unpack getAssetPrice: %w", err)
	}

	aTokenBalance := asBigInt(userOut[0])
	stableDebt := asBigInt(userOut[1])
	variableDebt := asBigInt(userOut[2])
	usageAsCollateral, _ := userOut[8].(bool)

	tokenDecimals := asBigInt(configOut[0])
	ltvBips := asBigInt(configOut[1])
	liqThresholdBips := asBigInt(configOut[2])

	liquidityRate := asBigInt(reserveOut[5])
	variableBorrowRate := asBigInt(reserveOut[6])

	price := asBigInt(priceOut[0])

	decimals := uint8(tokenDecimals.Uint64())
	priceUSD := utils.DecimalFromRaw(price, oraclePriceDecimals)

	supplyBalance := utils.DecimalFromRaw(aTokenBalance, decimals)
	totalDebtRaw := new(big.Int).Add(stableDebt, variableDebt)
	borrowBalance := utils.DecimalFromRaw(totalDebtRaw, decimals)

	return entity.RawPosition{
		"underlyingAsset": reserve.TokenAddress.Hex(),
		"symbol":          reserve.Symbol,
		"name":            reserve.Symbol,
		"decimals":        float64(decimals),

		"currentATokenBalance": supplyBalance.String(),
		"supplyBalanceUsd":     supplyBalance.Mul(priceUSD).String(),
		"supplyBalanceRaw":     aTokenBalance.String(),
		"liquidityRate":        rayToRatio(liquidityRate).String(),

		"usageAsCollateralEnabled": usageAsCollateral,

		"currentVariableDebt": borrowBalance.String(),
		"borrowBalanceUsd":    borrowBalance.Mul(priceUSD).String(),
		"borrowBalanceRaw":    totalDebtRaw.String(),
		"variableBorrowRate":  rayToRatio(variableBorrowRate).String(),

		"baseLTVasCollateral":         ltvBips.String(),
		"reserveLiquidationThreshold": liqThresholdBips.String(),
	}, nil
}

func asBigInt(v interface{}) *big.Int {
	if b, ok := v.(*big.Int); ok && b != nil {
		return b
	}
	return big.NewInt(0)
}

// rayToRatio converts a ray-scaled annual rate to a plain ratio.
func rayToRatio(rate *big.Int) decimal.Decimal {
	return utils.DecimalFromRaw(rate, rayDecimals)
}
