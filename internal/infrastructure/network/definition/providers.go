package networkdefinition

import (
	"strings"

	"position_aggregator/internal/app/port"
	"position_aggregator/internal/domain/entity"
)

// NetworkDefinitionProvider provides network definitions. It merges the
// hardcoded defaults with per-deployment overrides from the configuration;
// networks present only in the configuration are added as-is.
type NetworkDefinitionProvider struct {
	logger         port.Logger
	networkDefs    map[string]entity.NetworkDefinition
	orderedNetDefs []entity.NetworkDefinition
}

// Predefined network definitions. Pool data provider and price oracle
// addresses are the Aave V3 deployments on each network.
var ( //nolint:gochecknoglobals // Global for definitions
	Ethereum = entity.NetworkDefinition{
		ChainID:          1,
		Name:             "Ethereum Mainnet",
		Identifier:       "ethereum",
		Source:           entity.PositionSourceOnChain,
		PrimaryRPCURL:    "https://ethereum-rpc.publicnode.com",
		FallbackRPCURLs:  []string{"https://rpc.ankr.com/eth", "https://ethereum.publicnode.com"},
		DataAPIChainID:   "ethereum",
		PoolDataProvider: "0x7B4EB56E7CD4b454BA8ff71E4518426369a138a3",
		PriceOracle:      "0x54586bE62E3c3580375aE3723C145253060Ca0C2",
	}
	Polygon = entity.NetworkDefinition{
		ChainID:          137,
		Name:             "Polygon PoS",
		Identifier:       "polygon",
		Source:           entity.PositionSourceOnChain,
		PrimaryRPCURL:    "https://polygon-rpc.com/",
		FallbackRPCURLs:  []string{"https://rpc.ankr.com/polygon", "https://polygon.publicnode.com"},
		DataAPIChainID:   "polygon",
		PoolDataProvider: "0x69FA688f1Dc47d4B5d8029D5a35FB7a548310654",
		PriceOracle:      "0xb023e699F5a33916Ea823A16485e259257cA8Bd1",
	}
	Arbitrum = entity.NetworkDefinition{
		ChainID:          42161,
		Name:             "Arbitrum One",
		Identifier:       "arbitrum",
		Source:           entity.PositionSourceOnChain,
		PrimaryRPCURL:    "https://arb1.arbitrum.io/rpc",
		FallbackRPCURLs:  []string{"https://arbitrum.llamarpc.com", "https://arbitrum.publicnode.com"},
		DataAPIChainID:   "arbitrum",
		PoolDataProvider: "0x69FA688f1Dc47d4B5d8029D5a35FB7a548310654",
		PriceOracle:      "0xb56c2F0B653B2e0b10C9b928C8580Ac5Df02C7C7",
	}
	Optimism = entity.NetworkDefinition{
		ChainID:          10,
		Name:             "OP Mainnet",
		Identifier:       "optimism",
		Source:           entity.PositionSourceOnChain,
		PrimaryRPCURL:    "https://op-pokt.nodies.app",
		FallbackRPCURLs:  []string{"https://optimism.publicnode.com", "https://rpc.ankr.com/optimism"},
		DataAPIChainID:   "optimism",
		PoolDataProvider: "0x69FA688f1Dc47d4B5d8029D5a35FB7a548310654",
		PriceOracle:      "0xD81eb3728a631871a7eBBaD631b5f424909f0c77",
	}
	Avalanche = entity.NetworkDefinition{
		ChainID:          43114,
		Name:             "Avalanche C-Chain",
		Identifier:       "avalanche",
		Source:           entity.PositionSourceOnChain,
		PrimaryRPCURL:    "https://api.avax.network/ext/bc/C/rpc",
		FallbackRPCURLs:  []string{"https://avalanche.publicnode.com", "https://rpc.ankr.com/avalanche"},
		DataAPIChainID:   "avalanche",
		PoolDataProvider: "0x69FA688f1Dc47d4B5d8029D5a35FB7a548310654",
		PriceOracle:      "0xEBd36016B3eD09D4693Ed4251c67Bd858c3c7C9C",
	}
	Base = entity.NetworkDefinition{
		ChainID:          8453,
		Name:             "Base Mainnet",
		Identifier:       "base",
		Source:           entity.PositionSourceOnChain,
		PrimaryRPCURL:    "https://1rpc.io/base",
		FallbackRPCURLs:  []string{"https://base.publicnode.com", "https://base.llamarpc.com"},
		DataAPIChainID:   "base",
		PoolDataProvider: "0x2d8A3C5677189723C4cB8873CfC9C8976FDF38Ac",
		PriceOracle:      "0x2Cc0Fc26eD4563A5ce5e8bdcfe1A2878676Ae156",
	}
	BSC = entity.NetworkDefinition{
		ChainID:         56,
		Name:            "BNB Smart Chain",
		Identifier:      "bsc",
		Source:          entity.PositionSourceAPI,
		PrimaryRPCURL:   "https://1rpc.io/bnb",
		FallbackRPCURLs: []string{"https://bsc-dataseed2.binance.org/", "https://bsc.publicnode.com"},
		DataAPIChainID:  "bsc",
	}
	Gnosis = entity.NetworkDefinition{
		ChainID:         100,
		Name:            "Gnosis Chain",
		Identifier:      "gnosis",
		Source:          entity.PositionSourceAPI,
		PrimaryRPCURL:   "https://0xrpc.io/gno",
		FallbackRPCURLs: []string{"https://rpc.ankr.com/gnosis", "https://gnosis.publicnode.com"},
		DataAPIChainID:  "gnosis",
	}
)

// allKnownDefinitions is a helper to quickly access all hardcoded definitions.
var allKnownDefinitions = []entity.NetworkDefinition{
	Ethereum,
	Polygon,
	Arbitrum,
	Optimism,
	Avalanche,
	Base,
	BSC,
	Gnosis,
}

// NewNetworkDefinitionProvider creates a new NetworkDefinitionProvider.
// Configured networks override hardcoded ones with the same identifier; the
// resulting order is hardcoded definitions first, then new configured ones.
func NewNetworkDefinitionProvider(log port.Logger, configured []entity.NetworkDefinition) *NetworkDefinitionProvider {
	p := &NetworkDefinitionProvider{
		logger:      log,
		networkDefs: make(map[string]entity.NetworkDefinition, len(allKnownDefinitions)),
	}

	for _, def := range allKnownDefinitions {
		p.networkDefs[def.Identifier] = def
		p.orderedNetDefs = append(p.orderedNetDefs, def)
	}

	for _, def := range configured {
		id := strings.ToLower(def.Identifier)
		if id == "" {
			p.logger.Warn("Skipping configured network with empty identifier", "name", def.Name)
			continue
		}
		def.Identifier = id
		if _, exists := p.networkDefs[id]; exists {
			p.logger.Debug("Overriding hardcoded network definition from config", "identifier", id)
			for i := range p.orderedNetDefs {
				if p.orderedNetDefs[i].Identifier == id {
					p.orderedNetDefs[i] = def
					break
				}
			}
		} else {
			p.orderedNetDefs = append(p.orderedNetDefs, def)
		}
		p.networkDefs[id] = def
	}

	p.logger.Info("Network catalog initialized", "count", len(p.orderedNetDefs))
	return p
}

// GetAllNetworkDefinitions returns all available network definitions as a slice.
func (p *NetworkDefinitionProvider) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	defs := make([]entity.NetworkDefinition, len(p.orderedNetDefs))
	copy(defs, p.orderedNetDefs)
	return defs
}

// GetNetworkDefinitionByID returns a specific network definition by its identifier.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByID(identifier string) (entity.NetworkDefinition, bool) {
	def, ok := p.networkDefs[strings.ToLower(identifier)]
	return def, ok
}
