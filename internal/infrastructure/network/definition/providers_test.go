package networkdefinition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"position_aggregator/internal/domain/entity"
	"position_aggregator/internal/pkg/logger"
)

func TestProviderExposesBuiltinCatalog(t *testing.T) {
	p := NewNetworkDefinitionProvider(logger.NewSlogAdapter(), nil)

	defs := p.GetAllNetworkDefinitions()
	assert.NotEmpty(t, defs)

	eth, ok := p.GetNetworkDefinitionByID("ethereum")
	require.True(t, ok)
	assert.Equal(t, uint64(1), eth.ChainID)
	assert.Equal(t, entity.PositionSourceOnChain, eth.Source)
	assert.NotEmpty(t, eth.PoolDataProvider)
	assert.NotEmpty(t, eth.PriceOracle)

	_, ok = p.GetNetworkDefinitionByID("dogechain")
	assert.False(t, ok)
}

func TestProviderLookupIsCaseInsensitive(t *testing.T) {
	p := NewNetworkDefinitionProvider(logger.NewSlogAdapter(), nil)

	a, ok := p.GetNetworkDefinitionByID("Ethereum")
	require.True(t, ok)
	b, ok := p.GetNetworkDefinitionByID("ETHEREUM")
	require.True(t, ok)
	assert.Equal(t, a, b)
}

func TestProviderConfigOverridesAndExtends(t *testing.T) {
	configured := []entity.NetworkDefinition{
		{
			Identifier:    "ethereum",
			Name:          "Ethereum Mainnet",
			ChainID:       1,
			Source:        entity.PositionSourceOnChain,
			PrimaryRPCURL: "https://rpc.internal.example.com/eth",
		},
		{
			Identifier:     "fantom",
			Name:           "Fantom Opera",
			ChainID:        250,
			Source:         entity.PositionSourceAPI,
			DataAPIChainID: "fantom",
		},
	}
	p := NewNetworkDefinitionProvider(logger.NewSlogAdapter(), configured)

	eth, ok := p.GetNetworkDefinitionByID("ethereum")
	require.True(t, ok)
	assert.Equal(t, "https://rpc.internal.example.com/eth", eth.PrimaryRPCURL)

	ftm, ok := p.GetNetworkDefinitionByID("fantom")
	require.True(t, ok)
	assert.Equal(t, uint64(250), ftm.ChainID)

	// Hardcoded definitions keep their position; configured additions come last.
	defs := p.GetAllNetworkDefinitions()
	assert.Equal(t, "ethereum", defs[0].Identifier)
	assert.Equal(t, "fantom", defs[len(defs)-1].Identifier)
}

func TestGetAllNetworkDefinitionsReturnsCopy(t *testing.T) {
	p := NewNetworkDefinitionProvider(logger.NewSlogAdapter(), nil)

	defs := p.GetAllNetworkDefinitions()
	original := defs[0].Identifier
	defs[0].Identifier = "mutated"

	fresh := p.GetAllNetworkDefinitions()
	assert.Equal(t, original, fresh[0].Identifier)
}
