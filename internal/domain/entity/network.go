package entity

// PositionSourceKind selects which collaborator fetches raw positions for a
// network.
type PositionSourceKind string

const (
	// PositionSourceAPI fetches positions from the lending data HTTP API.
	PositionSourceAPI PositionSourceKind = "api"
	// PositionSourceOnChain reads positions straight from the lending
	// protocol's data-provider contract over RPC.
	PositionSourceOnChain PositionSourceKind = "onchain"
)

// NetworkDefinition holds the configuration for a specific blockchain network.
// This structure is defined at the domain level to be used across application
// and infrastructure layers.
type NetworkDefinition struct {
	ChainID          uint64             `json:"chainId" yaml:"chainId"`
	Name             string             `json:"name" yaml:"name"`
	Identifier       string             `json:"identifier" yaml:"identifier"`
	Source           PositionSourceKind `json:"source" yaml:"source"`
	PrimaryRPCURL    string             `json:"primaryRpcUrl" yaml:"primaryRpcUrl"`
	FallbackRPCURLs  []string           `json:"fallbackRpcUrls" yaml:"fallbackRpcUrls"`
	DataAPIChainID   string             `json:"dataApiChainId" yaml:"dataApiChainId"`
	PoolDataProvider string             `json:"poolDataProvider,omitempty" yaml:"poolDataProvider,omitempty"`
	PriceOracle      string             `json:"priceOracle,omitempty" yaml:"priceOracle,omitempty"`
}
