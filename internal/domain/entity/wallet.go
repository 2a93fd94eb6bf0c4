package entity

import "strings"

// Wallet is a resolved wallet identity: the registry id, its on-chain
// address, and the set of networks the custody layer allows it on.
type Wallet struct {
	ID                string   `json:"id"`
	Address           string   `json:"address"`
	SupportedNetworks []string `json:"supportedNetworks"`
}

// SupportsNetwork reports whether the wallet may be queried on the given
// network. A wallet with no explicit network list supports every network.
func (w Wallet) SupportsNetwork(networkID string) bool {
	if len(w.SupportedNetworks) == 0 {
		return true
	}
	for _, id := range w.SupportedNetworks {
		if strings.EqualFold(id, networkID) {
			return true
		}
	}
	return false
}
