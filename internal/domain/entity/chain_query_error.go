package entity

// ChainQueryError records a recoverable failure while fetching or
// normalizing one network's positions. The network is excluded from the
// result and the aggregation continues.
type ChainQueryError struct {
	WalletID  string `json:"walletId"`
	Address   string `json:"address"`
	NetworkID string `json:"networkId"`
	Message   string `json:"message"`
}
