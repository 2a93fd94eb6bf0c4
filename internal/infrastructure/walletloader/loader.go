package walletloader

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"position_aggregator/internal/app/port"
	"position_aggregator/internal/domain/entity"
)

// WalletFileLoader implements port.WalletResolver by loading the wallet
// registry from a file. Each non-comment line has the form
//
//	<walletId> <address> [network,network,...]
//
// An omitted network list means the wallet is permitted on every network.
type WalletFileLoader struct {
	filePath   string
	loggerInfo func(msg string, args ...any)
}

// NewWalletFileLoader creates a new WalletFileLoader.
func NewWalletFileLoader(filePath string, loggerInfo func(msg string, args ...any)) port.WalletResolver {
	return &WalletFileLoader{
		filePath:   filePath,
		loggerInfo: loggerInfo,
	}
}

// LoadWallets reads every wallet entry from the configured file path.
func (l *WalletFileLoader) LoadWallets() ([]entity.Wallet, error) {
	file, err := os.Open(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet file %s: %w", l.filePath, err)
	}
	defer file.Close()

	var wallets []entity.Wallet
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			if l.loggerInfo != nil {
				l.loggerInfo("Skipping malformed wallet entry", "file", l.filePath, "line_number", lineNum)
			}
			continue
		}

		id, address := fields[0], fields[1]
		if !(strings.HasPrefix(address, "0x") && len(address) == 42) {
			if l.loggerInfo != nil {
				l.loggerInfo("Skipping invalid wallet address format", "file", l.filePath, "line_number", lineNum, "address", address)
			}
			continue
		}

		var networks []string
		if len(fields) >= 3 {
			for _, n := range strings.Split(fields[2], ",") {
				n = strings.TrimSpace(n)
				if n != "" {
					networks = append(networks, strings.ToLower(n))
				}
			}
		}

		wallets = append(wallets, entity.Wallet{ID: id, Address: address, SupportedNetworks: networks})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning wallet file %s: %w", l.filePath, err)
	}

	if l.loggerInfo != nil {
		l.loggerInfo("Wallets loaded successfully from file", "count", len(wallets), "path", l.filePath)
	}
	return wallets, nil
}

// Resolve searches for a wallet by its id in the file. Failure here is the
// only fatal error path of an aggregation call.
func (l *WalletFileLoader) Resolve(walletID string) (*entity.Wallet, error) {
	wallets, err := l.LoadWallets()
	if err != nil {
		return nil, fmt.Errorf("failed to load wallets when resolving '%s': %w", walletID, err)
	}

	for _, wallet := range wallets {
		if strings.EqualFold(wallet.ID, walletID) {
			if l.loggerInfo != nil {
				l.loggerInfo("Wallet resolved", "wallet_id", walletID, "address", wallet.Address, "path", l.filePath)
			}
			return &wallet, nil
		}
	}

	if l.loggerInfo != nil {
		l.loggerInfo("Wallet not found by id", "wallet_id", walletID, "path", l.filePath)
	}
	return nil, fmt.Errorf("wallet with id %s not found in %s", walletID, l.filePath)
}
