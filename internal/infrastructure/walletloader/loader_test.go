package walletloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWalletFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wallets.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadWallets(t *testing.T) {
	path := writeWalletFile(t, `# registry
main 0x742d35Cc6634C0532925a3b844Bc454e4438f44e
trading 0x8Ba1f109551bD432803012645Ac136ddd64DBA72 Ethereum,arbitrum

short-line
badaddr deadbeef
`)
	loader := NewWalletFileLoader(path, nil).(*WalletFileLoader)

	wallets, err := loader.LoadWallets()

	require.NoError(t, err)
	require.Len(t, wallets, 2)
	assert.Equal(t, "main", wallets[0].ID)
	assert.Empty(t, wallets[0].SupportedNetworks)
	assert.Equal(t, "trading", wallets[1].ID)
	assert.Equal(t, []string{"ethereum", "arbitrum"}, wallets[1].SupportedNetworks)
}

func TestResolve(t *testing.T) {
	path := writeWalletFile(t, "main 0x742d35Cc6634C0532925a3b844Bc454e4438f44e\n")
	resolver := NewWalletFileLoader(path, nil)

	t.Run("found case-insensitively", func(t *testing.T) {
		wallet, err := resolver.Resolve("MAIN")
		require.NoError(t, err)
		assert.Equal(t, "main", wallet.ID)
		assert.Equal(t, "0x742d35Cc6634C0532925a3b844Bc454e4438f44e", wallet.Address)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := resolver.Resolve("ghost")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ghost")
	})

	t.Run("missing file", func(t *testing.T) {
		missing := NewWalletFileLoader(filepath.Join(t.TempDir(), "nope.txt"), nil)
		_, err := missing.Resolve("main")
		assert.Error(t, err)
	})
}

func TestWalletSupportsAllNetworksWhenUnlisted(t *testing.T) {
	path := writeWalletFile(t, "main 0x742d35Cc6634C0532925a3b844Bc454e4438f44e\n")
	wallet, err := NewWalletFileLoader(path, nil).Resolve("main")
	require.NoError(t, err)

	assert.True(t, wallet.SupportsNetwork("ethereum"))
	assert.True(t, wallet.SupportsNetwork("anything"))
}
