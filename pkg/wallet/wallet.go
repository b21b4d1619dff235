// Package wallet implements the wallet connector: provider discovery per
// network and the challenge/verify flow that proves wallet ownership.
package wallet

import (
	"time"
)

// Supported networks.
const (
	NetworkEthereum = "ethereum"
	NetworkPolygon  = "polygon"
	NetworkSolana   = "solana"
)

// Supported wallet providers.
const (
	ProviderMetaMask      = "metamask"
	ProviderWalletConnect = "walletconnect"
	ProviderPhantom       = "phantom"
	ProviderSolflare      = "solflare"
)

// ProvidersFor returns the wallet providers available on a network.
// Unknown networks return nil.
func ProvidersFor(network string) []string {
	switch network {
	case NetworkEthereum, NetworkPolygon:
		return []string{ProviderMetaMask, ProviderWalletConnect}
	case NetworkSolana:
		return []string{ProviderPhantom, ProviderSolflare}
	default:
		return nil
	}
}

// IsEVMNetwork reports whether the network uses EVM addresses and
// EIP-191 signatures.
func IsEVMNetwork(network string) bool {
	return network == NetworkEthereum || network == NetworkPolygon
}

// ValidNetwork reports whether the network is supported.
func ValidNetwork(network string) bool {
	return ProvidersFor(network) != nil
}

// ValidProvider reports whether the provider is available on the network.
func ValidProvider(network, provider string) bool {
	for _, p := range ProvidersFor(network) {
		if p == provider {
			return true
		}
	}
	return false
}

// Connection is a verified wallet connection.
type Connection struct {
	Wallet      string    `json:"wallet"`
	Network     string    `json:"network"`
	Provider    string    `json:"provider"`
	Verified    bool      `json:"verified"`
	ConnectedAt time.Time `json:"connected_at"`
}

// Challenge is a pending ownership proof: the wallet must sign Message
// before ExpiresAt.
type Challenge struct {
	Wallet    string    `json:"wallet"`
	Network   string    `json:"network"`
	Provider  string    `json:"provider"`
	Nonce     string    `json:"nonce"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}
