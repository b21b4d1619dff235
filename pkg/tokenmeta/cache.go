// Package tokenmeta caches slow-changing token metadata (name, symbol,
// decimals) so balance formatting does not hit the chain on every request.
package tokenmeta

import (
	"context"
	"fmt"
	"time"
)

// Info is the cached token metadata.
type Info struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// Cache stores token metadata keyed by token address and network.
// Get returns (nil, nil) on a miss.
type Cache interface {
	Get(ctx context.Context, tokenAddress, network string) (*Info, error)
	Set(ctx context.Context, tokenAddress, network string, info *Info) error
}

// DefaultTTL is used when the configured TTL is zero.
const DefaultTTL = 24 * time.Hour

func cacheKey(tokenAddress, network string) string {
	return fmt.Sprintf("tokenmeta:%s:%s", network, tokenAddress)
}
