package auth

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/vortexartec/tola-ledger/pkg/app/errors"
	apphttp "github.com/vortexartec/tola-ledger/pkg/app/http"
)

// Context keys for authentication data
type contextKey string

const (
	// ContextKeyWallet is the context key for the authenticated wallet address
	ContextKeyWallet contextKey = "wallet"
	// ContextKeyNetwork is the context key for the wallet's network
	ContextKeyNetwork contextKey = "network"
)

// WithWallet adds the wallet address to the context
func WithWallet(ctx context.Context, wallet string) context.Context {
	return context.WithValue(ctx, ContextKeyWallet, wallet)
}

// WalletFromContext retrieves the wallet address from the context
func WalletFromContext(ctx context.Context) (string, bool) {
	wallet, ok := ctx.Value(ContextKeyWallet).(string)
	return wallet, ok
}

// WithNetwork adds the network to the context
func WithNetwork(ctx context.Context, network string) context.Context {
	return context.WithValue(ctx, ContextKeyNetwork, network)
}

// NetworkFromContext retrieves the network from the context
func NetworkFromContext(ctx context.Context) (string, bool) {
	network, ok := ctx.Value(ContextKeyNetwork).(string)
	return network, ok
}

// Middleware authenticates requests with a Bearer session token and places
// the wallet and network into the request context.
func Middleware(sessions *SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(nil, "missing bearer token"))
				return
			}

			claims, err := sessions.Validate(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(err, "invalid session token"))
				return
			}

			ctx := WithWallet(r.Context(), claims.Wallet)
			ctx = WithNetwork(ctx, claims.Network)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
