package wallet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vortexartec/tola-ledger/internal/metrics"
	"github.com/vortexartec/tola-ledger/pkg/auth"
	"github.com/vortexartec/tola-ledger/pkg/tola"
)

// VerifyResult is returned after a successful ownership proof.
type VerifyResult struct {
	Wallet       string `json:"wallet"`
	Network      string `json:"network"`
	Verified     bool   `json:"verified"`
	SessionToken string `json:"session_token"`
}

// Service defines the wallet connector operations.
type Service interface {
	Providers(network string) ([]string, error)
	Challenge(ctx context.Context, wallet, network, provider string) (*Challenge, error)
	Verify(ctx context.Context, wallet, signature string) (*VerifyResult, error)
	Disconnect(ctx context.Context, wallet string) error
	Connection(ctx context.Context, wallet string) (*Connection, error)
}

type walletService struct {
	store        Store
	sessions     *auth.SessionManager
	challengeTTL time.Duration
	now          func() time.Time
	logger       *zap.Logger
}

// New creates the wallet connector service.
func New(store Store, sessions *auth.SessionManager, challengeTTL time.Duration, logger *zap.Logger) Service {
	return &walletService{
		store:        store,
		sessions:     sessions,
		challengeTTL: challengeTTL,
		now:          time.Now,
		logger:       logger,
	}
}

func (s *walletService) Providers(network string) ([]string, error) {
	providers := ProvidersFor(network)
	if providers == nil {
		return nil, tola.NewError(tola.KindInvalidInput, fmt.Sprintf("unsupported network %q", network))
	}
	return providers, nil
}

func (s *walletService) Challenge(ctx context.Context, wallet, network, provider string) (*Challenge, error) {
	if wallet == "" {
		return nil, tola.NewError(tola.KindInvalidInput, "wallet address is required")
	}
	if !ValidNetwork(network) {
		return nil, tola.NewError(tola.KindInvalidInput, fmt.Sprintf("unsupported network %q", network))
	}
	if !ValidProvider(network, provider) {
		return nil, tola.NewError(tola.KindInvalidInput, fmt.Sprintf("provider %q is not available on %s", provider, network))
	}
	if IsEVMNetwork(network) && !auth.ValidateEVMAddress(wallet) {
		return nil, tola.NewError(tola.KindInvalidInput, fmt.Sprintf("invalid wallet address %q", wallet))
	}

	nonce := uuid.NewString()
	challenge := &Challenge{
		Wallet:   wallet,
		Network:  network,
		Provider: provider,
		Nonce:    nonce,
		Message: fmt.Sprintf("Connect wallet %s to the VORTEX marketplace on %s\nnonce: %s",
			wallet, network, nonce),
		ExpiresAt: s.now().Add(s.challengeTTL),
	}

	if err := s.store.SaveChallenge(ctx, challenge); err != nil {
		return nil, tola.WrapError(tola.KindVerificationError, "failed to store challenge", err)
	}

	return challenge, nil
}

func (s *walletService) Verify(ctx context.Context, wallet, signature string) (*VerifyResult, error) {
	if wallet == "" || signature == "" {
		return nil, tola.NewError(tola.KindInvalidInput, "wallet and signature are required")
	}

	challenge, err := s.store.GetChallenge(ctx, wallet)
	if err != nil {
		return nil, tola.WrapError(tola.KindVerificationError, "no pending challenge for wallet", err)
	}
	if s.now().After(challenge.ExpiresAt) {
		_ = s.store.DeleteChallenge(ctx, wallet)
		return nil, tola.NewError(tola.KindVerificationError, "challenge expired, request a new one")
	}

	verified, err := s.checkSignature(challenge, signature)
	if err != nil {
		metrics.WalletVerifications.WithLabelValues(challenge.Network, "error").Inc()
		return nil, tola.WrapError(tola.KindVerificationError, "signature verification failed", err)
	}
	if !verified {
		metrics.WalletVerifications.WithLabelValues(challenge.Network, "rejected").Inc()
		return nil, tola.NewError(tola.KindVerificationError, "signature does not match wallet")
	}

	if err := s.store.DeleteChallenge(ctx, wallet); err != nil {
		s.logger.Warn("Failed to delete used challenge", zap.String("wallet", wallet), zap.Error(err))
	}

	if err := s.store.UpsertConnection(ctx, &Connection{
		Wallet:   wallet,
		Network:  challenge.Network,
		Provider: challenge.Provider,
		Verified: true,
	}); err != nil {
		return nil, tola.WrapError(tola.KindVerificationError, "failed to persist wallet connection", err)
	}

	token, err := s.sessions.Issue(wallet, challenge.Network)
	if err != nil {
		return nil, tola.WrapError(tola.KindVerificationError, "failed to issue session token", err)
	}

	metrics.WalletVerifications.WithLabelValues(challenge.Network, "success").Inc()
	s.logger.Info("Wallet verified",
		zap.String("wallet", wallet),
		zap.String("network", challenge.Network),
		zap.String("provider", challenge.Provider))

	return &VerifyResult{
		Wallet:       wallet,
		Network:      challenge.Network,
		Verified:     true,
		SessionToken: token,
	}, nil
}

func (s *walletService) checkSignature(challenge *Challenge, signature string) (bool, error) {
	if IsEVMNetwork(challenge.Network) {
		recovered, err := auth.VerifyEIP191Signature(challenge.Message, signature)
		if err != nil {
			return false, err
		}
		return strings.EqualFold(recovered.Hex(), challenge.Wallet), nil
	}
	// Solana wallets sign with the ed25519 key whose public key is the
	// wallet identifier.
	return auth.VerifyEd25519Signature(challenge.Message, signature, challenge.Wallet)
}

func (s *walletService) Disconnect(ctx context.Context, wallet string) error {
	if wallet == "" {
		return tola.NewError(tola.KindInvalidInput, "wallet address is required")
	}
	if err := s.store.DeleteConnection(ctx, wallet); err != nil {
		return tola.WrapError(tola.KindVerificationError, "failed to disconnect wallet", err)
	}
	s.logger.Info("Wallet disconnected", zap.String("wallet", wallet))
	return nil
}

func (s *walletService) Connection(ctx context.Context, wallet string) (*Connection, error) {
	if wallet == "" {
		return nil, tola.NewError(tola.KindInvalidInput, "wallet address is required")
	}
	return s.store.GetConnection(ctx, wallet)
}
