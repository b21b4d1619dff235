// Package service implements the TOLA token handler: balance reads,
// transfers, approvals and the marketplace contract operations, each
// validated up front, delegated to the chain collaborator and recorded
// in the transaction ledger.
package service

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vortexartec/tola-ledger/internal/metrics"
	"github.com/vortexartec/tola-ledger/pkg/chain"
	"github.com/vortexartec/tola-ledger/pkg/config"
	"github.com/vortexartec/tola-ledger/pkg/ledger"
	"github.com/vortexartec/tola-ledger/pkg/tokenmeta"
	"github.com/vortexartec/tola-ledger/pkg/tola"
)

const (
	defaultTokenName   = "TOLA"
	defaultTokenSymbol = "TOLA"
)

// TransferOptions carries optional ledger metadata for a transfer.
type TransferOptions struct {
	Note              string
	RelatedEntityID   int64
	RelatedEntityType string
}

// TransferResult is returned from a successful transfer or approval.
type TransferResult struct {
	TxHash string `json:"tx_hash"`
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
	Status string `json:"status"`
}

// Balance is a formatted token balance.
type Balance struct {
	Wallet       string `json:"wallet"`
	Balance      string `json:"balance"`
	TokenAddress string `json:"token_address"`
	Network      string `json:"network"`
}

// Service defines the token handler operations.
type Service interface {
	GetBalance(ctx context.Context, wallet string) (*Balance, error)
	Transfer(ctx context.Context, from, to, amount string, opts *TransferOptions) (*TransferResult, error)
	Approve(ctx context.Context, wallet, amount string) (*TransferResult, error)
	HasSufficientBalance(ctx context.Context, wallet, required string) (bool, error)
	ListArtwork(ctx context.Context, artworkID int64, artistWallet, price string) (string, error)
	PurchaseArtwork(ctx context.Context, artworkID int64, buyerWallet, price string) (*TransferResult, error)
	VerifyArtist(ctx context.Context, artistID int64, artistWallet, actorWallet string) (string, error)
	TokenInfo(ctx context.Context) (*tokenmeta.Info, error)
}

type tokenService struct {
	cfg          *config.MarketplaceConfig
	chain        chain.Client
	store        ledger.Store
	cache        tokenmeta.Cache
	adminWallets map[string]struct{}
	logger       *zap.Logger
}

// New creates the token handler service.
func New(
	cfg *config.MarketplaceConfig,
	chainClient chain.Client,
	store ledger.Store,
	cache tokenmeta.Cache,
	adminWallets []string,
	logger *zap.Logger,
) Service {
	admins := make(map[string]struct{}, len(adminWallets))
	for _, wallet := range adminWallets {
		admins[strings.ToLower(wallet)] = struct{}{}
	}

	return &tokenService{
		cfg:          cfg,
		chain:        chainClient,
		store:        store,
		cache:        cache,
		adminWallets: admins,
		logger:       logger,
	}
}

func (s *tokenService) GetBalance(ctx context.Context, wallet string) (*Balance, error) {
	if wallet == "" {
		return nil, tola.NewError(tola.KindInvalidInput, "wallet address is required")
	}
	if !common.IsHexAddress(wallet) {
		return nil, tola.NewError(tola.KindInvalidInput, fmt.Sprintf("invalid wallet address %q", wallet))
	}
	if s.cfg.TokenContract == "" {
		return nil, tola.NewError(tola.KindMarketplaceNotConfigured, "token contract address is not configured")
	}

	raw, err := s.chain.CallContract(ctx, chain.Call{
		Contract: s.cfg.TokenContract,
		Method:   chain.MethodBalanceOf,
		Params:   []any{common.HexToAddress(wallet)},
		From:     wallet,
	})
	if err != nil {
		metrics.TokenOperationsTotal.WithLabelValues("balance", "error").Inc()
		return nil, tola.WrapError(tola.KindBalanceError, "failed to read balance", err)
	}

	balanceRaw, err := chain.UnpackBigInt(chain.MethodBalanceOf, raw)
	if err != nil {
		return nil, tola.WrapError(tola.KindBalanceError, "failed to decode balance", err)
	}

	info := s.metadata(ctx)
	formatted, err := tola.FromBaseUnits(balanceRaw, info.Decimals)
	if err != nil {
		return nil, tola.WrapError(tola.KindBalanceError, "failed to format balance", err)
	}

	metrics.TokenOperationsTotal.WithLabelValues("balance", "success").Inc()
	return &Balance{
		Wallet:       wallet,
		Balance:      formatted,
		TokenAddress: s.cfg.TokenContract,
		Network:      s.cfg.Network,
	}, nil
}

func (s *tokenService) Transfer(ctx context.Context, from, to, amount string, opts *TransferOptions) (*TransferResult, error) {
	if err := s.validateTransfer(from, to, amount); err != nil {
		return nil, err
	}
	if s.cfg.TokenContract == "" {
		return nil, tola.NewError(tola.KindMarketplaceNotConfigured, "token contract address is not configured")
	}

	info := s.metadata(ctx)
	baseUnits, err := tola.ToBaseUnits(amount, info.Decimals)
	if err != nil {
		return nil, tola.WrapError(tola.KindInvalidInput, fmt.Sprintf("invalid amount %q", amount), err)
	}

	txHash, sendErr := s.chain.SendTransaction(ctx, chain.Call{
		Contract: s.cfg.TokenContract,
		Method:   chain.MethodTransfer,
		Params:   []any{common.HexToAddress(to), baseUnits},
		From:     from,
	})

	row := &tola.Transaction{
		TxHash:       txHash,
		FromWallet:   from,
		ToWallet:     to,
		Amount:       amount,
		TokenAddress: s.cfg.TokenContract,
		Network:      s.cfg.Network,
	}
	if opts != nil {
		row.Note = opts.Note
		row.RelatedEntityID = opts.RelatedEntityID
		row.RelatedEntityType = opts.RelatedEntityType
	}

	if sendErr != nil {
		row.TxHash = failedAttemptHash()
		row.Status = tola.StatusFailed
		if row.Note == "" {
			row.Note = sendErr.Error()
		}
		s.logAttempt(ctx, row)

		metrics.TokenOperationsTotal.WithLabelValues("transfer", "error").Inc()
		return nil, tola.WrapError(tola.KindTransferError, "token transfer failed", sendErr)
	}

	row.Status = tola.StatusPending
	s.logAttempt(ctx, row)

	metrics.TokenOperationsTotal.WithLabelValues("transfer", "success").Inc()
	s.logger.Info("Transfer submitted",
		zap.String("from", from),
		zap.String("to", to),
		zap.String("amount", amount),
		zap.String("tx_hash", txHash))

	return &TransferResult{
		TxHash: txHash,
		From:   from,
		To:     to,
		Amount: amount,
		Status: string(tola.StatusPending),
	}, nil
}

func (s *tokenService) Approve(ctx context.Context, wallet, amount string) (*TransferResult, error) {
	if wallet == "" || !common.IsHexAddress(wallet) {
		return nil, tola.NewError(tola.KindInvalidInput, "valid wallet address is required")
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if s.cfg.TokenContract == "" || s.cfg.MarketplaceWallet == "" {
		return nil, tola.NewError(tola.KindMarketplaceNotConfigured, "token contract or marketplace wallet is not configured")
	}

	info := s.metadata(ctx)
	baseUnits, err := tola.ToBaseUnits(amount, info.Decimals)
	if err != nil {
		return nil, tola.WrapError(tola.KindInvalidInput, fmt.Sprintf("invalid amount %q", amount), err)
	}

	txHash, err := s.chain.SendTransaction(ctx, chain.Call{
		Contract: s.cfg.TokenContract,
		Method:   chain.MethodApprove,
		Params:   []any{common.HexToAddress(s.cfg.MarketplaceWallet), baseUnits},
		From:     wallet,
	})
	if err != nil {
		metrics.TokenOperationsTotal.WithLabelValues("approve", "error").Inc()
		return nil, tola.WrapError(tola.KindApprovalError, "token approval failed", err)
	}

	s.logAttempt(ctx, &tola.Transaction{
		TxHash:       txHash,
		FromWallet:   wallet,
		ToWallet:     s.cfg.MarketplaceWallet,
		Amount:       amount,
		TokenAddress: s.cfg.TokenContract,
		Network:      s.cfg.Network,
		Status:       tola.StatusPending,
		Note:         "marketplace spending approval",
	})

	metrics.TokenOperationsTotal.WithLabelValues("approve", "success").Inc()
	return &TransferResult{
		TxHash: txHash,
		From:   wallet,
		To:     s.cfg.MarketplaceWallet,
		Amount: amount,
		Status: string(tola.StatusPending),
	}, nil
}

// HasSufficientBalance reports whether the wallet holds at least the required
// amount. Balance read errors are propagated unchanged.
func (s *tokenService) HasSufficientBalance(ctx context.Context, wallet, required string) (bool, error) {
	balance, err := s.GetBalance(ctx, wallet)
	if err != nil {
		return false, err
	}

	cmp, err := tola.CompareAmounts(balance.Balance, required)
	if err != nil {
		return false, tola.WrapError(tola.KindInvalidInput, fmt.Sprintf("invalid required amount %q", required), err)
	}
	return cmp >= 0, nil
}

func (s *tokenService) ListArtwork(ctx context.Context, artworkID int64, artistWallet, price string) (string, error) {
	if artworkID <= 0 {
		return "", tola.NewError(tola.KindInvalidInput, "artwork id is required")
	}
	if artistWallet == "" || !common.IsHexAddress(artistWallet) {
		return "", tola.NewError(tola.KindInvalidInput, "valid artist wallet is required")
	}
	if err := validateAmount(price); err != nil {
		return "", err
	}
	if s.cfg.MarketplaceContract == "" {
		return "", tola.NewError(tola.KindMarketplaceNotConfigured, "marketplace contract address is not configured")
	}

	info := s.metadata(ctx)
	priceBase, err := tola.ToBaseUnits(price, info.Decimals)
	if err != nil {
		return "", tola.WrapError(tola.KindInvalidInput, fmt.Sprintf("invalid price %q", price), err)
	}

	txHash, err := s.chain.SendTransaction(ctx, chain.Call{
		Contract: s.cfg.MarketplaceContract,
		Method:   chain.MethodSetArtworkForSale,
		Params:   []any{big.NewInt(artworkID), common.HexToAddress(artistWallet), priceBase},
		From:     artistWallet,
	})
	if err != nil {
		metrics.TokenOperationsTotal.WithLabelValues("list_artwork", "error").Inc()
		return "", tola.WrapError(tola.KindListingError, "failed to list artwork for sale", err)
	}

	metrics.TokenOperationsTotal.WithLabelValues("list_artwork", "success").Inc()
	s.logger.Info("Artwork listed for sale",
		zap.Int64("artwork_id", artworkID),
		zap.String("artist", artistWallet),
		zap.String("price", price),
		zap.String("tx_hash", txHash))

	return txHash, nil
}

func (s *tokenService) PurchaseArtwork(ctx context.Context, artworkID int64, buyerWallet, price string) (*TransferResult, error) {
	if artworkID <= 0 {
		return nil, tola.NewError(tola.KindInvalidInput, "artwork id is required")
	}
	if buyerWallet == "" || !common.IsHexAddress(buyerWallet) {
		return nil, tola.NewError(tola.KindInvalidInput, "valid buyer wallet is required")
	}
	if err := validateAmount(price); err != nil {
		return nil, err
	}
	if s.cfg.MarketplaceContract == "" || s.cfg.MarketplaceWallet == "" {
		return nil, tola.NewError(tola.KindMarketplaceNotConfigured, "marketplace contract or wallet is not configured")
	}

	txHash, err := s.chain.SendTransaction(ctx, chain.Call{
		Contract: s.cfg.MarketplaceContract,
		Method:   chain.MethodPurchaseArtwork,
		Params:   []any{big.NewInt(artworkID)},
		From:     buyerWallet,
	})
	if err != nil {
		metrics.TokenOperationsTotal.WithLabelValues("purchase", "error").Inc()
		return nil, tola.WrapError(tola.KindPurchaseError, "artwork purchase failed", err)
	}

	s.logAttempt(ctx, &tola.Transaction{
		TxHash:            txHash,
		FromWallet:        buyerWallet,
		ToWallet:          s.cfg.MarketplaceWallet,
		Amount:            price,
		TokenAddress:      s.cfg.TokenContract,
		Network:           s.cfg.Network,
		Status:            tola.StatusPending,
		RelatedEntityID:   artworkID,
		RelatedEntityType: tola.EntityArtwork,
	})

	metrics.TokenOperationsTotal.WithLabelValues("purchase", "success").Inc()
	return &TransferResult{
		TxHash: txHash,
		From:   buyerWallet,
		To:     s.cfg.MarketplaceWallet,
		Amount: price,
		Status: string(tola.StatusPending),
	}, nil
}

func (s *tokenService) VerifyArtist(ctx context.Context, artistID int64, artistWallet, actorWallet string) (string, error) {
	if _, ok := s.adminWallets[strings.ToLower(actorWallet)]; !ok {
		return "", tola.NewError(tola.KindPermissionDenied, "only admin wallets may verify artists")
	}
	if artistID <= 0 {
		return "", tola.NewError(tola.KindInvalidInput, "artist id is required")
	}
	if artistWallet == "" || !common.IsHexAddress(artistWallet) {
		return "", tola.NewError(tola.KindInvalidInput, "valid artist wallet is required")
	}
	if s.cfg.MarketplaceContract == "" {
		return "", tola.NewError(tola.KindMarketplaceNotConfigured, "marketplace contract address is not configured")
	}

	txHash, err := s.chain.SendTransaction(ctx, chain.Call{
		Contract: s.cfg.MarketplaceContract,
		Method:   chain.MethodVerifyArtist,
		Params:   []any{common.HexToAddress(artistWallet)},
	})
	if err != nil {
		metrics.TokenOperationsTotal.WithLabelValues("verify_artist", "error").Inc()
		return "", tola.WrapError(tola.KindVerificationError, "artist verification failed", err)
	}

	metrics.TokenOperationsTotal.WithLabelValues("verify_artist", "success").Inc()
	s.logger.Info("Artist verified",
		zap.Int64("artist_id", artistID),
		zap.String("artist", artistWallet),
		zap.String("actor", actorWallet),
		zap.String("tx_hash", txHash))

	return txHash, nil
}

func (s *tokenService) TokenInfo(ctx context.Context) (*tokenmeta.Info, error) {
	info := s.metadata(ctx)
	return info, nil
}

// metadata returns token name/symbol/decimals, reading the chain at most once
// per cache window. Chain failures fall back to defaults without caching so
// the next call retries.
func (s *tokenService) metadata(ctx context.Context) *tokenmeta.Info {
	cached, err := s.cache.Get(ctx, s.cfg.TokenContract, s.cfg.Network)
	if err != nil {
		s.logger.Warn("Token metadata cache read failed", zap.Error(err))
	}
	if cached != nil {
		metrics.MetadataCacheHits.WithLabelValues("hit").Inc()
		return cached
	}
	metrics.MetadataCacheHits.WithLabelValues("miss").Inc()

	info := &tokenmeta.Info{
		Name:     defaultTokenName,
		Symbol:   defaultTokenSymbol,
		Decimals: tola.DefaultDecimals,
	}

	raw, err := s.chain.CallContract(ctx, chain.Call{Contract: s.cfg.TokenContract, Method: chain.MethodDecimals})
	if err != nil {
		s.logger.Warn("Failed to read token decimals, using default",
			zap.Int("default", tola.DefaultDecimals),
			zap.Error(err))
		return info
	}
	decimals, err := chain.UnpackUint8(chain.MethodDecimals, raw)
	if err != nil {
		s.logger.Warn("Failed to decode token decimals, using default", zap.Error(err))
		return info
	}
	info.Decimals = int(decimals)

	if raw, err = s.chain.CallContract(ctx, chain.Call{Contract: s.cfg.TokenContract, Method: chain.MethodName}); err == nil {
		if name, err := chain.UnpackString(chain.MethodName, raw); err == nil {
			info.Name = name
		}
	}
	if raw, err = s.chain.CallContract(ctx, chain.Call{Contract: s.cfg.TokenContract, Method: chain.MethodSymbol}); err == nil {
		if symbol, err := chain.UnpackString(chain.MethodSymbol, raw); err == nil {
			info.Symbol = symbol
		}
	}

	if err := s.cache.Set(ctx, s.cfg.TokenContract, s.cfg.Network, info); err != nil {
		s.logger.Warn("Token metadata cache write failed", zap.Error(err))
	}

	return info
}

// logAttempt records one attempted on-chain operation. A ledger write failure
// does not fail the operation: the chain call already happened.
func (s *tokenService) logAttempt(ctx context.Context, row *tola.Transaction) {
	if err := s.store.Log(ctx, row); err != nil {
		metrics.ErrorsTotal.WithLabelValues("token_service", "ledger_write").Inc()
		s.logger.Error("Failed to log transaction",
			zap.String("tx_hash", row.TxHash),
			zap.Error(err))
		return
	}
	metrics.TransactionsLogged.WithLabelValues(string(row.Status)).Inc()
}

func (s *tokenService) validateTransfer(from, to, amount string) error {
	if from == "" {
		return tola.NewError(tola.KindInvalidInput, "sender wallet is required")
	}
	if to == "" {
		return tola.NewError(tola.KindInvalidInput, "recipient wallet is required")
	}
	if !common.IsHexAddress(from) {
		return tola.NewError(tola.KindInvalidInput, fmt.Sprintf("invalid sender wallet %q", from))
	}
	if !common.IsHexAddress(to) {
		return tola.NewError(tola.KindInvalidInput, fmt.Sprintf("invalid recipient wallet %q", to))
	}
	return validateAmount(amount)
}

func validateAmount(amount string) error {
	if amount == "" {
		return tola.NewError(tola.KindInvalidInput, "amount is required")
	}
	cmp, err := tola.CompareAmounts(amount, "0")
	if err != nil {
		return tola.WrapError(tola.KindInvalidInput, fmt.Sprintf("invalid amount %q", amount), err)
	}
	if cmp <= 0 {
		return tola.NewError(tola.KindInvalidInput, "amount must be greater than zero")
	}
	return nil
}

// failedAttemptHash builds a placeholder hash for attempts that never reached
// the chain, keeping the row unique without a real transaction hash.
func failedAttemptHash() string {
	return "failed:" + uuid.NewString()
}
