package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vortexartec/tola-ledger/pkg/tokenmeta"
)

const serviceName = "TokenService"

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the token Service.
// It logs method entry/exit, duration and errors.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

func (ls *logService) finish(method string, start time.Time, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("service", serviceName),
		zap.String("method", method),
		zap.Duration("duration", time.Since(start)),
	)
	if err != nil {
		ls.logger.Error(method+" failed", append(fields, zap.Error(err))...)
		return
	}
	ls.logger.Info(method+" completed", fields...)
}

func (ls *logService) GetBalance(ctx context.Context, wallet string) (resp *Balance, err error) {
	start := time.Now()
	defer func() { ls.finish("GetBalance", start, err, zap.String("wallet", wallet)) }()
	return ls.svc.GetBalance(ctx, wallet)
}

func (ls *logService) Transfer(ctx context.Context, from, to, amount string, opts *TransferOptions) (resp *TransferResult, err error) {
	start := time.Now()
	defer func() {
		fields := []zap.Field{
			zap.String("from", from),
			zap.String("to", to),
			zap.String("amount", amount),
		}
		if resp != nil {
			fields = append(fields, zap.String("tx_hash", resp.TxHash))
		}
		ls.finish("Transfer", start, err, fields...)
	}()
	return ls.svc.Transfer(ctx, from, to, amount, opts)
}

func (ls *logService) Approve(ctx context.Context, wallet, amount string) (resp *TransferResult, err error) {
	start := time.Now()
	defer func() {
		fields := []zap.Field{zap.String("wallet", wallet), zap.String("amount", amount)}
		if resp != nil {
			fields = append(fields, zap.String("tx_hash", resp.TxHash))
		}
		ls.finish("Approve", start, err, fields...)
	}()
	return ls.svc.Approve(ctx, wallet, amount)
}

func (ls *logService) HasSufficientBalance(ctx context.Context, wallet, required string) (ok bool, err error) {
	start := time.Now()
	defer func() {
		ls.finish("HasSufficientBalance", start, err,
			zap.String("wallet", wallet),
			zap.String("required", required),
			zap.Bool("sufficient", ok))
	}()
	return ls.svc.HasSufficientBalance(ctx, wallet, required)
}

func (ls *logService) ListArtwork(ctx context.Context, artworkID int64, artistWallet, price string) (txHash string, err error) {
	start := time.Now()
	defer func() {
		ls.finish("ListArtwork", start, err,
			zap.Int64("artwork_id", artworkID),
			zap.String("artist", artistWallet),
			zap.String("price", price),
			zap.String("tx_hash", txHash))
	}()
	return ls.svc.ListArtwork(ctx, artworkID, artistWallet, price)
}

func (ls *logService) PurchaseArtwork(ctx context.Context, artworkID int64, buyerWallet, price string) (resp *TransferResult, err error) {
	start := time.Now()
	defer func() {
		fields := []zap.Field{
			zap.Int64("artwork_id", artworkID),
			zap.String("buyer", buyerWallet),
			zap.String("price", price),
		}
		if resp != nil {
			fields = append(fields, zap.String("tx_hash", resp.TxHash))
		}
		ls.finish("PurchaseArtwork", start, err, fields...)
	}()
	return ls.svc.PurchaseArtwork(ctx, artworkID, buyerWallet, price)
}

func (ls *logService) VerifyArtist(ctx context.Context, artistID int64, artistWallet, actorWallet string) (txHash string, err error) {
	start := time.Now()
	defer func() {
		ls.finish("VerifyArtist", start, err,
			zap.Int64("artist_id", artistID),
			zap.String("artist", artistWallet),
			zap.String("actor", actorWallet),
			zap.String("tx_hash", txHash))
	}()
	return ls.svc.VerifyArtist(ctx, artistID, artistWallet, actorWallet)
}

func (ls *logService) TokenInfo(ctx context.Context) (info *tokenmeta.Info, err error) {
	start := time.Now()
	defer func() { ls.finish("TokenInfo", start, err) }()
	return ls.svc.TokenInfo(ctx)
}
