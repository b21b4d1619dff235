// Package confirmer resolves pending ledger rows by polling the chain for
// transaction receipts and applying the confirmed or failed outcome.
package confirmer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vortexartec/tola-ledger/internal/metrics"
	"github.com/vortexartec/tola-ledger/pkg/chain"
	"github.com/vortexartec/tola-ledger/pkg/config"
	"github.com/vortexartec/tola-ledger/pkg/ledger"
	"github.com/vortexartec/tola-ledger/pkg/tola"
)

// failedAttemptPrefix marks ledger rows logged for transfers that never
// reached the chain. They carry a placeholder hash and stay failed.
const failedAttemptPrefix = "failed:"

// Confirmer polls pending ledger transactions and flips them to their
// terminal status once the chain has a receipt.
type Confirmer struct {
	store  ledger.Store
	chain  chain.Client
	cfg    *config.ConfirmerConfig
	logger *zap.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a confirmer.
func New(store ledger.Store, chainClient chain.Client, cfg *config.ConfirmerConfig, logger *zap.Logger) *Confirmer {
	return &Confirmer{
		store:  store,
		chain:  chainClient,
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Poll runs one confirmation pass over pending transactions.
func (c *Confirmer) Poll(ctx context.Context) error {
	pending, err := c.store.ListPending(ctx, c.cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to list pending transactions: %w", err)
	}
	metrics.PendingTransactions.Set(float64(len(pending)))
	if len(pending) == 0 {
		return nil
	}

	var confirmed, failed int
	for _, tx := range pending {
		status, resolveErr := c.resolve(ctx, tx)
		if resolveErr != nil {
			c.logger.Warn("Failed to resolve transaction status",
				zap.String("tx_hash", tx.TxHash),
				zap.Error(resolveErr))
			metrics.ErrorsTotal.WithLabelValues("confirmer", "resolve").Inc()
			continue
		}
		if status == tola.StatusPending {
			continue
		}

		if err := c.store.UpdateStatus(ctx, tx.TxHash, status); err != nil {
			c.logger.Error("Failed to update transaction status",
				zap.String("tx_hash", tx.TxHash),
				zap.String("status", string(status)),
				zap.Error(err))
			metrics.ErrorsTotal.WithLabelValues("confirmer", "update").Inc()
			continue
		}
		metrics.StatusTransitions.WithLabelValues(string(status)).Inc()

		switch status {
		case tola.StatusConfirmed:
			confirmed++
		case tola.StatusFailed:
			failed++
		}
	}

	if confirmed > 0 || failed > 0 {
		c.logger.Info("Confirmation pass completed",
			zap.Int("pending", len(pending)),
			zap.Int("confirmed", confirmed),
			zap.Int("failed", failed))
	}
	return nil
}

func (c *Confirmer) resolve(ctx context.Context, tx *tola.Transaction) (tola.Status, error) {
	// Rows logged for failed submission attempts never had a real hash;
	// they go straight to failed.
	if strings.HasPrefix(tx.TxHash, failedAttemptPrefix) {
		return tola.StatusFailed, nil
	}

	state, err := c.chain.TxStatus(ctx, tx.TxHash)
	if err != nil {
		return tola.StatusPending, err
	}

	switch state {
	case chain.TxSuccess:
		return tola.StatusConfirmed, nil
	case chain.TxFailed:
		return tola.StatusFailed, nil
	default:
		return tola.StatusPending, nil
	}
}

// Start begins the background polling loop.
func (c *Confirmer) Start() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ticker := time.NewTicker(c.cfg.Interval)
		defer ticker.Stop()

		c.logger.Info("Started transaction confirmer",
			zap.Duration("interval", c.cfg.Interval),
			zap.Int("batch_size", c.cfg.BatchSize))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Interval)
				if err := c.Poll(ctx); err != nil {
					c.logger.Error("Confirmation pass failed", zap.Error(err))
				}
				cancel()
			case <-c.stopCh:
				c.logger.Info("Stopping transaction confirmer")
				return
			}
		}
	}()
}

// Stop stops the polling loop and waits for it to exit. Safe to call more
// than once.
func (c *Confirmer) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	c.wg.Wait()
}
