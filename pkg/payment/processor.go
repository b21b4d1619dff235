package payment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vortexartec/tola-ledger/internal/metrics"
	"github.com/vortexartec/tola-ledger/pkg/config"
	tokensvc "github.com/vortexartec/tola-ledger/pkg/token/service"
	"github.com/vortexartec/tola-ledger/pkg/tola"
)

const resumeBatchSize = 20

// Transferer executes a single token transfer. Satisfied by the token service.
type Transferer interface {
	Transfer(ctx context.Context, from, to, amount string, opts *tokensvc.TransferOptions) (*tokensvc.TransferResult, error)
}

// Processor orchestrates payment intents: it plans the transfer steps for an
// order, records them durably, then executes them sequentially.
type Processor struct {
	store    Store
	transfer Transferer
	cfg      *config.MarketplaceConfig
	logger   *zap.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewProcessor creates a payment processor.
func NewProcessor(store Store, transfer Transferer, cfg *config.MarketplaceConfig, logger *zap.Logger) *Processor {
	return &Processor{
		store:    store,
		transfer: transfer,
		cfg:      cfg,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// ProcessOrder plans and executes the payment for an order. The intent and
// all steps are written before any transfer is attempted. Per line item the
// artist payout runs first, then the marketplace commission.
//
// An artist payout failure halts the whole intent (status failed, no further
// steps). A commission failure is recorded and surfaced (needs_attention) but
// does not undo the artist payouts already made.
func (p *Processor) ProcessOrder(ctx context.Context, order *Order) (*Intent, error) {
	if err := validateOrder(order); err != nil {
		return nil, err
	}

	intent := p.planIntent(order)
	if err := p.store.CreateIntent(ctx, intent); err != nil {
		return nil, tola.WrapError(tola.KindPurchaseError, "failed to record payment intent", err)
	}
	metrics.PaymentIntentsTotal.WithLabelValues(string(IntentPending)).Inc()

	if err := p.store.UpdateIntentStatus(ctx, intent.ID, IntentProcessing); err != nil {
		return nil, tola.WrapError(tola.KindPurchaseError, "failed to start payment intent", err)
	}
	intent.Status = IntentProcessing

	if err := p.execute(ctx, intent); err != nil {
		return intent, err
	}
	return intent, nil
}

// Resume re-drives intents stuck in processing, for example after a crash
// mid-payment. Completed steps are skipped, so re-driving is idempotent.
func (p *Processor) Resume(ctx context.Context) error {
	intents, err := p.store.ListByStatus(ctx, IntentProcessing, resumeBatchSize)
	if err != nil {
		return fmt.Errorf("failed to list processing intents: %w", err)
	}

	for _, intent := range intents {
		p.logger.Info("Resuming payment intent",
			zap.String("intent_id", intent.ID),
			zap.Int64("order_id", intent.OrderID))
		if err := p.execute(ctx, intent); err != nil {
			p.logger.Error("Failed to resume payment intent",
				zap.String("intent_id", intent.ID),
				zap.Error(err))
		}
	}
	return nil
}

// StartResumer starts a background goroutine that periodically re-drives
// interrupted intents.
func (p *Processor) StartResumer(interval time.Duration) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		p.logger.Info("Started payment resumer", zap.Duration("interval", interval))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
				if err := p.Resume(ctx); err != nil {
					p.logger.Error("Payment resume pass failed", zap.Error(err))
				}
				cancel()
			case <-p.stopCh:
				p.logger.Info("Stopping payment resumer")
				return
			}
		}
	}()
}

// Stop stops the background resumer and waits for it to exit. Safe to call
// more than once.
func (p *Processor) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	p.wg.Wait()
}

func (p *Processor) planIntent(order *Order) *Intent {
	rate := decimal.NewFromFloat(p.cfg.CommissionRate)
	hundred := decimal.NewFromInt(100)

	intent := &Intent{
		ID:          uuid.NewString(),
		OrderID:     order.OrderID,
		BuyerWallet: order.BuyerWallet,
		Status:      IntentPending,
	}

	total := decimal.Zero
	position := 0
	for _, item := range order.Items {
		lineTotal := item.Price.Mul(decimal.NewFromInt(item.Quantity))
		commission := lineTotal.Mul(rate).Div(hundred)
		net := lineTotal.Sub(commission)
		total = total.Add(lineTotal)

		intent.Steps = append(intent.Steps, &Step{
			IntentID: intent.ID,
			ItemID:   item.ItemID,
			Position: position,
			Kind:     StepArtistTransfer,
			ToWallet: item.ArtistWallet,
			Amount:   net,
			Status:   StepPending,
		})
		position++

		if commission.IsPositive() && p.cfg.MarketplaceWallet != "" {
			intent.Steps = append(intent.Steps, &Step{
				IntentID: intent.ID,
				ItemID:   item.ItemID,
				Position: position,
				Kind:     StepCommissionTransfer,
				ToWallet: p.cfg.MarketplaceWallet,
				Amount:   commission,
				Status:   StepPending,
			})
			position++
		}
	}
	intent.Total = total
	return intent
}

func (p *Processor) execute(ctx context.Context, intent *Intent) error {
	needsAttention := false

	for _, step := range intent.Steps {
		if step.Status == StepCompleted {
			continue
		}
		if step.Status == StepFailed && step.Kind == StepCommissionTransfer {
			// A commission failure was already recorded on a previous
			// drive; it is not retried automatically.
			needsAttention = true
			continue
		}

		result, err := p.transfer.Transfer(ctx, intent.BuyerWallet, step.ToWallet, step.Amount.String(), &tokensvc.TransferOptions{
			Note:              fmt.Sprintf("order %d %s", intent.OrderID, step.Kind),
			RelatedEntityID:   intent.OrderID,
			RelatedEntityType: tola.EntityOrder,
		})
		if err != nil {
			if haltErr := p.handleStepFailure(ctx, intent, step, err, &needsAttention); haltErr != nil {
				return haltErr
			}
			continue
		}

		step.Status = StepCompleted
		step.TxHash = result.TxHash
		if err := p.store.UpdateStep(ctx, step.ID, StepCompleted, result.TxHash, ""); err != nil {
			return tola.WrapError(tola.KindPurchaseError, "failed to record payment step outcome", err)
		}
		metrics.PaymentStepsTotal.WithLabelValues(string(step.Kind), string(StepCompleted)).Inc()
	}

	final := IntentCompleted
	if needsAttention {
		final = IntentNeedsAttention
	}
	if err := p.store.UpdateIntentStatus(ctx, intent.ID, final); err != nil {
		return tola.WrapError(tola.KindPurchaseError, "failed to finalize payment intent", err)
	}
	intent.Status = final
	metrics.PaymentIntentsTotal.WithLabelValues(string(final)).Inc()

	p.logger.Info("Payment intent finished",
		zap.String("intent_id", intent.ID),
		zap.Int64("order_id", intent.OrderID),
		zap.String("status", string(final)))
	return nil
}

// handleStepFailure records a failed step. Artist payout failures are fatal
// for the intent; commission failures are surfaced but processing continues.
func (p *Processor) handleStepFailure(ctx context.Context, intent *Intent, step *Step, stepErr error, needsAttention *bool) error {
	step.Status = StepFailed
	step.Error = stepErr.Error()
	if err := p.store.UpdateStep(ctx, step.ID, StepFailed, "", stepErr.Error()); err != nil {
		p.logger.Error("Failed to record step failure",
			zap.String("intent_id", intent.ID),
			zap.Int64("step_id", step.ID),
			zap.Error(err))
	}
	metrics.PaymentStepsTotal.WithLabelValues(string(step.Kind), string(StepFailed)).Inc()

	if step.Kind == StepCommissionTransfer {
		metrics.CommissionFailures.Inc()
		p.logger.Error("Commission transfer failed, intent needs attention",
			zap.String("intent_id", intent.ID),
			zap.Int64("order_id", intent.OrderID),
			zap.Int64("item_id", step.ItemID),
			zap.String("amount", step.Amount.String()),
			zap.Error(stepErr))
		*needsAttention = true
		return nil
	}

	if err := p.store.UpdateIntentStatus(ctx, intent.ID, IntentFailed); err != nil {
		p.logger.Error("Failed to mark intent failed",
			zap.String("intent_id", intent.ID),
			zap.Error(err))
	}
	intent.Status = IntentFailed
	metrics.PaymentIntentsTotal.WithLabelValues(string(IntentFailed)).Inc()

	return tola.WrapError(tola.KindPurchaseError,
		fmt.Sprintf("artist payout for item %d failed", step.ItemID), stepErr)
}

func validateOrder(order *Order) error {
	if order == nil {
		return tola.NewError(tola.KindInvalidInput, "order is required")
	}
	if order.BuyerWallet == "" {
		return tola.NewError(tola.KindInvalidInput, "buyer wallet is required")
	}
	if len(order.Items) == 0 {
		return tola.NewError(tola.KindInvalidInput, "order has no items")
	}
	for _, item := range order.Items {
		if item.ArtistWallet == "" {
			return tola.NewError(tola.KindInvalidInput, fmt.Sprintf("item %d has no artist wallet", item.ItemID))
		}
		if !item.Price.IsPositive() {
			return tola.NewError(tola.KindInvalidInput, fmt.Sprintf("item %d has a non-positive price", item.ItemID))
		}
		if item.Quantity <= 0 {
			return tola.NewError(tola.KindInvalidInput, fmt.Sprintf("item %d has a non-positive quantity", item.ItemID))
		}
	}
	return nil
}
