package payment

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vortexartec/tola-ledger/pkg/config"
	tokensvc "github.com/vortexartec/tola-ledger/pkg/token/service"
)

const (
	buyerWallet  = "0xBBBB000000000000000000000000000000000001"
	artistWallet = "0xAAAA000000000000000000000000000000000001"
	secondArtist = "0xAAAA000000000000000000000000000000000002"
	marketWallet = "0xCCCC000000000000000000000000000000000001"
)

type transferCall struct {
	from, to, amount string
}

type mockTransferer struct {
	transferFn func(ctx context.Context, from, to, amount string, opts *tokensvc.TransferOptions) (*tokensvc.TransferResult, error)
	calls      []transferCall
}

func (m *mockTransferer) Transfer(ctx context.Context, from, to, amount string, opts *tokensvc.TransferOptions) (*tokensvc.TransferResult, error) {
	m.calls = append(m.calls, transferCall{from: from, to: to, amount: amount})
	if m.transferFn != nil {
		return m.transferFn(ctx, from, to, amount, opts)
	}
	return &tokensvc.TransferResult{TxHash: fmt.Sprintf("0xtx%d", len(m.calls))}, nil
}

// memPaymentStore is an in-memory payment store for processor tests.
type memPaymentStore struct {
	intents map[string]*Intent
	nextID  int64
}

func newMemPaymentStore() *memPaymentStore {
	return &memPaymentStore{intents: make(map[string]*Intent)}
}

func (m *memPaymentStore) CreateIntent(_ context.Context, intent *Intent) error {
	for _, step := range intent.Steps {
		m.nextID++
		step.ID = m.nextID
	}
	m.intents[intent.ID] = intent
	return nil
}

func (m *memPaymentStore) GetIntent(_ context.Context, id string) (*Intent, error) {
	intent, ok := m.intents[id]
	if !ok {
		return nil, ErrIntentNotFound
	}
	return intent, nil
}

func (m *memPaymentStore) UpdateIntentStatus(_ context.Context, id string, status IntentStatus) error {
	intent, ok := m.intents[id]
	if !ok {
		return ErrIntentNotFound
	}
	intent.Status = status
	return nil
}

func (m *memPaymentStore) UpdateStep(_ context.Context, stepID int64, status StepStatus, txHash, stepErr string) error {
	for _, intent := range m.intents {
		for _, step := range intent.Steps {
			if step.ID == stepID {
				step.Status = status
				if txHash != "" {
					step.TxHash = txHash
				}
				if stepErr != "" {
					step.Error = stepErr
				}
				return nil
			}
		}
	}
	return fmt.Errorf("step %d not found", stepID)
}

func (m *memPaymentStore) ListByStatus(_ context.Context, status IntentStatus, limit int) ([]*Intent, error) {
	var out []*Intent
	for _, intent := range m.intents {
		if intent.Status == status && len(out) < limit {
			out = append(out, intent)
		}
	}
	return out, nil
}

func testMarketplaceConfig() *config.MarketplaceConfig {
	return &config.MarketplaceConfig{
		TokenContract:     "0x1111111111111111111111111111111111111111",
		MarketplaceWallet: marketWallet,
		CommissionRate:    5,
	}
}

func newProcessor(store Store, transfer Transferer) *Processor {
	return NewProcessor(store, transfer, testMarketplaceConfig(), zap.NewNop())
}

func twoItemOrder() *Order {
	return &Order{
		OrderID:     42,
		BuyerWallet: buyerWallet,
		Items: []OrderItem{
			{ItemID: 1, ArtistWallet: artistWallet, Price: decimal.RequireFromString("10"), Quantity: 1},
			{ItemID: 2, ArtistWallet: secondArtist, Price: decimal.RequireFromString("20"), Quantity: 2},
		},
	}
}

func TestProcessOrder_HappyPath(t *testing.T) {
	ctx := context.Background()
	store := newMemPaymentStore()
	transfer := &mockTransferer{}
	proc := newProcessor(store, transfer)

	intent, err := proc.ProcessOrder(ctx, twoItemOrder())
	if err != nil {
		t.Fatalf("ProcessOrder() failed: %v", err)
	}
	if intent.Status != IntentCompleted {
		t.Fatalf("expected completed intent, got %s", intent.Status)
	}
	if intent.Total.String() != "50" {
		t.Fatalf("expected total 50, got %s", intent.Total)
	}

	// Item 1: line 10, commission 0.5, artist 9.5.
	// Item 2: line 40, commission 2, artist 38.
	want := []transferCall{
		{from: buyerWallet, to: artistWallet, amount: "9.5"},
		{from: buyerWallet, to: marketWallet, amount: "0.5"},
		{from: buyerWallet, to: secondArtist, amount: "38"},
		{from: buyerWallet, to: marketWallet, amount: "2"},
	}
	if len(transfer.calls) != len(want) {
		t.Fatalf("expected %d transfers, got %d: %+v", len(want), len(transfer.calls), transfer.calls)
	}
	for i, call := range transfer.calls {
		if call != want[i] {
			t.Fatalf("transfer %d = %+v, want %+v", i, call, want[i])
		}
	}

	for _, step := range intent.Steps {
		if step.Status != StepCompleted {
			t.Fatalf("expected all steps completed, step %d is %s", step.ID, step.Status)
		}
		if step.TxHash == "" {
			t.Fatalf("step %d has no tx hash", step.ID)
		}
	}
}

func TestProcessOrder_ArtistFailureHaltsIntent(t *testing.T) {
	ctx := context.Background()
	store := newMemPaymentStore()
	transfer := &mockTransferer{
		transferFn: func(_ context.Context, _, _, _ string, _ *tokensvc.TransferOptions) (*tokensvc.TransferResult, error) {
			return nil, errors.New("rpc unreachable")
		},
	}
	proc := newProcessor(store, transfer)

	intent, err := proc.ProcessOrder(ctx, twoItemOrder())
	if err == nil {
		t.Fatal("expected ProcessOrder to fail")
	}
	if intent.Status != IntentFailed {
		t.Fatalf("expected failed intent, got %s", intent.Status)
	}

	// The very first artist payout failed: no commission, no second item.
	if len(transfer.calls) != 1 {
		t.Fatalf("expected exactly 1 transfer attempt, got %d: %+v", len(transfer.calls), transfer.calls)
	}
	if transfer.calls[0].to == marketWallet {
		t.Fatal("commission must not be attempted after an artist payout failure")
	}

	stored, getErr := store.GetIntent(ctx, intent.ID)
	if getErr != nil {
		t.Fatalf("GetIntent() failed: %v", getErr)
	}
	if stored.Steps[0].Status != StepFailed || stored.Steps[0].Error == "" {
		t.Fatalf("expected first step failed with error, got %+v", stored.Steps[0])
	}
	for _, step := range stored.Steps[1:] {
		if step.Status != StepPending {
			t.Fatalf("expected remaining steps untouched, step %d is %s", step.ID, step.Status)
		}
	}
}

func TestProcessOrder_CommissionFailureNeedsAttention(t *testing.T) {
	ctx := context.Background()
	store := newMemPaymentStore()
	transfer := &mockTransferer{}
	transfer.transferFn = func(_ context.Context, _, to, _ string, _ *tokensvc.TransferOptions) (*tokensvc.TransferResult, error) {
		if to == marketWallet {
			return nil, errors.New("commission wallet rejected transfer")
		}
		return &tokensvc.TransferResult{TxHash: fmt.Sprintf("0xtx%d", len(transfer.calls))}, nil
	}
	proc := newProcessor(store, transfer)

	intent, err := proc.ProcessOrder(ctx, twoItemOrder())
	if err != nil {
		t.Fatalf("commission failure must not fail the order: %v", err)
	}
	if intent.Status != IntentNeedsAttention {
		t.Fatalf("expected needs_attention intent, got %s", intent.Status)
	}

	// All four steps were attempted despite the commission failures.
	if len(transfer.calls) != 4 {
		t.Fatalf("expected 4 transfer attempts, got %d", len(transfer.calls))
	}

	var artistDone, commissionFailed int
	for _, step := range intent.Steps {
		switch step.Kind {
		case StepArtistTransfer:
			if step.Status == StepCompleted {
				artistDone++
			}
		case StepCommissionTransfer:
			if step.Status == StepFailed && step.Error != "" {
				commissionFailed++
			}
		}
	}
	if artistDone != 2 || commissionFailed != 2 {
		t.Fatalf("expected 2 completed artist steps and 2 failed commission steps, got %d/%d", artistDone, commissionFailed)
	}
}

func TestProcessOrder_Validation(t *testing.T) {
	ctx := context.Background()
	store := newMemPaymentStore()
	transfer := &mockTransferer{}
	proc := newProcessor(store, transfer)

	tests := []struct {
		name  string
		order *Order
	}{
		{name: "nil order", order: nil},
		{name: "no buyer", order: &Order{OrderID: 1, Items: []OrderItem{{ItemID: 1, ArtistWallet: artistWallet, Price: decimal.RequireFromString("1"), Quantity: 1}}}},
		{name: "no items", order: &Order{OrderID: 1, BuyerWallet: buyerWallet}},
		{name: "no artist wallet", order: &Order{OrderID: 1, BuyerWallet: buyerWallet, Items: []OrderItem{{ItemID: 1, Price: decimal.RequireFromString("1"), Quantity: 1}}}},
		{name: "zero price", order: &Order{OrderID: 1, BuyerWallet: buyerWallet, Items: []OrderItem{{ItemID: 1, ArtistWallet: artistWallet, Quantity: 1}}}},
		{name: "zero quantity", order: &Order{OrderID: 1, BuyerWallet: buyerWallet, Items: []OrderItem{{ItemID: 1, ArtistWallet: artistWallet, Price: decimal.RequireFromString("1")}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := proc.ProcessOrder(ctx, tt.order); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	if len(transfer.calls) != 0 {
		t.Fatalf("invalid orders must not trigger transfers, got %d", len(transfer.calls))
	}
	if len(store.intents) != 0 {
		t.Fatalf("invalid orders must not be persisted, got %d intents", len(store.intents))
	}
}

func TestResume_SkipsCompletedSteps(t *testing.T) {
	ctx := context.Background()
	store := newMemPaymentStore()
	transfer := &mockTransferer{}
	proc := newProcessor(store, transfer)

	// Simulate a crash after the first artist payout completed.
	intent := proc.planIntent(twoItemOrder())
	if err := store.CreateIntent(ctx, intent); err != nil {
		t.Fatalf("CreateIntent() failed: %v", err)
	}
	intent.Status = IntentProcessing
	intent.Steps[0].Status = StepCompleted
	intent.Steps[0].TxHash = "0xalready"

	if err := proc.Resume(ctx); err != nil {
		t.Fatalf("Resume() failed: %v", err)
	}

	// Three remaining steps driven, the completed one untouched.
	if len(transfer.calls) != 3 {
		t.Fatalf("expected 3 transfers on resume, got %d: %+v", len(transfer.calls), transfer.calls)
	}
	if transfer.calls[0].to != marketWallet {
		t.Fatalf("expected resume to start at the pending commission step, got %+v", transfer.calls[0])
	}
	if intent.Steps[0].TxHash != "0xalready" {
		t.Fatal("completed step must not be re-executed")
	}
	if intent.Status != IntentCompleted {
		t.Fatalf("expected completed intent after resume, got %s", intent.Status)
	}
}

func TestStop_SafeToCallTwice(t *testing.T) {
	proc := newProcessor(newMemPaymentStore(), &mockTransferer{})
	proc.StartResumer(time.Hour)

	// Deferred and explicit shutdown paths may both reach Stop.
	proc.Stop()
	proc.Stop()
}
