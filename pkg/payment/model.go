package payment

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to parse stored amount %q: %w", s, err)
	}
	return d, nil
}

// IntentDao is a data access object that maps directly to the
// 'payment_intents' table in PostgreSQL.
type IntentDao struct {
	bun.BaseModel `bun:"table:payment_intents,alias:pi"`
	ID            string     `bun:"id,pk,type:uuid"`
	OrderID       int64      `bun:"order_id,notnull"`
	BuyerWallet   string     `bun:"buyer_wallet,notnull,type:varchar(64)"`
	Total         string     `bun:"total,notnull,type:numeric(38,18)"`
	Status        string     `bun:"status,notnull,type:varchar(16)"`
	CreatedAt     time.Time  `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt     *time.Time `bun:"updated_at"`

	Steps []*StepDao `bun:"rel:has-many,join:id=intent_id"`
}

// StepDao is a data access object that maps directly to the
// 'payment_steps' table in PostgreSQL.
type StepDao struct {
	bun.BaseModel `bun:"table:payment_steps,alias:ps"`
	ID            int64  `bun:"id,pk,autoincrement"`
	IntentID      string `bun:"intent_id,notnull,type:uuid"`
	ItemID        int64  `bun:"item_id,notnull"`
	Position      int    `bun:"position,notnull"`
	Kind          string `bun:"kind,notnull,type:varchar(32)"`
	ToWallet      string `bun:"to_wallet,notnull,type:varchar(64)"`
	Amount        string `bun:"amount,notnull,type:numeric(38,18)"`
	Status        string `bun:"status,notnull,type:varchar(16)"`
	TxHash        string `bun:"tx_hash,nullzero,type:varchar(128)"`
	Error         string `bun:"error,nullzero,type:text"`
}

func toIntentDao(intent *Intent) *IntentDao {
	dao := &IntentDao{
		ID:          intent.ID,
		OrderID:     intent.OrderID,
		BuyerWallet: intent.BuyerWallet,
		Total:       intent.Total.String(),
		Status:      string(intent.Status),
		UpdatedAt:   intent.UpdatedAt,
	}
	if !intent.CreatedAt.IsZero() {
		dao.CreatedAt = intent.CreatedAt
	}
	return dao
}

func toIntent(dao *IntentDao) (*Intent, error) {
	total, err := parseAmount(dao.Total)
	if err != nil {
		return nil, err
	}
	intent := &Intent{
		ID:          dao.ID,
		OrderID:     dao.OrderID,
		BuyerWallet: dao.BuyerWallet,
		Total:       total,
		Status:      IntentStatus(dao.Status),
		CreatedAt:   dao.CreatedAt,
		UpdatedAt:   dao.UpdatedAt,
	}
	for _, stepDao := range dao.Steps {
		step, err := toStep(stepDao)
		if err != nil {
			return nil, err
		}
		intent.Steps = append(intent.Steps, step)
	}
	return intent, nil
}

func toStepDao(step *Step) *StepDao {
	return &StepDao{
		ID:       step.ID,
		IntentID: step.IntentID,
		ItemID:   step.ItemID,
		Position: step.Position,
		Kind:     string(step.Kind),
		ToWallet: step.ToWallet,
		Amount:   step.Amount.String(),
		Status:   string(step.Status),
		TxHash:   step.TxHash,
		Error:    step.Error,
	}
}

func toStep(dao *StepDao) (*Step, error) {
	amount, err := parseAmount(dao.Amount)
	if err != nil {
		return nil, err
	}
	return &Step{
		ID:       dao.ID,
		IntentID: dao.IntentID,
		ItemID:   dao.ItemID,
		Position: dao.Position,
		Kind:     StepKind(dao.Kind),
		ToWallet: dao.ToWallet,
		Amount:   amount,
		Status:   StepStatus(dao.Status),
		TxHash:   dao.TxHash,
		Error:    dao.Error,
	}, nil
}
