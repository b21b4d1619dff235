package ledgerdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/vortexartec/tola-ledger/pkg/payment"
	mghelper "github.com/vortexartec/tola-ledger/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating payment_intents and payment_steps tables...")
		if err := mghelper.CreateSchema(ctx, db, &payment.IntentDao{}, &payment.StepDao{}); err != nil {
			return err
		}
		if err := mghelper.CreateModelIndexes(ctx, db, &payment.IntentDao{}, "status"); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &payment.StepDao{}, "intent_id")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping payment_intents and payment_steps tables...")
		return mghelper.DropTables(ctx, db, &payment.StepDao{}, &payment.IntentDao{})
	})
}
