package ledgerdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/vortexartec/tola-ledger/pkg/ledger"
	mghelper "github.com/vortexartec/tola-ledger/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating token_transactions table...")
		if err := mghelper.CreateSchema(ctx, db, &ledger.TransactionDao{}); err != nil {
			return err
		}
		if err := mghelper.CreateModelUniqueIndexes(ctx, db, &ledger.TransactionDao{}, "tx_hash"); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &ledger.TransactionDao{}, "from_wallet", "to_wallet", "status")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping token_transactions table...")
		return mghelper.DropTables(ctx, db, &ledger.TransactionDao{})
	})
}
