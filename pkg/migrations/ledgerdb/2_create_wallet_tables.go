package ledgerdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	mghelper "github.com/vortexartec/tola-ledger/pkg/pgutil/migrations"
	"github.com/vortexartec/tola-ledger/pkg/wallet"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating wallet_connections and wallet_challenges tables...")
		return mghelper.CreateSchema(ctx, db, &wallet.ConnectionDao{}, &wallet.ChallengeDao{})
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping wallet_connections and wallet_challenges tables...")
		return mghelper.DropTables(ctx, db, &wallet.ConnectionDao{}, &wallet.ChallengeDao{})
	})
}
