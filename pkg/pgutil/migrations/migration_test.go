package migrations

import (
	"context"
	"testing"

	"github.com/vortexartec/tola-ledger/pkg/config"
	"github.com/vortexartec/tola-ledger/pkg/ledger"
	"github.com/vortexartec/tola-ledger/pkg/pgutil"
)

// The helpers are exercised against the ledger transaction model, the same
// dao the real migrations create.
func ledgerRow(txHash string) *ledger.TransactionDao {
	return &ledger.TransactionDao{
		TxHash:       txHash,
		FromWallet:   "0xaaaa000000000000000000000000000000000001",
		ToWallet:     "0xbbbb000000000000000000000000000000000001",
		Amount:       "12.5",
		TokenAddress: "0x1111111111111111111111111111111111111111",
		Network:      "polygon",
		Status:       "pending",
	}
}

func TestConnectDB_Success(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()

	if err := db.Ping(); err != nil {
		t.Errorf("Ping() failed: %v", err)
	}
}

func TestConnectDB_InvalidHost(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:     "invalid-host-that-does-not-exist",
		Port:     5432,
		User:     "test",
		Password: "test",
		Database: "test",
		SSLMode:  "disable",
	}

	db, err := pgutil.ConnectDB(cfg)
	if err == nil {
		db.Close()
		t.Error("ConnectDB() should fail with invalid host")
	}
}

func TestCreateSchema(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	err := CreateSchema(ctx, db, &ledger.TransactionDao{})
	if err != nil {
		t.Fatalf("CreateSchema() failed: %v", err)
	}
	pgutil.AssertTableExists(t, db, "token_transactions")

	// Idempotent: a second call must not fail.
	err = CreateSchema(ctx, db, &ledger.TransactionDao{})
	if err != nil {
		t.Errorf("CreateSchema() second call failed: %v", err)
	}
}

func TestDropTables(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	err := CreateSchema(ctx, db, &ledger.TransactionDao{})
	if err != nil {
		t.Fatalf("CreateSchema() failed: %v", err)
	}
	pgutil.AssertTableExists(t, db, "token_transactions")

	err = DropTables(ctx, db, &ledger.TransactionDao{})
	if err != nil {
		t.Fatalf("DropTables() failed: %v", err)
	}
	pgutil.AssertTableNotExists(t, db, "token_transactions")

	// Idempotent: a second call must not fail.
	err = DropTables(ctx, db, &ledger.TransactionDao{})
	if err != nil {
		t.Errorf("DropTables() second call failed: %v", err)
	}
}

func TestInsertEntry(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	err := CreateSchema(ctx, db, &ledger.TransactionDao{})
	if err != nil {
		t.Fatalf("CreateSchema() failed: %v", err)
	}

	err = InsertEntry(ctx, db, ledgerRow("0xabc123"))
	if err != nil {
		t.Fatalf("InsertEntry() failed: %v", err)
	}
	pgutil.AssertRowCount(t, db, "token_transactions", 1)

	var result ledger.TransactionDao
	err = db.NewRaw("SELECT * FROM token_transactions WHERE tx_hash = ?", "0xabc123").Scan(ctx, &result)
	if err != nil {
		t.Fatalf("failed to query inserted row: %v", err)
	}
	if result.FromWallet != "0xaaaa000000000000000000000000000000000001" || result.Status != "pending" {
		t.Errorf("inserted row mismatch: got from=%s status=%s", result.FromWallet, result.Status)
	}
}

func TestTruncateTables(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	err := CreateSchema(ctx, db, &ledger.TransactionDao{})
	if err != nil {
		t.Fatalf("CreateSchema() failed: %v", err)
	}

	err = InsertEntry(ctx, db, ledgerRow("0xabc1"), ledgerRow("0xabc2"))
	if err != nil {
		t.Fatalf("InsertEntry() failed: %v", err)
	}
	pgutil.AssertRowCount(t, db, "token_transactions", 2)

	err = TruncateTables(ctx, db, &ledger.TransactionDao{})
	if err != nil {
		t.Fatalf("TruncateTables() failed: %v", err)
	}

	pgutil.AssertRowCount(t, db, "token_transactions", 0)
	pgutil.AssertTableExists(t, db, "token_transactions")
}

func TestCreateIndex(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	err := CreateSchema(ctx, db, &ledger.TransactionDao{})
	if err != nil {
		t.Fatalf("CreateSchema() failed: %v", err)
	}

	err = CreateIndex(ctx, db, "token_transactions", "idx_tt_status", "status")
	if err != nil {
		t.Fatalf("CreateIndex() failed: %v", err)
	}
	pgutil.AssertIndexExists(t, db, "idx_tt_status")

	// Idempotent: a second call must not fail.
	err = CreateIndex(ctx, db, "token_transactions", "idx_tt_status", "status")
	if err != nil {
		t.Errorf("CreateIndex() second call failed: %v", err)
	}
}

func TestCreateIndexes(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	err := CreateSchema(ctx, db, &ledger.TransactionDao{})
	if err != nil {
		t.Fatalf("CreateSchema() failed: %v", err)
	}

	err = CreateIndexes(ctx, db, "token_transactions", "from_wallet", "to_wallet")
	if err != nil {
		t.Fatalf("CreateIndexes() failed: %v", err)
	}

	pgutil.AssertIndexExists(t, db, "idx_token_transactions_from_wallet")
	pgutil.AssertIndexExists(t, db, "idx_token_transactions_to_wallet")
}

func TestCreateModelIndexes(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	err := CreateSchema(ctx, db, &ledger.TransactionDao{})
	if err != nil {
		t.Fatalf("CreateSchema() failed: %v", err)
	}

	err = CreateModelIndexes(ctx, db, &ledger.TransactionDao{}, "from_wallet", "status")
	if err != nil {
		t.Fatalf("CreateModelIndexes() failed: %v", err)
	}

	pgutil.AssertIndexExists(t, db, "idx_token_transactions_from_wallet")
	pgutil.AssertIndexExists(t, db, "idx_token_transactions_status")
}

func TestCreateUniqueIndexes(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	err := CreateSchema(ctx, db, &ledger.TransactionDao{})
	if err != nil {
		t.Fatalf("CreateSchema() failed: %v", err)
	}

	err = CreateUniqueIndexes(ctx, db, "token_transactions", "tx_hash")
	if err != nil {
		t.Fatalf("CreateUniqueIndexes() failed: %v", err)
	}
	pgutil.AssertIndexExists(t, db, "idx_token_transactions_tx_hash")

	// A second row with the same hash must be rejected.
	err = InsertEntry(ctx, db, ledgerRow("0xdup"))
	if err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	err = InsertEntry(ctx, db, ledgerRow("0xdup"))
	if err == nil {
		t.Error("expected duplicate tx_hash insert to fail, but it succeeded")
	}
}

func TestCreateModelUniqueIndexes(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	err := CreateSchema(ctx, db, &ledger.TransactionDao{})
	if err != nil {
		t.Fatalf("CreateSchema() failed: %v", err)
	}

	err = CreateModelUniqueIndexes(ctx, db, &ledger.TransactionDao{}, "tx_hash")
	if err != nil {
		t.Fatalf("CreateModelUniqueIndexes() failed: %v", err)
	}
	pgutil.AssertIndexExists(t, db, "idx_token_transactions_tx_hash")
}

func TestDropIndex(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	err := CreateSchema(ctx, db, &ledger.TransactionDao{})
	if err != nil {
		t.Fatalf("CreateSchema() failed: %v", err)
	}

	err = CreateIndex(ctx, db, "token_transactions", "idx_tt_status", "status")
	if err != nil {
		t.Fatalf("CreateIndex() failed: %v", err)
	}
	pgutil.AssertIndexExists(t, db, "idx_tt_status")

	err = DropIndex(ctx, db, "idx_tt_status")
	if err != nil {
		t.Fatalf("DropIndex() failed: %v", err)
	}

	var exists bool
	query := `SELECT EXISTS (SELECT FROM pg_indexes WHERE schemaname = 'public' AND indexname = ?)`
	err = db.NewRaw(query, "idx_tt_status").Scan(ctx, &exists)
	if err != nil {
		t.Fatalf("failed to check index: %v", err)
	}
	if exists {
		t.Error("index should be dropped but still exists")
	}

	// Idempotent: a second call must not fail.
	err = DropIndex(ctx, db, "idx_tt_status")
	if err != nil {
		t.Errorf("DropIndex() second call failed: %v", err)
	}
}

func TestDropModelIndexes(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	err := CreateSchema(ctx, db, &ledger.TransactionDao{})
	if err != nil {
		t.Fatalf("CreateSchema() failed: %v", err)
	}

	err = CreateModelIndexes(ctx, db, &ledger.TransactionDao{}, "from_wallet", "to_wallet")
	if err != nil {
		t.Fatalf("CreateModelIndexes() failed: %v", err)
	}
	pgutil.AssertIndexExists(t, db, "idx_token_transactions_from_wallet")
	pgutil.AssertIndexExists(t, db, "idx_token_transactions_to_wallet")

	err = DropModelIndexes(ctx, db, &ledger.TransactionDao{}, "from_wallet", "to_wallet")
	if err != nil {
		t.Fatalf("DropModelIndexes() failed: %v", err)
	}

	query := `SELECT EXISTS (SELECT FROM pg_indexes WHERE schemaname = 'public' AND indexname = ?)`
	for _, name := range []string{"idx_token_transactions_from_wallet", "idx_token_transactions_to_wallet"} {
		var exists bool
		if err := db.NewRaw(query, name).Scan(ctx, &exists); err != nil {
			t.Fatalf("failed to check index %s: %v", name, err)
		}
		if exists {
			t.Errorf("%s should be dropped", name)
		}
	}
}
