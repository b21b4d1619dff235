package ledger

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/vortexartec/tola-ledger/pkg/tola"
)

// TransactionDao is a data access object that maps directly to the
// 'token_transactions' table in PostgreSQL.
type TransactionDao struct {
	bun.BaseModel     `bun:"table:token_transactions,alias:tt"`
	ID                int64      `bun:"id,pk,autoincrement"`
	TxHash            string     `bun:"tx_hash,unique,notnull,type:varchar(128)"`
	FromWallet        string     `bun:"from_wallet,notnull,type:varchar(64)"`
	ToWallet          string     `bun:"to_wallet,notnull,type:varchar(64)"`
	Amount            string     `bun:"amount,notnull,type:numeric(38,18)"`
	TokenAddress      string     `bun:"token_address,notnull,type:varchar(64)"`
	Network           string     `bun:"network,notnull,type:varchar(32)"`
	Status            string     `bun:"status,notnull,type:varchar(16)"`
	Note              *string    `bun:"note,type:varchar(500)"`
	RelatedEntityID   *int64     `bun:"related_entity_id"`
	RelatedEntityType *string    `bun:"related_entity_type,type:varchar(32)"`
	CreatedAt         time.Time  `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt         *time.Time `bun:"updated_at"`
}

// toTransactionDao converts a tola.Transaction to TransactionDao.
func toTransactionDao(tx *tola.Transaction) *TransactionDao {
	dao := &TransactionDao{
		TxHash:       tx.TxHash,
		FromWallet:   tx.FromWallet,
		ToWallet:     tx.ToWallet,
		Amount:       tx.Amount,
		TokenAddress: tx.TokenAddress,
		Network:      tx.Network,
		Status:       string(tx.Status),
	}

	if tx.Note != "" {
		dao.Note = &tx.Note
	}
	if tx.RelatedEntityID != 0 {
		dao.RelatedEntityID = &tx.RelatedEntityID
	}
	if tx.RelatedEntityType != "" {
		dao.RelatedEntityType = &tx.RelatedEntityType
	}
	if !tx.CreatedAt.IsZero() {
		dao.CreatedAt = tx.CreatedAt
	}
	if !tx.UpdatedAt.IsZero() {
		dao.UpdatedAt = &tx.UpdatedAt
	}

	return dao
}

// toTransaction converts a TransactionDao to tola.Transaction.
func toTransaction(dao *TransactionDao) *tola.Transaction {
	tx := &tola.Transaction{
		ID:           dao.ID,
		TxHash:       dao.TxHash,
		FromWallet:   dao.FromWallet,
		ToWallet:     dao.ToWallet,
		Amount:       dao.Amount,
		TokenAddress: dao.TokenAddress,
		Network:      dao.Network,
		Status:       tola.Status(dao.Status),
		CreatedAt:    dao.CreatedAt,
	}

	if dao.Note != nil {
		tx.Note = *dao.Note
	}
	if dao.RelatedEntityID != nil {
		tx.RelatedEntityID = *dao.RelatedEntityID
	}
	if dao.RelatedEntityType != nil {
		tx.RelatedEntityType = *dao.RelatedEntityType
	}
	if dao.UpdatedAt != nil {
		tx.UpdatedAt = *dao.UpdatedAt
	}

	return tx
}
