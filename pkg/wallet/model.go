package wallet

import (
	"time"

	"github.com/uptrace/bun"
)

// ConnectionDao is a data access object that maps directly to the
// 'wallet_connections' table in PostgreSQL.
type ConnectionDao struct {
	bun.BaseModel `bun:"table:wallet_connections,alias:wc"`
	Wallet        string    `bun:"wallet,pk,type:varchar(64)"`
	Network       string    `bun:"network,notnull,type:varchar(32)"`
	Provider      string    `bun:"provider,notnull,type:varchar(32)"`
	Verified      bool      `bun:"verified,notnull,default:false"`
	ConnectedAt   time.Time `bun:"connected_at,nullzero,default:current_timestamp"`
}

func toConnectionDao(conn *Connection) *ConnectionDao {
	dao := &ConnectionDao{
		Wallet:   conn.Wallet,
		Network:  conn.Network,
		Provider: conn.Provider,
		Verified: conn.Verified,
	}
	if !conn.ConnectedAt.IsZero() {
		dao.ConnectedAt = conn.ConnectedAt
	}
	return dao
}

func toConnection(dao *ConnectionDao) *Connection {
	return &Connection{
		Wallet:      dao.Wallet,
		Network:     dao.Network,
		Provider:    dao.Provider,
		Verified:    dao.Verified,
		ConnectedAt: dao.ConnectedAt,
	}
}

// ChallengeDao is a data access object that maps directly to the
// 'wallet_challenges' table in PostgreSQL.
type ChallengeDao struct {
	bun.BaseModel `bun:"table:wallet_challenges,alias:wch"`
	Wallet        string    `bun:"wallet,pk,type:varchar(64)"`
	Network       string    `bun:"network,notnull,type:varchar(32)"`
	Provider      string    `bun:"provider,notnull,type:varchar(32)"`
	Nonce         string    `bun:"nonce,notnull,type:varchar(64)"`
	Message       string    `bun:"message,notnull,type:text"`
	ExpiresAt     time.Time `bun:"expires_at,notnull"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}

func toChallengeDao(ch *Challenge) *ChallengeDao {
	return &ChallengeDao{
		Wallet:    ch.Wallet,
		Network:   ch.Network,
		Provider:  ch.Provider,
		Nonce:     ch.Nonce,
		Message:   ch.Message,
		ExpiresAt: ch.ExpiresAt,
	}
}

func toChallenge(dao *ChallengeDao) *Challenge {
	return &Challenge{
		Wallet:    dao.Wallet,
		Network:   dao.Network,
		Provider:  dao.Provider,
		Nonce:     dao.Nonce,
		Message:   dao.Message,
		ExpiresAt: dao.ExpiresAt,
	}
}
