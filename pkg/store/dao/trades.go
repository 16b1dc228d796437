package dao

import (
	"time"

	"github.com/uptrace/bun"
)

// TradeDao is a data access object that maps directly to the 'trades' table in PostgreSQL.
type TradeDao struct {
	bun.BaseModel `bun:"table:trades,alias:tr"`
	ID            int64     `bun:"id,pk,autoincrement"`
	TxHash        string    `bun:"tx_hash,notnull,type:varchar(66)"`
	BlockNumber   int64     `bun:"block_number,notnull"`
	Type          string    `bun:"type,notnull,type:varchar(10)"`
	UserID        int64     `bun:"user_id,notnull"`
	TokenID       int64     `bun:"token_id,notnull"`
	AmountIn      string    `bun:"amount_in,notnull,type:numeric(78,0)"`
	AmountOut     string    `bun:"amount_out,notnull,type:numeric(78,0)"`
	Price         string    `bun:"price,notnull,type:numeric(38,18)"`
	Fee           string    `bun:"fee,notnull,type:numeric(78,0)"`
	Timestamp     int64     `bun:"timestamp,notnull"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}
