package dao

import (
	"time"

	"github.com/uptrace/bun"
)

// LiquidityProvisionDao is a data access object that maps directly to the 'liquidity_provisions' table in PostgreSQL.
type LiquidityProvisionDao struct {
	bun.BaseModel `bun:"table:liquidity_provisions,alias:lp"`
	ID            int64     `bun:"id,pk,autoincrement"`
	TxHash        string    `bun:"tx_hash,notnull,type:varchar(66)"`
	BlockNumber   int64     `bun:"block_number,notnull"`
	TokenID       int64     `bun:"token_id,notnull"`
	CreatorID     int64     `bun:"creator_id,notnull"`
	Pool          string    `bun:"pool,notnull,type:varchar(42)"`
	Sender        string    `bun:"sender,notnull,type:varchar(42)"`
	PositionID    string    `bun:"position_id,notnull,type:numeric(78,0)"`
	Liquidity     string    `bun:"liquidity,notnull,type:numeric(78,0)"`
	Amount0       string    `bun:"amount0,notnull,type:numeric(78,0)"`
	Amount1       string    `bun:"amount1,notnull,type:numeric(78,0)"`
	Timestamp     int64     `bun:"timestamp,notnull"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}
