package dao

import (
	"time"

	"github.com/uptrace/bun"
)

// TokenBurnDao is a data access object that maps directly to the 'token_burns' table in PostgreSQL.
type TokenBurnDao struct {
	bun.BaseModel  `bun:"table:token_burns,alias:b"`
	ID             int64     `bun:"id,pk,autoincrement"`
	TxHash         string    `bun:"tx_hash,notnull,type:varchar(66)"`
	BlockNumber    int64     `bun:"block_number,notnull"`
	SenderID       int64     `bun:"sender_id,notnull"`
	TokenID        int64     `bun:"token_id,notnull"`
	WinnerTokenID  int64     `bun:"winner_token_id,notnull"`
	BurnedAmount   string    `bun:"burned_amount,notnull,type:numeric(78,0)"`
	ReceivedNative string    `bun:"received_native,notnull,type:numeric(78,0)"`
	MintedAmount   string    `bun:"minted_amount,notnull,type:numeric(78,0)"`
	Timestamp      int64     `bun:"timestamp,notnull"`
	CreatedAt      time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}
