package dao

import (
	"time"

	"github.com/uptrace/bun"
)

// TokenWinnerDao is a data access object that maps directly to the 'token_winners' table in PostgreSQL.
type TokenWinnerDao struct {
	bun.BaseModel `bun:"table:token_winners,alias:w"`
	ID            int64     `bun:"id,pk,autoincrement"`
	TokenID       int64     `bun:"token_id,notnull"`
	CompetitionID int64     `bun:"competition_id,notnull"`
	TxHash        string    `bun:"tx_hash,notnull,type:varchar(66)"`
	BlockNumber   int64     `bun:"block_number,notnull"`
	Timestamp     int64     `bun:"timestamp,notnull"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}
