package dao

import (
	"time"

	"github.com/uptrace/bun"
)

// CompetitionDao is a data access object that maps directly to the 'competitions' table in PostgreSQL.
type CompetitionDao struct {
	bun.BaseModel  `bun:"table:competitions,alias:c"`
	ID             int64     `bun:"id,pk,autoincrement"`
	CompetitionID  int64     `bun:"competition_id,notnull"`
	SourceAddress  string    `bun:"source_address,notnull,type:varchar(42)"`
	TxHash         string    `bun:"tx_hash,notnull,type:varchar(66)"`
	BlockNumber    int64     `bun:"block_number,notnull"`
	TimestampStart int64     `bun:"timestamp_start,notnull"`
	TimestampEnd   *int64    `bun:"timestamp_end"`
	IsCompleted    bool      `bun:"is_completed,notnull,default:false"`
	WinnerTokenID  *int64    `bun:"winner_token_id"`
	CreatedAt      time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}
