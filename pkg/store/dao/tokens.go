package dao

import (
	"time"

	"github.com/uptrace/bun"
)

// TokenDao is a data access object that maps directly to the 'tokens' table in PostgreSQL.
type TokenDao struct {
	bun.BaseModel `bun:"table:tokens,alias:t"`
	ID            int64     `bun:"id,pk,autoincrement"`
	Address       string    `bun:"address,unique,notnull,type:varchar(42)"`
	TxHash        string    `bun:"tx_hash,unique,notnull,type:varchar(66)"`
	BlockNumber   int64     `bun:"block_number,notnull"`
	Name          string    `bun:"name,notnull,type:varchar(255)"`
	Symbol        string    `bun:"symbol,notnull,type:varchar(64)"`
	MetadataURI   string    `bun:"metadata_uri,notnull,type:text"`
	Metadata      []byte    `bun:"metadata,nullzero,type:jsonb"`
	CreatorID     int64     `bun:"creator_id,notnull"`
	CompetitionID *int64    `bun:"competition_id"`
	TotalSupply   string    `bun:"total_supply,notnull,type:numeric(78,0)"`
	Price         string    `bun:"price,notnull,type:numeric(38,18)"`
	MarketCap     string    `bun:"market_cap,notnull,type:numeric(38,18)"`
	IsWinner      bool      `bun:"is_winner,notnull,default:false"`
	IsEnabled     bool      `bun:"is_enabled,notnull,default:true"`
	Timestamp     int64     `bun:"timestamp,notnull"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}
