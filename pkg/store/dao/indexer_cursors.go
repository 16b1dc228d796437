package dao

import (
	"time"

	"github.com/uptrace/bun"
)

// CursorDao is a data access object that maps directly to the 'indexer_cursors' table in PostgreSQL.
// One row per tracked source contract; last_indexed_block is the high-water mark.
type CursorDao struct {
	bun.BaseModel    `bun:"table:indexer_cursors,alias:ic"`
	SourceAddress    string    `bun:"source_address,pk,type:varchar(42)"`
	LastIndexedBlock int64     `bun:"last_indexed_block,notnull"`
	UpdatedAt        time.Time `bun:"updated_at,nullzero,default:current_timestamp"`
}
