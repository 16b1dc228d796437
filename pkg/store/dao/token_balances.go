package dao

import (
	"time"

	"github.com/uptrace/bun"
)

// TokenBalanceDao is a data access object that maps directly to the 'token_balances' table in PostgreSQL.
type TokenBalanceDao struct {
	bun.BaseModel `bun:"table:token_balances,alias:tb"`
	ID            int64     `bun:"id,pk,autoincrement"`
	UserID        int64     `bun:"user_id,notnull"`
	TokenID       int64     `bun:"token_id,notnull"`
	Balance       string    `bun:"balance,notnull,type:numeric(78,0)"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,default:current_timestamp"`
}
