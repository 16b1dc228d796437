package dao

import (
	"time"

	"github.com/uptrace/bun"
)

// UserDao is a data access object that maps directly to the 'users' table in PostgreSQL.
type UserDao struct {
	bun.BaseModel `bun:"table:users,alias:u"`
	ID            int64     `bun:"id,pk,autoincrement"`
	Address       string    `bun:"address,unique,notnull,type:varchar(42)"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}
