package indexerdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	mghelper "github.com/openlaunch/launchpad-indexer/pkg/pgutil/migrations"
	"github.com/openlaunch/launchpad-indexer/pkg/store/dao"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating token_balances table...")
		if err := mghelper.CreateSchema(ctx, db, &dao.TokenBalanceDao{}); err != nil {
			return err
		}
		// One holding per (user, token)
		_, err := db.NewCreateIndex().
			Model(&dao.TokenBalanceDao{}).
			Index("idx_token_balances_user_token").
			Column("user_id", "token_id").
			Unique().
			IfNotExists().
			Exec(ctx)
		return err
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping token_balances table...")
		return mghelper.DropTables(ctx, db, &dao.TokenBalanceDao{})
	})
}
