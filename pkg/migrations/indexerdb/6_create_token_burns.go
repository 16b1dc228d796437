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
		log.Println("creating token_burns table...")
		if err := mghelper.CreateSchema(ctx, db, &dao.TokenBurnDao{}); err != nil {
			return err
		}
		// Create indexes
		return mghelper.CreateModelIndexes(ctx, db, &dao.TokenBurnDao{}, "token_id", "winner_token_id")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping token_burns table...")
		return mghelper.DropTables(ctx, db, &dao.TokenBurnDao{})
	})
}
