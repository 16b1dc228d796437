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
		log.Println("creating tokens table...")
		if err := mghelper.CreateSchema(ctx, db, &dao.TokenDao{}); err != nil {
			return err
		}
		// Create indexes
		return mghelper.CreateModelIndexes(ctx, db, &dao.TokenDao{}, "competition_id", "creator_id", "block_number")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping tokens table...")
		return mghelper.DropTables(ctx, db, &dao.TokenDao{})
	})
}
