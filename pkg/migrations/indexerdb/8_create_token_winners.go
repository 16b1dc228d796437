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
		log.Println("creating token_winners table...")
		if err := mghelper.CreateSchema(ctx, db, &dao.TokenWinnerDao{}); err != nil {
			return err
		}
		// Create indexes
		return mghelper.CreateModelIndexes(ctx, db, &dao.TokenWinnerDao{}, "competition_id", "token_id")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping token_winners table...")
		return mghelper.DropTables(ctx, db, &dao.TokenWinnerDao{})
	})
}
