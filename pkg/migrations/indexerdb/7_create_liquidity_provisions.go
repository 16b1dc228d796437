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
		log.Println("creating liquidity_provisions table...")
		if err := mghelper.CreateSchema(ctx, db, &dao.LiquidityProvisionDao{}); err != nil {
			return err
		}
		// Create indexes
		return mghelper.CreateModelIndexes(ctx, db, &dao.LiquidityProvisionDao{}, "token_id")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping liquidity_provisions table...")
		return mghelper.DropTables(ctx, db, &dao.LiquidityProvisionDao{})
	})
}
