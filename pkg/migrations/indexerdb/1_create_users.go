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
		log.Println("creating users table...")
		return mghelper.CreateSchema(ctx, db, &dao.UserDao{})
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping users table...")
		return mghelper.DropTables(ctx, db, &dao.UserDao{})
	})
}
