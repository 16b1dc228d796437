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
		log.Println("creating competitions table...")
		if err := mghelper.CreateSchema(ctx, db, &dao.CompetitionDao{}); err != nil {
			return err
		}
		// On-chain ids are unique per source contract
		_, err := db.NewCreateIndex().
			Model(&dao.CompetitionDao{}).
			Index("idx_competitions_source_competition").
			Column("source_address", "competition_id").
			Unique().
			IfNotExists().
			Exec(ctx)
		return err
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping competitions table...")
		return mghelper.DropTables(ctx, db, &dao.CompetitionDao{})
	})
}
