package store

import (
	"context"
	"fmt"

	"github.com/openlaunch/launchpad-indexer/pkg/launch"
)

// InsertTrade appends a trade record and fills in its assigned id.
func (t *Tx) InsertTrade(ctx context.Context, trade *launch.Trade) error {
	d := toTradeDao(trade)
	_, err := t.db.NewInsert().
		Model(d).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert trade: %w", err)
	}
	trade.ID = d.ID
	return nil
}
