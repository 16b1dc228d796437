package store

import (
	"context"
	"fmt"

	"github.com/openlaunch/launchpad-indexer/pkg/launch"
)

// InsertBurn appends a burn-and-mint fact row.
func (t *Tx) InsertBurn(ctx context.Context, burn *launch.TokenBurn) error {
	d := toBurnDao(burn)
	_, err := t.db.NewInsert().
		Model(d).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert token burn: %w", err)
	}
	burn.ID = d.ID
	return nil
}

// InsertLiquidity appends a liquidity-provision fact row.
func (t *Tx) InsertLiquidity(ctx context.Context, lp *launch.LiquidityProvision) error {
	d := toLiquidityDao(lp)
	_, err := t.db.NewInsert().
		Model(d).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert liquidity provision: %w", err)
	}
	lp.ID = d.ID
	return nil
}

// InsertWinnerFact appends a winner-selection fact row.
func (t *Tx) InsertWinnerFact(ctx context.Context, w *launch.TokenWinner) error {
	d := toWinnerDao(w)
	_, err := t.db.NewInsert().
		Model(d).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert token winner: %w", err)
	}
	w.ID = d.ID
	return nil
}
