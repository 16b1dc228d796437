package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/openlaunch/launchpad-indexer/pkg/launch"
	"github.com/openlaunch/launchpad-indexer/pkg/store/dao"
)

// BalanceFor retrieves the holding of one user in one token.
// Returns nil when the user has never bought the token.
func (t *Tx) BalanceFor(ctx context.Context, userID, tokenID int64) (*launch.TokenBalance, error) {
	d := new(dao.TokenBalanceDao)
	err := t.db.NewSelect().
		Model(d).
		Where("user_id = ?", userID).
		Where("token_id = ?", tokenID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return toBalance(d)
}

// InsertBalance creates a balance row and fills in its assigned id.
func (t *Tx) InsertBalance(ctx context.Context, balance *launch.TokenBalance) error {
	d := &dao.TokenBalanceDao{
		UserID:  balance.UserID,
		TokenID: balance.TokenID,
		Balance: balance.Balance.String(),
	}
	_, err := t.db.NewInsert().
		Model(d).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert balance: %w", err)
	}
	balance.ID = d.ID
	return nil
}

// UpdateBalance sets the holding of an existing balance row.
func (t *Tx) UpdateBalance(ctx context.Context, balanceID int64, balance decimal.Decimal) error {
	_, err := t.db.NewUpdate().
		Model((*dao.TokenBalanceDao)(nil)).
		Set("balance = ?", balance.String()).
		Set("updated_at = NOW()").
		Where("id = ?", balanceID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	return nil
}
