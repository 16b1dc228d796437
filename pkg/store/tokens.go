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

// TokenByAddress retrieves a token by its contract address.
// Returns nil when no such token has been indexed.
func (t *Tx) TokenByAddress(ctx context.Context, address string) (*launch.Token, error) {
	d := new(dao.TokenDao)
	err := t.db.NewSelect().
		Model(d).
		Where("address = ?", address).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return toToken(d)
}

// InsertToken creates a new token record and fills in its assigned id.
func (t *Tx) InsertToken(ctx context.Context, token *launch.Token) error {
	d, err := toTokenDao(token)
	if err != nil {
		return err
	}
	_, err = t.db.NewInsert().
		Model(d).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert token: %w", err)
	}
	token.ID = d.ID
	return nil
}

// UpdateTokenAggregates updates the running supply, price and market cap after a trade.
func (t *Tx) UpdateTokenAggregates(ctx context.Context, tokenID int64, supply, price, marketCap decimal.Decimal) error {
	_, err := t.db.NewUpdate().
		Model((*dao.TokenDao)(nil)).
		Set("total_supply = ?", supply.String()).
		Set("price = ?", price.String()).
		Set("market_cap = ?", marketCap.String()).
		Where("id = ?", tokenID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update token aggregates: %w", err)
	}
	return nil
}

// MarkTokenWinner flags a token as the winner of its competition.
func (t *Tx) MarkTokenWinner(ctx context.Context, tokenID int64) error {
	_, err := t.db.NewUpdate().
		Model((*dao.TokenDao)(nil)).
		Set("is_winner = TRUE").
		Where("id = ?", tokenID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark token winner: %w", err)
	}
	return nil
}

// DisableToken clears the moderation flag, hiding the token from competition
// listings. Event processing never calls this; it is an operator action.
func (t *Tx) DisableToken(ctx context.Context, tokenID int64) error {
	_, err := t.db.NewUpdate().
		Model((*dao.TokenDao)(nil)).
		Set("is_enabled = FALSE").
		Where("id = ?", tokenID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to disable token: %w", err)
	}
	return nil
}

// CompetitionTokens lists the enabled tokens linked to a competition row.
func (t *Tx) CompetitionTokens(ctx context.Context, competitionRowID int64) ([]*launch.Token, error) {
	var daos []dao.TokenDao
	err := t.db.NewSelect().
		Model(&daos).
		Where("competition_id = ?", competitionRowID).
		Where("is_enabled = TRUE").
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list competition tokens: %w", err)
	}
	tokens := make([]*launch.Token, len(daos))
	for i := range daos {
		tokens[i], err = toToken(&daos[i])
		if err != nil {
			return nil, err
		}
	}
	return tokens, nil
}
