package store

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/openlaunch/launchpad-indexer/pkg/launch"
	"github.com/openlaunch/launchpad-indexer/pkg/store/dao"
)

func parseDec(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to parse %s %q: %w", field, s, err)
	}
	return d, nil
}

func optUint64(v *int64) *uint64 {
	if v == nil {
		return nil
	}
	u := uint64(*v)
	return &u
}

func optInt64(v *uint64) *int64 {
	if v == nil {
		return nil
	}
	i := int64(*v)
	return &i
}

func toUser(d *dao.UserDao) *launch.User {
	return &launch.User{
		ID:        d.ID,
		Address:   d.Address,
		CreatedAt: d.CreatedAt,
	}
}

func toTokenDao(t *launch.Token) (*dao.TokenDao, error) {
	d := &dao.TokenDao{
		ID:            t.ID,
		Address:       t.Address,
		TxHash:        t.TxHash,
		BlockNumber:   int64(t.BlockNumber),
		Name:          t.Name,
		Symbol:        t.Symbol,
		MetadataURI:   t.MetadataURI,
		CreatorID:     t.CreatorID,
		CompetitionID: t.CompetitionID,
		TotalSupply:   t.TotalSupply.String(),
		Price:         t.Price.String(),
		MarketCap:     t.MarketCap.String(),
		IsWinner:      t.IsWinner,
		IsEnabled:     t.IsEnabled,
		Timestamp:     int64(t.Timestamp),
		CreatedAt:     t.CreatedAt,
	}
	if t.Metadata != nil {
		raw, err := json.Marshal(t.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal token metadata: %w", err)
		}
		d.Metadata = raw
	}
	return d, nil
}

func toToken(d *dao.TokenDao) (*launch.Token, error) {
	supply, err := parseDec("total_supply", d.TotalSupply)
	if err != nil {
		return nil, err
	}
	price, err := parseDec("price", d.Price)
	if err != nil {
		return nil, err
	}
	marketCap, err := parseDec("market_cap", d.MarketCap)
	if err != nil {
		return nil, err
	}

	t := &launch.Token{
		ID:            d.ID,
		Address:       d.Address,
		TxHash:        d.TxHash,
		BlockNumber:   uint64(d.BlockNumber),
		Name:          d.Name,
		Symbol:        d.Symbol,
		MetadataURI:   d.MetadataURI,
		CreatorID:     d.CreatorID,
		CompetitionID: d.CompetitionID,
		TotalSupply:   supply,
		Price:         price,
		MarketCap:     marketCap,
		IsWinner:      d.IsWinner,
		IsEnabled:     d.IsEnabled,
		Timestamp:     uint64(d.Timestamp),
		CreatedAt:     d.CreatedAt,
	}
	if len(d.Metadata) > 0 {
		var meta launch.TokenMetadata
		if err := json.Unmarshal(d.Metadata, &meta); err != nil {
			return nil, fmt.Errorf("failed to unmarshal token metadata: %w", err)
		}
		t.Metadata = &meta
	}
	return t, nil
}

func toTradeDao(t *launch.Trade) *dao.TradeDao {
	return &dao.TradeDao{
		TxHash:      t.TxHash,
		BlockNumber: int64(t.BlockNumber),
		Type:        string(t.Type),
		UserID:      t.UserID,
		TokenID:     t.TokenID,
		AmountIn:    t.AmountIn.String(),
		AmountOut:   t.AmountOut.String(),
		Price:       t.Price.String(),
		Fee:         t.Fee.String(),
		Timestamp:   int64(t.Timestamp),
	}
}

func toBalance(d *dao.TokenBalanceDao) (*launch.TokenBalance, error) {
	balance, err := parseDec("balance", d.Balance)
	if err != nil {
		return nil, err
	}
	return &launch.TokenBalance{
		ID:        d.ID,
		UserID:    d.UserID,
		TokenID:   d.TokenID,
		Balance:   balance,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

func toCompetition(d *dao.CompetitionDao) *launch.Competition {
	return &launch.Competition{
		ID:             d.ID,
		CompetitionID:  uint64(d.CompetitionID),
		SourceAddress:  d.SourceAddress,
		TxHash:         d.TxHash,
		BlockNumber:    uint64(d.BlockNumber),
		TimestampStart: uint64(d.TimestampStart),
		TimestampEnd:   optUint64(d.TimestampEnd),
		IsCompleted:    d.IsCompleted,
		WinnerTokenID:  d.WinnerTokenID,
		CreatedAt:      d.CreatedAt,
	}
}

func toCompetitionDao(c *launch.Competition) *dao.CompetitionDao {
	return &dao.CompetitionDao{
		CompetitionID:  int64(c.CompetitionID),
		SourceAddress:  c.SourceAddress,
		TxHash:         c.TxHash,
		BlockNumber:    int64(c.BlockNumber),
		TimestampStart: int64(c.TimestampStart),
		TimestampEnd:   optInt64(c.TimestampEnd),
		IsCompleted:    c.IsCompleted,
		WinnerTokenID:  c.WinnerTokenID,
	}
}

func toBurnDao(b *launch.TokenBurn) *dao.TokenBurnDao {
	return &dao.TokenBurnDao{
		TxHash:         b.TxHash,
		BlockNumber:    int64(b.BlockNumber),
		SenderID:       b.SenderID,
		TokenID:        b.TokenID,
		WinnerTokenID:  b.WinnerTokenID,
		BurnedAmount:   b.BurnedAmount.String(),
		ReceivedNative: b.ReceivedNative.String(),
		MintedAmount:   b.MintedAmount.String(),
		Timestamp:      int64(b.Timestamp),
	}
}

func toLiquidityDao(l *launch.LiquidityProvision) *dao.LiquidityProvisionDao {
	return &dao.LiquidityProvisionDao{
		TxHash:      l.TxHash,
		BlockNumber: int64(l.BlockNumber),
		TokenID:     l.TokenID,
		CreatorID:   l.CreatorID,
		Pool:        l.Pool,
		Sender:      l.Sender,
		PositionID:  l.PositionID.String(),
		Liquidity:   l.Liquidity.String(),
		Amount0:     l.Amount0.String(),
		Amount1:     l.Amount1.String(),
		Timestamp:   int64(l.Timestamp),
	}
}

func toWinnerDao(w *launch.TokenWinner) *dao.TokenWinnerDao {
	return &dao.TokenWinnerDao{
		TokenID:       w.TokenID,
		CompetitionID: int64(w.CompetitionID),
		TxHash:        w.TxHash,
		BlockNumber:   int64(w.BlockNumber),
		Timestamp:     int64(w.Timestamp),
	}
}
