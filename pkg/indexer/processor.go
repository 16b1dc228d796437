package indexer

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/openlaunch/launchpad-indexer/pkg/launch"
)

// priceScale is the number of fractional digits kept when deriving the price
// from a trade's implied exchange rate.
const priceScale = 10

// EntityTx is the transactional surface the processor mutates. *store.Tx
// satisfies it; tests substitute an in-memory implementation.
type EntityTx interface {
	FindOrCreateUser(ctx context.Context, address string) (*launch.User, error)
	TokenByAddress(ctx context.Context, address string) (*launch.Token, error)
	InsertToken(ctx context.Context, token *launch.Token) error
	UpdateTokenAggregates(ctx context.Context, tokenID int64, supply, price, marketCap decimal.Decimal) error
	MarkTokenWinner(ctx context.Context, tokenID int64) error
	BalanceFor(ctx context.Context, userID, tokenID int64) (*launch.TokenBalance, error)
	InsertBalance(ctx context.Context, balance *launch.TokenBalance) error
	UpdateBalance(ctx context.Context, balanceID int64, balance decimal.Decimal) error
	InsertTrade(ctx context.Context, trade *launch.Trade) error
	LatestCompetition(ctx context.Context, sourceAddress string) (*launch.Competition, error)
	CompetitionByOnchainID(ctx context.Context, sourceAddress string, competitionID uint64) (*launch.Competition, error)
	InsertCompetition(ctx context.Context, c *launch.Competition) error
	CompleteCompetition(ctx context.Context, competitionRowID int64, endTimestamp uint64) error
	SetCompetitionWinner(ctx context.Context, competitionRowID, tokenID int64) error
	InsertBurn(ctx context.Context, burn *launch.TokenBurn) error
	InsertLiquidity(ctx context.Context, lp *launch.LiquidityProvision) error
	InsertWinnerFact(ctx context.Context, w *launch.TokenWinner) error
	GetCursor(ctx context.Context, sourceAddress string) (*launch.Cursor, error)
	SaveCursor(ctx context.Context, sourceAddress string, block uint64) error
}

// SenderLookup recovers the sender of the transaction a log was emitted in.
type SenderLookup interface {
	TransactionSender(ctx context.Context, blockHash common.Hash, txIndex uint) (common.Address, error)
}

// MetadataLoader fetches a token's off-chain metadata document, best-effort.
type MetadataLoader interface {
	Fetch(ctx context.Context, uri string) *launch.TokenMetadata
}

// Processor applies decoded events, in order, against one transaction.
type Processor struct {
	source        string
	tokenDecimals int
	senders       SenderLookup
	metadata      MetadataLoader
	logger        *zap.Logger
}

// NewProcessor creates a processor for one source contract.
func NewProcessor(source string, tokenDecimals int, senders SenderLookup, metadata MetadataLoader, logger *zap.Logger) *Processor {
	return &Processor{
		source:        strings.ToLower(source),
		tokenDecimals: tokenDecimals,
		senders:       senders,
		metadata:      metadata,
		logger:        logger,
	}
}

func addr(a common.Address) string {
	return strings.ToLower(a.Hex())
}

// Apply runs every event through its handler. The first error aborts; the
// caller rolls the transaction back.
func (p *Processor) Apply(ctx context.Context, tx EntityTx, events []Event) error {
	for _, ev := range events {
		var err error
		switch e := ev.(type) {
		case *TokenCreatedEvent:
			err = p.handleTokenCreated(ctx, tx, e)
		case *TradeEvent:
			err = p.handleTrade(ctx, tx, e)
		case *NewCompetitionEvent:
			err = p.handleNewCompetition(ctx, tx, e)
		case *SetWinnerEvent:
			err = p.handleSetWinner(ctx, tx, e)
		case *BurnEvent:
			err = p.handleBurn(ctx, tx, e)
		case *LiquidityEvent:
			err = p.handleLiquidity(ctx, tx, e)
		default:
			err = fmt.Errorf("unhandled event type %T", ev)
		}
		if err != nil {
			return fmt.Errorf("%s at block %d tx %s: %w",
				ev.Kind(), ev.Meta().BlockNumber, ev.Meta().TxHash.Hex(), err)
		}
	}
	return nil
}

func (p *Processor) handleTokenCreated(ctx context.Context, tx EntityTx, ev *TokenCreatedEvent) error {
	creator, err := tx.FindOrCreateUser(ctx, addr(ev.Creator))
	if err != nil {
		return err
	}

	// A token joins the currently open competition; tokens launched before
	// the first competition belong to none.
	var competitionID *int64
	latest, err := tx.LatestCompetition(ctx, p.source)
	if err != nil {
		return err
	}
	if latest != nil {
		if latest.IsCompleted {
			return inconsistentf("token %s created while latest competition %d is closed",
				addr(ev.Token), latest.CompetitionID)
		}
		competitionID = &latest.ID
	}

	token := &launch.Token{
		Address:       addr(ev.Token),
		TxHash:        ev.TxHash.Hex(),
		BlockNumber:   ev.BlockNumber,
		Name:          ev.Name,
		Symbol:        ev.Symbol,
		MetadataURI:   ev.MetadataURI,
		Metadata:      p.metadata.Fetch(ctx, ev.MetadataURI),
		CreatorID:     creator.ID,
		CompetitionID: competitionID,
		TotalSupply:   decimal.Zero,
		Price:         decimal.Zero,
		MarketCap:     decimal.Zero,
		IsEnabled:     true,
		Timestamp:     ev.Timestamp,
	}
	return tx.InsertToken(ctx, token)
}

func (p *Processor) handleTrade(ctx context.Context, tx EntityTx, ev *TradeEvent) error {
	token, err := tx.TokenByAddress(ctx, addr(ev.Token))
	if err != nil {
		return err
	}
	if token == nil {
		return inconsistentf("trade references unknown token %s", addr(ev.Token))
	}

	sender, err := p.senders.TransactionSender(ctx, ev.BlockHash, ev.TxIndex)
	if err != nil {
		return err
	}
	user, err := tx.FindOrCreateUser(ctx, addr(sender))
	if err != nil {
		return err
	}

	amountIn := decimal.NewFromBigInt(ev.AmountIn, 0)
	amountOut := decimal.NewFromBigInt(ev.AmountOut, 0)

	// Token quantity and native quantity depend on direction.
	var tokenAmount, nativeAmount decimal.Decimal
	if ev.Type == launch.TradeBuy {
		nativeAmount, tokenAmount = amountIn, amountOut
	} else {
		tokenAmount, nativeAmount = amountIn, amountOut
	}

	newSupply := token.TotalSupply
	if ev.Type == launch.TradeBuy {
		newSupply = newSupply.Add(tokenAmount)
	} else {
		newSupply = newSupply.Sub(tokenAmount)
	}
	if newSupply.IsNegative() {
		return inconsistentf("token %s supply would go negative (%s)", token.Address, newSupply)
	}

	if err := p.applyBalanceDelta(ctx, tx, user.ID, token, ev.Type, tokenAmount); err != nil {
		return err
	}

	// The latest trade's implied exchange rate sets the price. A trade with a
	// zero token quantity carries no rate; keep the previous one.
	price := token.Price
	if !tokenAmount.IsZero() {
		price = nativeAmount.DivRound(tokenAmount, priceScale)
	} else {
		p.logger.Warn("Trade with zero token amount, keeping previous price",
			zap.String("token", token.Address),
			zap.String("tx_hash", ev.TxHash.Hex()))
	}

	marketCap := price.Mul(newSupply.Shift(int32(-p.tokenDecimals)))
	if marketCap.IsNegative() {
		return inconsistentf("token %s market cap would go negative (%s)", token.Address, marketCap)
	}

	trade := &launch.Trade{
		TxHash:      ev.TxHash.Hex(),
		BlockNumber: ev.BlockNumber,
		Type:        ev.Type,
		UserID:      user.ID,
		TokenID:     token.ID,
		AmountIn:    amountIn,
		AmountOut:   amountOut,
		Price:       price,
		Fee:         decimal.NewFromBigInt(ev.Fee, 0),
		Timestamp:   ev.Timestamp,
	}
	if err := tx.InsertTrade(ctx, trade); err != nil {
		return err
	}

	return tx.UpdateTokenAggregates(ctx, token.ID, newSupply, price, marketCap)
}

func (p *Processor) applyBalanceDelta(ctx context.Context, tx EntityTx, userID int64, token *launch.Token, tradeType launch.TradeType, tokenAmount decimal.Decimal) error {
	balance, err := tx.BalanceFor(ctx, userID, token.ID)
	if err != nil {
		return err
	}

	if tradeType == launch.TradeBuy {
		if balance == nil {
			return tx.InsertBalance(ctx, &launch.TokenBalance{
				UserID:  userID,
				TokenID: token.ID,
				Balance: tokenAmount,
			})
		}
		return tx.UpdateBalance(ctx, balance.ID, balance.Balance.Add(tokenAmount))
	}

	if balance == nil {
		return inconsistentf("sell of token %s by user %d with no balance", token.Address, userID)
	}
	newBalance := balance.Balance.Sub(tokenAmount)
	if newBalance.IsNegative() {
		return inconsistentf("sell of token %s by user %d exceeds balance (%s < %s)",
			token.Address, userID, balance.Balance, tokenAmount)
	}
	return tx.UpdateBalance(ctx, balance.ID, newBalance)
}

func (p *Processor) handleNewCompetition(ctx context.Context, tx EntityTx, ev *NewCompetitionEvent) error {
	latest, err := tx.LatestCompetition(ctx, p.source)
	if err != nil {
		return err
	}

	if latest != nil {
		if latest.CompetitionID >= ev.CompetitionID {
			return inconsistentf("competition %d started after competition %d",
				ev.CompetitionID, latest.CompetitionID)
		}
		if !latest.IsCompleted {
			if err := tx.CompleteCompetition(ctx, latest.ID, ev.Timestamp); err != nil {
				return err
			}
		}
	}

	// The on-chain counter may start at 1 or 2 depending on deployment, but
	// beyond that every competition must follow its predecessor.
	if ev.CompetitionID > 2 {
		prev, err := tx.CompetitionByOnchainID(ctx, p.source, ev.CompetitionID-1)
		if err != nil {
			return err
		}
		if prev == nil {
			return inconsistentf("competition %d has no predecessor %d",
				ev.CompetitionID, ev.CompetitionID-1)
		}
	}

	return tx.InsertCompetition(ctx, &launch.Competition{
		CompetitionID:  ev.CompetitionID,
		SourceAddress:  p.source,
		TxHash:         ev.TxHash.Hex(),
		BlockNumber:    ev.BlockNumber,
		TimestampStart: ev.Timestamp,
	})
}

func (p *Processor) handleSetWinner(ctx context.Context, tx EntityTx, ev *SetWinnerEvent) error {
	// The contract emits the zero address when a competition ends without a
	// qualifying token. Nothing to record.
	if ev.Winner == (common.Address{}) {
		p.logger.Info("Competition ended without a winner",
			zap.Uint64("competition_id", ev.CompetitionID))
		return nil
	}

	token, err := tx.TokenByAddress(ctx, addr(ev.Winner))
	if err != nil {
		return err
	}
	if token == nil {
		return inconsistentf("winner references unknown token %s", addr(ev.Winner))
	}

	competition, err := tx.CompetitionByOnchainID(ctx, p.source, ev.CompetitionID)
	if err != nil {
		return err
	}
	if competition == nil {
		return inconsistentf("winner set for unknown competition %d", ev.CompetitionID)
	}
	if competition.WinnerTokenID != nil {
		return inconsistentf("competition %d already has winner token %d",
			ev.CompetitionID, *competition.WinnerTokenID)
	}

	if err := tx.MarkTokenWinner(ctx, token.ID); err != nil {
		return err
	}
	if err := tx.SetCompetitionWinner(ctx, competition.ID, token.ID); err != nil {
		return err
	}
	return tx.InsertWinnerFact(ctx, &launch.TokenWinner{
		TokenID:       token.ID,
		CompetitionID: ev.CompetitionID,
		TxHash:        ev.TxHash.Hex(),
		BlockNumber:   ev.BlockNumber,
		Timestamp:     ev.Timestamp,
	})
}

func (p *Processor) handleBurn(ctx context.Context, tx EntityTx, ev *BurnEvent) error {
	sender, err := tx.FindOrCreateUser(ctx, addr(ev.Sender))
	if err != nil {
		return err
	}

	token, err := tx.TokenByAddress(ctx, addr(ev.Token))
	if err != nil {
		return err
	}
	if token == nil {
		return inconsistentf("burn references unknown token %s", addr(ev.Token))
	}

	winnerToken, err := tx.TokenByAddress(ctx, addr(ev.WinnerToken))
	if err != nil {
		return err
	}
	if winnerToken == nil {
		return inconsistentf("burn references unknown winner token %s", addr(ev.WinnerToken))
	}

	// Pure append. Supplies and balances track buy/sell events only; the
	// burn-and-mint exchange is recorded as a fact row and nothing else.
	return tx.InsertBurn(ctx, &launch.TokenBurn{
		TxHash:         ev.TxHash.Hex(),
		BlockNumber:    ev.BlockNumber,
		SenderID:       sender.ID,
		TokenID:        token.ID,
		WinnerTokenID:  winnerToken.ID,
		BurnedAmount:   decimal.NewFromBigInt(ev.BurnedAmount, 0),
		ReceivedNative: decimal.NewFromBigInt(ev.ReceivedETH, 0),
		MintedAmount:   decimal.NewFromBigInt(ev.MintedAmount, 0),
		Timestamp:      ev.Timestamp,
	})
}

func (p *Processor) handleLiquidity(ctx context.Context, tx EntityTx, ev *LiquidityEvent) error {
	token, err := tx.TokenByAddress(ctx, addr(ev.Token))
	if err != nil {
		return err
	}
	if token == nil {
		return inconsistentf("liquidity references unknown token %s", addr(ev.Token))
	}

	creator, err := tx.FindOrCreateUser(ctx, addr(ev.MintedTo))
	if err != nil {
		return err
	}

	return tx.InsertLiquidity(ctx, &launch.LiquidityProvision{
		TxHash:      ev.TxHash.Hex(),
		BlockNumber: ev.BlockNumber,
		TokenID:     token.ID,
		CreatorID:   creator.ID,
		Pool:        addr(ev.Pool),
		Sender:      addr(ev.Sender),
		PositionID:  decimal.NewFromBigInt(ev.PositionID, 0),
		Liquidity:   decimal.NewFromBigInt(ev.Liquidity, 0),
		Amount0:     decimal.NewFromBigInt(ev.Amount0, 0),
		Amount1:     decimal.NewFromBigInt(ev.Amount1, 0),
		Timestamp:   ev.Timestamp,
	})
}
