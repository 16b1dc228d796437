package indexer

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/openlaunch/launchpad-indexer/pkg/launch"
)

const testSource = "0xfacefacefacefacefacefacefacefacefaceface"

var (
	tokenAddr   = common.HexToAddress("0x1111111111111111111111111111111111111111")
	winnerAddr  = common.HexToAddress("0x2222222222222222222222222222222222222222")
	creatorAddr = common.HexToAddress("0x3333333333333333333333333333333333333333")
	traderAddr  = common.HexToAddress("0x4444444444444444444444444444444444444444")
)

func newTestProcessor() *Processor {
	return NewProcessor(testSource, 0, fixedSender{addr: traderAddr}, nilMetadata{}, zap.NewNop())
}

func createdEvent(token common.Address, block uint64) *TokenCreatedEvent {
	return &TokenCreatedEvent{
		EventMeta:   EventMeta{BlockNumber: block, TxHash: common.HexToHash("0x01")},
		Token:       token,
		Name:        "Test Token",
		Symbol:      "TST",
		MetadataURI: "https://meta.example/t.json",
		Creator:     creatorAddr,
		Timestamp:   1700000000,
	}
}

func tradeEvent(tradeType launch.TradeType, token common.Address, amountIn, amountOut int64, block uint64) *TradeEvent {
	return &TradeEvent{
		EventMeta: EventMeta{BlockNumber: block, TxHash: common.HexToHash("0x02")},
		Type:      tradeType,
		Token:     token,
		AmountIn:  big.NewInt(amountIn),
		AmountOut: big.NewInt(amountOut),
		Fee:       big.NewInt(1),
		Timestamp: 1700000001,
	}
}

func competitionEvent(id, block uint64) *NewCompetitionEvent {
	return &NewCompetitionEvent{
		EventMeta:     EventMeta{BlockNumber: block, TxHash: common.HexToHash("0x03")},
		CompetitionID: id,
		Timestamp:     1700000000 + block,
	}
}

func TestTokenCreatedBeforeAnyCompetition(t *testing.T) {
	p := newTestProcessor()
	tx := newMemTx()

	err := p.Apply(context.Background(), tx, []Event{createdEvent(tokenAddr, 10)})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	token := tx.tokens[addr(tokenAddr)]
	if token == nil {
		t.Fatal("token not inserted")
	}
	if token.CompetitionID != nil {
		t.Fatalf("expected no competition link, got %d", *token.CompetitionID)
	}
	if !token.IsEnabled || token.IsWinner {
		t.Fatalf("unexpected flags: enabled=%v winner=%v", token.IsEnabled, token.IsWinner)
	}
	if !token.TotalSupply.IsZero() || !token.Price.IsZero() || !token.MarketCap.IsZero() {
		t.Fatal("expected zero aggregates on creation")
	}
	if _, ok := tx.users[addr(creatorAddr)]; !ok {
		t.Fatal("creator user not created")
	}
}

func TestTokenCreatedJoinsOpenCompetition(t *testing.T) {
	p := newTestProcessor()
	tx := newMemTx()

	err := p.Apply(context.Background(), tx, []Event{
		competitionEvent(1, 5),
		createdEvent(tokenAddr, 10),
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	token := tx.tokens[addr(tokenAddr)]
	if token.CompetitionID == nil {
		t.Fatal("expected token linked to open competition")
	}
	comp := tx.competitions[0]
	if *token.CompetitionID != comp.ID {
		t.Fatalf("token linked to %d, want %d", *token.CompetitionID, comp.ID)
	}
}

func TestTokenCreatedWithClosedCompetitionIsFatal(t *testing.T) {
	p := newTestProcessor()
	tx := newMemTx()

	if err := p.Apply(context.Background(), tx, []Event{competitionEvent(1, 5)}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	tx.competitions[0].IsCompleted = true

	err := p.Apply(context.Background(), tx, []Event{createdEvent(tokenAddr, 10)})
	if !errors.Is(err, ErrInconsistent) {
		t.Fatalf("expected ErrInconsistent, got %v", err)
	}
}

func TestBuyCreatesBalanceAndUpdatesAggregates(t *testing.T) {
	p := newTestProcessor()
	tx := newMemTx()

	err := p.Apply(context.Background(), tx, []Event{
		createdEvent(tokenAddr, 10),
		tradeEvent(launch.TradeBuy, tokenAddr, 2000, 500, 11),
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	token := tx.tokens[addr(tokenAddr)]
	if !token.TotalSupply.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("supply = %s, want 500", token.TotalSupply)
	}
	// price = 2000 / 500
	if !token.Price.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("price = %s, want 4", token.Price)
	}
	// market cap = price * supply (0 token decimals in tests)
	if !token.MarketCap.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("market cap = %s, want 2000", token.MarketCap)
	}

	trader := tx.users[addr(traderAddr)]
	if trader == nil {
		t.Fatal("trader user not created")
	}
	balance, _ := tx.BalanceFor(context.Background(), trader.ID, token.ID)
	if balance == nil || !balance.Balance.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("unexpected balance %+v", balance)
	}
	if len(tx.trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(tx.trades))
	}
}

func TestSellUpdatesSupplyAndBalance(t *testing.T) {
	p := newTestProcessor()
	tx := newMemTx()

	err := p.Apply(context.Background(), tx, []Event{
		createdEvent(tokenAddr, 10),
		tradeEvent(launch.TradeBuy, tokenAddr, 2000, 500, 11),
		tradeEvent(launch.TradeSell, tokenAddr, 200, 1000, 12),
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	token := tx.tokens[addr(tokenAddr)]
	if !token.TotalSupply.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("supply = %s, want 300", token.TotalSupply)
	}
	// sell price = native out / tokens in = 1000 / 200
	if !token.Price.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("price = %s, want 5", token.Price)
	}

	trader := tx.users[addr(traderAddr)]
	balance, _ := tx.BalanceFor(context.Background(), trader.ID, token.ID)
	if !balance.Balance.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("balance = %s, want 300", balance.Balance)
	}
}

func TestSellWithoutBalanceIsFatal(t *testing.T) {
	p := newTestProcessor()
	tx := newMemTx()

	err := p.Apply(context.Background(), tx, []Event{
		createdEvent(tokenAddr, 10),
		tradeEvent(launch.TradeSell, tokenAddr, 100, 500, 11),
	})
	if !errors.Is(err, ErrInconsistent) {
		t.Fatalf("expected ErrInconsistent, got %v", err)
	}
}

func TestSellExceedingBalanceIsFatal(t *testing.T) {
	p := newTestProcessor()
	tx := newMemTx()

	err := p.Apply(context.Background(), tx, []Event{
		createdEvent(tokenAddr, 10),
		tradeEvent(launch.TradeBuy, tokenAddr, 400, 100, 11),
		tradeEvent(launch.TradeSell, tokenAddr, 101, 400, 12),
	})
	if !errors.Is(err, ErrInconsistent) {
		t.Fatalf("expected ErrInconsistent, got %v", err)
	}
}

func TestTradeOnUnknownTokenIsFatal(t *testing.T) {
	p := newTestProcessor()
	tx := newMemTx()

	err := p.Apply(context.Background(), tx, []Event{
		tradeEvent(launch.TradeBuy, tokenAddr, 100, 50, 11),
	})
	if !errors.Is(err, ErrInconsistent) {
		t.Fatalf("expected ErrInconsistent, got %v", err)
	}
}

func TestNewCompetitionClosesPrevious(t *testing.T) {
	p := newTestProcessor()
	tx := newMemTx()

	err := p.Apply(context.Background(), tx, []Event{
		competitionEvent(1, 5),
		competitionEvent(2, 20),
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if len(tx.competitions) != 2 {
		t.Fatalf("expected 2 competitions, got %d", len(tx.competitions))
	}
	first := tx.competitions[0]
	if !first.IsCompleted {
		t.Fatal("first competition not closed")
	}
	if first.TimestampEnd == nil || *first.TimestampEnd != 1700000020 {
		t.Fatalf("unexpected end timestamp %+v", first.TimestampEnd)
	}
	second := tx.competitions[1]
	if second.IsCompleted {
		t.Fatal("second competition should be open")
	}
}

func TestNewCompetitionBootstrapAtTwo(t *testing.T) {
	p := newTestProcessor()
	tx := newMemTx()

	// Some deployments start counting at 2; no predecessor required.
	if err := p.Apply(context.Background(), tx, []Event{competitionEvent(2, 5)}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
}

func TestNewCompetitionGapIsFatal(t *testing.T) {
	p := newTestProcessor()
	tx := newMemTx()

	err := p.Apply(context.Background(), tx, []Event{
		competitionEvent(2, 5),
		competitionEvent(4, 20),
	})
	if !errors.Is(err, ErrInconsistent) {
		t.Fatalf("expected ErrInconsistent, got %v", err)
	}
}

func TestNewCompetitionOutOfOrderIsFatal(t *testing.T) {
	p := newTestProcessor()
	tx := newMemTx()

	err := p.Apply(context.Background(), tx, []Event{
		competitionEvent(2, 5),
		competitionEvent(2, 20),
	})
	if !errors.Is(err, ErrInconsistent) {
		t.Fatalf("expected ErrInconsistent, got %v", err)
	}
}

func setWinnerEvent(winner common.Address, competitionID uint64) *SetWinnerEvent {
	return &SetWinnerEvent{
		EventMeta:     EventMeta{BlockNumber: 30, TxHash: common.HexToHash("0x04")},
		Winner:        winner,
		CompetitionID: competitionID,
		Timestamp:     1700000030,
	}
}

func TestSetWinnerRecordsEverything(t *testing.T) {
	p := newTestProcessor()
	tx := newMemTx()

	err := p.Apply(context.Background(), tx, []Event{
		competitionEvent(1, 5),
		createdEvent(tokenAddr, 10),
		setWinnerEvent(tokenAddr, 1),
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	token := tx.tokens[addr(tokenAddr)]
	if !token.IsWinner {
		t.Fatal("token not marked winner")
	}
	comp := tx.competitions[0]
	if comp.WinnerTokenID == nil || *comp.WinnerTokenID != token.ID {
		t.Fatalf("competition winner = %+v, want %d", comp.WinnerTokenID, token.ID)
	}
	if len(tx.winners) != 1 {
		t.Fatalf("expected 1 winner fact, got %d", len(tx.winners))
	}
	if tx.winners[0].CompetitionID != 1 || tx.winners[0].TokenID != token.ID {
		t.Fatalf("unexpected winner fact %+v", tx.winners[0])
	}
}

func TestSetWinnerZeroAddressIsSkipped(t *testing.T) {
	p := newTestProcessor()
	tx := newMemTx()

	err := p.Apply(context.Background(), tx, []Event{
		competitionEvent(1, 5),
		setWinnerEvent(common.Address{}, 1),
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(tx.winners) != 0 {
		t.Fatal("expected no winner fact for zero address")
	}
}

func TestSetWinnerTwiceIsFatal(t *testing.T) {
	p := newTestProcessor()
	tx := newMemTx()

	err := p.Apply(context.Background(), tx, []Event{
		competitionEvent(1, 5),
		createdEvent(tokenAddr, 10),
		setWinnerEvent(tokenAddr, 1),
		setWinnerEvent(tokenAddr, 1),
	})
	if !errors.Is(err, ErrInconsistent) {
		t.Fatalf("expected ErrInconsistent, got %v", err)
	}
}

func burnEvent(sender common.Address) *BurnEvent {
	return &BurnEvent{
		EventMeta:    EventMeta{BlockNumber: 20, TxHash: common.HexToHash("0x05")},
		Sender:       sender,
		Token:        tokenAddr,
		WinnerToken:  winnerAddr,
		BurnedAmount: big.NewInt(60),
		ReceivedETH:  big.NewInt(240),
		MintedAmount: big.NewInt(30),
		Timestamp:    1700000040,
	}
}

func TestBurnAppendsFactOnly(t *testing.T) {
	p := newTestProcessor()
	tx := newMemTx()

	err := p.Apply(context.Background(), tx, []Event{
		createdEvent(tokenAddr, 10),
		createdEvent(winnerAddr, 11),
		tradeEvent(launch.TradeBuy, tokenAddr, 400, 100, 12),
	})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if err := p.Apply(context.Background(), tx, []Event{burnEvent(traderAddr)}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if len(tx.burns) != 1 {
		t.Fatalf("expected 1 burn fact, got %d", len(tx.burns))
	}
	burn := tx.burns[0]
	if !burn.BurnedAmount.Equal(decimal.NewFromInt(60)) ||
		!burn.ReceivedNative.Equal(decimal.NewFromInt(240)) ||
		!burn.MintedAmount.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("unexpected burn fact %+v", burn)
	}

	// Supplies and balances track buy/sell events only.
	trader := tx.users[addr(traderAddr)]
	loser := tx.tokens[addr(tokenAddr)]
	winner := tx.tokens[addr(winnerAddr)]
	if !loser.TotalSupply.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("loser supply = %s, want 100 untouched", loser.TotalSupply)
	}
	if !winner.TotalSupply.IsZero() {
		t.Fatalf("winner supply = %s, want 0 untouched", winner.TotalSupply)
	}
	balance, _ := tx.BalanceFor(context.Background(), trader.ID, loser.ID)
	if !balance.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("balance = %s, want 100 untouched", balance.Balance)
	}
	if winnerBalance, _ := tx.BalanceFor(context.Background(), trader.ID, winner.ID); winnerBalance != nil {
		t.Fatalf("burn must not create a winner balance row, got %+v", winnerBalance)
	}
}

func TestBurnBySenderWithoutBalanceCommits(t *testing.T) {
	p := newTestProcessor()
	tx := newMemTx()

	// The sender never traded the burned token; the fact still applies.
	err := p.Apply(context.Background(), tx, []Event{
		createdEvent(tokenAddr, 10),
		createdEvent(winnerAddr, 11),
		burnEvent(creatorAddr),
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(tx.burns) != 1 {
		t.Fatalf("expected 1 burn fact, got %d", len(tx.burns))
	}
	sender := tx.users[addr(creatorAddr)]
	if sender == nil {
		t.Fatal("burn sender not created")
	}
	if tx.burns[0].SenderID != sender.ID {
		t.Fatalf("burn sender = %d, want %d", tx.burns[0].SenderID, sender.ID)
	}
}

func TestBurnOnUnknownTokenIsFatal(t *testing.T) {
	p := newTestProcessor()
	tx := newMemTx()

	err := p.Apply(context.Background(), tx, []Event{
		createdEvent(winnerAddr, 11),
		burnEvent(traderAddr),
	})
	if !errors.Is(err, ErrInconsistent) {
		t.Fatalf("expected ErrInconsistent, got %v", err)
	}
}

func TestLiquidityRecordsFact(t *testing.T) {
	p := newTestProcessor()
	tx := newMemTx()

	err := p.Apply(context.Background(), tx, []Event{
		createdEvent(tokenAddr, 10),
		&LiquidityEvent{
			EventMeta:  EventMeta{BlockNumber: 20, TxHash: common.HexToHash("0x06")},
			Token:      tokenAddr,
			MintedTo:   creatorAddr,
			Pool:       common.HexToAddress("0x5555555555555555555555555555555555555555"),
			Sender:     traderAddr,
			PositionID: big.NewInt(7),
			Liquidity:  big.NewInt(123456),
			Amount0:    big.NewInt(111),
			Amount1:    big.NewInt(222),
			Timestamp:  1700000050,
		},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(tx.liquidity) != 1 {
		t.Fatalf("expected 1 liquidity fact, got %d", len(tx.liquidity))
	}
	lp := tx.liquidity[0]
	if !lp.PositionID.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("position id = %s, want 7", lp.PositionID)
	}
}

func TestPriceRoundedToTenDigits(t *testing.T) {
	p := newTestProcessor()
	tx := newMemTx()

	err := p.Apply(context.Background(), tx, []Event{
		createdEvent(tokenAddr, 10),
		tradeEvent(launch.TradeBuy, tokenAddr, 1, 3, 11),
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	token := tx.tokens[addr(tokenAddr)]
	want, _ := decimal.NewFromString("0.3333333333")
	if !token.Price.Equal(want) {
		t.Fatalf("price = %s, want %s", token.Price, want)
	}
}
