package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/openlaunch/launchpad-indexer/pkg/launch"
)

// memTx is an in-memory EntityTx used by processor and sweeper tests.
type memTx struct {
	nextID       int64
	users        map[string]*launch.User
	tokens       map[string]*launch.Token
	balances     map[int64]*launch.TokenBalance
	trades       []*launch.Trade
	competitions []*launch.Competition
	burns        []*launch.TokenBurn
	liquidity    []*launch.LiquidityProvision
	winners      []*launch.TokenWinner
	cursors      map[string]uint64
}

func newMemTx() *memTx {
	return &memTx{
		users:    map[string]*launch.User{},
		tokens:   map[string]*launch.Token{},
		balances: map[int64]*launch.TokenBalance{},
		cursors:  map[string]uint64{},
	}
}

func (m *memTx) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memTx) clone() *memTx {
	c := newMemTx()
	c.nextID = m.nextID
	for k, v := range m.users {
		u := *v
		c.users[k] = &u
	}
	for k, v := range m.tokens {
		t := *v
		c.tokens[k] = &t
	}
	for k, v := range m.balances {
		b := *v
		c.balances[k] = &b
	}
	for k, v := range m.cursors {
		c.cursors[k] = v
	}
	c.trades = append(c.trades, m.trades...)
	for _, v := range m.competitions {
		cc := *v
		c.competitions = append(c.competitions, &cc)
	}
	c.burns = append(c.burns, m.burns...)
	c.liquidity = append(c.liquidity, m.liquidity...)
	c.winners = append(c.winners, m.winners...)
	return c
}

func (m *memTx) FindOrCreateUser(_ context.Context, address string) (*launch.User, error) {
	if u, ok := m.users[address]; ok {
		cp := *u
		return &cp, nil
	}
	u := &launch.User{ID: m.id(), Address: address, CreatedAt: time.Now()}
	m.users[address] = u
	cp := *u
	return &cp, nil
}

func (m *memTx) TokenByAddress(_ context.Context, address string) (*launch.Token, error) {
	t, ok := m.tokens[address]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (m *memTx) InsertToken(_ context.Context, token *launch.Token) error {
	token.ID = m.id()
	cp := *token
	m.tokens[token.Address] = &cp
	return nil
}

func (m *memTx) tokenByID(id int64) *launch.Token {
	for _, t := range m.tokens {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (m *memTx) UpdateTokenAggregates(_ context.Context, tokenID int64, supply, price, marketCap decimal.Decimal) error {
	t := m.tokenByID(tokenID)
	if t == nil {
		return fmt.Errorf("no token %d", tokenID)
	}
	t.TotalSupply = supply
	t.Price = price
	t.MarketCap = marketCap
	return nil
}

func (m *memTx) MarkTokenWinner(_ context.Context, tokenID int64) error {
	t := m.tokenByID(tokenID)
	if t == nil {
		return fmt.Errorf("no token %d", tokenID)
	}
	t.IsWinner = true
	return nil
}

func (m *memTx) BalanceFor(_ context.Context, userID, tokenID int64) (*launch.TokenBalance, error) {
	for _, b := range m.balances {
		if b.UserID == userID && b.TokenID == tokenID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memTx) InsertBalance(_ context.Context, balance *launch.TokenBalance) error {
	balance.ID = m.id()
	cp := *balance
	m.balances[balance.ID] = &cp
	return nil
}

func (m *memTx) UpdateBalance(_ context.Context, balanceID int64, balance decimal.Decimal) error {
	b, ok := m.balances[balanceID]
	if !ok {
		return fmt.Errorf("no balance %d", balanceID)
	}
	b.Balance = balance
	return nil
}

func (m *memTx) InsertTrade(_ context.Context, trade *launch.Trade) error {
	trade.ID = m.id()
	cp := *trade
	m.trades = append(m.trades, &cp)
	return nil
}

func (m *memTx) LatestCompetition(_ context.Context, sourceAddress string) (*launch.Competition, error) {
	var latest *launch.Competition
	for _, c := range m.competitions {
		if c.SourceAddress != sourceAddress {
			continue
		}
		if latest == nil || c.CompetitionID > latest.CompetitionID {
			latest = c
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (m *memTx) CompetitionByOnchainID(_ context.Context, sourceAddress string, competitionID uint64) (*launch.Competition, error) {
	for _, c := range m.competitions {
		if c.SourceAddress == sourceAddress && c.CompetitionID == competitionID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memTx) InsertCompetition(_ context.Context, c *launch.Competition) error {
	c.ID = m.id()
	cp := *c
	m.competitions = append(m.competitions, &cp)
	return nil
}

func (m *memTx) competitionByRowID(id int64) *launch.Competition {
	for _, c := range m.competitions {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (m *memTx) CompleteCompetition(_ context.Context, competitionRowID int64, endTimestamp uint64) error {
	c := m.competitionByRowID(competitionRowID)
	if c == nil {
		return fmt.Errorf("no competition %d", competitionRowID)
	}
	c.IsCompleted = true
	c.TimestampEnd = &endTimestamp
	return nil
}

func (m *memTx) SetCompetitionWinner(_ context.Context, competitionRowID, tokenID int64) error {
	c := m.competitionByRowID(competitionRowID)
	if c == nil {
		return fmt.Errorf("no competition %d", competitionRowID)
	}
	c.WinnerTokenID = &tokenID
	return nil
}

func (m *memTx) InsertBurn(_ context.Context, burn *launch.TokenBurn) error {
	burn.ID = m.id()
	cp := *burn
	m.burns = append(m.burns, &cp)
	return nil
}

func (m *memTx) InsertLiquidity(_ context.Context, lp *launch.LiquidityProvision) error {
	lp.ID = m.id()
	cp := *lp
	m.liquidity = append(m.liquidity, &cp)
	return nil
}

func (m *memTx) InsertWinnerFact(_ context.Context, w *launch.TokenWinner) error {
	w.ID = m.id()
	cp := *w
	m.winners = append(m.winners, &cp)
	return nil
}

func (m *memTx) SaveCursor(_ context.Context, sourceAddress string, block uint64) error {
	m.cursors[sourceAddress] = block
	return nil
}

func (m *memTx) GetCursor(_ context.Context, sourceAddress string) (*launch.Cursor, error) {
	block, ok := m.cursors[sourceAddress]
	if !ok {
		return nil, nil
	}
	return &launch.Cursor{SourceAddress: sourceAddress, LastIndexedBlock: block}, nil
}

// memRunner gives memTx transactional semantics: fn runs against a clone that
// replaces the state only on success.
type memRunner struct {
	state *memTx
}

func (r *memRunner) RunInTx(ctx context.Context, fn func(ctx context.Context, tx EntityTx) error) error {
	attempt := r.state.clone()
	if err := fn(ctx, attempt); err != nil {
		return err
	}
	r.state = attempt
	return nil
}

// fixedSender is a SenderLookup returning one address for every transaction.
type fixedSender struct {
	addr common.Address
}

func (f fixedSender) TransactionSender(context.Context, common.Hash, uint) (common.Address, error) {
	return f.addr, nil
}

// nilMetadata is a MetadataLoader that always misses.
type nilMetadata struct{}

func (nilMetadata) Fetch(context.Context, string) *launch.TokenMetadata { return nil }
