// Package launch holds the domain model of the token-launch protocol:
// everything the indexer materializes from the chain's event log.
package launch

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeType represents the direction of a trade against the bonding curve.
type TradeType string

const (
	TradeBuy  TradeType = "buy"
	TradeSell TradeType = "sell"
)

// User represents an on-chain account observed by the indexer. Users are
// created lazily the first time any event references their address.
type User struct {
	ID        int64
	Address   string
	CreatedAt time.Time
}

// TokenMetadata is the off-chain JSON document referenced by the metadata URI
// emitted with a TokenCreated event. It is fetched best-effort; a nil snapshot
// means the fetch failed or returned malformed JSON.
type TokenMetadata struct {
	Name         string `json:"name"`
	Ticker       string `json:"ticker"`
	Description  string `json:"description"`
	Image        string `json:"image"`
	TwitterLink  string `json:"twitterLink"`
	TelegramLink string `json:"telegramLink"`
	WebsiteLink  string `json:"websiteLink"`
}

// Token is a launched token and its derived aggregates.
//
// TotalSupply is the running sum of net mint deltas from buy/sell events and
// must never go negative. Price and MarketCap are recomputed from the latest
// trade's implied exchange rate, never from TotalSupply alone.
type Token struct {
	ID            int64
	Address       string
	TxHash        string
	BlockNumber   uint64
	Name          string
	Symbol        string
	MetadataURI   string
	Metadata      *TokenMetadata
	CreatorID     int64
	CompetitionID *int64
	TotalSupply   decimal.Decimal
	Price         decimal.Decimal
	MarketCap     decimal.Decimal
	IsWinner      bool
	IsEnabled     bool
	Timestamp     uint64
	CreatedAt     time.Time
}

// Trade is an immutable record of a single buy or sell event, in chain order.
type Trade struct {
	ID          int64
	TxHash      string
	BlockNumber uint64
	Type        TradeType
	UserID      int64
	TokenID     int64
	AmountIn    decimal.Decimal
	AmountOut   decimal.Decimal
	Price       decimal.Decimal
	Fee         decimal.Decimal
	Timestamp   uint64
	CreatedAt   time.Time
}

// TokenBalance is the per-(user, token) holding, created lazily on first buy.
// Balance is never negative; a sell that would make it negative is a fatal
// inconsistency, not a clamp.
type TokenBalance struct {
	ID        int64
	UserID    int64
	TokenID   int64
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Competition is a time-boxed epoch during which tokens compete by collateral.
// It is closed when the next competition's start event is observed, and has at
// most one winner, set exactly once.
type Competition struct {
	ID             int64
	CompetitionID  uint64
	SourceAddress  string
	TxHash         string
	BlockNumber    uint64
	TimestampStart uint64
	TimestampEnd   *uint64
	IsCompleted    bool
	WinnerTokenID  *int64
	CreatedAt      time.Time
}

// TokenBurn is an append-only fact: a holder burned a losing token and was
// minted the winner token in exchange.
type TokenBurn struct {
	ID             int64
	TxHash         string
	BlockNumber    uint64
	SenderID       int64
	TokenID        int64
	WinnerTokenID  int64
	BurnedAmount   decimal.Decimal
	ReceivedNative decimal.Decimal
	MintedAmount   decimal.Decimal
	Timestamp      uint64
	CreatedAt      time.Time
}

// LiquidityProvision is an append-only fact: liquidity seeded for a winner
// token on the external DEX pool.
type LiquidityProvision struct {
	ID             int64
	TxHash         string
	BlockNumber    uint64
	TokenID        int64
	CreatorID      int64
	Pool           string
	Sender         string
	PositionID     decimal.Decimal
	Liquidity      decimal.Decimal
	Amount0        decimal.Decimal
	Amount1        decimal.Decimal
	Timestamp      uint64
	CreatedAt      time.Time
}

// TokenWinner is an append-only fact recording a winner selection per
// competition, kept alongside the mutable flags on Token and Competition.
type TokenWinner struct {
	ID            int64
	TokenID       int64
	CompetitionID uint64
	TxHash        string
	BlockNumber   uint64
	Timestamp     uint64
	CreatedAt     time.Time
}

// Cursor is the persisted high-water mark of the last fully-applied block for
// one tracked contract source. It advances only after all entity mutations of
// a sweep have committed, in the same transaction.
type Cursor struct {
	SourceAddress    string
	LastIndexedBlock uint64
	UpdatedAt        time.Time
}
