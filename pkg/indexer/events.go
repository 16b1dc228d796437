package indexer

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/openlaunch/launchpad-indexer/pkg/chain"
	"github.com/openlaunch/launchpad-indexer/pkg/launch"
)

// EventMeta carries the chain coordinates shared by every decoded event.
type EventMeta struct {
	BlockNumber uint64
	TxIndex     uint
	LogIndex    uint
	TxHash      common.Hash
	BlockHash   common.Hash
}

// Event is one decoded launchpad log. The concrete types below form a closed
// set; the processor switches over them.
type Event interface {
	Meta() EventMeta
	Kind() string
}

// TokenCreatedEvent announces a new token launched on the bonding curve.
type TokenCreatedEvent struct {
	EventMeta
	Token       common.Address
	Name        string
	Symbol      string
	MetadataURI string
	Creator     common.Address
	Timestamp   uint64
}

// TradeEvent is a buy or sell against a token's bonding curve. For buys
// AmountIn is native currency and AmountOut tokens; for sells the reverse.
type TradeEvent struct {
	EventMeta
	Type      launch.TradeType
	Token     common.Address
	AmountIn  *big.Int
	AmountOut *big.Int
	Fee       *big.Int
	Timestamp uint64
}

// NewCompetitionEvent opens competition epoch CompetitionID, implicitly
// closing the previous one.
type NewCompetitionEvent struct {
	EventMeta
	CompetitionID uint64
	Timestamp     uint64
}

// SetWinnerEvent declares the winning token of a competition.
type SetWinnerEvent struct {
	EventMeta
	Winner        common.Address
	CompetitionID uint64
	Timestamp     uint64
}

// BurnEvent records a holder burning a losing token in exchange for minted
// winner tokens.
type BurnEvent struct {
	EventMeta
	Sender       common.Address
	Token        common.Address
	WinnerToken  common.Address
	BurnedAmount *big.Int
	ReceivedETH  *big.Int
	MintedAmount *big.Int
	Timestamp    uint64
}

// LiquidityEvent records liquidity seeded for a winner token on the DEX.
type LiquidityEvent struct {
	EventMeta
	Token      common.Address
	MintedTo   common.Address
	Pool       common.Address
	Sender     common.Address
	PositionID *big.Int
	Liquidity  *big.Int
	Amount0    *big.Int
	Amount1    *big.Int
	Timestamp  uint64
}

func (e EventMeta) Meta() EventMeta { return e }

func (TokenCreatedEvent) Kind() string   { return "token_created" }
func (TradeEvent) Kind() string          { return "trade" }
func (NewCompetitionEvent) Kind() string { return "new_competition" }
func (SetWinnerEvent) Kind() string      { return "set_winner" }
func (BurnEvent) Kind() string           { return "burn_token" }
func (LiquidityEvent) Kind() string      { return "winner_liquidity" }

func metaOf(log types.Log) EventMeta {
	return EventMeta{
		BlockNumber: log.BlockNumber,
		TxIndex:     log.TxIndex,
		LogIndex:    log.Index,
		TxHash:      log.TxHash,
		BlockHash:   log.BlockHash,
	}
}

// DecodeLog decodes one raw log into its typed event. Logs are pre-filtered
// by topic0, so an unknown topic or a payload that does not unpack is a
// decoding failure, not something to skip.
func DecodeLog(log types.Log) (Event, error) {
	if len(log.Topics) == 0 {
		return nil, fmt.Errorf("log %s has no topics", log.TxHash.Hex())
	}

	topic := log.Topics[0]
	switch topic {
	case chain.TopicTokenCreated:
		vals, err := unpack("TokenCreated", log.Data)
		if err != nil {
			return nil, err
		}
		return &TokenCreatedEvent{
			EventMeta:   metaOf(log),
			Token:       vals[0].(common.Address),
			Name:        vals[1].(string),
			Symbol:      vals[2].(string),
			MetadataURI: vals[3].(string),
			Creator:     vals[4].(common.Address),
			Timestamp:   vals[5].(*big.Int).Uint64(),
		}, nil

	case chain.TopicTokenBuy, chain.TopicTokenSell:
		name := "TokenBuy"
		tradeType := launch.TradeBuy
		if topic == chain.TopicTokenSell {
			name = "TokenSell"
			tradeType = launch.TradeSell
		}
		vals, err := unpack(name, log.Data)
		if err != nil {
			return nil, err
		}
		return &TradeEvent{
			EventMeta: metaOf(log),
			Type:      tradeType,
			Token:     vals[0].(common.Address),
			AmountIn:  vals[1].(*big.Int),
			AmountOut: vals[2].(*big.Int),
			Fee:       vals[3].(*big.Int),
			Timestamp: vals[4].(*big.Int).Uint64(),
		}, nil

	case chain.TopicNewCompetitionStarted:
		vals, err := unpack("NewCompetitionStarted", log.Data)
		if err != nil {
			return nil, err
		}
		return &NewCompetitionEvent{
			EventMeta:     metaOf(log),
			CompetitionID: vals[0].(*big.Int).Uint64(),
			Timestamp:     vals[1].(*big.Int).Uint64(),
		}, nil

	case chain.TopicSetWinner:
		vals, err := unpack("SetWinner", log.Data)
		if err != nil {
			return nil, err
		}
		return &SetWinnerEvent{
			EventMeta:     metaOf(log),
			Winner:        vals[0].(common.Address),
			CompetitionID: vals[1].(*big.Int).Uint64(),
			Timestamp:     vals[2].(*big.Int).Uint64(),
		}, nil

	case chain.TopicBurnTokenAndMintWinner:
		vals, err := unpack("BurnTokenAndMintWinner", log.Data)
		if err != nil {
			return nil, err
		}
		return &BurnEvent{
			EventMeta:    metaOf(log),
			Sender:       vals[0].(common.Address),
			Token:        vals[1].(common.Address),
			WinnerToken:  vals[2].(common.Address),
			BurnedAmount: vals[3].(*big.Int),
			ReceivedETH:  vals[4].(*big.Int),
			MintedAmount: vals[5].(*big.Int),
			Timestamp:    vals[6].(*big.Int).Uint64(),
		}, nil

	case chain.TopicWinnerLiquidityAdded:
		vals, err := unpack("WinnerLiquidityAdded", log.Data)
		if err != nil {
			return nil, err
		}
		return &LiquidityEvent{
			EventMeta:  metaOf(log),
			Token:      vals[0].(common.Address),
			MintedTo:   vals[1].(common.Address),
			Pool:       vals[2].(common.Address),
			Sender:     vals[3].(common.Address),
			PositionID: vals[4].(*big.Int),
			Liquidity:  vals[5].(*big.Int),
			Amount0:    vals[6].(*big.Int),
			Amount1:    vals[7].(*big.Int),
			Timestamp:  vals[8].(*big.Int).Uint64(),
		}, nil

	default:
		return nil, fmt.Errorf("unknown event topic %s in tx %s", topic.Hex(), log.TxHash.Hex())
	}
}

func unpack(event string, data []byte) ([]any, error) {
	vals, err := chain.LaunchpadABI.Events[event].Inputs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s event: %w", event, err)
	}
	return vals, nil
}
