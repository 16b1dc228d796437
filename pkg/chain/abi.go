package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// launchpadABI covers the events emitted by the token-factory contract plus the
// competition functions the scheduler calls. Event payloads carry no indexed
// arguments; logs are filtered by topic0 only.
const launchpadABI = `[
  {
    "type": "event",
    "name": "TokenCreated",
    "inputs": [
      {"name": "token", "type": "address"},
      {"name": "name", "type": "string"},
      {"name": "symbol", "type": "string"},
      {"name": "metadataURI", "type": "string"},
      {"name": "creator", "type": "address"},
      {"name": "timestamp", "type": "uint256"}
    ],
    "anonymous": false
  },
  {
    "type": "event",
    "name": "TokenBuy",
    "inputs": [
      {"name": "token", "type": "address"},
      {"name": "amountIn", "type": "uint256"},
      {"name": "amountOut", "type": "uint256"},
      {"name": "fee", "type": "uint256"},
      {"name": "timestamp", "type": "uint256"}
    ],
    "anonymous": false
  },
  {
    "type": "event",
    "name": "TokenSell",
    "inputs": [
      {"name": "token", "type": "address"},
      {"name": "amountIn", "type": "uint256"},
      {"name": "amountOut", "type": "uint256"},
      {"name": "fee", "type": "uint256"},
      {"name": "timestamp", "type": "uint256"}
    ],
    "anonymous": false
  },
  {
    "type": "event",
    "name": "NewCompetitionStarted",
    "inputs": [
      {"name": "competitionId", "type": "uint256"},
      {"name": "timestamp", "type": "uint256"}
    ],
    "anonymous": false
  },
  {
    "type": "event",
    "name": "SetWinner",
    "inputs": [
      {"name": "winner", "type": "address"},
      {"name": "competitionId", "type": "uint256"},
      {"name": "timestamp", "type": "uint256"}
    ],
    "anonymous": false
  },
  {
    "type": "event",
    "name": "BurnTokenAndMintWinner",
    "inputs": [
      {"name": "sender", "type": "address"},
      {"name": "token", "type": "address"},
      {"name": "winnerToken", "type": "address"},
      {"name": "burnedAmount", "type": "uint256"},
      {"name": "receivedETH", "type": "uint256"},
      {"name": "mintedAmount", "type": "uint256"},
      {"name": "timestamp", "type": "uint256"}
    ],
    "anonymous": false
  },
  {
    "type": "event",
    "name": "WinnerLiquidityAdded",
    "inputs": [
      {"name": "tokenAddress", "type": "address"},
      {"name": "mintedTo", "type": "address"},
      {"name": "poolAddress", "type": "address"},
      {"name": "sender", "type": "address"},
      {"name": "positionId", "type": "uint256"},
      {"name": "liquidity", "type": "uint256"},
      {"name": "amount0", "type": "uint256"},
      {"name": "amount1", "type": "uint256"},
      {"name": "timestamp", "type": "uint256"}
    ],
    "anonymous": false
  },
  {
    "type": "function",
    "name": "startNewCompetition",
    "inputs": [],
    "outputs": [],
    "stateMutability": "nonpayable"
  },
  {
    "type": "function",
    "name": "setWinnerByCompetitionId",
    "inputs": [{"name": "competitionId", "type": "uint256"}],
    "outputs": [],
    "stateMutability": "nonpayable"
  },
  {
    "type": "function",
    "name": "collateralOf",
    "inputs": [{"name": "token", "type": "address"}],
    "outputs": [{"name": "", "type": "uint256"}],
    "stateMutability": "view"
  }
]`

// LaunchpadABI is the parsed contract ABI shared by the fetcher, decoder and scheduler.
var LaunchpadABI = mustParseABI(launchpadABI)

// Topic0 hashes of the tracked events, in processing order.
var (
	TopicTokenCreated           = LaunchpadABI.Events["TokenCreated"].ID
	TopicTokenBuy               = LaunchpadABI.Events["TokenBuy"].ID
	TopicTokenSell              = LaunchpadABI.Events["TokenSell"].ID
	TopicNewCompetitionStarted  = LaunchpadABI.Events["NewCompetitionStarted"].ID
	TopicSetWinner              = LaunchpadABI.Events["SetWinner"].ID
	TopicBurnTokenAndMintWinner = LaunchpadABI.Events["BurnTokenAndMintWinner"].ID
	TopicWinnerLiquidityAdded   = LaunchpadABI.Events["WinnerLiquidityAdded"].ID
)

// Topics returns all tracked topic0 hashes. One eth_getLogs query is issued
// per (sub-range, topic) pair.
func Topics() []common.Hash {
	return []common.Hash{
		TopicTokenCreated,
		TopicTokenBuy,
		TopicTokenSell,
		TopicNewCompetitionStarted,
		TopicSetWinner,
		TopicBurnTokenAndMintWinner,
		TopicWinnerLiquidityAdded,
	}
}

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}
