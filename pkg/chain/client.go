// Package chain wraps the go-ethereum client with the handful of operations
// the indexer and scheduler need: height, topic-filtered log queries, sender
// recovery, collateral view calls and signed competition transactions.
package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	gethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/openlaunch/launchpad-indexer/pkg/config"
)

// ErrTxReverted is returned by WaitMined when the transaction was mined with a
// failed status.
var ErrTxReverted = errors.New("transaction reverted")

// Client represents an Ethereum client
type Client struct {
	config     *config.EthereumConfig
	client     *ethclient.Client
	privateKey *ecdsa.PrivateKey
	address    common.Address
	logger     *zap.Logger
}

// NewClient creates a new Ethereum client. The private key is optional; it is
// only needed when the competition scheduler is enabled.
func NewClient(cfg *config.EthereumConfig, logger *zap.Logger) (*Client, error) {
	// Connect to Ethereum RPC
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ethereum RPC: %w", err)
	}

	c := &Client{
		config: cfg,
		client: client,
		logger: logger,
	}

	if cfg.PrivateKey != "" {
		privateKey, err := crypto.HexToECDSA(cfg.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("failed to load private key: %w", err)
		}
		c.privateKey = privateKey
		c.address = crypto.PubkeyToAddress(privateKey.PublicKey)
	}

	logger.Info("Connected to Ethereum",
		zap.Int64("chain_id", cfg.ChainID),
		zap.String("rpc_url", cfg.RPCURL),
		zap.String("signer_address", c.address.Hex()))

	return c, nil
}

// Close closes the Ethereum client
func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// SignerAddress returns the address of the configured signing key.
func (c *Client) SignerAddress() common.Address {
	return c.address
}

func (c *Client) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.config.RequestTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.config.RequestTimeout)
}

// CurrentHeight gets the latest block number
func (c *Client) CurrentHeight(ctx context.Context) (uint64, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	header, err := c.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block: %w", err)
	}
	return header.Number.Uint64(), nil
}

// FilterLogs queries logs emitted by the contract for a single topic0 over an
// inclusive block range.
func (c *Client) FilterLogs(ctx context.Context, contract common.Address, topic common.Hash, fromBlock, toBlock uint64) ([]types.Log, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	query := gethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{contract},
		Topics:    [][]common.Hash{{topic}},
	}

	logs, err := c.client.FilterLogs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to filter logs [%d, %d]: %w", fromBlock, toBlock, err)
	}
	return logs, nil
}

// TransactionSender recovers the sender address of a transaction identified by
// its position in a block.
func (c *Client) TransactionSender(ctx context.Context, blockHash common.Hash, txIndex uint) (common.Address, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	tx, err := c.client.TransactionInBlock(ctx, blockHash, txIndex)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to get transaction in block: %w", err)
	}

	sender, err := c.client.TransactionSender(ctx, tx, blockHash, txIndex)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover transaction sender: %w", err)
	}
	return sender, nil
}

// TokenCollateral reads the launchpad's collateral balance for a token via the
// collateralOf view function.
func (c *Client) TokenCollateral(ctx context.Context, launchpad, token common.Address) (*big.Int, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	contract := bind.NewBoundContract(launchpad, LaunchpadABI, c.client, c.client, c.client)

	var out []any
	err := contract.Call(&bind.CallOpts{Context: ctx}, &out, "collateralOf", token)
	if err != nil {
		return nil, fmt.Errorf("failed to call collateralOf: %w", err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("unexpected collateralOf output length %d", len(out))
	}
	collateral, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected collateralOf output type %T", out[0])
	}
	return collateral, nil
}

// StartCompetition submits a startNewCompetition transaction.
func (c *Client) StartCompetition(ctx context.Context, launchpad common.Address) (*types.Transaction, error) {
	return c.transact(ctx, launchpad, "startNewCompetition")
}

// SetWinner submits a setWinnerByCompetitionId transaction for the given
// on-chain competition id.
func (c *Client) SetWinner(ctx context.Context, launchpad common.Address, competitionID *big.Int) (*types.Transaction, error) {
	return c.transact(ctx, launchpad, "setWinnerByCompetitionId", competitionID)
}

func (c *Client) transact(ctx context.Context, launchpad common.Address, method string, args ...any) (*types.Transaction, error) {
	if c.privateKey == nil {
		return nil, fmt.Errorf("no signing key configured")
	}

	auth, err := c.transactor(ctx)
	if err != nil {
		return nil, err
	}

	contract := bind.NewBoundContract(launchpad, LaunchpadABI, c.client, c.client, c.client)
	tx, err := contract.Transact(auth, method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to send %s: %w", method, err)
	}

	c.logger.Info("Submitted transaction",
		zap.String("method", method),
		zap.String("tx_hash", tx.Hash().Hex()))
	return tx, nil
}

// transactor returns a transaction signer
func (c *Client) transactor(ctx context.Context) (*bind.TransactOpts, error) {
	chainID := big.NewInt(c.config.ChainID)

	auth, err := bind.NewKeyedTransactorWithChainID(c.privateKey, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}

	// Get nonce
	nonce, err := c.client.PendingNonceAt(ctx, c.address)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	auth.Context = ctx
	auth.Nonce = big.NewInt(int64(nonce))
	auth.GasLimit = c.config.GasLimit

	// Set gas price if configured
	if c.config.MaxGasPrice != "" {
		maxGasPrice := new(big.Int)
		maxGasPrice.SetString(c.config.MaxGasPrice, 10)

		gasPrice, err := c.client.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to suggest gas price: %w", err)
		}

		if gasPrice.Cmp(maxGasPrice) > 0 {
			c.logger.Warn("Suggested gas price exceeds maximum",
				zap.String("suggested", gasPrice.String()),
				zap.String("max", maxGasPrice.String()))
			auth.GasPrice = maxGasPrice
		} else {
			auth.GasPrice = gasPrice
		}
	}

	return auth, nil
}

// WaitMined polls for the transaction receipt until it is mined or the
// configured receipt timeout elapses. A mined-but-failed status returns
// ErrTxReverted.
func (c *Client) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	deadline := time.Now().Add(c.config.ReceiptTimeout)
	ticker := time.NewTicker(c.config.ReceiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.client.TransactionReceipt(ctx, tx.Hash())
		if err == nil {
			if receipt.Status != types.ReceiptStatusSuccessful {
				return receipt, fmt.Errorf("%w: %s", ErrTxReverted, tx.Hash().Hex())
			}
			return receipt, nil
		}
		if !errors.Is(err, gethereum.NotFound) {
			return nil, fmt.Errorf("failed to get receipt: %w", err)
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("timed out waiting for receipt of %s", tx.Hash().Hex())
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
