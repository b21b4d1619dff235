package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/vortexartec/tola-ledger/internal/metrics"
	"github.com/vortexartec/tola-ledger/pkg/config"
)

// EVMClient implements Client against an EVM JSON-RPC node.
type EVMClient struct {
	cfg    *config.ChainConfig
	client *ethclient.Client
	signer *ecdsa.PrivateKey
	from   common.Address
	logger *zap.Logger
}

// NewEVMClient connects to the configured RPC endpoint. The signing key is
// optional; without it the client is read-only and writes return ErrNoSigner.
func NewEVMClient(cfg *config.ChainConfig, logger *zap.Logger) (*EVMClient, error) {
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chain RPC: %w", err)
	}

	c := &EVMClient{
		cfg:    cfg,
		client: client,
		logger: logger,
	}

	if cfg.SignerPrivateKey != "" {
		key, err := crypto.HexToECDSA(cfg.SignerPrivateKey)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to load signing key: %w", err)
		}
		c.signer = key
		c.from = crypto.PubkeyToAddress(key.PublicKey)
	}

	logger.Info("Connected to chain RPC",
		zap.Int64("chain_id", cfg.ChainID),
		zap.String("rpc_url", cfg.RPCURL),
		zap.Bool("signer_configured", c.signer != nil))

	return c, nil
}

// Close closes the underlying RPC connection.
func (c *EVMClient) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

func (c *EVMClient) CallContract(ctx context.Context, call Call) ([]byte, error) {
	data, err := PackCall(call)
	if err != nil {
		return nil, err
	}

	contract := common.HexToAddress(call.Contract)
	msg := ethereum.CallMsg{
		To:   &contract,
		Data: data,
	}
	if call.From != "" {
		msg.From = common.HexToAddress(call.From)
	}

	start := time.Now()
	result, err := c.client.CallContract(ctx, msg, nil)
	metrics.ChainCallDuration.WithLabelValues(call.Method).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("contract call %s failed: %w", call.Method, err)
	}
	return result, nil
}

func (c *EVMClient) SendTransaction(ctx context.Context, call Call) (string, error) {
	if c.signer == nil {
		return "", ErrNoSigner
	}

	data, err := PackCall(call)
	if err != nil {
		return "", err
	}

	// Nonce and gas price lookups count toward the submission latency.
	start := time.Now()
	defer func() {
		metrics.ChainCallDuration.WithLabelValues(call.Method).Observe(time.Since(start).Seconds())
	}()

	nonce, err := c.client.PendingNonceAt(ctx, c.from)
	if err != nil {
		return "", fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := c.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to suggest gas price: %w", err)
	}

	gasLimit := call.GasLimit
	if gasLimit == 0 {
		gasLimit = c.cfg.GasLimit
	}

	contract := common.HexToAddress(call.Contract)
	tx := types.NewTransaction(nonce, contract, big.NewInt(0), gasLimit, gasPrice, data)

	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(big.NewInt(c.cfg.ChainID)), c.signer)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := c.client.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("failed to submit %s transaction: %w", call.Method, err)
	}

	hash := signedTx.Hash().Hex()
	c.logger.Info("Transaction submitted",
		zap.String("method", call.Method),
		zap.String("contract", call.Contract),
		zap.String("tx_hash", hash))

	return hash, nil
}

func (c *EVMClient) TxStatus(ctx context.Context, txHash string) (TxState, error) {
	receipt, err := c.client.TransactionReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return TxPending, nil
		}
		return TxPending, fmt.Errorf("failed to get receipt for %s: %w", txHash, err)
	}

	if receipt.Status == types.ReceiptStatusSuccessful {
		return TxSuccess, nil
	}
	return TxFailed, nil
}
