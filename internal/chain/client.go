package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ClientConfig holds the RPC endpoint and operator key source.
type ClientConfig struct {
	RPCURL           string
	ChainID          int64
	OperatorKey      string
	EncryptedKeyPath string
	KeyPassword      string
}

// Client wraps an ethclient connection together with the operator's signing
// key. The operator account pays gas for every mint.
type Client struct {
	eth      *ethclient.Client
	chainID  *big.Int
	key      *ecdsa.PrivateKey
	operator common.Address
}

// NewClient dials the RPC endpoint, loads the operator key, and verifies the
// node is serving the configured chain.
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	keyHex, err := LoadKey(KeyConfig{
		RawPrivateKey:    cfg.OperatorKey,
		EncryptedKeyPath: cfg.EncryptedKeyPath,
		KeyPassword:      cfg.KeyPassword,
	})
	if err != nil {
		return nil, err
	}

	key, err := ethcrypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, fmt.Errorf("chain: invalid operator key: %w", err)
	}

	eth, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("chain: dial %s: %w", cfg.RPCURL, err)
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("chain: query chain id: %w", err)
	}
	if cfg.ChainID != 0 && chainID.Int64() != cfg.ChainID {
		eth.Close()
		return nil, fmt.Errorf("chain: node serves chain %d, config expects %d", chainID.Int64(), cfg.ChainID)
	}

	return &Client{
		eth:      eth,
		chainID:  chainID,
		key:      key,
		operator: ethcrypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// Operator returns the address of the account that signs mint transactions.
func (c *Client) Operator() common.Address {
	return c.operator
}

// OperatorBalance returns the operator account's native balance in wei.
func (c *Client) OperatorBalance(ctx context.Context) (*big.Int, error) {
	bal, err := c.eth.BalanceAt(ctx, c.operator, nil)
	if err != nil {
		return nil, fmt.Errorf("chain: operator balance: %w", err)
	}
	return bal, nil
}

// Close releases the RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}
