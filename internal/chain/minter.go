package chain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Skysparko/trust-ledger-backend/internal/domain"
)

// bondTokenABI is the fragment of the bond-token contract the platform
// calls. Minting is restricted on chain to the operator account.
const bondTokenABI = `[
	{
		"name": "mint",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "to", "type": "address"},
			{"name": "amount", "type": "uint256"}
		],
		"outputs": []
	}
]`

// gasHeadroomPct is added on top of the node's gas estimate so a mint does
// not fail on a slightly stale estimate.
const gasHeadroomPct = 20

// Minter implements domain.Minter against a bond-token contract. Each Mint
// call makes exactly one transaction attempt; the caller decides whether a
// failed mint is retried later.
type Minter struct {
	client *Client
	abi    abi.ABI
	logger *slog.Logger
}

// NewMinter creates a Minter that signs with the client's operator key.
func NewMinter(client *Client, logger *slog.Logger) (*Minter, error) {
	parsed, err := abi.JSON(strings.NewReader(bondTokenABI))
	if err != nil {
		return nil, fmt.Errorf("chain: parse bond token abi: %w", err)
	}
	return &Minter{client: client, abi: parsed, logger: logger}, nil
}

// Mint mints bondCount bonds to the investor's wallet and returns the
// transaction hash. It validates both addresses, checks that code is
// deployed at the contract address, and verifies the operator can cover the
// gas before sending.
func (m *Minter) Mint(ctx context.Context, contractAddress, toWallet string, bondCount int64) (string, error) {
	if !common.IsHexAddress(contractAddress) {
		return "", fmt.Errorf("chain: contract %q: %w", contractAddress, domain.ErrInvalidAddress)
	}
	if !common.IsHexAddress(toWallet) {
		return "", fmt.Errorf("chain: wallet %q: %w", toWallet, domain.ErrInvalidAddress)
	}
	if bondCount <= 0 {
		return "", fmt.Errorf("chain: bond count %d must be positive", bondCount)
	}

	contract := common.HexToAddress(contractAddress)
	to := common.HexToAddress(toWallet)

	code, err := m.client.eth.CodeAt(ctx, contract, nil)
	if err != nil {
		return "", fmt.Errorf("chain: check contract code: %w", err)
	}
	if len(code) == 0 {
		return "", fmt.Errorf("chain: no code at %s: %w", contractAddress, domain.ErrContractNotFound)
	}

	data, err := m.abi.Pack("mint", to, new(big.Int).SetInt64(bondCount))
	if err != nil {
		return "", fmt.Errorf("chain: pack mint call: %w", err)
	}

	gas, err := m.client.eth.EstimateGas(ctx, ethereum.CallMsg{
		From: m.client.operator,
		To:   &contract,
		Data: data,
	})
	if err != nil {
		return "", classifyChainErr("estimate gas", err)
	}
	gas += gas * gasHeadroomPct / 100

	gasPrice, err := m.client.eth.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("chain: suggest gas price: %w", err)
	}

	balance, err := m.client.OperatorBalance(ctx)
	if err != nil {
		return "", err
	}
	cost := new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(gas))
	if balance.Cmp(cost) < 0 {
		return "", fmt.Errorf("chain: operator %s holds %s wei, mint needs %s: %w",
			m.client.operator.Hex(), balance, cost, domain.ErrInsufficientFunds)
	}

	nonce, err := m.client.eth.PendingNonceAt(ctx, m.client.operator)
	if err != nil {
		return "", fmt.Errorf("chain: pending nonce: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &contract,
		Gas:      gas,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(m.client.chainID), m.client.key)
	if err != nil {
		return "", fmt.Errorf("chain: sign mint tx: %w", err)
	}

	if err := m.client.eth.SendTransaction(ctx, signed); err != nil {
		return "", classifyChainErr("send mint tx", err)
	}

	m.logger.InfoContext(ctx, "bonds minted",
		slog.String("contract", contract.Hex()),
		slog.String("to", to.Hex()),
		slog.Int64("bonds", bondCount),
		slog.String("tx_hash", signed.Hash().Hex()),
	)

	return signed.Hash().Hex(), nil
}

// classifyChainErr maps node error strings onto the domain sentinels so
// callers can tell a funding problem from a reverting contract.
func classifyChainErr(action string, err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "insufficient funds") {
		return fmt.Errorf("chain: %s: %v: %w", action, err, domain.ErrInsufficientFunds)
	}
	return fmt.Errorf("chain: %s: %w", action, err)
}

// Compile-time interface check.
var _ domain.Minter = (*Minter)(nil)
