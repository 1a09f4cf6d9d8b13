package escrow

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/jpillora/backoff"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const escrowAbiJson = `[
	{"type":"function","name":"createGame","stateMutability":"nonpayable","inputs":[{"name":"gameId","type":"bytes32"}],"outputs":[]},
	{"type":"function","name":"depositUSDC","stateMutability":"nonpayable","inputs":[{"name":"gameId","type":"bytes32"},{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"distributePayout","stateMutability":"nonpayable","inputs":[{"name":"gameId","type":"bytes32"},{"name":"players","type":"address[]"},{"name":"usdcAmounts","type":"uint256[]"},{"name":"ethAmounts","type":"uint256[]"}],"outputs":[]}
]`

const erc20AbiJson = `[
	{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`

// EthClient talks to the escrow contract over JSON-RPC. It builds and
// submits raw transactions signed by whichever Signer the caller supplies.
type EthClient struct {
	rpc           *ethclient.Client
	chainId       *big.Int
	escrowAddress common.Address
	tokenAddress  common.Address
	escrowAbi     abi.ABI
	erc20Abi      abi.ABI
}

func NewEthClient(ctx context.Context) (*EthClient, error) {
	rpcUrl := viper.Get("ETH_RPC_URL").(string)
	rpc, err := ethclient.DialContext(ctx, rpcUrl)
	if err != nil {
		return nil, fmt.Errorf("cannot dial rpc node %s: %w", rpcUrl, err)
	}

	chainId, err := rpc.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot read chain id: %w", err)
	}

	escrowAbi, err := abi.JSON(strings.NewReader(escrowAbiJson))
	if err != nil {
		return nil, err
	}
	erc20Abi, err := abi.JSON(strings.NewReader(erc20AbiJson))
	if err != nil {
		return nil, err
	}

	return &EthClient{
		rpc:           rpc,
		chainId:       chainId,
		escrowAddress: common.HexToAddress(viper.Get("POKER_ESCROW_ADDRESS").(string)),
		tokenAddress:  common.HexToAddress(viper.Get("USDC_ADDRESS").(string)),
		escrowAbi:     escrowAbi,
		erc20Abi:      erc20Abi,
	}, nil
}

func (c *EthClient) CreateGame(ctx context.Context, gameId string, signer Signer) (string, error) {
	slot, err := OnchainGameId(gameId)
	if err != nil {
		return "", err
	}
	data, err := c.escrowAbi.Pack("createGame", slot)
	if err != nil {
		return "", err
	}
	return c.submit(ctx, signer, c.escrowAddress, data)
}

func (c *EthClient) Approve(ctx context.Context, amount int64, signer Signer) (string, error) {
	data, err := c.erc20Abi.Pack("approve", c.escrowAddress, big.NewInt(amount))
	if err != nil {
		return "", err
	}
	return c.submit(ctx, signer, c.tokenAddress, data)
}

func (c *EthClient) Deposit(ctx context.Context, gameId string, amount int64, signer Signer) (string, error) {
	slot, err := OnchainGameId(gameId)
	if err != nil {
		return "", err
	}
	data, err := c.escrowAbi.Pack("depositUSDC", slot, big.NewInt(amount))
	if err != nil {
		return "", err
	}
	return c.submit(ctx, signer, c.escrowAddress, data)
}

func (c *EthClient) DistributePayout(ctx context.Context, gameId string, players []common.Address, usdcAmounts []int64, ethAmounts []int64, signer Signer) (string, error) {
	slot, err := OnchainGameId(gameId)
	if err != nil {
		return "", err
	}
	usdc := make([]*big.Int, len(usdcAmounts))
	for i, amount := range usdcAmounts {
		usdc[i] = big.NewInt(amount)
	}
	eth := make([]*big.Int, len(ethAmounts))
	for i, amount := range ethAmounts {
		eth[i] = big.NewInt(amount)
	}
	data, err := c.escrowAbi.Pack("distributePayout", slot, players, usdc, eth)
	if err != nil {
		return "", err
	}
	return c.submit(ctx, signer, c.escrowAddress, data)
}

func (c *EthClient) Allowance(ctx context.Context, owner common.Address) (int64, error) {
	return c.readUint(ctx, c.erc20Abi, "allowance", owner, c.escrowAddress)
}

func (c *EthClient) BalanceOf(ctx context.Context, owner common.Address) (int64, error) {
	return c.readUint(ctx, c.erc20Abi, "balanceOf", owner)
}

// WaitForConfirmation polls for the receipt with capped exponential
// backoff. There is no hard deadline of its own; cancellation comes from
// the caller's context.
func (c *EthClient) WaitForConfirmation(ctx context.Context, txHash string) (*Receipt, error) {
	b := &backoff.Backoff{
		Min:    500 * time.Millisecond,
		Max:    15 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	hash := common.HexToHash(txHash)
	for {
		receipt, err := c.rpc.TransactionReceipt(ctx, hash)
		if err == nil {
			if receipt.Status == types.ReceiptStatusFailed {
				return nil, NewError(CodeReverted, fmt.Errorf("transaction %s reverted", txHash))
			}
			return &Receipt{
				TxHash:      txHash,
				BlockNumber: receipt.BlockNumber.Uint64(),
			}, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			log.Warn().Err(err).Msg("receipt poll failed, retrying")
		}

		select {
		case <-ctx.Done():
			return nil, NewError(CodeNetwork, ctx.Err())
		case <-time.After(b.Duration()):
		}
	}
}

func (c *EthClient) submit(ctx context.Context, signer Signer, to common.Address, data []byte) (string, error) {
	from := signer.Address()

	nonce, err := c.rpc.PendingNonceAt(ctx, from)
	if err != nil {
		return "", classify(err)
	}
	gasPrice, err := c.rpc.SuggestGasPrice(ctx)
	if err != nil {
		return "", classify(err)
	}
	gasLimit, err := c.rpc.EstimateGas(ctx, ethereum.CallMsg{
		From: from,
		To:   &to,
		Data: data,
	})
	if err != nil {
		return "", classify(err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       &to,
		Data:     data,
	})

	signed, err := signer.SignTx(ctx, tx, c.chainId)
	if err != nil {
		return "", classify(err)
	}

	if err := c.rpc.SendTransaction(ctx, signed); err != nil {
		return "", classify(err)
	}
	return signed.Hash().Hex(), nil
}

func (c *EthClient) readUint(ctx context.Context, contractAbi abi.ABI, method string, args ...any) (int64, error) {
	data, err := contractAbi.Pack(method, args...)
	if err != nil {
		return 0, err
	}
	raw, err := c.rpc.CallContract(ctx, ethereum.CallMsg{
		To:   &c.tokenAddress,
		Data: data,
	}, nil)
	if err != nil {
		return 0, classify(err)
	}
	values, err := contractAbi.Unpack(method, raw)
	if err != nil {
		return 0, classify(err)
	}
	value, ok := values[0].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("unexpected %s return type %T", method, values[0])
	}
	return clampAmount(value), nil
}

// clampAmount narrows a uint256 read to the int64 micro units used
// internally. Wallets routinely grant the unlimited MaxUint256 allowance,
// which Int64() would fold into a negative number; anything above int64
// clamps to MaxInt64 so threshold comparisons stay meaningful.
func clampAmount(value *big.Int) int64 {
	if value.Sign() < 0 {
		return 0
	}
	if !value.IsInt64() {
		return math.MaxInt64
	}
	return value.Int64()
}
