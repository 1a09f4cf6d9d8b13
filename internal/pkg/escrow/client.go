package escrow

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Receipt is the confirmation of a mined escrow transaction.
type Receipt struct {
	TxHash      string
	BlockNumber uint64
	Reverted    bool
}

// Client is the typed surface of the on-chain escrow contract plus the
// stablecoin it pulls funds from. All amounts are micro units (1e-6).
// Write operations return the transaction hash immediately; callers decide
// when to block on WaitForConfirmation.
type Client interface {
	CreateGame(ctx context.Context, gameId string, signer Signer) (string, error)
	Approve(ctx context.Context, amount int64, signer Signer) (string, error)
	Deposit(ctx context.Context, gameId string, amount int64, signer Signer) (string, error)
	DistributePayout(ctx context.Context, gameId string, players []common.Address, usdcAmounts []int64, ethAmounts []int64, signer Signer) (string, error)
	Allowance(ctx context.Context, owner common.Address) (int64, error)
	BalanceOf(ctx context.Context, owner common.Address) (int64, error)
	WaitForConfirmation(ctx context.Context, txHash string) (*Receipt, error)
}
