package escrow

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrNoSigner is returned by a SignerProvider when the participant has no
// connected or registered wallet.
var ErrNoSigner = errors.New("escrow: no signer available for participant")

// Signer is the wallet transport behind a participant's address. The
// custodial implementation lives in internal/keymgmt; a remote
// wallet-connector transport satisfies the same interface and reports a
// declined signature as CodeUserRejected.
type Signer interface {
	Address() common.Address
	SignTx(ctx context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// SignerProvider resolves a participant to their wallet transport.
type SignerProvider interface {
	SignerFor(ctx context.Context, fid int64) (Signer, error)
}
