package keymgmt

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// WalletSigner implements escrow.Signer on top of a KMS-held key.
type WalletSigner struct {
	resourceId string
	publicKey  *ecdsa.PublicKey
	address    common.Address
}

func NewWalletSigner(ctx context.Context, resourceId string) (*WalletSigner, error) {
	publicKey, err := GetPublicKey(ctx, resourceId)
	if err != nil {
		return nil, err
	}
	return &WalletSigner{
		resourceId: resourceId,
		publicKey:  publicKey,
		address:    crypto.PubkeyToAddress(*publicKey),
	}, nil
}

func (w *WalletSigner) Address() common.Address {
	return w.address
}

func (w *WalletSigner) SignTx(ctx context.Context, tx *types.Transaction, chainId *big.Int) (*types.Transaction, error) {
	txSigner := types.LatestSignerForChainID(chainId)
	digest := txSigner.Hash(tx)
	sig, err := SignDigest(ctx, w.resourceId, w.publicKey, digest.Bytes())
	if err != nil {
		return nil, err
	}
	return tx.WithSignature(txSigner, sig)
}
