package keymgmt

import (
	"context"
	"errors"

	"github.com/pokernight-labs/pokernight-backend/internal/pkg/escrow"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/ledger"
)

// CustodialSignerProvider resolves fids to their KMS-backed wallets.
type CustodialSignerProvider struct {
	store ledger.Store
}

func NewCustodialSignerProvider(store ledger.Store) *CustodialSignerProvider {
	return &CustodialSignerProvider{store: store}
}

func (p *CustodialSignerProvider) SignerFor(ctx context.Context, fid int64) (escrow.Signer, error) {
	wallet, err := p.store.WalletByFid(ctx, fid)
	if errors.Is(err, ledger.ErrNotFound) {
		return nil, escrow.ErrNoSigner
	}
	if err != nil {
		return nil, err
	}
	return NewWalletSigner(ctx, wallet.ResourceId)
}
