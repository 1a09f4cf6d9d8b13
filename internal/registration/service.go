package registration

import (
	"context"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/pokernight-labs/pokernight-backend/internal/keymgmt"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/ledger"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/model"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/reject"
)

type registrationService struct {
	store ledger.Store
}

// register provisions a custodial wallet for the participant and stores the
// user row. The KMS key exists before the database writes; if the writes
// fail the key is orphaned in KMS, which costs nothing and leaks nothing.
func (s *registrationService) register(ctx context.Context, fid int64, username string) (*model.User, *reject.ProblemWithTrace) {
	if existing, err := s.store.UserByFid(ctx, fid); err == nil {
		return existing, nil
	} else if !errors.Is(err, ledger.ErrNotFound) {
		return nil, &reject.ProblemWithTrace{Problem: reject.UnexpectedProblem(err), Cause: err}
	}

	resourceId, err := keymgmt.GenerateSigningKey(ctx)
	if err != nil {
		return nil, walletProvisioningProblem(err)
	}

	publicKey, err := keymgmt.GetPublicKey(ctx, resourceId)
	if err != nil {
		return nil, walletProvisioningProblem(err)
	}

	wallet := &model.CustodialWallet{
		Id:         uuid.New().String(),
		ResourceId: resourceId,
		PublicKey:  hex.EncodeToString(crypto.FromECDSAPub(publicKey)),
		Address:    crypto.PubkeyToAddress(*publicKey).Hex(),
	}
	user := &model.User{
		Id:       uuid.New().String(),
		Fid:      fid,
		Username: username,
	}

	err = s.store.CreateUserWithWallet(ctx, user, wallet)
	if errors.Is(err, ledger.ErrDuplicatePlayer) {
		// A concurrent registration for the same fid won; return theirs.
		existing, lookupErr := s.store.UserByFid(ctx, fid)
		if lookupErr != nil {
			return nil, &reject.ProblemWithTrace{Problem: reject.UnexpectedProblem(lookupErr), Cause: lookupErr}
		}
		return existing, nil
	}
	if err != nil {
		return nil, &reject.ProblemWithTrace{Problem: reject.UnexpectedProblem(err), Cause: err}
	}

	return user, nil
}

func walletProvisioningProblem(err error) *reject.ProblemWithTrace {
	return &reject.ProblemWithTrace{
		Problem: reject.NewProblem().
			WithTitle("Cannot provision custodial wallet").
			WithStatus(http.StatusBadGateway).
			WithCode("error.registration.wallet-provisioning").
			Build(),
		Cause: err,
	}
}
