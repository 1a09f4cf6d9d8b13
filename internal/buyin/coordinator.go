package buyin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jpillora/backoff"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/escrow"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/ledger"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/model"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/notify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// The saga states, in the order a clean attempt walks them. Logged on every
// transition so a stuck attempt can be located from the logs alone.
type state string

const (
	stateCheckingBalance state = "checking-balance"
	stateCreatingPending state = "creating-pending-record"
	stateApproving       state = "approving-allowance"
	stateDepositing      state = "depositing"
	stateConfirming      state = "confirming"
	stateCommitted       state = "committed"
	stateRollingBack     state = "rolling-back"
)

const defaultCommitAttempts = 3

// Coordinator runs one buy-in attempt as a compensating saga: the ledger
// pending record is written before any money moves, every failure before
// on-chain confirmation deletes it, and nothing after confirmation ever
// rolls back. The ordering means the worst reachable inconsistency is
// money on-chain with a pending ledger row, never a ledger row claiming
// money that does not exist.
type Coordinator struct {
	Store   ledger.Store
	Escrow  escrow.Client
	Signers escrow.SignerProvider
	Hub     *notify.Hub
	Events  EventPublisher

	// CommitAttempts bounds the post-confirmation ledger write retries.
	CommitAttempts int
	// CommitBackoffMin is exposed so tests do not sleep for real.
	CommitBackoffMin time.Duration
}

// Execute moves a participant through one buy-in. Always returns a Result;
// inspect Outcome before Failure.
func (c *Coordinator) Execute(ctx context.Context, game *model.Game, fid int64) *Result {
	attempt := log.With().Str("gameId", game.Id).Int64("fid", fid).Logger()

	// Preconditions. Nothing has been written yet, so failures here are
	// plain rejections, not rollbacks.
	if game.Status == model.GameEnded {
		return rejected(failure(CodeGameEnded, "game "+game.GameCode+" has ended", nil))
	}

	existing, err := c.Store.PlayerByGameAndFid(ctx, game.Id, fid)
	if err != nil && !errors.Is(err, ledger.ErrNotFound) {
		return rejected(failure(CodeLedgerUnavailable, "", err))
	}
	if existing != nil && existing.Status == model.PlayerPending {
		return rejected(failure(CodeTransactionInProgress, "a previous buy-in attempt is still pending", nil))
	}
	rebuy := existing != nil

	signer, err := c.Signers.SignerFor(ctx, fid)
	if errors.Is(err, escrow.ErrNoSigner) {
		return rejected(failure(CodeWalletNotConnected, "", err))
	}
	if err != nil {
		return rejected(failure(CodeNetworkError, "", err))
	}

	// Observers must not see half of this attempt through the realtime
	// feed; events published below queue up until the deferred resume.
	c.Hub.Suspend(game.Id)
	defer c.Hub.Resume(game.Id)

	amount := game.BuyInAmount

	// Best-effort balance read. A reliable "too low" fails fast; a failed
	// read never blocks the attempt because the deposit transaction is
	// authoritative about funds.
	attempt.Debug().Str("state", string(stateCheckingBalance)).Send()
	balance, err := c.Escrow.BalanceOf(ctx, signer.Address())
	if err != nil {
		attempt.Warn().Err(err).Msg("balance read failed, proceeding")
	} else if balance < amount {
		shortfall := escrow.FormatAmount(amount - balance)
		return rejected(failure(CodeInsufficientFunds,
			fmt.Sprintf("balance is short %s %s", shortfall, game.Currency), nil))
	}

	// The pending record makes the attempt auditable and resumable: a
	// confirmed deposit with no ledger row is unrecoverable by automation.
	player := existing
	var pendingId string
	if !rebuy {
		attempt.Debug().Str("state", string(stateCreatingPending)).Send()
		player = &model.Player{
			Id:            uuid.New().String(),
			GameId:        game.Id,
			Fid:           fid,
			WalletAddress: signer.Address().Hex(),
			Status:        model.PlayerPending,
			CreatedAt:     time.Now().UTC(),
		}
		err = c.Store.InsertPendingPlayer(ctx, player)
		if errors.Is(err, ledger.ErrDuplicatePlayer) {
			return rejected(failure(CodeTransactionInProgress, "a concurrent buy-in attempt won the race", err))
		}
		if err != nil {
			return rejected(failure(CodeLedgerUnavailable, "", err))
		}
		pendingId = player.Id
	}

	// Allowance, approving only when the current grant does not cover the
	// amount. Approving an already sufficient allowance would cost the
	// player a pointless signature and fee.
	allowance, err := c.Escrow.Allowance(ctx, signer.Address())
	if err != nil {
		return c.rollback(ctx, attempt, pendingId, failure(codeFromEscrow(err), "reading allowance", err))
	}
	if allowance < amount {
		attempt.Debug().Str("state", string(stateApproving)).Send()
		approveTx, err := c.Escrow.Approve(ctx, amount, signer)
		if err != nil {
			return c.rollback(ctx, attempt, pendingId, failure(codeFromEscrow(err), "approving allowance", err))
		}
		if _, err := c.Escrow.WaitForConfirmation(ctx, approveTx); err != nil {
			return c.rollback(ctx, attempt, pendingId, failure(codeFromEscrow(err), "confirming approval", err))
		}
	}

	attempt.Debug().Str("state", string(stateDepositing)).Send()
	depositTx, err := c.Escrow.Deposit(ctx, game.Id, amount, signer)
	if err != nil {
		return c.rollback(ctx, attempt, pendingId, failure(codeFromEscrow(err), "submitting deposit", err))
	}

	attempt.Debug().Str("state", string(stateConfirming)).Str("txHash", depositTx).Send()
	if _, err := c.Escrow.WaitForConfirmation(ctx, depositTx); err != nil {
		return c.rollback(ctx, attempt, pendingId, failure(codeFromEscrow(err), "confirming deposit", err))
	}

	// Point of no return. The deposit is on-chain; from here the ledger
	// must catch up, never undo.
	c.recordDeposit(ctx, attempt, game.Id, player.Id, amount, depositTx)

	if committed := c.commitWithRetry(ctx, attempt, player.Id, amount, rebuy); !committed {
		c.Events.Publish(DepositUnrecorded{
			GameId:   game.Id,
			PlayerId: player.Id,
			Fid:      fid,
			Amount:   amount,
			TxHash:   depositTx,
		})
		return &Result{
			Outcome:       OutcomePartiallyCommitted,
			Player:        player,
			DepositTxHash: depositTx,
			Failure: failure(CodePartiallyCommitted,
				"deposit "+depositTx+" confirmed, ledger record pending reconciliation", nil),
		}
	}

	attempt.Info().Str("state", string(stateCommitted)).Str("txHash", depositTx).Send()
	updated := *player
	updated.Status = model.PlayerDeposited
	updated.TotalBuyIns++
	updated.TotalDeposited += amount

	c.Events.Publish(DepositConfirmed{
		GameId:   game.Id,
		PlayerId: player.Id,
		Fid:      fid,
		Amount:   amount,
		TxHash:   depositTx,
		Rebuy:    rebuy,
	})
	c.Hub.Publish(game.Id, map[string]any{
		"type":   "DEPOSIT_CONFIRMED",
		"player": &updated,
	})

	return &Result{
		Outcome:       OutcomeCommitted,
		Player:        &updated,
		DepositTxHash: depositTx,
	}
}

// commitWithRetry performs the post-confirmation ledger write with bounded
// exponential backoff. Money has already moved, so this write must succeed
// or the attempt degrades to partially committed.
func (c *Coordinator) commitWithRetry(ctx context.Context, attempt zerolog.Logger, playerId string, amount int64, rebuy bool) bool {
	attempts := c.CommitAttempts
	if attempts <= 0 {
		attempts = defaultCommitAttempts
	}
	min := c.CommitBackoffMin
	if min <= 0 {
		min = 200 * time.Millisecond
	}
	b := &backoff.Backoff{
		Min:    min,
		Max:    5 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	for i := 0; i < attempts; i++ {
		var err error
		if rebuy {
			err = c.Store.IncrementBuyIn(ctx, playerId, amount)
		} else {
			err = c.Store.PromotePendingPlayer(ctx, playerId, amount)
		}
		if err == nil {
			return true
		}
		attempt.Warn().Err(err).Int("attempt", i+1).Msg("ledger commit failed")
		if i < attempts-1 {
			time.Sleep(b.Duration())
		}
	}
	return false
}

// recordDeposit writes the audit row. Best effort: the commit path does
// not depend on it, but reconciliation does, so failures are loud.
func (c *Coordinator) recordDeposit(ctx context.Context, attempt zerolog.Logger, gameId, playerId string, amount int64, txHash string) {
	hash := txHash
	err := c.Store.RecordTransaction(ctx, &model.Transaction{
		Id:        uuid.New().String(),
		GameId:    gameId,
		PlayerId:  playerId,
		Type:      model.TransactionDeposit,
		Amount:    amount,
		TxHash:    &hash,
		Status:    model.TransactionConfirmed,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		attempt.Error().Err(err).Str("txHash", txHash).Msg("cannot record deposit audit row")
	}
}

// rollback deletes the pending row created by this attempt. Only reachable
// before the deposit confirmed, so compensating is always safe.
func (c *Coordinator) rollback(ctx context.Context, attempt zerolog.Logger, pendingId string, fail *Error) *Result {
	attempt.Info().Str("state", string(stateRollingBack)).Str("code", string(fail.Code)).Send()
	if pendingId != "" {
		if err := c.Store.DeletePendingPlayer(ctx, pendingId); err != nil {
			// The stale pending row will block retries until the cleanup
			// sweep removes it; worth an error-level entry.
			attempt.Error().Err(err).Str("playerId", pendingId).Msg("compensating delete failed")
		}
	}
	return &Result{Outcome: OutcomeRolledBack, Failure: fail}
}

func rejected(fail *Error) *Result {
	return &Result{Outcome: OutcomeRolledBack, Failure: fail}
}
