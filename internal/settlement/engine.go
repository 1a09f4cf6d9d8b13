package settlement

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/escrow"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/ledger"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/model"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/notify"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/pubsub"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/reject"
	"github.com/rs/zerolog/log"
)

// EventPublisher mirrors the coordinator's seam so tests can capture what
// settlement announces.
type EventPublisher interface {
	Publish(message pubsub.Publishable)
}

type PubsubPublisher struct{}

func (PubsubPublisher) Publish(message pubsub.Publishable) {
	pubsub.Publish(message)
}

// SettlementCompleted is announced after the distribution confirmed and
// the final numbers are in the ledger.
type SettlementCompleted struct {
	GameId string `json:"gameId"`
	Pot    int64  `json:"pot"`
	TxHash string `json:"txHash"`
}

func (SettlementCompleted) GetEventTopicName() string {
	return "escrow.poker.events"
}

// SettleRequest carries the host-reported final chip counts keyed by
// player id. ConfirmResettle must be set to run settlement again for a
// game that already has a confirmed distribution; without it a reopen
// cannot accidentally pay the pot out twice.
type SettleRequest struct {
	ChipCounts      map[string]int64 `json:"chipCounts"`
	ConfirmResettle bool             `json:"confirmResettle"`
}

type SettleResponse struct {
	Results []PlayerPayout `json:"results"`
	Pot     int64          `json:"pot"`
	TxHash  string         `json:"txHash"`
}

// Engine closes out an active game: it validates the chip counts, computes
// proportional payouts, drives one batched on-chain distribution and only
// then writes the final ledger state. An on-chain failure leaves the game
// active with nothing written, so the host can retry.
type Engine struct {
	Store   ledger.Store
	Escrow  escrow.Client
	Signers escrow.SignerProvider
	Hub     *notify.Hub
	Events  EventPublisher
}

func (e *Engine) Settle(ctx context.Context, gameId string, hostFid int64, request SettleRequest) (*SettleResponse, *reject.ProblemWithTrace) {
	game, err := e.Store.GameById(ctx, gameId)
	if errors.Is(err, ledger.ErrNotFound) {
		return nil, notFoundProblem(err)
	}
	if err != nil {
		return nil, &reject.ProblemWithTrace{Problem: reject.UnexpectedProblem(err), Cause: err}
	}

	if game.HostFid != hostFid {
		return nil, notHostProblem()
	}
	if game.Status != model.GameActive {
		return nil, wrongStateProblem(game.Status)
	}

	players, err := e.Store.PlayersByGame(ctx, gameId)
	if err != nil {
		return nil, &reject.ProblemWithTrace{Problem: reject.UnexpectedProblem(err), Cause: err}
	}

	results, err := ComputePayouts(players, request.ChipCounts)
	if err != nil {
		return nil, validationProblem(err)
	}

	// A reopened game that already paid out must not distribute again on
	// an unconfirmed whim. The prior distribution is not reversed; a
	// confirmed resettle issues a second, separate transaction.
	alreadyPaid, err := e.Store.ConfirmedPayoutExists(ctx, gameId)
	if err != nil {
		return nil, &reject.ProblemWithTrace{Problem: reject.UnexpectedProblem(err), Cause: err}
	}
	if alreadyPaid && !request.ConfirmResettle {
		return nil, resettleProblem()
	}

	signer, err := e.Signers.SignerFor(ctx, hostFid)
	if errors.Is(err, escrow.ErrNoSigner) {
		return nil, noSignerProblem(err)
	}
	if err != nil {
		return nil, &reject.ProblemWithTrace{Problem: reject.UnexpectedProblem(err), Cause: err}
	}

	e.Hub.Suspend(gameId)
	defer e.Hub.Resume(gameId)

	var pot int64
	addresses := make([]common.Address, len(results))
	usdcAmounts := make([]int64, len(results))
	ethAmounts := make([]int64, len(results))
	for i, entry := range results {
		addresses[i] = common.HexToAddress(entry.Player.WalletAddress)
		usdcAmounts[i] = entry.Payout
		pot += entry.Player.TotalDeposited
	}

	txHash, err := e.Escrow.DistributePayout(ctx, gameId, addresses, usdcAmounts, ethAmounts, signer)
	if err != nil {
		return nil, distributionProblem(err)
	}
	if _, err := e.Escrow.WaitForConfirmation(ctx, txHash); err != nil {
		return nil, distributionProblem(err)
	}

	e.recordPayout(ctx, gameId, pot, txHash)

	writes := make([]ledger.PlayerSettlement, len(results))
	for i, entry := range results {
		writes[i] = ledger.PlayerSettlement{
			PlayerId:       entry.Player.Id,
			FinalChipCount: entry.FinalChipCount,
			PayoutAmount:   entry.Payout,
		}
	}
	if err := e.Store.WriteSettlement(ctx, gameId, writes, time.Now().UTC()); err != nil {
		// The pot is distributed; surface this like a partial commit, not
		// a retryable settlement failure.
		log.Error().Err(err).Str("gameId", gameId).Str("txHash", txHash).
			Msg("distribution confirmed but settlement write failed")
		return nil, settlementWriteProblem(err, txHash)
	}

	e.Events.Publish(SettlementCompleted{GameId: gameId, Pot: pot, TxHash: txHash})
	e.Hub.Publish(gameId, map[string]any{
		"type":    "SETTLEMENT_COMPLETED",
		"results": results,
	})

	return &SettleResponse{Results: results, Pot: pot, TxHash: txHash}, nil
}

// recordPayout writes the audit row the resettle guard reads. A failure
// here weakens the double-distribution guard, so it is loud.
func (e *Engine) recordPayout(ctx context.Context, gameId string, pot int64, txHash string) {
	hash := txHash
	err := e.Store.RecordTransaction(ctx, &model.Transaction{
		Id:        uuid.New().String(),
		GameId:    gameId,
		Type:      model.TransactionPayout,
		Amount:    pot,
		TxHash:    &hash,
		Status:    model.TransactionConfirmed,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		log.Error().Err(err).Str("gameId", gameId).Str("txHash", txHash).
			Msg("cannot record payout audit row")
	}
}

func notFoundProblem(err error) *reject.ProblemWithTrace {
	return &reject.ProblemWithTrace{
		Problem: reject.NewProblem().
			WithTitle("Game not found").
			WithStatus(http.StatusNotFound).
			WithCode("error.game.not-found").
			Build(),
		Cause: err,
	}
}

func notHostProblem() *reject.ProblemWithTrace {
	return &reject.ProblemWithTrace{
		Problem: reject.NewProblem().
			WithTitle("Only the host can settle the game").
			WithStatus(http.StatusForbidden).
			WithCode("error.settlement.not-host").
			Build(),
		Cause: errors.New("settlement requested by non-host"),
	}
}

func wrongStateProblem(status model.GameStatus) *reject.ProblemWithTrace {
	return &reject.ProblemWithTrace{
		Problem: reject.NewProblem().
			WithTitle("Game is not active").
			WithStatus(http.StatusConflict).
			WithCode("error.settlement.wrong-state").
			WithDetail("game status is " + string(status)).
			Build(),
		Cause: errors.New("settlement in state " + string(status)),
	}
}

func resettleProblem() *reject.ProblemWithTrace {
	return &reject.ProblemWithTrace{
		Problem: reject.NewProblem().
			WithTitle("This game already paid out once").
			WithStatus(http.StatusConflict).
			WithCode("error.settlement.resettle-confirmation-required").
			WithDetail("set confirmResettle to distribute again").
			Build(),
		Cause: errors.New("resettle without confirmation"),
	}
}

func noSignerProblem(err error) *reject.ProblemWithTrace {
	return &reject.ProblemWithTrace{
		Problem: reject.NewProblem().
			WithTitle("No wallet connected").
			WithStatus(http.StatusBadRequest).
			WithCode("error.settlement.wallet-not-connected").
			Build(),
		Cause: err,
	}
}

func settlementWriteProblem(err error, txHash string) *reject.ProblemWithTrace {
	return &reject.ProblemWithTrace{
		Problem: reject.NewProblem().
			WithTitle("Pot distributed, final numbers still pending").
			WithStatus(http.StatusAccepted).
			WithCode("error.settlement.partially-committed").
			WithDetail("distribution " + txHash + " confirmed, ledger write pending reconciliation").
			Build(),
		Cause: err,
	}
}
