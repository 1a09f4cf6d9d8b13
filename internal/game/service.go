package game

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/escrow"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/ledger"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/model"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/reject"
	"github.com/rs/zerolog/log"
)

const (
	gameNotFound        = "error.game.not-found"
	gameNotHost         = "error.game.not-host"
	gameInvalidBuyIn    = "error.game.invalid-buy-in"
	gameNoDeposited     = "error.game.no-deposited-players"
	gameWrongState      = "error.game.wrong-state"
	gameCodeExhausted   = "error.game.code-generation-exhausted"
	gameLedgerError     = "error.game.ledger-unavailable"
	gameCodeMaxAttempts = 5
)

type gameService struct {
	store   ledger.Store
	escrow  escrow.Client
	signers escrow.SignerProvider
}

type CreateGameRequest struct {
	BuyInAmount string  `json:"buyInAmount"`
	Currency    string  `json:"currency"`
	Location    *string `json:"location,omitempty"`
}

type PlayersResponse struct {
	Players []model.Player `json:"players"`
	Pot     int64          `json:"pot"`
	PotText string         `json:"potText"`
}

func (gs *gameService) createGame(ctx context.Context, hostFid int64, request CreateGameRequest) (*model.Game, *reject.ProblemWithTrace) {
	buyIn, err := escrow.ParseAmount(request.BuyInAmount)
	if err != nil {
		return nil, &reject.ProblemWithTrace{
			Problem: reject.NewProblem().
				WithTitle("Invalid buy-in amount").
				WithStatus(http.StatusBadRequest).
				WithCode(gameInvalidBuyIn).
				WithDetail(err.Error()).
				Build(),
			Cause: err,
		}
	}

	currency := request.Currency
	if currency == "" {
		currency = "USDC"
	}

	var created *model.Game
	for attempt := 0; attempt < gameCodeMaxAttempts; attempt++ {
		candidate := &model.Game{
			Id:          uuid.New().String(),
			GameCode:    GenerateGameCode(),
			HostFid:     hostFid,
			Location:    request.Location,
			BuyInAmount: buyIn,
			Currency:    currency,
			Status:      model.GameWaiting,
			CreatedAt:   time.Now().UTC(),
		}
		err = gs.store.CreateGame(ctx, candidate)
		if err == nil {
			created = candidate
			break
		}
		if !errors.Is(err, ledger.ErrConflict) {
			return nil, &reject.ProblemWithTrace{
				Problem: reject.NewProblem().
					WithTitle("Trouble writing to database").
					WithStatus(http.StatusInternalServerError).
					WithCode(gameLedgerError).
					Build(),
				Cause: err,
			}
		}
	}
	if created == nil {
		return nil, &reject.ProblemWithTrace{
			Problem: reject.NewProblem().
				WithTitle("Could not generate a unique game code").
				WithStatus(http.StatusInternalServerError).
				WithCode(gameCodeExhausted).
				Build(),
			Cause: err,
		}
	}

	gs.registerOnchain(ctx, created, hostFid)

	return created, nil
}

// registerOnchain claims the game's escrow slot. The ledger row is the
// source of truth for the session; a failed registration is reported but
// keeps the game, and the first deposit will surface the missing slot.
func (gs *gameService) registerOnchain(ctx context.Context, game *model.Game, hostFid int64) {
	signer, err := gs.signers.SignerFor(ctx, hostFid)
	if err != nil {
		log.Warn().Err(err).Str("gameId", game.Id).Msg("no host signer, escrow slot not registered")
		return
	}

	txHash, err := gs.escrow.CreateGame(ctx, game.Id, signer)
	if err != nil {
		log.Warn().Err(err).Str("gameId", game.Id).Msg("createGame transaction failed")
		return
	}
	if _, err := gs.escrow.WaitForConfirmation(ctx, txHash); err != nil {
		log.Warn().Err(err).Str("gameId", game.Id).Str("txHash", txHash).Msg("createGame confirmation failed")
	}
}

func (gs *gameService) gameByCode(ctx context.Context, code string) (*model.Game, *reject.ProblemWithTrace) {
	game, err := gs.store.GameByCode(ctx, code)
	if errors.Is(err, ledger.ErrNotFound) {
		return nil, notFoundProblem(err)
	}
	if err != nil {
		return nil, &reject.ProblemWithTrace{Problem: reject.UnexpectedProblem(err), Cause: err}
	}
	return game, nil
}

func (gs *gameService) gameById(ctx context.Context, id string) (*model.Game, *reject.ProblemWithTrace) {
	game, err := gs.store.GameById(ctx, id)
	if errors.Is(err, ledger.ErrNotFound) {
		return nil, notFoundProblem(err)
	}
	if err != nil {
		return nil, &reject.ProblemWithTrace{Problem: reject.UnexpectedProblem(err), Cause: err}
	}
	return game, nil
}

func (gs *gameService) gamesByHost(ctx context.Context, hostFid int64, limit, offset int) ([]model.Game, int64, *reject.ProblemWithTrace) {
	games, count, err := gs.store.GamesByHost(ctx, hostFid, limit, offset)
	if err != nil {
		return nil, 0, &reject.ProblemWithTrace{Problem: reject.UnexpectedProblem(err), Cause: err}
	}
	return games, count, nil
}

// players returns the table as other players may see it: every row, but a
// pot that counts confirmed deposits only. Pending rows carry provisional
// amounts that must not inflate the pot.
func (gs *gameService) players(ctx context.Context, gameId string) (*PlayersResponse, *reject.ProblemWithTrace) {
	players, err := gs.store.PlayersByGame(ctx, gameId)
	if err != nil {
		return nil, &reject.ProblemWithTrace{Problem: reject.UnexpectedProblem(err), Cause: err}
	}

	var pot int64
	for _, p := range players {
		if p.Status == model.PlayerDeposited {
			pot += p.TotalDeposited
		}
	}

	return &PlayersResponse{
		Players: players,
		Pot:     pot,
		PotText: escrow.FormatAmount(pot),
	}, nil
}

func (gs *gameService) startGame(ctx context.Context, gameId string, callerFid int64) *reject.ProblemWithTrace {
	game, problem := gs.gameById(ctx, gameId)
	if problem != nil {
		return problem
	}
	if game.HostFid != callerFid {
		return notHostProblem()
	}

	players, err := gs.store.PlayersByGame(ctx, gameId)
	if err != nil {
		return &reject.ProblemWithTrace{Problem: reject.UnexpectedProblem(err), Cause: err}
	}
	deposited := 0
	for _, p := range players {
		if p.Status == model.PlayerDeposited {
			deposited++
		}
	}
	if deposited == 0 {
		return &reject.ProblemWithTrace{
			Problem: reject.NewProblem().
				WithTitle("Cannot start a game before anyone has bought in").
				WithStatus(http.StatusConflict).
				WithCode(gameNoDeposited).
				Build(),
			Cause: errors.New("no deposited players"),
		}
	}

	if err := gs.store.StartGame(ctx, gameId, time.Now().UTC()); err != nil {
		if errors.Is(err, ledger.ErrConflict) {
			return wrongStateProblem(err)
		}
		return &reject.ProblemWithTrace{Problem: reject.UnexpectedProblem(err), Cause: err}
	}
	return nil
}

// reopenGame is the single allowed reversal: ended back to active so the
// host can correct chip counts. It never touches any prior distribution.
func (gs *gameService) reopenGame(ctx context.Context, gameId string, callerFid int64) *reject.ProblemWithTrace {
	game, problem := gs.gameById(ctx, gameId)
	if problem != nil {
		return problem
	}
	if game.HostFid != callerFid {
		return notHostProblem()
	}

	if err := gs.store.ReopenGame(ctx, gameId); err != nil {
		if errors.Is(err, ledger.ErrConflict) {
			return wrongStateProblem(err)
		}
		return &reject.ProblemWithTrace{Problem: reject.UnexpectedProblem(err), Cause: err}
	}
	return nil
}

func notFoundProblem(err error) *reject.ProblemWithTrace {
	return &reject.ProblemWithTrace{
		Problem: reject.NewProblem().
			WithTitle("Game not found").
			WithStatus(http.StatusNotFound).
			WithCode(gameNotFound).
			Build(),
		Cause: err,
	}
}

func notHostProblem() *reject.ProblemWithTrace {
	return &reject.ProblemWithTrace{
		Problem: reject.NewProblem().
			WithTitle("Only the host can do this").
			WithStatus(http.StatusForbidden).
			WithCode(gameNotHost).
			Build(),
		Cause: errors.New("caller is not the host"),
	}
}

func wrongStateProblem(err error) *reject.ProblemWithTrace {
	return &reject.ProblemWithTrace{
		Problem: reject.NewProblem().
			WithTitle("Game is not in a state that allows this").
			WithStatus(http.StatusConflict).
			WithCode(gameWrongState).
			Build(),
		Cause: err,
	}
}
