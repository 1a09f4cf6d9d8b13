package settlement

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/escrow"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/ledger"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/model"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/notify"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/pubsub"
)

type fakeStore struct {
	ledger.Store

	game    *model.Game
	players []model.Player

	payoutExists bool
	written      []ledger.PlayerSettlement
	writeErr     error
	transactions []*model.Transaction
}

func (s *fakeStore) GameById(_ context.Context, id string) (*model.Game, error) {
	if s.game == nil || s.game.Id != id {
		return nil, ledger.ErrNotFound
	}
	copied := *s.game
	return &copied, nil
}

func (s *fakeStore) PlayersByGame(context.Context, string) ([]model.Player, error) {
	return s.players, nil
}

func (s *fakeStore) ConfirmedPayoutExists(context.Context, string) (bool, error) {
	return s.payoutExists, nil
}

func (s *fakeStore) WriteSettlement(_ context.Context, _ string, results []ledger.PlayerSettlement, _ time.Time) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.written = results
	s.game.Status = model.GameEnded
	return nil
}

func (s *fakeStore) RecordTransaction(_ context.Context, transaction *model.Transaction) error {
	s.transactions = append(s.transactions, transaction)
	return nil
}

type fakeEscrow struct {
	escrow.Client

	distributeErr error
	confirmErr    error

	distributeCalls int
	lastAddresses   []common.Address
	lastAmounts     []int64
}

func (e *fakeEscrow) DistributePayout(_ context.Context, _ string, players []common.Address, usdcAmounts []int64, _ []int64, _ escrow.Signer) (string, error) {
	e.distributeCalls++
	if e.distributeErr != nil {
		return "", e.distributeErr
	}
	e.lastAddresses = players
	e.lastAmounts = usdcAmounts
	return "0xdistribute", nil
}

func (e *fakeEscrow) WaitForConfirmation(_ context.Context, txHash string) (*escrow.Receipt, error) {
	if e.confirmErr != nil {
		return nil, e.confirmErr
	}
	return &escrow.Receipt{TxHash: txHash, BlockNumber: 7}, nil
}

type fakeSigner struct{}

func (fakeSigner) Address() common.Address {
	return common.HexToAddress("0x00000000000000000000000000000000000000cc")
}

func (fakeSigner) SignTx(_ context.Context, tx *types.Transaction, _ *big.Int) (*types.Transaction, error) {
	return tx, nil
}

type fakeSignerProvider struct {
	err error
}

func (f fakeSignerProvider) SignerFor(context.Context, int64) (escrow.Signer, error) {
	if f.err != nil {
		return nil, f.err
	}
	return fakeSigner{}, nil
}

type fakeEvents struct {
	published []pubsub.Publishable
}

func (f *fakeEvents) Publish(message pubsub.Publishable) {
	f.published = append(f.published, message)
}

func testGame() *model.Game {
	return &model.Game{
		Id:          "game-1",
		GameCode:    "ABC234",
		HostFid:     100,
		BuyInAmount: 10_000_000,
		Currency:    "USDC",
		Status:      model.GameActive,
	}
}

func testPlayers() []model.Player {
	return []model.Player{
		{Id: "a", GameId: "game-1", Fid: 1, WalletAddress: "0x00000000000000000000000000000000000000aa",
			Status: model.PlayerDeposited, TotalDeposited: 10_000_000},
		{Id: "b", GameId: "game-1", Fid: 2, WalletAddress: "0x00000000000000000000000000000000000000bb",
			Status: model.PlayerDeposited, TotalDeposited: 10_000_000},
	}
}

func newTestEngine(store *fakeStore, chain *fakeEscrow) (*Engine, *fakeEvents) {
	events := &fakeEvents{}
	return &Engine{
		Store:   store,
		Escrow:  chain,
		Signers: fakeSignerProvider{},
		Hub:     notify.NewHub(),
		Events:  events,
	}, events
}

func TestSettleHappyPath(t *testing.T) {
	store := &fakeStore{game: testGame(), players: testPlayers()}
	chain := &fakeEscrow{}
	engine, events := newTestEngine(store, chain)

	response, problem := engine.Settle(context.Background(), "game-1", 100, SettleRequest{
		ChipCounts: map[string]int64{"a": 60, "b": 40},
	})
	if problem != nil {
		t.Fatalf("problem = %+v", problem.Problem)
	}

	if response.Pot != 20_000_000 || response.TxHash != "0xdistribute" {
		t.Fatalf("pot = %d, txHash = %q", response.Pot, response.TxHash)
	}
	if len(chain.lastAmounts) != 2 || chain.lastAmounts[0]+chain.lastAmounts[1] != 20_000_000 {
		t.Fatalf("distributed amounts = %v", chain.lastAmounts)
	}
	if len(store.written) != 2 {
		t.Fatalf("settlement writes = %v", store.written)
	}
	if store.game.Status != model.GameEnded {
		t.Fatalf("game status = %v", store.game.Status)
	}
	if len(store.transactions) != 1 || store.transactions[0].Type != model.TransactionPayout {
		t.Fatalf("audit rows = %v", store.transactions)
	}
	if len(events.published) != 1 {
		t.Fatalf("events = %v", events.published)
	}
}

func TestSettleNonHostForbidden(t *testing.T) {
	store := &fakeStore{game: testGame(), players: testPlayers()}
	chain := &fakeEscrow{}
	engine, _ := newTestEngine(store, chain)

	_, problem := engine.Settle(context.Background(), "game-1", 999, SettleRequest{
		ChipCounts: map[string]int64{"a": 60, "b": 40},
	})
	if problem == nil || problem.Problem.Status != http.StatusForbidden {
		t.Fatalf("problem = %+v", problem)
	}
	if chain.distributeCalls != 0 {
		t.Fatal("distribution attempted for non-host")
	}
}

func TestSettleRequiresActiveGame(t *testing.T) {
	game := testGame()
	game.Status = model.GameWaiting
	store := &fakeStore{game: game, players: testPlayers()}
	engine, _ := newTestEngine(store, &fakeEscrow{})

	_, problem := engine.Settle(context.Background(), "game-1", 100, SettleRequest{
		ChipCounts: map[string]int64{"a": 60, "b": 40},
	})
	if problem == nil || problem.Problem.Status != http.StatusConflict {
		t.Fatalf("problem = %+v", problem)
	}
}

func TestSettleDistributionFailureLeavesGameActive(t *testing.T) {
	store := &fakeStore{game: testGame(), players: testPlayers()}
	chain := &fakeEscrow{
		distributeErr: escrow.NewError(escrow.CodeReverted, errors.New("execution reverted")),
	}
	engine, events := newTestEngine(store, chain)

	_, problem := engine.Settle(context.Background(), "game-1", 100, SettleRequest{
		ChipCounts: map[string]int64{"a": 60, "b": 40},
	})
	if problem == nil || problem.Problem.Code != "error.settlement.contract-reverted" {
		t.Fatalf("problem = %+v", problem)
	}
	if store.game.Status != model.GameActive {
		t.Fatalf("game status = %v", store.game.Status)
	}
	if len(store.written) != 0 || len(events.published) != 0 {
		t.Fatal("ledger or events touched after failed distribution")
	}
}

func TestSettleConfirmationFailureWritesNothing(t *testing.T) {
	store := &fakeStore{game: testGame(), players: testPlayers()}
	chain := &fakeEscrow{
		confirmErr: escrow.NewError(escrow.CodeNetwork, errors.New("timed out")),
	}
	engine, _ := newTestEngine(store, chain)

	_, problem := engine.Settle(context.Background(), "game-1", 100, SettleRequest{
		ChipCounts: map[string]int64{"a": 60, "b": 40},
	})
	if problem == nil || problem.Problem.Code != "error.settlement.network" {
		t.Fatalf("problem = %+v", problem)
	}
	if len(store.written) != 0 {
		t.Fatal("ledger written after unconfirmed distribution")
	}
}

func TestResettleRequiresExplicitConfirmation(t *testing.T) {
	store := &fakeStore{game: testGame(), players: testPlayers(), payoutExists: true}
	chain := &fakeEscrow{}
	engine, _ := newTestEngine(store, chain)

	_, problem := engine.Settle(context.Background(), "game-1", 100, SettleRequest{
		ChipCounts: map[string]int64{"a": 60, "b": 40},
	})
	if problem == nil || problem.Problem.Code != "error.settlement.resettle-confirmation-required" {
		t.Fatalf("problem = %+v", problem)
	}
	if chain.distributeCalls != 0 {
		t.Fatal("second distribution submitted without confirmation")
	}

	response, problem := engine.Settle(context.Background(), "game-1", 100, SettleRequest{
		ChipCounts:      map[string]int64{"a": 60, "b": 40},
		ConfirmResettle: true,
	})
	if problem != nil {
		t.Fatalf("confirmed resettle failed: %+v", problem.Problem)
	}
	if response.TxHash != "0xdistribute" || chain.distributeCalls != 1 {
		t.Fatalf("txHash = %q, distributeCalls = %d", response.TxHash, chain.distributeCalls)
	}
}

func TestSettleInvalidChipCountsRejected(t *testing.T) {
	store := &fakeStore{game: testGame(), players: testPlayers()}
	chain := &fakeEscrow{}
	engine, _ := newTestEngine(store, chain)

	_, problem := engine.Settle(context.Background(), "game-1", 100, SettleRequest{
		ChipCounts: map[string]int64{"a": 0, "b": 0},
	})
	if problem == nil || problem.Problem.Code != "error.settlement.invalid-chip-counts" {
		t.Fatalf("problem = %+v", problem)
	}
	if chain.distributeCalls != 0 {
		t.Fatal("distribution attempted with invalid chip counts")
	}
}
