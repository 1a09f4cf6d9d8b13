package buyin

import (
	"context"
	"math/big"
	"net"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/escrow"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/ledger"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/model"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/pubsub"
)

// fakeStore keeps players in a map keyed by id. Embedding the interface
// means a call the coordinator should never make panics the test.
type fakeStore struct {
	ledger.Store

	players      map[string]*model.Player
	transactions []*model.Transaction

	insertErr     error
	promoteErr    error
	promoteFails  int
	incrementErr  error
	incrementErrs int
	deleteErr     error
	lookupErr     error

	promoteCalls   int
	incrementCalls int
	deleteCalls    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{players: map[string]*model.Player{}}
}

func (s *fakeStore) PlayerByGameAndFid(_ context.Context, gameId string, fid int64) (*model.Player, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	for _, p := range s.players {
		if p.GameId == gameId && p.Fid == fid {
			copied := *p
			return &copied, nil
		}
	}
	return nil, ledger.ErrNotFound
}

func (s *fakeStore) InsertPendingPlayer(_ context.Context, player *model.Player) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	for _, p := range s.players {
		if p.GameId == player.GameId && p.Fid == player.Fid {
			return ledger.ErrDuplicatePlayer
		}
	}
	copied := *player
	s.players[player.Id] = &copied
	return nil
}

func (s *fakeStore) PromotePendingPlayer(_ context.Context, playerId string, depositedAmount int64) error {
	s.promoteCalls++
	if s.promoteFails > 0 {
		s.promoteFails--
		return s.promoteErr
	}
	p, ok := s.players[playerId]
	if !ok || p.Status != model.PlayerPending {
		return ledger.ErrNotFound
	}
	p.Status = model.PlayerDeposited
	p.TotalBuyIns = 1
	p.TotalDeposited = depositedAmount
	return nil
}

func (s *fakeStore) IncrementBuyIn(_ context.Context, playerId string, depositedAmount int64) error {
	s.incrementCalls++
	if s.incrementErrs > 0 {
		s.incrementErrs--
		return s.incrementErr
	}
	p, ok := s.players[playerId]
	if !ok || p.Status != model.PlayerDeposited {
		return ledger.ErrNotFound
	}
	p.TotalBuyIns++
	p.TotalDeposited += depositedAmount
	return nil
}

func (s *fakeStore) DeletePendingPlayer(_ context.Context, playerId string) error {
	s.deleteCalls++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if p, ok := s.players[playerId]; ok && p.Status == model.PlayerPending {
		delete(s.players, playerId)
	}
	return nil
}

func (s *fakeStore) RecordTransaction(_ context.Context, transaction *model.Transaction) error {
	s.transactions = append(s.transactions, transaction)
	return nil
}

func (s *fakeStore) pendingCount() int {
	count := 0
	for _, p := range s.players {
		if p.Status == model.PlayerPending {
			count++
		}
	}
	return count
}

type fakeEscrow struct {
	escrow.Client

	balance    int64
	balanceErr error
	allowance  int64
	allowErr   error

	approveErr error
	depositErr error
	confirmErr map[string]error

	approveCalls int
	depositCalls int
}

func newFakeEscrow(balance int64) *fakeEscrow {
	return &fakeEscrow{balance: balance, confirmErr: map[string]error{}}
}

func (e *fakeEscrow) BalanceOf(context.Context, common.Address) (int64, error) {
	return e.balance, e.balanceErr
}

func (e *fakeEscrow) Allowance(context.Context, common.Address) (int64, error) {
	return e.allowance, e.allowErr
}

func (e *fakeEscrow) Approve(_ context.Context, _ int64, _ escrow.Signer) (string, error) {
	e.approveCalls++
	if e.approveErr != nil {
		return "", e.approveErr
	}
	return "0xapprove", nil
}

func (e *fakeEscrow) Deposit(_ context.Context, _ string, _ int64, _ escrow.Signer) (string, error) {
	e.depositCalls++
	if e.depositErr != nil {
		return "", e.depositErr
	}
	return "0xdeposit", nil
}

func (e *fakeEscrow) WaitForConfirmation(_ context.Context, txHash string) (*escrow.Receipt, error) {
	if err := e.confirmErr[txHash]; err != nil {
		return nil, err
	}
	return &escrow.Receipt{TxHash: txHash, BlockNumber: 1}, nil
}

type fakeSigner struct {
	address common.Address
}

func (f fakeSigner) Address() common.Address {
	return f.address
}

func (f fakeSigner) SignTx(_ context.Context, tx *types.Transaction, _ *big.Int) (*types.Transaction, error) {
	return tx, nil
}

type fakeSignerProvider struct {
	signer escrow.Signer
	err    error
}

func (f fakeSignerProvider) SignerFor(context.Context, int64) (escrow.Signer, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.signer, nil
}

type fakeEvents struct {
	published []pubsub.Publishable
}

func (f *fakeEvents) Publish(message pubsub.Publishable) {
	f.published = append(f.published, message)
}

type fakeConn struct {
	addr   net.Addr
	events []any
}

type fakeAddr string

func (a fakeAddr) Network() string { return "fake" }
func (a fakeAddr) String() string  { return string(a) }

func (c *fakeConn) WriteJSON(v any) error {
	c.events = append(c.events, v)
	return nil
}

func (c *fakeConn) RemoteAddr() net.Addr {
	return c.addr
}

func activeGame() *model.Game {
	return &model.Game{
		Id:          "11111111-2222-3333-4444-555555555555",
		GameCode:    "ABC234",
		HostFid:     100,
		BuyInAmount: 20_000_000,
		Currency:    "USDC",
		Status:      model.GameActive,
		CreatedAt:   time.Now().UTC(),
	}
}
