package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/pokernight-labs/pokernight-backend/internal/pkg/model"
)

var (
	// ErrNotFound is returned when a game or player row does not exist.
	ErrNotFound = errors.New("ledger: record not found")
	// ErrDuplicatePlayer is returned when the (game, participant) unique
	// constraint rejects an insert. This is the concurrency guard against
	// double-submitted join attempts.
	ErrDuplicatePlayer = errors.New("ledger: player already exists for game")
	// ErrConflict is returned when a guarded status transition matched no
	// row, meaning the game was not in the expected state.
	ErrConflict = errors.New("ledger: conflicting game state")
)

// PlayerSettlement is one player's final numbers written at settlement.
type PlayerSettlement struct {
	PlayerId       string
	FinalChipCount int64
	PayoutAmount   int64
}

// Store is the off-chain source of truth. Implementations must make
// InsertPendingPlayer atomic with respect to concurrent inserts for the
// same (game, fid) pair.
type Store interface {
	CreateGame(ctx context.Context, game *model.Game) error
	GameById(ctx context.Context, id string) (*model.Game, error)
	GameByCode(ctx context.Context, code string) (*model.Game, error)
	GamesByHost(ctx context.Context, hostFid int64, limit, offset int) ([]model.Game, int64, error)
	StartGame(ctx context.Context, gameId string, at time.Time) error
	ReopenGame(ctx context.Context, gameId string) error

	PlayerByGameAndFid(ctx context.Context, gameId string, fid int64) (*model.Player, error)
	PlayersByGame(ctx context.Context, gameId string) ([]model.Player, error)
	InsertPendingPlayer(ctx context.Context, player *model.Player) error
	PromotePendingPlayer(ctx context.Context, playerId string, depositedAmount int64) error
	IncrementBuyIn(ctx context.Context, playerId string, depositedAmount int64) error
	DeletePendingPlayer(ctx context.Context, playerId string) error
	DeleteStalePendingPlayers(ctx context.Context, cutoff time.Time) (int64, error)

	RecordTransaction(ctx context.Context, transaction *model.Transaction) error
	ConfirmedPayoutExists(ctx context.Context, gameId string) (bool, error)
	WriteSettlement(ctx context.Context, gameId string, results []PlayerSettlement, endedAt time.Time) error

	UserByFid(ctx context.Context, fid int64) (*model.User, error)
	WalletByFid(ctx context.Context, fid int64) (*model.CustodialWallet, error)
	CreateUserWithWallet(ctx context.Context, user *model.User, wallet *model.CustodialWallet) error
}
