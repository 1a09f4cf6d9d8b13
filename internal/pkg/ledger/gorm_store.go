package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/pokernight-labs/pokernight-backend/internal/pkg/model"
	"gorm.io/gorm"
)

// GormStore is the postgres-backed Store. Uniqueness of in-flight join
// attempts rides on the (game_id, fid) unique index of the player table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateGame(ctx context.Context, game *model.Game) error {
	err := s.db.WithContext(ctx).Create(game).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// game_code collision; the caller regenerates and retries
		return ErrConflict
	}
	return err
}

func (s *GormStore) GameById(ctx context.Context, id string) (*model.Game, error) {
	var game model.Game
	result := s.db.WithContext(ctx).Where("id = ?", id).First(&game)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &game, nil
}

func (s *GormStore) GameByCode(ctx context.Context, code string) (*model.Game, error) {
	var game model.Game
	result := s.db.WithContext(ctx).Where("game_code = ?", code).First(&game)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &game, nil
}

func (s *GormStore) GamesByHost(ctx context.Context, hostFid int64, limit, offset int) ([]model.Game, int64, error) {
	games := []model.Game{}
	var count int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Game{}).Where("host_fid = ?", hostFid).Count(&count)
		if res.Error != nil {
			return res.Error
		}
		return tx.
			Where("host_fid = ?", hostFid).
			Order("created_at DESC").
			Limit(limit).
			Offset(offset).
			Find(&games).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return games, count, nil
}

func (s *GormStore) StartGame(ctx context.Context, gameId string, at time.Time) error {
	result := s.db.WithContext(ctx).
		Model(&model.Game{}).
		Where("id = ? AND status = ?", gameId, model.GameWaiting).
		Updates(map[string]any{
			"status":     model.GameActive,
			"started_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (s *GormStore) ReopenGame(ctx context.Context, gameId string) error {
	result := s.db.WithContext(ctx).
		Model(&model.Game{}).
		Where("id = ? AND status = ?", gameId, model.GameEnded).
		Updates(map[string]any{
			"status":   model.GameActive,
			"ended_at": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (s *GormStore) PlayerByGameAndFid(ctx context.Context, gameId string, fid int64) (*model.Player, error) {
	var player model.Player
	result := s.db.WithContext(ctx).Where("game_id = ? AND fid = ?", gameId, fid).First(&player)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &player, nil
}

func (s *GormStore) PlayersByGame(ctx context.Context, gameId string) ([]model.Player, error) {
	players := []model.Player{}
	result := s.db.WithContext(ctx).
		Where("game_id = ?", gameId).
		Order("created_at ASC").
		Find(&players)
	if result.Error != nil {
		return nil, result.Error
	}
	return players, nil
}

func (s *GormStore) InsertPendingPlayer(ctx context.Context, player *model.Player) error {
	player.Status = model.PlayerPending
	err := s.db.WithContext(ctx).Create(player).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicatePlayer
	}
	return err
}

func (s *GormStore) PromotePendingPlayer(ctx context.Context, playerId string, depositedAmount int64) error {
	result := s.db.WithContext(ctx).
		Model(&model.Player{}).
		Where("id = ? AND status = ?", playerId, model.PlayerPending).
		Updates(map[string]any{
			"status":          model.PlayerDeposited,
			"total_buy_ins":   1,
			"total_deposited": depositedAmount,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) IncrementBuyIn(ctx context.Context, playerId string, depositedAmount int64) error {
	result := s.db.WithContext(ctx).
		Model(&model.Player{}).
		Where("id = ? AND status = ?", playerId, model.PlayerDeposited).
		Updates(map[string]any{
			"total_buy_ins":   gorm.Expr("total_buy_ins + 1"),
			"total_deposited": gorm.Expr("total_deposited + ?", depositedAmount),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) DeletePendingPlayer(ctx context.Context, playerId string) error {
	// Guarded on status so a concurrently promoted row is never deleted.
	return s.db.WithContext(ctx).
		Where("id = ? AND status = ?", playerId, model.PlayerPending).
		Delete(&model.Player{}).Error
}

func (s *GormStore) DeleteStalePendingPlayers(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", model.PlayerPending, cutoff).
		Delete(&model.Player{})
	return result.RowsAffected, result.Error
}

func (s *GormStore) RecordTransaction(ctx context.Context, transaction *model.Transaction) error {
	return s.db.WithContext(ctx).Create(transaction).Error
}

func (s *GormStore) ConfirmedPayoutExists(ctx context.Context, gameId string) (bool, error) {
	var count int64
	result := s.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("game_id = ? AND type = ? AND status = ?", gameId, model.TransactionPayout, model.TransactionConfirmed).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

func (s *GormStore) WriteSettlement(ctx context.Context, gameId string, results []PlayerSettlement, endedAt time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range results {
			result := tx.
				Model(&model.Player{}).
				Where("id = ?", entry.PlayerId).
				Updates(map[string]any{
					"final_chip_count": entry.FinalChipCount,
					"payout_amount":    entry.PayoutAmount,
				})
			if result.Error != nil {
				return result.Error
			}
		}

		result := tx.
			Model(&model.Game{}).
			Where("id = ? AND status = ?", gameId, model.GameActive).
			Updates(map[string]any{
				"status":   model.GameEnded,
				"ended_at": endedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrConflict
		}
		return nil
	})
}

func (s *GormStore) UserByFid(ctx context.Context, fid int64) (*model.User, error) {
	var user model.User
	result := s.db.WithContext(ctx).Where("fid = ?", fid).First(&user)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

func (s *GormStore) WalletByFid(ctx context.Context, fid int64) (*model.CustodialWallet, error) {
	var wallet model.CustodialWallet
	result := s.db.WithContext(ctx).Raw(`
		SELECT cw.* FROM pokernight_user u
		  JOIN custodial_wallet cw ON u.custodial_wallet_id = cw.id
		 WHERE u.fid = ?`, fid).Scan(&wallet)
	if result.Error != nil {
		return nil, result.Error
	}
	if wallet.Id == "" {
		return nil, ErrNotFound
	}
	return &wallet, nil
}

func (s *GormStore) CreateUserWithWallet(ctx context.Context, user *model.User, wallet *model.CustodialWallet) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(wallet).Error; err != nil {
			return err
		}
		user.CustodialWalletId = wallet.Id
		err := tx.Create(user).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicatePlayer
		}
		return err
	})
}
