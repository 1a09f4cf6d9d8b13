package model

import (
	"time"
)

// Player is one participant in one game. The unique index on
// (game_id, fid) is what rejects a concurrent second join attempt;
// there is never more than one row per participant per game.
type Player struct {
	Id             string       `gorm:"primaryKey" json:"id"`
	GameId         string       `gorm:"uniqueIndex:idx_player_game_fid" json:"gameId"`
	Fid            int64        `gorm:"uniqueIndex:idx_player_game_fid" json:"fid"`
	WalletAddress  string       `json:"walletAddress"`
	TotalBuyIns    int          `json:"totalBuyIns"`
	TotalDeposited int64        `json:"totalDeposited"`
	FinalChipCount int64        `json:"finalChipCount"`
	PayoutAmount   int64        `json:"payoutAmount"`
	Status         PlayerStatus `json:"status"`
	CreatedAt      time.Time    `json:"createdAt"`
}

func (Player) TableName() string {
	return "player"
}
