package model

import (
	"time"
)

// Game is a single cash-game session. BuyInAmount is immutable after
// creation and stored in micro units (1e-6 of the currency).
type Game struct {
	Id          string     `gorm:"primaryKey" json:"id"`
	GameCode    string     `gorm:"uniqueIndex" json:"gameCode"`
	HostFid     int64      `json:"hostFid"`
	Location    *string    `json:"location,omitempty"`
	BuyInAmount int64      `json:"buyInAmount"`
	Currency    string     `json:"currency"`
	Status      GameStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	EndedAt     *time.Time `json:"endedAt,omitempty"`
}

func (Game) TableName() string {
	return "game"
}
