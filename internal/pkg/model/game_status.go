package model

type GameStatus string

const (
	GameWaiting GameStatus = "waiting"
	GameActive  GameStatus = "active"
	GameEnded   GameStatus = "ended"
)
