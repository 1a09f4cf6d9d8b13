package game

import (
	"crypto/rand"
	"math/big"
)

// Excludes 0, O, I and 1 so codes survive being read out loud at a table.
const gameCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const gameCodeLength = 6

func GenerateGameCode() string {
	code := make([]byte, gameCodeLength)
	max := big.NewInt(int64(len(gameCodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("game code entropy source unavailable")
		}
		code[i] = gameCodeAlphabet[n.Int64()]
	}
	return string(code)
}
