package escrow

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// OnchainGameId maps the ledger's uuid to the contract's fixed-width slot:
// hyphens stripped, the 16 uuid bytes left-aligned in a zero-padded
// bytes32. The same game always lands on the same slot.
func OnchainGameId(gameId string) ([32]byte, error) {
	var slot [32]byte
	stripped := strings.ReplaceAll(gameId, "-", "")
	raw, err := hex.DecodeString(stripped)
	if err != nil {
		return slot, fmt.Errorf("game id %q is not a uuid: %w", gameId, err)
	}
	if len(raw) != 16 {
		return slot, fmt.Errorf("game id %q has %d bytes, want 16", gameId, len(raw))
	}
	copy(slot[:], raw)
	return slot, nil
}
