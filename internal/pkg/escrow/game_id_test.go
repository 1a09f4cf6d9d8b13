package escrow

import (
	"bytes"
	"testing"
)

func TestOnchainGameIdIsDeterministic(t *testing.T) {
	const id = "123e4567-e89b-12d3-a456-426614174000"

	first, err := OnchainGameId(id)
	if err != nil {
		t.Fatalf("OnchainGameId: %v", err)
	}
	second, err := OnchainGameId(id)
	if err != nil {
		t.Fatalf("OnchainGameId: %v", err)
	}
	if first != second {
		t.Fatalf("same game mapped to different slots")
	}

	// uuid bytes left-aligned, zero padding on the right
	want := []byte{0x12, 0x3e, 0x45, 0x67, 0xe8, 0x9b, 0x12, 0xd3, 0xa4, 0x56, 0x42, 0x66, 0x14, 0x17, 0x40, 0x00}
	if !bytes.Equal(first[:16], want) {
		t.Fatalf("slot prefix = %x, want %x", first[:16], want)
	}
	if !bytes.Equal(first[16:], make([]byte, 16)) {
		t.Fatalf("slot suffix not zero padded: %x", first[16:])
	}
}

func TestOnchainGameIdRejectsGarbage(t *testing.T) {
	for _, id := range []string{"", "not-a-uuid", "123e4567-e89b-12d3"} {
		if _, err := OnchainGameId(id); err == nil {
			t.Errorf("OnchainGameId(%q): expected error", id)
		}
	}
}
