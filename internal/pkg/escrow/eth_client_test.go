package escrow

import (
	"math"
	"math/big"
	"testing"
)

func TestClampAmountUnlimitedAllowance(t *testing.T) {
	// MaxUint256, the standard "unlimited" ERC-20 approval.
	unlimited := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	if got := clampAmount(unlimited); got != math.MaxInt64 {
		t.Fatalf("clampAmount(MaxUint256) = %d, want MaxInt64", got)
	}
}

func TestClampAmount(t *testing.T) {
	cases := []struct {
		name string
		in   *big.Int
		want int64
	}{
		{"zero", big.NewInt(0), 0},
		{"typical balance", big.NewInt(20_000_000), 20_000_000},
		{"max int64", big.NewInt(math.MaxInt64), math.MaxInt64},
		{"one above int64", new(big.Int).Add(big.NewInt(math.MaxInt64), big.NewInt(1)), math.MaxInt64},
		{"negative", big.NewInt(-1), 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := clampAmount(tc.in); got != tc.want {
				t.Fatalf("clampAmount(%s) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}
