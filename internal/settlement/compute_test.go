package settlement

import (
	"errors"
	"testing"

	"github.com/pokernight-labs/pokernight-backend/internal/pkg/model"
)

func depositedPlayer(id string, deposited int64) model.Player {
	return model.Player{
		Id:             id,
		GameId:         "g1",
		Status:         model.PlayerDeposited,
		TotalDeposited: deposited,
	}
}

func TestComputePayoutsProportional(t *testing.T) {
	// Two players bought in 10.00 each; final chips 60 and 40 split the
	// 20.00 pot into 12.00 and 8.00.
	players := []model.Player{
		depositedPlayer("a", 10_000_000),
		depositedPlayer("b", 10_000_000),
	}
	chips := map[string]int64{"a": 60, "b": 40}

	results, err := ComputePayouts(players, chips)
	if err != nil {
		t.Fatal(err)
	}

	if results[0].Player.Id != "a" || results[0].Payout != 12_000_000 {
		t.Fatalf("first = %s payout %d", results[0].Player.Id, results[0].Payout)
	}
	if results[1].Player.Id != "b" || results[1].Payout != 8_000_000 {
		t.Fatalf("second = %s payout %d", results[1].Player.Id, results[1].Payout)
	}
	if results[0].Profit != 2_000_000 || results[1].Profit != -2_000_000 {
		t.Fatalf("profits = %d, %d", results[0].Profit, results[1].Profit)
	}
}

func TestComputePayoutsWithRebuy(t *testing.T) {
	// A bought in once, B twice; pot 30. Chips 10 vs 50 pay out 5 and 25.
	players := []model.Player{
		depositedPlayer("a", 10_000_000),
		depositedPlayer("b", 20_000_000),
	}
	chips := map[string]int64{"a": 10, "b": 50}

	results, err := ComputePayouts(players, chips)
	if err != nil {
		t.Fatal(err)
	}

	// Sorted by profit descending: B (+5) before A (-5).
	if results[0].Player.Id != "b" || results[0].Payout != 25_000_000 || results[0].Profit != 5_000_000 {
		t.Fatalf("first = %+v", results[0])
	}
	if results[1].Player.Id != "a" || results[1].Payout != 5_000_000 || results[1].Profit != -5_000_000 {
		t.Fatalf("second = %+v", results[1])
	}
}

func TestComputePayoutsConservesPot(t *testing.T) {
	cases := []struct {
		name     string
		deposits []int64
		chips    []int64
	}{
		{"even three-way", []int64{10_000_000, 10_000_000, 10_000_000}, []int64{100, 100, 100}},
		{"indivisible thirds", []int64{10_000_000, 10_000_000, 10_000_000}, []int64{1, 1, 1}},
		{"skewed stacks", []int64{20_000_000, 10_000_000, 30_000_000}, []int64{7, 13, 3}},
		{"one player busted", []int64{10_000_000, 10_000_000}, []int64{200, 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			players := make([]model.Player, len(tc.deposits))
			chips := map[string]int64{}
			var pot int64
			for i, deposit := range tc.deposits {
				id := string(rune('a' + i))
				players[i] = depositedPlayer(id, deposit)
				chips[id] = tc.chips[i]
				pot += deposit
			}

			results, err := ComputePayouts(players, chips)
			if err != nil {
				t.Fatal(err)
			}

			var paidOut, profit int64
			for _, entry := range results {
				paidOut += entry.Payout
				profit += entry.Profit
			}
			if paidOut != pot {
				t.Fatalf("Σpayout = %d, pot = %d", paidOut, pot)
			}
			if profit != 0 {
				t.Fatalf("Σprofit = %d", profit)
			}
		})
	}
}

func TestComputePayoutsRecomputesIdentically(t *testing.T) {
	players := []model.Player{
		depositedPlayer("a", 10_000_000),
		depositedPlayer("b", 20_000_000),
		depositedPlayer("c", 10_000_000),
	}
	chips := map[string]int64{"a": 17, "b": 41, "c": 23}

	first, err := ComputePayouts(players, chips)
	if err != nil {
		t.Fatal(err)
	}
	second, err := ComputePayouts(players, chips)
	if err != nil {
		t.Fatal(err)
	}

	for i := range first {
		if first[i].Player.Id != second[i].Player.Id || first[i].Payout != second[i].Payout {
			t.Fatalf("run 1 %+v, run 2 %+v", first[i], second[i])
		}
	}
}

func TestComputePayoutsRejectsZeroTotalChips(t *testing.T) {
	players := []model.Player{
		depositedPlayer("a", 10_000_000),
		depositedPlayer("b", 10_000_000),
	}
	chips := map[string]int64{"a": 0, "b": 0}

	if _, err := ComputePayouts(players, chips); !errors.Is(err, errZeroTotalChips) {
		t.Fatalf("err = %v", err)
	}
}

func TestComputePayoutsRejectsMissingAndNegativeCounts(t *testing.T) {
	players := []model.Player{
		depositedPlayer("a", 10_000_000),
		depositedPlayer("b", 10_000_000),
	}

	var validation *ValidationError
	_, err := ComputePayouts(players, map[string]int64{"a": 50})
	if !errors.As(err, &validation) || validation.PlayerId != "b" {
		t.Fatalf("err = %v", err)
	}

	_, err = ComputePayouts(players, map[string]int64{"a": 50, "b": -1})
	if !errors.As(err, &validation) || validation.PlayerId != "b" {
		t.Fatalf("err = %v", err)
	}
}

func TestComputePayoutsIgnoresPendingRows(t *testing.T) {
	pending := model.Player{Id: "ghost", GameId: "g1", Status: model.PlayerPending, TotalDeposited: 10_000_000}
	players := []model.Player{
		depositedPlayer("a", 10_000_000),
		depositedPlayer("b", 10_000_000),
		pending,
	}
	chips := map[string]int64{"a": 60, "b": 40}

	results, err := ComputePayouts(players, chips)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}
	// The pending deposit is provisional; the pot stays at 20.00.
	if results[0].Payout+results[1].Payout != 20_000_000 {
		t.Fatalf("pot = %d", results[0].Payout+results[1].Payout)
	}
}

func TestComputePayoutsStableTieBreak(t *testing.T) {
	players := []model.Player{
		depositedPlayer("a", 10_000_000),
		depositedPlayer("b", 10_000_000),
	}
	chips := map[string]int64{"a": 50, "b": 50}

	results, err := ComputePayouts(players, chips)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Player.Id != "a" || results[1].Player.Id != "b" {
		t.Fatalf("order = %s, %s", results[0].Player.Id, results[1].Player.Id)
	}
}
