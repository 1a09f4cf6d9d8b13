package settlement

import (
	"sort"

	"github.com/pokernight-labs/pokernight-backend/internal/pkg/model"
	"github.com/shopspring/decimal"
)

// PlayerPayout is one player's computed settlement line. Amounts are micro
// units; Profit can be negative.
type PlayerPayout struct {
	Player         model.Player `json:"player"`
	FinalChipCount int64        `json:"finalChipCount"`
	Payout         int64        `json:"payout"`
	Profit         int64        `json:"profit"`
}

// ComputePayouts turns final chip counts into payout amounts proportional
// to each player's share of the total chips. Every payout is floored to a
// whole micro unit and the remainder goes to the largest stack, so the
// payouts always sum to the pot exactly. The result is sorted by profit
// descending; ties keep join order.
func ComputePayouts(players []model.Player, chips map[string]int64) ([]PlayerPayout, error) {
	deposited := make([]model.Player, 0, len(players))
	for _, p := range players {
		if p.Status == model.PlayerDeposited {
			deposited = append(deposited, p)
		}
	}
	if len(deposited) == 0 {
		return nil, errNoDepositedPlayers
	}

	var pot, totalChips int64
	for _, p := range deposited {
		count, ok := chips[p.Id]
		if !ok {
			return nil, &ValidationError{PlayerId: p.Id, Reason: "missing chip count"}
		}
		if count < 0 {
			return nil, &ValidationError{PlayerId: p.Id, Reason: "negative chip count"}
		}
		pot += p.TotalDeposited
		totalChips += count
	}
	if totalChips == 0 {
		return nil, errZeroTotalChips
	}

	potDecimal := decimal.New(pot, 0)
	totalDecimal := decimal.New(totalChips, 0)

	results := make([]PlayerPayout, len(deposited))
	var distributed int64
	largest := 0
	for i, p := range deposited {
		count := chips[p.Id]
		payout := potDecimal.
			Mul(decimal.New(count, 0)).
			Div(totalDecimal).
			Floor().
			IntPart()
		results[i] = PlayerPayout{
			Player:         p,
			FinalChipCount: count,
			Payout:         payout,
			Profit:         payout - p.TotalDeposited,
		}
		distributed += payout
		if count > results[largest].FinalChipCount {
			largest = i
		}
	}

	// Flooring leaves at most len(deposited)-1 micro units unassigned.
	if dust := pot - distributed; dust > 0 {
		results[largest].Payout += dust
		results[largest].Profit += dust
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Profit > results[j].Profit
	})
	return results, nil
}
