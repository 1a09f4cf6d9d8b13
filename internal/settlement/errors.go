package settlement

import (
	"errors"
	"net/http"

	"github.com/pokernight-labs/pokernight-backend/internal/pkg/escrow"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/reject"
)

var (
	errNoDepositedPlayers = errors.New("settlement: game has no deposited players")
	errZeroTotalChips     = errors.New("settlement: total chip count is zero")
)

// ValidationError names the player whose chip count made the input
// unusable.
type ValidationError struct {
	PlayerId string
	Reason   string
}

func (e *ValidationError) Error() string {
	return "settlement: player " + e.PlayerId + ": " + e.Reason
}

func validationProblem(err error) *reject.ProblemWithTrace {
	detail := ""
	var validation *ValidationError
	if errors.As(err, &validation) {
		detail = validation.Reason + " for player " + validation.PlayerId
	}
	return &reject.ProblemWithTrace{
		Problem: reject.NewProblem().
			WithTitle("Cannot settle with these chip counts").
			WithStatus(http.StatusUnprocessableEntity).
			WithCode("error.settlement.invalid-chip-counts").
			WithDetail(detail).
			Build(),
		Cause: err,
	}
}

func distributionProblem(err error) *reject.ProblemWithTrace {
	title := "Network error while distributing the pot"
	code := "error.settlement.network"
	status := http.StatusBadGateway
	switch escrow.CodeOf(err) {
	case escrow.CodeUserRejected:
		title = "Distribution signature was declined"
		code = "error.settlement.user-rejected"
		status = http.StatusBadRequest
	case escrow.CodeInsufficientFunds:
		title = "Escrow balance cannot cover the payouts"
		code = "error.settlement.insufficient-escrow-balance"
		status = http.StatusUnprocessableEntity
	case escrow.CodeReverted:
		title = "Escrow contract rejected the distribution"
		code = "error.settlement.contract-reverted"
		status = http.StatusUnprocessableEntity
	}
	return &reject.ProblemWithTrace{
		Problem: reject.NewProblem().
			WithTitle(title).
			WithStatus(status).
			WithCode(code).
			WithDetail(err.Error()).
			Build(),
		Cause: err,
	}
}
