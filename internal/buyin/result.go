package buyin

import (
	"net/http"

	"github.com/pokernight-labs/pokernight-backend/internal/pkg/escrow"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/model"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/reject"
)

// Code is the buy-in failure taxonomy surfaced to callers.
type Code string

const (
	CodeWalletNotConnected    Code = "wallet-not-connected"
	CodeGameEnded             Code = "game-ended"
	CodeTransactionInProgress Code = "transaction-in-progress"
	CodeInsufficientFunds     Code = "insufficient-funds"
	CodeUserRejected          Code = "user-rejected"
	CodeNetworkError          Code = "network"
	CodeContractReverted      Code = "contract-reverted"
	CodeLedgerUnavailable     Code = "ledger-unavailable"
	CodePartiallyCommitted    Code = "partially-committed"
)

type Error struct {
	Code   Code
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return string(e.Code) + ": " + e.Detail
	}
	if e.Err != nil {
		return string(e.Code) + ": " + e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Outcome tags the three ways an attempt can finish. Partially committed is
// deliberately not an Error-only condition: money moved on-chain and the
// caller must never treat it as a clean, retryable failure.
type Outcome string

const (
	OutcomeCommitted          Outcome = "committed"
	OutcomeRolledBack         Outcome = "rolled-back"
	OutcomePartiallyCommitted Outcome = "partially-committed"
)

type Result struct {
	Outcome       Outcome
	Player        *model.Player
	DepositTxHash string
	// Failure is set unless Outcome is OutcomeCommitted.
	Failure *Error
}

var problemTitles = map[Code]string{
	CodeWalletNotConnected:    "No wallet connected",
	CodeGameEnded:             "Game has already ended",
	CodeTransactionInProgress: "A buy-in for this game is already in progress",
	CodeInsufficientFunds:     "Insufficient token balance",
	CodeUserRejected:          "Signature request was declined",
	CodeNetworkError:          "Network error while talking to the chain",
	CodeContractReverted:      "Escrow contract rejected the transaction",
	CodeLedgerUnavailable:     "Ledger is unavailable",
	CodePartiallyCommitted:    "Deposit confirmed on-chain, ledger record still pending",
}

var problemStatuses = map[Code]int{
	CodeWalletNotConnected:    http.StatusBadRequest,
	CodeGameEnded:             http.StatusConflict,
	CodeTransactionInProgress: http.StatusConflict,
	CodeInsufficientFunds:     http.StatusUnprocessableEntity,
	CodeUserRejected:          http.StatusBadRequest,
	CodeNetworkError:          http.StatusBadGateway,
	CodeContractReverted:      http.StatusUnprocessableEntity,
	CodeLedgerUnavailable:     http.StatusServiceUnavailable,
	CodePartiallyCommitted:    http.StatusAccepted,
}

func (e *Error) Problem() reject.Problem {
	return reject.NewProblem().
		WithTitle(problemTitles[e.Code]).
		WithStatus(problemStatuses[e.Code]).
		WithCode("error.buyin." + string(e.Code)).
		WithDetail(e.Detail).
		Build()
}

func failure(code Code, detail string, err error) *Error {
	return &Error{Code: code, Detail: detail, Err: err}
}

func codeFromEscrow(err error) Code {
	switch escrow.CodeOf(err) {
	case escrow.CodeUserRejected:
		return CodeUserRejected
	case escrow.CodeInsufficientFunds:
		return CodeInsufficientFunds
	case escrow.CodeReverted:
		return CodeContractReverted
	default:
		return CodeNetworkError
	}
}
