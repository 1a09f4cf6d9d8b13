package escrow

import (
	"errors"
	"strings"
)

// Code classifies transport failures so the coordinator can decide between
// fail-fast, rollback and surface-verbatim without string matching.
type Code string

const (
	CodeUserRejected      Code = "user-rejected"
	CodeInsufficientFunds Code = "insufficient-funds"
	CodeReverted          Code = "reverted"
	CodeNetwork           Code = "network"
)

type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Code)
	}
	return string(e.Code) + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(code Code, err error) *Error {
	return &Error{Code: code, Err: err}
}

// CodeOf extracts the classification from an error chain, defaulting to
// CodeNetwork for anything the transport did not tag.
func CodeOf(err error) Code {
	var escrowErr *Error
	if errors.As(err, &escrowErr) {
		return escrowErr.Code
	}
	return CodeNetwork
}

// classify wraps raw transport errors. Node error strings are the only
// signal geth exposes for reverts and balance failures.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var escrowErr *Error
	if errors.As(err, &escrowErr) {
		return err
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "execution reverted"):
		return NewError(CodeReverted, err)
	case strings.Contains(msg, "insufficient funds"):
		return NewError(CodeInsufficientFunds, err)
	default:
		return NewError(CodeNetwork, err)
	}
}
