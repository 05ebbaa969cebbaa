package service

import (
	"errors"
	"fmt"
)

var (
	ErrMissingFields       = errors.New("required fields are missing")
	ErrWrongChain          = errors.New("donation is on the wrong chain")
	ErrReceiptNotFound     = errors.New("transaction receipt not found")
	ErrChainTxFailed       = errors.New("transaction failed on-chain")
	ErrTransferNotFound    = errors.New("no token transfer found in transaction logs")
	ErrRecipientMismatch   = errors.New("transfer recipient does not match campaign owner")
	ErrChainUnavailable    = errors.New("chain node is unavailable")
	ErrVerifierUnavailable = errors.New("proof verifier is unavailable")
)

// AmountMismatchError reports both sides of a failed exact-amount
// comparison, human-formatted, so the caller sees what the chain recorded.
type AmountMismatchError struct {
	Expected string
	Found    string
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("donation amount does not match on-chain transfer: expected %s, found %s", e.Expected, e.Found)
}

// ProofRejectedError carries the uniqueness verifier's own code and detail
// through to the client unchanged.
type ProofRejectedError struct {
	Code   string
	Detail string
}

func (e *ProofRejectedError) Error() string {
	return fmt.Sprintf("proof rejected: %s (%s)", e.Detail, e.Code)
}
