package controller

import (
	"github.com/pkg/errors"
)

// Failure taxonomy for the presale controller. Every failure is recoverable:
// the controller always returns to idle with prior state intact, so the user
// can retry or close the surface.
var (
	// ErrWrongNetwork the connected node is on a different chain than the
	// sale contract. Wrapped with the expected chain id; never retried
	// automatically.
	ErrWrongNetwork = errors.New("wrong network")

	// ErrNotConfigured the sale contract is not deployed or its address is
	// not set. Retried only via an explicit user-triggered refresh.
	ErrNotConfigured = errors.New("presale not configured")

	// ErrFetchFailed transient snapshot fetch failure; the previous snapshot
	// is retained and it is safe to retry.
	ErrFetchFailed = errors.New("failed to fetch sale state")

	// ErrNotANumber the entered amount is empty, unparsable or non-positive.
	ErrNotANumber = errors.New("amount is not a valid number")

	// ErrBelowMinimum the entered amount is below the sale minimum.
	ErrBelowMinimum = errors.New("amount below minimum contribution")

	// ErrAboveMaximum the entered amount exceeds the sale maximum.
	ErrAboveMaximum = errors.New("amount above maximum contribution")

	// ErrSubmissionFailed the gateway rejected the contribution; the reason
	// is passed through verbatim and the entered amount is preserved.
	ErrSubmissionFailed = errors.New("contribution failed")

	// ErrClaimFailed the gateway rejected the claim.
	ErrClaimFailed = errors.New("claim failed")

	// ErrBusy another action is already in flight for this controller.
	ErrBusy = errors.New("another action is in progress")

	// ErrClosed the interaction surface was closed.
	ErrClosed = errors.New("controller is closed")

	// ErrNotEligible the sale does not currently permit the requested action.
	ErrNotEligible = errors.New("action not permitted in current sale state")
)
