package externalApi

import "errors"

var (
	// ErrDataUnavailable: the price source has no rows for an
	// asset+window combination. Never retried and never substituted
	// with synthetic values.
	ErrDataUnavailable = errors.New("error no price data for asset and window")

	// ErrLedgerUnavailable: the wallet spreadsheet could not be
	// fetched or read.
	ErrLedgerUnavailable = errors.New("error ledger unavailable")
)
