package service

import "errors"

var (
	// ErrUnpriceableAsset means no live or simulated price exists for
	// the requested symbol, so no trade against it can be valued.
	ErrUnpriceableAsset = errors.New("no price available for asset")

	// ErrInvalidSymbol means the symbol is not a known trading pair.
	ErrInvalidSymbol = errors.New("invalid trading pair symbol")

	// ErrInvalidAmount means the requested trade amount is not positive.
	ErrInvalidAmount = errors.New("trade amount must be positive")

	// ErrInsufficientBalance means the user's paper balance cannot
	// cover the trade cost.
	ErrInsufficientBalance = errors.New("insufficient paper balance")

	// ErrInsufficientPosition means the user holds less of the asset
	// than the sell requests.
	ErrInsufficientPosition = errors.New("insufficient position")

	// ErrOrderNotCancellable means the order already left pending state.
	ErrOrderNotCancellable = errors.New("order cannot be cancelled")
)
