package raffle

import "errors"

// Every rejected operation surfaces one of these named errors. A rejection
// leaves no observable state change; there is no generic failure mode.
var (
	// Creation parameter violations.
	ErrInvalidTicketPrice    = errors.New("invalid ticket price")
	ErrInvalidMaxTickets     = errors.New("invalid max tickets")
	ErrInvalidDuration       = errors.New("invalid duration")
	ErrInvalidMinimumTickets = errors.New("invalid minimum tickets")
	ErrInvalidPrizeAmount    = errors.New("invalid prize amount")

	// Purchase violations.
	ErrInvalidTicketAmount = errors.New("invalid ticket amount")
	ErrInvalidPayment      = errors.New("invalid payment")
	ErrExceedsMaxTickets   = errors.New("exceeds max tickets")
	ErrRaffleEnded         = errors.New("raffle ended")

	// Admin policy violations.
	ErrInvalidPlatformFee    = errors.New("invalid platform fee")
	ErrInvalidPlatformWallet = errors.New("invalid platform wallet")
	ErrFactoryPaused         = errors.New("factory is paused")
	ErrUnauthorized          = errors.New("unauthorized")

	// Registry and resolution.
	ErrUnknownPool     = errors.New("unknown pool")
	ErrDuplicatePool   = errors.New("duplicate pool id")
	ErrRaffleNotEnded  = errors.New("raffle not ended")
	ErrAlreadyResolved = errors.New("raffle already resolved")
	ErrInvalidWinner   = errors.New("invalid winner")
)
