package engine

import "errors"

var (
	// configuration
	ErrNotInitialized = errors.New("config not initialized")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidFeeBps  = errors.New("fee bps must not exceed 10000")

	// creation
	ErrEndTimeInPast = errors.New("end_time must be in the future")
	ErrBadTimeOrder  = errors.New("start_time < end_time required")

	// purchase
	ErrZeroCount           = errors.New("count must be > 0")
	ErrRaffleNotFound      = errors.New("raffle not found")
	ErrRaffleNotActive     = errors.New("raffle not active")
	ErrNotStarted          = errors.New("raffle not started")
	ErrRaffleEnded         = errors.New("raffle ended")
	ErrExceedsMaxTickets   = errors.New("exceeds max tickets")
	ErrWrongDenom          = errors.New("wrong payment denom")
	ErrInsufficientPayment = errors.New("insufficient payment")
	ErrAmountOverflow      = errors.New("payment amount overflow")

	// settlement
	ErrNotReadyToEnd      = errors.New("raffle not ready to end")
	ErrNoTicketsSold      = errors.New("no tickets sold")
	ErrRoundAlreadyUsed   = errors.New("drand round already used")
	ErrDrandNotConfigured = errors.New("drand public key not configured")

	// cancellation
	ErrCancelSoldOut    = errors.New("cannot cancel after sold out")
	ErrCancelAfterStart = errors.New("cannot cancel after start")
)
