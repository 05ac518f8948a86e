package engine

import (
	"time"

	"backend/internal/logger"
	"backend/internal/storage"

	"go.uber.org/zap"
)

// CancelRaffle lets the creator withdraw a raffle whose sales have not
// opened yet and which has not sold out. The transition is terminal and
// moves no funds.
func (e *Engine) CancelRaffle(now time.Time, raffleID uint64, caller string) error {
	caller, err := e.addresses.Validate(caller)
	if err != nil {
		return err
	}

	raffle, err := e.store.GetRaffle(raffleID)
	if err != nil {
		return err
	}
	if raffle == nil {
		return ErrRaffleNotFound
	}
	if caller != raffle.Creator {
		return ErrUnauthorized
	}
	if raffle.Status != storage.StatusActive {
		return ErrRaffleNotActive
	}
	if raffle.TotalSold >= raffle.MaxTickets {
		return ErrCancelSoldOut
	}
	if raffle.StartTime != 0 && now.Unix() >= raffle.StartTime {
		return ErrCancelAfterStart
	}

	if err := e.store.CancelRaffle(raffleID); err != nil {
		return err
	}

	logger.Info("raffle cancelled",
		zap.Uint64("raffle_id", raffleID),
		zap.String("creator", caller))

	return nil
}
