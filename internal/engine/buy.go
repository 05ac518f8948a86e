package engine

import (
	"math/bits"
	"time"

	"backend/internal/chain"
	"backend/internal/logger"
	"backend/internal/storage"

	"go.uber.org/zap"
)

// BuyTickets appends count tickets for buyer after checking the sale window,
// capacity and attached payment. Payment surplus is accepted without refund;
// shortfall is an error. The ledger append, the sold counter and the buyer
// aggregate commit as one unit.
func (e *Engine) BuyTickets(now time.Time, raffleID uint64, buyer string, count uint64, payment chain.Coin) error {
	if count == 0 {
		return ErrZeroCount
	}

	buyer, err := e.addresses.Validate(buyer)
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
	if raffle.Status != storage.StatusActive {
		return ErrRaffleNotActive
	}
	if raffle.StartTime != 0 && now.Unix() < raffle.StartTime {
		return ErrNotStarted
	}
	if now.Unix() > raffle.EndTime {
		return ErrRaffleEnded
	}
	if count > raffle.MaxTickets-raffle.TotalSold {
		return ErrExceedsMaxTickets
	}

	expectedDenom := raffle.PriceDenom
	if raffle.PaymentToken != "" {
		expectedDenom = raffle.PaymentToken
	}
	if payment.Denom != expectedDenom {
		return ErrWrongDenom
	}

	hi, required := bits.Mul64(raffle.PriceAmount, count)
	if hi != 0 {
		return ErrAmountOverflow
	}
	if payment.Amount < required {
		return ErrInsufficientPayment
	}

	if err := e.store.AppendTickets(raffleID, buyer, count); err != nil {
		return err
	}

	logger.Info("tickets bought",
		zap.Uint64("raffle_id", raffleID),
		zap.String("buyer", buyer),
		zap.Uint64("quantity", count),
		zap.Uint64("total_paid", required),
		zap.String("denom", expectedDenom))

	return nil
}
