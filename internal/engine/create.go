package engine

import (
	"time"

	"backend/internal/chain"
	"backend/internal/logger"
	"backend/internal/storage"

	"go.uber.org/zap"
)

type CreateParams struct {
	Creator       string
	PrizeContract string
	PrizeTokenID  string
	Price         chain.Coin
	PaymentToken  string
	MaxTickets    uint64
	StartTime     *time.Time
	EndTime       time.Time
	Payee         string
}

// CreateRaffle opens a new raffle and returns its id. The prize asset is
// assumed to be escrowed already; no funds move here.
func (e *Engine) CreateRaffle(now time.Time, params CreateParams) (uint64, error) {
	if !params.EndTime.After(now) {
		return 0, ErrEndTimeInPast
	}
	if params.StartTime != nil && !params.StartTime.Before(params.EndTime) {
		return 0, ErrBadTimeOrder
	}

	creator, err := e.addresses.Validate(params.Creator)
	if err != nil {
		return 0, err
	}
	prizeContract, err := e.addresses.Validate(params.PrizeContract)
	if err != nil {
		return 0, err
	}

	payee := creator
	if params.Payee != "" {
		payee, err = e.addresses.Validate(params.Payee)
		if err != nil {
			return 0, err
		}
	}

	paymentToken := ""
	if params.PaymentToken != "" {
		paymentToken, err = e.addresses.Validate(params.PaymentToken)
		if err != nil {
			return 0, err
		}
	}

	raffle := &storage.Raffle{
		Creator:       creator,
		PrizeContract: prizeContract,
		PrizeTokenID:  params.PrizeTokenID,
		PriceDenom:    params.Price.Denom,
		PriceAmount:   params.Price.Amount,
		PaymentToken:  paymentToken,
		MaxTickets:    params.MaxTickets,
		TotalSold:     0,
		EndTime:       params.EndTime.Unix(),
		Payee:         payee,
		Status:        storage.StatusActive,
	}
	if params.StartTime != nil {
		raffle.StartTime = params.StartTime.Unix()
	}

	raffleID, err := e.store.CreateRaffle(raffle)
	if err != nil {
		return 0, err
	}

	logger.Info("raffle created",
		zap.Uint64("raffle_id", raffleID),
		zap.String("creator", creator),
		zap.String("prize_contract", prizeContract),
		zap.String("token_id", params.PrizeTokenID),
		zap.String("ticket_price", params.Price.String()),
		zap.Int64("start_time", raffle.StartTime),
		zap.Int64("end_time", raffle.EndTime),
		zap.Uint64("max_tickets", params.MaxTickets),
		zap.String("payee", payee),
		zap.String("payment_denom", params.Price.Denom))

	return raffleID, nil
}
