package engine

import (
	"time"

	"backend/internal/chain"
	"backend/internal/drand"
	"backend/internal/logger"
	"backend/internal/payout"
	"backend/internal/storage"

	"go.uber.org/zap"
)

// EndResult describes a settled raffle: the drawn winner, the prize
// instruction for the custody collaborator and the ordered fund transfers
// computed by the payout split.
type EndResult struct {
	RaffleID      uint64
	Winner        string
	WinnerIndex   uint64
	Seed          uint64
	Round         uint64
	EndReason     string
	Total         uint64
	Fee           uint64
	Bounty        uint64
	Payout        uint64
	PrizeTransfer chain.PrizeTransfer
	FundTransfers []chain.BankSend
}

// EndRaffle settles an active raffle once its closing condition holds:
// the sale window has expired or every ticket is sold. The beacon triple is
// verified before anything is trusted; the winner is the owner of ticket
// seed mod total_sold. Executor receives the configured bounty, which makes
// settlement permissionless. The status flip and the used-round marker
// commit together, after the split has been computed, so a failure anywhere
// leaves the raffle untouched.
func (e *Engine) EndRaffle(now time.Time, raffleID uint64, executor string, beacon drand.Beacon) (*EndResult, error) {
	config, err := e.store.GetConfig()
	if err != nil {
		return nil, err
	}
	if config == nil {
		return nil, ErrNotInitialized
	}

	executor, err = e.addresses.Validate(executor)
	if err != nil {
		return nil, err
	}

	raffle, err := e.store.GetRaffle(raffleID)
	if err != nil {
		return nil, err
	}
	if raffle == nil {
		return nil, ErrRaffleNotFound
	}
	if raffle.Status != storage.StatusActive {
		return nil, ErrRaffleNotActive
	}

	timeEnd := now.Unix() >= raffle.EndTime
	soldOut := raffle.TotalSold >= raffle.MaxTickets
	if !timeEnd && !soldOut {
		return nil, ErrNotReadyToEnd
	}
	if raffle.TotalSold == 0 {
		return nil, ErrNoTicketsSold
	}

	used, err := e.store.IsRoundUsed(raffleID, beacon.Round)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, ErrRoundAlreadyUsed
	}

	if config.DrandPubkey == "" {
		return nil, ErrDrandNotConfigured
	}

	var minRound uint64
	if config.DrandRoundSeconds > 0 {
		minRound = uint64(raffle.EndTime) / config.DrandRoundSeconds
	}

	seed, err := drand.Verify(config.DrandPubkey, beacon, now, minRound)
	if err != nil {
		return nil, err
	}

	winnerIndex := seed % raffle.TotalSold
	winner, err := e.store.GetTicketOwner(raffleID, winnerIndex)
	if err != nil {
		return nil, err
	}

	var bounty *chain.Coin
	if config.BountyDenom != "" {
		bounty = &chain.Coin{Denom: config.BountyDenom, Amount: config.BountyAmount}
	}

	split, err := payout.Compute(payout.Params{
		PriceAmount: raffle.PriceAmount,
		TotalSold:   raffle.TotalSold,
		Denom:       raffle.PriceDenom,
		FeeBps:      config.ProtocolFeeBps,
		Bounty:      bounty,
		Admin:       config.Admin,
		Executor:    executor,
		Payee:       raffle.Payee,
	})
	if err != nil {
		return nil, err
	}

	endReason := storage.EndReasonTime
	if soldOut {
		endReason = storage.EndReasonSoldOut
	}

	if err := e.store.CompleteRaffle(raffleID, winner, endReason, beacon.Round); err != nil {
		return nil, err
	}

	result := &EndResult{
		RaffleID:    raffleID,
		Winner:      winner,
		WinnerIndex: winnerIndex,
		Seed:        seed,
		Round:       beacon.Round,
		EndReason:   endReason,
		Total:       split.Total,
		Fee:         split.Fee,
		Bounty:      split.Bounty,
		Payout:      split.Payout,
		PrizeTransfer: chain.PrizeTransfer{
			Contract:  raffle.PrizeContract,
			TokenID:   raffle.PrizeTokenID,
			Recipient: winner,
		},
		FundTransfers: split.Sends,
	}

	logger.Info("raffle ended",
		zap.Uint64("raffle_id", raffleID),
		zap.String("end_reason", endReason),
		zap.Uint64("drand_round", beacon.Round),
		zap.String("winner", winner),
		zap.Uint64("ticket_index", winnerIndex),
		zap.Uint64("protocol_fee", split.Fee),
		zap.Uint64("bounty_paid", split.Bounty),
		zap.Uint64("payout", split.Payout))

	return result, nil
}
