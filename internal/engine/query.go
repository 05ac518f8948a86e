package engine

import (
	"backend/internal/chain"
	"backend/internal/storage"
)

const (
	defaultPageLimit     = 50
	maxRafflePageLimit   = 100
	maxParticipantsLimit = 200
)

// RaffleView is the read-only projection served by the query surface.
type RaffleView struct {
	ID            uint64
	Creator       string
	PrizeContract string
	PrizeTokenID  string
	Price         chain.Coin
	PaymentToken  string
	MaxTickets    uint64
	TotalSold     uint64
	StartTime     int64
	EndTime       int64
	Payee         string
	Status        string
	Winner        string
	EndReason     string
}

// Raffle returns a single raffle view, or nil when the id is unknown.
func (e *Engine) Raffle(raffleID uint64) (*RaffleView, error) {
	raffle, err := e.store.GetRaffle(raffleID)
	if err != nil {
		return nil, err
	}
	if raffle == nil {
		return nil, nil
	}
	return viewFromRaffle(raffle), nil
}

// Raffles pages over raffles in id order, exclusive of startAfter.
func (e *Engine) Raffles(startAfter uint64, limit int) ([]*RaffleView, error) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxRafflePageLimit {
		limit = maxRafflePageLimit
	}

	raffles, err := e.store.ListRaffles(startAfter, limit)
	if err != nil {
		return nil, err
	}

	views := make([]*RaffleView, 0, len(raffles))
	for _, raffle := range raffles {
		views = append(views, viewFromRaffle(raffle))
	}
	return views, nil
}

type ParticipantView struct {
	RaffleID    uint64
	Address     string
	TicketCount uint64
}

// Participant returns the cumulative ticket count for one buyer; zero when
// the buyer holds no tickets.
func (e *Engine) Participant(raffleID uint64, address string) (*ParticipantView, error) {
	address, err := e.addresses.Validate(address)
	if err != nil {
		return nil, err
	}

	count, err := e.store.GetTicketCount(raffleID, address)
	if err != nil {
		return nil, err
	}

	return &ParticipantView{
		RaffleID:    raffleID,
		Address:     address,
		TicketCount: count,
	}, nil
}

// ParticipantEntry is one ticket's owner; a buyer holding k tickets appears
// k times across a full scan.
type ParticipantEntry struct {
	Owner   string
	Tickets uint64
}

// Participants pages over ticket owners by index starting at startAfter.
func (e *Engine) Participants(raffleID uint64, startAfter uint64, limit int) ([]ParticipantEntry, error) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxParticipantsLimit {
		limit = maxParticipantsLimit
	}

	owners, err := e.store.ScanTicketOwners(raffleID, startAfter, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]ParticipantEntry, 0, len(owners))
	for _, owner := range owners {
		entries = append(entries, ParticipantEntry{Owner: owner, Tickets: 1})
	}
	return entries, nil
}

func viewFromRaffle(raffle *storage.Raffle) *RaffleView {
	return &RaffleView{
		ID:            raffle.ID,
		Creator:       raffle.Creator,
		PrizeContract: raffle.PrizeContract,
		PrizeTokenID:  raffle.PrizeTokenID,
		Price:         chain.Coin{Denom: raffle.PriceDenom, Amount: raffle.PriceAmount},
		PaymentToken:  raffle.PaymentToken,
		MaxTickets:    raffle.MaxTickets,
		TotalSold:     raffle.TotalSold,
		StartTime:     raffle.StartTime,
		EndTime:       raffle.EndTime,
		Payee:         raffle.Payee,
		Status:        raffle.Status,
		Winner:        raffle.Winner,
		EndReason:     raffle.EndReason,
	}
}
