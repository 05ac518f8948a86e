package storage

type Storage interface {
	// config singleton
	GetConfig() (*ConfigRecord, error)
	SaveConfig(config *ConfigRecord) error

	// raffles
	CreateRaffle(raffle *Raffle) (uint64, error)
	GetRaffle(raffleID uint64) (*Raffle, error)
	ListRaffles(startAfter uint64, limit int) ([]*Raffle, error)

	// tickets
	AppendTickets(raffleID uint64, owner string, count uint64) error
	GetTicketOwner(raffleID uint64, index uint64) (string, error)
	ScanTicketOwners(raffleID uint64, startIndex uint64, limit int) ([]string, error)
	GetTicketCount(raffleID uint64, owner string) (uint64, error)

	// settlement
	IsRoundUsed(raffleID uint64, round uint64) (bool, error)
	CompleteRaffle(raffleID uint64, winner string, endReason string, round uint64) error
	CancelRaffle(raffleID uint64) error
}

type RaffleStatus = string

const (
	StatusActive    RaffleStatus = "active"
	StatusCompleted RaffleStatus = "completed"
	StatusCancelled RaffleStatus = "cancelled"
)

const (
	EndReasonTime    = "time"
	EndReasonSoldOut = "soldout"
)
