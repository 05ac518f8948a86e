package storage

// ConfigRecord is the process-wide raffle configuration, stored as a single
// row with ID 1. BountyDenom empty means no bounty is configured;
// DrandRoundSeconds zero means no per-raffle minimum round is enforced.
type ConfigRecord struct {
	ID                uint64 `gorm:"primaryKey"`
	Admin             string `gorm:"not null"`
	ProtocolFeeBps    uint32 `gorm:"not null"`
	BountyDenom       string `gorm:"default:''"`
	BountyAmount      uint64 `gorm:"default:0"`
	DrandPubkey       string `gorm:"default:''"`
	DrandRoundSeconds uint64 `gorm:"default:0"`
}

// Raffle times are unix seconds; StartTime zero means sales open immediately.
// PaymentToken empty means the raffle is paid in the native PriceDenom.
type Raffle struct {
	ID            uint64 `gorm:"primaryKey"`
	Creator       string `gorm:"not null"`
	PrizeContract string `gorm:"not null"`
	PrizeTokenID  string `gorm:"not null"`
	PriceDenom    string `gorm:"not null"`
	PriceAmount   uint64 `gorm:"not null"`
	PaymentToken  string `gorm:"default:''"`
	MaxTickets    uint64 `gorm:"not null"`
	TotalSold     uint64 `gorm:"default:0"`
	StartTime     int64  `gorm:"default:0"`
	EndTime       int64  `gorm:"not null"`
	Payee         string `gorm:"not null"`
	Status        string `gorm:"not null;default:active"`
	Winner        string `gorm:"default:''"`
	EndReason     string `gorm:"default:''"`
	DrandRound    uint64 `gorm:"default:0"`
}

type Ticket struct {
	RaffleID uint64 `gorm:"primaryKey;autoIncrement:false"`
	Idx      uint64 `gorm:"primaryKey;autoIncrement:false"`
	Owner    string `gorm:"not null"`
}

type TicketCount struct {
	RaffleID uint64 `gorm:"primaryKey;autoIncrement:false"`
	Owner    string `gorm:"primaryKey"`
	Count    uint64 `gorm:"not null"`
}

type UsedRound struct {
	RaffleID uint64 `gorm:"primaryKey;autoIncrement:false"`
	Round    uint64 `gorm:"primaryKey;autoIncrement:false"`
}

// Sequence backs monotonic id allocation; a single row named "raffle_id".
type Sequence struct {
	Name  string `gorm:"primaryKey"`
	Value uint64 `gorm:"not null"`
}
