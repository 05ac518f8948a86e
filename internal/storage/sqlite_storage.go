package storage

import (
	"backend/internal/logger"
	"errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const raffleSequence = "raffle_id"

type SqliteStorage struct {
	db *gorm.DB
}

func NewSqliteStorage(path string) *SqliteStorage {

	logger.Debug("initializing database...")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	err = db.AutoMigrate(
		&ConfigRecord{},
		&Raffle{},
		&Ticket{},
		&TicketCount{},
		&UsedRound{},
		&Sequence{},
	)

	if err != nil {
		panic(err)
	}

	return &SqliteStorage{
		db: db,
	}
}

func (s *SqliteStorage) GetConfig() (*ConfigRecord, error) {

	var config ConfigRecord
	err := s.db.First(&config, "id = ?", 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &config, nil
}

func (s *SqliteStorage) SaveConfig(config *ConfigRecord) error {
	logger.Debug("saving config...")

	config.ID = 1
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(config).Error

	if err != nil {
		return err
	}

	logger.Debug("saving config...done")
	return nil
}

// CreateRaffle assigns the next sequential id and persists the raffle in a
// single transaction.
func (s *SqliteStorage) CreateRaffle(raffle *Raffle) (uint64, error) {
	logger.Debug("creating raffle...")

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var seq Sequence
		err := tx.First(&seq, "name = ?", raffleSequence).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			seq = Sequence{Name: raffleSequence, Value: 0}
			if err := tx.Create(&seq).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		seq.Value++
		if err := tx.Save(&seq).Error; err != nil {
			return err
		}

		raffle.ID = seq.Value
		return tx.Create(raffle).Error
	})

	if err != nil {
		return 0, err
	}

	logger.Debug("creating raffle...done")
	return raffle.ID, nil
}

func (s *SqliteStorage) GetRaffle(raffleID uint64) (*Raffle, error) {

	var raffle Raffle
	err := s.db.First(&raffle, "id = ?", raffleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &raffle, nil
}

func (s *SqliteStorage) ListRaffles(startAfter uint64, limit int) ([]*Raffle, error) {

	var raffles []*Raffle
	err := s.db.
		Where("id > ?", startAfter).
		Order("id asc").
		Limit(limit).
		Find(&raffles).Error

	if err != nil {
		return nil, err
	}

	return raffles, nil
}

// AppendTickets records count contiguous tickets for owner starting at the
// raffle's current total_sold, bumps the counter, and increments the owner's
// aggregate. All of it commits or none of it does.
func (s *SqliteStorage) AppendTickets(raffleID uint64, owner string, count uint64) error {
	logger.Debug("appending tickets...")

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var raffle Raffle
		if err := tx.First(&raffle, "id = ?", raffleID).Error; err != nil {
			return err
		}

		tickets := make([]*Ticket, 0, count)
		for i := uint64(0); i < count; i++ {
			tickets = append(tickets, &Ticket{
				RaffleID: raffleID,
				Idx:      raffle.TotalSold + i,
				Owner:    owner,
			})
		}
		if err := tx.CreateInBatches(tickets, 100).Error; err != nil {
			return err
		}

		raffle.TotalSold += count
		if err := tx.Model(&Raffle{}).
			Where("id = ?", raffleID).
			Update("total_sold", raffle.TotalSold).Error; err != nil {
			return err
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "raffle_id"}, {Name: "owner"}},
			DoUpdates: []clause.Assignment{{Column: clause.Column{Name: "count"}, Value: gorm.Expr("count + ?", count)}},
		}).Create(&TicketCount{
			RaffleID: raffleID,
			Owner:    owner,
			Count:    count,
		}).Error
	})

	if err != nil {
		return err
	}

	logger.Debug("appending tickets...done")
	return nil
}

func (s *SqliteStorage) GetTicketOwner(raffleID uint64, index uint64) (string, error) {

	var ticket Ticket
	err := s.db.First(&ticket, "raffle_id = ? and idx = ?", raffleID, index).Error
	if err != nil {
		return "", err
	}

	return ticket.Owner, nil
}

func (s *SqliteStorage) ScanTicketOwners(raffleID uint64, startIndex uint64, limit int) ([]string, error) {

	var owners []string
	err := s.db.Model(&Ticket{}).
		Where("raffle_id = ? and idx >= ?", raffleID, startIndex).
		Order("idx asc").
		Limit(limit).
		Pluck("owner", &owners).Error

	if err != nil {
		return nil, err
	}

	return owners, nil
}

func (s *SqliteStorage) GetTicketCount(raffleID uint64, owner string) (uint64, error) {

	var count uint64
	err := s.db.Raw(`
		select coalesce(max(count), 0) as count
		from ticket_counts
		where raffle_id = ? and owner = ?
	`, raffleID, owner).Scan(&count).Error

	if err != nil {
		return 0, err
	}

	return count, nil
}

func (s *SqliteStorage) IsRoundUsed(raffleID uint64, round uint64) (bool, error) {

	var n int64
	err := s.db.Model(&UsedRound{}).
		Where("raffle_id = ? and round = ?", raffleID, round).
		Count(&n).Error

	if err != nil {
		return false, err
	}

	return n > 0, nil
}

// CompleteRaffle commits the terminal transition and the used-round marker
// together.
func (s *SqliteStorage) CompleteRaffle(raffleID uint64, winner string, endReason string, round uint64) error {
	logger.Debug("completing raffle...")

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Raffle{}).
			Where("id = ?", raffleID).
			Updates(map[string]interface{}{
				"status":      StatusCompleted,
				"winner":      winner,
				"end_reason":  endReason,
				"drand_round": round,
			}).Error; err != nil {
			return err
		}

		return tx.Create(&UsedRound{RaffleID: raffleID, Round: round}).Error
	})

	if err != nil {
		return err
	}

	logger.Debug("completing raffle...done")
	return nil
}

func (s *SqliteStorage) CancelRaffle(raffleID uint64) error {
	logger.Debug("cancelling raffle...")

	err := s.db.Model(&Raffle{}).
		Where("id = ?", raffleID).
		Update("status", StatusCancelled).Error

	if err != nil {
		return err
	}

	logger.Debug("cancelling raffle...done")
	return nil
}
