package automation

import (
	"context"
	"errors"
	"time"

	"backend/internal/drand"
	"backend/internal/engine"
	"backend/internal/logger"
	"backend/internal/storage"

	"go.uber.org/zap"
)

// safetyBuffer keeps the sweep from racing the beacon right at end_time;
// a raffle is only ended once its close is this far in the past (sellouts
// are ended immediately).
const safetyBuffer = 30 * time.Second

const sweepPageSize = 100

// Automation periodically settles eligible raffles with a freshly fetched
// drand beacon, acting as the configured operator address. Settlement is
// permissionless, so this is a convenience, not a trust requirement.
type Automation struct {
	ctx      context.Context
	engine   *engine.Engine
	client   *drand.Client
	operator string
	interval time.Duration
}

type Func[T any] func() (T, error)

func rateLimitRetry[T any](fn Func[T]) (T, error) {
	for {
		result, err := fn()
		if err != nil {
			var e *drand.StatusError
			if errors.As(err, &e) && e.StatusCode == 429 {
				time.Sleep(500 * time.Millisecond)
				continue
			}
		}

		return result, err
	}
}

func New(ctx context.Context, eng *engine.Engine, client *drand.Client, operator string, interval time.Duration) *Automation {
	return &Automation{
		ctx:      ctx,
		engine:   eng,
		client:   client,
		operator: operator,
		interval: interval,
	}
}

// Run sweeps on the configured interval until the context is cancelled.
func (a *Automation) Run() {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	logger.Info("automation started", zap.Duration("interval", a.interval))

	for {
		select {
		case <-a.ctx.Done():
			a.Finalize()
			return
		case <-ticker.C:
			if err := a.Sweep(time.Now()); err != nil {
				logger.Error("automation sweep failed", zap.Error(err))
			}
		}
	}
}

func (a *Automation) Finalize() {
	logger.Info("automation stopped")
}

// Sweep finds every raffle eligible for settlement and ends it.
func (a *Automation) Sweep(now time.Time) error {
	logger.Debug("automation sweep...")

	eligible, err := a.findEligibleRaffles(now)
	if err != nil {
		return err
	}
	if len(eligible) == 0 {
		logger.Debug("automation sweep...done, nothing eligible")
		return nil
	}

	logger.Info("raffles eligible for ending", zap.Int("count", len(eligible)))

	for _, raffle := range eligible {
		if err := a.endRaffle(now, raffle); err != nil {
			logger.Error("failed to end raffle",
				zap.Uint64("raffle_id", raffle.ID),
				zap.Error(err))
		}
	}

	logger.Debug("automation sweep...done")
	return nil
}

func (a *Automation) findEligibleRaffles(now time.Time) ([]*engine.RaffleView, error) {
	var eligible []*engine.RaffleView
	var startAfter uint64

	for {
		page, err := a.engine.Raffles(startAfter, sweepPageSize)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		for _, raffle := range page {
			if raffle.Status != storage.StatusActive || raffle.TotalSold == 0 {
				continue
			}
			soldOut := raffle.TotalSold >= raffle.MaxTickets
			timeEnd := now.Add(-safetyBuffer).Unix() >= raffle.EndTime
			if soldOut || timeEnd {
				eligible = append(eligible, raffle)
			}
		}

		startAfter = page[len(page)-1].ID
		if len(page) < sweepPageSize {
			break
		}
	}

	return eligible, nil
}

func (a *Automation) endRaffle(now time.Time, raffle *engine.RaffleView) error {
	logger.Debug("fetching drand randomness...", zap.Uint64("raffle_id", raffle.ID))

	round, err := rateLimitRetry(func() (*drand.PublicRound, error) {
		return a.client.Latest(a.ctx)
	})
	if err != nil {
		return err
	}

	logger.Debug("fetching drand randomness...done",
		zap.Uint64("round", round.Round))

	result, err := a.engine.EndRaffle(now, raffle.ID, a.operator, drand.Beacon{
		Round:      round.Round,
		Randomness: round.Randomness,
		Signature:  round.Signature,
	})
	if err != nil {
		return err
	}

	logger.Info("raffle ended by automation",
		zap.Uint64("raffle_id", result.RaffleID),
		zap.String("winner", result.Winner),
		zap.Uint64("ticket_index", result.WinnerIndex),
		zap.String("end_reason", result.EndReason))

	return nil
}
