package engine

import (
	"backend/internal/chain"
	"backend/internal/logger"
	"backend/internal/storage"

	"go.uber.org/zap"
)

const maxFeeBps = 10000

// Engine owns the raffle lifecycle. Every mutating operation takes the
// caller-supplied current time, checks its preconditions up front and
// commits through a single atomic storage call, so a failed call never
// leaves partial state behind.
type Engine struct {
	store     storage.Storage
	addresses chain.AddressValidator
}

func New(store storage.Storage, addresses chain.AddressValidator) *Engine {
	return &Engine{
		store:     store,
		addresses: addresses,
	}
}

// Config is the admin-mutable singleton read by the lifecycle operations.
type Config struct {
	Admin             string
	ProtocolFeeBps    uint32
	Bounty            *chain.Coin
	DrandPubkey       string
	DrandRoundSeconds uint64
}

// InitConfig seeds the singleton. Calling it on an initialized store is a
// no-op so process restarts keep the persisted values.
func (e *Engine) InitConfig(admin string, feeBps uint32, bounty *chain.Coin, drandPubkey string) error {
	existing, err := e.store.GetConfig()
	if err != nil {
		return err
	}
	if existing != nil {
		logger.Debug("config already initialized, keeping persisted values")
		return nil
	}

	admin, err = e.addresses.Validate(admin)
	if err != nil {
		return err
	}
	if feeBps > maxFeeBps {
		return ErrInvalidFeeBps
	}

	record := &storage.ConfigRecord{
		Admin:          admin,
		ProtocolFeeBps: feeBps,
		DrandPubkey:    drandPubkey,
	}
	if bounty != nil {
		record.BountyDenom = bounty.Denom
		record.BountyAmount = bounty.Amount
	}

	if err := e.store.SaveConfig(record); err != nil {
		return err
	}

	logger.Info("config initialized",
		zap.String("admin", admin),
		zap.Uint32("protocol_fee_bps", feeBps))
	return nil
}

// ConfigUpdate carries the fields to change; nil fields are left alone.
type ConfigUpdate struct {
	FeeBps            *uint32
	Bounty            *chain.Coin
	DrandPubkey       *string
	DrandRoundSeconds *uint64
}

// UpdateConfig applies an admin-only partial update to the singleton.
func (e *Engine) UpdateConfig(caller string, update ConfigUpdate) error {
	record, err := e.store.GetConfig()
	if err != nil {
		return err
	}
	if record == nil {
		return ErrNotInitialized
	}
	if caller != record.Admin {
		return ErrUnauthorized
	}

	if update.FeeBps != nil {
		if *update.FeeBps > maxFeeBps {
			return ErrInvalidFeeBps
		}
		record.ProtocolFeeBps = *update.FeeBps
	}
	if update.Bounty != nil {
		record.BountyDenom = update.Bounty.Denom
		record.BountyAmount = update.Bounty.Amount
	}
	if update.DrandPubkey != nil {
		record.DrandPubkey = *update.DrandPubkey
	}
	if update.DrandRoundSeconds != nil {
		record.DrandRoundSeconds = *update.DrandRoundSeconds
	}

	if err := e.store.SaveConfig(record); err != nil {
		return err
	}

	logger.Info("config updated", zap.String("caller", caller))
	return nil
}

// Config returns the current singleton, or ErrNotInitialized.
func (e *Engine) Config() (*Config, error) {
	record, err := e.store.GetConfig()
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrNotInitialized
	}
	return configFromRecord(record), nil
}

func configFromRecord(record *storage.ConfigRecord) *Config {
	config := &Config{
		Admin:             record.Admin,
		ProtocolFeeBps:    record.ProtocolFeeBps,
		DrandPubkey:       record.DrandPubkey,
		DrandRoundSeconds: record.DrandRoundSeconds,
	}
	if record.BountyDenom != "" {
		config.Bounty = &chain.Coin{Denom: record.BountyDenom, Amount: record.BountyAmount}
	}
	return config
}
