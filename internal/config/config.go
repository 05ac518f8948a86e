package config

import (
	"os"
	"strconv"
	"time"

	"backend/internal/drand"
	"backend/internal/logger"

	"github.com/joho/godotenv"
)

// Config is the process configuration read from the environment, optionally
// seeded from a .env file. The raffle Config singleton (admin, fee, bounty)
// is only taken from here on first start; afterwards the persisted values
// win.
type Config struct {
	DatabasePath string
	AddressHRP   string

	Admin             string
	ProtocolFeeBps    uint32
	BountyDenom       string
	BountyAmount      uint64
	DrandPubkey       string
	DrandRoundSeconds uint64

	DrandURL           string
	AutomationEnabled  bool
	AutomationInterval time.Duration
	OperatorAddress    string

	LogFile   string
	ErrorFile string
	LogLevel  string
	Console   bool
}

func Load(envPath string) *Config {

	var err error
	if envPath != "" {
		err = godotenv.Load(envPath)
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		logger.Debug("no .env file found, using process environment")
	}

	return &Config{
		DatabasePath: getString("DATABASE_PATH", "persistent.db"),
		AddressHRP:   getString("ADDRESS_HRP", ""),

		Admin:             os.Getenv("ADMIN_ADDRESS"),
		ProtocolFeeBps:    uint32(getUint("PROTOCOL_FEE_BPS", 0)),
		BountyDenom:       os.Getenv("BOUNTY_DENOM"),
		BountyAmount:      getUint("BOUNTY_AMOUNT", 0),
		DrandPubkey:       getString("DRAND_PUBKEY", drand.MainnetPubkey),
		DrandRoundSeconds: getUint("DRAND_ROUND_SECONDS", 0),

		DrandURL:           getString("DRAND_URL", drand.DefaultBaseURL),
		AutomationEnabled:  os.Getenv("AUTOMATION_ENABLED") == "true",
		AutomationInterval: time.Duration(getUint("AUTOMATION_INTERVAL_MS", 60000)) * time.Millisecond,
		OperatorAddress:    os.Getenv("OPERATOR_ADDRESS"),

		LogFile:   os.Getenv("LOG_FILE"),
		ErrorFile: os.Getenv("ERROR_LOG_FILE"),
		LogLevel:  getString("LOG_LEVEL", "debug"),
		Console:   os.Getenv("LOG_CONSOLE") != "false",
	}
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getUint(key string, fallback uint64) uint64 {
	value, err := strconv.ParseUint(os.Getenv(key), 10, 64)
	if err != nil {
		return fallback
	}
	return value
}
