package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ark-network/counter/internal/core/domain"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/spf13/viper"
)

type Config struct {
	Datadir  string
	Port     uint32
	LogLevel int

	DbType      string
	EventDbType string
	DbDir       string

	EscrowType     string
	RedisURL       string
	InitialFunding uint64

	OracleType         string
	OracleFulfillDelay time.Duration
	OracleAutoSettle   bool

	ProgramID           string
	FunctionID          string
	StaleRoundThreshold int64
	StaleCheckInterval  int64
}

func (c *Config) String() string {
	json, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("error while marshalling config JSON: %s", err)
	}
	return string(json)
}

var (
	Datadir             = "DATADIR"
	Port                = "PORT"
	LogLevel            = "LOG_LEVEL"
	DbType              = "DB_TYPE"
	EventDbType         = "EVENT_DB_TYPE"
	EscrowType          = "ESCROW_TYPE"
	RedisURL            = "REDIS_URL"
	InitialFunding      = "ESCROW_INITIAL_FUNDING"
	OracleType          = "ORACLE_TYPE"
	OracleFulfillDelay  = "ORACLE_FULFILL_DELAY"
	OracleAutoSettle    = "ORACLE_AUTO_SETTLE"
	ProgramID           = "PROGRAM_ID"
	FunctionID          = "FUNCTION_ID"
	StaleRoundThreshold = "STALE_ROUND_THRESHOLD"
	StaleCheckInterval  = "STALE_CHECK_INTERVAL"

	defaultDatadir             = btcutil.AppDataDir("counterd", false)
	DefaultPort                = 7171
	defaultLogLevel            = 4
	defaultDbType              = "badger"
	defaultEventDbType         = "watermill"
	defaultEscrowType          = "inmemory"
	defaultInitialFunding      = 0
	defaultOracleType          = "local"
	defaultOracleFulfillDelay  = 2 * time.Second
	defaultOracleAutoSettle    = true
	defaultFunctionID          = "randomness"
	defaultStaleRoundThreshold = 3600
	defaultStaleCheckInterval  = 600
)

func LoadConfig() (*Config, error) {
	viper.SetEnvPrefix("COUNTER")
	viper.AutomaticEnv()

	viper.SetDefault(Datadir, defaultDatadir)
	viper.SetDefault(Port, DefaultPort)
	viper.SetDefault(LogLevel, defaultLogLevel)
	viper.SetDefault(DbType, defaultDbType)
	viper.SetDefault(EventDbType, defaultEventDbType)
	viper.SetDefault(EscrowType, defaultEscrowType)
	viper.SetDefault(InitialFunding, defaultInitialFunding)
	viper.SetDefault(OracleType, defaultOracleType)
	viper.SetDefault(OracleFulfillDelay, defaultOracleFulfillDelay)
	viper.SetDefault(OracleAutoSettle, defaultOracleAutoSettle)
	viper.SetDefault(ProgramID, domain.DefaultProgramID)
	viper.SetDefault(FunctionID, defaultFunctionID)
	viper.SetDefault(StaleRoundThreshold, defaultStaleRoundThreshold)
	viper.SetDefault(StaleCheckInterval, defaultStaleCheckInterval)

	if err := initDatadir(); err != nil {
		return nil, fmt.Errorf("error while creating datadir: %s", err)
	}

	dbPath := filepath.Join(viper.GetString(Datadir), "db")

	cfg := &Config{
		Datadir:             viper.GetString(Datadir),
		Port:                viper.GetUint32(Port),
		LogLevel:            viper.GetInt(LogLevel),
		DbType:              viper.GetString(DbType),
		EventDbType:         viper.GetString(EventDbType),
		DbDir:               dbPath,
		EscrowType:          viper.GetString(EscrowType),
		RedisURL:            viper.GetString(RedisURL),
		InitialFunding:      viper.GetUint64(InitialFunding),
		OracleType:          viper.GetString(OracleType),
		OracleFulfillDelay:  viper.GetDuration(OracleFulfillDelay),
		OracleAutoSettle:    viper.GetBool(OracleAutoSettle),
		ProgramID:           viper.GetString(ProgramID),
		FunctionID:          viper.GetString(FunctionID),
		StaleRoundThreshold: viper.GetInt64(StaleRoundThreshold),
		StaleCheckInterval:  viper.GetInt64(StaleCheckInterval),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 {
		return fmt.Errorf("missing port")
	}
	if c.LogLevel < 0 || c.LogLevel > 6 {
		return fmt.Errorf("invalid log level, must be in range [0, 6]")
	}
	if c.EscrowType == "redis" && len(c.RedisURL) <= 0 {
		return fmt.Errorf("REDIS_URL not provided")
	}
	if _, err := domain.DecodeKey(c.ProgramID); err != nil {
		return fmt.Errorf("invalid program id: %s", err)
	}
	if len(c.FunctionID) <= 0 {
		return fmt.Errorf("missing function id")
	}
	if c.StaleRoundThreshold < 0 {
		return fmt.Errorf("invalid stale round threshold, must not be negative")
	}
	if c.StaleCheckInterval < 0 {
		return fmt.Errorf("invalid stale check interval, must not be negative")
	}
	return nil
}

func initDatadir() error {
	datadir := viper.GetString(Datadir)
	return makeDirectoryIfNotExists(datadir)
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
