package appconfig

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ark-network/counter/internal/core/application"
	"github.com/ark-network/counter/internal/core/ports"
	"github.com/ark-network/counter/internal/infrastructure/db"
	inmemoryescrow "github.com/ark-network/counter/internal/infrastructure/escrow/inmemory"
	redisescrow "github.com/ark-network/counter/internal/infrastructure/escrow/redis"
	localoracle "github.com/ark-network/counter/internal/infrastructure/oracle/local"
	timescheduler "github.com/ark-network/counter/internal/infrastructure/scheduler/gocron"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const redisNumOfRetries = 10

var (
	supportedEventDbs = supportedType{
		"watermill": {},
	}
	supportedDbs = supportedType{
		"badger": {},
		"sqlite": {},
	}
	supportedEscrows = supportedType{
		"inmemory": {},
		"redis":    {},
	}
	supportedOracles = supportedType{
		"local": {},
	}
)

type Config struct {
	DbType      string
	EventDbType string
	// DbDir is where badger and sqlite store their data. Empty means badger
	// runs in memory.
	DbDir string

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

	repo      ports.RepoManager
	svc       application.Service
	escrow    ports.EscrowLedger
	oracle    ports.OracleGateway
	scheduler ports.SchedulerService
}

func (c *Config) Validate() error {
	if !supportedEventDbs.supports(c.EventDbType) {
		return fmt.Errorf("event db type not supported, please select one of: %s", supportedEventDbs)
	}
	if !supportedDbs.supports(c.DbType) {
		return fmt.Errorf("db type not supported, please select one of: %s", supportedDbs)
	}
	if !supportedEscrows.supports(c.EscrowType) {
		return fmt.Errorf("escrow type not supported, please select one of: %s", supportedEscrows)
	}
	if !supportedOracles.supports(c.OracleType) {
		return fmt.Errorf("oracle type not supported, please select one of: %s", supportedOracles)
	}
	if c.DbType == "sqlite" && len(c.DbDir) <= 0 {
		return fmt.Errorf("missing db dir for sqlite db")
	}
	if c.StaleRoundThreshold < 0 {
		return fmt.Errorf("invalid stale round threshold, must not be negative")
	}
	if c.StaleCheckInterval < 0 {
		return fmt.Errorf("invalid stale check interval, must not be negative")
	}
	if c.EscrowType == "inmemory" && len(c.DbDir) > 0 {
		log.Warnf(
			"escrow funds are kept in memory while accounts are stored in %s, "+
				"wallets restart empty and are topped up again from re-funded authorities",
			c.DbDir,
		)
	}

	if err := c.repoManager(); err != nil {
		return err
	}
	if err := c.escrowService(); err != nil {
		return err
	}
	if err := c.oracleService(); err != nil {
		return err
	}
	if err := c.schedulerService(); err != nil {
		return err
	}
	return c.appService()
}

func (c *Config) AppService() application.Service {
	return c.svc
}

func (c *Config) OracleGateway() ports.OracleGateway {
	return c.oracle
}

func (c *Config) EscrowLedger() ports.EscrowLedger {
	return c.escrow
}

func (c *Config) repoManager() error {
	var eventStoreConfig []interface{}
	var dataStoreConfig []interface{}
	logger := log.New()
	logger.SetLevel(log.GetLevel())

	switch c.EventDbType {
	case "watermill":
		eventStoreConfig = []interface{}{
			watermill.NewStdLogger(
				log.IsLevelEnabled(log.DebugLevel), log.IsLevelEnabled(log.TraceLevel),
			),
		}
	default:
		return fmt.Errorf("unknown event db type")
	}

	if len(c.DbDir) > 0 {
		if err := makeDirectoryIfNotExists(c.DbDir); err != nil {
			return fmt.Errorf("failed to create db dir: %s", err)
		}
	}

	switch c.DbType {
	case "badger":
		dataStoreConfig = []interface{}{c.DbDir, logger}
	case "sqlite":
		dataStoreConfig = []interface{}{c.DbDir}
	default:
		return fmt.Errorf("unknown db type")
	}

	svc, err := db.NewService(db.ServiceConfig{
		EventStoreType:   c.EventDbType,
		DataStoreType:    c.DbType,
		EventStoreConfig: eventStoreConfig,
		DataStoreConfig:  dataStoreConfig,
	})
	if err != nil {
		return err
	}

	c.repo = svc
	return nil
}

func (c *Config) escrowService() error {
	var svc ports.EscrowLedger
	switch c.EscrowType {
	case "inmemory":
		svc = inmemoryescrow.NewEscrowLedger()
	case "redis":
		opts, err := redis.ParseURL(c.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid redis url: %s", err)
		}
		svc = redisescrow.NewEscrowLedger(redis.NewClient(opts), redisNumOfRetries)
	default:
		return fmt.Errorf("unknown escrow type")
	}

	c.escrow = svc
	return nil
}

func (c *Config) oracleService() error {
	var svc ports.OracleGateway
	var err error
	switch c.OracleType {
	case "local":
		svc, err = localoracle.NewOracleGateway(c.OracleFulfillDelay, c.FunctionID)
	default:
		err = fmt.Errorf("unknown oracle type")
	}
	if err != nil {
		return err
	}

	c.oracle = svc
	return nil
}

func (c *Config) schedulerService() error {
	c.scheduler = timescheduler.NewScheduler()
	return nil
}

func (c *Config) appService() error {
	svc, err := application.NewService(application.Config{
		ProgramID:           c.ProgramID,
		FunctionID:          c.FunctionID,
		InitialFunding:      c.InitialFunding,
		AutoSettle:          c.OracleAutoSettle,
		StaleRoundThreshold: c.StaleRoundThreshold,
		StaleCheckInterval:  c.StaleCheckInterval,
	}, c.repo, c.escrow, c.oracle, c.scheduler)
	if err != nil {
		return err
	}

	c.svc = svc
	return nil
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

type supportedType map[string]struct{}

func (t supportedType) String() string {
	types := make([]string, 0, len(t))
	for tt := range t {
		types = append(types, tt)
	}
	return strings.Join(types, " | ")
}

func (t supportedType) supports(typeStr string) bool {
	_, ok := t[typeStr]
	return ok
}
