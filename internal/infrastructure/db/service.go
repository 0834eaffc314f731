package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ark-network/counter/internal/core/domain"
	"github.com/ark-network/counter/internal/core/ports"
	badgerdb "github.com/ark-network/counter/internal/infrastructure/db/badger"
	sqlitedb "github.com/ark-network/counter/internal/infrastructure/db/sqlite"
	watermilldb "github.com/ark-network/counter/internal/infrastructure/db/watermill"
	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

type dataStore interface {
	Users() domain.UserAccountRepository
	Global() domain.GlobalAggregateRepository
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	Close()
}

var (
	eventStoreTypes = map[string]func(...interface{}) (domain.EventRepository, error){
		"watermill": watermilldb.NewEventRepository,
	}
	dataStoreTypes = map[string]func(...interface{}) (dataStore, error){
		"badger": newBadgerDataStore,
		"sqlite": newSqliteDataStore,
	}
)

const (
	sqliteDbFile = "sqlite.db"
)

type ServiceConfig struct {
	EventStoreType string
	DataStoreType  string

	EventStoreConfig []interface{}
	DataStoreConfig  []interface{}
}

type service struct {
	eventStore domain.EventRepository
	dataStore  dataStore
}

func NewService(config ServiceConfig) (ports.RepoManager, error) {
	eventStoreFactory, ok := eventStoreTypes[config.EventStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid event store type: %s", config.EventStoreType)
	}
	dataStoreFactory, ok := dataStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}

	eventStore, err := eventStoreFactory(config.EventStoreConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to create event store: %w", err)
	}

	dataStore, err := dataStoreFactory(config.DataStoreConfig...)
	if err != nil {
		eventStore.Close()
		return nil, fmt.Errorf("failed to create data store: %w", err)
	}

	return &service{eventStore, dataStore}, nil
}

func (s *service) Events() domain.EventRepository {
	return s.eventStore
}

func (s *service) Users() domain.UserAccountRepository {
	return s.dataStore.Users()
}

func (s *service) Global() domain.GlobalAggregateRepository {
	return s.dataStore.Global()
}

func (s *service) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.dataStore.RunInTx(ctx, fn)
}

func (s *service) Close() {
	s.eventStore.Close()
	s.dataStore.Close()
}

func newBadgerDataStore(config ...interface{}) (dataStore, error) {
	return badgerdb.NewDataStore(config...)
}

func newSqliteDataStore(config ...interface{}) (dataStore, error) {
	if len(config) != 1 {
		return nil, errors.New("invalid config")
	}
	baseDir, ok := config[0].(string)
	if !ok {
		return nil, errors.New("invalid base directory")
	}

	db, err := sqlitedb.OpenDb(filepath.Join(baseDir, sqliteDbFile))
	if err != nil {
		return nil, err
	}
	if err := migrateSqlite(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate sqlite: %w", err)
	}
	return sqlitedb.NewDataStore(db)
}

func migrateSqlite(db *sql.DB) error {
	source, err := iofs.New(sqlitedb.Migrations, "migration")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate up: %w", err)
	}

	return nil
}
