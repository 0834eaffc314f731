package badgerdb

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ark-network/counter/internal/core/domain"
	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

const dataStoreDir = "accounts"

// DataStore keeps user accounts and the global aggregate in the same
// badger db so that both can be written in one transaction.
type DataStore struct {
	store  *badgerhold.Store
	users  *userAccountRepository
	global *globalAggregateRepository
}

func NewDataStore(config ...interface{}) (*DataStore, error) {
	if len(config) != 2 {
		return nil, fmt.Errorf("invalid config")
	}
	baseDir, ok := config[0].(string)
	if !ok {
		return nil, fmt.Errorf("invalid base directory")
	}
	var logger badger.Logger
	if config[1] != nil {
		logger, ok = config[1].(badger.Logger)
		if !ok {
			return nil, fmt.Errorf("invalid logger")
		}
	}

	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, dataStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open data store: %s", err)
	}

	return &DataStore{
		store:  store,
		users:  &userAccountRepository{store},
		global: &globalAggregateRepository{store},
	}, nil
}

func (d *DataStore) Users() domain.UserAccountRepository {
	return d.users
}

func (d *DataStore) Global() domain.GlobalAggregateRepository {
	return d.global
}

func (d *DataStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, d.store, func(tx *badger.Txn) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func (d *DataStore) Close() {
	//nolint:errcheck
	d.store.Close()
}
