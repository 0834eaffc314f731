package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ark-network/counter/internal/core/domain"
)

// DataStore keeps user accounts and the global aggregate in the same
// sqlite db so that both can be written in one transaction.
type DataStore struct {
	db     *sql.DB
	users  *userAccountRepository
	global *globalAggregateRepository
}

func NewDataStore(config ...interface{}) (*DataStore, error) {
	if len(config) != 1 {
		return nil, fmt.Errorf("invalid config")
	}
	db, ok := config[0].(*sql.DB)
	if !ok {
		return nil, fmt.Errorf("cannot open data store: invalid config, expected db at 0")
	}

	return &DataStore{
		db:     db,
		users:  &userAccountRepository{db},
		global: &globalAggregateRepository{db},
	}, nil
}

func (d *DataStore) Users() domain.UserAccountRepository {
	return d.users
}

func (d *DataStore) Global() domain.GlobalAggregateRepository {
	return d.global
}

func (d *DataStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return execTx(ctx, d.db, fn)
}

func (d *DataStore) Close() {
	_ = d.db.Close()
}
