package badgerdb

import (
	"context"
	"errors"

	"github.com/ark-network/counter/internal/core/domain"
	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

type userAccountRepository struct {
	store *badgerhold.Store
}

func (r *userAccountRepository) Add(ctx context.Context, account domain.UserAccount) error {
	return withTx(ctx, r.store, func(tx *badger.Txn) error {
		err := r.store.TxInsert(tx, account.Key, account)
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return domain.ErrAccountAlreadyInitialized
		}
		return err
	})
}

func (r *userAccountRepository) Get(ctx context.Context, key string) (*domain.UserAccount, error) {
	var account domain.UserAccount
	err := r.view(ctx, func(tx *badger.Txn) error {
		return r.store.TxGet(tx, key, &account)
	})
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, domain.ErrAccountNotInitialized
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *userAccountRepository) Update(ctx context.Context, account domain.UserAccount) error {
	return withTx(ctx, r.store, func(tx *badger.Txn) error {
		err := r.store.TxUpdate(tx, account.Key, account)
		if errors.Is(err, badgerhold.ErrNotFound) {
			return domain.ErrAccountNotInitialized
		}
		return err
	})
}

func (r *userAccountRepository) GetPendingBefore(
	ctx context.Context, timestamp int64,
) ([]domain.UserAccount, error) {
	query := badgerhold.Where("CurrentRound.Status").Eq(domain.RoundStatusPending).
		And("CurrentRound.Timestamp").Lt(timestamp)

	var accounts []domain.UserAccount
	err := r.view(ctx, func(tx *badger.Txn) error {
		return r.store.TxFind(tx, &accounts, query)
	})
	return accounts, err
}

// The store is shared with the global aggregate and gets closed by the
// owning DataStore.
func (r *userAccountRepository) Close() {}

func (r *userAccountRepository) view(ctx context.Context, fn func(tx *badger.Txn) error) error {
	if tx, ok := ctx.Value(txKey{}).(*badger.Txn); ok {
		return fn(tx)
	}
	return r.store.Badger().View(fn)
}
