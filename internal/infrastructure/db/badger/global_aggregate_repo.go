package badgerdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/ark-network/counter/internal/core/domain"
	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

type globalAggregateRepository struct {
	store *badgerhold.Store
}

func (r *globalAggregateRepository) Init(ctx context.Context) error {
	return withTx(ctx, r.store, func(tx *badger.Txn) error {
		global := domain.NewGlobalAggregate()
		err := r.store.TxInsert(tx, global.Label, *global)
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return nil
		}
		return err
	})
}

func (r *globalAggregateRepository) Get(ctx context.Context) (*domain.GlobalAggregate, error) {
	var global *domain.GlobalAggregate
	err := withTx(ctx, r.store, func(tx *badger.Txn) (err error) {
		global, err = r.get(tx)
		return
	})
	return global, err
}

func (r *globalAggregateRepository) Increment(ctx context.Context, delta uint64) (uint64, error) {
	var count uint64
	err := withTx(ctx, r.store, func(tx *badger.Txn) error {
		global, err := r.get(tx)
		if err != nil {
			return err
		}
		if err := global.Add(delta); err != nil {
			return err
		}
		if err := r.store.TxUpdate(tx, global.Label, *global); err != nil {
			return err
		}
		count = global.Count
		return nil
	})
	return count, err
}

func (r *globalAggregateRepository) Close() {}

func (r *globalAggregateRepository) get(tx *badger.Txn) (*domain.GlobalAggregate, error) {
	var global domain.GlobalAggregate
	err := r.store.TxGet(tx, domain.GlobalAggregateLabel, &global)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, fmt.Errorf(
			"global aggregate %s: %w", domain.GlobalAggregateLabel, domain.ErrAccountNotInitialized,
		)
	}
	if err != nil {
		return nil, err
	}
	return &global, nil
}
