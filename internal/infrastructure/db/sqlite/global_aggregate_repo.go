package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ark-network/counter/internal/core/domain"
	"github.com/ark-network/counter/internal/infrastructure/db/sqlite/sqlc/queries"
)

type globalAggregateRepository struct {
	db *sql.DB
}

func (r *globalAggregateRepository) Init(ctx context.Context) error {
	return querier(ctx, r.db).InsertGlobalAggregate(ctx, domain.GlobalAggregateLabel)
}

func (r *globalAggregateRepository) Get(ctx context.Context) (*domain.GlobalAggregate, error) {
	return r.get(ctx)
}

func (r *globalAggregateRepository) Increment(ctx context.Context, delta uint64) (uint64, error) {
	var count uint64
	err := execTx(ctx, r.db, func(ctx context.Context) error {
		global, err := r.get(ctx)
		if err != nil {
			return err
		}
		if err := global.Add(delta); err != nil {
			return err
		}

		// The count is stored as the int64 with the same bits.
		if _, err := querier(ctx, r.db).UpdateGlobalAggregate(
			ctx, queries.UpdateGlobalAggregateParams{
				Count: int64(global.Count),
				Label: global.Label,
			},
		); err != nil {
			return err
		}
		count = global.Count
		return nil
	})
	return count, err
}

func (r *globalAggregateRepository) Close() {}

func (r *globalAggregateRepository) get(ctx context.Context) (*domain.GlobalAggregate, error) {
	row, err := querier(ctx, r.db).SelectGlobalAggregate(ctx, domain.GlobalAggregateLabel)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf(
			"global aggregate %s: %w", domain.GlobalAggregateLabel, domain.ErrAccountNotInitialized,
		)
	}
	if err != nil {
		return nil, err
	}
	return &domain.GlobalAggregate{Label: row.Label, Count: uint64(row.Count)}, nil
}
