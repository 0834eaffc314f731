package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ark-network/counter/internal/core/domain"
	"github.com/ark-network/counter/internal/infrastructure/db/sqlite/sqlc/queries"
)

type userAccountRepository struct {
	db *sql.DB
}

func (r *userAccountRepository) Add(ctx context.Context, account domain.UserAccount) error {
	cur, last := account.CurrentRound, account.LastRound
	err := querier(ctx, r.db).InsertUserAccount(ctx, queries.InsertUserAccountParams{
		Key:                account.Key,
		Bump:               int64(account.Bump),
		Authority:          account.Authority,
		WagerWallet:        account.WagerWallet,
		CurrentRequest:     cur.Request,
		CurrentGuess:       int64(cur.Guess),
		CurrentStatus:      int64(cur.Status),
		CurrentResult:      int64(cur.Result),
		CurrentWager:       int64(cur.Wager),
		CurrentSlot:        int64(cur.Slot),
		CurrentInitiatedAt: cur.Timestamp,
		LastRequest:        last.Request,
		LastGuess:          int64(last.Guess),
		LastStatus:         int64(last.Status),
		LastResult:         int64(last.Result),
		LastWager:          int64(last.Wager),
		LastSlot:           int64(last.Slot),
		LastInitiatedAt:    last.Timestamp,
		Version:            int64(account.Version),
	})
	if err != nil && isUniqueViolation(err) {
		return domain.ErrAccountAlreadyInitialized
	}
	return err
}

func (r *userAccountRepository) Get(ctx context.Context, key string) (*domain.UserAccount, error) {
	row, err := querier(ctx, r.db).SelectUserAccount(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAccountNotInitialized
	}
	if err != nil {
		return nil, err
	}
	account := toUserAccount(row)
	return &account, nil
}

func (r *userAccountRepository) Update(ctx context.Context, account domain.UserAccount) error {
	cur, last := account.CurrentRound, account.LastRound
	rows, err := querier(ctx, r.db).UpdateUserAccount(ctx, queries.UpdateUserAccountParams{
		CurrentRequest:     cur.Request,
		CurrentGuess:       int64(cur.Guess),
		CurrentStatus:      int64(cur.Status),
		CurrentResult:      int64(cur.Result),
		CurrentWager:       int64(cur.Wager),
		CurrentSlot:        int64(cur.Slot),
		CurrentInitiatedAt: cur.Timestamp,
		LastRequest:        last.Request,
		LastGuess:          int64(last.Guess),
		LastStatus:         int64(last.Status),
		LastResult:         int64(last.Result),
		LastWager:          int64(last.Wager),
		LastSlot:           int64(last.Slot),
		LastInitiatedAt:    last.Timestamp,
		Version:            int64(account.Version),
		Key:                account.Key,
	})
	if err != nil {
		return fmt.Errorf("failed to update user account: %w", err)
	}
	if rows <= 0 {
		return domain.ErrAccountNotInitialized
	}
	return nil
}

func (r *userAccountRepository) GetPendingBefore(
	ctx context.Context, timestamp int64,
) ([]domain.UserAccount, error) {
	rows, err := querier(ctx, r.db).SelectPendingUserAccounts(
		ctx, queries.SelectPendingUserAccountsParams{
			CurrentStatus:      int64(domain.RoundStatusPending),
			CurrentInitiatedAt: timestamp,
		},
	)
	if err != nil {
		return nil, err
	}

	accounts := make([]domain.UserAccount, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, toUserAccount(row))
	}
	return accounts, nil
}

// The db is shared with the global aggregate and gets closed by the owning
// DataStore.
func (r *userAccountRepository) Close() {}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
