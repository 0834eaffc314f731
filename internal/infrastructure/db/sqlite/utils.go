package sqlitedb

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ark-network/counter/internal/core/domain"
	"github.com/ark-network/counter/internal/infrastructure/db/sqlite/sqlc/queries"
	_ "modernc.org/sqlite"
)

const (
	driverName = "sqlite"
)

//go:embed migration/*.sql
var Migrations embed.FS

type txKey struct{}

func OpenDb(dbPath string) (*sql.DB, error) {
	dir := filepath.Dir(dbPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		err = os.MkdirAll(dir, 0755)
		if err != nil {
			return nil, fmt.Errorf("failed to create directory: %v", err)
		}
	}

	db, err := sql.Open(driverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	db.SetMaxOpenConns(1) // prevent concurrent writes

	return db, nil
}

// querier returns the queries bound to the transaction carried by ctx, if
// any.
func querier(ctx context.Context, db *sql.DB) *queries.Queries {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return queries.New(tx)
	}
	return queries.New(db)
}

// execTx runs txBody within the transaction carried by ctx, or within a new
// one committed only if txBody succeeds.
func execTx(
	ctx context.Context,
	db *sql.DB,
	txBody func(ctx context.Context) error,
) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return txBody(ctx)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			//nolint:errcheck
			tx.Rollback()
			panic(p) // Re-throw after rollback
		} else if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				err = fmt.Errorf("%w, rollback error: %v", err, rollbackErr)
			}
		}
	}()

	if err = txBody(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func toRound(
	request string, guess, status, result, wager, slot, initiatedAt int64,
) domain.Round {
	return domain.Round{
		Request:   request,
		Guess:     uint8(guess),
		Status:    domain.RoundStatusFromByte(uint8(status)),
		Result:    uint8(result),
		Wager:     uint64(wager),
		Slot:      uint64(slot),
		Timestamp: initiatedAt,
	}
}

func toUserAccount(row queries.UserAccount) domain.UserAccount {
	return domain.UserAccount{
		Key:         row.Key,
		Bump:        uint8(row.Bump),
		Authority:   row.Authority,
		WagerWallet: row.WagerWallet,
		CurrentRound: toRound(
			row.CurrentRequest, row.CurrentGuess, row.CurrentStatus, row.CurrentResult,
			row.CurrentWager, row.CurrentSlot, row.CurrentInitiatedAt,
		),
		LastRound: toRound(
			row.LastRequest, row.LastGuess, row.LastStatus, row.LastResult,
			row.LastWager, row.LastSlot, row.LastInitiatedAt,
		),
		Version: uint(row.Version),
	}
}
