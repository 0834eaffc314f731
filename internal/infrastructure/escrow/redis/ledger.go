package redisescrow

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ark-network/counter/internal/core/domain"
	"github.com/ark-network/counter/internal/core/ports"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	walletKeyPrefix = "escrow:wallets:"
	fundsKey        = "escrow:funds"

	ownerField   = "owner"
	balanceField = "balance"
)

type ledger struct {
	rdb          *redis.Client
	numOfRetries int
}

func NewEscrowLedger(rdb *redis.Client, numOfRetries int) ports.EscrowLedger {
	if numOfRetries <= 0 {
		numOfRetries = 1
	}
	return &ledger{rdb, numOfRetries}
}

func (l *ledger) OpenWallet(ctx context.Context, owner string) (string, error) {
	address, err := domain.WagerWalletAddress(owner)
	if err != nil {
		return "", err
	}

	key := walletKey(address)
	pipe := l.rdb.TxPipeline()
	pipe.HSetNX(ctx, key, ownerField, owner)
	pipe.HSetNX(ctx, key, balanceField, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to open wallet: %w", err)
	}
	return address, nil
}

func (l *ledger) BalanceOf(ctx context.Context, address string) (uint64, error) {
	balance, err := l.rdb.HGet(ctx, walletKey(address), balanceField).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, ports.ErrWalletNotFound
	}
	return balance, err
}

func (l *ledger) Fund(ctx context.Context, payer string, amount uint64) (uint64, error) {
	// Redis counters are signed 64-bit integers.
	if amount > math.MaxInt64 {
		return 0, fmt.Errorf("funds of %s would overflow", payer)
	}
	funds, err := l.rdb.HIncrBy(ctx, fundsKey, payer, int64(amount)).Result()
	if err != nil {
		if strings.Contains(err.Error(), "would overflow") {
			return 0, fmt.Errorf("funds of %s would overflow", payer)
		}
		return 0, err
	}
	return uint64(funds), nil
}

func (l *ledger) FundsOf(ctx context.Context, payer string) (uint64, error) {
	funds, err := l.rdb.HGet(ctx, fundsKey, payer).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return funds, err
}

func (l *ledger) Deposit(ctx context.Context, req ports.DepositRequest) (uint64, error) {
	return l.transfer(ctx, req.Wallet, req.From, req.Authority, req.Amount, true)
}

func (l *ledger) Withdraw(ctx context.Context, req ports.WithdrawRequest) (uint64, error) {
	return l.transfer(ctx, req.Wallet, req.To, req.Authority, req.Amount, false)
}

func (l *ledger) Close() {
	//nolint:errcheck
	l.rdb.Close()
}

// transfer moves amount between the funds of payer and the wallet, in the
// direction given by deposit, and returns the new wallet balance.
func (l *ledger) transfer(
	ctx context.Context, address, payer, authority string, amount uint64, deposit bool,
) (uint64, error) {
	key := walletKey(address)

	var newBalance uint64
	txf := func(tx *redis.Tx) error {
		owner, err := tx.HGet(ctx, key, ownerField).Result()
		if errors.Is(err, redis.Nil) {
			return ports.ErrWalletNotFound
		}
		if err != nil {
			return err
		}
		if owner != authority {
			return ports.ErrInsufficientAuthority
		}

		balance, err := tx.HGet(ctx, key, balanceField).Uint64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		funds, err := tx.HGet(ctx, fundsKey, payer).Uint64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		if deposit {
			if funds < amount {
				return ports.ErrInsufficientFunds
			}
			funds -= amount
			balance += amount
		} else {
			if balance < amount {
				return ports.ErrInsufficientFunds
			}
			funds += amount
			balance -= amount
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, fundsKey, payer, funds)
			pipe.HSet(ctx, key, balanceField, balance)
			return nil
		})
		if err != nil {
			return err
		}
		newBalance = balance
		return nil
	}

	for attempt := 0; attempt < l.numOfRetries; attempt++ {
		err := l.rdb.Watch(ctx, txf, key, fundsKey)
		if err == nil {
			return newBalance, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return 0, err
		}
		log.Debugf("escrow transfer on wallet %s conflicted, retrying", address)
		time.Sleep(10 * time.Millisecond)
	}
	return 0, fmt.Errorf("failed to transfer funds of wallet %s after retries", address)
}

func walletKey(address string) string {
	return walletKeyPrefix + address
}
