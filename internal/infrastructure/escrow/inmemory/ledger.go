package inmemoryescrow

import (
	"context"
	"fmt"
	"math/bits"
	"sync"

	"github.com/ark-network/counter/internal/core/domain"
	"github.com/ark-network/counter/internal/core/ports"
)

type wallet struct {
	owner   string
	balance uint64
}

type ledger struct {
	lock    *sync.Mutex
	wallets map[string]*wallet // address -> wallet
	funds   map[string]uint64  // payer -> funds
}

func NewEscrowLedger() ports.EscrowLedger {
	return &ledger{
		lock:    &sync.Mutex{},
		wallets: make(map[string]*wallet),
		funds:   make(map[string]uint64),
	}
}

func (l *ledger) OpenWallet(_ context.Context, owner string) (string, error) {
	address, err := domain.WagerWalletAddress(owner)
	if err != nil {
		return "", err
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	if _, ok := l.wallets[address]; !ok {
		l.wallets[address] = &wallet{owner: owner}
	}
	return address, nil
}

func (l *ledger) BalanceOf(_ context.Context, address string) (uint64, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	w, ok := l.wallets[address]
	if !ok {
		return 0, ports.ErrWalletNotFound
	}
	return w.balance, nil
}

func (l *ledger) Fund(_ context.Context, payer string, amount uint64) (uint64, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	funds, carry := bits.Add64(l.funds[payer], amount, 0)
	if carry != 0 {
		return 0, fmt.Errorf("funds of %s would overflow", payer)
	}
	l.funds[payer] = funds
	return funds, nil
}

func (l *ledger) FundsOf(_ context.Context, payer string) (uint64, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.funds[payer], nil
}

func (l *ledger) Deposit(_ context.Context, req ports.DepositRequest) (uint64, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	w, ok := l.wallets[req.Wallet]
	if !ok {
		return 0, ports.ErrWalletNotFound
	}
	if w.owner != req.Authority {
		return 0, ports.ErrInsufficientAuthority
	}
	if l.funds[req.From] < req.Amount {
		return 0, ports.ErrInsufficientFunds
	}

	l.funds[req.From] -= req.Amount
	w.balance += req.Amount
	return w.balance, nil
}

func (l *ledger) Withdraw(_ context.Context, req ports.WithdrawRequest) (uint64, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	w, ok := l.wallets[req.Wallet]
	if !ok {
		return 0, ports.ErrWalletNotFound
	}
	if w.owner != req.Authority {
		return 0, ports.ErrInsufficientAuthority
	}
	if w.balance < req.Amount {
		return 0, ports.ErrInsufficientFunds
	}

	w.balance -= req.Amount
	l.funds[req.To] += req.Amount
	return w.balance, nil
}

func (l *ledger) Close() {}
