package application_test

import (
	"context"

	"github.com/ark-network/counter/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

type mockedOracle struct {
	mock.Mock
}

func (m *mockedOracle) Submit(
	ctx context.Context, functionRef string, descriptor ports.RequestDescriptor,
	computeBudget, responseSizeCap uint32,
) (string, error) {
	args := m.Called(ctx, functionRef, descriptor, computeBudget, responseSizeCap)

	var res string
	if a := args.Get(0); a != nil {
		res = a.(string)
	}
	return res, args.Error(1)
}

func (m *mockedOracle) StatusOf(ctx context.Context, handle string) (ports.RequestStatus, error) {
	args := m.Called(ctx, handle)

	var res ports.RequestStatus
	if a := args.Get(0); a != nil {
		res = a.(ports.RequestStatus)
	}
	return res, args.Error(1)
}

func (m *mockedOracle) ValidateSigner(
	ctx context.Context, handle, functionRef, signer string,
) (bool, error) {
	args := m.Called(ctx, handle, functionRef, signer)
	return args.Bool(0), args.Error(1)
}

func (m *mockedOracle) Cancel(ctx context.Context, handle string) error {
	args := m.Called(ctx, handle)
	return args.Error(0)
}

func (m *mockedOracle) RegisterCompletionHandler(handler func(ports.RequestCompletion)) {
	m.Called(handler)
}

func (m *mockedOracle) Close() {
	m.Called()
}

type mockedEscrow struct {
	mock.Mock
}

func (m *mockedEscrow) OpenWallet(ctx context.Context, owner string) (string, error) {
	args := m.Called(ctx, owner)

	var res string
	if a := args.Get(0); a != nil {
		res = a.(string)
	}
	return res, args.Error(1)
}

func (m *mockedEscrow) BalanceOf(ctx context.Context, wallet string) (uint64, error) {
	args := m.Called(ctx, wallet)

	var res uint64
	if a := args.Get(0); a != nil {
		res = a.(uint64)
	}
	return res, args.Error(1)
}

func (m *mockedEscrow) Fund(ctx context.Context, payer string, amount uint64) (uint64, error) {
	args := m.Called(ctx, payer, amount)

	var res uint64
	if a := args.Get(0); a != nil {
		res = a.(uint64)
	}
	return res, args.Error(1)
}

func (m *mockedEscrow) FundsOf(ctx context.Context, payer string) (uint64, error) {
	args := m.Called(ctx, payer)

	var res uint64
	if a := args.Get(0); a != nil {
		res = a.(uint64)
	}
	return res, args.Error(1)
}

func (m *mockedEscrow) Deposit(ctx context.Context, req ports.DepositRequest) (uint64, error) {
	args := m.Called(ctx, req)

	var res uint64
	if a := args.Get(0); a != nil {
		res = a.(uint64)
	}
	return res, args.Error(1)
}

func (m *mockedEscrow) Withdraw(ctx context.Context, req ports.WithdrawRequest) (uint64, error) {
	args := m.Called(ctx, req)

	var res uint64
	if a := args.Get(0); a != nil {
		res = a.(uint64)
	}
	return res, args.Error(1)
}

func (m *mockedEscrow) Close() {
	m.Called()
}

type mockedScheduler struct {
	mock.Mock
}

func (m *mockedScheduler) Start() {
	m.Called()
}

func (m *mockedScheduler) Stop() {
	m.Called()
}

func (m *mockedScheduler) ScheduleTask(interval int64, immediate bool, task func()) error {
	args := m.Called(interval, immediate, task)
	return args.Error(0)
}
