package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ark-network/counter/internal/core/domain"
	"github.com/ark-network/counter/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

type service struct {
	cfg Config

	repoManager ports.RepoManager
	escrow      ports.EscrowLedger
	oracle      ports.OracleGateway
	scheduler   ports.SchedulerService

	locks *accountLocks
}

func NewService(
	cfg Config, repoManager ports.RepoManager, escrow ports.EscrowLedger,
	oracle ports.OracleGateway, scheduler ports.SchedulerService,
) (Service, error) {
	if _, err := domain.DecodeKey(cfg.ProgramID); err != nil {
		return nil, fmt.Errorf("invalid program id: %s", err)
	}
	if len(cfg.FunctionID) <= 0 {
		return nil, fmt.Errorf("missing function id")
	}
	return &service{
		cfg, repoManager, escrow, oracle, scheduler, newAccountLocks(),
	}, nil
}

func (s *service) Start() error {
	if err := s.repoManager.Global().Init(context.Background()); err != nil {
		return fmt.Errorf("failed to init global aggregate: %s", err)
	}

	s.repoManager.Events().RegisterEventsHandler(domain.UserAccountTopic, s.auditRound)

	if s.cfg.AutoSettle {
		s.oracle.RegisterCompletionHandler(s.onCompletion)
	}

	if s.cfg.StaleCheckInterval > 0 {
		if err := s.scheduler.ScheduleTask(
			s.cfg.StaleCheckInterval, false, s.reportStaleRounds,
		); err != nil {
			return err
		}
	}
	s.scheduler.Start()
	return nil
}

func (s *service) Stop() {
	s.scheduler.Stop()
	s.oracle.Close()
	s.escrow.Close()
	s.repoManager.Close()
	log.Debug("service stopped")
}

func (s *service) Initialize(
	ctx context.Context, authority string,
) (*domain.UserAccount, error) {
	key, bump, err := s.deriveUserAccountKey(authority)
	if err != nil {
		return nil, err
	}

	release := s.locks.acquire(key)
	defer release()

	wallet, err := s.escrow.OpenWallet(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to open wager wallet: %w", err)
	}

	account, err := domain.NewUserAccount(key, bump, authority, wallet)
	if err != nil {
		return nil, err
	}

	if err := s.repoManager.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repoManager.Global().Init(ctx); err != nil {
			return err
		}
		return s.repoManager.Users().Add(ctx, *account)
	}); err != nil {
		return nil, err
	}

	if s.cfg.InitialFunding > 0 {
		if _, err := s.escrow.Fund(ctx, authority, s.cfg.InitialFunding); err != nil {
			log.WithError(err).Warnf("failed to fund authority %s", authority)
		}
	}

	s.publishEvents(ctx, account.Key, account.Events())

	log.WithFields(log.Fields{
		"account":   account.Key,
		"authority": authority,
	}).Debug("initialized user account")

	return account, nil
}

func (s *service) InitiateRound(
	ctx context.Context, authority string, guess uint8,
) (_ *domain.Round, err error) {
	key, _, err := s.deriveUserAccountKey(authority)
	if err != nil {
		return nil, err
	}

	release := s.locks.acquire(key)
	defer release()

	account, err := s.repoManager.Users().Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := validateUserAccount(account, authority, s.cfg.ProgramID); err != nil {
		return nil, err
	}

	undo := &undoStack{}
	defer func() {
		if err != nil {
			undo.run(ctx)
		}
	}()

	if err := s.fundWagerWallet(ctx, account, undo); err != nil {
		return nil, err
	}

	descriptor := ports.RequestDescriptor{
		ProgramID: s.cfg.ProgramID,
		MaxGuess:  MaxGuess,
		User:      account.Key,
	}
	request, err := s.oracle.Submit(
		ctx, s.cfg.FunctionID, descriptor, ComputeBudget, ResponseSizeCap,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to submit randomness request: %w", err)
	}
	undo.push("randomness request", func(ctx context.Context) error {
		return s.oracle.Cancel(ctx, request)
	})

	if account.HasPendingRound() {
		log.WithFields(log.Fields{
			"account": account.Key,
			"request": account.CurrentRound.Request,
		}).Warn("replacing round still waiting for its result")
	}

	events, err := account.InitiateRound(
		request, guess, WagerCost, account.CurrentRound.Slot+1, time.Now().Unix(),
	)
	if err != nil {
		return nil, err
	}

	if err := s.repoManager.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repoManager.Users().Update(ctx, *account); err != nil {
			return err
		}
		_, err := s.repoManager.Global().Increment(ctx, 1)
		return err
	}); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, account.Key, events)

	log.WithFields(log.Fields{
		"account": account.Key,
		"request": request,
		"slot":    account.CurrentRound.Slot,
	}).Debug("initiated round")

	current := account.CurrentRound
	return &current, nil
}

func (s *service) SettleRound(
	ctx context.Context, req SettleRoundRequest,
) (*domain.Round, error) {
	key, _, err := s.deriveUserAccountKey(req.Authority)
	if err != nil {
		return nil, err
	}

	release := s.locks.acquire(key)
	defer release()

	account, err := s.repoManager.Users().Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := validateUserAccount(account, req.Authority, s.cfg.ProgramID); err != nil {
		return nil, err
	}

	if !account.HasPendingRound() {
		return nil, domain.ErrRoundInactive
	}
	request := account.CurrentRound.Request

	status, err := s.oracle.StatusOf(ctx, request)
	if err != nil {
		if errors.Is(err, ports.ErrRequestNotFound) {
			log.WithFields(log.Fields{
				"account": account.Key,
				"request": request,
			}).Warn("randomness request unknown to oracle")
			return nil, domain.ErrRequestNotSuccessful
		}
		return nil, fmt.Errorf("failed to get status of request %s: %w", request, err)
	}
	if status != ports.RequestSuccess {
		return nil, domain.ErrRequestNotSuccessful
	}

	ok, err := s.oracle.ValidateSigner(ctx, request, s.cfg.FunctionID, req.Signer)
	if err != nil {
		return nil, fmt.Errorf("failed to validate signer: %w", err)
	}
	if !ok {
		log.WithFields(log.Fields{
			"account": account.Key,
			"signer":  req.Signer,
		}).Warn("completion signer does not match function enclave")
		return nil, domain.ErrFunctionValidationFailed
	}
	if err := verifyCompletion(request, req.Result, req.Signer, req.Signature); err != nil {
		log.WithField("account", account.Key).Warn("invalid completion signature")
		return nil, err
	}

	events, err := account.SettleRound(req.Result, time.Now().Unix())
	if err != nil {
		return nil, err
	}

	if err := s.repoManager.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repoManager.Users().Update(ctx, *account); err != nil {
			return err
		}
		_, err := s.repoManager.Global().Increment(ctx, uint64(req.Result))
		return err
	}); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, account.Key, events)

	log.WithFields(log.Fields{
		"account": account.Key,
		"request": request,
		"result":  req.Result,
	}).Debug("settled round")

	current := account.CurrentRound
	return &current, nil
}

func (s *service) GetUserAccount(
	ctx context.Context, authority string,
) (*domain.UserAccount, error) {
	key, _, err := s.deriveUserAccountKey(authority)
	if err != nil {
		return nil, err
	}
	return s.repoManager.Users().Get(ctx, key)
}

func (s *service) GetUserAccountByKey(
	ctx context.Context, key string,
) (*domain.UserAccount, error) {
	return s.repoManager.Users().Get(ctx, key)
}

func (s *service) GetGlobalAggregate(ctx context.Context) (*domain.GlobalAggregate, error) {
	return s.repoManager.Global().Get(ctx)
}

func (s *service) ListStalePendingRounds(ctx context.Context) ([]domain.UserAccount, error) {
	threshold := time.Now().Add(-time.Duration(s.cfg.StaleRoundThreshold) * time.Second)
	return s.repoManager.Users().GetPendingBefore(ctx, threshold.Unix())
}

// fundWagerWallet tops up the wager wallet of account to the wager cost, if
// needed, taking the shortfall from the funds of its authority.
func (s *service) fundWagerWallet(
	ctx context.Context, account *domain.UserAccount, undo *undoStack,
) error {
	// The ledger may have lost the wallet, ie. after restarting with a
	// volatile escrow, in which case it's opened again empty.
	wallet, err := s.escrow.OpenWallet(ctx, account.Key)
	if err != nil {
		return fmt.Errorf("failed to open wager wallet: %w", err)
	}
	if wallet != account.WagerWallet {
		return domain.ErrConstraintRaw
	}

	balance, err := s.escrow.BalanceOf(ctx, account.WagerWallet)
	if err != nil {
		return fmt.Errorf("failed to get wager wallet balance: %w", err)
	}

	if balance < WagerCost {
		shortfall := WagerCost - balance
		if _, err := s.escrow.Deposit(ctx, ports.DepositRequest{
			Wallet:    account.WagerWallet,
			From:      account.Authority,
			Amount:    shortfall,
			Authority: account.Key,
		}); err != nil {
			return fmt.Errorf("failed to top up wager wallet: %w", err)
		}
		undo.push("wager wallet top up", func(ctx context.Context) error {
			_, err := s.escrow.Withdraw(ctx, ports.WithdrawRequest{
				Wallet:    account.WagerWallet,
				To:        account.Authority,
				Amount:    shortfall,
				Authority: account.Key,
			})
			return err
		})
	}

	balance, err = s.escrow.BalanceOf(ctx, account.WagerWallet)
	if err != nil {
		return fmt.Errorf("failed to get wager wallet balance: %w", err)
	}
	if balance < WagerCost {
		err := fmt.Errorf(
			"%w: wallet %s has %d, expected at least %d",
			domain.ErrEscrowUnderfunded, account.WagerWallet, balance, WagerCost,
		)
		log.WithError(err).Error("escrow ledger invariant violated")
		return err
	}
	return nil
}

func (s *service) onCompletion(completion ports.RequestCompletion) {
	ctx := context.Background()

	// Wait for an in-flight InitiateRound of the same account to commit the
	// request that just completed.
	s.locks.acquire(completion.User)()

	account, err := s.GetUserAccountByKey(ctx, completion.User)
	if err != nil {
		log.WithError(err).Warnf(
			"failed to get account %s of completed request", completion.User,
		)
		return
	}
	if account.CurrentRound.Request != completion.Request {
		log.Debugf(
			"skipping completion of request %s, no longer current for account %s",
			completion.Request, account.Key,
		)
		return
	}

	if _, err := s.SettleRound(ctx, SettleRoundRequest{
		Authority: account.Authority,
		Result:    completion.Result,
		Signer:    completion.Signer,
		Signature: completion.Signature,
	}); err != nil {
		log.WithError(err).Warnf("failed to settle round of account %s", account.Key)
	}
}

// auditRound logs the outcome of every settled round, rebuilt from the
// events of that round.
func (s *service) auditRound(events []domain.Event) {
	if len(events) <= 0 {
		return
	}
	settled, ok := events[len(events)-1].(domain.RoundSettled)
	if !ok {
		return
	}

	fields := log.Fields{
		"account": settled.Key,
		"request": settled.Request,
		"result":  settled.Result,
	}
	round := domain.NewUserAccountFromEvents(events).CurrentRound
	if round.Request == settled.Request {
		fields["guess"] = round.Guess
		fields["slot"] = round.Slot
		fields["elapsed"] = time.Duration(settled.Timestamp-round.Timestamp) * time.Second
	}
	log.WithFields(fields).Info("round settled")
}

func (s *service) reportStaleRounds() {
	accounts, err := s.ListStalePendingRounds(context.Background())
	if err != nil {
		log.WithError(err).Warn("failed to list stale pending rounds")
		return
	}
	for _, account := range accounts {
		log.WithFields(log.Fields{
			"account":   account.Key,
			"request":   account.CurrentRound.Request,
			"initiated": time.Unix(account.CurrentRound.Timestamp, 0).UTC(),
		}).Warn("round is still pending")
	}
}

func (s *service) publishEvents(ctx context.Context, id string, events []domain.Event) {
	if len(events) <= 0 {
		return
	}
	if err := s.repoManager.Events().Save(
		ctx, domain.UserAccountTopic, id, events,
	); err != nil {
		log.WithError(err).Warn("failed to publish user account events")
	}
}

func (s *service) deriveUserAccountKey(authority string) (string, uint8, error) {
	seeds, err := domain.UserAccountSeeds(authority)
	if err != nil {
		return "", 0, err
	}
	return domain.FindProgramAddress(seeds, s.cfg.ProgramID)
}
