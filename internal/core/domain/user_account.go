package domain

import (
	"fmt"
)

// UserAccount holds the round state of a single authority. Its key is the
// program-derived address of (ProgramSeed, authority) and never changes.
type UserAccount struct {
	Key          string
	Bump         uint8
	Authority    string
	WagerWallet  string
	CurrentRound Round
	LastRound    Round
	Version      uint
	changes      []Event
}

func NewUserAccount(
	key string, bump uint8, authority, wagerWallet string,
) (*UserAccount, error) {
	if len(key) <= 0 {
		return nil, fmt.Errorf("missing account key")
	}
	if len(authority) <= 0 {
		return nil, fmt.Errorf("missing authority")
	}
	if len(wagerWallet) <= 0 {
		return nil, fmt.Errorf("missing wager wallet")
	}

	a := &UserAccount{changes: make([]Event, 0)}
	a.raise(AccountInitialized{
		Key:         key,
		Bump:        bump,
		Authority:   authority,
		WagerWallet: wagerWallet,
	})
	return a, nil
}

func NewUserAccountFromEvents(events []Event) *UserAccount {
	a := &UserAccount{}

	for _, event := range events {
		a.On(event)
	}

	a.changes = append([]Event{}, events...)

	return a
}

func (a *UserAccount) Events() []Event {
	return a.changes
}

// On applies event to the account. Version counts the events applied so far.
func (a *UserAccount) On(event Event) {
	switch e := event.(type) {
	case AccountInitialized:
		a.Key = e.Key
		a.Bump = e.Bump
		a.Authority = e.Authority
		a.WagerWallet = e.WagerWallet
	case RoundInitiated:
		if a.CurrentRound.Status != RoundStatusNone {
			a.LastRound = a.CurrentRound
		}
		a.CurrentRound = Round{
			Request:   e.Request,
			Guess:     e.Guess,
			Status:    RoundStatusPending,
			Wager:     e.Wager,
			Slot:      e.Slot,
			Timestamp: e.Timestamp,
		}
	case RoundSettled:
		a.CurrentRound.Result = e.Result
		a.CurrentRound.Status = RoundStatusSettled
	}

	a.Version++
}

// InitiateRound moves the account into a fresh Pending round. The state
// machine does not look at the status of the current round: a previous
// round, pending or not, is moved into LastRound.
func (a *UserAccount) InitiateRound(
	request string, guess uint8, wager, slot uint64, timestamp int64,
) ([]Event, error) {
	if len(request) <= 0 {
		return nil, fmt.Errorf("missing randomness request")
	}
	if wager <= 0 {
		return nil, fmt.Errorf("missing wager")
	}

	event := RoundInitiated{
		Key:       a.Key,
		Request:   request,
		Guess:     guess,
		Wager:     wager,
		Slot:      slot,
		Timestamp: timestamp,
		Replaced:  a.CurrentRound.Status,
	}
	a.raise(event)

	return []Event{event}, nil
}

func (a *UserAccount) SettleRound(result uint8, timestamp int64) ([]Event, error) {
	if !a.CurrentRound.IsPending() {
		return nil, ErrRoundInactive
	}

	event := RoundSettled{
		Key:       a.Key,
		Request:   a.CurrentRound.Request,
		Result:    result,
		Timestamp: timestamp,
	}
	a.raise(event)

	return []Event{event}, nil
}

func (a *UserAccount) HasPendingRound() bool {
	return a.CurrentRound.IsPending()
}

func (a *UserAccount) raise(event Event) {
	if a.changes == nil {
		a.changes = make([]Event, 0)
	}
	a.changes = append(a.changes, event)
	a.On(event)
}
