package application

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

type accountLock struct {
	mtx  *sync.Mutex
	refs int
}

// accountLocks serializes the calls touching the same user account.
type accountLocks struct {
	lock  *sync.Mutex
	locks map[string]*accountLock
}

func newAccountLocks() *accountLocks {
	return &accountLocks{&sync.Mutex{}, make(map[string]*accountLock)}
}

// acquire blocks until the lock of key is held and returns the func to
// release it.
func (m *accountLocks) acquire(key string) func() {
	m.lock.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &accountLock{mtx: &sync.Mutex{}}
		m.locks[key] = l
	}
	l.refs++
	m.lock.Unlock()

	l.mtx.Lock()

	return func() {
		l.mtx.Unlock()

		m.lock.Lock()
		defer m.lock.Unlock()
		l.refs--
		if l.refs <= 0 {
			delete(m.locks, key)
		}
	}
}

func (m *accountLocks) len() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return len(m.locks)
}

type undoStep struct {
	name string
	fn   func(ctx context.Context) error
}

// undoStack reverts, in reverse order, the side effects a call made on
// external services before failing.
type undoStack struct {
	steps []undoStep
}

func (u *undoStack) push(name string, fn func(ctx context.Context) error) {
	u.steps = append(u.steps, undoStep{name, fn})
}

func (u *undoStack) run(ctx context.Context) {
	// The call that failed may have been canceled, the undo must go through
	// anyway.
	ctx = context.WithoutCancel(ctx)
	for i := len(u.steps) - 1; i >= 0; i-- {
		step := u.steps[i]
		if err := step.fn(ctx); err != nil {
			log.WithError(err).Errorf("failed to undo %s", step.name)
		}
	}
	u.steps = nil
}
