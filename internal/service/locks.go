// internal/service/locks.go
package service

import (
	"sync"

	"github.com/google/uuid"
)

// accountLocks hands out one mutex per account identity. Every mutation on
// an account runs under its mutex, so the allocation protocol's
// check-then-act sequence (read derived balance, then append the mirrored
// pair) is a single exclusive critical section. Goals are owned by their
// account, so the account's lock covers both sides of the pair.
type accountLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newAccountLocks() *accountLocks {
	return &accountLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// get returns the mutex for an account, creating it on first use. Mutexes
// are never evicted; the map grows with the number of accounts, which is
// bounded by the dataset.
func (l *accountLocks) get(id uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}
