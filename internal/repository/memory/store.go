// Package memory provides an in-process repository.Store. Atomic units are
// serialised behind one mutex and write to a private copy of the state that
// is published only when the unit succeeds.
package memory

import (
	"context"
	"sync"
	"time"

	"library-circulation-backend/internal/domain"
	"library-circulation-backend/internal/repository"
)

type state struct {
	books        map[int32]domain.Book
	members      map[int32]domain.Member
	transactions map[int32]domain.Transaction
	fines        map[int32]domain.Fine

	nextBookID        int32
	nextMemberID      int32
	nextTransactionID int32
	nextFineID        int32
}

func newState() *state {
	return &state{
		books:        map[int32]domain.Book{},
		members:      map[int32]domain.Member{},
		transactions: map[int32]domain.Transaction{},
		fines:        map[int32]domain.Fine{},
	}
}

// clone copies the maps. Entity values are copied by value; their pointer
// fields are never mutated in place, only replaced.
func (s *state) clone() *state {
	c := &state{
		books:             make(map[int32]domain.Book, len(s.books)),
		members:           make(map[int32]domain.Member, len(s.members)),
		transactions:      make(map[int32]domain.Transaction, len(s.transactions)),
		fines:             make(map[int32]domain.Fine, len(s.fines)),
		nextBookID:        s.nextBookID,
		nextMemberID:      s.nextMemberID,
		nextTransactionID: s.nextTransactionID,
		nextFineID:        s.nextFineID,
	}
	for k, v := range s.books {
		c.books[k] = v
	}
	for k, v := range s.members {
		c.members[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = v
	}
	for k, v := range s.fines {
		c.fines[k] = v
	}
	return c
}

// access hands a repository the state it should operate on. Outside an
// atomic unit every call takes the store lock; inside one the unit already
// holds it.
type access interface {
	read(fn func(st *state) error) error
	write(fn func(st *state) error) error
}

type storeAccess struct {
	s *Store
}

func (a storeAccess) read(fn func(st *state) error) error {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	return fn(a.s.state)
}

func (a storeAccess) write(fn func(st *state) error) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return fn(a.s.state)
}

type txAccess struct {
	st *state
}

func (a txAccess) read(fn func(st *state) error) error  { return fn(a.st) }
func (a txAccess) write(fn func(st *state) error) error { return fn(a.st) }

type Store struct {
	mu    sync.RWMutex
	state *state
	now   func() time.Time
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		state: newState(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) repositories(a access) repository.Repositories {
	return repository.Repositories{
		Books:        &bookRepository{a: a, now: s.now},
		Members:      &memberRepository{a: a, now: s.now},
		Transactions: &transactionRepository{a: a, now: s.now},
		Fines:        &fineRepository{a: a, now: s.now},
	}
}

// Repositories returns repositories that lock per call. They must not be
// used from inside a WithTx callback; use the repositories passed to it.
func (s *Store) Repositories() repository.Repositories {
	return s.repositories(storeAccess{s: s})
}

func (s *Store) WithTx(ctx context.Context, fn repository.TxFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.state.clone()
	if err := fn(ctx, s.repositories(txAccess{st: work})); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}
