// Package memory is a process-local implementation of the slot, swap request and user stores.
// It mirrors the Postgres repositories closely enough to run the service layer in tests and in
// single-node deployments started with STORAGE=memory.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/slot_swapper/internal/model"
	"github.com/google/uuid"
)

type txKey struct {
	store *Store
}

type requestRow struct {
	request model.SwapRequest
	seq     uint64
}

type state struct {
	users    map[uuid.UUID]model.User
	slots    map[uuid.UUID]model.Slot
	requests map[uuid.UUID]requestRow
	seq      uint64
}

func newState() *state {
	return &state{
		users:    make(map[uuid.UUID]model.User),
		slots:    make(map[uuid.UUID]model.Slot),
		requests: make(map[uuid.UUID]requestRow),
	}
}

func (s *state) clone() *state {
	c := &state{
		users:    make(map[uuid.UUID]model.User, len(s.users)),
		slots:    make(map[uuid.UUID]model.Slot, len(s.slots)),
		requests: make(map[uuid.UUID]requestRow, len(s.requests)),
		seq:      s.seq,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.slots {
		c.slots[k] = v
	}
	for k, v := range s.requests {
		c.requests[k] = v
	}
	return c
}

// Store holds all records behind a single mutex. A transaction keeps the mutex for its whole
// duration and works on a copy that replaces the live state only when fn succeeds.
type Store struct {
	mu   sync.Mutex
	live *state
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{
		live: newState(),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// WithinTx runs fn as one unit of work. Nested calls join the outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{s}).(*state); ok {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.live.clone()
	if err := fn(context.WithValue(ctx, txKey{s}, work)); err != nil {
		return err
	}
	s.live = work
	return nil
}

// Slots returns the slot store view.
func (s *Store) Slots() *SlotRepository {
	return &SlotRepository{store: s}
}

// SwapRequests returns the swap request store view.
func (s *Store) SwapRequests() *SwapRequestRepository {
	return &SwapRequestRepository{store: s}
}

// Users returns the user store view.
func (s *Store) Users() *UserRepository {
	return &UserRepository{store: s}
}

// do runs fn against the transaction state bound to ctx, or against the live state under the
// mutex when ctx carries no transaction.
func (s *Store) do(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if st, ok := ctx.Value(txKey{s}).(*state); ok {
		return fn(st)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.live)
}
