package service

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/slot_swapper/internal/model"
	"github.com/Freeeeeet/slot_swapper/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var day = time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)

func at(hour int) time.Time {
	return day.Add(time.Duration(hour) * time.Hour)
}

type testEnv struct {
	store *memory.Store
	slots *SlotService
	swaps *SwapService
	users *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	return newTestEnvWith(t, store, Stores{
		Tx:           store,
		Slots:        store.Slots(),
		SwapRequests: store.SwapRequests(),
		Users:        store.Users(),
	})
}

func newTestEnvWith(t *testing.T, store *memory.Store, stores Stores) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	return &testEnv{
		store: store,
		slots: NewSlotService(stores, logger),
		swaps: NewSwapService(stores, logger),
		users: NewUserService(stores, logger),
	}
}

func (e *testEnv) user(t *testing.T, name string) uuid.UUID {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), name, name, "")
	require.NoError(t, err)
	return u.ID
}

func (e *testEnv) slot(t *testing.T, owner uuid.UUID, title string, from, to int) *model.Slot {
	t.Helper()
	s, err := e.slots.CreateSlot(context.Background(), owner, SlotInput{Title: title, StartTime: at(from), EndTime: at(to)})
	require.NoError(t, err)
	return s
}

func (e *testEnv) swappable(t *testing.T, owner uuid.UUID, title string, from, to int) *model.Slot {
	t.Helper()
	s := e.slot(t, owner, title, from, to)
	status := model.SlotStatusSwappable
	updated, err := e.slots.UpdateSlot(context.Background(), owner, s.ID, SlotPatch{Status: &status})
	require.NoError(t, err)
	return updated
}

func (e *testEnv) get(t *testing.T, id uuid.UUID) *model.Slot {
	t.Helper()
	s, err := e.store.Slots().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, s)
	return s
}

func (e *testEnv) request(t *testing.T, id uuid.UUID) *model.SwapRequest {
	t.Helper()
	r, err := e.store.SwapRequests().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, r)
	return r
}
