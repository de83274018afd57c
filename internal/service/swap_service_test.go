package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Freeeeeet/slot_swapper/internal/model"
	"github.com/Freeeeeet/slot_swapper/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingRequests breaks the final step of a resolution so the engine has to roll back.
type failingRequests struct {
	SwapRequestStore
	err error
}

func (f *failingRequests) UpdateStatus(context.Context, uuid.UUID, model.SwapRequestStatus) error {
	return f.err
}

func TestCreateSwapRequestReservesBothSlots(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ann := env.user(t, "ann")
	bob := env.user(t, "bob")
	mine := env.swappable(t, ann, "Mine", 9, 10)
	theirs := env.swappable(t, bob, "Theirs", 14, 15)

	req, err := env.swaps.CreateSwapRequest(ctx, ann, mine.ID, theirs.ID)
	require.NoError(t, err)

	assert.Equal(t, model.SwapRequestStatusPending, req.Status)
	assert.Equal(t, bob, req.TargetUserID)
	require.NotNil(t, req.RequesterSlot)
	require.NotNil(t, req.TargetSlot)
	require.NotNil(t, req.TargetUser)
	assert.Equal(t, "bob", req.TargetUser.Username)
	assert.Equal(t, model.SlotStatusSwapPending, env.get(t, mine.ID).Status)
	assert.Equal(t, model.SlotStatusSwapPending, env.get(t, theirs.ID).Status)
}

func TestCreateSwapRequestFailures(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ann := env.user(t, "ann")
	bob := env.user(t, "bob")
	mine := env.swappable(t, ann, "Mine", 9, 10)
	myOther := env.swappable(t, ann, "Mine too", 11, 12)
	myBusy := env.slot(t, ann, "Busy", 13, 14)
	theirs := env.swappable(t, bob, "Theirs", 14, 15)
	theirBusy := env.slot(t, bob, "Their busy", 16, 17)

	tests := []struct {
		name    string
		actor   uuid.UUID
		offered uuid.UUID
		target  uuid.UUID
		kind    Kind
	}{
		{"same slot", ann, mine.ID, mine.ID, KindValidation},
		{"nil offered", ann, uuid.Nil, theirs.ID, KindValidation},
		{"offered missing", ann, uuid.New(), theirs.ID, KindNotFound},
		{"offered not owned", bob, mine.ID, theirs.ID, KindForbidden},
		{"offered busy", ann, myBusy.ID, theirs.ID, KindInvalidState},
		{"target missing", ann, mine.ID, uuid.New(), KindNotFound},
		{"target busy", ann, mine.ID, theirBusy.ID, KindInvalidState},
		{"own slot", ann, mine.ID, myOther.ID, KindInvalidOperation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.swaps.CreateSwapRequest(ctx, tt.actor, tt.offered, tt.target)
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}

	assert.Equal(t, model.SlotStatusSwappable, env.get(t, mine.ID).Status)
	assert.Equal(t, model.SlotStatusSwappable, env.get(t, theirs.ID).Status)
}

func TestSelfSwapIsInvalidOperation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ann := env.user(t, "ann")
	a := env.swappable(t, ann, "Morning", 9, 10)
	b := env.swappable(t, ann, "Evening", 18, 19)

	_, err := env.swaps.CreateSwapRequest(ctx, ann, a.ID, b.ID)
	require.Error(t, err)
	assert.True(t, IsInvalidOperation(err))
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "cannot swap with your own slot")
}

func TestPendingRequestIsUniquePerPair(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ann := env.user(t, "ann")
	bob := env.user(t, "bob")
	mine := env.swappable(t, ann, "Mine", 9, 10)
	theirs := env.swappable(t, bob, "Theirs", 14, 15)

	first, err := env.swaps.CreateSwapRequest(ctx, ann, mine.ID, theirs.ID)
	require.NoError(t, err)

	_, err = env.swaps.CreateSwapRequest(ctx, ann, mine.ID, theirs.ID)
	require.Error(t, err)
	assert.True(t, IsConflict(err))

	outgoing, err := env.swaps.GetOutgoingRequests(ctx, ann)
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
	assert.Equal(t, first.ID, outgoing[0].ID)
}

func TestAcceptSwapEndToEnd(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ann := env.user(t, "ann")
	bob := env.user(t, "bob")
	mine := env.swappable(t, ann, "Mine", 9, 10)
	theirs := env.swappable(t, bob, "Theirs", 14, 15)

	req, err := env.swaps.CreateSwapRequest(ctx, ann, mine.ID, theirs.ID)
	require.NoError(t, err)

	incoming, err := env.swaps.GetIncomingRequests(ctx, bob)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, req.ID, incoming[0].ID)
	require.NotNil(t, incoming[0].Requester)
	assert.Equal(t, "ann", incoming[0].Requester.Username)

	_, err = env.swaps.RespondToSwapRequest(ctx, ann, req.ID, true)
	assert.True(t, IsForbidden(err), "only the target may respond")

	result, err := env.swaps.RespondToSwapRequest(ctx, bob, req.ID, true)
	require.NoError(t, err)
	assert.Equal(t, model.SwapRequestStatusAccepted, result.Request.Status)
	assert.Equal(t, bob, result.RequesterSlot.OwnerID)
	assert.Equal(t, ann, result.TargetSlot.OwnerID)

	gotMine := env.get(t, mine.ID)
	gotTheirs := env.get(t, theirs.ID)
	assert.Equal(t, bob, gotMine.OwnerID)
	assert.Equal(t, ann, gotTheirs.OwnerID)
	assert.Equal(t, model.SlotStatusBusy, gotMine.Status)
	assert.Equal(t, model.SlotStatusBusy, gotTheirs.Status)
	assert.Equal(t, model.SwapRequestStatusAccepted, env.request(t, req.ID).Status)

	// The former owner can no longer touch the slot they gave away.
	assert.True(t, IsForbidden(env.slots.DeleteSlot(ctx, ann, mine.ID)))

	incoming, err = env.swaps.GetIncomingRequests(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, incoming)
}

func TestRejectSwapEndToEnd(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ann := env.user(t, "ann")
	bob := env.user(t, "bob")
	mine := env.swappable(t, ann, "Mine", 9, 10)
	theirs := env.swappable(t, bob, "Theirs", 14, 15)

	req, err := env.swaps.CreateSwapRequest(ctx, ann, mine.ID, theirs.ID)
	require.NoError(t, err)

	result, err := env.swaps.RespondToSwapRequest(ctx, bob, req.ID, false)
	require.NoError(t, err)
	assert.Equal(t, model.SwapRequestStatusRejected, result.Request.Status)

	gotMine := env.get(t, mine.ID)
	gotTheirs := env.get(t, theirs.ID)
	assert.Equal(t, ann, gotMine.OwnerID)
	assert.Equal(t, bob, gotTheirs.OwnerID)
	assert.Equal(t, model.SlotStatusSwappable, gotMine.Status)
	assert.Equal(t, model.SlotStatusSwappable, gotTheirs.Status)

	again, err := env.swaps.CreateSwapRequest(ctx, ann, mine.ID, theirs.ID)
	require.NoError(t, err)
	assert.NotEqual(t, req.ID, again.ID)
}

func TestResolvedRequestCannotBeResolvedAgain(t *testing.T) {
	for _, first := range []bool{true, false} {
		ctx := context.Background()
		env := newTestEnv(t)
		ann := env.user(t, "ann")
		bob := env.user(t, "bob")
		mine := env.swappable(t, ann, "Mine", 9, 10)
		theirs := env.swappable(t, bob, "Theirs", 14, 15)

		req, err := env.swaps.CreateSwapRequest(ctx, ann, mine.ID, theirs.ID)
		require.NoError(t, err)
		_, err = env.swaps.RespondToSwapRequest(ctx, bob, req.ID, first)
		require.NoError(t, err)

		beforeMine := env.get(t, mine.ID)
		beforeTheirs := env.get(t, theirs.ID)
		beforeReq := env.request(t, req.ID)

		for _, second := range []bool{true, false} {
			_, err = env.swaps.RespondToSwapRequest(ctx, bob, req.ID, second)
			require.Error(t, err)
			assert.True(t, IsConflict(err))
			assert.Equal(t, KindInvalidState, KindOf(err))
			assert.Contains(t, err.Error(), "already been")
		}

		assert.Equal(t, beforeMine, env.get(t, mine.ID))
		assert.Equal(t, beforeTheirs, env.get(t, theirs.ID))
		assert.Equal(t, beforeReq, env.request(t, req.ID))
	}
}

func TestAcceptRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	boom := errors.New("disk on fire")
	env := newTestEnvWith(t, store, Stores{
		Tx:           store,
		Slots:        store.Slots(),
		SwapRequests: &failingRequests{SwapRequestStore: store.SwapRequests(), err: boom},
		Users:        store.Users(),
	})

	ann := env.user(t, "ann")
	bob := env.user(t, "bob")
	mine := env.swappable(t, ann, "Mine", 9, 10)
	theirs := env.swappable(t, bob, "Theirs", 14, 15)

	req, err := env.swaps.CreateSwapRequest(ctx, ann, mine.ID, theirs.ID)
	require.NoError(t, err)

	_, err = env.swaps.RespondToSwapRequest(ctx, bob, req.ID, true)
	require.Error(t, err)
	assert.Equal(t, KindInternal, KindOf(err))
	assert.ErrorIs(t, err, boom)

	gotMine := env.get(t, mine.ID)
	gotTheirs := env.get(t, theirs.ID)
	assert.Equal(t, ann, gotMine.OwnerID)
	assert.Equal(t, bob, gotTheirs.OwnerID)
	assert.Equal(t, model.SlotStatusSwapPending, gotMine.Status)
	assert.Equal(t, model.SlotStatusSwapPending, gotTheirs.Status)
	assert.Equal(t, model.SwapRequestStatusPending, env.request(t, req.ID).Status)
}

func TestAcceptRefusesDriftedSlot(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ann := env.user(t, "ann")
	bob := env.user(t, "bob")
	mine := env.swappable(t, ann, "Mine", 9, 10)
	theirs := env.swappable(t, bob, "Theirs", 14, 15)

	req, err := env.swaps.CreateSwapRequest(ctx, ann, mine.ID, theirs.ID)
	require.NoError(t, err)

	drifted := env.get(t, theirs.ID)
	drifted.Status = model.SlotStatusBusy
	require.NoError(t, env.store.Slots().Update(ctx, drifted))

	_, err = env.swaps.RespondToSwapRequest(ctx, bob, req.ID, true)
	require.Error(t, err)
	assert.Equal(t, KindInvalidState, KindOf(err))
	assert.Contains(t, err.Error(), "not in a valid state")

	gotMine := env.get(t, mine.ID)
	gotTheirs := env.get(t, theirs.ID)
	assert.Equal(t, ann, gotMine.OwnerID)
	assert.Equal(t, bob, gotTheirs.OwnerID)
	assert.Equal(t, model.SlotStatusSwapPending, gotMine.Status)
	assert.Equal(t, model.SlotStatusBusy, gotTheirs.Status)
	assert.Equal(t, model.SwapRequestStatusPending, env.request(t, req.ID).Status)
}

func TestAcceptWithDeletedSlotThenReject(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ann := env.user(t, "ann")
	bob := env.user(t, "bob")
	mine := env.swappable(t, ann, "Mine", 9, 10)
	theirs := env.swappable(t, bob, "Theirs", 14, 15)

	req, err := env.swaps.CreateSwapRequest(ctx, ann, mine.ID, theirs.ID)
	require.NoError(t, err)

	require.NoError(t, env.store.Slots().Delete(ctx, mine.ID))

	_, err = env.swaps.RespondToSwapRequest(ctx, bob, req.ID, true)
	require.Error(t, err)
	assert.Equal(t, KindInvalidState, KindOf(err))
	assert.Contains(t, err.Error(), "no longer exist")

	gotTheirs := env.get(t, theirs.ID)
	assert.Equal(t, bob, gotTheirs.OwnerID)
	assert.Equal(t, model.SlotStatusSwapPending, gotTheirs.Status)
	assert.Equal(t, model.SwapRequestStatusPending, env.request(t, req.ID).Status)

	// Отклонение освобождает оставшийся слот
	result, err := env.swaps.RespondToSwapRequest(ctx, bob, req.ID, false)
	require.NoError(t, err)
	assert.Equal(t, model.SwapRequestStatusRejected, result.Request.Status)
	assert.Equal(t, model.SlotStatusSwappable, env.get(t, theirs.ID).Status)
	assert.Equal(t, model.SwapRequestStatusRejected, env.request(t, req.ID).Status)
}

func TestAcceptRejectsOverlapForNewOwner(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ann := env.user(t, "ann")
	bob := env.user(t, "bob")
	mine := env.swappable(t, ann, "Mine", 9, 10)
	theirs := env.swappable(t, bob, "Theirs", 14, 15)

	req, err := env.swaps.CreateSwapRequest(ctx, ann, mine.ID, theirs.ID)
	require.NoError(t, err)

	// Bob fills the hour he would receive before answering.
	env.slot(t, bob, "Dentist", 9, 10)

	_, err = env.swaps.RespondToSwapRequest(ctx, bob, req.ID, true)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	assert.Equal(t, ann, env.get(t, mine.ID).OwnerID)
	assert.Equal(t, model.SwapRequestStatusPending, env.request(t, req.ID).Status)

	_, err = env.swaps.RespondToSwapRequest(ctx, bob, req.ID, false)
	require.NoError(t, err)
}

func TestRespondToMissingRequest(t *testing.T) {
	env := newTestEnv(t)
	bob := env.user(t, "bob")

	_, err := env.swaps.RespondToSwapRequest(context.Background(), bob, uuid.New(), true)
	assert.True(t, IsNotFound(err))
}

func TestConcurrentAcceptSucceedsOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ann := env.user(t, "ann")
	bob := env.user(t, "bob")
	mine := env.swappable(t, ann, "Mine", 9, 10)
	theirs := env.swappable(t, bob, "Theirs", 14, 15)

	req, err := env.swaps.CreateSwapRequest(ctx, ann, mine.ID, theirs.ID)
	require.NoError(t, err)

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.swaps.RespondToSwapRequest(ctx, bob, req.ID, true)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, IsConflict(err), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, bob, env.get(t, mine.ID).OwnerID)
	assert.Equal(t, ann, env.get(t, theirs.ID).OwnerID)
}

func TestConcurrentRequestsForSamePair(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ann := env.user(t, "ann")
	bob := env.user(t, "bob")
	mine := env.swappable(t, ann, "Mine", 9, 10)
	theirs := env.swappable(t, bob, "Theirs", 14, 15)

	const workers = 6
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.swaps.CreateSwapRequest(ctx, ann, mine.ID, theirs.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, IsConflict(err), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)
}
