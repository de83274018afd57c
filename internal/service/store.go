package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/slot_swapper/internal/model"
	"github.com/google/uuid"
)

// Stores return nil, nil for absent rows, repository.ErrNotFound when a write touches no row
// and repository.ErrConflict when it collides with a unique index or a concurrent transaction.

type SlotStore interface {
	Create(ctx context.Context, slot *model.Slot) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Slot, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Slot, error)
	GetByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Slot, error)
	GetSwappable(ctx context.Context, excludeOwnerID uuid.UUID) ([]*model.Slot, error)
	FindOverlapping(ctx context.Context, ownerID uuid.UUID, start, end time.Time, exclude ...uuid.UUID) (*model.Slot, error)
	Update(ctx context.Context, slot *model.Slot) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type SwapRequestStore interface {
	Create(ctx context.Context, req *model.SwapRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.SwapRequest, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.SwapRequest, error)
	GetPendingByPair(ctx context.Context, requesterSlotID, targetSlotID uuid.UUID) (*model.SwapRequest, error)
	GetIncoming(ctx context.Context, targetUserID uuid.UUID) ([]*model.SwapRequest, error)
	GetOutgoing(ctx context.Context, requesterID uuid.UUID) ([]*model.SwapRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.SwapRequestStatus) error
}

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
}

// Transactor runs fn as one atomic unit. Nested calls join the outer unit.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Stores groups the storage dependencies of the services.
type Stores struct {
	Tx           Transactor
	Slots        SlotStore
	SwapRequests SwapRequestStore
	Users        UserStore
}
