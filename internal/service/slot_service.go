package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Freeeeeet/slot_swapper/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SlotInput describes a new slot.
type SlotInput struct {
	Title     string
	StartTime time.Time
	EndTime   time.Time
}

// SlotPatch carries the fields an owner wants to change; nil fields stay as they are.
type SlotPatch struct {
	Title     *string
	StartTime *time.Time
	EndTime   *time.Time
	Status    *model.SlotStatus
}

type SlotService struct {
	tx      Transactor
	slots   SlotStore
	users   UserStore
	guard   AccessGuard
	overlap *OverlapValidator
	logger  *zap.Logger
}

func NewSlotService(stores Stores, logger *zap.Logger) *SlotService {
	return &SlotService{
		tx:      stores.Tx,
		slots:   stores.Slots,
		users:   stores.Users,
		overlap: NewOverlapValidator(stores.Slots),
		logger:  logger,
	}
}

// CreateSlot создаёт слот владельца в статусе BUSY
func (s *SlotService) CreateSlot(ctx context.Context, ownerID uuid.UUID, in SlotInput) (*model.Slot, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	if err := validateRange(in.StartTime, in.EndTime); err != nil {
		return nil, err
	}

	slot := &model.Slot{
		Title:     title,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Status:    model.SlotStatusBusy,
		OwnerID:   ownerID,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.overlap.Check(ctx, ownerID, slot.StartTime, slot.EndTime); err != nil {
			return err
		}
		if err := s.slots.Create(ctx, slot); err != nil {
			return storageError("create slot", err)
		}
		return nil
	})
	if err != nil {
		return nil, storageError("create slot", err)
	}

	s.logger.Info("Slot created",
		zap.String("slot_id", slot.ID.String()),
		zap.String("owner_id", ownerID.String()),
		zap.Time("start_time", slot.StartTime),
		zap.Time("end_time", slot.EndTime),
	)

	return slot, nil
}

// UpdateSlot применяет изменения владельца к слоту
func (s *SlotService) UpdateSlot(ctx context.Context, ownerID, slotID uuid.UUID, patch SlotPatch) (*model.Slot, error) {
	var updated *model.Slot

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		slot, err := s.slots.GetByIDForUpdate(ctx, slotID)
		if err != nil {
			return storageError("get slot", err)
		}
		if slot == nil {
			return notFoundError("slot not found")
		}
		if err := s.guard.SlotWrite(ownerID, slot); err != nil {
			return err
		}
		if slot.IsPending() {
			return conflictError("slot has a pending swap request and cannot be edited")
		}

		if patch.Title != nil {
			title, err := normalizeTitle(*patch.Title)
			if err != nil {
				return err
			}
			slot.Title = title
		}

		timesChanged := false
		if patch.StartTime != nil && !patch.StartTime.Equal(slot.StartTime) {
			slot.StartTime = *patch.StartTime
			timesChanged = true
		}
		if patch.EndTime != nil && !patch.EndTime.Equal(slot.EndTime) {
			slot.EndTime = *patch.EndTime
			timesChanged = true
		}
		if err := validateRange(slot.StartTime, slot.EndTime); err != nil {
			return err
		}

		if patch.Status != nil {
			if !patch.Status.OwnerSettable() {
				return validationError("status can only be set to %s or %s", model.SlotStatusBusy, model.SlotStatusSwappable)
			}
			slot.Status = *patch.Status
		}

		if timesChanged {
			if err := s.overlap.Check(ctx, ownerID, slot.StartTime, slot.EndTime, slot.ID); err != nil {
				return err
			}
		}

		if err := s.slots.Update(ctx, slot); err != nil {
			return storageError("update slot", err)
		}
		updated = slot
		return nil
	})
	if err != nil {
		return nil, storageError("update slot", err)
	}

	s.logger.Info("Slot updated",
		zap.String("slot_id", updated.ID.String()),
		zap.String("owner_id", ownerID.String()),
		zap.String("status", string(updated.Status)),
	)

	return updated, nil
}

// DeleteSlot удаляет слот, если на него нет активного запроса обмена
func (s *SlotService) DeleteSlot(ctx context.Context, ownerID, slotID uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		slot, err := s.slots.GetByIDForUpdate(ctx, slotID)
		if err != nil {
			return storageError("get slot", err)
		}
		if slot == nil {
			return notFoundError("slot not found")
		}
		if err := s.guard.SlotWrite(ownerID, slot); err != nil {
			return err
		}
		if slot.IsPending() {
			return conflictError("slot has a pending swap request and cannot be deleted")
		}
		if err := s.slots.Delete(ctx, slotID); err != nil {
			return storageError("delete slot", err)
		}
		return nil
	})
	if err != nil {
		return storageError("delete slot", err)
	}

	s.logger.Info("Slot deleted",
		zap.String("slot_id", slotID.String()),
		zap.String("owner_id", ownerID.String()),
	)

	return nil
}

// GetSlot returns one of the caller's slots.
func (s *SlotService) GetSlot(ctx context.Context, ownerID, slotID uuid.UUID) (*model.Slot, error) {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, storageError("get slot", err)
	}
	if err := s.guard.SlotRead(ownerID, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

// ListMySlots returns the caller's slots ordered by start time.
func (s *SlotService) ListMySlots(ctx context.Context, ownerID uuid.UUID) ([]*model.Slot, error) {
	slots, err := s.slots.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, storageError("list slots", err)
	}
	return nonNilSlots(slots), nil
}

// ListMySlotsInRange returns the caller's slots intersecting [from, to).
func (s *SlotService) ListMySlotsInRange(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]*model.Slot, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	slots, err := s.slots.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, storageError("list slots", err)
	}

	out := make([]*model.Slot, 0, len(slots))
	for _, slot := range slots {
		if slot.Overlaps(from, to) {
			out = append(out, slot)
		}
	}
	return out, nil
}

// ListSwappableSlots returns other users' SWAPPABLE slots with their owners filled in.
func (s *SlotService) ListSwappableSlots(ctx context.Context, userID uuid.UUID) ([]*model.Slot, error) {
	slots, err := s.slots.GetSwappable(ctx, userID)
	if err != nil {
		return nil, storageError("list swappable slots", err)
	}

	ownerIDs := make([]uuid.UUID, 0, len(slots))
	for _, slot := range slots {
		ownerIDs = append(ownerIDs, slot.OwnerID)
	}
	owners, err := loadUsers(ctx, s.users, ownerIDs)
	if err != nil {
		return nil, err
	}
	for _, slot := range slots {
		slot.Owner = owners[slot.OwnerID]
	}

	return nonNilSlots(slots), nil
}

func normalizeTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(title)
	if n < model.SlotTitleMinLength || n > model.SlotTitleMaxLength {
		return "", validationError("title must be between %d and %d characters",
			model.SlotTitleMinLength, model.SlotTitleMaxLength)
	}
	return title, nil
}

func validateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return validationError("start and end time are required")
	}
	if !start.Before(end) {
		return validationError("start time must be before end time")
	}
	return nil
}

func loadUsers(ctx context.Context, users UserStore, ids []uuid.UUID) (map[uuid.UUID]*model.User, error) {
	out := make(map[uuid.UUID]*model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	list, err := users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, storageError("load users", err)
	}
	for _, u := range list {
		out[u.ID] = u
	}
	return out, nil
}

func nonNilSlots(slots []*model.Slot) []*model.Slot {
	if slots == nil {
		return []*model.Slot{}
	}
	return slots
}
