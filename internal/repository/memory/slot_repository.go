package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/slot_swapper/internal/model"
	"github.com/Freeeeeet/slot_swapper/internal/repository"
	"github.com/google/uuid"
)

type SlotRepository struct {
	store *Store
}

func (r *SlotRepository) Create(ctx context.Context, slot *model.Slot) error {
	if !slot.StartTime.Before(slot.EndTime) {
		return fmt.Errorf("create slot: start_time must be before end_time")
	}

	return r.store.do(ctx, func(st *state) error {
		if _, ok := st.users[slot.OwnerID]; !ok {
			return fmt.Errorf("create slot: owner %s does not exist", slot.OwnerID)
		}

		now := r.store.now()
		slot.ID = uuid.New()
		slot.CreatedAt = now
		slot.UpdatedAt = now

		stored := *slot
		stored.Owner = nil
		st.slots[slot.ID] = stored
		return nil
	})
}

func (r *SlotRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Slot, error) {
	var found *model.Slot
	err := r.store.do(ctx, func(st *state) error {
		if slot, ok := st.slots[id]; ok {
			found = &slot
		}
		return nil
	})
	return found, err
}

// GetByIDForUpdate is GetByID: a transaction already owns the whole store.
func (r *SlotRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Slot, error) {
	return r.GetByID(ctx, id)
}

func (r *SlotRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Slot, error) {
	return r.filter(ctx, func(s *model.Slot) bool {
		return s.OwnerID == ownerID
	})
}

func (r *SlotRepository) GetSwappable(ctx context.Context, excludeOwnerID uuid.UUID) ([]*model.Slot, error) {
	return r.filter(ctx, func(s *model.Slot) bool {
		return s.Status == model.SlotStatusSwappable && s.OwnerID != excludeOwnerID
	})
}

func (r *SlotRepository) FindOverlapping(ctx context.Context, ownerID uuid.UUID, start, end time.Time, exclude ...uuid.UUID) (*model.Slot, error) {
	skip := make(map[uuid.UUID]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}

	slots, err := r.filter(ctx, func(s *model.Slot) bool {
		if _, ok := skip[s.ID]; ok {
			return false
		}
		return s.OwnerID == ownerID && s.Overlaps(start, end)
	})
	if err != nil || len(slots) == 0 {
		return nil, err
	}
	return slots[0], nil
}

func (r *SlotRepository) Update(ctx context.Context, slot *model.Slot) error {
	if !slot.StartTime.Before(slot.EndTime) {
		return fmt.Errorf("update slot: start_time must be before end_time")
	}

	return r.store.do(ctx, func(st *state) error {
		current, ok := st.slots[slot.ID]
		if !ok {
			return fmt.Errorf("update slot %s: %w", slot.ID, repository.ErrNotFound)
		}

		slot.CreatedAt = current.CreatedAt
		slot.UpdatedAt = r.store.now()

		stored := *slot
		stored.Owner = nil
		st.slots[slot.ID] = stored
		return nil
	})
}

func (r *SlotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.store.do(ctx, func(st *state) error {
		if _, ok := st.slots[id]; !ok {
			return fmt.Errorf("delete slot %s: %w", id, repository.ErrNotFound)
		}
		delete(st.slots, id)
		return nil
	})
}

// filter returns copies of matching slots ordered by start time.
func (r *SlotRepository) filter(ctx context.Context, match func(s *model.Slot) bool) ([]*model.Slot, error) {
	var out []*model.Slot
	err := r.store.do(ctx, func(st *state) error {
		for _, slot := range st.slots {
			if match(&slot) {
				out = append(out, &slot)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}
