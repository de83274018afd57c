package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const rangeLayout = "2006-01-02 15:04"

// OverlapValidator rejects a time range that collides with another slot of the same owner.
type OverlapValidator struct {
	slots SlotStore
}

func NewOverlapValidator(slots SlotStore) *OverlapValidator {
	return &OverlapValidator{slots: slots}
}

func (v *OverlapValidator) Check(ctx context.Context, ownerID uuid.UUID, start, end time.Time, exclude ...uuid.UUID) error {
	existing, err := v.slots.FindOverlapping(ctx, ownerID, start, end, exclude...)
	if err != nil {
		return storageError("check overlapping slots", err)
	}
	if existing != nil {
		return validationError("time range overlaps with %q (%s - %s)",
			existing.Title,
			existing.StartTime.Format(rangeLayout),
			existing.EndTime.Format(rangeLayout),
		)
	}
	return nil
}
