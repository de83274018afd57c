package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SlotStatus is the lifecycle state of a slot.
type SlotStatus string

const (
	SlotStatusBusy        SlotStatus = "BUSY"
	SlotStatusSwappable   SlotStatus = "SWAPPABLE"
	SlotStatusSwapPending SlotStatus = "SWAP_PENDING" // set only while a swap request references the slot
)

// Title length bounds for a slot.
const (
	SlotTitleMinLength = 3
	SlotTitleMaxLength = 100
)

// ParseSlotStatus converts a raw value into a known SlotStatus.
func ParseSlotStatus(s string) (SlotStatus, error) {
	switch SlotStatus(s) {
	case SlotStatusBusy, SlotStatusSwappable, SlotStatusSwapPending:
		return SlotStatus(s), nil
	default:
		return "", fmt.Errorf("unknown slot status %q", s)
	}
}

// OwnerSettable reports whether an owner may put a slot into this status directly.
func (s SlotStatus) OwnerSettable() bool {
	switch s {
	case SlotStatusBusy, SlotStatusSwappable:
		return true
	case SlotStatusSwapPending:
		return false
	default:
		return false
	}
}

type Slot struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	StartTime time.Time  `json:"start_time"`
	EndTime   time.Time  `json:"end_time"`
	Status    SlotStatus `json:"status"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Filled in for display, not stored
	Owner *User `json:"owner,omitempty"`
}

// IsPending reports whether the slot is reserved by a swap request.
func (s *Slot) IsPending() bool {
	return s.Status == SlotStatusSwapPending
}

// Overlaps reports whether the candidate range [start, end) collides with the slot.
func (s *Slot) Overlaps(start, end time.Time) bool {
	return RangesOverlap(s.StartTime, s.EndTime, start, end)
}

// RangesOverlap reports whether candidate [start, end) intersects existing [exStart, exEnd).
// A candidate collides when it starts inside the existing range, ends inside it, or contains it.
// Ranges that only touch at a boundary do not overlap.
func RangesOverlap(exStart, exEnd, start, end time.Time) bool {
	startsInside := !exStart.After(start) && exEnd.After(start)
	endsInside := exStart.Before(end) && !exEnd.Before(end)
	contains := !exStart.Before(start) && !exEnd.After(end)
	return startsInside || endsInside || contains
}
