package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SwapRequestStatus is the lifecycle state of a swap request.
type SwapRequestStatus string

const (
	SwapRequestStatusPending  SwapRequestStatus = "PENDING"
	SwapRequestStatusAccepted SwapRequestStatus = "ACCEPTED"
	SwapRequestStatusRejected SwapRequestStatus = "REJECTED"
)

// ParseSwapRequestStatus converts a raw value into a known SwapRequestStatus.
func ParseSwapRequestStatus(s string) (SwapRequestStatus, error) {
	switch SwapRequestStatus(s) {
	case SwapRequestStatusPending, SwapRequestStatusAccepted, SwapRequestStatusRejected:
		return SwapRequestStatus(s), nil
	default:
		return "", fmt.Errorf("unknown swap request status %q", s)
	}
}

// IsTerminal reports whether the request has been resolved.
func (s SwapRequestStatus) IsTerminal() bool {
	switch s {
	case SwapRequestStatusAccepted, SwapRequestStatusRejected:
		return true
	case SwapRequestStatusPending:
		return false
	default:
		return false
	}
}

// SwapRequest is a proposal to exchange ownership of two slots.
type SwapRequest struct {
	ID              uuid.UUID         `json:"id"`
	RequesterID     uuid.UUID         `json:"requester_id"`
	RequesterSlotID uuid.UUID         `json:"requester_slot_id"`
	TargetUserID    uuid.UUID         `json:"target_user_id"`
	TargetSlotID    uuid.UUID         `json:"target_slot_id"`
	Status          SwapRequestStatus `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`

	// Filled in for display, not stored
	RequesterSlot *Slot `json:"requester_slot,omitempty"`
	TargetSlot    *Slot `json:"target_slot,omitempty"`
	Requester     *User `json:"requester,omitempty"`
	TargetUser    *User `json:"target_user,omitempty"`
}

// IsPending checks if request is pending
func (r *SwapRequest) IsPending() bool {
	return r.Status == SwapRequestStatusPending
}
