package service

import (
	"github.com/Freeeeeet/slot_swapper/internal/model"
	"github.com/google/uuid"
)

// AccessGuard decides whether an actor may touch a slot or a swap request.
// Reads of foreign slots look like missing slots, mutations of them are refused outright.
type AccessGuard struct{}

func (AccessGuard) SlotRead(actor uuid.UUID, slot *model.Slot) error {
	if slot == nil || slot.OwnerID != actor {
		return notFoundError("slot not found")
	}
	return nil
}

func (AccessGuard) SlotWrite(actor uuid.UUID, slot *model.Slot) error {
	if slot.OwnerID != actor {
		return forbiddenError("you do not own this slot")
	}
	return nil
}

func (AccessGuard) SwapOffer(actor uuid.UUID, offered *model.Slot) error {
	if offered.OwnerID != actor {
		return forbiddenError("you can only offer your own slot")
	}
	return nil
}

func (AccessGuard) SwapResponse(actor uuid.UUID, req *model.SwapRequest) error {
	if req.TargetUserID != actor {
		return forbiddenError("only the target user can respond to this request")
	}
	return nil
}
