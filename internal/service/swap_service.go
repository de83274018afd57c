package service

import (
	"bytes"
	"context"
	"strings"

	"github.com/Freeeeeet/slot_swapper/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SwapResult is the outcome of a response to a swap request.
type SwapResult struct {
	Request       *model.SwapRequest `json:"request"`
	RequesterSlot *model.Slot        `json:"requester_slot"`
	TargetSlot    *model.Slot        `json:"target_slot"`
}

// SwapService runs the swap request workflow. Every operation that writes does all of its reads
// and writes in one transaction, so a failing step leaves both slots and the request untouched.
type SwapService struct {
	tx       Transactor
	slots    SlotStore
	requests SwapRequestStore
	users    UserStore
	guard    AccessGuard
	overlap  *OverlapValidator
	logger   *zap.Logger
}

func NewSwapService(stores Stores, logger *zap.Logger) *SwapService {
	return &SwapService{
		tx:       stores.Tx,
		slots:    stores.Slots,
		requests: stores.SwapRequests,
		users:    stores.Users,
		overlap:  NewOverlapValidator(stores.Slots),
		logger:   logger,
	}
}

// CreateSwapRequest предлагает обменять свой слот на чужой
func (s *SwapService) CreateSwapRequest(ctx context.Context, requesterID, offeredSlotID, targetSlotID uuid.UUID) (*model.SwapRequest, error) {
	switch {
	case offeredSlotID == uuid.Nil:
		return nil, validationError("my_slot_id is required")
	case targetSlotID == uuid.Nil:
		return nil, validationError("their_slot_id is required")
	case offeredSlotID == targetSlotID:
		return nil, validationError("a slot cannot be swapped with itself")
	}

	var req *model.SwapRequest

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		offered, target, err := s.lockPair(ctx, offeredSlotID, targetSlotID)
		if err != nil {
			return err
		}

		if offered == nil {
			return notFoundError("your slot was not found")
		}
		if err := s.guard.SwapOffer(requesterID, offered); err != nil {
			return err
		}
		if offered.Status != model.SlotStatusSwappable {
			return invalidStateError("your slot is %s, only %s slots can be offered", offered.Status, model.SlotStatusSwappable)
		}

		if target == nil {
			return notFoundError("requested slot was not found")
		}
		if target.Status != model.SlotStatusSwappable {
			return invalidStateError("requested slot is %s and not available for swapping", target.Status)
		}
		if target.OwnerID == requesterID {
			return invalidOperationError("cannot swap with your own slot")
		}

		existing, err := s.requests.GetPendingByPair(ctx, offered.ID, target.ID)
		if err != nil {
			return storageError("check pending requests", err)
		}
		if existing != nil {
			return conflictError("a pending swap request for these slots already exists")
		}

		req = &model.SwapRequest{
			RequesterID:     requesterID,
			RequesterSlotID: offered.ID,
			TargetUserID:    target.OwnerID,
			TargetSlotID:    target.ID,
			Status:          model.SwapRequestStatusPending,
		}
		if err := s.requests.Create(ctx, req); err != nil {
			return storageError("create swap request", err)
		}

		offered.Status = model.SlotStatusSwapPending
		target.Status = model.SlotStatusSwapPending
		if err := s.slots.Update(ctx, offered); err != nil {
			return storageError("reserve offered slot", err)
		}
		if err := s.slots.Update(ctx, target); err != nil {
			return storageError("reserve target slot", err)
		}

		req.RequesterSlot = offered
		req.TargetSlot = target
		return nil
	})
	if err != nil {
		return nil, storageError("create swap request", err)
	}

	s.attachUsers(ctx, req)

	s.logger.Info("Swap request created",
		zap.String("request_id", req.ID.String()),
		zap.String("requester_id", requesterID.String()),
		zap.String("target_user_id", req.TargetUserID.String()),
		zap.String("requester_slot_id", req.RequesterSlotID.String()),
		zap.String("target_slot_id", req.TargetSlotID.String()),
	)

	return req, nil
}

// RespondToSwapRequest принимает или отклоняет входящий запрос обмена
func (s *SwapService) RespondToSwapRequest(ctx context.Context, responderID, requestID uuid.UUID, accept bool) (*SwapResult, error) {
	if requestID == uuid.Nil {
		return nil, validationError("request id is required")
	}

	var result *SwapResult

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		req, err := s.requests.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return storageError("get swap request", err)
		}
		if req == nil {
			return notFoundError("swap request not found")
		}
		if err := s.guard.SwapResponse(responderID, req); err != nil {
			return err
		}
		if !req.IsPending() {
			return invalidStateError("this request has already been %s", strings.ToLower(string(req.Status)))
		}

		requesterSlot, targetSlot, err := s.lockPair(ctx, req.RequesterSlotID, req.TargetSlotID)
		if err != nil {
			return err
		}

		if accept {
			err = s.accept(ctx, req, requesterSlot, targetSlot)
		} else {
			err = s.reject(ctx, req, requesterSlot, targetSlot)
		}
		if err != nil {
			return err
		}

		result = &SwapResult{Request: req, RequesterSlot: requesterSlot, TargetSlot: targetSlot}
		return nil
	})
	if err != nil {
		return nil, storageError("respond to swap request", err)
	}

	result.Request.RequesterSlot = result.RequesterSlot
	result.Request.TargetSlot = result.TargetSlot
	s.attachUsers(ctx, result.Request)

	s.logger.Info("Swap request resolved",
		zap.String("request_id", requestID.String()),
		zap.String("responder_id", responderID.String()),
		zap.String("status", string(result.Request.Status)),
	)

	return result, nil
}

func (s *SwapService) accept(ctx context.Context, req *model.SwapRequest, requesterSlot, targetSlot *model.Slot) error {
	if requesterSlot == nil || targetSlot == nil {
		return invalidStateError("one or both slots no longer exist")
	}
	if !requesterSlot.IsPending() || !targetSlot.IsPending() {
		return invalidStateError("slots are not in a valid state for swapping")
	}

	// Each slot moves to the other owner; their calendars must have room for it.
	if err := s.overlap.Check(ctx, req.TargetUserID, requesterSlot.StartTime, requesterSlot.EndTime, requesterSlot.ID, targetSlot.ID); err != nil {
		return err
	}
	if err := s.overlap.Check(ctx, req.RequesterID, targetSlot.StartTime, targetSlot.EndTime, requesterSlot.ID, targetSlot.ID); err != nil {
		return err
	}

	requesterSlot.OwnerID, targetSlot.OwnerID = targetSlot.OwnerID, requesterSlot.OwnerID
	requesterSlot.Status = model.SlotStatusBusy
	targetSlot.Status = model.SlotStatusBusy

	if err := s.slots.Update(ctx, requesterSlot); err != nil {
		return storageError("transfer requester slot", err)
	}
	if err := s.slots.Update(ctx, targetSlot); err != nil {
		return storageError("transfer target slot", err)
	}
	if err := s.requests.UpdateStatus(ctx, req.ID, model.SwapRequestStatusAccepted); err != nil {
		return storageError("accept swap request", err)
	}
	req.Status = model.SwapRequestStatusAccepted
	return nil
}

// reject frees whichever of the two slots still exist.
func (s *SwapService) reject(ctx context.Context, req *model.SwapRequest, requesterSlot, targetSlot *model.Slot) error {
	for _, slot := range []*model.Slot{requesterSlot, targetSlot} {
		if slot == nil {
			continue
		}
		slot.Status = model.SlotStatusSwappable
		if err := s.slots.Update(ctx, slot); err != nil {
			return storageError("release slot", err)
		}
	}
	if err := s.requests.UpdateStatus(ctx, req.ID, model.SwapRequestStatusRejected); err != nil {
		return storageError("reject swap request", err)
	}
	req.Status = model.SwapRequestStatusRejected
	return nil
}

// GetIncomingRequests returns pending requests addressed to userID, newest first.
func (s *SwapService) GetIncomingRequests(ctx context.Context, userID uuid.UUID) ([]*model.SwapRequest, error) {
	reqs, err := s.requests.GetIncoming(ctx, userID)
	if err != nil {
		return nil, storageError("list incoming requests", err)
	}
	return s.populate(ctx, reqs)
}

// GetOutgoingRequests returns every request userID made, newest first.
func (s *SwapService) GetOutgoingRequests(ctx context.Context, userID uuid.UUID) ([]*model.SwapRequest, error) {
	reqs, err := s.requests.GetOutgoing(ctx, userID)
	if err != nil {
		return nil, storageError("list outgoing requests", err)
	}
	return s.populate(ctx, reqs)
}

// lockPair locks both slots in id order so concurrent transactions never wait on each other in
// opposite directions. Either result may be nil when the slot does not exist.
func (s *SwapService) lockPair(ctx context.Context, a, b uuid.UUID) (*model.Slot, *model.Slot, error) {
	first, second := a, b
	if bytes.Compare(first[:], second[:]) > 0 {
		first, second = second, first
	}

	locked := make(map[uuid.UUID]*model.Slot, 2)
	for _, id := range []uuid.UUID{first, second} {
		slot, err := s.slots.GetByIDForUpdate(ctx, id)
		if err != nil {
			return nil, nil, storageError("lock slot", err)
		}
		locked[id] = slot
	}
	return locked[a], locked[b], nil
}

// populate fills in the display relations. Slots deleted since the request was resolved stay nil.
func (s *SwapService) populate(ctx context.Context, reqs []*model.SwapRequest) ([]*model.SwapRequest, error) {
	if len(reqs) == 0 {
		return []*model.SwapRequest{}, nil
	}

	slotCache := make(map[uuid.UUID]*model.Slot)
	userIDs := make([]uuid.UUID, 0, len(reqs)*2)
	for _, req := range reqs {
		for _, id := range []uuid.UUID{req.RequesterSlotID, req.TargetSlotID} {
			if _, ok := slotCache[id]; ok {
				continue
			}
			slot, err := s.slots.GetByID(ctx, id)
			if err != nil {
				return nil, storageError("load slot", err)
			}
			slotCache[id] = slot
		}
		req.RequesterSlot = slotCache[req.RequesterSlotID]
		req.TargetSlot = slotCache[req.TargetSlotID]
		userIDs = append(userIDs, req.RequesterID, req.TargetUserID)
	}

	users, err := loadUsers(ctx, s.users, userIDs)
	if err != nil {
		return nil, err
	}
	for _, req := range reqs {
		req.Requester = users[req.RequesterID]
		req.TargetUser = users[req.TargetUserID]
	}
	return reqs, nil
}

// attachUsers runs after commit, so a failed lookup only leaves the display fields empty.
func (s *SwapService) attachUsers(ctx context.Context, req *model.SwapRequest) {
	users, err := loadUsers(ctx, s.users, []uuid.UUID{req.RequesterID, req.TargetUserID})
	if err != nil {
		s.logger.Warn("Failed to load swap participants",
			zap.String("request_id", req.ID.String()),
			zap.Error(err),
		)
		return
	}
	req.Requester = users[req.RequesterID]
	req.TargetUser = users[req.TargetUserID]
}
