package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/Freeeeeet/slot_swapper/internal/model"
	"github.com/Freeeeeet/slot_swapper/internal/repository"
	"github.com/google/uuid"
)

type SwapRequestRepository struct {
	store *Store
}

// Create inserts a request. A second PENDING request for the same slot pair fails with
// repository.ErrConflict, like the partial unique index in Postgres.
func (r *SwapRequestRepository) Create(ctx context.Context, req *model.SwapRequest) error {
	switch {
	case req.RequesterID == req.TargetUserID:
		return fmt.Errorf("create swap request: requester and target user must differ")
	case req.RequesterSlotID == req.TargetSlotID:
		return fmt.Errorf("create swap request: requester and target slot must differ")
	}

	return r.store.do(ctx, func(st *state) error {
		if req.Status == model.SwapRequestStatusPending && pendingFor(st, req.RequesterSlotID, req.TargetSlotID) != nil {
			return fmt.Errorf("create swap request: %w", repository.ErrConflict)
		}

		now := r.store.now()
		req.ID = uuid.New()
		req.CreatedAt = now
		req.UpdatedAt = now

		st.seq++
		st.requests[req.ID] = requestRow{request: stripRequest(*req), seq: st.seq}
		return nil
	})
}

func (r *SwapRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.SwapRequest, error) {
	var found *model.SwapRequest
	err := r.store.do(ctx, func(st *state) error {
		if row, ok := st.requests[id]; ok {
			req := row.request
			found = &req
		}
		return nil
	})
	return found, err
}

func (r *SwapRequestRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.SwapRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *SwapRequestRepository) GetPendingByPair(ctx context.Context, requesterSlotID, targetSlotID uuid.UUID) (*model.SwapRequest, error) {
	var found *model.SwapRequest
	err := r.store.do(ctx, func(st *state) error {
		found = pendingFor(st, requesterSlotID, targetSlotID)
		return nil
	})
	return found, err
}

// GetIncoming returns pending requests addressed to targetUserID, newest first.
func (r *SwapRequestRepository) GetIncoming(ctx context.Context, targetUserID uuid.UUID) ([]*model.SwapRequest, error) {
	return r.filter(ctx, func(req *model.SwapRequest) bool {
		return req.TargetUserID == targetUserID && req.IsPending()
	})
}

// GetOutgoing returns every request made by requesterID, newest first.
func (r *SwapRequestRepository) GetOutgoing(ctx context.Context, requesterID uuid.UUID) ([]*model.SwapRequest, error) {
	return r.filter(ctx, func(req *model.SwapRequest) bool {
		return req.RequesterID == requesterID
	})
}

func (r *SwapRequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.SwapRequestStatus) error {
	return r.store.do(ctx, func(st *state) error {
		row, ok := st.requests[id]
		if !ok {
			return fmt.Errorf("update swap request %s: %w", id, repository.ErrNotFound)
		}
		if status == model.SwapRequestStatusPending && !row.request.IsPending() &&
			pendingFor(st, row.request.RequesterSlotID, row.request.TargetSlotID) != nil {
			return fmt.Errorf("update swap request %s: %w", id, repository.ErrConflict)
		}

		row.request.Status = status
		row.request.UpdatedAt = r.store.now()
		st.requests[id] = row
		return nil
	})
}

func (r *SwapRequestRepository) filter(ctx context.Context, match func(req *model.SwapRequest) bool) ([]*model.SwapRequest, error) {
	var rows []requestRow
	err := r.store.do(ctx, func(st *state) error {
		for _, row := range st.requests {
			if match(&row.request) {
				rows = append(rows, row)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })

	out := make([]*model.SwapRequest, 0, len(rows))
	for _, row := range rows {
		req := row.request
		out = append(out, &req)
	}
	return out, nil
}

func pendingFor(st *state, requesterSlotID, targetSlotID uuid.UUID) *model.SwapRequest {
	for _, row := range st.requests {
		req := row.request
		if req.IsPending() && req.RequesterSlotID == requesterSlotID && req.TargetSlotID == targetSlotID {
			return &req
		}
	}
	return nil
}

// stripRequest drops the display-only relations before a request is stored.
func stripRequest(req model.SwapRequest) model.SwapRequest {
	req.RequesterSlot = nil
	req.TargetSlot = nil
	req.Requester = nil
	req.TargetUser = nil
	return req
}
