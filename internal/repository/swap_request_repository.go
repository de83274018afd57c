package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/slot_swapper/internal/model"
	"github.com/Freeeeeet/slot_swapper/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const swapRequestColumns = `id, requester_id, requester_slot_id, target_user_id, target_slot_id, status, created_at, updated_at`

type SwapRequestRepository struct {
	db *base.Repository
}

func NewSwapRequestRepository(db *base.Repository) *SwapRequestRepository {
	return &SwapRequestRepository{db: db}
}

// Create сохраняет новый запрос на обмен.
// A second PENDING request for the same slot pair violates uq_swap_requests_pending_pair
// and comes back wrapped in ErrConflict.
func (r *SwapRequestRepository) Create(ctx context.Context, req *model.SwapRequest) error {
	query := `
		INSERT INTO swap_requests (requester_id, requester_slot_id, target_user_id, target_slot_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		req.RequesterID,
		req.RequesterSlotID,
		req.TargetUserID,
		req.TargetSlotID,
		req.Status,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)

	if err != nil {
		return wrapErr("create swap request", err)
	}

	return nil
}

// GetByID получает запрос по ID
func (r *SwapRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.SwapRequest, error) {
	query := `SELECT ` + swapRequestColumns + ` FROM swap_requests WHERE id = $1`
	return r.getOne(ctx, "get swap request by id", query, id)
}

// GetByIDForUpdate reads a request and locks its row until the surrounding transaction ends.
func (r *SwapRequestRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.SwapRequest, error) {
	query := `SELECT ` + swapRequestColumns + ` FROM swap_requests WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, "lock swap request", query, id)
}

// GetPendingByPair returns the PENDING request for the slot pair, if any.
func (r *SwapRequestRepository) GetPendingByPair(ctx context.Context, requesterSlotID, targetSlotID uuid.UUID) (*model.SwapRequest, error) {
	query := `
		SELECT ` + swapRequestColumns + `
		FROM swap_requests
		WHERE requester_slot_id = $1 AND target_slot_id = $2 AND status = $3
		LIMIT 1
	`
	return r.getOne(ctx, "get pending swap request", query, requesterSlotID, targetSlotID, model.SwapRequestStatusPending)
}

// GetIncoming получает все pending запросы, адресованные пользователю
func (r *SwapRequestRepository) GetIncoming(ctx context.Context, targetUserID uuid.UUID) ([]*model.SwapRequest, error) {
	query := `
		SELECT ` + swapRequestColumns + `
		FROM swap_requests
		WHERE target_user_id = $1 AND status = $2
		ORDER BY created_at DESC
	`
	return r.getMany(ctx, "get incoming swap requests", query, targetUserID, model.SwapRequestStatusPending)
}

// GetOutgoing получает все запросы пользователя, включая завершённые
func (r *SwapRequestRepository) GetOutgoing(ctx context.Context, requesterID uuid.UUID) ([]*model.SwapRequest, error) {
	query := `
		SELECT ` + swapRequestColumns + `
		FROM swap_requests
		WHERE requester_id = $1
		ORDER BY created_at DESC
	`
	return r.getMany(ctx, "get outgoing swap requests", query, requesterID)
}

// UpdateStatus обновляет статус запроса
func (r *SwapRequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.SwapRequestStatus) error {
	query := `
		UPDATE swap_requests
		SET status = $1, updated_at = now()
		WHERE id = $2
	`

	affected, err := r.db.ExecAffected(ctx, query, status, id)
	if err != nil {
		return wrapErr("update swap request status", err)
	}

	if affected == 0 {
		return fmt.Errorf("update swap request %s: %w", id, ErrNotFound)
	}

	return nil
}

func (r *SwapRequestRepository) getOne(ctx context.Context, op, query string, args ...any) (*model.SwapRequest, error) {
	req, err := scanSwapRequest(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	return req, nil
}

func (r *SwapRequestRepository) getMany(ctx context.Context, op, query string, args ...any) ([]*model.SwapRequest, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var requests []*model.SwapRequest
	for rows.Next() {
		req, err := scanSwapRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan swap request: %w", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return requests, nil
}

func scanSwapRequest(row pgx.Row) (*model.SwapRequest, error) {
	var req model.SwapRequest
	err := row.Scan(
		&req.ID,
		&req.RequesterID,
		&req.RequesterSlotID,
		&req.TargetUserID,
		&req.TargetSlotID,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}
