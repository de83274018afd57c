package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/slot_swapper/internal/model"
	"github.com/Freeeeeet/slot_swapper/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const slotColumns = `id, title, start_time, end_time, status, owner_id, created_at, updated_at`

type SlotRepository struct {
	db *base.Repository
}

func NewSlotRepository(db *base.Repository) *SlotRepository {
	return &SlotRepository{db: db}
}

// Create создаёт новый слот
func (r *SlotRepository) Create(ctx context.Context, slot *model.Slot) error {
	query := `
		INSERT INTO slots (title, start_time, end_time, status, owner_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		slot.Title,
		slot.StartTime,
		slot.EndTime,
		slot.Status,
		slot.OwnerID,
	).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)

	if err != nil {
		return wrapErr("create slot", err)
	}

	return nil
}

// GetByID получает слот по ID
func (r *SlotRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1`
	return r.getOne(ctx, "get slot by id", query, id)
}

// GetByIDForUpdate reads a slot and locks its row until the surrounding transaction ends.
func (r *SlotRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, "lock slot", query, id)
}

// GetByOwner получает все слоты владельца
func (r *SlotRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE owner_id = $1
		ORDER BY start_time
	`
	return r.getMany(ctx, "get slots by owner", query, ownerID)
}

// GetSwappable returns every SWAPPABLE slot not owned by excludeOwnerID.
func (r *SlotRepository) GetSwappable(ctx context.Context, excludeOwnerID uuid.UUID) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE status = $1 AND owner_id <> $2
		ORDER BY start_time
	`
	return r.getMany(ctx, "get swappable slots", query, model.SlotStatusSwappable, excludeOwnerID)
}

// FindOverlapping returns one slot of ownerID colliding with [start, end), skipping exclude.
func (r *SlotRepository) FindOverlapping(ctx context.Context, ownerID uuid.UUID, start, end time.Time, exclude ...uuid.UUID) (*model.Slot, error) {
	if exclude == nil {
		exclude = []uuid.UUID{}
	}

	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE owner_id = $1
		  AND NOT (id = ANY($4::uuid[]))
		  AND (
		        (start_time <= $2 AND end_time > $2)
		     OR (start_time < $3 AND end_time >= $3)
		     OR (start_time >= $2 AND end_time <= $3)
		  )
		ORDER BY start_time
		LIMIT 1
	`
	return r.getOne(ctx, "find overlapping slot", query, ownerID, start, end, exclude)
}

// Update сохраняет изменяемые поля слота
func (r *SlotRepository) Update(ctx context.Context, slot *model.Slot) error {
	query := `
		UPDATE slots
		SET title = $1, start_time = $2, end_time = $3, status = $4, owner_id = $5, updated_at = now()
		WHERE id = $6
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		slot.Title,
		slot.StartTime,
		slot.EndTime,
		slot.Status,
		slot.OwnerID,
		slot.ID,
	).Scan(&slot.UpdatedAt)

	if err != nil {
		if base.IsNotFound(err) {
			return fmt.Errorf("update slot %s: %w", slot.ID, ErrNotFound)
		}
		return wrapErr("update slot", err)
	}

	return nil
}

// Delete удаляет слот
func (r *SlotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := r.db.ExecAffected(ctx, `DELETE FROM slots WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete slot", err)
	}

	if affected == 0 {
		return fmt.Errorf("delete slot %s: %w", id, ErrNotFound)
	}

	return nil
}

func (r *SlotRepository) getOne(ctx context.Context, op, query string, args ...any) (*model.Slot, error) {
	slot, err := scanSlot(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	return slot, nil
}

func (r *SlotRepository) getMany(ctx context.Context, op, query string, args ...any) ([]*model.Slot, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var slots []*model.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return slots, nil
}

func scanSlot(row pgx.Row) (*model.Slot, error) {
	var slot model.Slot
	err := row.Scan(
		&slot.ID,
		&slot.Title,
		&slot.StartTime,
		&slot.EndTime,
		&slot.Status,
		&slot.OwnerID,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}
