package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/Freeeeeet/slot_swapper/internal/model"
	"github.com/Freeeeeet/slot_swapper/internal/repository"
	"github.com/google/uuid"
)

type UserRepository struct {
	store *Store
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.store.do(ctx, func(st *state) error {
		if user.TelegramID != nil && byTelegramID(st, *user.TelegramID) != nil {
			return fmt.Errorf("create user: %w", repository.ErrConflict)
		}

		now := r.store.now()
		user.ID = uuid.New()
		user.CreatedAt = now
		user.UpdatedAt = now

		stored := *user
		if user.TelegramID != nil {
			id := *user.TelegramID
			stored.TelegramID = &id
		}
		st.users[user.ID] = stored
		return nil
	})
}

func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var found *model.User
	err := r.store.do(ctx, func(st *state) error {
		found = byTelegramID(st, telegramID)
		return nil
	})
	return found, err
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var found *model.User
	err := r.store.do(ctx, func(st *state) error {
		if user, ok := st.users[id]; ok {
			found = &user
		}
		return nil
	})
	return found, err
}

func (r *UserRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.User, error) {
	out := []*model.User{}
	err := r.store.do(ctx, func(st *state) error {
		seen := make(map[uuid.UUID]struct{}, len(ids))
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			if user, ok := st.users[id]; ok {
				out = append(out, &user)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].LastName < out[j].LastName
	})
	return out, nil
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	return r.store.do(ctx, func(st *state) error {
		current, ok := st.users[user.ID]
		if !ok {
			return fmt.Errorf("update user %s: %w", user.ID, repository.ErrNotFound)
		}

		current.Username = user.Username
		current.FirstName = user.FirstName
		current.LastName = user.LastName
		current.UpdatedAt = r.store.now()
		st.users[user.ID] = current

		user.UpdatedAt = current.UpdatedAt
		return nil
	})
}

func byTelegramID(st *state, telegramID int64) *model.User {
	for _, user := range st.users {
		if user.TelegramID != nil && *user.TelegramID == telegramID {
			u := user
			return &u
		}
	}
	return nil
}
