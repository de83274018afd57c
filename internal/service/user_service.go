package service

import (
	"context"
	"strings"

	"github.com/Freeeeeet/slot_swapper/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService struct {
	tx     Transactor
	users  UserStore
	logger *zap.Logger
}

func NewUserService(stores Stores, logger *zap.Logger) *UserService {
	return &UserService{
		tx:     stores.Tx,
		users:  stores.Users,
		logger: logger,
	}
}

// RegisterTelegramUser регистрирует или обновляет пользователя Telegram
func (s *UserService) RegisterTelegramUser(ctx context.Context, telegramID int64, username, firstName, lastName string) (*model.User, error) {
	var (
		user    *model.User
		created bool
	)

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.users.GetByTelegramID(ctx, telegramID)
		if err != nil {
			return storageError("check existing user", err)
		}

		// Пользователь уже есть: обновляем данные профиля
		if existing != nil {
			existing.Username = username
			existing.FirstName = firstName
			existing.LastName = lastName
			if err := s.users.Update(ctx, existing); err != nil {
				return storageError("update user", err)
			}
			user = existing
			return nil
		}

		tg := telegramID
		user = &model.User{
			TelegramID: &tg,
			Username:   username,
			FirstName:  firstName,
			LastName:   lastName,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return storageError("create user", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, storageError("register user", err)
	}

	if created {
		s.logger.Info("New user registered",
			zap.String("user_id", user.ID.String()),
			zap.Int64("telegram_id", telegramID),
			zap.String("username", username),
		)
	} else {
		s.logger.Debug("User updated",
			zap.String("user_id", user.ID.String()),
			zap.Int64("telegram_id", telegramID),
		)
	}

	return user, nil
}

// CreateUser creates a user that is not linked to Telegram, e.g. an HTTP API client.
func (s *UserService) CreateUser(ctx context.Context, username, firstName, lastName string) (*model.User, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	firstName = strings.TrimSpace(firstName)
	if username == "" && firstName == "" {
		return nil, validationError("username or first name is required")
	}

	user := &model.User{
		Username:  username,
		FirstName: firstName,
		LastName:  strings.TrimSpace(lastName),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, storageError("create user", err)
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)

	return user, nil
}

// GetByTelegramID получает пользователя по Telegram ID
func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, storageError("get user", err)
	}
	return user, nil
}

// GetByID returns the user or nil when there is none.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storageError("get user", err)
	}
	return user, nil
}

// Resolve maps an opaque identity to an existing user.
func (s *UserService) Resolve(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFoundError("user not found")
	}
	return user, nil
}
