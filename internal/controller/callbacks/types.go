package callbacks

import (
	"context"
	"time"

	"github.com/Freeeeeet/slot_swapper/internal/controller/callbacks/common"
	"github.com/Freeeeeet/slot_swapper/internal/controller/state"
	"github.com/Freeeeeet/slot_swapper/internal/model"
	"github.com/Freeeeeet/slot_swapper/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Handler содержит зависимости для обработки callback queries
type Handler struct {
	UserService  *service.UserService
	SlotService  *service.SlotService
	SwapService  *service.SwapService
	StateManager *state.Manager
	Loc          *time.Location
	Logger       *zap.Logger
}

// NewHandler создаёт новый обработчик callbacks с зависимостями
func NewHandler(
	userService *service.UserService,
	slotService *service.SlotService,
	swapService *service.SwapService,
	stateManager *state.Manager,
	loc *time.Location,
	logger *zap.Logger,
) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		UserService:  userService,
		SlotService:  slotService,
		SwapService:  swapService,
		StateManager: stateManager,
		Loc:          loc,
		Logger:       logger,
	}
}

// HandleCallbackQuery точка входа для всех нажатий на inline кнопки
func (h *Handler) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	Route(ctx, b, update.CallbackQuery, h)
}

func (h *Handler) requireUser(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := h.UserService.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, common.ErrUserNotFound
	}
	return user, nil
}

// fail answers the callback with an alert describing err.
func (h *Handler) fail(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, op string, err error) {
	if !common.IsUserError(err) {
		h.Logger.Error("Callback failed",
			zap.String("op", op),
			zap.String("data", callback.Data),
			zap.Int64("telegram_id", callback.From.ID),
			zap.Error(err))
	}
	common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
}

// editScreen replaces the callback's message with text and an optional keyboard.
func (h *Handler) editScreen(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, text string, kb *models.InlineKeyboardMarkup) {
	msg := common.GetMessageFromCallback(callback)
	if msg == nil {
		return
	}

	params := &bot.EditMessageTextParams{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Text:      text,
	}
	if kb != nil {
		params.ReplyMarkup = kb
	}
	if _, err := b.EditMessageText(ctx, params); err != nil {
		h.Logger.Warn("Failed to edit message", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
	}
}

// notify sends a message to another user when they have a Telegram chat.
func (h *Handler) notify(ctx context.Context, b *bot.Bot, user *model.User, text string, kb *models.InlineKeyboardMarkup) {
	if user == nil || user.TelegramID == nil {
		return
	}
	params := &bot.SendMessageParams{
		ChatID: *user.TelegramID,
		Text:   text,
	}
	if kb != nil {
		params.ReplyMarkup = kb
	}
	if _, err := b.SendMessage(ctx, params); err != nil {
		h.Logger.Warn("Failed to notify user",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
	}
}
