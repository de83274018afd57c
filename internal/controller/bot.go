package controller

import (
	"context"
	"time"

	"github.com/Freeeeeet/slot_swapper/internal/controller/callbacks"
	"github.com/Freeeeeet/slot_swapper/internal/controller/handlers"
	"github.com/Freeeeeet/slot_swapper/internal/controller/state"
	"github.com/Freeeeeet/slot_swapper/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type BotController struct {
	bot             *bot.Bot
	handlers        *handlers.Handlers
	callbackHandler *callbacks.Handler
	stateManager    *state.Manager
	logger          *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	userService *service.UserService,
	slotService *service.SlotService,
	swapService *service.SwapService,
	loc *time.Location,
	logger *zap.Logger,
) *BotController {
	// Общий менеджер состояний для команд и callbacks
	stateManager := state.NewManager()

	return &BotController{
		bot:             botInstance,
		handlers:        handlers.NewHandlers(userService, slotService, swapService, stateManager, loc, logger),
		callbackHandler: callbacks.NewHandler(userService, slotService, swapService, stateManager, loc, logger),
		stateManager:    stateManager,
		logger:          logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	commands := map[string]bot.HandlerFunc{
		"/start":    c.handlers.HandleStart,
		"/help":     c.handlers.HandleHelp,
		"/cancel":   c.handlers.HandleCancel,
		"/newslot":  c.handlers.HandleNewSlot,
		"/myslots":  c.handlers.HandleMySlots,
		"/market":   c.handlers.HandleMarket,
		"/requests": c.handlers.HandleRequests,
		"/week":     c.handlers.HandleWeek,
		"/export":   c.handlers.HandleExport,
	}
	for pattern, handler := range commands {
		c.bot.RegisterHandler(bot.HandlerTypeMessageText, pattern, bot.MatchTypeExact, handler)
	}

	// Обработчик текстовых сообщений (для диалогов с состояниями)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handlers.HandleTextMessage)

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.callbackHandler.HandleCallbackQuery)

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "newslot", Description: "➕ Создать слот"},
		{Command: "myslots", Description: "📅 Мои слоты"},
		{Command: "market", Description: "🔄 Слоты для обмена"},
		{Command: "requests", Description: "📨 Запросы на обмен"},
		{Command: "week", Description: "🗓 Моя неделя"},
		{Command: "export", Description: "📎 Экспорт в календарь"},
		{Command: "help", Description: "❓ Справка по командам"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота и блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) {
	c.logger.Info("Starting bot...")
	go c.sweepDialogs(ctx)
	c.bot.Start(ctx)
	c.logger.Info("Bot stopped")
}

// sweepDialogs frees abandoned dialogs so the state map does not grow forever.
func (c *BotController) sweepDialogs(ctx context.Context) {
	ticker := time.NewTicker(state.DefaultTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := c.stateManager.Sweep(); removed > 0 {
				c.logger.Debug("Expired bot dialogs dropped", zap.Int("count", removed))
			}
		}
	}
}
