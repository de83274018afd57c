package handlers

import (
	"bytes"
	"context"
	"fmt"

	"github.com/Freeeeeet/slot_swapper/internal/calendar"
	"github.com/Freeeeeet/slot_swapper/internal/controller/callbacks/common"
	"github.com/Freeeeeet/slot_swapper/internal/controller/state"
	"github.com/Freeeeeet/slot_swapper/internal/render"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const helpText = "📚 Справка по командам:\n\n" +
	"/start - Начать работу с ботом\n" +
	"/newslot - Создать слот\n" +
	"/myslots - Мои слоты\n" +
	"/market - Слоты, доступные для обмена\n" +
	"/requests - Запросы на обмен\n" +
	"/week - Моя неделя картинкой\n" +
	"/export - Экспорт в календарь (.ics)\n" +
	"/cancel - Отменить текущее действие\n" +
	"/help - Показать эту справку\n\n" +
	"Отметьте свой слот как доступный для обмена в /myslots, " +
	"затем выберите чужой слот в /market и предложите обмен."

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	from := update.Message.From

	// Регистрируем пользователя
	user, err := h.userService.RegisterTelegramUser(ctx, from.ID, from.Username, from.FirstName, from.LastName)
	if err != nil {
		h.logger.Error("Failed to register user", zap.Int64("telegram_id", from.ID), zap.Error(err))
		h.sendText(ctx, b, update.Message.Chat.ID, "❌ Произошла ошибка при регистрации. Попробуйте позже.")
		return
	}

	welcomeText := fmt.Sprintf(
		"👋 Привет, %s!\n\n"+
			"Slot Swapper помогает меняться временными слотами в календаре.\n\n%s",
		user.DisplayName(),
		helpText,
	)
	h.sendText(ctx, b, update.Message.Chat.ID, welcomeText)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendText(ctx, b, update.Message.Chat.ID, helpText)
}

// HandleCancel обрабатывает команду /cancel - отмена текущего диалога
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	telegramID := update.Message.From.ID
	if h.stateManager.GetState(telegramID) == state.StateNone {
		h.sendText(ctx, b, update.Message.Chat.ID, "❌ Нет активных операций для отмены.")
		return
	}

	h.stateManager.ClearState(telegramID)
	h.sendText(ctx, b, update.Message.Chat.ID, "✅ Операция отменена.\n\nИспользуйте /help для просмотра доступных команд.")
}

// HandleMySlots показывает слоты пользователя
func (h *Handlers) HandleMySlots(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	user, err := h.requireUser(ctx, update.Message.From.ID)
	if err != nil {
		h.sendError(ctx, b, chatID, "my slots", err)
		return
	}

	slots, err := h.slotService.ListMySlots(ctx, user.ID)
	if err != nil {
		h.sendError(ctx, b, chatID, "my slots", err)
		return
	}

	text, kb := common.BuildMySlotsScreen(slots, h.loc)
	h.sendScreen(ctx, b, chatID, text, kb)
}

// HandleMarket показывает чужие слоты, доступные для обмена
func (h *Handlers) HandleMarket(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	user, err := h.requireUser(ctx, update.Message.From.ID)
	if err != nil {
		h.sendError(ctx, b, chatID, "market", err)
		return
	}

	slots, err := h.slotService.ListSwappableSlots(ctx, user.ID)
	if err != nil {
		h.sendError(ctx, b, chatID, "market", err)
		return
	}

	text, kb := common.BuildMarketScreen(slots, h.loc)
	h.sendScreen(ctx, b, chatID, text, kb)
}

// HandleRequests показывает входящие запросы с кнопками ответа и сводку исходящих
func (h *Handlers) HandleRequests(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	user, err := h.requireUser(ctx, update.Message.From.ID)
	if err != nil {
		h.sendError(ctx, b, chatID, "requests", err)
		return
	}

	incoming, err := h.swapService.GetIncomingRequests(ctx, user.ID)
	if err != nil {
		h.sendError(ctx, b, chatID, "incoming requests", err)
		return
	}
	outgoing, err := h.swapService.GetOutgoingRequests(ctx, user.ID)
	if err != nil {
		h.sendError(ctx, b, chatID, "outgoing requests", err)
		return
	}

	if len(incoming) == 0 {
		h.sendText(ctx, b, chatID, "📥 Входящих запросов нет.")
	}
	for _, req := range incoming {
		text, kb := common.BuildIncomingRequest(req, h.loc)
		h.sendScreen(ctx, b, chatID, "📥 "+text, kb)
	}

	h.sendText(ctx, b, chatID, common.BuildOutgoingSummary(outgoing, h.loc))
}

// HandleWeek отправляет картинку с расписанием на текущую неделю
func (h *Handlers) HandleWeek(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	user, err := h.requireUser(ctx, update.Message.From.ID)
	if err != nil {
		h.sendError(ctx, b, chatID, "week", err)
		return
	}

	now := h.now().In(h.loc)
	from := render.WeekStart(now)
	slots, err := h.slotService.ListMySlotsInRange(ctx, user.ID, from, from.AddDate(0, 0, 7))
	if err != nil {
		h.sendError(ctx, b, chatID, "week", err)
		return
	}

	img, err := render.WeekPNG(now, slots, now)
	if err != nil {
		h.sendError(ctx, b, chatID, "render week", err)
		return
	}

	_, err = b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID: chatID,
		Photo: &models.InputFileUpload{
			Filename: "week.png",
			Data:     bytes.NewReader(img),
		},
		Caption: fmt.Sprintf("🗓 Неделя с %s, слотов: %d", from.Format("02.01.2006"), len(slots)),
	})
	if err != nil {
		h.logger.Error("Failed to send week image", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// HandleExport отправляет все слоты пользователя файлом iCalendar
func (h *Handlers) HandleExport(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	user, err := h.requireUser(ctx, update.Message.From.ID)
	if err != nil {
		h.sendError(ctx, b, chatID, "export", err)
		return
	}

	slots, err := h.slotService.ListMySlots(ctx, user.ID)
	if err != nil {
		h.sendError(ctx, b, chatID, "export", err)
		return
	}
	if len(slots) == 0 {
		h.sendText(ctx, b, chatID, "📭 Нечего экспортировать: у вас нет слотов.")
		return
	}

	var buf bytes.Buffer
	if err := calendar.Encode(&buf, user.DisplayName()+" slots", slots, h.now()); err != nil {
		h.sendError(ctx, b, chatID, "encode calendar", err)
		return
	}

	_, err = b.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID: chatID,
		Document: &models.InputFileUpload{
			Filename: "slots-" + h.now().In(h.loc).Format("20060102") + ".ics",
			Data:     &buf,
		},
		Caption: "📎 Импортируйте файл в свой календарь",
	})
	if err != nil {
		h.logger.Error("Failed to send calendar", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
