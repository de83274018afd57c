package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/slot_swapper/internal/controller/callbacks/common"
	"github.com/Freeeeeet/slot_swapper/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/slot_swapper/internal/controller/state"
	"github.com/Freeeeeet/slot_swapper/internal/model"
	"github.com/Freeeeeet/slot_swapper/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleNewSlot начинает диалог создания слота
func (h *Handlers) HandleNewSlot(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID
	telegramID := update.Message.From.ID

	if _, err := h.requireUser(ctx, telegramID); err != nil {
		h.sendError(ctx, b, chatID, "new slot", err)
		return
	}

	h.stateManager.ClearState(telegramID)
	h.stateManager.SetState(telegramID, state.StateNewSlotTitle)

	h.sendText(ctx, b, chatID, fmt.Sprintf(
		"📝 Введите название слота (%d-%d символов).\n\n/cancel - отменить",
		model.SlotTitleMinLength, model.SlotTitleMaxLength,
	))
}

// HandleTextMessage обрабатывает текстовые сообщения в зависимости от состояния пользователя
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		return
	}

	// Игнорируем команды (они обрабатываются другими handlers)
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	telegramID := update.Message.From.ID
	currentState := h.stateManager.GetState(telegramID)

	h.logger.Debug("HandleTextMessage called",
		zap.Int64("telegram_id", telegramID),
		zap.String("state", string(currentState)))

	switch currentState {
	case state.StateNone:
		return
	case state.StateNewSlotTitle:
		h.handleNewSlotTitleStep(ctx, b, update)
	case state.StateNewSlotStart:
		h.handleNewSlotStartStep(ctx, b, update)
	case state.StateNewSlotEnd:
		h.handleNewSlotEndStep(ctx, b, update)
	case state.StateSwapChooseOffer:
		h.sendText(ctx, b, update.Message.Chat.ID, "👆 Выберите слот кнопкой выше или отправьте /cancel")
	default:
		h.logger.Warn("Unknown state", zap.String("state", string(currentState)))
		h.stateManager.ClearState(telegramID)
	}
}

func (h *Handlers) handleNewSlotTitleStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	title := strings.TrimSpace(update.Message.Text)

	if n := len([]rune(title)); n < model.SlotTitleMinLength || n > model.SlotTitleMaxLength {
		h.sendText(ctx, b, chatID, fmt.Sprintf(
			"❌ Название должно быть от %d до %d символов. Попробуйте ещё раз:",
			model.SlotTitleMinLength, model.SlotTitleMaxLength,
		))
		return
	}

	h.stateManager.SetData(telegramID, state.KeySlotTitle, title)
	h.stateManager.SetState(telegramID, state.StateNewSlotStart)

	h.sendText(ctx, b, chatID, fmt.Sprintf(
		"🕒 Когда начинается слот? Формат: ГГГГ-ММ-ДД ЧЧ:ММ или ДД.ММ.ГГГГ ЧЧ:ММ\n"+
			"Часовой пояс: %s\n\nНапример: %s",
		h.loc.String(), h.now().In(h.loc).Add(24*time.Hour).Format("2006-01-02")+" 10:00",
	))
}

func (h *Handlers) handleNewSlotStartStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	start, err := parseDateTime(update.Message.Text, h.loc)
	if err != nil {
		h.sendText(ctx, b, chatID, "❌ Не понял дату. Пример: 2026-03-09 14:30")
		return
	}

	h.stateManager.SetData(telegramID, state.KeySlotStart, start)
	h.stateManager.SetState(telegramID, state.StateNewSlotEnd)

	h.sendText(ctx, b, chatID, fmt.Sprintf(
		"🕓 Начало: %s\n\nКогда слот заканчивается? Введите ЧЧ:ММ того же дня или полную дату.",
		formatting.FormatDateTime(start),
	))
}

func (h *Handlers) handleNewSlotEndStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	title, okTitle := state.Get[string](h.stateManager, telegramID, state.KeySlotTitle)
	start, okStart := state.Get[time.Time](h.stateManager, telegramID, state.KeySlotStart)
	if !okTitle || !okStart {
		h.logger.Error("Missing data for new slot", zap.Int64("telegram_id", telegramID))
		h.stateManager.ClearState(telegramID)
		h.sendText(ctx, b, chatID, common.ErrorMessage(common.ErrDialogExpired)+": /newslot")
		return
	}

	end, err := parseEndTime(update.Message.Text, start, h.loc)
	if err != nil {
		h.sendText(ctx, b, chatID, "❌ Не понял время. Пример: 15:30 или 2026-03-09 15:30")
		return
	}

	user, err := h.requireUser(ctx, telegramID)
	if err != nil {
		h.stateManager.ClearState(telegramID)
		h.sendError(ctx, b, chatID, "new slot", err)
		return
	}

	slot, err := h.slotService.CreateSlot(ctx, user.ID, service.SlotInput{
		Title:     title,
		StartTime: start,
		EndTime:   end,
	})
	if err != nil {
		// Ошибки проверки оставляют диалог на шаге окончания, чтобы можно было исправить время
		if service.IsValidation(err) {
			h.sendText(ctx, b, chatID, common.ErrorMessage(err)+"\n\nВведите другое время окончания или /cancel")
			return
		}
		h.stateManager.ClearState(telegramID)
		h.sendError(ctx, b, chatID, "create slot", err)
		return
	}

	h.stateManager.ClearState(telegramID)
	h.sendText(ctx, b, chatID, "✅ Слот создан!\n\n"+formatting.FormatSlot(slot, h.loc)+
		"\n\nОтметьте его доступным для обмена в /myslots")
}
