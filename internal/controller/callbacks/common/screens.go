package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/slot_swapper/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/slot_swapper/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/slot_swapper/internal/model"
	"github.com/go-telegram/bot/models"
)

const maxButtonTitle = 24

// BuildMySlotsScreen формирует экран со слотами пользователя
func BuildMySlotsScreen(slots []*model.Slot, loc *time.Location) (string, *models.InlineKeyboardMarkup) {
	if len(slots) == 0 {
		return "📭 У вас пока нет слотов.\n\nСоздайте первый через /newslot", nil
	}

	kb := keyboard.NewBuilder()
	for _, slot := range slots {
		if slot.IsPending() {
			continue
		}
		toggleText := "🟢 Отдать на обмен"
		if slot.Status == model.SlotStatusSwappable {
			toggleText = "🔴 Снять с обмена"
		}
		title := shorten(slot.Title)
		kb.Row(
			keyboard.Button(toggleText+": "+title, CallbackData(SlotToggle, slot.ID)),
			keyboard.Button("🗑", CallbackData(SlotDelete, slot.ID)),
		)
	}

	return "📅 Ваши слоты:\n\n" + formatting.FormatSlotList(slots, loc), kb.Build()
}

// BuildMarketScreen формирует список чужих слотов, доступных для обмена
func BuildMarketScreen(slots []*model.Slot, loc *time.Location) (string, *models.InlineKeyboardMarkup) {
	if len(slots) == 0 {
		return "🤷 Сейчас никто не предлагает слоты для обмена.", nil
	}

	buttons := make([]models.InlineKeyboardButton, 0, len(slots))
	for i, slot := range slots {
		buttons = append(buttons, keyboard.Button(
			fmt.Sprintf("%d. 🔄 %s", i+1, shorten(slot.Title)),
			CallbackData(SwapPick, slot.ID),
		))
	}

	text := "🔄 Слоты, доступные для обмена:\n\n" +
		formatting.FormatSlotList(slots, loc) +
		"\n\nВыберите слот, который хотите получить:"
	return text, keyboard.NewBuilder().Column(buttons...).Build()
}

// BuildOfferScreen предлагает выбрать свой слот в обмен на target
func BuildOfferScreen(target *model.Slot, mine []*model.Slot, loc *time.Location) (string, *models.InlineKeyboardMarkup) {
	kb := keyboard.NewBuilder()
	for _, slot := range mine {
		kb.Row(keyboard.Button(
			fmt.Sprintf("%s, %s", shorten(slot.Title), formatting.FormatDateTime(slot.StartTime.In(loc))),
			CallbackData(SwapOffer, slot.ID),
		))
	}
	kb.Row(keyboard.Button("✖️ Отмена", SwapCancel))

	text := "Вы хотите получить:\n" + formatting.FormatSlot(target, loc) +
		"\n\nКакой из ваших слотов предложить взамен?"
	return text, kb.Build()
}

// BuildIncomingRequest формирует сообщение о входящем запросе с кнопками ответа
func BuildIncomingRequest(req *model.SwapRequest, loc *time.Location) (string, *models.InlineKeyboardMarkup) {
	text := formatting.FormatSwapRequest(req, true, loc)
	if !req.IsPending() {
		return text, nil
	}

	kb := keyboard.NewBuilder().Row(
		keyboard.Button("✅ Принять", CallbackData(SwapAccept, req.ID)),
		keyboard.Button("🚫 Отклонить", CallbackData(SwapReject, req.ID)),
	)
	return text, kb.Build()
}

// BuildOutgoingSummary перечисляет исходящие запросы
func BuildOutgoingSummary(reqs []*model.SwapRequest, loc *time.Location) string {
	if len(reqs) == 0 {
		return "📤 Исходящих запросов нет."
	}
	parts := make([]string, 0, len(reqs))
	for _, req := range reqs {
		parts = append(parts, formatting.FormatSwapRequest(req, false, loc))
	}
	return "📤 Исходящие запросы:\n\n" + strings.Join(parts, "\n\n")
}

func shorten(s string) string {
	runes := []rune(s)
	if len(runes) <= maxButtonTitle {
		return s
	}
	return string(runes[:maxButtonTitle-1]) + "…"
}
