package callbacks

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/slot_swapper/internal/controller/callbacks/common"
	"github.com/Freeeeeet/slot_swapper/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/slot_swapper/internal/controller/state"
	"github.com/Freeeeeet/slot_swapper/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
)

// handleSwapPick запоминает выбранный чужой слот и предлагает выбрать свой
func (h *Handler) handleSwapPick(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	targetID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		h.fail(ctx, b, callback, "pick swap target", err)
		return
	}

	user, err := h.requireUser(ctx, callback.From.ID)
	if err != nil {
		h.fail(ctx, b, callback, "pick swap target", err)
		return
	}

	// Рынок мог устареть, поэтому цель ищем заново
	market, err := h.SlotService.ListSwappableSlots(ctx, user.ID)
	if err != nil {
		h.fail(ctx, b, callback, "pick swap target", err)
		return
	}
	target := findSlot(market, targetID)
	if target == nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, "⚠️ Этот слот больше не доступен для обмена. Обновите /market")
		return
	}

	mine, err := h.SlotService.ListMySlots(ctx, user.ID)
	if err != nil {
		h.fail(ctx, b, callback, "pick swap target", err)
		return
	}
	offers := swappableOnly(mine)
	if len(offers) == 0 {
		common.AnswerCallbackAlert(ctx, b, callback.ID,
			"🤷 У вас нет слотов для обмена. Отметьте свой слот в /myslots")
		return
	}

	telegramID := callback.From.ID
	h.StateManager.ClearState(telegramID)
	h.StateManager.SetState(telegramID, state.StateSwapChooseOffer)
	h.StateManager.SetData(telegramID, state.KeySwapTargetID, targetID)

	common.AnswerCallback(ctx, b, callback.ID, "")
	text, kb := common.BuildOfferScreen(target, offers, h.Loc)
	h.editScreen(ctx, b, callback, text, kb)
}

// handleSwapOffer создаёт запрос обмена из выбранного своего слота
func (h *Handler) handleSwapOffer(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	offeredID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		h.fail(ctx, b, callback, "offer swap", err)
		return
	}

	telegramID := callback.From.ID
	targetID, ok := state.Get[uuid.UUID](h.StateManager, telegramID, state.KeySwapTargetID)
	if !ok || h.StateManager.GetState(telegramID) != state.StateSwapChooseOffer {
		h.fail(ctx, b, callback, "offer swap", common.ErrDialogExpired)
		return
	}

	user, err := h.requireUser(ctx, telegramID)
	if err != nil {
		h.fail(ctx, b, callback, "offer swap", err)
		return
	}

	req, err := h.SwapService.CreateSwapRequest(ctx, user.ID, offeredID, targetID)
	if err != nil {
		h.fail(ctx, b, callback, "offer swap", err)
		return
	}
	h.StateManager.ClearState(telegramID)

	common.AnswerCallback(ctx, b, callback.ID, "📨 Запрос отправлен")
	h.editScreen(ctx, b, callback,
		"📨 Запрос на обмен отправлен!\n\n"+formatting.FormatSwapRequest(req, false, h.Loc)+
			"\n\nСтатус можно посмотреть в /requests", nil)

	text, kb := common.BuildIncomingRequest(req, h.Loc)
	h.notify(ctx, b, req.TargetUser, "🔔 Новый запрос на обмен!\n\n"+text, kb)
}

// handleSwapCancel закрывает выбор слота для обмена
func (h *Handler) handleSwapCancel(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	h.StateManager.ClearState(callback.From.ID)
	common.AnswerCallback(ctx, b, callback.ID, "Отменено")
	h.editScreen(ctx, b, callback, "✖️ Обмен отменён.", nil)
}

// handleSwapResponse принимает или отклоняет входящий запрос
func (h *Handler) handleSwapResponse(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, accept bool) {
	op := "reject swap"
	if accept {
		op = "accept swap"
	}

	requestID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		h.fail(ctx, b, callback, op, err)
		return
	}

	user, err := h.requireUser(ctx, callback.From.ID)
	if err != nil {
		h.fail(ctx, b, callback, op, err)
		return
	}

	result, err := h.SwapService.RespondToSwapRequest(ctx, user.ID, requestID, accept)
	if err != nil {
		h.fail(ctx, b, callback, op, err)
		return
	}

	answer, notice := "🚫 Запрос отклонён", "🚫 %s отклонил(а) ваш запрос на обмен.\n\n%s"
	if accept {
		answer, notice = "✅ Обмен выполнен", "✅ %s принял(а) ваш запрос на обмен!\n\n%s"
	}

	common.AnswerCallback(ctx, b, callback.ID, answer)
	h.editScreen(ctx, b, callback,
		answer+"\n\n"+formatting.FormatSwapRequest(result.Request, true, h.Loc), nil)

	h.notify(ctx, b, result.Request.Requester, fmt.Sprintf(notice,
		user.DisplayName(), formatting.FormatSwapRequest(result.Request, false, h.Loc)), nil)
}

func findSlot(slots []*model.Slot, id uuid.UUID) *model.Slot {
	for _, slot := range slots {
		if slot.ID == id {
			return slot
		}
	}
	return nil
}

func swappableOnly(slots []*model.Slot) []*model.Slot {
	out := make([]*model.Slot, 0, len(slots))
	for _, slot := range slots {
		if slot.Status == model.SlotStatusSwappable {
			out = append(out, slot)
		}
	}
	return out
}
