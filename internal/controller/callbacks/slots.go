package callbacks

import (
	"context"

	"github.com/Freeeeeet/slot_swapper/internal/controller/callbacks/common"
	"github.com/Freeeeeet/slot_swapper/internal/model"
	"github.com/Freeeeeet/slot_swapper/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// handleSlotToggle переключает слот между BUSY и SWAPPABLE
func (h *Handler) handleSlotToggle(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	slotID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		h.fail(ctx, b, callback, "toggle slot", err)
		return
	}

	user, err := h.requireUser(ctx, callback.From.ID)
	if err != nil {
		h.fail(ctx, b, callback, "toggle slot", err)
		return
	}

	slot, err := h.SlotService.GetSlot(ctx, user.ID, slotID)
	if err != nil {
		h.fail(ctx, b, callback, "toggle slot", err)
		return
	}

	next := model.SlotStatusSwappable
	answer := "🟢 Слот доступен для обмена"
	if slot.Status == model.SlotStatusSwappable {
		next = model.SlotStatusBusy
		answer = "🔴 Слот снят с обмена"
	}

	if _, err := h.SlotService.UpdateSlot(ctx, user.ID, slotID, service.SlotPatch{Status: &next}); err != nil {
		h.fail(ctx, b, callback, "toggle slot", err)
		return
	}

	common.AnswerCallback(ctx, b, callback.ID, answer)
	h.refreshMySlots(ctx, b, callback, user.ID)
}

// handleSlotDelete удаляет слот
func (h *Handler) handleSlotDelete(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	slotID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		h.fail(ctx, b, callback, "delete slot", err)
		return
	}

	user, err := h.requireUser(ctx, callback.From.ID)
	if err != nil {
		h.fail(ctx, b, callback, "delete slot", err)
		return
	}

	if err := h.SlotService.DeleteSlot(ctx, user.ID, slotID); err != nil {
		h.fail(ctx, b, callback, "delete slot", err)
		return
	}

	common.AnswerCallback(ctx, b, callback.ID, "🗑 Слот удалён")
	h.refreshMySlots(ctx, b, callback, user.ID)
}

func (h *Handler) refreshMySlots(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, userID uuid.UUID) {
	slots, err := h.SlotService.ListMySlots(ctx, userID)
	if err != nil {
		h.Logger.Warn("Failed to reload slots after change", zap.Error(err))
		return
	}
	text, kb := common.BuildMySlotsScreen(slots, h.Loc)
	h.editScreen(ctx, b, callback, text, kb)
}
