package callbacks

import (
	"context"
	"strings"

	"github.com/Freeeeeet/slot_swapper/internal/controller/callbacks/common"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Route распределяет callback query по соответствующим обработчикам
func Route(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *Handler) {
	data := callback.Data

	h.Logger.Debug("Routing callback",
		zap.String("data", data),
		zap.Int64("telegram_id", callback.From.ID))

	switch {
	// ===== Slots =====
	case strings.HasPrefix(data, common.SlotToggle):
		h.handleSlotToggle(ctx, b, callback)
	case strings.HasPrefix(data, common.SlotDelete):
		h.handleSlotDelete(ctx, b, callback)

	// ===== Swaps =====
	case strings.HasPrefix(data, common.SwapPick):
		h.handleSwapPick(ctx, b, callback)
	case strings.HasPrefix(data, common.SwapOffer):
		h.handleSwapOffer(ctx, b, callback)
	case data == common.SwapCancel:
		h.handleSwapCancel(ctx, b, callback)
	case strings.HasPrefix(data, common.SwapAccept):
		h.handleSwapResponse(ctx, b, callback, true)
	case strings.HasPrefix(data, common.SwapReject):
		h.handleSwapResponse(ctx, b, callback, false)

	default:
		h.Logger.Warn("Unknown callback", zap.String("data", data))
		common.AnswerCallback(ctx, b, callback.ID, "")
	}
}
