package formatting

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/slot_swapper/internal/model"
)

// FormatSlot renders one slot line in the given zone.
func FormatSlot(slot *model.Slot, loc *time.Location) string {
	display := GetSlotStatusDisplay(slot.Status)
	line := fmt.Sprintf("%s %s\n    🕒 %s (%s)",
		display.Emoji,
		slot.Title,
		FormatRange(slot.StartTime.In(loc), slot.EndTime.In(loc)),
		FormatDuration(slot.EndTime.Sub(slot.StartTime)),
	)
	if slot.Owner != nil {
		line += "\n    👤 " + slot.Owner.DisplayName()
	}
	return line
}

// FormatSlotList renders slots one per paragraph.
func FormatSlotList(slots []*model.Slot, loc *time.Location) string {
	parts := make([]string, 0, len(slots))
	for i, slot := range slots {
		parts = append(parts, fmt.Sprintf("%d. %s", i+1, FormatSlot(slot, loc)))
	}
	return strings.Join(parts, "\n\n")
}

// FormatSwapRequest describes a request from the point of view of the viewer.
func FormatSwapRequest(req *model.SwapRequest, incoming bool, loc *time.Location) string {
	display := GetSwapRequestStatusDisplay(req.Status)

	var b strings.Builder
	if incoming {
		fmt.Fprintf(&b, "%s Запрос от %s\n", display.Emoji, userName(req.Requester))
		fmt.Fprintf(&b, "    Вам предлагают: %s\n", slotSummary(req.RequesterSlot, loc))
		fmt.Fprintf(&b, "    В обмен на ваш: %s", slotSummary(req.TargetSlot, loc))
	} else {
		fmt.Fprintf(&b, "%s Запрос к %s (%s)\n", display.Emoji, userName(req.TargetUser), display.Text)
		fmt.Fprintf(&b, "    Вы предложили: %s\n", slotSummary(req.RequesterSlot, loc))
		fmt.Fprintf(&b, "    Взамен на: %s", slotSummary(req.TargetSlot, loc))
	}
	return b.String()
}

func slotSummary(slot *model.Slot, loc *time.Location) string {
	if slot == nil {
		return "слот удалён"
	}
	return fmt.Sprintf("%s, %s", slot.Title, FormatRange(slot.StartTime.In(loc), slot.EndTime.In(loc)))
}

func userName(user *model.User) string {
	if user == nil {
		return "неизвестного пользователя"
	}
	return user.DisplayName()
}
