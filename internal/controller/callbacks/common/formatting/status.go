package formatting

import "github.com/Freeeeeet/slot_swapper/internal/model"

// StatusDisplay представляет отображение статуса
type StatusDisplay struct {
	Emoji string
	Text  string
}

// GetSlotStatusDisplay возвращает emoji и текст для статуса слота
func GetSlotStatusDisplay(status model.SlotStatus) StatusDisplay {
	displays := map[model.SlotStatus]StatusDisplay{
		model.SlotStatusBusy:        {"🔴", "Занят"},
		model.SlotStatusSwappable:   {"🟢", "Доступен для обмена"},
		model.SlotStatusSwapPending: {"⏳", "Ожидает обмена"},
	}

	if display, ok := displays[status]; ok {
		return display
	}

	return StatusDisplay{"❓", "Неизвестно"}
}

// GetSwapRequestStatusDisplay возвращает emoji и текст для статуса запроса
func GetSwapRequestStatusDisplay(status model.SwapRequestStatus) StatusDisplay {
	displays := map[model.SwapRequestStatus]StatusDisplay{
		model.SwapRequestStatusPending:  {"⏳", "Ожидает ответа"},
		model.SwapRequestStatusAccepted: {"✅", "Принят"},
		model.SwapRequestStatusRejected: {"🚫", "Отклонён"},
	}

	if display, ok := displays[status]; ok {
		return display
	}

	return StatusDisplay{"❓", "Неизвестно"}
}
