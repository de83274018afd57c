package state

import "time"

// UserState представляет текущее состояние пользователя в диалоге
type UserState string

const (
	StateNone UserState = "" // Нет активного состояния

	// Создание слота
	StateNewSlotTitle UserState = "new_slot_title"
	StateNewSlotStart UserState = "new_slot_start"
	StateNewSlotEnd   UserState = "new_slot_end"

	// Выбор своего слота для обмена
	StateSwapChooseOffer UserState = "swap_choose_offer"
)

// Keys of the dialog data
const (
	KeySlotTitle    = "slot_title"
	KeySlotStart    = "slot_start"
	KeySwapTargetID = "swap_target_id"
)

// UserData хранит временные данные пользователя во время диалога
type UserData struct {
	State     UserState
	Data      map[string]any
	UpdatedAt time.Time
}
