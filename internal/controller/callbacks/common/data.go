package common

// Callback data prefixes, each followed by a uuid
const (
	SlotToggle = "slot_toggle:" // slot_toggle:<slot_id>
	SlotDelete = "slot_delete:" // slot_delete:<slot_id>

	SwapPick   = "swap_pick:"   // swap_pick:<their_slot_id>
	SwapOffer  = "swap_offer:"  // swap_offer:<my_slot_id>
	SwapAccept = "swap_accept:" // swap_accept:<request_id>
	SwapReject = "swap_reject:" // swap_reject:<request_id>
)

// SwapCancel aborts the offer picker
const SwapCancel = "swap_cancel"
