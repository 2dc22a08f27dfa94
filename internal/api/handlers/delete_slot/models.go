package delete_slot

import deleteSlot "github.com/m04kA/HospitalBookingService/internal/usecase/delete_slot"

// DeleteSlotResponse HTTP response model
type DeleteSlotResponse struct {
	SlotID          int64 `json:"slotId"`
	Cascaded        bool  `json:"cascaded"`
	DeletedBookings int   `json:"deletedBookings"`
}

func FromUseCaseResponse(resp *deleteSlot.Response) *DeleteSlotResponse {
	return &DeleteSlotResponse{
		SlotID:          resp.SlotID,
		Cascaded:        resp.Cascaded,
		DeletedBookings: resp.DeletedBookings,
	}
}
